package joburl

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/job-url/parse", h.parse)
}

type parseRequest struct {
	URL string `json:"url"`
}

func (h *Handler) parse(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	posting, err := h.Svc.Parse(c.Request.Context(), req.URL)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidURL):
			respond.Error(c, http.StatusBadRequest, "invalid_url", err.Error(), nil)
		case errors.Is(err, ErrFetch), errors.Is(err, ErrNoContent):
			respond.Error(c, http.StatusBadRequest, "job_url_parse_failed",
				"could not read a job posting from that URL", gin.H{"reason": err.Error()})
		case errors.Is(err, context.DeadlineExceeded):
			respond.Error(c, http.StatusGatewayTimeout, "timeout", "job posting parse timed out", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to parse job posting", nil)
		}
		return
	}
	respond.OK(c, posting)
}
