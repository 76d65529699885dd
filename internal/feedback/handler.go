package feedback

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
)

const maxBodyBytes = 64 << 10

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/feedback", h.submit)
}

func (h *Handler) submit(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	f, err := h.Svc.Submit(c.Request.Context(), middleware.UserIDFromContext(c), payload)
	if err != nil {
		var invalid *ValidationError
		switch {
		case errors.As(err, &invalid):
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid feedback", invalid.Fields)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid feedback", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save feedback", nil)
		}
		return
	}
	respond.Created(c, f)
}
