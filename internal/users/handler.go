package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users/me", h.me)
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	usage, err := h.Svc.Usage(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}
	user, err := h.Svc.GetByID(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"id":                    user.ID,
		"email":                 user.Email,
		"name":                  user.Name,
		"image":                 user.Image,
		"plan":                  usage.Plan,
		"resumesCreated":        usage.ResumesCreated,
		"monthlyResumesCreated": usage.MonthlyResumesCreated,
		"monthlyLimit":          usage.MonthlyLimit,
		"canCreateResume":       usage.CanCreateResume,
		"hasBillingAccount":     user.StripeCustomerID != "",
	})
}
