package billing

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
)

const maxWebhookBytes = 65536

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the routes that need a signed-in user.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/stripe/create-checkout-session", h.checkout)
	rg.POST("/stripe/portal", h.portal)
}

// RegisterWebhook attaches the Stripe callback, which authenticates by signature.
func (h *Handler) RegisterWebhook(rg *gin.RouterGroup) {
	rg.POST("/stripe/webhook", h.webhook)
}

func (h *Handler) checkout(c *gin.Context) {
	url, err := h.Svc.CreateCheckoutSession(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.fail(c, err, "failed to create checkout session")
		return
	}
	respond.OK(c, gin.H{"url": url})
}

func (h *Handler) portal(c *gin.Context) {
	url, err := h.Svc.CreatePortalSession(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		h.fail(c, err, "failed to create portal session")
		return
	}
	respond.OK(c, gin.H{"url": url})
}

func (h *Handler) webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBytes))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid webhook body", nil)
		return
	}
	event, err := h.Svc.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.fail(c, err, "failed to verify webhook")
		return
	}
	h.Svc.HandleWebhook(c.Request.Context(), event)
	respond.OK(c, gin.H{"received": true})
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrNotConfigured):
		respond.Error(c, http.StatusInternalServerError, "billing_not_configured", err.Error(), nil)
	case errors.Is(err, ErrNoCustomer):
		respond.Error(c, http.StatusBadRequest, "no_customer", err.Error(), nil)
	case errors.Is(err, ErrInvalidSignature):
		respond.Error(c, http.StatusBadRequest, "invalid_signature", "webhook signature verification failed", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "billing_error", message, nil)
	}
}
