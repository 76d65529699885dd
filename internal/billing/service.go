package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"resume-tailor/internal/events"
	"resume-tailor/internal/shared/telemetry"
	"resume-tailor/internal/users"
)

var (
	ErrNotConfigured    = errors.New("billing is not configured")
	ErrNoCustomer       = errors.New("no billing account for this user")
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// Users is the part of the users service billing needs.
type Users interface {
	GetByID(ctx context.Context, userID string) (users.User, error)
	SetStripeCustomer(ctx context.Context, userID, customerID string) error
}

type Config struct {
	PriceID       string
	WebhookSecret string
	// PublicBaseURL is where checkout and portal send the user back to.
	PublicBaseURL string
}

type Service struct {
	Gateway Gateway
	Users   Users
	Events  events.Publisher
	Config  Config
}

func NewService(gateway Gateway, usersSvc Users, publisher events.Publisher, cfg Config) *Service {
	return &Service{Gateway: gateway, Users: usersSvc, Events: publisher, Config: cfg}
}

func (s *Service) configured() bool {
	return s != nil && s.Gateway != nil
}

// CreateCheckoutSession starts a subscription checkout, creating the Stripe
// customer on first use.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID string) (string, error) {
	if !s.configured() || s.Config.PriceID == "" {
		return "", ErrNotConfigured
	}
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	customerID := user.StripeCustomerID
	if customerID == "" {
		customerID, err = s.Gateway.CreateCustomer(ctx, Customer{UserID: user.ID, Email: user.Email, Name: user.Name})
		if err != nil {
			return "", fmt.Errorf("create customer: %w", err)
		}
		if err := s.Users.SetStripeCustomer(ctx, user.ID, customerID); err != nil {
			return "", fmt.Errorf("store customer: %w", err)
		}
	}
	url, err := s.Gateway.CreateCheckoutSession(ctx, CheckoutInput{
		CustomerID: customerID,
		PriceID:    s.Config.PriceID,
		UserID:     user.ID,
		SuccessURL: s.Config.PublicBaseURL + "/dashboard?checkout=success",
		CancelURL:  s.Config.PublicBaseURL + "/dashboard?checkout=cancelled",
	})
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	telemetry.Info("billing.checkout_created", map[string]any{"user_id": user.ID, "customer_id": customerID})
	return url, nil
}

// CreatePortalSession opens the billing portal for an existing customer.
func (s *Service) CreatePortalSession(ctx context.Context, userID string) (string, error) {
	if !s.configured() {
		return "", ErrNotConfigured
	}
	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load user: %w", err)
	}
	if user.StripeCustomerID == "" {
		return "", ErrNoCustomer
	}
	url, err := s.Gateway.CreatePortalSession(ctx, user.StripeCustomerID, s.Config.PublicBaseURL+"/dashboard")
	if err != nil {
		return "", fmt.Errorf("create portal session: %w", err)
	}
	return url, nil
}

// VerifyWebhook checks the Stripe-Signature header and decodes the event.
func (s *Service) VerifyWebhook(payload []byte, signature string) (stripe.Event, error) {
	if s == nil || s.Config.WebhookSecret == "" {
		return stripe.Event{}, ErrNotConfigured
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.Config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return event, nil
}

// HandleWebhook records a verified event. Plan changes are applied out of band.
func (s *Service) HandleWebhook(ctx context.Context, event stripe.Event) {
	customer := customerOf(event)
	telemetry.Info("billing.webhook_received", map[string]any{
		"event_id":    event.ID,
		"event_type":  string(event.Type),
		"customer_id": customer,
	})
	events.Emit(ctx, s.Events, events.New(events.TypeBillingWebhook, "", event.ID, map[string]any{
		"stripeType": string(event.Type),
		"customerId": customer,
	}))
}

func customerOf(event stripe.Event) string {
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return ""
	}
	var obj struct {
		Customer json.RawMessage `json:"customer"`
	}
	if err := json.Unmarshal(event.Data.Raw, &obj); err != nil || len(obj.Customer) == 0 {
		return ""
	}
	var id string
	if err := json.Unmarshal(obj.Customer, &id); err == nil {
		return id
	}
	var expanded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(obj.Customer, &expanded); err == nil {
		return expanded.ID
	}
	return ""
}
