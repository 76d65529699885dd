package billing

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// Gateway is the subset of the Stripe API used for subscriptions.
type Gateway interface {
	CreateCustomer(ctx context.Context, c Customer) (string, error)
	CreateCheckoutSession(ctx context.Context, in CheckoutInput) (string, error)
	CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error)
}

type Customer struct {
	UserID string
	Email  string
	Name   string
}

type CheckoutInput struct {
	CustomerID string
	PriceID    string
	UserID     string
	SuccessURL string
	CancelURL  string
}

// StripeGateway calls Stripe through a dedicated client so the global key is untouched.
type StripeGateway struct {
	API *client.API
}

func NewStripeGateway(secretKey string, backends *stripe.Backends) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, backends)
	return &StripeGateway{API: api}
}

func (g *StripeGateway) CreateCustomer(ctx context.Context, c Customer) (string, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(c.Email),
	}
	if c.Name != "" {
		params.Name = stripe.String(c.Name)
	}
	params.Context = ctx
	params.AddMetadata("userId", c.UserID)
	cust, err := g.API.Customers.New(params)
	if err != nil {
		return "", err
	}
	return cust.ID, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, in CheckoutInput) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:          stripe.String(in.CustomerID),
		ClientReferenceID: stripe.String(in.UserID),
		SuccessURL:        stripe.String(in.SuccessURL),
		CancelURL:         stripe.String(in.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(in.PriceID), Quantity: stripe.Int64(1)},
		},
	}
	params.Context = ctx
	params.AddMetadata("userId", in.UserID)
	sess, err := g.API.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	if sess.URL == "" {
		return "", errors.New("stripe checkout session has no url")
	}
	return sess.URL, nil
}

func (g *StripeGateway) CreatePortalSession(ctx context.Context, customerID, returnURL string) (string, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(returnURL),
	}
	params.Context = ctx
	sess, err := g.API.BillingPortalSessions.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}
