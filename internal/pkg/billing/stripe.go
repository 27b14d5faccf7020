package billing

import (
	"context"
	"fmt"

	stripelib "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
)

// PaymentGateway abstracts the Stripe API surface the service needs. Tests
// inject a fake; production uses StripeGateway.
type PaymentGateway interface {
	ListActiveSubscriptionIDs(ctx context.Context, customerID string) ([]string, error)
	CancelSubscription(ctx context.Context, subscriptionID string) error
	CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (string, error)
}

// StripeGateway implements PaymentGateway against the Stripe API.
type StripeGateway struct {
	api *client.API
}

// NewStripeGateway creates a gateway authenticated with the given secret key.
func NewStripeGateway(secretKey string) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api}
}

// VerifyWebhookEvent authenticates a webhook delivery. It must be handed the
// exact raw request bytes: any re-serialization in between breaks the
// signature.
func VerifyWebhookEvent(payload []byte, sigHeader, secret string) (stripelib.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripelib.Event{}, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	return event, nil
}

// ListActiveSubscriptionIDs returns the ids of the customer's active
// subscriptions.
func (g *StripeGateway) ListActiveSubscriptionIDs(ctx context.Context, customerID string) ([]string, error) {
	params := &stripelib.SubscriptionListParams{
		Customer: stripelib.String(customerID),
		Status:   stripelib.String(string(stripelib.SubscriptionStatusActive)),
	}
	params.Context = ctx

	var ids []string
	it := g.api.Subscriptions.List(params)
	for it.Next() {
		ids = append(ids, it.Subscription().ID)
	}
	if err := it.Err(); err != nil {
		return nil, fmt.Errorf("list subscriptions for customer %s: %w", customerID, err)
	}
	return ids, nil
}

// CancelSubscription cancels a subscription immediately with no proration
// credit.
func (g *StripeGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	params := &stripelib.SubscriptionCancelParams{
		Prorate: stripelib.Bool(false),
	}
	params.Context = ctx
	if _, err := g.api.Subscriptions.Cancel(subscriptionID, params); err != nil {
		return fmt.Errorf("cancel subscription %s: %w", subscriptionID, err)
	}
	return nil
}

// CreateCheckoutSession creates a subscription checkout session and returns
// its hosted URL. The caller's metadata is attached verbatim; the user id is
// always stamped in so the webhook can reconcile the right account.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (string, error) {
	params := &stripelib.CheckoutSessionParams{
		Mode:                stripelib.String(string(stripelib.CheckoutSessionModeSubscription)),
		PaymentMethodTypes:  stripelib.StringSlice([]string{"card", "boleto"}),
		AllowPromotionCodes: stripelib.Bool(true),
		LineItems: []*stripelib.CheckoutSessionLineItemParams{
			{
				Price:    stripelib.String(in.PriceID),
				Quantity: stripelib.Int64(1),
			},
		},
		SuccessURL: stripelib.String(in.SuccessURL),
		CancelURL:  stripelib.String(in.CancelURL),
		SubscriptionData: &stripelib.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{metaKeyUserID: in.UserID},
		},
	}
	params.Context = ctx
	if in.UserEmail != "" {
		params.CustomerEmail = stripelib.String(in.UserEmail)
	}

	params.AddMetadata(metaKeyUserID, in.UserID)
	for k, v := range in.Metadata {
		if k == metaKeyUserID {
			continue
		}
		params.AddMetadata(k, v)
	}

	session, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return session.URL, nil
}
