package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/GymSyncApp/GymSync/internal/pkg/billing"
	"github.com/gofiber/fiber/v2"
)

// WebhookController receives Stripe webhook deliveries. Signature
// verification over the raw body is the authentication mechanism for this
// endpoint; there is no session or API key involved.
type WebhookController struct {
	svc           *billing.Service
	webhookSecret string
}

func NewWebhookController(svc *billing.Service, webhookSecret string) *WebhookController {
	return &WebhookController{
		svc:           svc,
		webhookSecret: webhookSecret,
	}
}

// HandleStripeWebhook verifies, records and dispatches one provider event.
// A non-2xx response makes Stripe redeliver, so only datastore failures on
// the primary write surface as 500; unrecognized event types are acknowledged.
func (wc *WebhookController) HandleStripeWebhook(c *fiber.Ctx) error {
	if strings.TrimSpace(wc.webhookSecret) == "" {
		return c.Status(fiber.StatusInternalServerError).SendString("Server configuration error: Missing Secrets")
	}

	// The signature covers the exact bytes Stripe sent; never re-serialize.
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := strings.TrimSpace(c.Get("Stripe-Signature"))

	event, err := billing.VerifyWebhookEvent(rawBody, signature, wc.webhookSecret)
	if err != nil {
		log.Printf("webhook signature verification failed: %v", err)
		return c.Status(fiber.StatusBadRequest).SendString(fmt.Sprintf("Webhook Error: %v", err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()

	created, stored, err := wc.svc.RecordWebhookEvent(ctx, billing.WebhookEventInput{
		Provider:        billing.ProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		PayloadJSON:     string(rawBody),
		SignatureValid:  true,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	// Only deliveries that already processed cleanly are short-circuited.
	// A redelivery after a processing failure (the 500 below) must run
	// again, otherwise the retry the 500 asked for would be swallowed here.
	if !created && stored.ProcessedAt != nil && stored.ProcessingError == "" {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "duplicate": true})
	}

	var procErr error
	switch string(event.Type) {
	case "checkout.session.completed":
		var session billing.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			procErr = fmt.Errorf("decode checkout.session: %w", err)
		} else {
			procErr = wc.svc.HandleCheckoutCompleted(ctx, session)
		}
	case "invoice.payment_failed":
		var invoice billing.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			procErr = fmt.Errorf("decode invoice: %w", err)
		} else {
			procErr = wc.svc.HandleInvoicePaymentFailed(ctx, invoice)
		}
	case "customer.subscription.updated":
		var sub billing.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			procErr = fmt.Errorf("decode subscription: %w", err)
		} else {
			procErr = wc.svc.HandleSubscriptionUpdated(ctx, sub)
		}
	case "customer.subscription.deleted":
		var sub billing.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			procErr = fmt.Errorf("decode subscription: %w", err)
		} else {
			procErr = wc.svc.HandleSubscriptionDeleted(ctx, sub)
		}
	default:
		log.Printf("webhook event %s ignored (unhandled type %s)", event.ID, event.Type)
	}

	if err := wc.svc.MarkWebhookProcessed(ctx, stored.ID, procErr); err != nil {
		log.Printf("mark webhook %d processed: %v", stored.ID, err)
	}

	if procErr != nil {
		log.Printf("webhook %s (%s) processing failed: %v", event.ID, event.Type, procErr)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "processing failed"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}
