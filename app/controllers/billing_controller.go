package controllers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/GymSyncApp/GymSync/internal/pkg/billing"
	"github.com/GymSyncApp/GymSync/internal/pkg/cache"
	"github.com/GymSyncApp/GymSync/internal/pkg/env"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const cancelReasonUserRequest = "Cancelamento solicitado pelo usuário via app"

// Confirmed payments are cached briefly so the client's polling loop does not
// hammer the accounts table.
const paymentConfirmedCacheTTL = 5 * time.Minute

// BillingController exposes the checkout, payment-status and cancellation
// endpoints consumed by the mobile app.
type BillingController struct {
	svc      *billing.Service
	gateway  billing.PaymentGateway
	validate *validator.Validate
}

func NewBillingController(svc *billing.Service, gateway billing.PaymentGateway) *BillingController {
	return &BillingController{
		svc:      svc,
		gateway:  gateway,
		validate: validator.New(),
	}
}

type checkoutSessionRequest struct {
	PriceID      string            `json:"priceId" validate:"required"`
	UserID       string            `json:"userId" validate:"required,uuid4"`
	UserEmail    string            `json:"userEmail" validate:"omitempty,email"`
	UserMetadata map[string]string `json:"userMetadata"`
	Origin       string            `json:"origin" validate:"omitempty,url"`
}

// HandleCreateCheckoutSession creates a Stripe checkout session and hands the
// hosted URL back to the app. The metadata travels verbatim into the session
// so the webhook reads back exactly what the app wrote here.
func (bc *BillingController) HandleCreateCheckoutSession(c *fiber.Ctx) error {
	var req checkoutSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := bc.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	baseURL := strings.TrimRight(req.Origin, "/")
	if baseURL == "" {
		baseURL = strings.TrimRight(env.GetEnv("APP_PUBLIC_URL", "https://gymsync.app"), "/")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	url, err := bc.gateway.CreateCheckoutSession(ctx, billing.CheckoutSessionInput{
		PriceID:    req.PriceID,
		UserID:     req.UserID,
		UserEmail:  req.UserEmail,
		Metadata:   req.UserMetadata,
		SuccessURL: baseURL + "/success_payment.html",
		CancelURL:  baseURL + "/",
	})
	if err != nil {
		log.Printf("create checkout session for %s: %v", req.UserID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"url": url})
}

type paymentStatusRequest struct {
	UserID string `json:"userId"`
}

// HandlePaymentStatus reports whether the webhook has reconciled the user's
// account yet. It always answers 200 so the client polling loop can tell
// "not yet" apart from transport failure.
func (bc *BillingController) HandlePaymentStatus(c *fiber.Ctx) error {
	var req paymentStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"error": "invalid request body"})
	}
	if _, err := uuid.Parse(req.UserID); err != nil {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"error": "userId is required"})
	}

	cacheKey := "billing:confirmed:" + req.UserID
	if val, err := cache.Get(cacheKey); err == nil && val == "1" {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"confirmed": true})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	confirmed, err := bc.svc.PaymentConfirmed(ctx, req.UserID)
	if err != nil {
		log.Printf("payment status check for %s: %v", req.UserID, err)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"error": err.Error()})
	}
	if confirmed {
		if err := cache.Set(cacheKey, "1", paymentConfirmedCacheTTL); err != nil {
			log.Printf("cache payment status for %s: %v", req.UserID, err)
		}
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"confirmed": confirmed})
}

type cancelSubscriptionRequest struct {
	UserID              string `json:"userId"`
	ConfirmCancellation bool   `json:"confirmCancellation"`
}

// HandleCancelSubscription quarantines an account: upstream subscriptions are
// cancelled first, then the record is archived and suspended.
func (bc *BillingController) HandleCancelSubscription(c *fiber.Ctx) error {
	var req cancelSubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid request body"})
	}
	if _, err := uuid.Parse(req.UserID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "userId is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result, err := bc.svc.Quarantine(ctx, req.UserID, req.ConfirmCancellation, cancelReasonUserRequest)
	if err != nil {
		status := fiber.StatusBadRequest
		if !errors.Is(err, billing.ErrConfirmationRequired) && !errors.Is(err, billing.ErrAccountNotFound) {
			log.Printf("quarantine %s failed: %v", req.UserID, err)
		}
		return c.Status(status).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success":                true,
		"message":                "Assinatura cancelada. Conta suspensa e dados preservados para análise.",
		"quarantined":            true,
		"cancelledSubscriptions": result.CancelledSubscriptions,
	})
}
