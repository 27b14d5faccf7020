package controllers

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/GymSyncApp/GymSync/internal/pkg/billing"
	"github.com/GymSyncApp/GymSync/internal/pkg/mail"
	"github.com/GymSyncApp/GymSync/internal/pkg/push"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// NotificationController sends transactional email and push notifications.
type NotificationController struct {
	mailer   *mail.Client
	repo     billing.Repository
	validate *validator.Validate

	// The push sender needs Firebase credentials that may be absent in
	// deployments that only use email, so it is built on first use.
	pushOnce   sync.Once
	pushSender *push.Sender
	pushErr    error
}

func NewNotificationController(mailer *mail.Client, repo billing.Repository) *NotificationController {
	return &NotificationController{
		mailer:   mailer,
		repo:     repo,
		validate: validator.New(),
	}
}

type verificationEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name"`
	Code  string `json:"code" validate:"required,min=4,max=10"`
}

// HandleSendVerificationEmail delivers the signup verification code.
func (nc *NotificationController) HandleSendVerificationEmail(c *fiber.Ctx) error {
	var req verificationEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid request body"})
	}
	if err := nc.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	msg, err := mail.VerificationEmail(req.Email, req.Name, req.Code)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "failed to render email"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := nc.mailer.Send(ctx, msg); err != nil {
		log.Printf("send verification email to %s failed: %v", req.Email, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"success": false, "error": "email delivery failed"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

type passwordResetEmailRequest struct {
	Email     string `json:"email" validate:"required,email"`
	ResetLink string `json:"resetLink" validate:"required,url"`
}

// HandleSendPasswordResetEmail delivers a password recovery link. The link is
// minted by the identity provider; this endpoint only handles delivery.
func (nc *NotificationController) HandleSendPasswordResetEmail(c *fiber.Ctx) error {
	var req passwordResetEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid request body"})
	}
	if err := nc.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	msg, err := mail.PasswordResetEmail(req.Email, req.ResetLink)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "failed to render email"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := nc.mailer.Send(ctx, msg); err != nil {
		log.Printf("send password reset email to %s failed: %v", req.Email, err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"success": false, "error": "email delivery failed"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}

type pushNotificationRequest struct {
	Title   string            `json:"title" validate:"required"`
	Body    string            `json:"body" validate:"required"`
	UserIDs []string          `json:"userIds"`
	Topic   string            `json:"topic"`
	Data    map[string]string `json:"data"`
}

// HandleSendPush fans a notification out to device tokens or a topic.
// Delivery is best effort; the response reports how many sends went through.
func (nc *NotificationController) HandleSendPush(c *fiber.Ctx) error {
	var req pushNotificationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid request body"})
	}
	if err := nc.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	if len(req.UserIDs) == 0 && req.Topic == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "userIds or topic is required"})
	}

	sender, err := nc.sender()
	if err != nil {
		log.Printf("push sender unavailable: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"success": false, "error": "push delivery is not configured"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	notification := push.Notification{Title: req.Title, Body: req.Body, Data: req.Data}

	if req.Topic != "" {
		if err := sender.SendToTopic(ctx, notification, req.Topic); err != nil {
			log.Printf("push to topic %s failed: %v", req.Topic, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"success": false, "error": "push delivery failed"})
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "topic": req.Topic})
	}

	tokens, err := nc.repo.ListPushTokens(req.UserIDs)
	if err != nil {
		log.Printf("list push tokens failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "token lookup failed"})
	}
	if len(tokens) == 0 {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "sent": 0})
	}

	sent := sender.SendToTokens(ctx, notification, tokens)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true, "sent": sent, "tokens": len(tokens)})
}

func (nc *NotificationController) sender() (*push.Sender, error) {
	nc.pushOnce.Do(func() {
		nc.pushSender, nc.pushErr = push.NewSenderFromEnv(context.Background())
	})
	return nc.pushSender, nc.pushErr
}
