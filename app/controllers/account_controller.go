package controllers

import (
	"context"
	"log"
	"time"

	"github.com/GymSyncApp/GymSync/internal/pkg/billing"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// AccountController handles destructive account operations.
type AccountController struct {
	svc *billing.Service
}

func NewAccountController(svc *billing.Service) *AccountController {
	return &AccountController{svc: svc}
}

type deleteAccountRequest struct {
	TargetUserID string `json:"target_user_id"`
}

// HandleDeleteAccount removes every local row for an identity and deletes the
// identity provider user. This is a hard delete, not quarantine.
func (ac *AccountController) HandleDeleteAccount(c *fiber.Ctx) error {
	var req deleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "invalid request body"})
	}
	if _, err := uuid.Parse(req.TargetUserID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "target_user_id is required"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := ac.svc.DeleteAccount(ctx, req.TargetUserID); err != nil {
		log.Printf("delete account %s failed: %v", req.TargetUserID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"success": true})
}
