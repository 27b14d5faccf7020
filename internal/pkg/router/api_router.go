package router

import (
	"github.com/GymSyncApp/GymSync/app/controllers"
	"github.com/GymSyncApp/GymSync/internal/pkg/mail"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

type ApiRouter struct {
}

// corsMiddleware opens the API to the mobile app and browser clients. The
// checkout flow preflights with OPTIONS and expects a 200 "ok" body.
func corsMiddleware(c *fiber.Ctx) error {
	c.Set("Access-Control-Allow-Origin", "*")
	c.Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
	c.Set("Access-Control-Allow-Methods", "POST, OPTIONS")

	if c.Method() == fiber.MethodOptions {
		return c.Status(fiber.StatusOK).SendString("ok")
	}
	return c.Next()
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	repo, gateway, svc := deps()

	billingController := controllers.NewBillingController(svc, gateway)
	accountController := controllers.NewAccountController(svc)
	notificationController := controllers.NewNotificationController(mail.NewClientFromEnv(), repo)

	api := app.Group("/api", corsMiddleware, limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "GymSync API",
		})
	})

	v1 := api.Group("/v1")

	billingGroup := v1.Group("/billing")
	billingGroup.Post("/checkout-session", billingController.HandleCreateCheckoutSession)
	billingGroup.Post("/payment-status", billingController.HandlePaymentStatus)
	billingGroup.Post("/cancel", billingController.HandleCancelSubscription)

	v1.Post("/account/delete", accountController.HandleDeleteAccount)

	notifications := v1.Group("/notifications")
	notifications.Post("/email/verification", notificationController.HandleSendVerificationEmail)
	notifications.Post("/email/password-reset", notificationController.HandleSendPasswordResetEmail)
	notifications.Post("/push", notificationController.HandleSendPush)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
