package router

import (
	"sync"

	"github.com/GymSyncApp/GymSync/app/controllers"
	"github.com/GymSyncApp/GymSync/internal/pkg/billing"
	"github.com/GymSyncApp/GymSync/internal/pkg/database"
	"github.com/GymSyncApp/GymSync/internal/pkg/env"
	"github.com/GymSyncApp/GymSync/internal/pkg/identity"
	"github.com/gofiber/fiber/v2"
)

type HttpRouter struct {
}

var (
	depsOnce   sync.Once
	repoShared billing.Repository
	gwShared   billing.PaymentGateway
	svcShared  *billing.Service
)

// deps wires the billing service once; both routers share the same instances.
func deps() (billing.Repository, billing.PaymentGateway, *billing.Service) {
	depsOnce.Do(func() {
		repoShared = billing.NewRepository(database.GetDB())
		gwShared = billing.NewStripeGateway(env.GetEnv("STRIPE_SECRET_KEY", ""))
		svcShared = billing.NewService(repoShared, gwShared, identity.NewClientFromEnv())
	})
	return repoShared, gwShared, svcShared
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	_, _, svc := deps()

	webhookController := controllers.NewWebhookController(svc, env.GetEnv("STRIPE_WEBHOOK_SECRET", ""))
	app.Post("/webhooks/stripe", webhookController.HandleStripeWebhook)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}
