package router

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	redisstorage "github.com/gofiber/storage/redis"

	"github.com/launchstack/SubRelay/app/controllers"
	"github.com/launchstack/SubRelay/app/repository"
	"github.com/launchstack/SubRelay/internal/pkg/constants"
	"github.com/launchstack/SubRelay/internal/pkg/env"
	"github.com/launchstack/SubRelay/internal/pkg/middleware"
)

// ApiRouter wires the webhook endpoints and the tenant-facing v1 API.
type ApiRouter struct {
	Webhooks      *controllers.WebhookController
	Subscriptions *controllers.SubscriptionController
	Admin         *controllers.AdminController
	Tenants       repository.TenantRepository
}

func NewApiRouter(
	webhooks *controllers.WebhookController,
	subscriptions *controllers.SubscriptionController,
	admin *controllers.AdminController,
	tenants repository.TenantRepository,
) *ApiRouter {
	return &ApiRouter{
		Webhooks:      webhooks,
		Subscriptions: subscriptions,
		Admin:         admin,
		Tenants:       tenants,
	}
}

func (h *ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	// Provider webhooks are never rate limited: retry storms from a billing
	// provider must not be dropped at the transport.
	app.Post(constants.PolarWebhookRoute, h.Webhooks.HandlePolarWebhook)
	app.Post(constants.RevenueCatWebhookRoute, h.Webhooks.HandleRevenueCatWebhook)

	// API v1 routes, rate limited via Redis so multiple instances share one
	// bucket.
	v1 := api.Group("/v1", limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
		Storage:    newLimiterStorage(),
	}))

	tenant := v1.Group("/tenant", middleware.TenantAPIKeyAuth(h.Tenants))
	tenant.Get("/subscription", h.Subscriptions.HandleGetSubscription)
	tenant.Get("/entitlements", h.Subscriptions.HandleGetEntitlements)

	admin := v1.Group("/admin", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("ADMIN_USER", "admin"): env.GetEnv("ADMIN_PASSWORD", "admin"),
		},
	}))
	admin.Get("/webhook-stats", h.Admin.HandleWebhookStats)
}

// newLimiterStorage creates the Redis storage backing the rate limiter.
// Database 1 keeps limiter keys apart from the cache (DB 0).
func newLimiterStorage() fiber.Storage {
	port := 6379
	if _, err := fmt.Sscanf(env.GetEnv("CACHE_PORT", "6379"), "%d", &port); err != nil {
		port = 6379
	}
	return redisstorage.New(redisstorage.Config{
		Host:     env.GetEnv("CACHE_HOST", "localhost"),
		Port:     port,
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		Database: 1,
	})
}
