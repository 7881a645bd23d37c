package main

import (
	"fmt"
	"log"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/launchstack/SubRelay/app/controllers"
	"github.com/launchstack/SubRelay/app/repository"
	"github.com/launchstack/SubRelay/internal/pkg/analytics"
	"github.com/launchstack/SubRelay/internal/pkg/billing"
	"github.com/launchstack/SubRelay/internal/pkg/cache"
	"github.com/launchstack/SubRelay/internal/pkg/constants"
	"github.com/launchstack/SubRelay/internal/pkg/database"
	"github.com/launchstack/SubRelay/internal/pkg/env"
	"github.com/launchstack/SubRelay/internal/pkg/metrics/counter"
	"github.com/launchstack/SubRelay/internal/pkg/payloadarchive"
	"github.com/launchstack/SubRelay/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

// NewApplication builds the process composition root: every collaborator is
// constructed here and injected explicitly, with lifecycle tied to process
// start.
func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	repos := repository.NewRepositories(database.GetDB())
	service := billing.NewService(repos.Subscription, repos.WebhookEvent, repos.PlanMapping)
	sink := analytics.NewHTTPSinkFromEnv()

	var archiver billing.PayloadArchiver
	if cfg, err := payloadarchive.LoadConfig(); err != nil {
		log.Printf("webhook payload archive misconfigured: %v", err)
	} else if cfg.IsEnabled() {
		client, err := payloadarchive.NewClient(cfg)
		if err != nil {
			log.Printf("webhook payload archive unavailable: %v", err)
		} else {
			archiver = client
		}
	}

	dispatcher := billing.NewDispatcher(
		service,
		sink,
		counter.RedisRecorder{},
		archiver,
		env.GetEnv("POLAR_WEBHOOK_SECRET", ""),
		env.GetEnv("REVENUECAT_WEBHOOK_SECRET", ""),
	)

	app := fiber.New(fiber.Config{
		BodyLimit: 1 << 20, // webhook payloads are small; 1 MiB is generous
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get(constants.MetricsRoute, basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("ADMIN_USER", "admin"): env.GetEnv("ADMIN_PASSWORD", "admin"),
		},
	}), monitor.New())

	app.Get(constants.HealthRoute, func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "./public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app, router.NewApiRouter(
		controllers.NewWebhookController(dispatcher),
		controllers.NewSubscriptionController(service),
		controllers.NewAdminController(),
		repos.Tenant,
	))

	return app
}
