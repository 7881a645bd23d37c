package router

import (
	"github.com/gofiber/fiber/v2"
)

// Router installs a group of routes on the app
type Router interface {
	InstallRouter(app *fiber.App)
}

// InstallRouter registers all route groups. Webhook routes are installed
// before the authenticated API so the raw-body handlers stay free of any
// body-touching middleware.
func InstallRouter(app *fiber.App, routers ...Router) {
	for _, r := range routers {
		r.InstallRouter(app)
	}
}
