// handlers/dashboard_routes.go
package handlers

import (
	"cleanup-jobs-system/middleware"
	"cleanup-jobs-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupDashboardRoutes exposes the read-only history and impact views backing
// the dashboard and profile screens.
func SetupDashboardRoutes(app *fiber.App, statsService *services.StatsService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Get("/users/me/stats", statsService.GetUserStats)
	secured.Get("/users/me/completions", statsService.GetUserCompletions)
}
