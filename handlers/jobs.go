// handlers/jobs.go
package handlers

import (
	"cleanup-jobs-system/middleware"
	"cleanup-jobs-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupJobRoutes(app *fiber.App, feedService *services.FeedService, claimService *services.ClaimService, uploadService *services.UploadService) {
	// 🔓 Public route — no user context, but still behind Gateway auth
	app.Get("/jobs/feed", feedService.GetFeed)

	// 🔐 Secured routes — require user context (userID, roles)
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/jobs/actions", claimService.JobActions)
	secured.Post("/uploads/photos", uploadService.UploadPhoto)

	// 🔒 Verifier surface — the external verifier acts through these
	admin := secured.Group("/admin", middleware.RequireRole("verifier"))
	admin.Get("/claims", claimService.ListClaims)
	admin.Post("/claims/:id/verify", claimService.VerifyClaim)
	admin.Post("/claims/:id/reject", claimService.RejectClaim)
}
