package affiliateRoutes

import (
	affiliateController "lms/controllers/affiliate"
	"lms/middleware"
	affiliateValidator "lms/validators/affiliate"

	"github.com/gofiber/fiber/v2"
)

func SetupAffiliateRoutes(app *fiber.App) {
	affiliateGroup := app.Group("/affiliate")

	// Affiliate self-service
	affiliateGroup.Post("/join", middleware.JWTMiddleware, affiliateController.JoinProgram)
	affiliateGroup.Get("/dashboard", middleware.JWTMiddleware, affiliateController.GetDashboard)
	affiliateGroup.Post("/destination", middleware.JWTMiddleware, affiliateValidator.SetDestination(), affiliateController.SetPayoutDestination)
	affiliateGroup.Post("/payout", middleware.JWTMiddleware, affiliateValidator.RequestPayout(), affiliateController.RequestPayout)
	affiliateGroup.Get("/payouts", middleware.JWTMiddleware, affiliateController.GetPayoutHistory)

	// Public referral link click tracking
	app.Get("/r/:code", affiliateController.TrackReferralClick)

	// Admin payout processing
	adminGroup := app.Group("/admin")
	adminGroup.Get("/payouts", middleware.JWTMiddleware, middleware.RequireAdmin, affiliateController.ListAllPayouts)
	adminGroup.Post("/payout/:id/complete", middleware.JWTMiddleware, middleware.RequireAdmin, affiliateController.CompletePayout)
	adminGroup.Post("/payout/:id/fail", middleware.JWTMiddleware, middleware.RequireAdmin, affiliateController.FailPayout)
}
