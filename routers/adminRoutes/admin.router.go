package adminRoutes

import (
	adminController "lms/controllers/admin"
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin")

	adminGroup.Get("/dashboard", middleware.JWTMiddleware, middleware.RequireAdmin, adminController.GetDashboard)
}
