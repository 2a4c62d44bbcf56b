package paymentRoutes

import (
	paymentController "lms/controllers/payment"
	paymentValidator "lms/validators/payment"

	"github.com/gofiber/fiber/v2"
)

// SetupWebhookRoutes sets up the payment-provider webhook endpoints.
// These are called by the provider, not by browsers; authenticity is checked
// against the provider API, not with user JWTs.
func SetupWebhookRoutes(app *fiber.App) {
	webhookGroup := app.Group("/webhook")

	webhookGroup.Post("/payment", paymentValidator.PaymentSettled(), paymentController.HandlePaymentSettled)
	webhookGroup.Post("/refund", paymentController.HandlePaymentRefunded)
}
