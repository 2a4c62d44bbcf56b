package paymentValidator

import (
	"lms/middleware"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PaymentSettled validates a settlement webhook payload
func PaymentSettled() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			PaymentID    string `json:"payment_id"`
			UserID       uint   `json:"user_id"`
			AmountCents  int64  `json:"amount_cents"`
			ReferralCode string `json:"referral_code"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.PaymentID) == "" {
			errors["payment_id"] = "Payment ID is required!"
		}
		if reqData.UserID == 0 {
			errors["user_id"] = "User ID is required!"
		}
		if reqData.AmountCents <= 0 {
			errors["amount_cents"] = "Amount must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPayment", reqData)
		return c.Next()
	}
}
