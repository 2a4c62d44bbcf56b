package affiliateValidator

import (
	"lms/middleware"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// RequestPayout validates a payout request body
func RequestPayout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			PaymentMethod string `json:"payment_method"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		method := strings.ToUpper(strings.TrimSpace(reqData.PaymentMethod))
		if method == "" {
			errors["payment_method"] = "Payment method is required!"
		} else if method != "PAYPAL" && method != "BANK_TRANSFER" {
			errors["payment_method"] = "Payment method must be PAYPAL or BANK_TRANSFER!"
		}
		reqData.PaymentMethod = method

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPayout", reqData)
		return c.Next()
	}
}

// SetDestination validates the payout destination email
func SetDestination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			PaypalEmail string `json:"paypal_email"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.PaypalEmail) == "" {
			errors["paypal_email"] = "PayPal email is required!"
		} else if err := validate.Var(reqData.PaypalEmail, "email"); err != nil {
			errors["paypal_email"] = "PayPal email is not valid!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedDestination", reqData)
		return c.Next()
	}
}
