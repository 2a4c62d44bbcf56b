package utils

import (
	"fmt"
	"lms/config"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

// chargeResponse is the subset of the provider's charge object we care about
type chargeResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Outcome  string `json:"outcome"`
	Currency string `json:"currency_code"`
}

// VerifyCharge asks the payment provider whether a charge id exists, settled
// and matches the reported amount. When no provider key is configured the
// webhook payload is trusted as-is (local development, tests).
func VerifyCharge(paymentID string, amountCents int64) error {
	if config.AppConfig == nil || config.AppConfig.PaymentApiKey == "" {
		return nil
	}

	client := resty.New().
		SetBaseURL(config.AppConfig.PaymentApiURL).
		SetAuthToken(config.AppConfig.PaymentApiKey).
		SetTimeout(10 * time.Second)

	var charge chargeResponse
	resp, err := client.R().
		SetResult(&charge).
		Get("charges/" + paymentID)
	if err != nil {
		log.Printf("Error verifying charge %s: %v", paymentID, err)
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("charge %s lookup failed with status %d", paymentID, resp.StatusCode())
	}
	if charge.Amount != amountCents {
		return fmt.Errorf("charge %s amount mismatch: provider %d, webhook %d", paymentID, charge.Amount, amountCents)
	}
	return nil
}
