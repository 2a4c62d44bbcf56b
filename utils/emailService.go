package utils

import (
	"fmt"
	"lms/config"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail sends an HTML email through SendGrid. Skipped silently when no
// API key is configured (local development, tests).
func SendEmail(toEmail, toName, subject, htmlBody string) error {
	if config.AppConfig == nil || config.AppConfig.SendGridApiKey == "" {
		log.Printf("Email skipped (no SendGrid key): %s -> %s", subject, toEmail)
		return nil
	}

	from := mail.NewEmail("LMS", config.AppConfig.EmailSender)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendGridApiKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("Error sending email to %s: %v", toEmail, err)
		return err
	}
	if resp.StatusCode >= 400 {
		log.Printf("SendGrid rejected email to %s: %d %s", toEmail, resp.StatusCode, resp.Body)
		return fmt.Errorf("sendgrid responded with status %d", resp.StatusCode)
	}
	return nil
}

// SendPayoutRequestedEmail notifies an affiliate their payout request was recorded
func SendPayoutRequestedEmail(toEmail, toName string, amountCents int64) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>We received your payout request for <b>$%.2f</b>.
		It will be processed within 5 business days.</p>`, toName, float64(amountCents)/100)
	if err := SendEmail(toEmail, toName, "Payout request received", body); err != nil {
		log.Printf("Failed to send payout requested email: %v", err)
	}
}

// SendPayoutCompletedEmail notifies an affiliate their payout was processed
func SendPayoutCompletedEmail(toEmail, toName string, amountCents int64) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your payout of <b>$%.2f</b> has been sent to your PayPal account.</p>`, toName, float64(amountCents)/100)
	if err := SendEmail(toEmail, toName, "Payout completed", body); err != nil {
		log.Printf("Failed to send payout completed email: %v", err)
	}
}

// SendCommissionEarnedEmail notifies an affiliate about a new referral commission
func SendCommissionEarnedEmail(toEmail, toName string, commissionCents int64) {
	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>You just earned a <b>$%.2f</b> commission from a referral. Keep sharing!</p>`, toName, float64(commissionCents)/100)
	if err := SendEmail(toEmail, toName, "You earned a commission!", body); err != nil {
		log.Printf("Failed to send commission earned email: %v", err)
	}
}
