package paymentController_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"lms/config"
	paymentController "lms/controllers/payment"
	"lms/database"
	"lms/models"
	affiliateModels "lms/models/affiliate"
	paymentRoutes "lms/routers/paymentRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupWebhookApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	config.LoadConfig()
	db, err := database.ConnectTestDb(t.Name())
	require.NoError(t, err)

	app := fiber.New()
	paymentRoutes.SetupWebhookRoutes(app)
	return app, db
}

func seedReferral(t *testing.T, db *gorm.DB) (models.User, affiliateModels.Affiliate, models.User) {
	t.Helper()
	owner := models.User{Name: "Owner", Email: "owner@test.com", Password: "x"}
	require.NoError(t, db.Create(&owner).Error)

	aff := affiliateModels.Affiliate{UserID: owner.ID, ReferralCode: "REF123", IsActive: true}
	require.NoError(t, db.Create(&aff).Error)

	payer := models.User{Name: "Payer", Email: "payer@test.com", Password: "x", ReferredByCode: "REF123"}
	require.NoError(t, db.Create(&payer).Error)

	return owner, aff, payer
}

func postJSON(t *testing.T, app *fiber.App, path string, body interface{}) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestPaymentSettledAccruesCommission(t *testing.T) {
	app, db := setupWebhookApp(t)
	_, aff, payer := seedReferral(t, db)

	resp := postJSON(t, app, "/webhook/payment", fiber.Map{
		"payment_id":   "pay_001",
		"user_id":      payer.ID,
		"amount_cents": 700,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// 700 * 0.80 floored
	var commission affiliateModels.Commission
	require.NoError(t, db.Where("affiliate_id = ?", aff.ID).First(&commission).Error)
	require.Equal(t, int64(560), commission.CommissionCents)
	require.Equal(t, affiliateModels.CommissionPending, commission.Status)
	require.Equal(t, payer.ID, commission.ReferredUserID)

	var reloaded affiliateModels.Affiliate
	require.NoError(t, db.First(&reloaded, aff.ID).Error)
	require.Equal(t, int64(560), reloaded.PendingBalanceCents)

	var payment models.SubscriptionPayment
	require.NoError(t, db.Where("payment_id = ?", "pay_001").First(&payment).Error)
	require.Equal(t, commission.ID, payment.CommissionID)
	require.Equal(t, "REF123", payment.ReferralCode)
}

func TestPaymentSettledDuplicateDelivery(t *testing.T) {
	app, db := setupWebhookApp(t)
	_, aff, payer := seedReferral(t, db)

	body := fiber.Map{"payment_id": "pay_001", "user_id": payer.ID, "amount_cents": 700}

	resp := postJSON(t, app, "/webhook/payment", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Redelivery is acknowledged but never credited twice
	resp = postJSON(t, app, "/webhook/payment", body)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var count int64
	db.Model(&affiliateModels.Commission{}).Count(&count)
	require.Equal(t, int64(1), count)

	var reloaded affiliateModels.Affiliate
	require.NoError(t, db.First(&reloaded, aff.ID).Error)
	require.Equal(t, int64(560), reloaded.PendingBalanceCents)
}

func TestSettlePaymentConcurrentDeliveryCreditsOnce(t *testing.T) {
	_, db := setupWebhookApp(t)
	_, aff, payer := seedReferral(t, db)

	// Two deliveries of the same payment both read the ledger before either
	// wrote it; the insert-first transaction lets only one settle.
	first := models.SubscriptionPayment{
		PaymentID: "pay_race", UserID: payer.ID, AmountCents: 700, ReferralCode: "REF123", PaidAt: time.Now(),
	}
	second := models.SubscriptionPayment{
		PaymentID: "pay_race", UserID: payer.ID, AmountCents: 700, ReferralCode: "REF123", PaidAt: time.Now(),
	}

	commission, err := paymentController.SettlePayment(db, &first, payer.ID)
	require.NoError(t, err)
	require.NotNil(t, commission)
	require.Equal(t, int64(560), commission.CommissionCents)

	_, err = paymentController.SettlePayment(db, &second, payer.ID)
	require.Error(t, err)

	// One ledger row, one commission, one credit of 560
	var payments int64
	db.Model(&models.SubscriptionPayment{}).Where("payment_id = ?", "pay_race").Count(&payments)
	require.Equal(t, int64(1), payments)

	var commissions int64
	db.Model(&affiliateModels.Commission{}).Count(&commissions)
	require.Equal(t, int64(1), commissions)

	var reloaded affiliateModels.Affiliate
	require.NoError(t, db.First(&reloaded, aff.ID).Error)
	require.Equal(t, int64(560), reloaded.PendingBalanceCents)
	require.Equal(t, int64(1), reloaded.ReferralCount)
}

func TestPaymentSettledNoReferral(t *testing.T) {
	app, db := setupWebhookApp(t)

	payer := models.User{Name: "Solo", Email: "solo@test.com", Password: "x"}
	require.NoError(t, db.Create(&payer).Error)

	resp := postJSON(t, app, "/webhook/payment", fiber.Map{
		"payment_id":   "pay_002",
		"user_id":      payer.ID,
		"amount_cents": 700,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	db.Model(&affiliateModels.Commission{}).Count(&count)
	require.Equal(t, int64(0), count)

	// The payment itself is still recorded
	var payment models.SubscriptionPayment
	require.NoError(t, db.Where("payment_id = ?", "pay_002").First(&payment).Error)
	require.Zero(t, payment.CommissionID)
}

func TestPaymentSettledSelfReferral(t *testing.T) {
	app, db := setupWebhookApp(t)
	owner, aff, _ := seedReferral(t, db)

	// The affiliate pays with their own referral code
	resp := postJSON(t, app, "/webhook/payment", fiber.Map{
		"payment_id":    "pay_003",
		"user_id":       owner.ID,
		"amount_cents":  700,
		"referral_code": "REF123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	db.Model(&affiliateModels.Commission{}).Count(&count)
	require.Equal(t, int64(0), count)

	var reloaded affiliateModels.Affiliate
	require.NoError(t, db.First(&reloaded, aff.ID).Error)
	require.Equal(t, int64(0), reloaded.PendingBalanceCents)
}

func TestPaymentRefundReversesCommission(t *testing.T) {
	app, db := setupWebhookApp(t)
	_, aff, payer := seedReferral(t, db)

	resp := postJSON(t, app, "/webhook/payment", fiber.Map{
		"payment_id":   "pay_004",
		"user_id":      payer.ID,
		"amount_cents": 1000,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, app, "/webhook/refund", fiber.Map{"payment_id": "pay_004"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var commission affiliateModels.Commission
	require.NoError(t, db.Where("affiliate_id = ?", aff.ID).First(&commission).Error)
	require.Equal(t, affiliateModels.CommissionCancelled, commission.Status)

	var reloaded affiliateModels.Affiliate
	require.NoError(t, db.First(&reloaded, aff.ID).Error)
	require.Equal(t, int64(0), reloaded.PendingBalanceCents)

	// A second refund for the same payment finds the commission settled
	resp = postJSON(t, app, "/webhook/refund", fiber.Map{"payment_id": "pay_004"})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestPaymentRefundUnknownPayment(t *testing.T) {
	app, _ := setupWebhookApp(t)

	resp := postJSON(t, app, "/webhook/refund", fiber.Map{"payment_id": "pay_missing"})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
