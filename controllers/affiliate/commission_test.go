package affiliateController_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"lms/config"
	affiliateController "lms/controllers/affiliate"
	"lms/database"
	"lms/middleware"
	"lms/models"
	affiliateModels "lms/models/affiliate"
	affiliateRoutes "lms/routers/affiliateRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAffiliateApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	config.LoadConfig()
	db, err := database.ConnectTestDb(t.Name())
	require.NoError(t, err)

	app := fiber.New()
	affiliateRoutes.SetupAffiliateRoutes(app)
	return app, db
}

func createAffiliate(t *testing.T, db *gorm.DB, email, paypalEmail string, pendingCents int64) (models.User, affiliateModels.Affiliate, string) {
	t.Helper()
	user := models.User{Name: "Affiliate", Email: email, Password: "x", Role: "STUDENT"}
	require.NoError(t, db.Create(&user).Error)

	aff := affiliateModels.Affiliate{
		UserID:              user.ID,
		ReferralCode:        "CODE" + email,
		IsActive:            true,
		PendingBalanceCents: pendingCents,
		TotalEarningsCents:  pendingCents,
		PaypalEmail:         paypalEmail,
	}
	require.NoError(t, db.Create(&aff).Error)

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	require.NoError(t, err)
	return user, aff, token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestCommissionAmountFloors(t *testing.T) {
	// 700 * 0.80 = 560, floor not round
	require.Equal(t, int64(560), affiliateController.CommissionAmountCents(700))
	require.Equal(t, int64(0), affiliateController.CommissionAmountCents(1))
	require.Equal(t, int64(79), affiliateController.CommissionAmountCents(99))
	require.Equal(t, int64(800), affiliateController.CommissionAmountCents(1000))
}

func TestAccrueCommission(t *testing.T) {
	_, db := setupAffiliateApp(t)
	_, aff, _ := createAffiliate(t, db, "a@test.com", "", 0)
	referred := models.User{Name: "Referred", Email: "r@test.com", Password: "x"}
	require.NoError(t, db.Create(&referred).Error)

	commission, err := affiliateController.AccrueCommission(db, aff.ID, referred.ID, 700)
	require.NoError(t, err)
	require.Equal(t, int64(560), commission.CommissionCents)
	require.Equal(t, affiliateModels.CommissionPending, commission.Status)

	var reloaded affiliateModels.Affiliate
	require.NoError(t, db.First(&reloaded, aff.ID).Error)
	require.Equal(t, int64(560), reloaded.PendingBalanceCents)
	require.Equal(t, int64(560), reloaded.TotalEarningsCents)
	require.Equal(t, int64(1), reloaded.ReferralCount)
}

func TestAccrueCommissionInactiveAffiliate(t *testing.T) {
	_, db := setupAffiliateApp(t)
	_, aff, _ := createAffiliate(t, db, "a@test.com", "", 0)
	require.NoError(t, db.Model(&affiliateModels.Affiliate{}).Where("id = ?", aff.ID).Update("is_active", false).Error)

	_, err := affiliateController.AccrueCommission(db, aff.ID, 99, 700)
	require.ErrorIs(t, err, affiliateController.ErrAffiliateInactive)

	var count int64
	db.Model(&affiliateModels.Commission{}).Count(&count)
	require.Equal(t, int64(0), count)
}

func TestCancelCommission(t *testing.T) {
	_, db := setupAffiliateApp(t)
	_, aff, _ := createAffiliate(t, db, "a@test.com", "", 0)

	commission, err := affiliateController.AccrueCommission(db, aff.ID, 99, 1000)
	require.NoError(t, err)

	require.NoError(t, affiliateController.CancelCommission(db, commission.ID))

	var reloaded affiliateModels.Affiliate
	require.NoError(t, db.First(&reloaded, aff.ID).Error)
	require.Equal(t, int64(0), reloaded.PendingBalanceCents)

	var c affiliateModels.Commission
	require.NoError(t, db.First(&c, commission.ID).Error)
	require.Equal(t, affiliateModels.CommissionCancelled, c.Status)

	// A second cancellation finds the commission settled
	require.ErrorIs(t, affiliateController.CancelCommission(db, commission.ID), affiliateController.ErrAlreadySettled)
}

func TestCancelCommissionAfterApproval(t *testing.T) {
	_, db := setupAffiliateApp(t)
	_, aff, _ := createAffiliate(t, db, "a@test.com", "", 0)

	commission, err := affiliateController.AccrueCommission(db, aff.ID, 99, 1000)
	require.NoError(t, err)
	require.NoError(t, db.Model(&affiliateModels.Commission{}).Where("id = ?", commission.ID).
		Update("status", affiliateModels.CommissionApproved).Error)

	require.ErrorIs(t, affiliateController.CancelCommission(db, commission.ID), affiliateController.ErrAlreadySettled)

	// Balance untouched
	var reloaded affiliateModels.Affiliate
	require.NoError(t, db.First(&reloaded, aff.ID).Error)
	require.Equal(t, int64(800), reloaded.PendingBalanceCents)
}

func TestCancelCommissionClampsAtZero(t *testing.T) {
	_, db := setupAffiliateApp(t)
	_, aff, _ := createAffiliate(t, db, "a@test.com", "", 0)

	commission, err := affiliateController.AccrueCommission(db, aff.ID, 99, 1000)
	require.NoError(t, err)

	// The balance was already drained elsewhere; cancellation must not go negative
	require.NoError(t, db.Model(&affiliateModels.Affiliate{}).Where("id = ?", aff.ID).
		Update("pending_balance_cents", 100).Error)

	require.NoError(t, affiliateController.CancelCommission(db, commission.ID))

	var reloaded affiliateModels.Affiliate
	require.NoError(t, db.First(&reloaded, aff.ID).Error)
	require.Equal(t, int64(0), reloaded.PendingBalanceCents)
}

func TestConversionRateGuardsDivideByZero(t *testing.T) {
	aff := affiliateModels.Affiliate{ReferralCount: 5, LinkClicks: 0}
	require.Equal(t, float64(0), aff.ConversionRate())

	aff.LinkClicks = 20
	require.InDelta(t, 0.25, aff.ConversionRate(), 0.001)
}
