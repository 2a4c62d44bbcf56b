package affiliateController

import (
	"lms/config"
	"lms/database"
	"lms/middleware"
	affiliateModels "lms/models/affiliate"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// JoinProgram enrolls the authenticated student into the affiliate program
func JoinProgram(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var existing affiliateModels.Affiliate
	if err := db.Where("user_id = ? AND is_deleted = false", userID).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Already enrolled in the affiliate program!", existing)
	}

	aff := affiliateModels.Affiliate{
		UserID:       userID,
		ReferralCode: utils.GenerateReferralCode(),
		IsActive:     true,
	}

	if err := db.Create(&aff).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to join affiliate program!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Welcome to the affiliate program!", fiber.Map{
		"affiliate":    aff,
		"referral_url": config.AppConfig.AffiliateBaseURL + "/r/" + aff.ReferralCode,
	})
}

// GetDashboard returns the affiliate's balances, counters and recent commissions
func GetDashboard(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var aff affiliateModels.Affiliate
	if err := db.Where("user_id = ? AND is_deleted = false", userID).First(&aff).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Not enrolled in the affiliate program!", nil)
	}

	var recentCommissions []affiliateModels.Commission
	db.Where("affiliate_id = ? AND is_deleted = false", aff.ID).
		Order("created_at DESC").Limit(10).Find(&recentCommissions)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", fiber.Map{
		"referral_code":         aff.ReferralCode,
		"referral_url":          config.AppConfig.AffiliateBaseURL + "/r/" + aff.ReferralCode,
		"is_active":             aff.IsActive,
		"pending_balance_cents": aff.PendingBalanceCents,
		"paid_balance_cents":    aff.PaidBalanceCents,
		"total_earnings_cents":  aff.TotalEarningsCents,
		"referral_count":        aff.ReferralCount,
		"link_clicks":           aff.LinkClicks,
		"conversion_rate":       aff.ConversionRate(),
		"paypal_email":          aff.PaypalEmail,
		"recent_commissions":    recentCommissions,
	})
}

// TrackReferralClick counts a click on a referral link and redirects to the
// landing page. Public route, no auth. Unknown codes still redirect.
func TrackReferralClick(c *fiber.Ctx) error {
	code := c.Params("code")
	db := database.Database.Db

	// Atomic increment, clicks can arrive concurrently
	db.Model(&affiliateModels.Affiliate{}).
		Where("referral_code = ? AND is_active = ? AND is_deleted = false", code, true).
		UpdateColumn("link_clicks", gorm.Expr("link_clicks + ?", 1))

	return c.Redirect(config.AppConfig.AffiliateBaseURL+"/signup?ref="+code, fiber.StatusFound)
}

// SetPayoutDestination stores the affiliate's PayPal address
func SetPayoutDestination(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedDestination").(*struct {
		PaypalEmail string `json:"paypal_email"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var aff affiliateModels.Affiliate
	if err := db.Where("user_id = ? AND is_deleted = false", userID).First(&aff).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Not enrolled in the affiliate program!", nil)
	}

	if err := db.Model(&aff).Update("paypal_email", reqData.PaypalEmail).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update payout destination!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payout destination updated!", fiber.Map{
		"paypal_email": reqData.PaypalEmail,
	})
}
