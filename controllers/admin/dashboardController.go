package adminController

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	affiliateModels "lms/models/affiliate"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
)

// GetDashboard returns the platform KPI roll-up: revenue, commission totals
// by status, exam activity and headcounts. Pure aggregate reads.
func GetDashboard(c *fiber.Ctx) error {
	db := database.Database.Db

	var totalStudents int64
	db.Model(&models.User{}).Where("role = ? AND is_deleted = false", "STUDENT").Count(&totalStudents)

	var totalAffiliates int64
	db.Model(&affiliateModels.Affiliate{}).Where("is_deleted = false").Count(&totalAffiliates)

	var activeAffiliates int64
	db.Model(&affiliateModels.Affiliate{}).Where("is_active = ? AND is_deleted = false", true).Count(&activeAffiliates)

	var revenueCents int64
	db.Model(&models.SubscriptionPayment{}).Where("is_deleted = false").
		Select("COALESCE(SUM(amount_cents), 0)").Scan(&revenueCents)

	commissionTotals := make(map[string]int64)
	for _, status := range []affiliateModels.CommissionStatus{
		affiliateModels.CommissionPending,
		affiliateModels.CommissionApproved,
		affiliateModels.CommissionPaid,
		affiliateModels.CommissionCancelled,
	} {
		var cents int64
		db.Model(&affiliateModels.Commission{}).
			Where("status = ? AND is_deleted = false", status).
			Select("COALESCE(SUM(commission_cents), 0)").Scan(&cents)
		commissionTotals[string(status)] = cents
	}

	var pendingPayouts int64
	db.Model(&affiliateModels.Payout{}).
		Where("status = ? AND is_deleted = false", affiliateModels.PayoutPending).Count(&pendingPayouts)

	var totalAttempts int64
	db.Model(&courseModels.ExamAttempt{}).Where("is_deleted = false").Count(&totalAttempts)

	var passedAttempts int64
	db.Model(&courseModels.ExamAttempt{}).Where("passed = ? AND is_deleted = false", true).Count(&passedAttempts)

	passRate := float64(0)
	if totalAttempts > 0 {
		passRate = float64(passedAttempts) / float64(totalAttempts) * 100
	}

	var certificatesIssued int64
	db.Model(&courseModels.Certificate{}).Where("is_deleted = false").Count(&certificatesIssued)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", fiber.Map{
		"total_students":          totalStudents,
		"total_affiliates":        totalAffiliates,
		"active_affiliates":       activeAffiliates,
		"revenue_cents":           revenueCents,
		"commission_totals_cents": commissionTotals,
		"pending_payouts":         pendingPayouts,
		"total_exam_attempts":     totalAttempts,
		"exam_pass_rate":          passRate,
		"certificates_issued":     certificatesIssued,
	})
}
