package utils

import (
	"lms/database"
	affiliateModels "lms/models/affiliate"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// CommissionSettlementDays is the refund window a commission stays PENDING
// before it settles and becomes eligible for payout batching.
const CommissionSettlementDays = 14

// InitializeCommissionScheduler sets up the commission settlement scheduler
func InitializeCommissionScheduler() {
	log.Println("[COMMISSION-SCHEDULER] Initializing commission scheduler...")

	c := cron.New()

	// Run daily at 6 AM to settle commissions past the refund window
	c.AddFunc("0 6 * * *", func() {
		log.Println("[COMMISSION-SCHEDULER] Running daily commission settlement...")
		SettleCommissions()
	})

	c.Start()
	log.Println("[COMMISSION-SCHEDULER] Commission scheduler started - runs daily at 6 AM")
}

// SettleCommissions promotes PENDING commissions older than the settlement
// window to APPROVED. Cancelled commissions are never touched.
func SettleCommissions() {
	db := database.Database.Db
	cutoff := time.Now().AddDate(0, 0, -CommissionSettlementDays)

	result := db.Model(&affiliateModels.Commission{}).
		Where("status = ? AND created_at < ? AND is_deleted = false", affiliateModels.CommissionPending, cutoff).
		Update("status", affiliateModels.CommissionApproved)

	if result.Error != nil {
		log.Printf("[COMMISSION-SCHEDULER] Error settling commissions: %v", result.Error)
		return
	}

	if result.RowsAffected > 0 {
		log.Printf("[COMMISSION-SCHEDULER] Settled %d commissions", result.RowsAffected)
	}
}
