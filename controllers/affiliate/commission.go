package affiliateController

import (
	"errors"
	affiliateModels "lms/models/affiliate"
	"math"

	"gorm.io/gorm"
)

// CommissionRate is the fixed affiliate share of a referred subscription
// payment. A business constant, not configurable per affiliate.
const CommissionRate = 0.80

// MinPayoutCents is the minimum pending balance required to request a payout ($20)
const MinPayoutCents int64 = 2000

var (
	ErrAffiliateInactive   = errors.New("affiliate is not active")
	ErrAffiliateNotFound   = errors.New("affiliate not found")
	ErrCommissionNotFound  = errors.New("commission not found")
	ErrAlreadySettled      = errors.New("commission is no longer pending")
	ErrInsufficientBalance = errors.New("pending balance changed concurrently")
)

// CommissionAmountCents computes floor(amount * rate), never rounding up
func CommissionAmountCents(subscriptionAmountCents int64) int64 {
	return int64(math.Floor(float64(subscriptionAmountCents) * CommissionRate))
}

// AccrueCommission credits an affiliate for a referred subscription payment.
// The balance and referral-count increments run as one UPDATE so concurrent
// accruals for the same affiliate never lose an update.
func AccrueCommission(db *gorm.DB, affiliateID, referredUserID uint, subscriptionAmountCents int64) (*affiliateModels.Commission, error) {
	var aff affiliateModels.Affiliate
	if err := db.Where("id = ? AND is_deleted = false", affiliateID).First(&aff).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrAffiliateNotFound
		}
		return nil, err
	}
	if !aff.IsActive {
		return nil, ErrAffiliateInactive
	}

	commissionCents := CommissionAmountCents(subscriptionAmountCents)

	commission := affiliateModels.Commission{
		AffiliateID:             affiliateID,
		ReferredUserID:          referredUserID,
		SubscriptionAmountCents: subscriptionAmountCents,
		CommissionRate:          CommissionRate,
		CommissionCents:         commissionCents,
		Status:                  affiliateModels.CommissionPending,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&commission).Error; err != nil {
			return err
		}
		return tx.Model(&affiliateModels.Affiliate{}).
			Where("id = ?", affiliateID).
			UpdateColumns(map[string]interface{}{
				"pending_balance_cents": gorm.Expr("pending_balance_cents + ?", commissionCents),
				"total_earnings_cents":  gorm.Expr("total_earnings_cents + ?", commissionCents),
				"referral_count":        gorm.Expr("referral_count + ?", 1),
			}).Error
	})
	if err != nil {
		return nil, err
	}

	return &commission, nil
}

// CancelCommission reverses a still-pending commission after a refund or
// chargeback. Settled commissions refuse cancellation. The balance decrement
// is clamped at zero in SQL so a cancellation arriving after a payout claim
// can never drive the balance negative.
func CancelCommission(db *gorm.DB, commissionID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var commission affiliateModels.Commission
		if err := tx.Where("id = ? AND is_deleted = false", commissionID).First(&commission).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return ErrCommissionNotFound
			}
			return err
		}

		// Only valid while pending; guard in SQL against a concurrent settle
		res := tx.Model(&affiliateModels.Commission{}).
			Where("id = ? AND status = ?", commissionID, affiliateModels.CommissionPending).
			Update("status", affiliateModels.CommissionCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadySettled
		}

		return tx.Model(&affiliateModels.Affiliate{}).
			Where("id = ?", commission.AffiliateID).
			UpdateColumns(map[string]interface{}{
				"pending_balance_cents": gorm.Expr(
					"CASE WHEN pending_balance_cents >= ? THEN pending_balance_cents - ? ELSE 0 END",
					commission.CommissionCents, commission.CommissionCents),
				"total_earnings_cents": gorm.Expr(
					"CASE WHEN total_earnings_cents >= ? THEN total_earnings_cents - ? ELSE 0 END",
					commission.CommissionCents, commission.CommissionCents),
			}).Error
	})
}
