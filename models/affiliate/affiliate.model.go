package affiliate

import "gorm.io/gorm"

// Affiliate is a student enrolled in the referral program.
// PendingBalanceCents only ever decreases through a payout claim or a
// commission cancellation, both via guarded conditional updates.
type Affiliate struct {
	gorm.Model
	UserID              uint   `json:"user_id" gorm:"unique;not null"`
	ReferralCode        string `json:"referral_code" gorm:"type:varchar(64);unique;not null"`
	IsActive            bool   `json:"is_active" gorm:"default:true"`
	PendingBalanceCents int64  `json:"pending_balance_cents" gorm:"default:0"`
	PaidBalanceCents    int64  `json:"paid_balance_cents" gorm:"default:0"`
	TotalEarningsCents  int64  `json:"total_earnings_cents" gorm:"default:0"`
	ReferralCount       int64  `json:"referral_count" gorm:"default:0"`
	LinkClicks          int64  `json:"link_clicks" gorm:"default:0"`
	PaypalEmail         string `json:"paypal_email" gorm:"default:''"`
	IsDeleted           bool   `gorm:"default:false"`
}

// ConversionRate is referrals per link click, 0 when nothing was clicked yet
func (a Affiliate) ConversionRate() float64 {
	if a.LinkClicks == 0 {
		return 0
	}
	return float64(a.ReferralCount) / float64(a.LinkClicks)
}
