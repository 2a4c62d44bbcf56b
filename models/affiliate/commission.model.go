package affiliate

import "gorm.io/gorm"

// CommissionStatus defines the lifecycle state of a commission
type CommissionStatus string

const (
	CommissionPending   CommissionStatus = "PENDING"   // credited, settlement window open
	CommissionApproved  CommissionStatus = "APPROVED"  // payment settled
	CommissionPaid      CommissionStatus = "PAID"      // included in a payout
	CommissionCancelled CommissionStatus = "CANCELLED" // refund or chargeback
)

// Commission is the credit owed to an affiliate for one referred payment
type Commission struct {
	gorm.Model
	AffiliateID             uint             `json:"affiliate_id" gorm:"index;not null"`
	ReferredUserID          uint             `json:"referred_user_id" gorm:"index;not null"`
	SubscriptionAmountCents int64            `json:"subscription_amount_cents" gorm:"not null"`
	CommissionRate          float64          `json:"commission_rate" gorm:"not null"`
	CommissionCents         int64            `json:"commission_cents" gorm:"not null"`
	Status                  CommissionStatus `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`
	PayoutID                uint             `json:"payout_id" gorm:"default:0"` // set once status becomes PAID
	IsDeleted               bool             `gorm:"default:false"`
}
