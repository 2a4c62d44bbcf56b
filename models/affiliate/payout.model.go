package affiliate

import (
	"time"

	"gorm.io/gorm"
)

// PayoutStatus defines the status of a payout request
type PayoutStatus string

const (
	PayoutPending    PayoutStatus = "PENDING"
	PayoutProcessing PayoutStatus = "PROCESSING"
	PayoutCompleted  PayoutStatus = "COMPLETED"
	PayoutFailed     PayoutStatus = "FAILED"
	PayoutCancelled  PayoutStatus = "CANCELLED"
)

// Payout is a request to transfer an affiliate's whole pending balance.
// Creating one claims the balance in the same transaction, so two concurrent
// requests can never both succeed against the same money.
type Payout struct {
	gorm.Model
	AffiliateID   uint         `json:"affiliate_id" gorm:"index;not null"`
	AmountCents   int64        `json:"amount_cents" gorm:"not null"`
	PaymentMethod string       `json:"payment_method" gorm:"type:varchar(50);not null"`
	Status        PayoutStatus `json:"status" gorm:"type:varchar(20);default:'PENDING';index"`
	ProcessedAt   *time.Time   `json:"processed_at"`
	FailureReason string       `json:"failure_reason" gorm:"default:''"`
	IsDeleted     bool         `gorm:"default:false"`
}
