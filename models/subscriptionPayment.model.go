package models

import (
	"time"

	"gorm.io/gorm"
)

// SubscriptionPayment is the ledger of settled payments reported by the
// payment-provider webhook. PaymentID is the provider-side id and guards
// against duplicate webhook deliveries.
type SubscriptionPayment struct {
	gorm.Model
	PaymentID    string    `gorm:"type:varchar(100);unique;not null" json:"paymentId"`
	UserID       uint      `gorm:"index;not null" json:"userId"`
	AmountCents  int64     `gorm:"not null" json:"amountCents"`
	ReferralCode string    `gorm:"type:varchar(64);index" json:"referralCode"`
	CommissionID uint      `gorm:"default:0" json:"commissionId"` // 0 when no affiliate was credited
	RawPayload   string    `gorm:"type:text" json:"-"`
	PaidAt       time.Time `gorm:"not null" json:"paidAt"`
	IsDeleted    bool      `gorm:"default:false"`
}

func (SubscriptionPayment) TableName() string {
	return "subscription_payments"
}
