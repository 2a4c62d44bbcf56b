package paymentController

import (
	"encoding/json"
	affiliateController "lms/controllers/affiliate"
	"lms/database"
	"lms/middleware"
	"lms/models"
	affiliateModels "lms/models/affiliate"
	"lms/utils"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HandlePaymentSettled processes a settlement notification from the payment
// provider. Duplicate deliveries of the same payment id are acknowledged with
// a conflict and never credited twice.
func HandlePaymentSettled(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPayment").(*struct {
		PaymentID    string `json:"payment_id"`
		UserID       uint   `json:"user_id"`
		AmountCents  int64  `json:"amount_cents"`
		ReferralCode string `json:"referral_code"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	// Duplicate delivery guard
	var existing models.SubscriptionPayment
	if err := db.Where("payment_id = ? AND is_deleted = false", reqData.PaymentID).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Payment already processed!", nil)
	}

	// Provider-side verification, skipped when no key is configured
	if err := utils.VerifyCharge(reqData.PaymentID, reqData.AmountCents); err != nil {
		log.Printf("Charge verification failed for %s: %v", reqData.PaymentID, err)
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Charge verification failed!", nil)
	}

	var payer models.User
	if err := db.Where("id = ? AND is_deleted = false", reqData.UserID).First(&payer).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	// Explicit code on the payment wins, otherwise the code captured at signup
	referralCode := reqData.ReferralCode
	if referralCode == "" {
		referralCode = payer.ReferredByCode
	}

	rawPayload, _ := json.Marshal(reqData)
	payment := models.SubscriptionPayment{
		PaymentID:    reqData.PaymentID,
		UserID:       reqData.UserID,
		AmountCents:  reqData.AmountCents,
		ReferralCode: referralCode,
		RawPayload:   string(rawPayload),
		PaidAt:       time.Now(),
	}

	commission, err := SettlePayment(db, &payment, payer.ID)
	if err != nil {
		// Lost the payment_id claim to a concurrent delivery of the same webhook
		var existing models.SubscriptionPayment
		if db.Where("payment_id = ? AND is_deleted = false", reqData.PaymentID).First(&existing).Error == nil {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Payment already processed!", nil)
		}
		log.Printf("Error recording payment %s: %v", reqData.PaymentID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record payment!", nil)
	}

	if commission != nil {
		var aff affiliateModels.Affiliate
		if err := db.Where("id = ?", commission.AffiliateID).First(&aff).Error; err == nil {
			var owner models.User
			if err := db.Where("id = ?", aff.UserID).First(&owner).Error; err == nil {
				go utils.SendCommissionEarnedEmail(owner.Email, owner.Name, commission.CommissionCents)
			}
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment processed!", fiber.Map{
		"payment_id":    payment.PaymentID,
		"commission_id": payment.CommissionID,
	})
}

// SettlePayment records the payment and accrues its referral commission in one
// transaction. The ledger insert goes first: two concurrent deliveries of the
// same payment_id race on the unique index, and the loser's whole settlement
// rolls back, so a payment can never be credited twice.
func SettlePayment(db *gorm.DB, payment *models.SubscriptionPayment, payerID uint) (*affiliateModels.Commission, error) {
	var commission *affiliateModels.Commission

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		if payment.ReferralCode == "" {
			return nil
		}

		var aff affiliateModels.Affiliate
		if err := tx.Where("referral_code = ? AND is_deleted = false", payment.ReferralCode).First(&aff).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}

		// Affiliates earn nothing on their own payments
		if aff.UserID == payerID {
			return nil
		}

		accrued, err := affiliateController.AccrueCommission(tx, aff.ID, payerID, payment.AmountCents)
		if err != nil {
			log.Printf("Commission accrual skipped for payment %s: %v", payment.PaymentID, err)
			return nil
		}
		commission = accrued

		payment.CommissionID = accrued.ID
		return tx.Model(payment).UpdateColumn("commission_id", accrued.ID).Error
	})
	if err != nil {
		return nil, err
	}

	return commission, nil
}

// HandlePaymentRefunded reverses the commission accrued for a refunded payment
func HandlePaymentRefunded(c *fiber.Ctx) error {
	reqData := new(struct {
		PaymentID string `json:"payment_id"`
	})
	if err := c.BodyParser(reqData); err != nil || reqData.PaymentID == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var payment models.SubscriptionPayment
	if err := db.Where("payment_id = ? AND is_deleted = false", reqData.PaymentID).First(&payment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Payment not found!", nil)
	}

	if payment.CommissionID == 0 {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Refund noted, no commission to reverse.", nil)
	}

	if err := affiliateController.CancelCommission(db, payment.CommissionID); err != nil {
		if err == affiliateController.ErrAlreadySettled {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Commission is no longer pending!", nil)
		}
		log.Printf("Error cancelling commission %d: %v", payment.CommissionID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reverse commission!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Commission reversed.", fiber.Map{
		"commission_id": payment.CommissionID,
	})
}
