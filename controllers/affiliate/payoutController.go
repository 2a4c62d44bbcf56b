package affiliateController

import (
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

// RequestPayout creates a payout request for the affiliate's whole pending
// balance. The balance claim is a guarded conditional UPDATE inside the same
// transaction as the payout insert, so two concurrent requests can never both
// claim the same money.
func RequestPayout(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedPayout").(*struct {
		PaymentMethod string `json:"payment_method"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db

	var aff affiliateModels.Affiliate
	if err := db.Where("user_id = ? AND is_deleted = false", userID).First(&aff).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Not enrolled in the affiliate program!", nil)
	}

	// Preconditions, checked before any mutation
	if aff.PaypalEmail == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Configure a payout destination first!", fiber.Map{"reason": "PayoutDestinationMissing"})
	}
	if aff.PendingBalanceCents < MinPayoutCents {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Pending balance is below the minimum payout!", fiber.Map{
			"reason":                "BelowMinimumPayout",
			"pending_balance_cents": aff.PendingBalanceCents,
			"min_payout_cents":      MinPayoutCents,
		})
	}

	amount := aff.PendingBalanceCents
	payout, err := ClaimPayout(db, aff.ID, amount, reqData.PaymentMethod)
	if err != nil {
		if err == ErrInsufficientBalance {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Pending balance was already claimed!", fiber.Map{"reason": "InsufficientBalance"})
		}
		log.Printf("Error creating payout for affiliate %d: %v", aff.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create payout request!", nil)
	}

	// Notify, outside the transaction
	var user models.User
	if err := db.Where("id = ?", aff.UserID).First(&user).Error; err == nil {
		go utils.SendPayoutRequestedEmail(user.Email, user.Name, amount)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Payout request created!", payout)
}

// ClaimPayout claims amount from the affiliate's pending balance and records
// the payout in one transaction. The amount was read before the claim, so the
// guarded UPDATE re-checks it: a concurrent request that got here first shrinks
// the balance, the guard matches no row, and the loser gets
// ErrInsufficientBalance with nothing written.
func ClaimPayout(db *gorm.DB, affiliateID uint, amount int64, paymentMethod string) (*affiliateModels.Payout, error) {
	payout := affiliateModels.Payout{
		AffiliateID:   affiliateID,
		AmountCents:   amount,
		PaymentMethod: paymentMethod,
		Status:        affiliateModels.PayoutPending,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&affiliateModels.Affiliate{}).
			Where("id = ? AND pending_balance_cents >= ?", affiliateID, amount).
			UpdateColumn("pending_balance_cents", gorm.Expr("pending_balance_cents - ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientBalance
		}

		if err := tx.Create(&payout).Error; err != nil {
			return err
		}

		// Approved commissions are batched into this payout
		return tx.Model(&affiliateModels.Commission{}).
			Where("affiliate_id = ? AND status = ? AND is_deleted = false", affiliateID, affiliateModels.CommissionApproved).
			Updates(map[string]interface{}{
				"status":    affiliateModels.CommissionPaid,
				"payout_id": payout.ID,
			}).Error
	})
	if err != nil {
		return nil, err
	}

	return &payout, nil
}

// GetPayoutHistory lists the affiliate's own payout requests
func GetPayoutHistory(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	db := database.Database.Db

	var aff affiliateModels.Affiliate
	if err := db.Where("user_id = ? AND is_deleted = false", userID).First(&aff).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Not enrolled in the affiliate program!", nil)
	}

	var payouts []affiliateModels.Payout
	if err := db.Where("affiliate_id = ? AND is_deleted = false", aff.ID).
		Order("created_at DESC").Find(&payouts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payouts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payouts fetched successfully!", fiber.Map{
		"payouts": payouts,
	})
}

// ListAllPayouts lists payout requests across affiliates (admin)
func ListAllPayouts(c *fiber.Ctx) error {
	status := c.Query("status")
	db := database.Database.Db

	query := db.Model(&affiliateModels.Payout{}).Where("is_deleted = false")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var payouts []affiliateModels.Payout
	if err := query.Order("created_at ASC").Find(&payouts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payouts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payouts fetched successfully!", fiber.Map{
		"payouts": payouts,
	})
}

// CompletePayout marks a payout completed after the money actually moved (admin)
func CompletePayout(c *fiber.Ctx) error {
	payoutID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid payout id!", nil)
	}

	db := database.Database.Db

	var payout affiliateModels.Payout
	if err := db.Where("id = ? AND is_deleted = false", payoutID).First(&payout).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Payout not found!", nil)
	}

	if payout.Status != affiliateModels.PayoutPending && payout.Status != affiliateModels.PayoutProcessing {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Payout is not awaiting processing!", fiber.Map{"status": payout.Status})
	}

	now := time.Now()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&payout).Updates(map[string]interface{}{
			"status":       affiliateModels.PayoutCompleted,
			"processed_at": now,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&affiliateModels.Affiliate{}).
			Where("id = ?", payout.AffiliateID).
			UpdateColumn("paid_balance_cents", gorm.Expr("paid_balance_cents + ?", payout.AmountCents)).Error
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to complete payout!", nil)
	}

	var aff affiliateModels.Affiliate
	if err := db.Where("id = ?", payout.AffiliateID).First(&aff).Error; err == nil {
		var user models.User
		if err := db.Where("id = ?", aff.UserID).First(&user).Error; err == nil {
			go utils.SendPayoutCompletedEmail(user.Email, user.Name, payout.AmountCents)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payout completed!", payout)
}

// FailPayout marks a payout failed and restores its amount to the affiliate's
// pending balance (admin)
func FailPayout(c *fiber.Ctx) error {
	payoutID, err := c.ParamsInt("id")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid payout id!", nil)
	}

	reqData := new(struct {
		Reason string `json:"reason"`
	})
	if err := c.BodyParser(reqData); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	db := database.Database.Db

	var payout affiliateModels.Payout
	if err := db.Where("id = ? AND is_deleted = false", payoutID).First(&payout).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Payout not found!", nil)
	}

	if payout.Status != affiliateModels.PayoutPending && payout.Status != affiliateModels.PayoutProcessing {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Payout is not awaiting processing!", fiber.Map{"status": payout.Status})
	}

	now := time.Now()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&payout).Updates(map[string]interface{}{
			"status":         affiliateModels.PayoutFailed,
			"processed_at":   now,
			"failure_reason": reqData.Reason,
		}).Error; err != nil {
			return err
		}
		// Money never moved; give the balance back
		if err := tx.Model(&affiliateModels.Affiliate{}).
			Where("id = ?", payout.AffiliateID).
			UpdateColumn("pending_balance_cents", gorm.Expr("pending_balance_cents + ?", payout.AmountCents)).Error; err != nil {
			return err
		}
		// Commissions batched into this payout become payable again
		return tx.Model(&affiliateModels.Commission{}).
			Where("payout_id = ? AND status = ?", payout.ID, affiliateModels.CommissionPaid).
			Updates(map[string]interface{}{
				"status":    affiliateModels.CommissionApproved,
				"payout_id": 0,
			}).Error
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update payout!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payout marked failed, balance restored.", payout)
}
