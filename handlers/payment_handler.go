package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"nlas.ph/portal/config"
	"nlas.ph/portal/middleware"
	"nlas.ph/portal/models"
	"nlas.ph/portal/pkg/apperr"
	"nlas.ph/portal/pkg/realtime"
)

// ListPayments returns all payments, optionally filtered by status
func ListPayments(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Preload("Application").Order("created_at DESC")
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		q = q.Where("user_id = ?", userID)
	}

	var payments []models.Payment
	if err := q.Find(&payments).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

// ListMyPayments returns the authenticated client's own payments
func ListMyPayments(w http.ResponseWriter, r *http.Request) {
	var payments []models.Payment
	if err := config.DB.Preload("Application").
		Where("user_id = ?", middleware.GetUserID(r)).
		Order("created_at DESC").
		Find(&payments).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

// GetPayment returns one payment. Clients can only see their own.
func GetPayment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var payment models.Payment
	if err := config.DB.Preload("Application").First(&payment, "id = ?", id).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("payment not found"))
		return
	}

	claims := middleware.GetClaims(r)
	if claims != nil && claims.Role == "client" && payment.UserID.String() != claims.UserID {
		apperr.WriteJSON(w, apperr.NotFound("payment not found"))
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

type createPaymentReq struct {
	ApplicationID string             `json:"application_id" validate:"required,uuid"`
	PaymentType   models.PaymentType `json:"payment_type" validate:"required,oneof=step1 step2 full"`
	Amount        float64            `json:"amount" validate:"required,gt=0"`
}

// CreatePayment records a new payment owed on an application (admin)
func CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var app models.Application
	if err := config.DB.First(&app, "id = ?", req.ApplicationID).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("application not found"))
		return
	}

	payment := models.Payment{
		ApplicationID: app.ID,
		UserID:        app.UserID,
		PaymentType:   req.PaymentType,
		Amount:        req.Amount,
		Status:        models.PaymentStatusPending,
	}
	if err := config.DB.Create(&payment).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}

	publishChange("payments", realtime.EventInsert, payment, nil)
	writeJSON(w, http.StatusCreated, payment)
}

type updatePaymentReq struct {
	Amount       *float64 `json:"amount"`
	AdminNote    *string  `json:"admin_note"`
	UsdToPhpRate *float64 `json:"usd_to_php_rate"`
}

// UpdatePayment edits mutable fields of a non-terminal payment (admin)
func UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req updatePaymentReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var payment models.Payment
	if err := config.DB.First(&payment, "id = ?", id).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("payment not found"))
		return
	}
	if payment.IsTerminal() {
		apperr.WriteJSON(w, apperr.Validation("cannot edit a settled payment"))
		return
	}

	updates := map[string]interface{}{}
	if req.Amount != nil {
		if *req.Amount <= 0 {
			apperr.WriteJSON(w, apperr.Validation("amount must be positive"))
			return
		}
		updates["amount"] = *req.Amount
	}
	if req.AdminNote != nil {
		updates["admin_note"] = *req.AdminNote
	}
	if req.UsdToPhpRate != nil {
		updates["usd_to_php_rate"] = *req.UsdToPhpRate
	}
	if len(updates) > 0 {
		if err := config.DB.Model(&payment).Updates(updates).Error; err != nil {
			apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
			return
		}
	}

	publishChange("payments", realtime.EventUpdate, payment, nil)
	writeJSON(w, http.StatusOK, payment)
}

// DeletePayment removes a payment that never settled (admin)
func DeletePayment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var payment models.Payment
	if err := config.DB.First(&payment, "id = ?", id).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("payment not found"))
		return
	}
	if payment.Status == models.PaymentStatusPaid {
		apperr.WriteJSON(w, apperr.Validation("cannot delete a paid payment"))
		return
	}
	if err := config.DB.Delete(&payment).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}

	publishChange("payments", realtime.EventDelete, nil, payment)
	w.WriteHeader(http.StatusNoContent)
}

type submitProofReq struct {
	PaymentMethod models.PaymentMethod `json:"payment_method" validate:"required,oneof=bank_transfer e_wallet"`
	ProofFilePath string               `json:"proof_file_path" validate:"required"`
	UsdToPhpRate  *float64             `json:"usd_to_php_rate"`
}

// SubmitPaymentProof records a manual payment submission. The payment moves
// to pending_approval and waits for an admin to review the proof.
func SubmitPaymentProof(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req submitProofReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var payment models.Payment
	if err := config.DB.Where("id = ? AND user_id = ?", id, middleware.GetUserID(r)).First(&payment).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("payment not found"))
		return
	}
	if payment.IsTerminal() {
		apperr.WriteJSON(w, apperr.Validation("payment is already settled"))
		return
	}

	updates := map[string]interface{}{
		"payment_method":             req.PaymentMethod,
		"proof_of_payment_file_path": req.ProofFilePath,
		"status":                     models.PaymentStatusPendingApproval,
	}
	if req.UsdToPhpRate != nil {
		updates["usd_to_php_rate"] = *req.UsdToPhpRate
	}
	if err := config.DB.Model(&payment).Updates(updates).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}

	NewNotificationService().NotifyPaymentStatus(&payment)
	publishChange("payments", realtime.EventUpdate, payment, nil)
	writeJSON(w, http.StatusOK, payment)
}

// step1StatusFor finds the status of the sibling step1 payment on the same
// application; returns "" when there is none
func step1StatusFor(tx *gorm.DB, payment *models.Payment) models.PaymentStatus {
	if payment.PaymentType != models.PaymentTypeStep2 {
		return ""
	}
	var step1 models.Payment
	err := tx.Where("application_id = ? AND payment_type = ?", payment.ApplicationID, models.PaymentTypeStep1).
		First(&step1).Error
	if err != nil {
		return ""
	}
	return step1.Status
}

// settleUpdates builds the single write that settles a payment. The admin
// note travels with the status change so a blocked approval leaves nothing
// behind.
func settleUpdates(now time.Time, transactionID, adminNote string) map[string]interface{} {
	updates := map[string]interface{}{
		"status":  models.PaymentStatusPaid,
		"paid_at": now,
	}
	if transactionID != "" {
		updates["transaction_id"] = transactionID
	}
	if adminNote != "" {
		updates["admin_note"] = adminNote
	}
	return updates
}

// markPaid settles a payment and issues its receipt inside one transaction.
// Shared by admin approval and the gateway webhook.
func markPaid(payment *models.Payment, transactionID, adminNote string) error {
	return config.DB.Transaction(func(tx *gorm.DB) error {
		if !models.CanMarkPaid(payment.PaymentType, step1StatusFor(tx, payment)) {
			return apperr.Validation("step 2 cannot be paid before step 1")
		}

		now := time.Now()
		if err := tx.Model(payment).Updates(settleUpdates(now, transactionID, adminNote)).Error; err != nil {
			return err
		}
		payment.Status = models.PaymentStatusPaid
		payment.PaidAt = &now
		if adminNote != "" {
			payment.AdminNote = adminNote
		}

		receiptNumber, err := nextReceiptNumber(tx, now.Year())
		if err != nil {
			return err
		}
		receipt := models.Receipt{
			ReceiptNumber: receiptNumber,
			PaymentID:     payment.ID,
			UserID:        payment.UserID,
			Amount:        payment.Amount,
			PaymentType:   payment.PaymentType,
			Items:         receiptItemsFor(tx, payment),
		}
		return tx.Create(&receipt).Error
	})
}

// nextReceiptNumber allocates the next RCP-<year>-<seq> number. The count
// runs inside the caller's transaction; the unique index on receipt_number
// catches the rare concurrent collision.
func nextReceiptNumber(tx *gorm.DB, year int) (string, error) {
	prefix := fmt.Sprintf("RCP-%d-", year)
	var count int64
	if err := tx.Model(&models.Receipt{}).Where("receipt_number LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%06d", prefix, count+1), nil
}

// receiptItemsFor snapshots the service line items for the paid step, or
// falls back to a single line for the payment amount
func receiptItemsFor(tx *gorm.DB, payment *models.Payment) models.ReceiptItems {
	var app models.Application
	if err := tx.Preload("Service").First(&app, "id = ?", payment.ApplicationID).Error; err == nil && app.Service != nil {
		var items models.ReceiptItems
		for _, li := range app.Service.LineItems {
			if payment.PaymentType == models.PaymentTypeStep2 {
				if li.Step == nil || *li.Step != 2 {
					continue
				}
			} else if payment.PaymentType == models.PaymentTypeStep1 {
				if li.Step != nil && *li.Step == 2 {
					continue
				}
			}
			items = append(items, models.ReceiptItem{Name: li.Description, Amount: li.Amount})
		}
		if len(items) > 0 {
			return items
		}
	}
	return models.ReceiptItems{{Name: fmt.Sprintf("%s payment", payment.PaymentType), Amount: payment.Amount}}
}

type reviewPaymentReq struct {
	AdminNote string `json:"admin_note"`
}

// ApprovePayment settles a manually submitted payment after proof review.
// Step ordering is enforced here, not in the client.
func ApprovePayment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req reviewPaymentReq
	decodeJSON(r, &req) // note is optional; ignore body errors

	var payment models.Payment
	if err := config.DB.First(&payment, "id = ?", id).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("payment not found"))
		return
	}
	if payment.Status != models.PaymentStatusPendingApproval {
		apperr.WriteJSON(w, apperr.Validation("payment is not awaiting approval"))
		return
	}

	if err := markPaid(&payment, "", req.AdminNote); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	NewNotificationService().NotifyPaymentStatus(&payment)
	publishChange("payments", realtime.EventUpdate, payment, nil)
	writeJSON(w, http.StatusOK, payment)
}

// RejectPayment sends a submitted payment back with a reason
func RejectPayment(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req reviewPaymentReq
	decodeJSON(r, &req)

	var payment models.Payment
	if err := config.DB.First(&payment, "id = ?", id).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("payment not found"))
		return
	}
	if payment.Status != models.PaymentStatusPendingApproval {
		apperr.WriteJSON(w, apperr.Validation("payment is not awaiting approval"))
		return
	}

	updates := map[string]interface{}{
		"status":     models.PaymentStatusFailed,
		"admin_note": req.AdminNote,
	}
	if err := config.DB.Model(&payment).Updates(updates).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	payment.Status = models.PaymentStatusFailed
	payment.AdminNote = req.AdminNote

	NewNotificationService().NotifyPaymentStatus(&payment)
	publishChange("payments", realtime.EventUpdate, payment, nil)
	writeJSON(w, http.StatusOK, payment)
}

// GetReceipt returns the receipt issued for a payment
func GetReceipt(w http.ResponseWriter, r *http.Request) {
	paymentID := mux.Vars(r)["id"]

	var receipt models.Receipt
	if err := config.DB.First(&receipt, "payment_id = ?", paymentID).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("receipt not found"))
		return
	}

	claims := middleware.GetClaims(r)
	if claims != nil && claims.Role == "client" && receipt.UserID.String() != claims.UserID {
		apperr.WriteJSON(w, apperr.NotFound("receipt not found"))
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// ListMyReceipts returns the authenticated client's receipts
func ListMyReceipts(w http.ResponseWriter, r *http.Request) {
	var receipts []models.Receipt
	if err := config.DB.Where("user_id = ?", middleware.GetUserID(r)).
		Order("created_at DESC").Find(&receipts).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, receipts)
}
