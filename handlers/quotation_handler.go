package handlers

import (
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"nlas.ph/portal/config"
	"nlas.ph/portal/middleware"
	"nlas.ph/portal/models"
	"nlas.ph/portal/pkg/apperr"
	"nlas.ph/portal/pkg/realtime"
)

// quotationAmount totals the line items with tax on taxable entries. When
// there are no line items the explicitly provided amount stands.
func quotationAmount(items models.LineItems, fallback float64) float64 {
	if len(items) == 0 {
		return fallback
	}
	var total float64
	for _, li := range items {
		total += li.Amount
		if li.IsTaxable() {
			total += li.Amount * models.TaxRate
		}
	}
	return math.Round(total*100) / 100
}

// ListQuotations returns all quotations (admin)
func ListQuotations(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Order("created_at DESC")
	if state := r.URL.Query().Get("state"); state != "" {
		q = q.Where("state = ?", state)
	}

	var quotations []models.Quotation
	if err := q.Find(&quotations).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, quotations)
}

// ListMyQuotations returns the authenticated client's quotations
func ListMyQuotations(w http.ResponseWriter, r *http.Request) {
	var quotations []models.Quotation
	if err := config.DB.Where("user_id = ?", middleware.GetUserID(r)).
		Order("created_at DESC").Find(&quotations).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, quotations)
}

// GetQuotation returns one quotation. Clients only see their own.
func GetQuotation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var quotation models.Quotation
	if err := config.DB.First(&quotation, "id = ?", id).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("quotation not found"))
		return
	}

	claims := middleware.GetClaims(r)
	if claims != nil && claims.Role == "client" {
		if quotation.UserID == nil || quotation.UserID.String() != claims.UserID {
			apperr.WriteJSON(w, apperr.NotFound("quotation not found"))
			return
		}
	}
	writeJSON(w, http.StatusOK, quotation)
}

type quotationReq struct {
	UserID          string                      `json:"user_id"`
	Service         string                      `json:"service" validate:"required"`
	Description     string                      `json:"description"`
	Amount          float64                     `json:"amount"`
	PaymentType     models.QuotationPaymentType `json:"payment_type" validate:"omitempty,oneof=full staggered"`
	LineItems       models.LineItems            `json:"line_items"`
	ClientFirstName string                      `json:"client_first_name" validate:"required"`
	ClientLastName  string                      `json:"client_last_name"`
	ClientEmail     string                      `json:"client_email" validate:"required,email"`
	ClientMobile    string                      `json:"client_mobile"`
	ValidityDate    *time.Time                  `json:"validity_date"`
	State           models.QuotationState       `json:"state" validate:"omitempty,oneof=draft sent accepted declined expired"`
}

// CreateQuotation creates a quotation (admin)
func CreateQuotation(w http.ResponseWriter, r *http.Request) {
	var req quotationReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	quotation := models.Quotation{
		Service:         req.Service,
		Description:     req.Description,
		Amount:          quotationAmount(req.LineItems, req.Amount),
		PaymentType:     req.PaymentType,
		LineItems:       req.LineItems,
		ClientFirstName: req.ClientFirstName,
		ClientLastName:  req.ClientLastName,
		ClientEmail:     strings.ToLower(req.ClientEmail),
		ClientMobile:    req.ClientMobile,
		ValidityDate:    req.ValidityDate,
		State:           models.QuotationStateDraft,
	}
	if req.PaymentType == "" {
		quotation.PaymentType = models.QuotationPaymentFull
	}
	if req.State != "" {
		quotation.State = req.State
	}

	// Attach to an existing account when one matches
	if req.UserID != "" {
		var u models.User
		if err := config.DB.First(&u, "id = ?", req.UserID).Error; err == nil {
			quotation.UserID = &u.ID
		}
	} else {
		var u models.User
		if err := config.DB.First(&u, "email = ?", quotation.ClientEmail).Error; err == nil {
			quotation.UserID = &u.ID
		}
	}

	if err := config.DB.Create(&quotation).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}

	publishChange("quotations", realtime.EventInsert, quotation, nil)
	writeJSON(w, http.StatusCreated, quotation)
}

// UpdateQuotation edits a quotation (admin). Amount is rederived whenever
// line items change.
func UpdateQuotation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var quotation models.Quotation
	if err := config.DB.First(&quotation, "id = ?", id).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("quotation not found"))
		return
	}

	var req quotationReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	quotation.Service = req.Service
	quotation.Description = req.Description
	quotation.LineItems = req.LineItems
	quotation.Amount = quotationAmount(req.LineItems, req.Amount)
	quotation.ClientFirstName = req.ClientFirstName
	quotation.ClientLastName = req.ClientLastName
	quotation.ClientEmail = strings.ToLower(req.ClientEmail)
	quotation.ClientMobile = req.ClientMobile
	quotation.ValidityDate = req.ValidityDate
	if req.PaymentType != "" {
		quotation.PaymentType = req.PaymentType
	}
	if req.State != "" {
		quotation.State = req.State
	}

	if err := config.DB.Save(&quotation).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}

	NewNotificationService().NotifyQuotationUpdated(&quotation)
	publishChange("quotations", realtime.EventUpdate, quotation, nil)
	writeJSON(w, http.StatusOK, quotation)
}

// DeleteQuotation removes a quotation. The 204 only goes out after the row
// is gone, so list consumers can trust the delete event.
func DeleteQuotation(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var quotation models.Quotation
	if err := config.DB.First(&quotation, "id = ?", id).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("quotation not found"))
		return
	}
	if err := config.DB.Delete(&quotation).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}

	publishChange("quotations", realtime.EventDelete, nil, quotation)
	w.WriteHeader(http.StatusNoContent)
}

type publicQuoteReq struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name"`
	Email       string `json:"email" validate:"required,email"`
	Mobile      string `json:"mobile"`
	Service     string `json:"service" validate:"required"`
	Description string `json:"description"`
}

// RequestQuote is the public quote form. Guests get a draft quotation with
// no user attached; it links up when they register with the same email.
func RequestQuote(w http.ResponseWriter, r *http.Request) {
	var req publicQuoteReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	quotation := models.Quotation{
		Service:         req.Service,
		Description:     req.Description,
		State:           models.QuotationStateDraft,
		PaymentType:     models.QuotationPaymentFull,
		ClientFirstName: req.FirstName,
		ClientLastName:  req.LastName,
		ClientEmail:     strings.ToLower(req.Email),
		ClientMobile:    req.Mobile,
	}

	var u models.User
	if err := config.DB.First(&u, "email = ?", quotation.ClientEmail).Error; err == nil {
		quotation.UserID = &u.ID
	}

	if err := config.DB.Create(&quotation).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}

	publishChange("quotations", realtime.EventInsert, quotation, nil)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":      quotation.ID,
		"message": "quote request received",
	})
}
