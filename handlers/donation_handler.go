package handlers

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"nlas.ph/portal/config"
	"nlas.ph/portal/middleware"
	"nlas.ph/portal/models"
	"nlas.ph/portal/pkg/apperr"
	"nlas.ph/portal/pkg/realtime"
	"nlas.ph/portal/utils"
)

type createDonationReq struct {
	DonorName  string  `json:"donor_name"`
	DonorEmail string  `json:"donor_email" validate:"omitempty,email"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Message    string  `json:"message"`
}

// CreateDonation records a pending donation. Public: guests donate without
// an account, and an authenticated donor is linked automatically.
func CreateDonation(w http.ResponseWriter, r *http.Request) {
	var req createDonationReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	if utils.ToMinorUnits(req.Amount) < utils.MinimumChargeCents {
		apperr.WriteJSON(w, apperr.Validation("donation amount is below the card minimum"))
		return
	}

	donation := models.Donation{
		DonorName:  req.DonorName,
		DonorEmail: strings.ToLower(req.DonorEmail),
		Amount:     req.Amount,
		Message:    req.Message,
		Status:     models.DonationStatusPending,
	}

	if claims := middleware.GetClaims(r); claims != nil {
		var u models.User
		if err := config.DB.First(&u, "id = ?", claims.UserID).Error; err == nil {
			donation.UserID = &u.ID
			if donation.DonorName == "" {
				donation.DonorName = u.FullName()
			}
			if donation.DonorEmail == "" {
				donation.DonorEmail = u.Email
			}
		}
	}

	if err := config.DB.Create(&donation).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}

	publishChange("donations", realtime.EventInsert, donation, nil)
	writeJSON(w, http.StatusCreated, donation)
}

// ListDonations returns all donations (admin)
func ListDonations(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Order("created_at DESC")
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var donations []models.Donation
	if err := q.Find(&donations).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, donations)
}

// GetDonation returns one donation's public status so the thank-you page
// can confirm settlement
func GetDonation(w http.ResponseWriter, r *http.Request) {
	var donation models.Donation
	if err := config.DB.First(&donation, "id = ?", mux.Vars(r)["id"]).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("donation not found"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":     donation.ID,
		"amount": donation.Amount,
		"status": donation.Status,
	})
}
