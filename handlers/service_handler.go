package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"nlas.ph/portal/config"
	"nlas.ph/portal/models"
	"nlas.ph/portal/pkg/apperr"
)

// ListServices returns active services; admins can pass ?all=true to
// include deactivated ones
func ListServices(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Order("service_name")
	if r.URL.Query().Get("all") != "true" {
		q = q.Where("is_active = ?", true)
	}

	var services []models.Service
	if err := q.Find(&services).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, services)
}

// GetService returns one service
func GetService(w http.ResponseWriter, r *http.Request) {
	var service models.Service
	if err := config.DB.First(&service, "id = ?", mux.Vars(r)["id"]).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("service not found"))
		return
	}
	writeJSON(w, http.StatusOK, service)
}

type serviceReq struct {
	ServiceName string                      `json:"service_name" validate:"required"`
	State       string                      `json:"state"`
	PaymentType models.QuotationPaymentType `json:"payment_type" validate:"omitempty,oneof=full staggered"`
	LineItems   models.LineItems            `json:"line_items" validate:"required,min=1"`
	IsActive    *bool                       `json:"is_active"`
}

// CreateService creates a pricing template. Totals are always rederived
// from the line items.
func CreateService(w http.ResponseWriter, r *http.Request) {
	var req serviceReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	service := models.Service{
		ServiceName: req.ServiceName,
		State:       req.State,
		PaymentType: req.PaymentType,
		LineItems:   req.LineItems,
		IsActive:    true,
	}
	if service.PaymentType == "" {
		service.PaymentType = models.QuotationPaymentFull
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}
	service.RecalculateTotals()

	if err := config.DB.Create(&service).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusCreated, service)
}

// UpdateService edits a pricing template and recomputes its totals
func UpdateService(w http.ResponseWriter, r *http.Request) {
	var service models.Service
	if err := config.DB.First(&service, "id = ?", mux.Vars(r)["id"]).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("service not found"))
		return
	}

	var req serviceReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	service.ServiceName = req.ServiceName
	service.State = req.State
	service.LineItems = req.LineItems
	if req.PaymentType != "" {
		service.PaymentType = req.PaymentType
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}
	service.RecalculateTotals()

	if err := config.DB.Save(&service).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, service)
}

// DeleteService deactivates a service instead of destroying it; existing
// applications keep pointing at it
func DeleteService(w http.ResponseWriter, r *http.Request) {
	var service models.Service
	if err := config.DB.First(&service, "id = ?", mux.Vars(r)["id"]).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("service not found"))
		return
	}
	if err := config.DB.Model(&service).Update("is_active", false).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
