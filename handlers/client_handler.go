package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"nlas.ph/portal/config"
	"nlas.ph/portal/middleware"
	"nlas.ph/portal/models"
	"nlas.ph/portal/pkg/apperr"
)

// ListClients returns all client accounts (admin)
func ListClients(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Preload("RoleModel").Order("created_at DESC")
	if st := r.URL.Query().Get("service_type"); st != "" {
		q = q.Where("service_type = ?", st)
	}
	if search := r.URL.Query().Get("search"); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}

	out := make([]userPayload, 0, len(users))
	for i := range users {
		out = append(out, toUserPayload(&users[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetClient returns one client with their applications (admin)
func GetClient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var user models.User
	if err := config.DB.Preload("RoleModel").First(&user, "id = ?", id).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("client not found"))
		return
	}

	var applications []models.Application
	config.DB.Preload("Payments").Where("user_id = ?", user.ID).Find(&applications)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":         toUserPayload(&user),
		"applications": applications,
	})
}

type createClientReq struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name"`
	Email       string `json:"email" validate:"required,email"`
	Mobile      string `json:"mobile"`
	Password    string `json:"password" validate:"required,min=8"`
	ServiceType string `json:"service_type"`
}

// CreateClient lets an admin open an account on a client's behalf
func CreateClient(w http.ResponseWriter, r *http.Request) {
	var req createClientReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apperr.WriteJSON(w, apperr.Server("error hashing password"))
		return
	}

	var clientRole models.Role
	var roleID *uuid.UUID
	if err := config.DB.Where("name = ?", "client").First(&clientRole).Error; err == nil {
		roleID = &clientRole.ID
	}

	user := models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        strings.ToLower(req.Email),
		Mobile:       req.Mobile,
		PasswordHash: string(hash),
		RoleID:       roleID,
		ServiceType:  req.ServiceType,
		IsActive:     true,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			apperr.WriteJSON(w, apperr.Validation("email already registered"))
		} else {
			apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		}
		return
	}
	writeJSON(w, http.StatusCreated, toUserPayload(&user))
}

type updateClientReq struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Mobile      *string `json:"mobile"`
	ServiceType *string `json:"service_type"`
	IsActive    *bool   `json:"is_active"`
}

// UpdateClient edits a client's profile fields (admin)
func UpdateClient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var user models.User
	if err := config.DB.First(&user, "id = ?", id).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("client not found"))
		return
	}

	var req updateClientReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	updates := map[string]interface{}{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Mobile != nil {
		updates["mobile"] = *req.Mobile
	}
	if req.ServiceType != nil {
		updates["service_type"] = *req.ServiceType
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) > 0 {
		if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
			apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
			return
		}
	}
	writeJSON(w, http.StatusOK, toUserPayload(&user))
}

// DeleteClient deactivates a client account; history stays intact
func DeleteClient(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var user models.User
	if err := config.DB.First(&user, "id = ?", id).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("client not found"))
		return
	}
	if err := config.DB.Model(&user).Update("is_active", false).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createApplicationReq struct {
	UserID    string          `json:"user_id" validate:"required,uuid"`
	ServiceID string          `json:"service_id" validate:"required,uuid"`
	FormData  json.RawMessage `json:"form_data"`
}

// CreateApplication enrolls a client in a service and lays down the payment
// schedule the service's plan calls for
func CreateApplication(w http.ResponseWriter, r *http.Request) {
	var req createApplicationReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var user models.User
	if err := config.DB.First(&user, "id = ?", req.UserID).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("client not found"))
		return
	}
	var service models.Service
	if err := config.DB.First(&service, "id = ?", req.ServiceID).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("service not found"))
		return
	}

	app := models.Application{
		UserID:      user.ID,
		ServiceID:   &service.ID,
		Status:      models.ApplicationStatusSubmitted,
		ServiceName: service.ServiceName,
		State:       service.State,
	}
	if len(req.FormData) > 0 {
		app.FormData = datatypes.JSON(req.FormData)
	}
	if err := config.DB.Create(&app).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}

	// Payment schedule follows the service plan
	var payments []models.Payment
	if service.PaymentType == models.QuotationPaymentStaggered && service.TotalStep1 != nil && service.TotalStep2 != nil {
		payments = []models.Payment{
			{ApplicationID: app.ID, UserID: user.ID, PaymentType: models.PaymentTypeStep1, Amount: *service.TotalStep1},
			{ApplicationID: app.ID, UserID: user.ID, PaymentType: models.PaymentTypeStep2, Amount: *service.TotalStep2},
		}
	} else {
		payments = []models.Payment{
			{ApplicationID: app.ID, UserID: user.ID, PaymentType: models.PaymentTypeFull, Amount: service.TotalFull},
		}
	}
	for i := range payments {
		payments[i].Status = models.PaymentStatusPending
		if err := config.DB.Create(&payments[i]).Error; err != nil {
			apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
			return
		}
	}
	app.Payments = payments

	writeJSON(w, http.StatusCreated, app)
}

// ListMyApplications returns the authenticated client's applications
func ListMyApplications(w http.ResponseWriter, r *http.Request) {
	var applications []models.Application
	if err := config.DB.Preload("Payments").Preload("Service").
		Where("user_id = ?", middleware.GetUserID(r)).
		Order("created_at DESC").Find(&applications).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, applications)
}

type updateApplicationReq struct {
	Status models.ApplicationStatus `json:"status" validate:"required,oneof=draft submitted in_review processing completed cancelled"`
}

// UpdateApplicationStatus moves an application along its lifecycle (admin)
func UpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req updateApplicationReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var app models.Application
	if err := config.DB.First(&app, "id = ?", id).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("application not found"))
		return
	}
	if err := config.DB.Model(&app).Update("status", req.Status).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	app.Status = req.Status
	writeJSON(w, http.StatusOK, app)
}
