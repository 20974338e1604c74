// handlers/auth.go
package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"nlas.ph/portal/config"
	"nlas.ph/portal/middleware"
	"nlas.ph/portal/models"
	"nlas.ph/portal/pkg/apperr"
)

type registerReq struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name"`
	Email       string `json:"email" validate:"required,email"`
	Mobile      string `json:"mobile"`
	Password    string `json:"password" validate:"required,min=8"`
	ServiceType string `json:"service_type"`
}

func Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apperr.WriteJSON(w, apperr.Server("error hashing password"))
		return
	}

	// New signups always get the client role
	var clientRole models.Role
	var roleID *uuid.UUID
	if err := config.DB.Where("name = ?", "client").First(&clientRole).Error; err == nil {
		roleID = &clientRole.ID
	}

	u := models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        strings.ToLower(req.Email),
		Mobile:       req.Mobile,
		PasswordHash: string(hash),
		RoleID:       roleID,
		ServiceType:  req.ServiceType,
		IsActive:     true,
	}
	if err := config.DB.Create(&u).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			apperr.WriteJSON(w, apperr.Validation("email already registered"))
		} else {
			apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		}
		return
	}

	// Any guest quotations under this email now belong to the new account
	config.DB.Model(&models.Quotation{}).
		Where("client_email = ? AND user_id IS NULL", u.Email).
		Update("user_id", u.ID)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    u.ID,
		"email": u.Email,
	})
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResp struct {
	Token string      `json:"token"`
	User  userPayload `json:"user"`
}

type userPayload struct {
	ID          uuid.UUID `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Mobile      string    `json:"mobile,omitempty"`
	Role        string    `json:"role"`
	ServiceType string    `json:"service_type,omitempty"`
	TwoFactor   bool      `json:"two_factor_enabled"`
}

func toUserPayload(u *models.User) userPayload {
	return userPayload{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		Mobile:      u.Mobile,
		Role:        u.RoleName(),
		ServiceType: u.ServiceType,
		TwoFactor:   u.TwoFactorEnabled,
	}
}

func Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var u models.User
	if err := config.DB.Preload("RoleModel").Where("email = ?", strings.ToLower(req.Email)).First(&u).Error; err != nil {
		apperr.WriteJSON(w, apperr.Auth("invalid credentials"))
		return
	}
	if !u.IsActive {
		apperr.WriteJSON(w, apperr.Auth("account is disabled"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		apperr.WriteJSON(w, apperr.Auth("invalid credentials"))
		return
	}

	// 2FA accounts get a short-lived token that only unlocks the code step
	if u.TwoFactorEnabled {
		tmp, err := middleware.GenerateTwoFactorToken(u.ID.String())
		if err != nil {
			apperr.WriteJSON(w, apperr.Server("couldn't create token"))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"requires_2fa":     true,
			"two_factor_token": tmp,
		})
		return
	}

	token, err := middleware.GenerateToken(u.ID.String(), u.RoleName(), u.FullName(), u.Email)
	if err != nil {
		apperr.WriteJSON(w, apperr.Server("couldn't create token"))
		return
	}
	writeJSON(w, http.StatusOK, loginResp{Token: token, User: toUserPayload(&u)})
}

// GetCurrentUser returns the profile for the authenticated user
func GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		apperr.WriteJSON(w, apperr.Auth("unauthorized"))
		return
	}

	var u models.User
	if err := config.DB.Preload("RoleModel").First(&u, "id = ?", claims.UserID).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("user not found"))
		return
	}
	writeJSON(w, http.StatusOK, toUserPayload(&u))
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

func ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var u models.User
	if err := config.DB.First(&u, "id = ?", middleware.GetUserID(r)).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("user not found"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		apperr.WriteJSON(w, apperr.Auth("current password is incorrect"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		apperr.WriteJSON(w, apperr.Server("error hashing password"))
		return
	}
	if err := config.DB.Model(&u).Update("password_hash", string(hash)).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}
