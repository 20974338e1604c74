package handlers

import (
	"net/http"
	"strings"

	"github.com/pquerna/otp/totp"
	"nlas.ph/portal/config"
	"nlas.ph/portal/middleware"
	"nlas.ph/portal/models"
	"nlas.ph/portal/pkg/apperr"
)

// Setup2FA generates a new TOTP secret for the authenticated user. The
// secret stays pending until the user confirms a valid code, so an
// interrupted setup never locks anyone out.
func Setup2FA(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if err := config.DB.First(&u, "id = ?", middleware.GetUserID(r)).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("user not found"))
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "NLAS Portal",
		AccountName: u.Email,
	})
	if err != nil {
		apperr.WriteJSON(w, apperr.Server("failed to generate 2FA secret"))
		return
	}

	if err := config.DB.Model(&u).Update("pending_two_factor_secret", key.Secret()).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"secret":      key.Secret(),
		"otpauth_url": key.URL(),
	})
}

type twoFactorCodeReq struct {
	Code string `json:"code" validate:"required,len=6"`
}

// Confirm2FA promotes the pending secret once the user proves they have it
func Confirm2FA(w http.ResponseWriter, r *http.Request) {
	var req twoFactorCodeReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var u models.User
	if err := config.DB.First(&u, "id = ?", middleware.GetUserID(r)).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("user not found"))
		return
	}
	if u.PendingTwoFactorSecret == "" {
		apperr.WriteJSON(w, apperr.Validation("no 2FA setup in progress"))
		return
	}
	if !totp.Validate(req.Code, u.PendingTwoFactorSecret) {
		apperr.WriteJSON(w, apperr.Auth("invalid verification code"))
		return
	}

	updates := map[string]interface{}{
		"two_factor_enabled":        true,
		"two_factor_secret":         u.PendingTwoFactorSecret,
		"pending_two_factor_secret": "",
	}
	if err := config.DB.Model(&u).Updates(updates).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "two-factor authentication enabled"})
}

// Disable2FA turns off 2FA after re-verifying a current code
func Disable2FA(w http.ResponseWriter, r *http.Request) {
	var req twoFactorCodeReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	var u models.User
	if err := config.DB.First(&u, "id = ?", middleware.GetUserID(r)).Error; err != nil {
		apperr.WriteJSON(w, apperr.NotFound("user not found"))
		return
	}
	if !u.TwoFactorEnabled {
		apperr.WriteJSON(w, apperr.Validation("two-factor authentication is not enabled"))
		return
	}
	if !totp.Validate(req.Code, u.TwoFactorSecret) {
		apperr.WriteJSON(w, apperr.Auth("invalid verification code"))
		return
	}

	updates := map[string]interface{}{
		"two_factor_enabled":        false,
		"two_factor_secret":         "",
		"pending_two_factor_secret": "",
	}
	if err := config.DB.Model(&u).Updates(updates).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "two-factor authentication disabled"})
}

type twoFactorLoginReq struct {
	TwoFactorToken string `json:"two_factor_token" validate:"required"`
	Code           string `json:"code" validate:"required,len=6"`
}

// VerifyTwoFactorLogin exchanges a pending 2FA token plus a valid code for a
// full session token
func VerifyTwoFactorLogin(w http.ResponseWriter, r *http.Request) {
	var req twoFactorLoginReq
	if err := decodeJSON(r, &req); err != nil {
		apperr.WriteJSON(w, err)
		return
	}

	claims, err := middleware.ParseToken(strings.TrimSpace(req.TwoFactorToken))
	if err != nil {
		apperr.WriteJSON(w, err)
		return
	}
	if claims.Scope != middleware.ScopeTwoFactorPending {
		apperr.WriteJSON(w, apperr.Auth("invalid token scope"))
		return
	}

	var u models.User
	if err := config.DB.Preload("RoleModel").First(&u, "id = ?", claims.UserID).Error; err != nil {
		apperr.WriteJSON(w, apperr.Auth("user not found"))
		return
	}
	if !totp.Validate(req.Code, u.TwoFactorSecret) {
		apperr.WriteJSON(w, apperr.Auth("invalid verification code"))
		return
	}

	token, err := middleware.GenerateToken(u.ID.String(), u.RoleName(), u.FullName(), u.Email)
	if err != nil {
		apperr.WriteJSON(w, apperr.Server("couldn't create token"))
		return
	}
	writeJSON(w, http.StatusOK, loginResp{Token: token, User: toUserPayload(&u)})
}
