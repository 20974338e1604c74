package middleware

import (
	"net/http"

	"nlas.ph/portal/config"
	"nlas.ph/portal/models"
	"nlas.ph/portal/pkg/apperr"
	"nlas.ph/portal/utils"
)

// RequirePermission middleware checks if the authenticated user has the required permission
func RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r)
			if claims == nil {
				apperr.WriteJSON(w, apperr.Auth("unauthorized"))
				return
			}

			// Super admins have all permissions
			if claims.Role == "super_admin" {
				next.ServeHTTP(w, r)
				return
			}

			// Get user with role information
			var user models.User
			if err := config.DB.Preload("RoleModel.Permissions").First(&user, "id = ?", claims.UserID).Error; err != nil {
				apperr.WriteJSON(w, apperr.Auth("user not found"))
				return
			}

			if !hasMatchingPermission(&user, permission) {
				http.Error(w, "insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAnyPermission checks if user has any of the provided permissions
func RequireAnyPermission(permissions []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetClaims(r)
			if claims == nil {
				apperr.WriteJSON(w, apperr.Auth("unauthorized"))
				return
			}
			if claims.Role == "super_admin" {
				next.ServeHTTP(w, r)
				return
			}

			var user models.User
			if err := config.DB.Preload("RoleModel.Permissions").First(&user, "id = ?", claims.UserID).Error; err != nil {
				apperr.WriteJSON(w, apperr.Auth("user not found"))
				return
			}

			for _, permission := range permissions {
				if hasMatchingPermission(&user, permission) {
					next.ServeHTTP(w, r)
					return
				}
			}

			http.Error(w, "insufficient permissions", http.StatusForbidden)
		})
	}
}

// hasMatchingPermission resolves wildcard grants like "payment:*" against
// the required permission name
func hasMatchingPermission(user *models.User, required string) bool {
	if user.RoleModel == nil {
		return false
	}
	for _, perm := range user.RoleModel.Permissions {
		if utils.MatchesPermission(perm.Name, required) {
			return true
		}
	}
	return false
}

// GetUserPermissions returns all permissions for the current user
func GetUserPermissions(r *http.Request) []string {
	claims := GetClaims(r)
	if claims == nil {
		return []string{}
	}

	var user models.User
	if err := config.DB.Preload("RoleModel.Permissions").First(&user, "id = ?", claims.UserID).Error; err != nil {
		return []string{}
	}

	var permissions []string
	if user.RoleModel != nil {
		for _, perm := range user.RoleModel.Permissions {
			permissions = append(permissions, perm.Name)
		}
	}

	return permissions
}
