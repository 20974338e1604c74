// models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName    string     `gorm:"size:100;not null" json:"first_name"`
	LastName     string     `gorm:"size:100;not null" json:"last_name"`
	Email        string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Mobile       string     `gorm:"size:20" json:"mobile,omitempty"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	RoleID       *uuid.UUID `gorm:"type:uuid" json:"role_id,omitempty"`
	RoleModel    *Role      `gorm:"foreignKey:RoleID" json:"role,omitempty"`

	// Service the client is enrolled for (e.g. "nclex", "immigration")
	ServiceType string `gorm:"size:50;index" json:"service_type,omitempty"`

	// Two-factor authentication. The secret is only set after the user
	// confirms a valid code; until then it lives in PendingTwoFactorSecret.
	TwoFactorEnabled       bool   `gorm:"default:false" json:"two_factor_enabled"`
	TwoFactorSecret        string `gorm:"size:64" json:"-"`
	PendingTwoFactorSecret string `gorm:"size:64" json:"-"`

	IsActive  bool `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

// HasPermission checks if user has a specific permission
func (u *User) HasPermission(permissionName string) bool {
	if u.RoleModel != nil {
		return u.RoleModel.HasPermission(permissionName)
	}
	return false
}

// RoleName returns the name of the user's role, or "client" when unset
func (u *User) RoleName() string {
	if u.RoleModel != nil {
		return u.RoleModel.Name
	}
	return "client"
}

// FullName joins first and last name for display
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
