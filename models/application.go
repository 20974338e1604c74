package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ApplicationStatus tracks where a client's application stands
type ApplicationStatus string

const (
	ApplicationStatusDraft      ApplicationStatus = "draft"
	ApplicationStatusSubmitted  ApplicationStatus = "submitted"
	ApplicationStatusInReview   ApplicationStatus = "in_review"
	ApplicationStatusProcessing ApplicationStatus = "processing"
	ApplicationStatusCompleted  ApplicationStatus = "completed"
	ApplicationStatusCancelled  ApplicationStatus = "cancelled"
)

// Application links a client to the service they are paying for
type Application struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ServiceID *uuid.UUID        `gorm:"type:uuid;index" json:"service_id,omitempty"`
	Service   *Service          `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Status    ApplicationStatus `gorm:"size:20;default:'draft';index" json:"status"`

	// Denormalized for display on admin tables
	ServiceName string `gorm:"size:200" json:"service_name,omitempty"`
	State       string `gorm:"size:50" json:"state,omitempty"`

	// Intake form answers captured at enrollment, shape varies per service
	FormData datatypes.JSON `gorm:"type:jsonb" json:"form_data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Payments []Payment `gorm:"foreignKey:ApplicationID" json:"payments,omitempty"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) (err error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return
}
