package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DonationStatus is the donation payment state
type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusSucceeded DonationStatus = "succeeded"
	DonationStatusFailed    DonationStatus = "failed"
)

// Donation may be made anonymously; UserID is nil for guest donors
type Donation struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID     `gorm:"type:uuid;index" json:"user_id,omitempty"`
	DonorName  string         `gorm:"size:200" json:"donor_name,omitempty"`
	DonorEmail string         `gorm:"size:100" json:"donor_email,omitempty"`
	Amount     float64        `gorm:"type:numeric(12,2);not null" json:"amount"` // USD, major units
	Message    string         `gorm:"type:text" json:"message,omitempty"`
	Status     DonationStatus `gorm:"size:20;default:'pending';index" json:"status"`

	StripePaymentIntentID   string `gorm:"size:100" json:"stripe_payment_intent_id,omitempty"`
	StripeCheckoutSessionID string `gorm:"size:100" json:"stripe_checkout_session_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (d *Donation) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}
