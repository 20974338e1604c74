package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuotationState is the quotation lifecycle state
type QuotationState string

const (
	QuotationStateDraft    QuotationState = "draft"
	QuotationStateSent     QuotationState = "sent"
	QuotationStateAccepted QuotationState = "accepted"
	QuotationStateDeclined QuotationState = "declined"
	QuotationStateExpired  QuotationState = "expired"
)

// QuotationPaymentType selects full upfront vs staggered installments
type QuotationPaymentType string

const (
	QuotationPaymentFull      QuotationPaymentType = "full"
	QuotationPaymentStaggered QuotationPaymentType = "staggered"
)

// LineItem is a single priced entry on a quotation or service template
type LineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Step        *int    `json:"step,omitempty"`    // 1 or 2 for staggered plans
	Taxable     *bool   `json:"taxable,omitempty"` // nil means taxable
}

// IsTaxable treats a nil Taxable flag as taxable
func (li LineItem) IsTaxable() bool {
	return li.Taxable == nil || *li.Taxable
}

// LineItems is a custom type for JSONB line item arrays
type LineItems []LineItem

// Scan implements the sql.Scanner interface
func (l *LineItems) Scan(value interface{}) error {
	if value == nil {
		*l = LineItems{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		*l = LineItems{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Value implements the driver.Valuer interface
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]LineItem{})
	}
	return json.Marshal(l)
}

// GormDataType defines the data type for GORM
func (LineItems) GormDataType() string {
	return "jsonb"
}

// Quotation is a priced offer prepared by an admin (or requested through the
// public quote flow, in which case UserID is nil until the guest signs up)
type Quotation struct {
	ID          uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      *uuid.UUID           `gorm:"type:uuid;index" json:"user_id,omitempty"`
	User        *User                `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Amount      float64              `gorm:"type:numeric(12,2);not null" json:"amount"`
	Description string               `gorm:"type:text" json:"description,omitempty"`
	Service     string               `gorm:"size:100;not null" json:"service"`
	State       QuotationState       `gorm:"size:20;default:'draft';index" json:"state"`
	PaymentType QuotationPaymentType `gorm:"size:20;default:'full'" json:"payment_type"`
	LineItems   LineItems            `gorm:"type:jsonb;default:'[]'" json:"line_items"`

	// Contact details captured at quote time; guests have no user row yet
	ClientFirstName string `gorm:"size:100;not null" json:"client_first_name"`
	ClientLastName  string `gorm:"size:100" json:"client_last_name,omitempty"`
	ClientEmail     string `gorm:"size:100;not null;index" json:"client_email"`
	ClientMobile    string `gorm:"size:20" json:"client_mobile,omitempty"`

	ValidityDate *time.Time `json:"validity_date,omitempty"`

	StripePaymentIntentID string `gorm:"size:100" json:"stripe_payment_intent_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (q *Quotation) BeforeCreate(tx *gorm.DB) (err error) {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return
}

// IsExpired reports whether the quotation's validity date has passed
func (q *Quotation) IsExpired(now time.Time) bool {
	return q.ValidityDate != nil && now.After(*q.ValidityDate)
}
