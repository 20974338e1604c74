package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReceiptItem is one named amount on a receipt
type ReceiptItem struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// ReceiptItems is a custom type for JSONB receipt item arrays
type ReceiptItems []ReceiptItem

// Scan implements the sql.Scanner interface
func (r *ReceiptItems) Scan(value interface{}) error {
	if value == nil {
		*r = ReceiptItems{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		*r = ReceiptItems{}
		return nil
	}
	return json.Unmarshal(bytes, r)
}

// Value implements the driver.Valuer interface
func (r ReceiptItems) Value() (driver.Value, error) {
	if r == nil {
		return json.Marshal([]ReceiptItem{})
	}
	return json.Marshal(r)
}

// GormDataType defines the data type for GORM
func (ReceiptItems) GormDataType() string {
	return "jsonb"
}

// Receipt is generated once a payment reaches paid. It snapshots the items
// at payment time so later pricing edits never change an issued receipt.
type Receipt struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ReceiptNumber string       `gorm:"size:30;uniqueIndex;not null" json:"receipt_number"`
	PaymentID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex" json:"payment_id"`
	UserID        uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	Amount        float64      `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentType   PaymentType  `gorm:"size:10;not null" json:"payment_type"`
	Items         ReceiptItems `gorm:"type:jsonb;default:'[]'" json:"items"`
	CreatedAt     time.Time    `json:"created_at"`
}

func (r *Receipt) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return
}
