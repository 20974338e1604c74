package models

import (
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaxRate is the VAT rate applied to taxable line items
const TaxRate = 0.12

// Service is an admin-configurable pricing template. Totals and tax are
// derived from the line items and recomputed whenever they change; they are
// never edited directly.
type Service struct {
	ID          uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	ServiceName string               `gorm:"size:200;not null" json:"service_name"`
	State       string               `gorm:"size:50" json:"state,omitempty"` // US state the licensure targets
	PaymentType QuotationPaymentType `gorm:"size:20;default:'full'" json:"payment_type"`
	LineItems   LineItems            `gorm:"type:jsonb;default:'[]'" json:"line_items"`

	// Derived totals (see RecalculateTotals)
	TotalFull  float64  `gorm:"type:numeric(12,2)" json:"total_full"`
	TotalStep1 *float64 `gorm:"type:numeric(12,2)" json:"total_step1,omitempty"`
	TotalStep2 *float64 `gorm:"type:numeric(12,2)" json:"total_step2,omitempty"`
	TaxAmount  *float64 `gorm:"type:numeric(12,2)" json:"tax_amount,omitempty"`
	TaxStep1   *float64 `gorm:"type:numeric(12,2)" json:"tax_step1,omitempty"`
	TaxStep2   *float64 `gorm:"type:numeric(12,2)" json:"tax_step2,omitempty"`

	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

// round2 rounds to 2 decimal places for currency display
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// RecalculateTotals rederives all totals and tax fields from the line items.
// Tax is TaxRate applied to taxable items only. For staggered plans the
// split follows each item's Step (items with no step count toward step 1).
func (s *Service) RecalculateTotals() {
	var subtotal, tax float64
	var sub1, sub2, tax1, tax2 float64

	for _, item := range s.LineItems {
		subtotal += item.Amount
		var itemTax float64
		if item.IsTaxable() {
			itemTax = item.Amount * TaxRate
			tax += itemTax
		}
		if item.Step != nil && *item.Step == 2 {
			sub2 += item.Amount
			tax2 += itemTax
		} else {
			sub1 += item.Amount
			tax1 += itemTax
		}
	}

	s.TotalFull = round2(subtotal + tax)
	taxTotal := round2(tax)
	s.TaxAmount = &taxTotal

	if s.PaymentType == QuotationPaymentStaggered {
		t1 := round2(sub1 + tax1)
		t2 := round2(sub2 + tax2)
		x1 := round2(tax1)
		x2 := round2(tax2)
		s.TotalStep1 = &t1
		s.TotalStep2 = &t2
		s.TaxStep1 = &x1
		s.TaxStep2 = &x2
	} else {
		s.TotalStep1 = nil
		s.TotalStep2 = nil
		s.TaxStep1 = nil
		s.TaxStep2 = nil
	}
}
