package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentType identifies which installment of an application a payment covers
type PaymentType string

const (
	PaymentTypeStep1 PaymentType = "step1"
	PaymentTypeStep2 PaymentType = "step2"
	PaymentTypeFull  PaymentType = "full"
)

// PaymentStatus is the payment lifecycle state
type PaymentStatus string

const (
	PaymentStatusPending         PaymentStatus = "pending"
	PaymentStatusPendingApproval PaymentStatus = "pending_approval"
	PaymentStatusPaid            PaymentStatus = "paid"
	PaymentStatusFailed          PaymentStatus = "failed"
	PaymentStatusCancelled       PaymentStatus = "cancelled"
)

// PaymentMethod is how the client paid. Card payments settle through the
// gateway; bank transfers and e-wallets require manual admin approval.
type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodEWallet      PaymentMethod = "e_wallet"
)

// Payment is one installment (or the full amount) owed on an application
type Payment struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID uuid.UUID     `gorm:"type:uuid;not null;index" json:"application_id"`
	Application   *Application  `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
	UserID        uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	PaymentType   PaymentType   `gorm:"size:10;not null" json:"payment_type"`
	Amount        float64       `gorm:"type:numeric(12,2);not null" json:"amount"` // USD, major units
	Status        PaymentStatus `gorm:"size:20;default:'pending';index" json:"status"`

	TransactionID         string        `gorm:"size:100" json:"transaction_id,omitempty"`
	StripePaymentIntentID string        `gorm:"size:100;index" json:"stripe_payment_intent_id,omitempty"`
	PaymentMethod         PaymentMethod `gorm:"size:20" json:"payment_method,omitempty"`

	// Manual verification: bank transfer / e-wallet submissions carry a
	// proof-of-payment upload and the exchange rate cached at submission time.
	ProofOfPaymentFilePath string   `gorm:"size:500" json:"proof_of_payment_file_path,omitempty"`
	UsdToPhpRate           *float64 `gorm:"type:numeric(10,4)" json:"usd_to_php_rate,omitempty"`
	AdminNote              string   `gorm:"type:text" json:"admin_note,omitempty"`

	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// IsTerminal reports whether the payment can no longer change state
func (p *Payment) IsTerminal() bool {
	return p.Status == PaymentStatusPaid || p.Status == PaymentStatusCancelled
}

// RequiresManualApproval reports whether the payment method needs an admin
// to review a proof-of-payment before the payment can be marked paid
func (p *Payment) RequiresManualApproval() bool {
	return p.PaymentMethod == PaymentMethodBankTransfer || p.PaymentMethod == PaymentMethodEWallet
}

// CanMarkPaid enforces installment ordering: a step2 payment must not reach
// paid while step1 of the same application is unpaid. step1Status is the
// status of the sibling step1 payment; pass "" when none exists.
func CanMarkPaid(paymentType PaymentType, step1Status PaymentStatus) bool {
	if paymentType != PaymentTypeStep2 {
		return true
	}
	return step1Status == PaymentStatusPaid
}
