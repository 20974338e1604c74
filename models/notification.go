package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType defines the type of notification
type NotificationType string

const (
	NotificationTypePaymentApproved  NotificationType = "payment_approved"
	NotificationTypePaymentRejected  NotificationType = "payment_rejected"
	NotificationTypePaymentReceived  NotificationType = "payment_received"
	NotificationTypeQuotationUpdated NotificationType = "quotation_updated"
	NotificationTypeDocumentVerified NotificationType = "document_verified"
	NotificationTypeDocumentRejected NotificationType = "document_rejected"
	NotificationTypeSystemAlert      NotificationType = "system_alert"
)

// NotificationStatus defines the status of a notification
type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusRead    NotificationStatus = "read"
)

// Notification is the server side of the UI's status-change toasts: one row
// per recipient, created when a recognized status transition happens
type Notification struct {
	ID     uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type   NotificationType `gorm:"size:50;not null;index" json:"type"`
	Title  string           `gorm:"size:500;not null" json:"title"`
	Body   string           `gorm:"type:text" json:"body,omitempty"`

	// What triggered this notification
	PaymentID   *uuid.UUID `gorm:"type:uuid;index" json:"payment_id,omitempty"`
	QuotationID *uuid.UUID `gorm:"type:uuid;index" json:"quotation_id,omitempty"`
	DocumentID  *uuid.UUID `gorm:"type:uuid;index" json:"document_id,omitempty"`

	Status NotificationStatus `gorm:"size:20;default:'pending';index" json:"status"`
	SentAt *time.Time         `json:"sent_at,omitempty"`
	ReadAt *time.Time         `json:"read_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}

// TableName specifies the table name
func (Notification) TableName() string {
	return "notifications"
}

// MarkAsRead marks the notification as read
func (n *Notification) MarkAsRead() {
	now := time.Now()
	n.ReadAt = &now
	n.Status = NotificationStatusRead
}

// MarkAsSent marks the notification as sent
func (n *Notification) MarkAsSent() {
	now := time.Now()
	n.SentAt = &now
	n.Status = NotificationStatusSent
}
