package handlers

import (
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"nlas.ph/portal/config"
	"nlas.ph/portal/models"
)

// NotificationService creates in-portal notifications for recognized status
// transitions
type NotificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new notification service instance
func NewNotificationService() *NotificationService {
	return &NotificationService{
		db: config.DB,
	}
}

// NotifyPaymentStatus records a notification when a payment reaches a status
// the client should hear about. Unrecognized statuses are ignored.
func (ns *NotificationService) NotifyPaymentStatus(payment *models.Payment) {
	var notifType models.NotificationType
	var title string

	switch payment.Status {
	case models.PaymentStatusPaid:
		notifType = models.NotificationTypePaymentApproved
		title = fmt.Sprintf("Your %s payment of $%.2f has been approved", payment.PaymentType, payment.Amount)
	case models.PaymentStatusFailed:
		notifType = models.NotificationTypePaymentRejected
		title = fmt.Sprintf("Your %s payment of $%.2f was rejected", payment.PaymentType, payment.Amount)
	case models.PaymentStatusPendingApproval:
		notifType = models.NotificationTypePaymentReceived
		title = fmt.Sprintf("We received your %s payment of $%.2f and it is awaiting review", payment.PaymentType, payment.Amount)
	default:
		return
	}

	ns.create(models.Notification{
		UserID:    payment.UserID,
		Type:      notifType,
		Title:     title,
		Body:      payment.AdminNote,
		PaymentID: &payment.ID,
	})
}

// NotifyQuotationUpdated tells the quotation's owner their quote changed
func (ns *NotificationService) NotifyQuotationUpdated(quotation *models.Quotation) {
	if quotation.UserID == nil {
		return // guest quotes have nobody to notify in-portal
	}
	ns.create(models.Notification{
		UserID:      *quotation.UserID,
		Type:        models.NotificationTypeQuotationUpdated,
		Title:       fmt.Sprintf("Your quotation for %s has been updated", quotation.Service),
		QuotationID: &quotation.ID,
	})
}

// NotifyDocumentStatus records the outcome of a document review
func (ns *NotificationService) NotifyDocumentStatus(doc *models.UserDocument) {
	var notifType models.NotificationType
	var title string

	switch doc.Status {
	case models.DocumentStatusVerified:
		notifType = models.NotificationTypeDocumentVerified
		title = fmt.Sprintf("Your document %q has been verified", doc.FileName)
	case models.DocumentStatusRejected:
		notifType = models.NotificationTypeDocumentRejected
		title = fmt.Sprintf("Your document %q was rejected", doc.FileName)
	default:
		return
	}

	ns.create(models.Notification{
		UserID:     doc.UserID,
		Type:       notifType,
		Title:      title,
		Body:       doc.AdminNote,
		DocumentID: &doc.ID,
	})
}

// NotifySystemAlert sends a freeform alert to a single user
func (ns *NotificationService) NotifySystemAlert(userID uuid.UUID, title, body string) {
	ns.create(models.Notification{
		UserID: userID,
		Type:   models.NotificationTypeSystemAlert,
		Title:  title,
		Body:   body,
	})
}

func (ns *NotificationService) create(n models.Notification) {
	n.MarkAsSent()
	if err := ns.db.Create(&n).Error; err != nil {
		log.Printf("❌ Error creating notification for user %s: %v", n.UserID, err)
	}
}
