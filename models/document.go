package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ServiceDocumentRequirement configures which upload slots appear for a
// given service type on the client documents page
type ServiceDocumentRequirement struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ServiceType     string         `gorm:"size:50;not null;index" json:"service_type"`
	DocumentType    string         `gorm:"size:50;not null" json:"document_type"`
	Name            string         `gorm:"size:200;not null" json:"name"`
	AcceptedFormats pq.StringArray `gorm:"type:text[]" json:"accepted_formats"`
	Required        bool           `gorm:"default:true" json:"required"`
	SortOrder       int            `gorm:"default:0" json:"sort_order"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (sdr *ServiceDocumentRequirement) BeforeCreate(tx *gorm.DB) (err error) {
	if sdr.ID == uuid.Nil {
		sdr.ID = uuid.New()
	}
	return
}

// TableName specifies the table name
func (ServiceDocumentRequirement) TableName() string {
	return "service_document_requirements"
}

// DocumentStatus is the admin verification state of an uploaded document
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusVerified DocumentStatus = "verified"
	DocumentStatusRejected DocumentStatus = "rejected"
)

// UserDocument is a client's uploaded document awaiting verification
type UserDocument struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User         *User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ServiceType  string         `gorm:"size:50;not null" json:"service_type"`
	DocumentType string         `gorm:"size:50;not null" json:"document_type"`
	FileName     string         `gorm:"size:255;not null" json:"file_name"`
	FilePath     string         `gorm:"size:500;not null" json:"file_path"`
	ContentType  string         `gorm:"size:100" json:"content_type,omitempty"`
	SizeBytes    int64          `json:"size_bytes,omitempty"`
	Status       DocumentStatus `gorm:"size:20;default:'pending';index" json:"status"`
	AdminNote    string         `gorm:"type:text" json:"admin_note,omitempty"`
	VerifiedBy   *uuid.UUID     `gorm:"type:uuid" json:"verified_by,omitempty"`
	VerifiedAt   *time.Time     `json:"verified_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (d *UserDocument) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return
}

// FallbackDocumentRequirements is served when the configuration table is
// empty or unreachable so the client upload page never renders blank
func FallbackDocumentRequirements(serviceType string) []ServiceDocumentRequirement {
	defaults := []ServiceDocumentRequirement{
		{ServiceType: serviceType, DocumentType: "passport", Name: "Passport (bio page)", AcceptedFormats: pq.StringArray{"pdf", "jpg", "png"}, Required: true, SortOrder: 1},
		{ServiceType: serviceType, DocumentType: "diploma", Name: "Nursing Diploma", AcceptedFormats: pq.StringArray{"pdf"}, Required: true, SortOrder: 2},
		{ServiceType: serviceType, DocumentType: "transcript", Name: "Transcript of Records", AcceptedFormats: pq.StringArray{"pdf"}, Required: true, SortOrder: 3},
		{ServiceType: serviceType, DocumentType: "license", Name: "PRC License", AcceptedFormats: pq.StringArray{"pdf", "jpg", "png"}, Required: true, SortOrder: 4},
		{ServiceType: serviceType, DocumentType: "board_certificate", Name: "Board Certificate", AcceptedFormats: pq.StringArray{"pdf"}, Required: false, SortOrder: 5},
	}
	return defaults
}
