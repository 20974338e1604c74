package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MessageFolder is where a message lives in a user's mailbox
type MessageFolder string

const (
	MessageFolderInbox MessageFolder = "inbox"
	MessageFolderSent  MessageFolder = "sent"
)

// Message is an in-portal mail item. Read and hidden flags are per-device
// cosmetic state stored in UIState, not here; ReadAt is the server-side
// mirror used by the unread counter.
type Message struct {
	ID      uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	Folder  MessageFolder `gorm:"size:10;default:'inbox';index" json:"folder"`
	Sender  string        `gorm:"size:200;not null" json:"sender"`
	Subject string        `gorm:"size:500;not null" json:"subject"`
	Body    string        `gorm:"type:text;not null" json:"body"`

	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return
}

// MarkAsRead records the read timestamp once
func (m *Message) MarkAsRead() {
	if m.ReadAt == nil {
		now := time.Now()
		m.ReadAt = &now
	}
}
