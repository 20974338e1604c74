package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Well-known UIState keys
const (
	UIStateKeyOpenedQuotes   = "openedQuotes"
	UIStateKeyHiddenMessages = "hiddenMessages"
	UIStateKeyReadMessages   = "readMessages"
)

// UIState holds per-user cosmetic bookkeeping (opened quotes, hidden and
// read message IDs). It is annotation state with no consistency
// requirement: never treated as authoritative entity state, and losing it
// only resets read-receipt style UI hints.
type UIState struct {
	ID     uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID   `gorm:"type:uuid;not null;index:idx_uistate_user_key,unique" json:"user_id"`
	Key    string      `gorm:"size:50;not null;index:idx_uistate_user_key,unique" json:"key"`
	IDs    StringArray `gorm:"type:jsonb;default:'[]'" json:"ids"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *UIState) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}

// TableName specifies the table name
func (UIState) TableName() string {
	return "ui_states"
}

// Contains reports whether id is in the set
func (s *UIState) Contains(id string) bool {
	for _, v := range s.IDs {
		if v == id {
			return true
		}
	}
	return false
}

// Add inserts id if not already present
func (s *UIState) Add(id string) {
	if !s.Contains(id) {
		s.IDs = append(s.IDs, id)
	}
}

// Remove deletes id from the set if present
func (s *UIState) Remove(id string) {
	out := s.IDs[:0]
	for _, v := range s.IDs {
		if v != id {
			out = append(out, v)
		}
	}
	s.IDs = out
}
