package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ChatMessage is one metered question and its generated answer. Asking
// is the quota-gated action for free-tier users.
type ChatMessage struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Question string    `gorm:"type:text;not null" json:"question"`
	Answer   string    `gorm:"type:text" json:"answer"`
	// Context carries whatever chart snippets the answer was grounded
	// on, e.g. the current dasha at ask time.
	Context   datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"context"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	User      User           `gorm:"foreignKey:UserID" json:"-"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
