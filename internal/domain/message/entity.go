package message

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"chatlab/internal/domain/user"
)

// Message types
const (
	TypeText  = "text"
	TypeImage = "image"
	TypeFile  = "file"
)

// Message represents the messages table. CreatedAt is set at persistence time,
// never taken from the client. Content is optional for non-text types; FileURL
// and FileName are required for image and file messages.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	ConversationID uuid.UUID `gorm:"type:uuid;index;not null"`
	SenderID       uuid.UUID `gorm:"type:uuid;not null"`
	Type           string    `gorm:"not null;default:text"`
	Content        sql.NullString
	FileURL        sql.NullString
	FileName       sql.NullString
	CreatedAt      time.Time

	// Relationships
	Sender user.User     `gorm:"foreignKey:SenderID"`
	ReadBy []MessageRead `gorm:"foreignKey:MessageID"`
}

// MessageRead represents the message_reads table. One row per reader per
// message; the sender never appears here.
type MessageRead struct {
	MessageID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ReadAt    time.Time
}

// ValidType reports whether t is a known message type.
func ValidType(t string) bool {
	switch t {
	case TypeText, TypeImage, TypeFile:
		return true
	}
	return false
}

func (Message) TableName() string {
	return "messages"
}

func (MessageRead) TableName() string {
	return "message_reads"
}
