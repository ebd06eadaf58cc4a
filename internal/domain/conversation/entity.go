package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Conversation represents the conversations table. A direct conversation has
// exactly two participants and no group name; a group has three or more and an
// admin. LastMessageID tracks the most recently persisted message, and
// UpdatedAt is bumped on every successful send.
type Conversation struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	IsGroup       bool
	GroupName     string
	GroupAdminID  uuid.NullUUID `gorm:"type:uuid"`
	LastMessageID uuid.NullUUID `gorm:"type:uuid"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Relationships
	Participants []Participant
}

// Participant represents the participants table
type Participant struct {
	ConversationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	JoinedAt       time.Time
}

// ParticipantIDs returns the user ids of all participants.
func (c Conversation) ParticipantIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}

// HasParticipant reports whether userID belongs to the conversation.
func (c Conversation) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

func (Conversation) TableName() string {
	return "conversations"
}

func (Participant) TableName() string {
	return "participants"
}
