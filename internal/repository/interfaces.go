package repository

import (
	"context"
	"time"

	"chatlab/internal/domain/conversation"
	"chatlab/internal/domain/message"
	"chatlab/internal/domain/user"

	"github.com/google/uuid"
)

// UserRepository provides access to users and their contacts. The realtime
// presence publisher is the only caller of UpdateOnlineStatus.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetByUsername(ctx context.Context, username string) (user.User, error)
	Update(ctx context.Context, u user.User) error
	Search(ctx context.Context, query string, excludeID uuid.UUID, limit int) ([]user.User, error)
	UpdateOnlineStatus(ctx context.Context, id uuid.UUID, online bool, lastSeen time.Time) error
	AddContact(ctx context.Context, userID, contactID uuid.UUID) error
	HasContact(ctx context.Context, userID, contactID uuid.UUID) (bool, error)
	GetContacts(ctx context.Context, userID uuid.UUID) ([]user.User, error)
}

// ConversationRepository provides access to conversations and participation.
type ConversationRepository interface {
	Create(ctx context.Context, c *conversation.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error)
	GetUserConversations(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error)
	GetDirectConversation(ctx context.Context, userA, userB uuid.UUID) (conversation.Conversation, error)
	IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error)
	SetLastMessage(ctx context.Context, conversationID, messageID uuid.UUID, at time.Time) error
}

// MessageRepository provides access to messages and read receipts.
type MessageRepository interface {
	Create(ctx context.Context, m *message.Message) error
	GetByIDWithSender(ctx context.Context, id uuid.UUID) (message.Message, error)
	GetConversationMessages(ctx context.Context, conversationID uuid.UUID) ([]message.Message, error)
	MarkConversationRead(ctx context.Context, conversationID, userID uuid.UUID, at time.Time) error
}
