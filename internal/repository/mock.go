package repository

import (
	"context"
	"time"

	"chatlab/internal/domain/conversation"
	"chatlab/internal/domain/message"
	"chatlab/internal/domain/user"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}
func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(user.User), args.Error(1)
}
func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (user.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(user.User), args.Error(1)
}
func (m *MockUserRepository) Update(ctx context.Context, u user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}
func (m *MockUserRepository) Search(ctx context.Context, query string, excludeID uuid.UUID, limit int) ([]user.User, error) {
	args := m.Called(ctx, query, excludeID, limit)
	return args.Get(0).([]user.User), args.Error(1)
}
func (m *MockUserRepository) UpdateOnlineStatus(ctx context.Context, id uuid.UUID, online bool, lastSeen time.Time) error {
	args := m.Called(ctx, id, online, lastSeen)
	return args.Error(0)
}
func (m *MockUserRepository) AddContact(ctx context.Context, userID, contactID uuid.UUID) error {
	args := m.Called(ctx, userID, contactID)
	return args.Error(0)
}
func (m *MockUserRepository) HasContact(ctx context.Context, userID, contactID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, contactID)
	return args.Bool(0), args.Error(1)
}
func (m *MockUserRepository) GetContacts(ctx context.Context, userID uuid.UUID) ([]user.User, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]user.User), args.Error(1)
}

type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) Create(ctx context.Context, c *conversation.Conversation) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}
func (m *MockConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (conversation.Conversation, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(conversation.Conversation), args.Error(1)
}
func (m *MockConversationRepository) GetUserConversations(ctx context.Context, userID uuid.UUID) ([]conversation.Conversation, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]conversation.Conversation), args.Error(1)
}
func (m *MockConversationRepository) GetDirectConversation(ctx context.Context, userA, userB uuid.UUID) (conversation.Conversation, error) {
	args := m.Called(ctx, userA, userB)
	return args.Get(0).(conversation.Conversation), args.Error(1)
}
func (m *MockConversationRepository) IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, conversationID, userID)
	return args.Bool(0), args.Error(1)
}
func (m *MockConversationRepository) SetLastMessage(ctx context.Context, conversationID, messageID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, conversationID, messageID, at)
	return args.Error(0)
}

type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, msg *message.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}
func (m *MockMessageRepository) GetByIDWithSender(ctx context.Context, id uuid.UUID) (message.Message, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(message.Message), args.Error(1)
}
func (m *MockMessageRepository) GetConversationMessages(ctx context.Context, conversationID uuid.UUID) ([]message.Message, error) {
	args := m.Called(ctx, conversationID)
	return args.Get(0).([]message.Message), args.Error(1)
}
func (m *MockMessageRepository) MarkConversationRead(ctx context.Context, conversationID, userID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, conversationID, userID, at)
	return args.Error(0)
}
