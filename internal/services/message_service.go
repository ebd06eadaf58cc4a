package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"chatlab/internal/domain/message"
	"chatlab/internal/repository"
	chatlab_errors "chatlab/pkg/errors"

	"github.com/google/uuid"
)

type MessageService struct {
	messageRepo repository.MessageRepository
	convRepo    repository.ConversationRepository
}

func NewMessageService(messageRepo repository.MessageRepository, convRepo repository.ConversationRepository) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		convRepo:    convRepo,
	}
}

// SendInput carries a validated send-message request into the store.
type SendInput struct {
	ConversationID uuid.UUID
	SenderID       uuid.UUID
	Content        string
	MessageType    string
	FileURL        string
	FileName       string
}

// Validate enforces the send-message payload rules: a known message type,
// content for text messages, and file metadata for image and file messages.
func (in SendInput) Validate() error {
	if in.ConversationID == uuid.Nil || in.SenderID == uuid.Nil {
		return fmt.Errorf("%w: conversationId and senderId are required", chatlab_errors.ErrInvalidInput)
	}
	if !message.ValidType(in.MessageType) {
		return fmt.Errorf("%w: unknown message type %q", chatlab_errors.ErrInvalidInput, in.MessageType)
	}
	if in.MessageType == message.TypeText && in.Content == "" {
		return fmt.Errorf("%w: text messages require content", chatlab_errors.ErrInvalidInput)
	}
	if in.MessageType != message.TypeText && (in.FileURL == "" || in.FileName == "") {
		return fmt.Errorf("%w: %s messages require fileUrl and fileName", chatlab_errors.ErrInvalidInput, in.MessageType)
	}
	return nil
}

// Send persists a message and advances the conversation's last-message
// pointer, then re-reads the stored row with the sender resolved. The two
// writes are not transactional: if the pointer update fails after the insert,
// the message exists but the conversation summary is stale, and the send is
// reported as failed without compensation.
func (s *MessageService) Send(ctx context.Context, in SendInput) (message.Message, error) {
	if err := in.Validate(); err != nil {
		return message.Message{}, err
	}

	ok, err := s.convRepo.IsParticipant(ctx, in.ConversationID, in.SenderID)
	if err != nil {
		return message.Message{}, err
	}
	if !ok {
		return message.Message{}, chatlab_errors.ErrNotParticipant
	}

	m := message.Message{
		ID:             uuid.New(),
		ConversationID: in.ConversationID,
		SenderID:       in.SenderID,
		Type:           in.MessageType,
		CreatedAt:      time.Now(),
	}
	if in.Content != "" {
		m.Content = sql.NullString{String: in.Content, Valid: true}
	}
	if in.FileURL != "" {
		m.FileURL = sql.NullString{String: in.FileURL, Valid: true}
	}
	if in.FileName != "" {
		m.FileName = sql.NullString{String: in.FileName, Valid: true}
	}

	if err := s.messageRepo.Create(ctx, &m); err != nil {
		return message.Message{}, fmt.Errorf("persist message: %w", err)
	}

	if err := s.convRepo.SetLastMessage(ctx, in.ConversationID, m.ID, m.CreatedAt); err != nil {
		return message.Message{}, fmt.Errorf("update conversation summary (message %s persisted): %w", m.ID, err)
	}

	return s.messageRepo.GetByIDWithSender(ctx, m.ID)
}

// History returns a conversation's messages in chronological order.
func (s *MessageService) History(ctx context.Context, conversationID, userID uuid.UUID) ([]message.Message, error) {
	ok, err := s.convRepo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, chatlab_errors.ErrNotParticipant
	}
	return s.messageRepo.GetConversationMessages(ctx, conversationID)
}

// MarkRead records a read receipt for every unread message in the
// conversation not sent by the caller.
func (s *MessageService) MarkRead(ctx context.Context, conversationID, userID uuid.UUID) error {
	ok, err := s.convRepo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return chatlab_errors.ErrNotParticipant
	}
	return s.messageRepo.MarkConversationRead(ctx, conversationID, userID, time.Now())
}
