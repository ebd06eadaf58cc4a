package repository

import (
	"context"
	"errors"
	"time"

	"chatlab/internal/domain/message"
	chatlab_errors "chatlab/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &PostgresMessageRepository{db: db}
}

func (r *PostgresMessageRepository) Create(ctx context.Context, m *message.Message) error {
	res := r.db.WithContext(ctx).Create(m)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return chatlab_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresMessageRepository) GetByIDWithSender(ctx context.Context, id uuid.UUID) (message.Message, error) {
	var m message.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("ReadBy").
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message.Message{}, chatlab_errors.ErrNotFound
		}
		return message.Message{}, err
	}
	return m, nil
}

func (r *PostgresMessageRepository) GetConversationMessages(ctx context.Context, conversationID uuid.UUID) ([]message.Message, error) {
	var messages []message.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("ReadBy").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// MarkConversationRead inserts a read receipt for every message in the
// conversation the user has not yet read and did not send.
func (r *PostgresMessageRepository) MarkConversationRead(ctx context.Context, conversationID, userID uuid.UUID, at time.Time) error {
	unread := r.db.Model(&message.Message{}).
		Select("id").
		Where("conversation_id = ?", conversationID).
		Where("sender_id <> ?", userID).
		Where("id NOT IN (?)", r.db.Model(&message.MessageRead{}).
			Select("message_id").
			Where("user_id = ?", userID))

	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Table("(?) AS unread", unread).Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}

	reads := make([]message.MessageRead, 0, len(ids))
	for _, id := range ids {
		reads = append(reads, message.MessageRead{MessageID: id, UserID: userID, ReadAt: at})
	}
	return r.db.WithContext(ctx).Create(&reads).Error
}
