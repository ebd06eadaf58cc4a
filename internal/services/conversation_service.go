package services

import (
	"context"
	"errors"
	"time"

	"chatlab/internal/domain/conversation"
	"chatlab/internal/repository"
	"chatlab/internal/transport/httpdto"
	chatlab_errors "chatlab/pkg/errors"

	"github.com/google/uuid"
)

type ConversationService struct {
	convRepo    repository.ConversationRepository
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
}

func NewConversationService(
	convRepo repository.ConversationRepository,
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
) *ConversationService {
	return &ConversationService{
		convRepo:    convRepo,
		userRepo:    userRepo,
		messageRepo: messageRepo,
	}
}

// ListForUser returns the user's conversations sorted by recency, with
// participants and the last message resolved for display.
func (s *ConversationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]httpdto.ConversationDTO, error) {
	conversations, err := s.convRepo.GetUserConversations(ctx, userID)
	if err != nil {
		return nil, err
	}

	dtos := make([]httpdto.ConversationDTO, 0, len(conversations))
	for _, c := range conversations {
		dto, err := s.resolve(ctx, c)
		if err != nil {
			return nil, err
		}
		dtos = append(dtos, dto)
	}
	return dtos, nil
}

// CreateGroup creates a group conversation with the creator as admin.
func (s *ConversationService) CreateGroup(ctx context.Context, adminID uuid.UUID, groupName string, participantIDs []uuid.UUID) (httpdto.ConversationDTO, error) {
	if groupName == "" || len(participantIDs) == 0 {
		return httpdto.ConversationDTO{}, chatlab_errors.ErrInvalidInput
	}

	now := time.Now()
	c := conversation.Conversation{
		ID:           uuid.New(),
		IsGroup:      true,
		GroupName:    groupName,
		GroupAdminID: uuid.NullUUID{UUID: adminID, Valid: true},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	c.Participants = append(c.Participants, conversation.Participant{
		ConversationID: c.ID,
		UserID:         adminID,
		JoinedAt:       now,
	})
	for _, id := range participantIDs {
		if id == adminID {
			continue
		}
		c.Participants = append(c.Participants, conversation.Participant{
			ConversationID: c.ID,
			UserID:         id,
			JoinedAt:       now,
		})
	}
	if len(c.Participants) < 2 {
		return httpdto.ConversationDTO{}, chatlab_errors.ErrInvalidInput
	}

	if err := s.convRepo.Create(ctx, &c); err != nil {
		return httpdto.ConversationDTO{}, err
	}
	return s.resolve(ctx, c)
}

// GetOrCreateDirect finds the direct conversation between two users, creating
// it if it does not exist yet.
func (s *ConversationService) GetOrCreateDirect(ctx context.Context, userA, userB uuid.UUID) (httpdto.ConversationDTO, error) {
	c, err := s.convRepo.GetDirectConversation(ctx, userA, userB)
	if err == nil {
		return s.resolve(ctx, c)
	}
	if !errors.Is(err, chatlab_errors.ErrNotFound) {
		return httpdto.ConversationDTO{}, err
	}

	now := time.Now()
	c = conversation.Conversation{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		Participants: []conversation.Participant{
			{UserID: userA, JoinedAt: now},
			{UserID: userB, JoinedAt: now},
		},
	}
	for i := range c.Participants {
		c.Participants[i].ConversationID = c.ID
	}
	if err := s.convRepo.Create(ctx, &c); err != nil {
		return httpdto.ConversationDTO{}, err
	}
	return s.resolve(ctx, c)
}

// Participants returns the user IDs of everyone in the conversation.
func (s *ConversationService) Participants(ctx context.Context, conversationID uuid.UUID) ([]uuid.UUID, error) {
	c, err := s.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return c.ParticipantIDs(), nil
}

func (s *ConversationService) IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	return s.convRepo.IsParticipant(ctx, conversationID, userID)
}

func (s *ConversationService) resolve(ctx context.Context, c conversation.Conversation) (httpdto.ConversationDTO, error) {
	dto := httpdto.NewConversationDTO(c)
	for _, p := range c.Participants {
		u, err := s.userRepo.GetByID(ctx, p.UserID)
		if err != nil {
			if errors.Is(err, chatlab_errors.ErrNotFound) {
				continue
			}
			return httpdto.ConversationDTO{}, err
		}
		dto.Participants = append(dto.Participants, httpdto.NewUserDTO(u))
	}
	if c.LastMessageID.Valid {
		m, err := s.messageRepo.GetByIDWithSender(ctx, c.LastMessageID.UUID)
		if err == nil {
			last := httpdto.NewMessageDTO(m)
			dto.LastMessage = &last
		} else if !errors.Is(err, chatlab_errors.ErrNotFound) {
			return httpdto.ConversationDTO{}, err
		}
	}
	return dto, nil
}
