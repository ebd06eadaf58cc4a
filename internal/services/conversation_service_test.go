package services

import (
	"context"
	"testing"

	"chatlab/internal/domain/conversation"
	"chatlab/internal/domain/user"
	"chatlab/internal/repository"
	chatlab_errors "chatlab/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newConversationFixture() (*ConversationService, *repository.MockConversationRepository, *repository.MockUserRepository, *repository.MockMessageRepository) {
	convRepo := new(repository.MockConversationRepository)
	userRepo := new(repository.MockUserRepository)
	msgRepo := new(repository.MockMessageRepository)
	return NewConversationService(convRepo, userRepo, msgRepo), convRepo, userRepo, msgRepo
}

func TestConversationService_CreateGroup(t *testing.T) {
	svc, convRepo, userRepo, _ := newConversationFixture()

	adminID := uuid.New()
	memberID := uuid.New()

	convRepo.On("Create", mock.Anything, mock.AnythingOfType("*conversation.Conversation")).Return(nil)
	userRepo.On("GetByID", mock.Anything, adminID).Return(user.User{ID: adminID, Username: "alice"}, nil)
	userRepo.On("GetByID", mock.Anything, memberID).Return(user.User{ID: memberID, Username: "bob"}, nil)

	dto, err := svc.CreateGroup(context.Background(), adminID, "team", []uuid.UUID{memberID})
	require.NoError(t, err)
	assert.True(t, dto.IsGroup)
	assert.Equal(t, "team", dto.GroupName)
	assert.Equal(t, adminID.String(), dto.GroupAdmin)
	assert.Len(t, dto.Participants, 2, "the admin is always a participant")
}

func TestConversationService_CreateGroupValidation(t *testing.T) {
	svc, convRepo, _, _ := newConversationFixture()

	_, err := svc.CreateGroup(context.Background(), uuid.New(), "", []uuid.UUID{uuid.New()})
	assert.ErrorIs(t, err, chatlab_errors.ErrInvalidInput)

	_, err = svc.CreateGroup(context.Background(), uuid.New(), "team", nil)
	assert.ErrorIs(t, err, chatlab_errors.ErrInvalidInput)

	convRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestConversationService_GetOrCreateDirect(t *testing.T) {
	userA := uuid.New()
	userB := uuid.New()

	t.Run("reuses existing pair", func(t *testing.T) {
		svc, convRepo, userRepo, _ := newConversationFixture()

		existing := conversation.Conversation{
			ID: uuid.New(),
			Participants: []conversation.Participant{
				{UserID: userA}, {UserID: userB},
			},
		}
		convRepo.On("GetDirectConversation", mock.Anything, userA, userB).Return(existing, nil)
		userRepo.On("GetByID", mock.Anything, userA).Return(user.User{ID: userA}, nil)
		userRepo.On("GetByID", mock.Anything, userB).Return(user.User{ID: userB}, nil)

		dto, err := svc.GetOrCreateDirect(context.Background(), userA, userB)
		require.NoError(t, err)
		assert.Equal(t, existing.ID.String(), dto.ID)
		convRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("creates when missing", func(t *testing.T) {
		svc, convRepo, userRepo, _ := newConversationFixture()

		convRepo.On("GetDirectConversation", mock.Anything, userA, userB).
			Return(conversation.Conversation{}, chatlab_errors.ErrNotFound)
		convRepo.On("Create", mock.Anything, mock.AnythingOfType("*conversation.Conversation")).Return(nil)
		userRepo.On("GetByID", mock.Anything, userA).Return(user.User{ID: userA}, nil)
		userRepo.On("GetByID", mock.Anything, userB).Return(user.User{ID: userB}, nil)

		dto, err := svc.GetOrCreateDirect(context.Background(), userA, userB)
		require.NoError(t, err)
		assert.False(t, dto.IsGroup)
		assert.Len(t, dto.Participants, 2)
		convRepo.AssertExpectations(t)
	})
}

func TestConversationService_Participants(t *testing.T) {
	svc, convRepo, _, _ := newConversationFixture()

	convID := uuid.New()
	userA := uuid.New()
	userB := uuid.New()

	convRepo.On("GetByID", mock.Anything, convID).Return(conversation.Conversation{
		ID: convID,
		Participants: []conversation.Participant{
			{ConversationID: convID, UserID: userA},
			{ConversationID: convID, UserID: userB},
		},
	}, nil)

	ids, err := svc.Participants(context.Background(), convID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{userA, userB}, ids)
}

func TestConversationService_IsParticipant(t *testing.T) {
	svc, convRepo, _, _ := newConversationFixture()

	convID := uuid.New()
	userID := uuid.New()
	convRepo.On("IsParticipant", mock.Anything, convID, userID).Return(true, nil)

	ok, err := svc.IsParticipant(context.Background(), convID, userID)
	require.NoError(t, err)
	assert.True(t, ok)
}
