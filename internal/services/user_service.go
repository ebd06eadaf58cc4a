package services

import (
	"context"
	"errors"
	"time"

	"chatlab/internal/domain/user"
	"chatlab/internal/repository"
	chatlab_errors "chatlab/pkg/errors"

	"github.com/google/uuid"
)

type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, userID uuid.UUID) (user.User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *UserService) Search(ctx context.Context, actorID uuid.UUID, query string) ([]user.User, error) {
	if query == "" {
		return []user.User{}, nil
	}
	return s.repo.Search(ctx, query, actorID, 10)
}

func (s *UserService) AddContact(ctx context.Context, actorID, contactID uuid.UUID) error {
	if actorID == contactID {
		return chatlab_errors.ErrInvalidInput
	}
	if _, err := s.repo.GetByID(ctx, contactID); err != nil {
		return err
	}
	exists, err := s.repo.HasContact(ctx, actorID, contactID)
	if err != nil {
		return err
	}
	if exists {
		return chatlab_errors.ErrAlreadyExists
	}
	return s.repo.AddContact(ctx, actorID, contactID)
}

func (s *UserService) Contacts(ctx context.Context, actorID uuid.UUID) ([]user.User, error) {
	return s.repo.GetContacts(ctx, actorID)
}

func (s *UserService) UpdateProfile(ctx context.Context, actorID uuid.UUID, username, profilePhoto string) (user.User, error) {
	u, err := s.repo.GetByID(ctx, actorID)
	if err != nil {
		return user.User{}, err
	}

	if username != "" && username != u.Username {
		if _, err := s.repo.GetByUsername(ctx, username); err == nil {
			return user.User{}, chatlab_errors.ErrAlreadyExists
		} else if !errors.Is(err, chatlab_errors.ErrNotFound) {
			return user.User{}, err
		}
		u.Username = username
	}
	if profilePhoto != "" {
		u.ProfilePhoto = profilePhoto
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// UpdateOnlineStatus persists a presence transition. Only the realtime
// presence publisher calls this.
func (s *UserService) UpdateOnlineStatus(ctx context.Context, userID uuid.UUID, online bool, at time.Time) error {
	return s.repo.UpdateOnlineStatus(ctx, userID, online, at)
}
