package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"chatlab/internal/domain/user"
	chatlab_errors "chatlab/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, u *user.User) error {
	res := r.db.WithContext(ctx).Create(u)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return chatlab_errors.ErrAlreadyExists
		}
		return res.Error
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, chatlab_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (user.User, error) {
	var u user.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.User{}, chatlab_errors.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, u user.User) error {
	res := r.db.WithContext(ctx).Save(&u)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chatlab_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) Search(ctx context.Context, query string, excludeID uuid.UUID, limit int) ([]user.User, error) {
	var users []user.User
	err := r.db.WithContext(ctx).
		Where("username ILIKE ?", "%"+query+"%").
		Where("id <> ?", excludeID).
		Order("username").
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *PostgresUserRepository) UpdateOnlineStatus(ctx context.Context, id uuid.UUID, online bool, lastSeen time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&user.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_online":    online,
			"last_seen_at": sql.NullTime{Time: lastSeen, Valid: true},
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return chatlab_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) AddContact(ctx context.Context, userID, contactID uuid.UUID) error {
	c := user.Contact{UserID: userID, ContactID: contactID, CreatedAt: time.Now()}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&c).Error
}

func (r *PostgresUserRepository) HasContact(ctx context.Context, userID, contactID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&user.Contact{}).
		Where("user_id = ? AND contact_id = ?", userID, contactID).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresUserRepository) GetContacts(ctx context.Context, userID uuid.UUID) ([]user.User, error) {
	var users []user.User
	err := r.db.WithContext(ctx).
		Joins("JOIN user_contacts ON user_contacts.contact_id = users.id").
		Where("user_contacts.user_id = ?", userID).
		Order("users.username").
		Find(&users).Error
	return users, err
}
