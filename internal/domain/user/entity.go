package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// User represents the users table
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username     string    `gorm:"uniqueIndex;not null"`
	PasswordHash string
	ProfilePhoto string
	IsOnline     bool
	LastSeenAt   sql.NullTime
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Contact represents the user_contacts table. Contacts are one-directional:
// adding a contact does not add the inverse row.
type Contact struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContactID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

func (User) TableName() string {
	return "users"
}

func (Contact) TableName() string {
	return "user_contacts"
}
