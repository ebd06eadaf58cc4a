package httpdto

import (
	"time"

	"chatlab/internal/domain/user"
)

// UserDTO represents a user in API and realtime payloads. Field names follow
// the ChatLab wire format, which is camelCase throughout.
type UserDTO struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	ProfilePhoto string     `json:"profilePhoto,omitempty"`
	IsOnline     bool       `json:"isOnline"`
	LastSeen     *time.Time `json:"lastSeen,omitempty"`
}

func NewUserDTO(u user.User) UserDTO {
	dto := UserDTO{
		ID:           u.ID.String(),
		Username:     u.Username,
		ProfilePhoto: u.ProfilePhoto,
		IsOnline:     u.IsOnline,
	}
	if u.LastSeenAt.Valid {
		t := u.LastSeenAt.Time
		dto.LastSeen = &t
	}
	return dto
}

func NewUserDTOs(users []user.User) []UserDTO {
	dtos := make([]UserDTO, 0, len(users))
	for _, u := range users {
		dtos = append(dtos, NewUserDTO(u))
	}
	return dtos
}

// SearchUsersRequest holds query parameters for GET /api/users/search
type SearchUsersRequest struct {
	Query string `form:"query" binding:"required"`
}

// AddContactRequest is used for POST /api/users/add-contact
type AddContactRequest struct {
	UserID string `json:"userId" binding:"required"`
}

// AddContactResponse returns the direct conversation created or found for the
// new contact.
type AddContactResponse struct {
	Message      string          `json:"message"`
	Conversation ConversationDTO `json:"conversation"`
}

// UpdateProfileRequest is used for PUT /api/users/profile
type UpdateProfileRequest struct {
	Username     string `json:"username,omitempty"`
	ProfilePhoto string `json:"profilePhoto,omitempty"`
}
