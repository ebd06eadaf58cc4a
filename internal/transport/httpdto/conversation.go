package httpdto

import (
	"time"

	"chatlab/internal/domain/conversation"
)

// ConversationDTO represents a conversation with its participants and last
// message resolved for display.
type ConversationDTO struct {
	ID           string      `json:"id"`
	Participants []UserDTO   `json:"participants"`
	IsGroup      bool        `json:"isGroup"`
	GroupName    string      `json:"groupName,omitempty"`
	GroupAdmin   string      `json:"groupAdmin,omitempty"`
	LastMessage  *MessageDTO `json:"lastMessage,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// NewConversationDTO builds the DTO skeleton from the entity; the caller fills
// in Participants and LastMessage, which require user and message lookups.
func NewConversationDTO(c conversation.Conversation) ConversationDTO {
	dto := ConversationDTO{
		ID:           c.ID.String(),
		Participants: []UserDTO{},
		IsGroup:      c.IsGroup,
		GroupName:    c.GroupName,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
	if c.GroupAdminID.Valid {
		dto.GroupAdmin = c.GroupAdminID.UUID.String()
	}
	return dto
}

// CreateGroupRequest is used for POST /api/messages/create-group
type CreateGroupRequest struct {
	GroupName    string   `json:"groupName" binding:"required"`
	Participants []string `json:"participants" binding:"required"`
}
