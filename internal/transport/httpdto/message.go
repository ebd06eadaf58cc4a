package httpdto

import (
	"time"

	"chatlab/internal/domain/message"
)

// MessageDTO represents a persisted message with its sender resolved. This is
// the exact shape broadcast on the realtime surface as well as returned from
// the history endpoint.
type MessageDTO struct {
	ID             string           `json:"id"`
	ConversationID string           `json:"conversationId"`
	Sender         UserDTO          `json:"sender"`
	Content        string           `json:"content,omitempty"`
	MessageType    string           `json:"messageType"`
	FileURL        string           `json:"fileUrl,omitempty"`
	FileName       string           `json:"fileName,omitempty"`
	ReadBy         []MessageReadDTO `json:"readBy"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// MessageReadDTO is one (reader, readAt) entry of a message's readBy set.
type MessageReadDTO struct {
	User   string    `json:"user"`
	ReadAt time.Time `json:"readAt"`
}

func NewMessageDTO(m message.Message) MessageDTO {
	dto := MessageDTO{
		ID:             m.ID.String(),
		ConversationID: m.ConversationID.String(),
		Sender:         NewUserDTO(m.Sender),
		MessageType:    m.Type,
		ReadBy:         make([]MessageReadDTO, 0, len(m.ReadBy)),
		CreatedAt:      m.CreatedAt,
	}
	if m.Content.Valid {
		dto.Content = m.Content.String
	}
	if m.FileURL.Valid {
		dto.FileURL = m.FileURL.String
	}
	if m.FileName.Valid {
		dto.FileName = m.FileName.String
	}
	for _, r := range m.ReadBy {
		dto.ReadBy = append(dto.ReadBy, MessageReadDTO{User: r.UserID.String(), ReadAt: r.ReadAt})
	}
	return dto
}

func NewMessageDTOs(messages []message.Message) []MessageDTO {
	dtos := make([]MessageDTO, 0, len(messages))
	for _, m := range messages {
		dtos = append(dtos, NewMessageDTO(m))
	}
	return dtos
}

// UploadResponse is returned from POST /api/messages/upload.
type UploadResponse struct {
	FileURL  string `json:"fileUrl"`
	FileName string `json:"fileName"`
}
