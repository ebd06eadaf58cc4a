package realtime

import (
	"encoding/json"

	"chatlab/internal/transport/httpdto"
)

// Client-to-server events
const (
	EventUserOnline        = "user-online"
	EventJoinConversation  = "join-conversation"
	EventLeaveConversation = "leave-conversation"
	EventSendMessage       = "send-message"
	EventTyping            = "typing"
	EventStopTyping        = "stop-typing"
)

// Server-to-client events
const (
	EventNewMessage       = "new-message"
	EventNotification     = "notification"
	EventUserTyping       = "user-typing"
	EventUserStopTyping   = "user-stop-typing"
	EventUserStatusChange = "user-status-change"
	EventMessageError     = "message-error"
)

// Envelope frames every event on the wire. Data holds the event-specific
// payload; user-online and join-conversation carry a bare JSON string.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// SendMessagePayload is the client's send-message request.
type SendMessagePayload struct {
	ConversationID string `json:"conversationId"`
	SenderID       string `json:"senderId"`
	Content        string `json:"content,omitempty"`
	MessageType    string `json:"messageType"`
	FileURL        string `json:"fileUrl,omitempty"`
	FileName       string `json:"fileName,omitempty"`
}

// TypingPayload is the client's typing signal.
type TypingPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
	Username       string `json:"username"`
}

// StopTypingPayload is the client's stop-typing signal.
type StopTypingPayload struct {
	ConversationID string `json:"conversationId"`
	UserID         string `json:"userId"`
}

// UserTypingEvent is relayed to a room while a participant types.
type UserTypingEvent struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// UserStopTypingEvent clears a typing indicator.
type UserStopTypingEvent struct {
	UserID string `json:"userId"`
}

// StatusChangeEvent announces a presence transition to every connection.
type StatusChangeEvent struct {
	UserID   string `json:"userId"`
	IsOnline bool   `json:"isOnline"`
}

// NotificationEvent is the best-effort, per-participant delivery of a new
// message, sent directly to a user's connection rather than to a room.
type NotificationEvent struct {
	Type           string             `json:"type"`
	Message        httpdto.MessageDTO `json:"message"`
	ConversationID string             `json:"conversationId"`
}

// MessageErrorEvent is sent to the sender only when a send fails.
type MessageErrorEvent struct {
	Message string `json:"message"`
}

// encodeEvent frames an event for the wire. A payload that cannot be
// marshalled is a programming error; the frame is dropped.
func encodeEvent(event string, data interface{}) []byte {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil
		}
		raw = b
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		return nil
	}
	return frame
}
