package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"chatlab/internal/redis"
	"chatlab/internal/services"
	"chatlab/internal/transport/httpdto"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultPersistTimeout = 5 * time.Second

// sendFailureMessage is what the sender sees when their message could not be
// delivered, regardless of the underlying cause.
const sendFailureMessage = "Failed to send message"

// Hub owns every live WebSocket connection and runs the event flows between
// them: presence transitions, room broadcasts, message fanout and
// per-participant notifications. Durable state goes through the services;
// the hub itself only holds connection-scoped state.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	registry *ConnRegistry
	rooms    *RoomSet
	typing   *TypingRelay

	users         *services.UserService
	conversations *services.ConversationService
	messages      *services.MessageService

	// presence mirrors online status into Redis for other nodes; nil when
	// running without Redis.
	presence *redis.PresenceStore

	register   chan *Client
	unregister chan *Client

	persistTimeout time.Duration
	logger         *EventLogger
}

func NewHub(
	users *services.UserService,
	conversations *services.ConversationService,
	messages *services.MessageService,
	presence *redis.PresenceStore,
) *Hub {
	rooms := NewRoomSet()
	return &Hub{
		clients:        make(map[*Client]struct{}),
		registry:       NewConnRegistry(),
		rooms:          rooms,
		typing:         NewTypingRelay(rooms, defaultTypingTTL),
		users:          users,
		conversations:  conversations,
		messages:       messages,
		presence:       presence,
		register:       make(chan *Client, 256),
		unregister:     make(chan *Client, 256),
		persistTimeout: defaultPersistTimeout,
		logger:         NewEventLogger(),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		}
	}
}

// Register adds a new client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastAll delivers payload to every connected client, including the
// originator.
func (h *Hub) BroadcastAll(payload []byte) {
	if payload == nil {
		return
	}
	h.mu.RLock()
	for c := range h.clients {
		c.enqueue(payload)
	}
	h.mu.RUnlock()
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("client connected", client.userID, client.id)
}

// removeClient tears down a disconnecting client. The offline transition only
// runs when this connection is still the user's current one; a connection that
// was superseded by a reconnect leaves the user online.
func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	h.mu.Unlock()

	h.rooms.Drop(client)

	if h.registry.Release(client) {
		h.typing.DropUser(client.userID)
		h.setPresence(client, false)
	} else {
		h.logger.Info("superseded client disconnected", client.userID, client.id)
	}

	client.closeSend()
}

// handleUserOnline announces the connection as the user's current one and
// flips them online everywhere.
func (h *Hub) handleUserOnline(c *Client, data json.RawMessage) error {
	var rawID string
	if err := json.Unmarshal(data, &rawID); err != nil {
		return fmt.Errorf("decode user-online: %w", err)
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("decode user-online: %w", err)
	}
	if userID != c.userID {
		h.logger.Warn("user-online identity mismatch", c.userID, c.id,
			zap.String("claimed_user_id", rawID))
		return nil
	}

	if prev := h.registry.Bind(userID, c); prev != nil {
		h.logger.Info("connection superseded", userID, prev.id)
	}

	h.setPresence(c, true)
	return nil
}

// setPresence persists the user's online flag, mirrors it into Redis and
// announces the transition to every connection. A failed persist skips the
// announcement so clients never see a status the database does not hold.
func (h *Hub) setPresence(c *Client, online bool) {
	ctx, cancel := context.WithTimeout(context.Background(), h.persistTimeout)
	defer cancel()

	if err := h.users.UpdateOnlineStatus(ctx, c.userID, online, time.Now()); err != nil {
		h.logger.Error("persist online status failed", c.userID, c.id, err,
			zap.Bool("online", online))
		return
	}

	if h.presence != nil {
		var err error
		if online {
			err = h.presence.SetOnline(ctx, c.userID.String())
		} else {
			err = h.presence.SetOffline(ctx, c.userID.String())
		}
		if err != nil {
			h.logger.Error("mirror presence failed", c.userID, c.id, err)
		}
	}

	h.BroadcastAll(encodeEvent(EventUserStatusChange, StatusChangeEvent{
		UserID:   c.userID.String(),
		IsOnline: online,
	}))
}

// handleJoinConversation subscribes the connection to a conversation's room,
// implicitly leaving the previous one. Non-participants are ignored.
func (h *Hub) handleJoinConversation(c *Client, data json.RawMessage) error {
	var rawID string
	if err := json.Unmarshal(data, &rawID); err != nil {
		return fmt.Errorf("decode join-conversation: %w", err)
	}
	conversationID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("decode join-conversation: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.persistTimeout)
	defer cancel()

	ok, err := h.conversations.IsParticipant(ctx, conversationID, c.userID)
	if err != nil {
		return fmt.Errorf("authorize join-conversation: %w", err)
	}
	if !ok {
		h.logger.Warn("join rejected, not a participant", c.userID, c.id,
			zap.String("conversation_id", rawID))
		return nil
	}

	h.rooms.Join(c, conversationID)
	return nil
}

func (h *Hub) handleLeaveConversation(c *Client) {
	h.rooms.Leave(c)
}

// handleSendMessage runs the fanout pipeline: persist, broadcast to the room,
// then notify every other participant's connection. Failures after the
// persist are logged but never retried.
func (h *Hub) handleSendMessage(c *Client, data json.RawMessage) error {
	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		c.enqueue(encodeEvent(EventMessageError, MessageErrorEvent{Message: sendFailureMessage}))
		return fmt.Errorf("decode send-message: %w", err)
	}

	conversationID, err := uuid.Parse(payload.ConversationID)
	if err != nil {
		c.enqueue(encodeEvent(EventMessageError, MessageErrorEvent{Message: sendFailureMessage}))
		return fmt.Errorf("decode send-message: %w", err)
	}
	senderID, err := uuid.Parse(payload.SenderID)
	if err != nil || senderID != c.userID {
		c.enqueue(encodeEvent(EventMessageError, MessageErrorEvent{Message: sendFailureMessage}))
		h.logger.Warn("send-message sender mismatch", c.userID, c.id,
			zap.String("claimed_sender_id", payload.SenderID))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.persistTimeout)
	defer cancel()

	msg, err := h.messages.Send(ctx, services.SendInput{
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        payload.Content,
		MessageType:    payload.MessageType,
		FileURL:        payload.FileURL,
		FileName:       payload.FileName,
	})
	if err != nil {
		h.logger.Error("send message failed", c.userID, c.id, err,
			zap.String("conversation_id", payload.ConversationID))
		c.enqueue(encodeEvent(EventMessageError, MessageErrorEvent{Message: sendFailureMessage}))
		return nil
	}

	dto := httpdto.NewMessageDTO(msg)
	h.rooms.Broadcast(conversationID, encodeEvent(EventNewMessage, dto), nil)

	// Past this point the message is persisted and broadcast; a failure in
	// the notification stage must not look like a failed send, or the
	// client would re-issue and duplicate the message.
	participants, err := h.conversations.Participants(ctx, conversationID)
	if err != nil {
		h.logger.Error("resolve participants for notifications failed", c.userID, c.id, err,
			zap.String("conversation_id", payload.ConversationID))
		return nil
	}

	notification := encodeEvent(EventNotification, NotificationEvent{
		Type:           "new-message",
		Message:        dto,
		ConversationID: conversationID.String(),
	})
	for _, participantID := range participants {
		if participantID == senderID {
			continue
		}
		if target, ok := h.registry.Resolve(participantID); ok {
			target.enqueue(notification)
		}
	}
	return nil
}

func (h *Hub) handleTyping(c *Client, data json.RawMessage) error {
	var payload TypingPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode typing: %w", err)
	}
	conversationID, err := uuid.Parse(payload.ConversationID)
	if err != nil {
		return fmt.Errorf("decode typing: %w", err)
	}
	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return fmt.Errorf("decode typing: %w", err)
	}

	h.typing.Start(conversationID, userID, payload.Username, c)
	return nil
}

func (h *Hub) handleStopTyping(c *Client, data json.RawMessage) error {
	var payload StopTypingPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode stop-typing: %w", err)
	}
	conversationID, err := uuid.Parse(payload.ConversationID)
	if err != nil {
		return fmt.Errorf("decode stop-typing: %w", err)
	}
	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return fmt.Errorf("decode stop-typing: %w", err)
	}

	h.typing.Stop(conversationID, userID, c)
	return nil
}
