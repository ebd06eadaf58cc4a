package realtime

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultTypingTTL = 10 * time.Second

type typingKey struct {
	conversationID uuid.UUID
	userID         uuid.UUID
}

// TypingRelay broadcasts ephemeral typing signals to a room, excluding the
// typist. The server keeps no typing state beyond a TTL timer per
// (conversation, user): if the typist goes silent or disconnects without a
// stop-typing, the relay clears the indicator for everyone itself instead of
// depending on client goodwill.
type TypingRelay struct {
	mu     sync.Mutex
	rooms  *RoomSet
	ttl    time.Duration
	timers map[typingKey]*time.Timer
}

func NewTypingRelay(rooms *RoomSet, ttl time.Duration) *TypingRelay {
	if ttl <= 0 {
		ttl = defaultTypingTTL
	}
	return &TypingRelay{
		rooms:  rooms,
		ttl:    ttl,
		timers: make(map[typingKey]*time.Timer),
	}
}

// Start relays a typing signal from c and arms (or re-arms) the expiry timer.
func (t *TypingRelay) Start(conversationID, userID uuid.UUID, username string, c *Client) {
	payload := encodeEvent(EventUserTyping, UserTypingEvent{
		UserID:   userID.String(),
		Username: username,
	})
	t.rooms.Broadcast(conversationID, payload, c)

	key := typingKey{conversationID: conversationID, userID: userID}

	t.mu.Lock()
	defer t.mu.Unlock()
	if timer, ok := t.timers[key]; ok {
		timer.Reset(t.ttl)
		return
	}
	t.timers[key] = time.AfterFunc(t.ttl, func() {
		t.expire(key)
	})
}

// Stop relays a stop-typing signal from c and disarms the expiry timer.
func (t *TypingRelay) Stop(conversationID, userID uuid.UUID, c *Client) {
	t.cancel(typingKey{conversationID: conversationID, userID: userID})

	payload := encodeEvent(EventUserStopTyping, UserStopTypingEvent{UserID: userID.String()})
	t.rooms.Broadcast(conversationID, payload, c)
}

// DropUser clears every live typing indicator for a disconnecting user,
// broadcasting stop-typing to the affected rooms.
func (t *TypingRelay) DropUser(userID uuid.UUID) {
	t.mu.Lock()
	var expired []typingKey
	for key, timer := range t.timers {
		if key.userID != userID {
			continue
		}
		timer.Stop()
		delete(t.timers, key)
		expired = append(expired, key)
	}
	t.mu.Unlock()

	for _, key := range expired {
		payload := encodeEvent(EventUserStopTyping, UserStopTypingEvent{UserID: key.userID.String()})
		t.rooms.Broadcast(key.conversationID, payload, nil)
	}
}

func (t *TypingRelay) expire(key typingKey) {
	t.mu.Lock()
	timer, ok := t.timers[key]
	if ok {
		timer.Stop()
		delete(t.timers, key)
	}
	t.mu.Unlock()
	if !ok {
		return
	}

	payload := encodeEvent(EventUserStopTyping, UserStopTypingEvent{UserID: key.userID.String()})
	t.rooms.Broadcast(key.conversationID, payload, nil)
}

func (t *TypingRelay) cancel(key typingKey) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if timer, ok := t.timers[key]; ok {
		timer.Stop()
		delete(t.timers, key)
	}
}
