package realtime

import (
	"sync"

	"github.com/google/uuid"
)

// RoomSet tracks, per conversation, the connections subscribed to its
// broadcasts. A connection views one conversation at a time: joining a room
// implicitly leaves the previous one, so a connection's broadcast targets
// always reflect the conversation currently on screen.
type RoomSet struct {
	mu     sync.RWMutex
	rooms  map[uuid.UUID]map[*Client]struct{}
	active map[*Client]uuid.UUID
}

func NewRoomSet() *RoomSet {
	return &RoomSet{
		rooms:  make(map[uuid.UUID]map[*Client]struct{}),
		active: make(map[*Client]uuid.UUID),
	}
}

// Join subscribes c to the conversation's room, leaving the previously active
// room if there was one. Safe to call repeatedly.
func (rs *RoomSet) Join(c *Client, conversationID uuid.UUID) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if prev, ok := rs.active[c]; ok {
		if prev == conversationID {
			return
		}
		rs.removeLocked(c, prev)
	}

	subscribers, ok := rs.rooms[conversationID]
	if !ok {
		subscribers = make(map[*Client]struct{})
		rs.rooms[conversationID] = subscribers
	}
	subscribers[c] = struct{}{}
	rs.active[c] = conversationID
}

// Leave unsubscribes c from its active room, if any.
func (rs *RoomSet) Leave(c *Client) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if prev, ok := rs.active[c]; ok {
		rs.removeLocked(c, prev)
		delete(rs.active, c)
	}
}

// Drop removes c on disconnect. Identical to Leave; kept separate so call
// sites read correctly.
func (rs *RoomSet) Drop(c *Client) {
	rs.Leave(c)
}

// Broadcast delivers payload to every current subscriber of the conversation's
// room, except the excluded connection if given.
func (rs *RoomSet) Broadcast(conversationID uuid.UUID, payload []byte, exclude *Client) {
	if payload == nil {
		return
	}
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	for c := range rs.rooms[conversationID] {
		if c == exclude {
			continue
		}
		c.enqueue(payload)
	}
}

// Subscribers returns the number of connections in the conversation's room.
func (rs *RoomSet) Subscribers(conversationID uuid.UUID) int {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	return len(rs.rooms[conversationID])
}

// ActiveRoom returns the conversation c is currently viewing.
func (rs *RoomSet) ActiveRoom(c *Client) (uuid.UUID, bool) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()
	id, ok := rs.active[c]
	return id, ok
}

func (rs *RoomSet) removeLocked(c *Client, conversationID uuid.UUID) {
	if subscribers, ok := rs.rooms[conversationID]; ok {
		delete(subscribers, c)
		if len(subscribers) == 0 {
			delete(rs.rooms, conversationID)
		}
	}
}
