package realtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomSet_JoinAndBroadcast(t *testing.T) {
	rooms := NewRoomSet()
	convID := uuid.New()

	sender := newBareClient()
	viewer := newBareClient()

	rooms.Join(sender, convID)
	rooms.Join(viewer, convID)
	assert.Equal(t, 2, rooms.Subscribers(convID))

	rooms.Broadcast(convID, []byte(`{"event":"new-message"}`), nil)

	assert.Len(t, sender.send, 1, "broadcast without exclusion reaches the sender")
	assert.Len(t, viewer.send, 1)
}

func TestRoomSet_BroadcastExcludesSender(t *testing.T) {
	rooms := NewRoomSet()
	convID := uuid.New()

	sender := newBareClient()
	viewer := newBareClient()

	rooms.Join(sender, convID)
	rooms.Join(viewer, convID)

	rooms.Broadcast(convID, []byte(`{"event":"user-typing"}`), sender)

	assert.Len(t, sender.send, 0, "excluded connection must not receive the frame")
	assert.Len(t, viewer.send, 1)
}

func TestRoomSet_JoinSwitchesActiveRoom(t *testing.T) {
	rooms := NewRoomSet()
	first := uuid.New()
	second := uuid.New()

	c := newBareClient()
	rooms.Join(c, first)
	rooms.Join(c, second)

	active, ok := rooms.ActiveRoom(c)
	require.True(t, ok)
	assert.Equal(t, second, active)
	assert.Equal(t, 0, rooms.Subscribers(first), "joining a new room leaves the previous one")
	assert.Equal(t, 1, rooms.Subscribers(second))

	rooms.Broadcast(first, []byte(`x`), nil)
	assert.Len(t, c.send, 0, "no frames from the left room")
}

func TestRoomSet_JoinIsIdempotent(t *testing.T) {
	rooms := NewRoomSet()
	convID := uuid.New()

	c := newBareClient()
	rooms.Join(c, convID)
	rooms.Join(c, convID)

	assert.Equal(t, 1, rooms.Subscribers(convID))
}

func TestRoomSet_LeaveAndDrop(t *testing.T) {
	rooms := NewRoomSet()
	convID := uuid.New()

	c := newBareClient()
	rooms.Join(c, convID)
	rooms.Leave(c)

	_, ok := rooms.ActiveRoom(c)
	assert.False(t, ok)
	assert.Equal(t, 0, rooms.Subscribers(convID))

	// Leave with no active room is a no-op.
	rooms.Leave(c)

	rooms.Join(c, convID)
	rooms.Drop(c)
	assert.Equal(t, 0, rooms.Subscribers(convID))
}
