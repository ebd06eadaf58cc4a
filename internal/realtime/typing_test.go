package realtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypingRelay_StartExcludesTypist(t *testing.T) {
	rooms := NewRoomSet()
	relay := NewTypingRelay(rooms, time.Minute)
	convID := uuid.New()

	typist := newBareClient()
	viewer := newBareClient()
	rooms.Join(typist, convID)
	rooms.Join(viewer, convID)

	relay.Start(convID, typist.userID, "alice", typist)

	assert.Len(t, typist.send, 0, "the typist must not see their own indicator")
	require.Len(t, viewer.send, 1)

	env := decodeFrame(t, <-viewer.send)
	assert.Equal(t, EventUserTyping, env.Event)

	var payload UserTypingEvent
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, typist.userID.String(), payload.UserID)
	assert.Equal(t, "alice", payload.Username)
}

func TestTypingRelay_StopClearsIndicator(t *testing.T) {
	rooms := NewRoomSet()
	relay := NewTypingRelay(rooms, time.Minute)
	convID := uuid.New()

	typist := newBareClient()
	viewer := newBareClient()
	rooms.Join(typist, convID)
	rooms.Join(viewer, convID)

	relay.Start(convID, typist.userID, "alice", typist)
	<-viewer.send
	relay.Stop(convID, typist.userID, typist)

	require.Len(t, viewer.send, 1)
	env := decodeFrame(t, <-viewer.send)
	assert.Equal(t, EventUserStopTyping, env.Event)

	var payload UserStopTypingEvent
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.Equal(t, typist.userID.String(), payload.UserID)
	assert.Len(t, typist.send, 0, "stop-typing is not echoed to the typist")
}

func TestTypingRelay_TTLExpiryEmitsStop(t *testing.T) {
	rooms := NewRoomSet()
	relay := NewTypingRelay(rooms, 20*time.Millisecond)
	convID := uuid.New()

	typist := newBareClient()
	viewer := newBareClient()
	rooms.Join(typist, convID)
	rooms.Join(viewer, convID)

	relay.Start(convID, typist.userID, "alice", typist)
	<-viewer.send

	select {
	case frame := <-viewer.send:
		env := decodeFrame(t, frame)
		assert.Equal(t, EventUserStopTyping, env.Event)
	case <-time.After(time.Second):
		t.Fatal("timeout: stop-typing was not emitted after the TTL expired")
	}
}

func TestTypingRelay_RestartResetsTTL(t *testing.T) {
	rooms := NewRoomSet()
	relay := NewTypingRelay(rooms, 50*time.Millisecond)
	convID := uuid.New()

	typist := newBareClient()
	viewer := newBareClient()
	rooms.Join(typist, convID)
	rooms.Join(viewer, convID)

	relay.Start(convID, typist.userID, "alice", typist)
	<-viewer.send
	time.Sleep(30 * time.Millisecond)
	relay.Start(convID, typist.userID, "alice", typist)
	<-viewer.send

	// The first deadline would have fired by now; the reset must have
	// pushed it out.
	time.Sleep(30 * time.Millisecond)
	assert.Len(t, viewer.send, 0, "re-typing must reset the expiry deadline")
}

func TestTypingRelay_DropUserClearsAllIndicators(t *testing.T) {
	rooms := NewRoomSet()
	relay := NewTypingRelay(rooms, time.Minute)
	convID := uuid.New()

	typist := newBareClient()
	viewer := newBareClient()
	rooms.Join(typist, convID)
	rooms.Join(viewer, convID)

	relay.Start(convID, typist.userID, "alice", typist)
	<-viewer.send
	relay.DropUser(typist.userID)

	require.Len(t, viewer.send, 1)
	env := decodeFrame(t, <-viewer.send)
	assert.Equal(t, EventUserStopTyping, env.Event)
}

func TestTypingRelay_StopWithoutStart(t *testing.T) {
	rooms := NewRoomSet()
	relay := NewTypingRelay(rooms, time.Minute)
	convID := uuid.New()

	typist := newBareClient()
	viewer := newBareClient()
	rooms.Join(typist, convID)
	rooms.Join(viewer, convID)

	relay.Stop(convID, typist.userID, typist)

	require.Len(t, viewer.send, 1, "stop-typing relays even with no prior start")
	env := decodeFrame(t, <-viewer.send)
	assert.Equal(t, EventUserStopTyping, env.Event)
}
