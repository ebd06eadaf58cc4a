package realtime

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeEvent_WireShape(t *testing.T) {
	frame := encodeEvent(EventUserStatusChange, StatusChangeEvent{
		UserID:   "u1",
		IsOnline: true,
	})
	require.NotNil(t, frame)
	assert.JSONEq(t, `{"event":"user-status-change","data":{"userId":"u1","isOnline":true}}`, string(frame))
}

func TestEncodeEvent_NoPayload(t *testing.T) {
	frame := encodeEvent("ping", nil)
	require.NotNil(t, frame)
	assert.JSONEq(t, `{"event":"ping"}`, string(frame))
}

func TestEnvelope_BareStringData(t *testing.T) {
	var env Envelope
	require.NoError(t, json.Unmarshal([]byte(`{"event":"user-online","data":"abc-123"}`), &env))
	assert.Equal(t, EventUserOnline, env.Event)

	var id string
	require.NoError(t, json.Unmarshal(env.Data, &id))
	assert.Equal(t, "abc-123", id)
}

func TestMessageErrorEvent_Shape(t *testing.T) {
	frame := encodeEvent(EventMessageError, MessageErrorEvent{Message: "Failed to send message"})
	assert.JSONEq(t, `{"event":"message-error","data":{"message":"Failed to send message"}}`, string(frame))
}

func TestUserTypingEvent_Shape(t *testing.T) {
	frame := encodeEvent(EventUserTyping, UserTypingEvent{UserID: "u1", Username: "alice"})
	assert.JSONEq(t, `{"event":"user-typing","data":{"userId":"u1","username":"alice"}}`, string(frame))

	frame = encodeEvent(EventUserStopTyping, UserStopTypingEvent{UserID: "u1"})
	assert.JSONEq(t, `{"event":"user-stop-typing","data":{"userId":"u1"}}`, string(frame))
}
