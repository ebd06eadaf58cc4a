package realtime

import (
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"chatlab/internal/domain/conversation"
	"chatlab/internal/domain/message"
	"chatlab/internal/domain/user"
	"chatlab/internal/repository"
	"chatlab/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type hubFixture struct {
	hub      *Hub
	userRepo *repository.MockUserRepository
	convRepo *repository.MockConversationRepository
	msgRepo  *repository.MockMessageRepository
}

func newTestHub(t *testing.T) *hubFixture {
	t.Helper()

	userRepo := new(repository.MockUserRepository)
	convRepo := new(repository.MockConversationRepository)
	msgRepo := new(repository.MockMessageRepository)

	hub := NewHub(
		services.NewUserService(userRepo),
		services.NewConversationService(convRepo, userRepo, msgRepo),
		services.NewMessageService(msgRepo, convRepo),
		nil,
	)
	return &hubFixture{hub: hub, userRepo: userRepo, convRepo: convRepo, msgRepo: msgRepo}
}

// newBareClient builds a connection-less client usable wherever only the send
// buffer matters.
func newBareClient() *Client {
	hub := &Hub{logger: NewEventLogger()}
	return &Client{
		hub:    hub,
		send:   make(chan []byte, sendBufferSize),
		id:     uuid.New().String(),
		userID: uuid.New(),
	}
}

func (f *hubFixture) connect(username string) *Client {
	c := newClient(f.hub, nil, uuid.New(), username)
	f.hub.addClient(c)
	return c
}

func decodeFrame(t *testing.T, frame []byte) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(frame, &env))
	return env
}

func rawString(t *testing.T, s string) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return b
}

func TestHub_UserOnlineBroadcastsStatus(t *testing.T) {
	f := newTestHub(t)
	alice := f.connect("alice")
	bob := f.connect("bob")

	f.userRepo.On("UpdateOnlineStatus", mock.Anything, alice.userID, true, mock.Anything).Return(nil)

	err := f.hub.handleUserOnline(alice, rawString(t, alice.userID.String()))
	require.NoError(t, err)

	current, ok := f.hub.registry.Resolve(alice.userID)
	require.True(t, ok)
	assert.Equal(t, alice, current)

	for _, c := range []*Client{alice, bob} {
		require.Len(t, c.send, 1, "status change goes to every connection, announcer included")
		env := decodeFrame(t, <-c.send)
		assert.Equal(t, EventUserStatusChange, env.Event)

		var payload StatusChangeEvent
		require.NoError(t, json.Unmarshal(env.Data, &payload))
		assert.Equal(t, alice.userID.String(), payload.UserID)
		assert.True(t, payload.IsOnline)
	}
	f.userRepo.AssertExpectations(t)
}

func TestHub_UserOnlineIdentityMismatch(t *testing.T) {
	f := newTestHub(t)
	alice := f.connect("alice")

	err := f.hub.handleUserOnline(alice, rawString(t, uuid.New().String()))
	require.NoError(t, err)

	_, ok := f.hub.registry.Resolve(alice.userID)
	assert.False(t, ok, "a mismatched announcement must not register the connection")
	assert.Len(t, alice.send, 0)
	f.userRepo.AssertNotCalled(t, "UpdateOnlineStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHub_UserOnlinePersistFailureSkipsBroadcast(t *testing.T) {
	f := newTestHub(t)
	alice := f.connect("alice")
	bob := f.connect("bob")

	f.userRepo.On("UpdateOnlineStatus", mock.Anything, alice.userID, true, mock.Anything).
		Return(errors.New("db down"))

	err := f.hub.handleUserOnline(alice, rawString(t, alice.userID.String()))
	require.NoError(t, err)

	assert.Len(t, alice.send, 0, "no status change when the flag was not persisted")
	assert.Len(t, bob.send, 0)
}

func TestHub_ReconnectThenStaleDisconnect(t *testing.T) {
	f := newTestHub(t)
	userID := uuid.New()

	first := newClient(f.hub, nil, userID, "alice")
	f.hub.addClient(first)
	second := newClient(f.hub, nil, userID, "alice")
	f.hub.addClient(second)
	observer := f.connect("bob")

	f.userRepo.On("UpdateOnlineStatus", mock.Anything, userID, true, mock.Anything).Return(nil).Twice()

	require.NoError(t, f.hub.handleUserOnline(first, rawString(t, userID.String())))
	require.NoError(t, f.hub.handleUserOnline(second, rawString(t, userID.String())))
	drain(observer)
	drain(second)

	// The old connection's teardown arrives after the reconnect. The user
	// must stay online and no offline transition may be persisted.
	f.hub.removeClient(first)

	current, ok := f.hub.registry.Resolve(userID)
	require.True(t, ok)
	assert.Equal(t, second, current)
	assert.Len(t, observer.send, 0, "no status change for a superseded disconnect")
	f.userRepo.AssertNotCalled(t, "UpdateOnlineStatus", mock.Anything, userID, false, mock.Anything)
}

func TestHub_DisconnectCurrentConnectionGoesOffline(t *testing.T) {
	f := newTestHub(t)
	alice := f.connect("alice")
	bob := f.connect("bob")

	f.userRepo.On("UpdateOnlineStatus", mock.Anything, alice.userID, true, mock.Anything).Return(nil)
	f.userRepo.On("UpdateOnlineStatus", mock.Anything, alice.userID, false, mock.Anything).Return(nil)

	require.NoError(t, f.hub.handleUserOnline(alice, rawString(t, alice.userID.String())))
	drain(alice)
	drain(bob)

	f.hub.removeClient(alice)

	_, ok := f.hub.registry.Resolve(alice.userID)
	assert.False(t, ok)

	require.Len(t, bob.send, 1)
	env := decodeFrame(t, <-bob.send)
	assert.Equal(t, EventUserStatusChange, env.Event)

	var payload StatusChangeEvent
	require.NoError(t, json.Unmarshal(env.Data, &payload))
	assert.False(t, payload.IsOnline)
	f.userRepo.AssertExpectations(t)
}

func TestHub_JoinConversationRequiresMembership(t *testing.T) {
	f := newTestHub(t)
	alice := f.connect("alice")
	convID := uuid.New()

	f.convRepo.On("IsParticipant", mock.Anything, convID, alice.userID).Return(false, nil)

	require.NoError(t, f.hub.handleJoinConversation(alice, rawString(t, convID.String())))
	assert.Equal(t, 0, f.hub.rooms.Subscribers(convID), "non-participants are not subscribed")

	other := uuid.New()
	f.convRepo.On("IsParticipant", mock.Anything, other, alice.userID).Return(true, nil)

	require.NoError(t, f.hub.handleJoinConversation(alice, rawString(t, other.String())))
	assert.Equal(t, 1, f.hub.rooms.Subscribers(other))
}

func TestHub_SendMessageFanout(t *testing.T) {
	f := newTestHub(t)
	convID := uuid.New()

	sender := f.connect("alice")
	roomMate := f.connect("bob")
	offRoom := f.connect("carol")

	f.hub.registry.Bind(sender.userID, sender)
	f.hub.registry.Bind(roomMate.userID, roomMate)
	f.hub.registry.Bind(offRoom.userID, offRoom)
	f.hub.rooms.Join(sender, convID)
	f.hub.rooms.Join(roomMate, convID)

	stored := message.Message{
		ID:             uuid.New(),
		ConversationID: convID,
		SenderID:       sender.userID,
		Type:           message.TypeText,
		Content:        sql.NullString{String: "hi", Valid: true},
		CreatedAt:      time.Now(),
		Sender:         user.User{ID: sender.userID, Username: "alice"},
	}

	f.convRepo.On("IsParticipant", mock.Anything, convID, sender.userID).Return(true, nil)
	f.msgRepo.On("Create", mock.Anything, mock.AnythingOfType("*message.Message")).Return(nil)
	f.convRepo.On("SetLastMessage", mock.Anything, convID, mock.Anything, mock.Anything).Return(nil)
	f.msgRepo.On("GetByIDWithSender", mock.Anything, mock.Anything).Return(stored, nil)
	f.convRepo.On("GetByID", mock.Anything, convID).Return(conversation.Conversation{
		ID: convID,
		Participants: []conversation.Participant{
			{ConversationID: convID, UserID: sender.userID},
			{ConversationID: convID, UserID: roomMate.userID},
			{ConversationID: convID, UserID: offRoom.userID},
		},
	}, nil)

	payload, err := json.Marshal(SendMessagePayload{
		ConversationID: convID.String(),
		SenderID:       sender.userID.String(),
		Content:        "hi",
		MessageType:    message.TypeText,
	})
	require.NoError(t, err)

	require.NoError(t, f.hub.handleSendMessage(sender, payload))

	// Room subscribers get new-message, the sender included.
	require.Len(t, sender.send, 1)
	assert.Equal(t, EventNewMessage, decodeFrame(t, <-sender.send).Event)

	// A participant in the room gets the broadcast plus a notification.
	require.Len(t, roomMate.send, 2)
	assert.Equal(t, EventNewMessage, decodeFrame(t, <-roomMate.send).Event)
	env := decodeFrame(t, <-roomMate.send)
	assert.Equal(t, EventNotification, env.Event)

	var note NotificationEvent
	require.NoError(t, json.Unmarshal(env.Data, &note))
	assert.Equal(t, "new-message", note.Type)
	assert.Equal(t, convID.String(), note.ConversationID)
	assert.Equal(t, stored.ID.String(), note.Message.ID)

	// A participant outside the room only gets the notification.
	require.Len(t, offRoom.send, 1)
	assert.Equal(t, EventNotification, decodeFrame(t, <-offRoom.send).Event)
}

func TestHub_SendMessageFailureGoesToSenderOnly(t *testing.T) {
	f := newTestHub(t)
	convID := uuid.New()

	sender := f.connect("alice")
	roomMate := f.connect("bob")
	f.hub.rooms.Join(sender, convID)
	f.hub.rooms.Join(roomMate, convID)

	f.convRepo.On("IsParticipant", mock.Anything, convID, sender.userID).Return(true, nil)
	f.msgRepo.On("Create", mock.Anything, mock.AnythingOfType("*message.Message")).
		Return(errors.New("insert failed"))

	payload, err := json.Marshal(SendMessagePayload{
		ConversationID: convID.String(),
		SenderID:       sender.userID.String(),
		Content:        "hi",
		MessageType:    message.TypeText,
	})
	require.NoError(t, err)

	require.NoError(t, f.hub.handleSendMessage(sender, payload))

	require.Len(t, sender.send, 1)
	env := decodeFrame(t, <-sender.send)
	assert.Equal(t, EventMessageError, env.Event)

	var msgErr MessageErrorEvent
	require.NoError(t, json.Unmarshal(env.Data, &msgErr))
	assert.Equal(t, sendFailureMessage, msgErr.Message)

	assert.Len(t, roomMate.send, 0, "a failed send leaks nothing to the room")
}

func TestHub_SendMessageSenderMismatch(t *testing.T) {
	f := newTestHub(t)
	sender := f.connect("alice")

	payload, err := json.Marshal(SendMessagePayload{
		ConversationID: uuid.New().String(),
		SenderID:       uuid.New().String(),
		Content:        "hi",
		MessageType:    message.TypeText,
	})
	require.NoError(t, err)

	require.NoError(t, f.hub.handleSendMessage(sender, payload))

	require.Len(t, sender.send, 1)
	assert.Equal(t, EventMessageError, decodeFrame(t, <-sender.send).Event)
	f.msgRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHub_SendMessageNotParticipant(t *testing.T) {
	f := newTestHub(t)
	convID := uuid.New()
	sender := f.connect("alice")

	f.convRepo.On("IsParticipant", mock.Anything, convID, sender.userID).Return(false, nil)

	payload, err := json.Marshal(SendMessagePayload{
		ConversationID: convID.String(),
		SenderID:       sender.userID.String(),
		Content:        "hi",
		MessageType:    message.TypeText,
	})
	require.NoError(t, err)

	require.NoError(t, f.hub.handleSendMessage(sender, payload))

	require.Len(t, sender.send, 1)
	assert.Equal(t, EventMessageError, decodeFrame(t, <-sender.send).Event)
	f.msgRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHub_NotifyAfterDisconnectIsDropped(t *testing.T) {
	f := newTestHub(t)
	alice := f.connect("alice")
	f.hub.registry.Bind(alice.userID, alice)
	f.userRepo.On("UpdateOnlineStatus", mock.Anything, alice.userID, false, mock.Anything).Return(nil)

	// The fanout resolves the connection just before its disconnect is
	// processed, so the enqueue lands on a torn-down client.
	target, ok := f.hub.registry.Resolve(alice.userID)
	require.True(t, ok)

	f.hub.removeClient(alice)

	assert.NotPanics(t, func() {
		target.enqueue(encodeEvent(EventNotification, NotificationEvent{
			Type:           "new-message",
			ConversationID: uuid.New().String(),
		}))
	}, "delivery racing teardown must drop the frame, not panic")
}

func TestHub_NotificationStageFailureIsNotASendFailure(t *testing.T) {
	f := newTestHub(t)
	convID := uuid.New()

	sender := f.connect("alice")
	roomMate := f.connect("bob")
	f.hub.rooms.Join(sender, convID)
	f.hub.rooms.Join(roomMate, convID)

	stored := message.Message{
		ID:             uuid.New(),
		ConversationID: convID,
		SenderID:       sender.userID,
		Type:           message.TypeText,
		Content:        sql.NullString{String: "hi", Valid: true},
		CreatedAt:      time.Now(),
		Sender:         user.User{ID: sender.userID, Username: "alice"},
	}

	f.convRepo.On("IsParticipant", mock.Anything, convID, sender.userID).Return(true, nil)
	f.msgRepo.On("Create", mock.Anything, mock.AnythingOfType("*message.Message")).Return(nil)
	f.convRepo.On("SetLastMessage", mock.Anything, convID, mock.Anything, mock.Anything).Return(nil)
	f.msgRepo.On("GetByIDWithSender", mock.Anything, mock.Anything).Return(stored, nil)
	f.convRepo.On("GetByID", mock.Anything, convID).
		Return(conversation.Conversation{}, errors.New("read failed"))

	payload, err := json.Marshal(SendMessagePayload{
		ConversationID: convID.String(),
		SenderID:       sender.userID.String(),
		Content:        "hi",
		MessageType:    message.TypeText,
	})
	require.NoError(t, err)

	require.NoError(t, f.hub.handleSendMessage(sender, payload))

	// The message went out; the sender must only see new-message, never a
	// message-error that would prompt a duplicate re-send.
	require.Len(t, sender.send, 1)
	assert.Equal(t, EventNewMessage, decodeFrame(t, <-sender.send).Event)

	require.Len(t, roomMate.send, 1)
	assert.Equal(t, EventNewMessage, decodeFrame(t, <-roomMate.send).Event)
}

func TestHub_TypingRelaysThroughRoom(t *testing.T) {
	f := newTestHub(t)
	convID := uuid.New()

	typist := f.connect("alice")
	viewer := f.connect("bob")
	f.hub.rooms.Join(typist, convID)
	f.hub.rooms.Join(viewer, convID)

	payload, err := json.Marshal(TypingPayload{
		ConversationID: convID.String(),
		UserID:         typist.userID.String(),
		Username:       "alice",
	})
	require.NoError(t, err)

	require.NoError(t, f.hub.handleTyping(typist, payload))
	assert.Len(t, typist.send, 0)
	require.Len(t, viewer.send, 1)
	assert.Equal(t, EventUserTyping, decodeFrame(t, <-viewer.send).Event)

	stop, err := json.Marshal(StopTypingPayload{
		ConversationID: convID.String(),
		UserID:         typist.userID.String(),
	})
	require.NoError(t, err)

	require.NoError(t, f.hub.handleStopTyping(typist, stop))
	require.Len(t, viewer.send, 1)
	assert.Equal(t, EventUserStopTyping, decodeFrame(t, <-viewer.send).Event)
}

func TestHub_LeaveConversationStopsBroadcasts(t *testing.T) {
	f := newTestHub(t)
	convID := uuid.New()

	c := f.connect("alice")
	f.convRepo.On("IsParticipant", mock.Anything, convID, c.userID).Return(true, nil)
	require.NoError(t, f.hub.handleJoinConversation(c, rawString(t, convID.String())))

	f.hub.handleLeaveConversation(c)
	assert.Equal(t, 0, f.hub.rooms.Subscribers(convID))
}

func drain(c *Client) {
	for {
		select {
		case <-c.send:
		default:
			return
		}
	}
}
