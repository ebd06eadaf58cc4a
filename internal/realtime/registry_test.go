package realtime

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestConnRegistry_BindSupersedes(t *testing.T) {
	registry := NewConnRegistry()
	userID := uuid.New()

	first := &Client{userID: userID, send: make(chan []byte, 1)}
	second := &Client{userID: userID, send: make(chan []byte, 1)}

	assert.Nil(t, registry.Bind(userID, first), "first bind must not supersede anything")

	prev := registry.Bind(userID, second)
	assert.Equal(t, first, prev, "second bind must return the superseded connection")

	current, ok := registry.Resolve(userID)
	assert.True(t, ok)
	assert.Equal(t, second, current, "registry must resolve to the most recent connection")
	assert.Equal(t, 1, registry.Len())
}

func TestConnRegistry_BindSameConnectionTwice(t *testing.T) {
	registry := NewConnRegistry()
	userID := uuid.New()
	c := &Client{userID: userID, send: make(chan []byte, 1)}

	registry.Bind(userID, c)
	assert.Nil(t, registry.Bind(userID, c), "rebinding the same connection is not a supersede")
}

func TestConnRegistry_ReleaseStaleConnection(t *testing.T) {
	registry := NewConnRegistry()
	userID := uuid.New()

	first := &Client{userID: userID, send: make(chan []byte, 1)}
	second := &Client{userID: userID, send: make(chan []byte, 1)}

	registry.Bind(userID, first)
	registry.Bind(userID, second)

	// The reconnect race: the old connection's teardown runs after the new
	// connection registered. It must not evict the new one.
	assert.False(t, registry.Release(first), "stale connection must not release the current binding")

	current, ok := registry.Resolve(userID)
	assert.True(t, ok, "user must stay resolvable after stale release")
	assert.Equal(t, second, current)

	assert.True(t, registry.Release(second), "current connection releases normally")
	_, ok = registry.Resolve(userID)
	assert.False(t, ok)
	assert.Equal(t, 0, registry.Len())
}

func TestConnRegistry_ReleaseUnknownConnection(t *testing.T) {
	registry := NewConnRegistry()
	c := &Client{userID: uuid.New(), send: make(chan []byte, 1)}

	assert.False(t, registry.Release(c), "releasing a never-bound connection is a no-op")
}
