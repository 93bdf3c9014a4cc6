package websocket

import (
	"testing"
	"time"

	"knowledgebase-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quietLogger struct{}

func (quietLogger) Debug(module, message string, details map[string]interface{}) {}
func (quietLogger) Info(module, message string, details map[string]interface{})  {}
func (quietLogger) Warn(module, message string, details map[string]interface{})  {}
func (quietLogger) Error(module, message string, details map[string]interface{}) {}
func (quietLogger) Sync() error                                                  { return nil }

func (h *Hub) clientCount(userId entity.UserID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userId])
}

func TestHubSendDelivers(t *testing.T) {
	hub := NewHub(nil, quietLogger{})
	go hub.Run()

	userId := entity.UserID(1)
	client := &Client{Hub: hub, UserID: userId, Send: make(chan []byte, 4)}
	hub.register <- client

	require.Eventually(t, func() bool {
		return hub.clientCount(userId) == 1
	}, time.Second, 5*time.Millisecond)

	hub.Send(userId, "reindex_progress", map[string]interface{}{"completed": 1})

	select {
	case msg := <-client.Send:
		assert.Contains(t, string(msg), "reindex_progress")
	case <-time.After(time.Second):
		t.Fatal("message never delivered")
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub(nil, quietLogger{})
	go hub.Run()

	userId := entity.UserID(2)
	// Unbuffered Send with no reader: every delivery hits the full-buffer
	// path, which must unregister the client without panicking the hub.
	slow := &Client{Hub: hub, UserID: userId, Send: make(chan []byte)}
	hub.register <- slow

	require.Eventually(t, func() bool {
		return hub.clientCount(userId) == 1
	}, time.Second, 5*time.Millisecond)

	hub.Send(userId, "reindex_progress", map[string]interface{}{"completed": 1})

	require.Eventually(t, func() bool {
		return hub.clientCount(userId) == 0
	}, time.Second, 5*time.Millisecond)

	// The unregister path is the sole closer of Send.
	select {
	case _, open := <-slow.Send:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("Send channel never closed")
	}

	// A later broadcast to the same user must not touch the dropped client.
	hub.Send(userId, "reindex_done", nil)
	assert.Equal(t, 0, hub.clientCount(userId))
}

func TestHubUnregisterUnknownClientIsNoop(t *testing.T) {
	hub := NewHub(nil, quietLogger{})
	go hub.Run()

	userId := entity.UserID(3)
	kept := &Client{Hub: hub, UserID: userId, Send: make(chan []byte, 1)}
	hub.register <- kept

	require.Eventually(t, func() bool {
		return hub.clientCount(userId) == 1
	}, time.Second, 5*time.Millisecond)

	// A disconnecting connection that was already dropped by a full-buffer
	// broadcast unregisters again; the second pass must not close anything.
	stranger := &Client{Hub: hub, UserID: userId, Send: make(chan []byte)}
	hub.unregister <- stranger

	hub.Send(userId, "reindex_progress", map[string]interface{}{"completed": 2})

	select {
	case msg := <-kept.Send:
		assert.Contains(t, string(msg), "reindex_progress")
	case <-time.After(time.Second):
		t.Fatal("surviving client never received the message")
	}
}
