package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/vininote/internal/logger"
	"github.com/sakif/vininote/internal/store"
)

func TestEventHub_DropsSlowClient(t *testing.T) {
	h := NewEventHub(logger.Discard())
	cl, ok := h.register()
	require.True(t, ok)

	for i := 0; i <= eventBuffer; i++ {
		h.Publish(store.Change{Key: store.KeyTastings, Op: store.OpInsert})
	}

	assert.Equal(t, 0, h.Clients())

	// The buffered changes are still readable, then the channel is closed.
	n := 0
	for range cl.send {
		n++
	}
	assert.Equal(t, eventBuffer, n)
}

func TestEventHub_RunClosesClients(t *testing.T) {
	h := NewEventHub(logger.Discard())
	cl, ok := h.register()
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, h.Run(ctx))

	_, open := <-cl.send
	assert.False(t, open)

	_, ok = h.register()
	assert.False(t, ok, "no registration after shutdown")
}

func TestEventHub_HandleEvents(t *testing.T) {
	h := NewEventHub(logger.Discard())
	srv := httptest.NewServer(http.HandlerFunc(h.HandleEvents))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.Clients() == 1 }, time.Second, 5*time.Millisecond)

	h.Publish(store.Change{Key: store.KeyFavorites, Op: store.OpSet, ID: "t1"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var c store.Change
	require.NoError(t, conn.ReadJSON(&c))
	assert.Equal(t, store.Change{Key: store.KeyFavorites, Op: store.OpSet, ID: "t1"}, c)

	conn.Close()
	assert.Eventually(t, func() bool { return h.Clients() == 0 }, time.Second, 5*time.Millisecond)
}
