package realtime

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A session whose send buffer is full gets dropped; the others keep
// receiving. Exercised directly against the hub loop, with hand-built
// sessions standing in for real connections.
func TestSlowSessionDropped(t *testing.T) {
	h := NewHub(nil, log.New(io.Discard, "", 0))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	slow := &session{hub: h, send: make(chan []byte, 1)}
	fast := &session{hub: h, send: make(chan []byte, 8)}
	h.register <- slow
	h.register <- fast
	require.Eventually(t, func() bool {
		return h.SessionCount() == 2
	}, time.Second, 5*time.Millisecond)

	// First event fills slow's buffer; the second overflows it.
	h.Activity("first", "info")
	h.Activity("second", "info")

	require.Eventually(t, func() bool {
		return h.SessionCount() == 1
	}, time.Second, 5*time.Millisecond, "slow session should be dropped, not waited for")

	for i := 0; i < 2; i++ {
		select {
		case payload, ok := <-fast.send:
			require.True(t, ok)
			assert.NotEmpty(t, payload)
		case <-time.After(time.Second):
			t.Fatal("fast session stopped receiving after the slow one was dropped")
		}
	}

	// The slow session kept its one buffered event, then was closed.
	payload, ok := <-slow.send
	require.True(t, ok)
	assert.NotEmpty(t, payload)
	_, ok = <-slow.send
	assert.False(t, ok, "dropped session's send channel must be closed")
}
