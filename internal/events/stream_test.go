package events

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duelcast/duelcast/internal/testutil"
)

func TestFormatEvent(t *testing.T) {
	frame := formatEvent("users", []byte(`{"users":[]}`))
	assert.Equal(t, "event: users\ndata: {\"users\":[]}\n\n", string(frame))

	frame = formatEvent("leave", []byte{})
	assert.Equal(t, "event: leave\ndata: \n\n", string(frame))
}

func TestServeWritesQueuedEvents(t *testing.T) {
	stream := NewStream(testutil.NopLogger())
	stream.Send("token", map[string]string{"token": "abc"})
	stream.Send("leave", nil)
	stream.Close()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/stream", nil)
	stream.Serve(rec, req)

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Contains(t, body, "event: token\ndata: {\"token\":\"abc\"}\n\n")
	assert.Contains(t, body, "event: leave\ndata: \n\n")

	// Close drained everything enqueued before it
	tokenIdx := strings.Index(body, "event: token")
	leaveIdx := strings.Index(body, "event: leave")
	assert.Less(t, tokenIdx, leaveIdx)
}

func TestServeEndsWhenRequestCancelled(t *testing.T) {
	stream := NewStream(testutil.NopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		stream.Serve(rec, req)
	}()

	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after request cancellation")
	}
}

func TestSendAfterCloseIsDropped(t *testing.T) {
	stream := NewStream(testutil.NopLogger())
	stream.Close()
	stream.Send("users", nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/stream", nil)
	stream.Serve(rec, req)

	assert.NotContains(t, rec.Body.String(), "event: users")
}

func TestConcurrentCloseIsSafe(t *testing.T) {
	stream := NewStream(testutil.NopLogger())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			stream.Close()
		}()
	}
	wg.Wait()

	select {
	case <-stream.done:
	default:
		t.Fatal("stream not closed")
	}
}

func TestSlowConsumerDropsInsteadOfBlocking(t *testing.T) {
	stream := NewStream(testutil.NopLogger())

	// Fill the buffer past capacity without a consumer; Send must not block
	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBufferSize+10; i++ {
			stream.Send("users", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked on a full buffer")
	}

	require.Len(t, stream.send, sendBufferSize)
}
