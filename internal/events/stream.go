package events

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	// Time between keepalive comments
	keepalivePeriod = 30 * time.Second

	// Buffer size for outgoing messages per connection
	sendBufferSize = 256
)

// Stream is the outgoing half of one persistent connection. Bus callbacks
// enqueue formatted events; Serve pumps them to the peer.
type Stream struct {
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

// NewStream creates a stream for one connection
func NewStream(logger *slog.Logger) *Stream {
	return &Stream{
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Send enqueues a named event with a JSON payload. A nil payload sends an
// event with an empty data line. Slow consumers drop rather than block the
// publisher.
func (s *Stream) Send(event string, payload any) {
	data := []byte{}
	if payload != nil {
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			s.logger.Error("stream payload marshal failed",
				slog.String("event", event),
				slog.String("error", err.Error()))
			return
		}
	}

	select {
	case s.send <- formatEvent(event, data):
	case <-s.done:
	default:
		s.logger.Warn("stream message dropped - buffer full",
			slog.String("event", event))
	}
}

// Close ends the stream; Serve returns after draining. Safe to call from
// multiple goroutines.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// Serve writes the stream to the peer as server-sent events until the
// connection drops or the stream is closed
func (s *Stream) Serve(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	flusher.Flush()

	ticker := time.NewTicker(keepalivePeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-s.send:
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-s.done:
			// Drain anything enqueued before the close
			for {
				select {
				case message := <-s.send:
					if _, err := w.Write(message); err != nil {
						return
					}
				default:
					flusher.Flush()
					return
				}
			}

		case <-r.Context().Done():
			return
		}
	}
}

// formatEvent renders one SSE frame. Data never contains raw newlines here
// (payloads are single-line JSON) but multi-line data is still framed
// correctly.
func formatEvent(event string, data []byte) []byte {
	var buf bytes.Buffer
	buf.WriteString("event: ")
	buf.WriteString(event)
	buf.WriteByte('\n')
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		buf.WriteString("data: ")
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	return buf.Bytes()
}
