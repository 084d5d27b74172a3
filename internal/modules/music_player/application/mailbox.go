package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// DefaultInboxSize is the default buffer size for session inboxes.
const DefaultInboxSize = 100

// errSessionClosed is returned when posting to a session that has torn down.
// The router retries once against a fresh registry lookup.
var errSessionClosed = errors.New("session closed")

type result struct {
	reply Reply
	err   error
}

// envelope carries one event to a session worker. reply is nil for
// fire-and-forget events.
type envelope struct {
	ctx   context.Context
	event domain.Event
	reply chan result
}

func (e envelope) respond(r Reply, err error) {
	if e.reply != nil {
		e.reply <- result{reply: r, err: err}
	}
}

// mailbox is a session's FIFO run queue.
// Posting never blocks: a full inbox rejects the event.
type mailbox struct {
	inbox  chan envelope
	closed bool
	mu     sync.RWMutex
}

func newMailbox(size int) *mailbox {
	if size <= 0 {
		size = DefaultInboxSize
	}
	return &mailbox{inbox: make(chan envelope, size)}
}

func (m *mailbox) post(env envelope) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return errSessionClosed
	}

	select {
	case m.inbox <- env:
		return nil
	default:
		slog.Warn("session inbox full, rejecting event", "event", env.event.Name())
		return domain.ErrSessionBusy
	}
}

// close stops accepting events. Buffered envelopes are still delivered to
// the worker, which drains them.
func (m *mailbox) close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}
	m.closed = true
	close(m.inbox)
}
