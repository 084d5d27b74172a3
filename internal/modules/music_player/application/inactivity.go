package application

import (
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// DefaultInactivityTimeout is how long a session may sit without playing
// before it disconnects.
const DefaultInactivityTimeout = 5 * time.Minute

// inactivityTimer publishes an InactivityTimeout event once the timeout
// elapses. It never touches session state itself: the session decides what
// to do when the event reaches its worker.
//
// Every Arm and Cancel bumps the generation, so an event from an earlier arm
// is recognised as stale. Only the session worker calls its methods.
type inactivityTimer struct {
	guildID    snowflake.ID
	timeout    time.Duration
	publisher  ports.EventPublisher
	timer      *time.Timer
	generation uint64
	armed      bool
}

func newInactivityTimer(
	guildID snowflake.ID,
	timeout time.Duration,
	publisher ports.EventPublisher,
) *inactivityTimer {
	return &inactivityTimer{
		guildID:   guildID,
		timeout:   timeout,
		publisher: publisher,
	}
}

// Arm (re)starts the countdown. A zero timeout disables the timer.
func (t *inactivityTimer) Arm() {
	t.Cancel()
	if t.timeout <= 0 || t.publisher == nil {
		return
	}

	event := domain.InactivityTimeout{GuildID: t.guildID, Generation: t.generation}
	t.armed = true
	t.timer = time.AfterFunc(t.timeout, func() {
		if err := t.publisher.Publish(event); err != nil {
			slog.Warn(
				"failed to publish inactivity timeout",
				"guild", event.GuildID,
				"error", err,
			)
		}
	})
}

// Cancel stops the countdown and invalidates any event already in flight.
func (t *inactivityTimer) Cancel() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.armed = false
	t.generation++
}

// IsCurrent reports whether gen belongs to the active arm.
func (t *inactivityTimer) IsCurrent(gen uint64) bool {
	return t.armed && gen == t.generation
}
