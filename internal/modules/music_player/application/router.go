package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// Compile-time check that Router implements ports.EventPublisher.
var _ ports.EventPublisher = (*Router)(nil)

// Router delivers events to the session of their guild.
// Events of one guild run one at a time in arrival order; guilds run
// concurrently.
type Router struct {
	ctx      context.Context
	registry *Registry
	botName  string
}

// NewRouter creates a Router whose sessions use deps and config.
// ctx is handed to events published without a caller context.
// The router publishes inactivity timeouts itself when deps.Publisher is nil.
func NewRouter(ctx context.Context, deps SessionDeps, config SessionConfig) *Router {
	r := &Router{ctx: ctx, botName: config.BotName}
	if deps.Publisher == nil {
		deps.Publisher = r
	}

	r.registry = NewRegistry(func(guildID snowflake.ID) *Session {
		s := NewSession(guildID, deps, config, r.registry.remove)
		s.Start()
		slog.Debug("session created", "guild", guildID)
		return s
	})

	return r
}

// Registry returns the router's session registry.
func (r *Router) Registry() *Registry {
	return r.registry
}

func (r *Router) resolve(event domain.Event) *Session {
	if domain.CreatesSession(event) {
		return r.registry.GetOrCreate(event.Guild())
	}
	return r.registry.Get(event.Guild())
}

// Dispatch runs event on its guild's session and waits for the outcome.
// Commands always come back with a notice, including when no session exists.
func (r *Router) Dispatch(ctx context.Context, event domain.Event) (Reply, error) {
	// A session can close between lookup and delivery; the second lookup
	// sees the registry without it.
	for range 2 {
		s := r.resolve(event)
		if s == nil {
			break
		}

		reply, err := s.submit(ctx, event)
		if errors.Is(err, errSessionClosed) {
			continue
		}
		if errors.Is(err, domain.ErrSessionBusy) {
			return r.failure(err), err
		}
		return reply, err
	}

	if _, ok := event.(domain.Command); ok {
		return r.failure(domain.ErrBotNotInVoiceChannel), domain.ErrBotNotInVoiceChannel
	}

	slog.Debug("no session for event, dropping", "guild", event.Guild(), "event", event.Name())
	return Reply{}, nil
}

func (r *Router) failure(err error) Reply {
	return Reply{Notice: NoticeForError(err, NoticeContext{BotName: r.botName})}
}

// Publish queues event on its guild's session without waiting.
// Events for guilds without a session are dropped.
func (r *Router) Publish(event domain.Event) error {
	s := r.resolve(event)
	if s == nil {
		slog.Debug("no session for event, dropping", "guild", event.Guild(), "event", event.Name())
		return nil
	}

	err := s.mailbox.post(envelope{ctx: r.ctx, event: event})
	if errors.Is(err, errSessionClosed) {
		slog.Debug("session closed, dropping event", "guild", event.Guild(), "event", event.Name())
		return nil
	}
	return err
}

// Close tears down every session, leaving voice and posting the
// disconnected notice, then waits for their workers to exit or ctx to end.
func (r *Router) Close(ctx context.Context) {
	live := r.registry.All()

	var wg sync.WaitGroup
	for _, s := range live {
		wg.Go(func() {
			err := s.shutdown(ctx)
			if err != nil && !errors.Is(err, errSessionClosed) {
				slog.Warn("failed to shut session down", "guild", s.GuildID(), "error", err)
			}
		})
	}
	wg.Wait()

	sessions := append(live, r.registry.CloseAll()...)
	for _, s := range sessions {
		select {
		case <-s.Done():
		case <-ctx.Done():
			return
		}
	}
}
