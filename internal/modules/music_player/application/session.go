package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// DefaultVolume is the playback volume used when none is configured.
const DefaultVolume = 30

// SessionConfig contains the settings shared by every session.
type SessionConfig struct {
	Volume            int
	InactivityTimeout time.Duration
	InboxSize         int
	BotID             snowflake.ID
	BotName           string
}

// SessionDeps contains the collaborators a session talks to.
type SessionDeps struct {
	Player     ports.AudioPlayer
	Voice      ports.VoiceConnection
	VoiceState ports.VoiceStateProvider
	Notifier   ports.NotificationSender
	Publisher  ports.EventPublisher
}

// Reply is the outcome of a command.
// Notice is always set for commands, including failed ones.
type Reply struct {
	Notice domain.Embed
	Page   *domain.QueuePage // queue_show only
}

// Session is the playback state of one guild.
// All fields are owned by the session's worker goroutine: events reach it
// through the mailbox, one at a time, in arrival order.
type Session struct {
	guildID snowflake.ID
	deps    SessionDeps
	config  SessionConfig

	state          domain.SessionState
	current        *domain.Track
	announced      bool // current track's now playing embed has been posted
	queue          domain.Queue
	embeds         *domain.EmbedCache
	homeChannelID  snowflake.ID
	voiceChannelID snowflake.ID

	timer   *inactivityTimer
	mailbox *mailbox
	onClose func(*Session)
	done    chan struct{}
}

// NewSession creates an idle session. Call Start to run its worker.
// onClose is invoked once when the session tears down.
func NewSession(
	guildID snowflake.ID,
	deps SessionDeps,
	config SessionConfig,
	onClose func(*Session),
) *Session {
	if config.Volume <= 0 {
		config.Volume = DefaultVolume
	}
	if onClose == nil {
		onClose = func(*Session) {}
	}

	return &Session{
		guildID: guildID,
		deps:    deps,
		config:  config,
		state:   domain.SessionIdle,
		queue:   domain.NewQueue(),
		embeds:  domain.NewEmbedCache(),
		timer:   newInactivityTimer(guildID, config.InactivityTimeout, deps.Publisher),
		mailbox: newMailbox(config.InboxSize),
		onClose: onClose,
		done:    make(chan struct{}),
	}
}

// Start runs the session worker.
func (s *Session) Start() {
	go s.run()
}

// Done is closed once the worker has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// GuildID returns the guild the session belongs to.
func (s *Session) GuildID() snowflake.ID {
	return s.guildID
}

// submit posts an event and waits for its outcome.
func (s *Session) submit(ctx context.Context, event domain.Event) (Reply, error) {
	env := envelope{ctx: ctx, event: event, reply: make(chan result, 1)}
	if err := s.mailbox.post(env); err != nil {
		return Reply{}, err
	}

	select {
	case res := <-env.reply:
		return res.reply, res.err
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

func (s *Session) run() {
	defer close(s.done)

	for env := range s.mailbox.inbox {
		s.process(env)
	}
	s.timer.Cancel()

	slog.Debug("session worker stopped", "guild", s.guildID)
}

func (s *Session) process(env envelope) {
	if s.state == domain.SessionDisconnected {
		env.respond(Reply{}, errSessionClosed)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error(
				"session handler panicked",
				"guild", s.guildID,
				"event", env.event.Name(),
				"panic", r,
			)
			err := fmt.Errorf("handler panic: %v", r)
			env.respond(Reply{Notice: NoticeForError(err, s.noticeContext())}, err)
			if s.state == domain.SessionIdle {
				s.discard()
			}
		}
	}()

	reply, err := s.handle(env.ctx, env.event)
	env.respond(reply, err)
}

func (s *Session) handle(ctx context.Context, event domain.Event) (Reply, error) {
	switch e := event.(type) {
	case domain.Command:
		return s.handleCommand(ctx, e)
	case domain.TrackStarted:
		s.onTrackStarted(ctx, e)
	case domain.TrackEnded:
		s.onTrackEnded(ctx, e)
	case domain.InactivityTimeout:
		s.onInactivityTimeout(ctx, e)
	case domain.MembershipChanged:
		s.onMembershipChanged(ctx, e)
	case workerCall:
		return e.fn(ctx, s), nil
	default:
		slog.Warn("unknown event, dropping", "guild", s.guildID, "event", event.Name())
	}
	return Reply{}, nil
}

// advance plays the next queued track. Tracks the player rejects are
// dropped and the following one is tried. An empty queue leaves the session
// connected with the inactivity timer running. The last play error is
// returned only when every remaining track was rejected.
func (s *Session) advance(ctx context.Context) error {
	var playErr error
	for {
		next, err := s.queue.PopFront()
		if err != nil {
			s.idle()
			return playErr
		}

		if err := s.deps.Player.Play(ctx, s.guildID, next, s.config.Volume); err != nil {
			slog.Warn("failed to play track, trying next", "guild", s.guildID, "track", next.Key, "error", err)
			s.releaseEmbed(next)
			playErr = fmt.Errorf("%w: play %s: %w", domain.ErrAudioNodeUnavailable, next.Key, err)
			continue
		}

		s.current = &next
		s.announced = false
		s.state = domain.SessionPlaying
		s.timer.Cancel()

		slog.Debug("track playing", "guild", s.guildID, "track", next.Key)

		return nil
	}
}

// idle moves a bound session to Connected with nothing playing.
func (s *Session) idle() {
	s.current = nil
	s.announced = false
	s.state = domain.SessionConnected
	s.timer.Arm()
}

// retireCurrent drops the current track. Its embed reference is released
// unless the now playing render already consumed it.
func (s *Session) retireCurrent() {
	if s.current != nil && !s.announced {
		s.releaseEmbed(*s.current)
	}
	s.current = nil
	s.announced = false
}

func (s *Session) releaseEmbed(track domain.Track) {
	if _, err := s.embeds.Release(track); err != nil {
		slog.Warn("embed release failed", "guild", s.guildID, "error", err)
	}
}

// teardown ends the session: leaves voice, drops the queue and every
// cached embed, and removes the session from the registry.
// The disconnected notice is posted to the home channel when notify is set,
// and returned either way.
func (s *Session) teardown(ctx context.Context, reason string, notify bool) domain.Embed {
	s.state = domain.SessionDisconnected
	s.timer.Cancel()

	if err := s.deps.Voice.LeaveChannel(ctx, s.guildID); err != nil {
		slog.Warn("failed to leave voice channel", "guild", s.guildID, "error", err)
	}

	s.embeds.ResetAll()
	s.queue.Clear()
	s.current = nil
	s.announced = false

	notice := DisconnectedNotice(s.config.BotName)
	if notify {
		s.notify(ctx, notice)
	}

	s.onClose(s)
	s.mailbox.close()

	slog.Info("session closed", "guild", s.guildID, "reason", reason)

	return notice
}

// discard drops a session that never bound to a voice channel.
func (s *Session) discard() {
	s.state = domain.SessionDisconnected
	s.timer.Cancel()
	s.onClose(s)
	s.mailbox.close()
}

func (s *Session) notify(ctx context.Context, embed domain.Embed) {
	if s.homeChannelID == 0 || s.deps.Notifier == nil {
		return
	}
	if err := s.deps.Notifier.Send(ctx, s.homeChannelID, embed); err != nil {
		slog.Error(
			"failed to send notification",
			"guild", s.guildID,
			"channel", s.homeChannelID,
			"error", err,
		)
	}
}

// userChannel returns the user's current voice channel, or 0.
func (s *Session) userChannel(userID snowflake.ID) (snowflake.ID, error) {
	channelID, err := s.deps.VoiceState.GetUserVoiceChannel(s.guildID, userID)
	if err != nil {
		return 0, fmt.Errorf("get voice channel of user %s: %w", userID, err)
	}
	if channelID == nil {
		return 0, nil
	}
	return *channelID, nil
}

// listenersGone reports whether the bound voice channel has no non-bot
// members. Lookup failures count as not gone.
func (s *Session) listenersGone() bool {
	count, err := s.deps.VoiceState.CountListeners(s.guildID, s.voiceChannelID)
	if err != nil {
		slog.Warn("failed to count listeners", "guild", s.guildID, "error", err)
		return false
	}
	return count == 0
}

func (s *Session) noticeContext() NoticeContext {
	return NoticeContext{BotName: s.config.BotName, VoiceChannelID: s.voiceChannelID}
}

// workerCall runs fn on the session worker, in order with other events.
type workerCall struct {
	guildID snowflake.ID
	name    string
	fn      func(ctx context.Context, s *Session) Reply
}

func (e workerCall) Guild() snowflake.ID { return e.guildID }
func (e workerCall) Name() string        { return e.name }

// shutdown tears the session down as part of process shutdown: it leaves
// voice and posts the disconnected notice.
func (s *Session) shutdown(ctx context.Context) error {
	_, err := s.submit(ctx, workerCall{
		guildID: s.guildID,
		name:    "shutdown",
		fn: func(ctx context.Context, s *Session) Reply {
			return Reply{Notice: s.teardown(ctx, "shutdown", true)}
		},
	})
	return err
}
