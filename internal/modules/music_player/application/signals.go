package application

import (
	"context"
	"log/slog"

	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// onTrackStarted posts the now playing embed for the current track, unless
// the voice channel emptied out while the track was loading.
func (s *Session) onTrackStarted(ctx context.Context, e domain.TrackStarted) {
	if s.current == nil || s.current.Key != e.TrackKey {
		slog.Debug("ignoring start of stale track", "guild", s.guildID, "track", e.TrackKey)
		return
	}

	if s.listenersGone() {
		s.teardown(ctx, "voice channel empty", true)
		return
	}

	if s.announced {
		return
	}
	s.announced = true

	embed, err := s.embeds.Release(*s.current)
	if err != nil {
		slog.Warn("now playing embed missing", "guild", s.guildID, "error", err)
		embed = domain.NowPlayingEmbed(*s.current, "", s.current.FormattedDuration())
	}
	s.notify(ctx, embed)
}

// onTrackEnded advances the queue when the current track finished on its own.
func (s *Session) onTrackEnded(ctx context.Context, e domain.TrackEnded) {
	if !e.Reason.ShouldAdvanceQueue() {
		return
	}
	if s.current == nil || s.current.Key != e.TrackKey {
		slog.Debug("ignoring end of stale track", "guild", s.guildID, "track", e.TrackKey)
		return
	}

	if s.listenersGone() {
		s.teardown(ctx, "voice channel empty", true)
		return
	}

	s.retireCurrent()
	if err := s.advance(ctx); err != nil {
		s.notify(ctx, NoticeForError(err, s.noticeContext()))
	}
}

func (s *Session) onInactivityTimeout(ctx context.Context, e domain.InactivityTimeout) {
	if !s.timer.IsCurrent(e.Generation) || s.state == domain.SessionPlaying {
		slog.Debug("ignoring stale inactivity timeout", "guild", s.guildID)
		return
	}

	s.teardown(ctx, "inactivity", true)
}

// onMembershipChanged follows the bot being moved or disconnected by someone
// else, and leaves an idle channel once the last listener is gone.
// Decisions use live voice state, not the event payload.
func (s *Session) onMembershipChanged(ctx context.Context, e domain.MembershipChanged) {
	if !s.state.IsBound() {
		return
	}

	if e.UserID == s.config.BotID {
		channelID, err := s.userChannel(s.config.BotID)
		if err != nil {
			slog.Warn("failed to read bot voice state", "guild", s.guildID, "error", err)
			return
		}
		if channelID == 0 {
			s.teardown(ctx, "bot disconnected", true)
			return
		}
		if channelID != s.voiceChannelID {
			slog.Info(
				"bot moved to another voice channel",
				"guild", s.guildID,
				"from", s.voiceChannelID,
				"to", channelID,
			)
			s.voiceChannelID = channelID
		}
		return
	}

	if s.state != domain.SessionConnected || s.current != nil || !s.queue.IsEmpty() {
		return
	}
	if s.listenersGone() {
		s.teardown(ctx, "voice channel empty", true)
	}
}
