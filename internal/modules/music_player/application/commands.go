package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// handleCommand runs a user command and converts any error into the reply's
// notice. A session that is still idle afterwards never bound to voice and
// is discarded.
func (s *Session) handleCommand(ctx context.Context, cmd domain.Command) (Reply, error) {
	reply, err := s.runCommand(ctx, cmd)
	if err != nil {
		slog.Debug(
			"command rejected",
			"guild", s.guildID,
			"command", cmd.Kind,
			"state", s.state,
			"error", err,
		)
		reply = Reply{Notice: NoticeForError(err, s.noticeContext())}
	}

	if s.state == domain.SessionIdle {
		s.discard()
	}

	return reply, err
}

func (s *Session) runCommand(ctx context.Context, cmd domain.Command) (Reply, error) {
	if cmd.Kind == domain.CommandPlay {
		return s.play(ctx, cmd)
	}

	if err := s.guard(cmd); err != nil {
		return Reply{}, err
	}

	switch cmd.Kind {
	case domain.CommandPause:
		return s.pause(ctx, cmd)
	case domain.CommandResume:
		return s.resume(ctx, cmd)
	case domain.CommandSkip:
		return s.skip(ctx)
	case domain.CommandShuffle:
		return s.shuffle()
	case domain.CommandQueueShow:
		return s.showQueue(cmd.Page)
	case domain.CommandQueueClear:
		return s.clearQueue()
	case domain.CommandDisconnect:
		return Reply{Notice: s.teardown(ctx, "disconnect command", false)}, nil
	default:
		return Reply{}, fmt.Errorf("unknown command %q", cmd.Kind)
	}
}

// guard checks that the session is bound and the user shares its voice
// channel. On success the home channel follows the command.
func (s *Session) guard(cmd domain.Command) error {
	if !s.state.IsBound() {
		return domain.ErrBotNotInVoiceChannel
	}

	channelID, err := s.userChannel(cmd.UserID)
	if err != nil {
		return err
	}
	if channelID == 0 {
		return domain.ErrUserNotInVoiceChannel
	}
	if channelID != s.voiceChannelID {
		return domain.ErrChannelMismatch
	}

	if cmd.TextChannelID != 0 {
		s.homeChannelID = cmd.TextChannelID
	}
	return nil
}

func (s *Session) play(ctx context.Context, cmd domain.Command) (Reply, error) {
	channelID, err := s.userChannel(cmd.UserID)
	if err != nil {
		return Reply{}, err
	}
	if channelID == 0 {
		return Reply{}, domain.ErrUserNotInVoiceChannel
	}
	if s.state.IsBound() && channelID != s.voiceChannelID {
		return Reply{}, domain.ErrChannelMismatch
	}

	query := domain.NewSearchQuery(cmd.Query)
	if !query.IsValid() {
		return Reply{}, domain.ErrTrackNotFound
	}

	result, err := s.deps.Player.Search(ctx, query.LavalinkQuery())
	if err != nil {
		return Reply{}, fmt.Errorf("%w: search: %w", domain.ErrAudioNodeUnavailable, err)
	}

	var tracks []domain.Track
	switch r := result.(type) {
	case domain.TrackFound:
		tracks = []domain.Track{r.Track}
	case domain.PlaylistFound:
		tracks = r.Tracks
	case domain.NotFound:
	}
	if len(tracks) == 0 {
		return Reply{}, domain.ErrTrackNotFound
	}

	if s.state == domain.SessionIdle {
		if err := s.deps.Voice.JoinChannel(ctx, s.guildID, channelID); err != nil {
			// The join request may already have reached Discord.
			if leaveErr := s.deps.Voice.LeaveChannel(ctx, s.guildID); leaveErr != nil {
				slog.Warn("failed to leave after join failure", "guild", s.guildID, "error", leaveErr)
			}
			return Reply{}, fmt.Errorf("join voice channel: %w", err)
		}
		s.voiceChannelID = channelID
		s.state = domain.SessionConnected

		slog.Info("session connected", "guild", s.guildID, "channel", channelID)
	}
	if cmd.TextChannelID != 0 {
		s.homeChannelID = cmd.TextChannelID
	}

	playing := s.current != nil
	for _, track := range tracks {
		s.embeds.AcquireNowPlaying(track, cmd.UserMention, track.FormattedDuration())
	}
	s.queue.AppendAll(tracks)

	var position int
	if playing {
		position, _ = s.queue.PositionOf(tracks[0])
	}

	var notice domain.Embed
	if playlist, ok := result.(domain.PlaylistFound); ok {
		notice = PlaylistAddedNotice(playlist, query.LinkTerm(), cmd.UserMention, position)
	} else {
		notice = SongAddedNotice(tracks[0], cmd.UserMention, position)
	}

	if !playing {
		if err := s.advance(ctx); err != nil {
			return Reply{}, err
		}
	}

	return Reply{Notice: notice}, nil
}

func (s *Session) pause(ctx context.Context, cmd domain.Command) (Reply, error) {
	if s.current == nil {
		return Reply{}, domain.ErrNothingPlaying
	}
	if s.state == domain.SessionPaused {
		return Reply{}, domain.ErrAlreadyPaused
	}

	if err := s.deps.Player.Pause(ctx, s.guildID, true); err != nil {
		return Reply{}, fmt.Errorf("%w: pause: %w", domain.ErrAudioNodeUnavailable, err)
	}
	s.state = domain.SessionPaused
	s.timer.Arm()

	return Reply{Notice: PausedNotice(cmd.UserMention)}, nil
}

func (s *Session) resume(ctx context.Context, cmd domain.Command) (Reply, error) {
	if s.current == nil {
		return Reply{}, domain.ErrNothingPlaying
	}
	if s.state == domain.SessionPlaying {
		return Reply{}, domain.ErrAlreadyPlaying
	}

	if err := s.deps.Player.Pause(ctx, s.guildID, false); err != nil {
		return Reply{}, fmt.Errorf("%w: resume: %w", domain.ErrAudioNodeUnavailable, err)
	}
	s.state = domain.SessionPlaying
	s.timer.Cancel()

	return Reply{Notice: ResumedNotice(cmd.UserMention)}, nil
}

// skip drops the current track and plays the next one, or stops playback
// when nothing is queued.
func (s *Session) skip(ctx context.Context) (Reply, error) {
	if s.current == nil {
		return Reply{}, domain.ErrNothingPlaying
	}

	skipped := s.current.Key
	s.retireCurrent()

	if s.queue.IsEmpty() {
		s.idle()
		if err := s.deps.Player.Stop(ctx, s.guildID); err != nil {
			return Reply{}, fmt.Errorf("%w: stop: %w", domain.ErrAudioNodeUnavailable, err)
		}
	} else if err := s.advance(ctx); err != nil {
		return Reply{}, err
	}

	slog.Debug("track skipped", "guild", s.guildID, "track", skipped)

	return Reply{Notice: domain.NewOneLineEmbed(noticeSkipped)}, nil
}

func (s *Session) shuffle() (Reply, error) {
	if s.queue.IsEmpty() {
		return Reply{}, domain.ErrQueueEmpty
	}
	s.queue.Shuffle()

	return Reply{Notice: domain.NewOneLineEmbed(noticeShuffled)}, nil
}

// showQueue renders the requested page of the queue; out of range pages are
// clamped.
func (s *Session) showQueue(page int) (Reply, error) {
	if s.queue.IsEmpty() {
		return Reply{}, domain.ErrQueueEmpty
	}

	pages := domain.PaginateQueue(s.current, s.queue.List(), domain.QueuePageSize)
	selected := pages[domain.ClampPage(page, len(pages))-1]

	return Reply{Notice: QueuePageNotice(selected), Page: &selected}, nil
}

func (s *Session) clearQueue() (Reply, error) {
	if s.queue.IsEmpty() {
		return Reply{}, domain.ErrQueueEmpty
	}

	for _, track := range s.queue.Clear() {
		s.releaseEmbed(track)
	}

	return Reply{Notice: domain.NewOneLineEmbed(noticeCleared)}, nil
}
