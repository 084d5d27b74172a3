package application

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// One-line notice titles.
const (
	noticeAlreadyPaused  = "Already paused!"
	noticeAlreadyPlaying = "Already playing!"
	noticeSkipped        = "Track skipped!"
	noticeShuffled       = "Queue shuffled!"
	noticeNoQueue        = "No queue!"
	noticeCleared        = "Queue cleared!"
	noticeNotFound       = "Track not found"
	noticeNothingPlaying = "Nothing is playing!"
	noticeBusy           = "Busy, try again in a moment"
	noticeFailure        = "Something went wrong"
)

// NoticeContext carries what error notices mention.
type NoticeContext struct {
	BotName        string
	VoiceChannelID snowflake.ID
}

// SongAddedNotice describes a single track added to the queue.
// position is omitted when zero.
func SongAddedNotice(track domain.Track, requesterMention string, position int) domain.Embed {
	return domain.Embed{
		Title:       track.Title,
		Description: "Requested by " + requesterMention,
		URL:         track.URI,
		Author:      track.Author,
		Footer:      queuePrefix(position) + "Duration: " + track.FormattedDuration(),
		Color:       domain.AccentColor,
	}
}

// PlaylistAddedNotice describes a playlist added to the queue.
// link is the query term the playlist was loaded from.
func PlaylistAddedNotice(
	playlist domain.PlaylistFound,
	link string,
	requesterMention string,
	position int,
) domain.Embed {
	return domain.Embed{
		Title:       playlist.Name,
		Description: "Requested by " + requesterMention,
		URL:         link,
		Author:      playlist.Authors(),
		Footer: fmt.Sprintf(
			"%sDuration: %s | %d tracks",
			queuePrefix(position),
			domain.FormatDuration(playlist.Duration()),
			len(playlist.Tracks),
		),
		Color: domain.AccentColor,
	}
}

func queuePrefix(position int) string {
	if position <= 0 {
		return ""
	}
	return fmt.Sprintf("Queue position - %d | ", position)
}

// PausedNotice confirms a pause.
func PausedNotice(userMention string) domain.Embed {
	embed := domain.NewOneLineEmbed("Pausing")
	embed.Description = "Paused by " + userMention
	return embed
}

// ResumedNotice confirms a resume.
func ResumedNotice(userMention string) domain.Embed {
	embed := domain.NewOneLineEmbed("Resuming")
	embed.Description = "Resumed by " + userMention
	return embed
}

// DisconnectedNotice is posted when a session ends.
func DisconnectedNotice(botName string) domain.Embed {
	return domain.NewOneLineEmbed(botName + " has disconnected!")
}

// QueuePageNotice renders one page of the queue.
func QueuePageNotice(page domain.QueuePage) domain.Embed {
	var b strings.Builder

	if page.NowPlaying != nil {
		b.WriteString("Now playing:\n")
		b.WriteString(trackLine(*page.NowPlaying))
		b.WriteString("\n\n")
	}
	if len(page.Lines) > 0 && page.Number == 1 {
		b.WriteString("Up next:\n")
	}
	for _, line := range page.Lines {
		fmt.Fprintf(&b, "**%d.** %s\n\n", line.Rank, trackLine(line.Track))
	}

	return domain.Embed{
		Title:       fmt.Sprintf("Tracks in queue: %d", page.TotalTracks),
		Description: strings.TrimSpace(b.String()),
		Footer:      fmt.Sprintf("Page %d/%d", page.Number, page.TotalPages),
		Color:       domain.AccentColor,
	}
}

func trackLine(track domain.Track) string {
	if track.URI == "" {
		return fmt.Sprintf("%s by %s", track.Title, track.Author)
	}
	return fmt.Sprintf("[%s](%s) by %s", track.Title, track.URI, track.Author)
}

// NoticeForError converts a command error into the one-line notice shown to
// the user. Unknown errors produce a generic failure notice and are logged.
func NoticeForError(err error, nc NoticeContext) domain.Embed {
	switch {
	case errors.Is(err, domain.ErrUserNotInVoiceChannel):
		embed := domain.NewOneLineEmbed("You are not connected to a voice channel")
		embed.Description = "Connect to a voice channel before summoning " + nc.BotName
		return embed
	case errors.Is(err, domain.ErrBotNotInVoiceChannel):
		embed := domain.NewOneLineEmbed(nc.BotName + " is not connected to a voice channel")
		embed.Description = "Use /play to summon " + nc.BotName
		return embed
	case errors.Is(err, domain.ErrChannelMismatch):
		embed := domain.NewOneLineEmbed("We are not in the same channel")
		if nc.VoiceChannelID != 0 {
			embed.Description = fmt.Sprintf("%s is in <#%s>", nc.BotName, nc.VoiceChannelID)
		}
		return embed
	case errors.Is(err, domain.ErrAlreadyPaused):
		return domain.NewOneLineEmbed(noticeAlreadyPaused)
	case errors.Is(err, domain.ErrAlreadyPlaying):
		return domain.NewOneLineEmbed(noticeAlreadyPlaying)
	case errors.Is(err, domain.ErrNothingPlaying):
		return domain.NewOneLineEmbed(noticeNothingPlaying)
	case errors.Is(err, domain.ErrQueueEmpty):
		return domain.NewOneLineEmbed(noticeNoQueue)
	case errors.Is(err, domain.ErrTrackNotFound):
		return domain.NewOneLineEmbed(noticeNotFound)
	case errors.Is(err, domain.ErrSessionBusy):
		return domain.NewOneLineEmbed(noticeBusy)
	case errors.Is(err, domain.ErrAudioNodeUnavailable):
		slog.Warn("audio node unavailable", "error", err)
		return domain.NewOneLineEmbed("Audio node unavailable, try again later")
	default:
		slog.Error("command failed", "error", err)
		return domain.NewOneLineEmbed(noticeFailure)
	}
}
