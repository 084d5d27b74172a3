package application

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

func TestSongAddedNotice(t *testing.T) {
	track := mockTrack("a")

	tests := []struct {
		name       string
		position   int
		wantFooter string
	}{
		{name: "nothing playing", position: 0, wantFooter: "Duration: 03:00"},
		{name: "queued", position: 4, wantFooter: "Queue position - 4 | Duration: 03:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			embed := SongAddedNotice(track, "<@10>", tt.position)
			if embed.Footer != tt.wantFooter {
				t.Errorf("footer = %q, want %q", embed.Footer, tt.wantFooter)
			}
			if embed.Description != "Requested by <@10>" || embed.Author != "Artist" {
				t.Errorf("unexpected embed %+v", embed)
			}
			if embed.Controls {
				t.Error("expected no controls on the added notice")
			}
		})
	}
}

func TestPlaylistAddedNotice(t *testing.T) {
	playlist := mockPlaylist("mix", 3)
	playlist.Tracks[1].Author = "Someone else"

	embed := PlaylistAddedNotice(playlist, "https://example.com/list/mix", "<@10>", 2)

	if embed.Author != domain.VariousArtists {
		t.Errorf("expected various artists, got %q", embed.Author)
	}
	if want := "Queue position - 2 | Duration: 09:00 | 3 tracks"; embed.Footer != want {
		t.Errorf("footer = %q, want %q", embed.Footer, want)
	}
	if embed.URL != "https://example.com/list/mix" {
		t.Errorf("unexpected url %q", embed.URL)
	}
}

func TestQueuePageNotice(t *testing.T) {
	queued := make([]domain.Track, 12)
	for i := range queued {
		queued[i] = mockTrack(fmt.Sprint(i + 1))
		queued[i].Duration = time.Minute
	}
	current := mockTrack("now")
	pages := domain.PaginateQueue(&current, queued, domain.QueuePageSize)

	first := QueuePageNotice(pages[0])
	if first.Title != "Tracks in queue: 12" || first.Footer != "Page 1/2" {
		t.Errorf("unexpected first page %+v", first)
	}
	if !strings.HasPrefix(first.Description, "Now playing:\n[Track now](https://example.com/now) by Artist") {
		t.Errorf("unexpected first page body %q", first.Description)
	}
	if !strings.Contains(first.Description, "**1.** [Track 1](https://example.com/1) by Artist") {
		t.Errorf("expected first rank line, got %q", first.Description)
	}

	second := QueuePageNotice(pages[1])
	if strings.Contains(second.Description, "Now playing") {
		t.Error("expected only the first page to show the current track")
	}
	if !strings.HasPrefix(second.Description, "**11.**") {
		t.Errorf("expected second page to start at rank 11, got %q", second.Description)
	}
}

func TestNoticeForError(t *testing.T) {
	nc := NoticeContext{BotName: "tunebot", VoiceChannelID: testVoiceID}

	tests := []struct {
		err       error
		wantTitle string
	}{
		{domain.ErrUserNotInVoiceChannel, "You are not connected to a voice channel"},
		{domain.ErrBotNotInVoiceChannel, "tunebot is not connected to a voice channel"},
		{domain.ErrChannelMismatch, "We are not in the same channel"},
		{domain.ErrAlreadyPaused, "Already paused!"},
		{domain.ErrAlreadyPlaying, "Already playing!"},
		{domain.ErrNothingPlaying, "Nothing is playing!"},
		{domain.ErrQueueEmpty, "No queue!"},
		{domain.ErrTrackNotFound, "Track not found"},
		{domain.ErrSessionBusy, "Busy, try again in a moment"},
		{fmt.Errorf("%w: boom", domain.ErrAudioNodeUnavailable), "Audio node unavailable, try again later"},
		{errors.New("boom"), "Something went wrong"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := NoticeForError(tt.err, nc).Title; got != tt.wantTitle {
				t.Errorf("title = %q, want %q", got, tt.wantTitle)
			}
		})
	}

	mismatch := NoticeForError(domain.ErrChannelMismatch, nc)
	if mismatch.Description != "tunebot is in <#20>" {
		t.Errorf("unexpected mismatch description %q", mismatch.Description)
	}
}
