package domain

import "errors"

// Errors surfaced to users as one-line notices.
var (
	// ErrUserNotInVoiceChannel is returned when the invoking user is not in a voice channel.
	ErrUserNotInVoiceChannel = errors.New("user is not in a voice channel")

	// ErrBotNotInVoiceChannel is returned when a command needs an existing session.
	ErrBotNotInVoiceChannel = errors.New("bot is not in a voice channel")

	// ErrChannelMismatch is returned when the user is in a different voice channel than the bot.
	ErrChannelMismatch = errors.New("user and bot are in different voice channels")

	// ErrAlreadyPaused is returned when pausing a paused session.
	ErrAlreadyPaused = errors.New("playback is already paused")

	// ErrAlreadyPlaying is returned when resuming a session that is playing.
	ErrAlreadyPlaying = errors.New("playback is already running")

	// ErrNothingPlaying is returned when a command needs a current track.
	ErrNothingPlaying = errors.New("nothing is currently playing")

	// ErrQueueEmpty is returned when the queue has no tracks.
	ErrQueueEmpty = errors.New("the queue is empty")

	// ErrNotQueued is returned when a track is not part of the queue.
	ErrNotQueued = errors.New("track is not queued")

	// ErrTrackNotFound is returned when a search yields no results.
	ErrTrackNotFound = errors.New("track not found")

	// ErrAudioNodeUnavailable is returned when the audio node cannot serve a request.
	ErrAudioNodeUnavailable = errors.New("audio node unavailable")

	// ErrSessionBusy is returned when a session cannot accept more events.
	ErrSessionBusy = errors.New("session is busy")
)

// ErrNotTracked is returned when releasing an embed that was never acquired.
// It indicates a bookkeeping bug, never a user mistake.
var ErrNotTracked = errors.New("embed is not tracked")
