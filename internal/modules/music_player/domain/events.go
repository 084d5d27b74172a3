package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// Event is an inbound signal addressed to a guild's session.
// The set of events is closed: Command, TrackStarted, TrackEnded,
// InactivityTimeout and MembershipChanged.
type Event interface {
	Guild() snowflake.ID
	Name() string
}

// CommandKind is a user-invocable player action.
type CommandKind string

const (
	CommandPlay       CommandKind = "play"
	CommandPause      CommandKind = "pause"
	CommandResume     CommandKind = "resume"
	CommandSkip       CommandKind = "skip"
	CommandShuffle    CommandKind = "shuffle"
	CommandQueueShow  CommandKind = "queue_show"
	CommandQueueClear CommandKind = "queue_clear"
	CommandDisconnect CommandKind = "disconnect"
)

// Command is a user action from a slash command or a button press.
// Both sources are handled identically.
type Command struct {
	GuildID       snowflake.ID
	UserID        snowflake.ID
	UserMention   string
	TextChannelID snowflake.ID // where the command was invoked
	Kind          CommandKind
	Query         string // play only
	Page          int    // queue_show only, 1-based; 0 means the first page
}

// TrackEndReason represents why a track ended.
type TrackEndReason string

const (
	// TrackEndFinished means the track finished normally.
	TrackEndFinished TrackEndReason = "finished"
	// TrackEndLoadFailed means the track failed to load.
	TrackEndLoadFailed TrackEndReason = "load_failed"
	// TrackEndStopped means the track was stopped by the user.
	TrackEndStopped TrackEndReason = "stopped"
	// TrackEndReplaced means the track was replaced by another.
	TrackEndReplaced TrackEndReason = "replaced"
	// TrackEndCleanup means the track was cleaned up.
	TrackEndCleanup TrackEndReason = "cleanup"
)

// ShouldAdvanceQueue returns true if this end reason should advance the queue.
func (r TrackEndReason) ShouldAdvanceQueue() bool {
	return r == TrackEndFinished || r == TrackEndLoadFailed
}

// TrackStarted is published by the audio node when a track begins playing.
type TrackStarted struct {
	GuildID  snowflake.ID
	TrackKey TrackKey
}

// TrackEnded is published by the audio node when a track stops playing.
type TrackEnded struct {
	GuildID  snowflake.ID
	TrackKey TrackKey
	Reason   TrackEndReason
}

// InactivityTimeout fires when a session has not played anything for too long.
// Generation identifies the timer arm; stale generations are ignored.
type InactivityTimeout struct {
	GuildID    snowflake.ID
	Generation uint64
}

// MembershipChanged is published when a user joins, leaves or moves between
// voice channels of the guild. ChannelID is nil when the user left voice.
type MembershipChanged struct {
	GuildID   snowflake.ID
	UserID    snowflake.ID
	ChannelID *snowflake.ID
}

func (e Command) Guild() snowflake.ID           { return e.GuildID }
func (e TrackStarted) Guild() snowflake.ID      { return e.GuildID }
func (e TrackEnded) Guild() snowflake.ID        { return e.GuildID }
func (e InactivityTimeout) Guild() snowflake.ID { return e.GuildID }
func (e MembershipChanged) Guild() snowflake.ID { return e.GuildID }

func (e Command) Name() string           { return "command:" + string(e.Kind) }
func (e TrackStarted) Name() string      { return "track_started" }
func (e TrackEnded) Name() string        { return "track_ended" }
func (e InactivityTimeout) Name() string { return "inactivity_timeout" }
func (e MembershipChanged) Name() string { return "membership_changed" }

// CreatesSession returns true if the event may create a session for its guild.
func CreatesSession(e Event) bool {
	cmd, ok := e.(Command)
	return ok && cmd.Kind == CommandPlay
}
