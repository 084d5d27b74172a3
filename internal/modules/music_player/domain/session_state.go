package domain

// SessionState is the lifecycle state of a guild's playback session.
type SessionState int

const (
	SessionIdle         SessionState = iota // created, not yet bound to a voice channel
	SessionConnected                        // bound, nothing playing
	SessionPlaying                          // bound, current track playing
	SessionPaused                           // bound, current track paused
	SessionDisconnected                     // terminal
)

// String returns a human-readable representation of the state.
func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionConnected:
		return "connected"
	case SessionPlaying:
		return "playing"
	case SessionPaused:
		return "paused"
	case SessionDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// IsBound returns true if the session holds a voice connection.
func (s SessionState) IsBound() bool {
	return s == SessionConnected || s == SessionPlaying || s == SessionPaused
}

// HasTrack returns true if a current track must be present in this state.
func (s SessionState) HasTrack() bool {
	return s == SessionPlaying || s == SessionPaused
}
