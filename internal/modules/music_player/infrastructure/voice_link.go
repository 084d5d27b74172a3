package infrastructure

import (
	"sync"

	"github.com/disgoorg/snowflake/v2"
)

// voiceHandshake collects the two halves of a Discord voice connection.
// Lavalink rejects a partial voice state, so nothing is forwarded until both
// VoiceStateUpdate and VoiceServerUpdate have arrived, in either order.
type voiceHandshake struct {
	mu sync.Mutex

	hasState  bool
	channelID *snowflake.ID
	sessionID string

	hasServer bool
	token     string
	endpoint  string

	ready chan struct{}
}

func newVoiceHandshake() *voiceHandshake {
	return &voiceHandshake{ready: make(chan struct{})}
}

// voiceCredentials is a complete handshake, ready for Lavalink.
type voiceCredentials struct {
	channelID *snowflake.ID
	sessionID string
	token     string
	endpoint  string
}

// setState records the voice state half. It returns the credentials once
// the handshake is complete.
func (h *voiceHandshake) setState(channelID *snowflake.ID, sessionID string) (voiceCredentials, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hasState = true
	h.channelID = channelID
	h.sessionID = sessionID
	return h.completeLocked()
}

// setServer records the voice server half. It returns the credentials once
// the handshake is complete.
func (h *voiceHandshake) setServer(token, endpoint string) (voiceCredentials, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.hasServer = true
	h.token = token
	h.endpoint = endpoint
	return h.completeLocked()
}

// completeLocked hands out the credentials and resets both halves, so a
// later reconnect starts a fresh handshake. Waiters are released once.
func (h *voiceHandshake) completeLocked() (voiceCredentials, bool) {
	if !h.hasState || !h.hasServer {
		return voiceCredentials{}, false
	}

	creds := voiceCredentials{
		channelID: h.channelID,
		sessionID: h.sessionID,
		token:     h.token,
		endpoint:  h.endpoint,
	}
	h.hasState, h.hasServer = false, false
	h.channelID, h.sessionID, h.token, h.endpoint = nil, "", "", ""

	select {
	case <-h.ready:
	default:
		close(h.ready)
	}
	return creds, true
}

// voiceHandshakes holds one handshake per guild.
type voiceHandshakes struct {
	mu     sync.Mutex
	guilds map[snowflake.ID]*voiceHandshake
}

func newVoiceHandshakes() *voiceHandshakes {
	return &voiceHandshakes{guilds: make(map[snowflake.ID]*voiceHandshake)}
}

// begin starts a fresh handshake for the guild and returns it.
func (v *voiceHandshakes) begin(guildID snowflake.ID) *voiceHandshake {
	v.mu.Lock()
	defer v.mu.Unlock()

	h := newVoiceHandshake()
	v.guilds[guildID] = h
	return h
}

// get returns the guild's handshake, starting one for events that arrive
// without a join in progress (e.g. voice server changes).
func (v *voiceHandshakes) get(guildID snowflake.ID) *voiceHandshake {
	v.mu.Lock()
	defer v.mu.Unlock()

	h, ok := v.guilds[guildID]
	if !ok {
		h = newVoiceHandshake()
		v.guilds[guildID] = h
	}
	return h
}

func (v *voiceHandshakes) forget(guildID snowflake.ID) {
	v.mu.Lock()
	defer v.mu.Unlock()

	delete(v.guilds, guildID)
}
