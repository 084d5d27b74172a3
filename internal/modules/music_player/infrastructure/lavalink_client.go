package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// voiceConnectionTimeout is the maximum time to wait for voice connection to be established.
const voiceConnectionTimeout = 10 * time.Second

// LavalinkConfig contains Lavalink connection configuration.
type LavalinkConfig struct {
	NodeName string
	Address  string
	Password string
	Secure   bool
}

// LavalinkAdapter wraps DisGoLink to implement the audio and voice ports.
// Track start and end events are forwarded to the publisher as domain events.
type LavalinkAdapter struct {
	link       disgolink.Client
	session    *discordgo.Session
	botID      snowflake.ID
	handshakes *voiceHandshakes

	publisherMu sync.RWMutex
	publisher   ports.EventPublisher
}

// NewLavalinkAdapter creates a new LavalinkAdapter.
// A node that cannot be reached is logged and left out; searches then fail
// with domain.ErrAudioNodeUnavailable until a node is available.
func NewLavalinkAdapter(
	ctx context.Context,
	session *discordgo.Session,
	config LavalinkConfig,
) (*LavalinkAdapter, error) {
	if session.State == nil || session.State.User == nil {
		return nil, errors.New("discord session is not ready")
	}
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot ID: %w", err)
	}

	adapter := &LavalinkAdapter{
		session:    session,
		botID:      botID,
		handshakes: newVoiceHandshakes(),
	}

	adapter.link = disgolink.New(botID,
		disgolink.WithListenerFunc(adapter.onTrackStart),
		disgolink.WithListenerFunc(adapter.onTrackEnd),
		disgolink.WithListenerFunc(adapter.onTrackException),
		disgolink.WithListenerFunc(adapter.onTrackStuck),
	)

	node, err := adapter.link.AddNode(ctx, disgolink.NodeConfig{
		Name:     config.NodeName,
		Address:  config.Address,
		Password: config.Password,
		Secure:   config.Secure,
	})
	if err != nil {
		slog.Error(
			"failed to connect to Lavalink, continuing without audio node",
			"address", config.Address,
			"error", err,
		)
		return adapter, nil
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address)

	return adapter, nil
}

// SetPublisher sets where track events are published.
func (c *LavalinkAdapter) SetPublisher(publisher ports.EventPublisher) {
	c.publisherMu.Lock()
	defer c.publisherMu.Unlock()
	c.publisher = publisher
}

func (c *LavalinkAdapter) publish(event domain.Event) {
	c.publisherMu.RLock()
	publisher := c.publisher
	c.publisherMu.RUnlock()

	if publisher == nil {
		return
	}
	if err := publisher.Publish(event); err != nil {
		slog.Warn(
			"failed to publish audio node event",
			"guild", event.Guild(),
			"event", event.Name(),
			"error", err,
		)
	}
}

// Close disconnects from every Lavalink node.
func (c *LavalinkAdapter) Close() {
	c.link.Close()
}

// JoinChannel connects to a voice channel.
// It waits for both VoiceStateUpdate and VoiceServerUpdate events before returning.
func (c *LavalinkAdapter) JoinChannel(ctx context.Context, guildID, channelID snowflake.ID) error {
	handshake := c.handshakes.begin(guildID)

	err := c.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, true)
	if err != nil {
		c.handshakes.forget(guildID)
		return fmt.Errorf("failed to join voice channel: %w", err)
	}

	timer := time.NewTimer(voiceConnectionTimeout)
	defer timer.Stop()

	select {
	case <-handshake.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context cancelled while waiting for voice connection: %w", ctx.Err())
	case <-timer.C:
		return errors.New("timeout waiting for voice connection")
	}
}

// LeaveChannel destroys the guild's player and disconnects from voice.
func (c *LavalinkAdapter) LeaveChannel(ctx context.Context, guildID snowflake.ID) error {
	if player := c.link.ExistingPlayer(guildID); player != nil {
		if err := player.Destroy(ctx); err != nil {
			slog.Warn("failed to destroy player", "guild", guildID, "error", err)
		}
	}
	c.handshakes.forget(guildID)

	err := c.session.ChannelVoiceJoinManual(guildID.String(), "", false, false)
	if err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// Search resolves a Lavalink identifier (URL or prefixed search term).
func (c *LavalinkAdapter) Search(ctx context.Context, query string) (domain.SearchResult, error) {
	node := c.link.BestNode()
	if node == nil {
		return nil, domain.ErrAudioNodeUnavailable
	}

	result, err := node.LoadTracks(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}

	return convertLoadResult(query, result)
}

// Play replaces whatever the guild's player is doing with track.
func (c *LavalinkAdapter) Play(
	ctx context.Context,
	guildID snowflake.ID,
	track domain.Track,
	volume int,
) error {
	player := c.link.Player(guildID)

	// Use WithEncodedTrack to avoid userData:null issue
	err := player.Update(ctx,
		lavalink.WithEncodedTrack(track.Encoded),
		lavalink.WithVolume(volume),
		lavalink.WithPaused(false),
	)
	if err != nil {
		return fmt.Errorf("failed to play track: %w", err)
	}

	return nil
}

// Pause pauses or resumes the current playback.
func (c *LavalinkAdapter) Pause(ctx context.Context, guildID snowflake.ID, paused bool) error {
	player := c.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithPaused(paused)); err != nil {
		return fmt.Errorf("failed to set paused=%t: %w", paused, err)
	}

	return nil
}

// Stop stops the current playback.
func (c *LavalinkAdapter) Stop(ctx context.Context, guildID snowflake.ID) error {
	player := c.link.Player(guildID)

	if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}

	return nil
}

// convertLoadResult converts a Lavalink load result into a SearchResult.
// A search result plays its first playable hit. Tracks missing the fields
// needed to play them are dropped.
func convertLoadResult(query string, result *lavalink.LoadResult) (domain.SearchResult, error) {
	switch data := result.Data.(type) {
	case lavalink.Track:
		track := convertTrack(data)
		if !track.IsValid() {
			return domain.NotFound{}, nil
		}
		return domain.TrackFound{Track: track}, nil

	case lavalink.Playlist:
		tracks := make([]domain.Track, 0, len(data.Tracks))
		for _, lt := range data.Tracks {
			if track := convertTrack(lt); track.IsValid() {
				tracks = append(tracks, track)
			}
		}
		if len(tracks) == 0 {
			return domain.NotFound{}, nil
		}
		playlist := domain.PlaylistFound{Name: data.Info.Name, Tracks: tracks}
		if strings.HasPrefix(query, "http://") || strings.HasPrefix(query, "https://") {
			playlist.URL = query
		}
		return playlist, nil

	case lavalink.Search:
		for _, lt := range data {
			if track := convertTrack(lt); track.IsValid() {
				return domain.TrackFound{Track: track}, nil
			}
		}
		return domain.NotFound{}, nil

	case lavalink.Exception:
		return nil, fmt.Errorf("lavalink load failed: %s", data.Message)

	default:
		return domain.NotFound{}, nil
	}
}

// convertTrack converts a Lavalink track to a domain Track.
func convertTrack(track lavalink.Track) domain.Track {
	info := track.Info

	return domain.Track{
		Key:        trackKey(track),
		Encoded:    track.Encoded,
		Title:      info.Title,
		Author:     info.Author,
		URI:        getStringPtr(info.URI),
		Duration:   time.Duration(info.Length) * time.Millisecond,
		ArtworkURL: getStringPtr(info.ArtworkURL),
		SourceName: info.SourceName,
		IsStream:   info.IsStream,
	}
}

func trackKey(track lavalink.Track) domain.TrackKey {
	return domain.NewTrackKey(track.Info.SourceName, track.Info.Identifier)
}

func getStringPtr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// OnVoiceServerUpdate handles Discord voice server updates.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	if creds, ok := c.handshakes.get(guildID).setServer(event.Token, event.Endpoint); ok {
		c.forwardVoice(guildID, creds)
	}
}

// OnVoiceStateUpdate handles Discord voice state updates of the bot.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	if event.UserID != c.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	// An empty channel means the bot left; no server update follows.
	if event.ChannelID == "" {
		c.link.OnVoiceStateUpdate(context.Background(), guildID, nil, event.SessionID)
		c.handshakes.forget(guildID)
		return
	}

	channelID, err := snowflake.Parse(event.ChannelID)
	if err != nil {
		slog.Error("failed to parse channel ID in voice state update", "error", err)
		return
	}

	if creds, ok := c.handshakes.get(guildID).setState(&channelID, event.SessionID); ok {
		c.forwardVoice(guildID, creds)
	}
}

// forwardVoice sends a complete handshake to Lavalink, state first.
func (c *LavalinkAdapter) forwardVoice(guildID snowflake.ID, creds voiceCredentials) {
	slog.Debug("forwarding voice handshake to Lavalink",
		"guild", guildID,
		"channel", creds.channelID,
		"hasSessionID", creds.sessionID != "",
	)

	c.link.OnVoiceStateUpdate(context.Background(), guildID, creds.channelID, creds.sessionID)
	c.link.OnVoiceServerUpdate(context.Background(), guildID, creds.token, creds.endpoint)
}

func (c *LavalinkAdapter) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild", player.GuildID(), "track", event.Track.Info.Title)

	c.publish(domain.TrackStarted{
		GuildID:  player.GuildID(),
		TrackKey: trackKey(event.Track),
	})
}

func (c *LavalinkAdapter) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	slog.Debug("track ended", "guild", player.GuildID(), "reason", event.Reason)

	c.publish(domain.TrackEnded{
		GuildID:  player.GuildID(),
		TrackKey: trackKey(event.Track),
		Reason:   convertEndReason(event.Reason),
	})
}

func (c *LavalinkAdapter) onTrackException(
	player disgolink.Player,
	event lavalink.TrackExceptionEvent,
) {
	slog.Warn("track exception", "guild", player.GuildID(), "error", event.Exception.Message)
}

func (c *LavalinkAdapter) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("track stuck", "guild", player.GuildID(), "threshold", event.Threshold)
}

func convertEndReason(reason lavalink.TrackEndReason) domain.TrackEndReason {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return domain.TrackEndFinished
	case lavalink.TrackEndReasonLoadFailed:
		return domain.TrackEndLoadFailed
	case lavalink.TrackEndReasonStopped:
		return domain.TrackEndStopped
	case lavalink.TrackEndReasonReplaced:
		return domain.TrackEndReplaced
	case lavalink.TrackEndReasonCleanup:
		return domain.TrackEndCleanup
	default:
		return domain.TrackEndStopped
	}
}

// Ensure LavalinkAdapter implements port interfaces.
var (
	_ ports.AudioPlayer     = (*LavalinkAdapter)(nil)
	_ ports.VoiceConnection = (*LavalinkAdapter)(nil)
)
