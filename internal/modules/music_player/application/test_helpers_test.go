package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

const (
	testGuildID = snowflake.ID(1)
	testUserID  = snowflake.ID(10)
	testBotID   = snowflake.ID(99)
	testVoiceID = snowflake.ID(20)
	testTextID  = snowflake.ID(30)
	testBotName = "tunebot"
)

func mockTrack(id string) domain.Track {
	return domain.Track{
		Key:      domain.TrackKey(id),
		Encoded:  "encoded-" + id,
		Title:    "Track " + id,
		Author:   "Artist",
		URI:      "https://example.com/" + id,
		Duration: 3 * time.Minute,
	}
}

func mockPlaylist(name string, n int) domain.PlaylistFound {
	tracks := make([]domain.Track, n)
	for i := range tracks {
		tracks[i] = mockTrack(fmt.Sprintf("%s-%d", name, i+1))
	}
	return domain.PlaylistFound{Name: name, URL: "https://example.com/list/" + name, Tracks: tracks}
}

type mockAudioPlayer struct {
	mu        sync.Mutex
	results   map[string]domain.SearchResult
	searchErr error
	panicking bool
	playErr   error
	rejected  map[domain.TrackKey]bool
	pauseErr  error
	stopErr   error

	played []domain.TrackKey
	paused []bool
	stops  int
}

func newMockAudioPlayer() *mockAudioPlayer {
	return &mockAudioPlayer{results: make(map[string]domain.SearchResult)}
}

// add registers result for a plain search term.
func (m *mockAudioPlayer) add(term string, result domain.SearchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[domain.NewSearchQuery(term).LavalinkQuery()] = result
}

func (m *mockAudioPlayer) Search(_ context.Context, query string) (domain.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.panicking {
		panic("search exploded")
	}
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if r, ok := m.results[query]; ok {
		return r, nil
	}
	return domain.NotFound{}, nil
}

func (m *mockAudioPlayer) Play(_ context.Context, _ snowflake.ID, track domain.Track, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.playErr != nil {
		return m.playErr
	}
	if m.rejected[track.Key] {
		return fmt.Errorf("track %s failed to load", track.Key)
	}
	m.played = append(m.played, track.Key)
	return nil
}

func (m *mockAudioPlayer) Pause(_ context.Context, _ snowflake.ID, paused bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pauseErr != nil {
		return m.pauseErr
	}
	m.paused = append(m.paused, paused)
	return nil
}

func (m *mockAudioPlayer) Stop(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stops++
	return m.stopErr
}

// reject makes Play fail for the given tracks.
func (m *mockAudioPlayer) reject(keys ...domain.TrackKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rejected == nil {
		m.rejected = make(map[domain.TrackKey]bool)
	}
	for _, k := range keys {
		m.rejected[k] = true
	}
}

func (m *mockAudioPlayer) setPlayErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

func (m *mockAudioPlayer) playedKeys() []domain.TrackKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TrackKey(nil), m.played...)
}

func (m *mockAudioPlayer) pauseCalls() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]bool(nil), m.paused...)
}

func (m *mockAudioPlayer) stopCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

type mockVoiceConnection struct {
	mu      sync.Mutex
	joinErr error
	joined  []snowflake.ID
	leaves  int
}

func (m *mockVoiceConnection) JoinChannel(_ context.Context, _, channelID snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.joinErr != nil {
		return m.joinErr
	}
	m.joined = append(m.joined, channelID)
	return nil
}

func (m *mockVoiceConnection) LeaveChannel(_ context.Context, _ snowflake.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.leaves++
	return nil
}

func (m *mockVoiceConnection) joinCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.joined)
}

func (m *mockVoiceConnection) leaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaves
}

type mockVoiceStateProvider struct {
	mu        sync.Mutex
	channels  map[snowflake.ID]snowflake.ID // userID -> channelID
	listeners map[snowflake.ID]int          // channelID -> non-bot members
	err       error
}

func newMockVoiceStateProvider() *mockVoiceStateProvider {
	return &mockVoiceStateProvider{
		channels:  make(map[snowflake.ID]snowflake.ID),
		listeners: make(map[snowflake.ID]int),
	}
}

func (m *mockVoiceStateProvider) setChannel(userID, channelID snowflake.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if channelID == 0 {
		delete(m.channels, userID)
		return
	}
	m.channels[userID] = channelID
}

func (m *mockVoiceStateProvider) setListeners(channelID snowflake.ID, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners[channelID] = n
}

func (m *mockVoiceStateProvider) GetUserVoiceChannel(
	_, userID snowflake.ID,
) (*snowflake.ID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	channelID, ok := m.channels[userID]
	if !ok {
		return nil, nil
	}
	return &channelID, nil
}

func (m *mockVoiceStateProvider) CountListeners(_, channelID snowflake.ID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return 0, m.err
	}
	return m.listeners[channelID], nil
}

type sentNotice struct {
	channelID snowflake.ID
	embed     domain.Embed
}

type mockNotifier struct {
	mu   sync.Mutex
	sent []sentNotice
}

func (m *mockNotifier) Send(_ context.Context, channelID snowflake.ID, embed domain.Embed) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent = append(m.sent, sentNotice{channelID: channelID, embed: embed})
	return nil
}

func (m *mockNotifier) notices() []sentNotice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentNotice(nil), m.sent...)
}

// harness wires a Router to mocks. The test user sits in testVoiceID with
// the bot and one listener.
type harness struct {
	player     *mockAudioPlayer
	voice      *mockVoiceConnection
	voiceState *mockVoiceStateProvider
	notifier   *mockNotifier
	router     *Router
}

func newHarness(t *testing.T, inactivity time.Duration) *harness {
	t.Helper()

	h := &harness{
		player:     newMockAudioPlayer(),
		voice:      &mockVoiceConnection{},
		voiceState: newMockVoiceStateProvider(),
		notifier:   &mockNotifier{},
	}
	h.voiceState.setChannel(testUserID, testVoiceID)
	h.voiceState.setChannel(testBotID, testVoiceID)
	h.voiceState.setListeners(testVoiceID, 1)

	h.router = NewRouter(
		context.Background(),
		SessionDeps{
			Player:     h.player,
			Voice:      h.voice,
			VoiceState: h.voiceState,
			Notifier:   h.notifier,
		},
		SessionConfig{
			Volume:            DefaultVolume,
			InactivityTimeout: inactivity,
			BotID:             testBotID,
			BotName:           testBotName,
		},
	)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		h.router.Close(ctx)
	})

	return h
}

func (h *harness) command(kind domain.CommandKind) domain.Command {
	return domain.Command{
		GuildID:       testGuildID,
		UserID:        testUserID,
		UserMention:   "<@10>",
		TextChannelID: testTextID,
		Kind:          kind,
	}
}

func (h *harness) dispatch(t *testing.T, cmd domain.Command) (Reply, error) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	return h.router.Dispatch(ctx, cmd)
}

func (h *harness) play(t *testing.T, term string) (Reply, error) {
	t.Helper()

	cmd := h.command(domain.CommandPlay)
	cmd.Query = term
	return h.dispatch(t, cmd)
}

func (h *harness) mustPlay(t *testing.T, term string) Reply {
	t.Helper()

	reply, err := h.play(t, term)
	if err != nil {
		t.Fatalf("play %q: unexpected error: %v", term, err)
	}
	return reply
}

func (h *harness) session(t *testing.T) *Session {
	t.Helper()

	s := h.router.Registry().Get(testGuildID)
	if s == nil {
		t.Fatal("expected a session for the test guild")
	}
	return s
}

func (h *harness) snapshot(t *testing.T) sessionSnapshot {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	snap, err := h.session(t).inspect(ctx)
	if err != nil {
		t.Fatalf("inspect session: %v", err)
	}
	return snap
}

// publish delivers event through the router and waits until the session
// has processed it, or has closed.
func (h *harness) publish(t *testing.T, event domain.Event) {
	t.Helper()

	s := h.session(t)
	if err := h.router.Publish(event); err != nil {
		t.Fatalf("publish %s: %v", event.Name(), err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := s.inspect(ctx)
	if err == nil {
		return
	}
	if !errors.Is(err, errSessionClosed) {
		t.Fatalf("waiting for %s: %v", event.Name(), err)
	}
	waitDone(t, s)
}

type sessionSnapshot struct {
	State          domain.SessionState
	Current        *domain.Track
	Queued         []domain.Track
	CachedEmbeds   int
	HomeChannelID  snowflake.ID
	VoiceChannelID snowflake.ID
	TimerArmed     bool
	TimerGen       uint64
}

func (s *Session) snapshot() sessionSnapshot {
	snap := sessionSnapshot{
		State:          s.state,
		Queued:         s.queue.List(),
		CachedEmbeds:   s.embeds.Len(),
		HomeChannelID:  s.homeChannelID,
		VoiceChannelID: s.voiceChannelID,
		TimerArmed:     s.timer.armed,
		TimerGen:       s.timer.generation,
	}
	if s.current != nil {
		current := *s.current
		snap.Current = &current
	}
	return snap
}

// inspect returns a snapshot taken on the session worker.
func (s *Session) inspect(ctx context.Context) (sessionSnapshot, error) {
	var snap sessionSnapshot
	_, err := s.submit(ctx, workerCall{
		guildID: s.guildID,
		name:    "inspect",
		fn: func(_ context.Context, s *Session) Reply {
			snap = s.snapshot()
			return Reply{}
		},
	})
	if err != nil {
		return sessionSnapshot{}, err
	}
	return snap, nil
}

func waitDone(t *testing.T, s *Session) {
	t.Helper()

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("session worker did not stop")
	}
}
