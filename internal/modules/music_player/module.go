package music_player

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/bot"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application"
	"github.com/sglre6355/tunebot/internal/modules/music_player/infrastructure"
	"github.com/sglre6355/tunebot/internal/modules/music_player/presentation/discord"
)

// shutdownTimeout bounds how long Shutdown waits for sessions to stop.
const shutdownTimeout = 10 * time.Second

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var _ bot.ConfigurableModule = (*MusicPlayerModule)(nil)

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config          *Config
	commandHandlers *discord.CommandHandlers
	eventHandlers   *discord.EventHandlers
	lavalinkAdapter *infrastructure.LavalinkAdapter
	router          *application.Router

	// Context handed to events without a caller context
	ctx    context.Context
	cancel context.CancelFunc
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"play":       m.commandHandlers.HandlePlay,
		"pause":      m.commandHandlers.HandlePause,
		"resume":     m.commandHandlers.HandleResume,
		"skip":       m.commandHandlers.HandleSkip,
		"shuffle":    m.commandHandlers.HandleShuffle,
		"queue":      m.commandHandlers.HandleQueue,
		"disconnect": m.commandHandlers.HandleDisconnect,
	}
}

// ComponentHandlers returns the button handlers for this module.
func (m *MusicPlayerModule) ComponentHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		infrastructure.ComponentPrefix: m.commandHandlers.HandleComponent,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.handleVoiceServerUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.handleVoiceStateUpdate(s, event)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg, err := parseConfig()
	if err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil || deps.Session.State == nil || deps.Session.State.User == nil {
		return errors.New("music_player requires a connected Discord session")
	}
	if m.config == nil {
		if err := m.LoadConfig(); err != nil {
			return err
		}
	}

	botUser := deps.Session.State.User
	botID, err := snowflake.Parse(botUser.ID)
	if err != nil {
		return err
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())

	// Create Lavalink adapter; an unreachable node is not fatal
	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(
		m.ctx,
		deps.Session,
		infrastructure.LavalinkConfig{
			NodeName: m.config.LavalinkNodeName,
			Address:  m.config.LavalinkAddress,
			Password: m.config.LavalinkPassword,
			Secure:   m.config.LavalinkSecure,
		},
	)
	if err != nil {
		m.cancel()
		return err
	}
	m.lavalinkAdapter = lavalinkAdapter

	// Create infrastructure
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)
	notifier := infrastructure.NewNotifier(deps.Session, m.config.NotifyRate, m.config.NotifyBurst)

	// Create the router; it owns every guild session
	m.router = application.NewRouter(
		m.ctx,
		application.SessionDeps{
			Player:     lavalinkAdapter,
			Voice:      lavalinkAdapter,
			VoiceState: voiceState,
			Notifier:   notifier,
		},
		application.SessionConfig{
			Volume:            m.config.Volume,
			InactivityTimeout: m.config.InactivityTimeout,
			InboxSize:         m.config.SessionInboxSize,
			BotID:             botID,
			BotName:           botUser.Username,
		},
	)
	lavalinkAdapter.SetPublisher(m.router)

	// Create presentation handlers
	m.commandHandlers = discord.NewCommandHandlers(m.router, botUser.Username, discord.DefaultDispatchTimeout)
	m.eventHandlers = discord.NewEventHandlers(m.router)

	slog.Info("music_player module initialized",
		"lavalink", m.config.LavalinkAddress,
		"volume", m.config.Volume,
		"inactivity_timeout", m.config.InactivityTimeout,
	)

	return nil
}

// Shutdown cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	// Stop every session before the audio node goes away
	if m.router != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		m.router.Close(ctx)
		cancel()
	}

	if m.cancel != nil {
		m.cancel()
	}

	// Close Lavalink connection
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Close()
	}

	return nil
}

// Event handlers.

func (m *MusicPlayerModule) handleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceServerUpdate(event)
	}
}

func (m *MusicPlayerModule) handleVoiceStateUpdate(
	s *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceStateUpdate(event)
	}
	if m.eventHandlers != nil {
		m.eventHandlers.HandleVoiceStateUpdate(s, event)
	}
}
