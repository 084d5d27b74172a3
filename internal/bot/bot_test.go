package bot

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func TestNewBot(t *testing.T) {
	cfg := &Config{
		DiscordToken: "test-token",
	}

	b := NewBot(cfg)

	if b == nil {
		t.Fatal("expected bot to be created, got nil")
	}
	if b.config != cfg {
		t.Error("expected config to be stored")
	}
}

func TestBot_LoadModules_InitializesModules(t *testing.T) {
	cfg := &Config{DiscordToken: "test-token"}
	b := NewBot(cfg)
	b.session = &discordgo.Session{}

	initCalled := false
	trackingMod := &trackingStubModule{
		stubModule: stubModule{name: "tracking"},
		initCalled: &initCalled,
	}
	b.modules = []Module{trackingMod}

	err := b.initModules()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !initCalled {
		t.Error("expected Init to be called")
	}
}

func TestBot_LoadModules_ReturnsInitError(t *testing.T) {
	cfg := &Config{DiscordToken: "test-token"}
	b := NewBot(cfg)

	expectedErr := errors.New("init failed")
	mod := &stubModule{
		name:    "failing",
		initErr: expectedErr,
	}
	b.modules = []Module{mod}

	err := b.initModules()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestBot_BuildHandlerMap(t *testing.T) {
	cfg := &Config{DiscordToken: "test-token"}
	b := NewBot(cfg)

	handler := func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
		return nil
	}

	mod := &stubModule{
		name: "test",
		handlers: map[string]InteractionHandler{
			"ping": handler,
		},
	}
	b.modules = []Module{mod}

	b.buildHandlerMap()

	if _, ok := b.handlers["ping"]; !ok {
		t.Error("expected ping handler to be registered")
	}
}

func TestBot_BuildHandlerMap_MultipleModules(t *testing.T) {
	cfg := &Config{DiscordToken: "test-token"}
	b := NewBot(cfg)

	handler1 := func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
		return nil
	}
	handler2 := func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
		return nil
	}

	mod1 := &stubModule{
		name: "mod1",
		handlers: map[string]InteractionHandler{
			"cmd1": handler1,
		},
	}
	mod2 := &stubModule{
		name: "mod2",
		handlers: map[string]InteractionHandler{
			"cmd2": handler2,
		},
	}
	b.modules = []Module{mod1, mod2}

	b.buildHandlerMap()

	if len(b.handlers) != 2 {
		t.Errorf("expected 2 handlers, got %d", len(b.handlers))
	}
}

func TestBot_CollectCommands(t *testing.T) {
	cfg := &Config{DiscordToken: "test-token"}
	b := NewBot(cfg)

	cmd := &discordgo.ApplicationCommand{
		Name:        "ping",
		Description: "Ping command",
	}

	mod := &stubModule{
		name:     "test",
		commands: []*discordgo.ApplicationCommand{cmd},
	}
	b.modules = []Module{mod}

	commands := b.collectCommands()

	if len(commands) != 1 {
		t.Fatalf("expected 1 command, got %d", len(commands))
	}
	if commands[0].Name != "ping" {
		t.Errorf("expected command name %q, got %q", "ping", commands[0].Name)
	}
}

// trackingStubModule is a stub that tracks if Init was called
type trackingStubModule struct {
	stubModule
	initCalled *bool
	session    *discordgo.Session
}

func (m *trackingStubModule) Init(deps ModuleDependencies) error {
	*m.initCalled = true
	m.session = deps.Session
	return m.stubModule.Init(deps)
}

// configurableStubModule is a stub that implements ConfigurableModule
type configurableStubModule struct {
	stubModule
	loadCalled bool
	loadErr    error
}

func (m *configurableStubModule) LoadConfig() error {
	m.loadCalled = true
	return m.loadErr
}

func TestBot_InitModules_PassesSession(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})
	session := &discordgo.Session{}
	b.session = session

	initCalled := false
	mod := &trackingStubModule{
		stubModule: stubModule{name: "tracking"},
		initCalled: &initCalled,
	}
	b.modules = []Module{mod}

	if err := b.initModules(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mod.session != session {
		t.Error("expected module to receive the bot session")
	}
}

func TestBot_LoadModuleConfigs(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	configurable := &configurableStubModule{stubModule: stubModule{name: "configurable"}}
	plain := &stubModule{name: "plain"}
	b.modules = []Module{plain, configurable}

	if err := b.loadModuleConfigs(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !configurable.loadCalled {
		t.Error("expected LoadConfig to be called")
	}
}

func TestBot_LoadModuleConfigs_ReturnsError(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	expectedErr := errors.New("missing password")
	b.modules = []Module{&configurableStubModule{
		stubModule: stubModule{name: "configurable"},
		loadErr:    expectedErr,
	}}

	err := b.loadModuleConfigs()
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
}

func TestBot_ComponentHandler(t *testing.T) {
	b := NewBot(&Config{DiscordToken: "test-token"})

	called := ""
	b.modules = []Module{&stubModule{
		name: "music",
		components: map[string]InteractionHandler{
			"music_player": func(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) error {
				called = "music_player"
				return nil
			},
		},
	}}
	b.buildHandlerMap()

	tests := []struct {
		customID string
		wantOK   bool
	}{
		{customID: "music_player:skip", wantOK: true},
		{customID: "music_player:queue_page:2:next", wantOK: true},
		{customID: "music_player", wantOK: true},
		{customID: "music:skip", wantOK: false},
		{customID: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.customID, func(t *testing.T) {
			handler, ok := b.componentHandler(tt.customID)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if !ok {
				return
			}
			called = ""
			if err := handler(nil, nil, &MockResponder{}); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if called != "music_player" {
				t.Errorf("expected music_player handler, got %q", called)
			}
		})
	}
}
