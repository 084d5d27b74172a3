package discord

import (
	"context"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

const (
	testGuildID   = "1"
	testUserID    = "10"
	testChannelID = "30"
)

// mockDispatcher records dispatched and published events.
type mockDispatcher struct {
	mu        sync.Mutex
	events    []domain.Event
	reply     application.Reply
	err       error
	published []domain.Event
}

func (m *mockDispatcher) Dispatch(_ context.Context, event domain.Event) (application.Reply, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.reply, m.err
}

func (m *mockDispatcher) Publish(event domain.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, event)
	return m.err
}

func (m *mockDispatcher) lastCommand() (domain.Command, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.events) == 0 {
		return domain.Command{}, false
	}
	cmd, ok := m.events[len(m.events)-1].(domain.Command)
	return cmd, ok
}

func guildMember() *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: testUserID}}
}

func slashInteraction(
	name string,
	options ...*discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   testGuildID,
		ChannelID: testChannelID,
		Member:    guildMember(),
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    name,
			Options: options,
		},
	}}
}

func buttonInteraction(customID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{Interaction: &discordgo.Interaction{
		Type:      discordgo.InteractionMessageComponent,
		GuildID:   testGuildID,
		ChannelID: testChannelID,
		Member:    guildMember(),
		Data: discordgo.MessageComponentInteractionData{
			CustomID:      customID,
			ComponentType: discordgo.ButtonComponent,
		},
	}}
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func intOption(name string, value int) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionInteger,
		Value: float64(value),
	}
}

func subCommand(
	name string,
	options ...*discordgo.ApplicationCommandInteractionDataOption,
) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:    name,
		Type:    discordgo.ApplicationCommandOptionSubCommand,
		Options: options,
	}
}
