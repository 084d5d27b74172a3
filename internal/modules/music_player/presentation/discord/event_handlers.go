package discord

import (
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// EventHandlers handles Discord gateway events for the music player.
type EventHandlers struct {
	publisher ports.EventPublisher
}

// NewEventHandlers creates a new EventHandlers.
func NewEventHandlers(publisher ports.EventPublisher) *EventHandlers {
	return &EventHandlers{
		publisher: publisher,
	}
}

// HandleVoiceStateUpdate forwards voice membership changes to the guild's
// session, for the bot and for every other member.
func (h *EventHandlers) HandleVoiceStateUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if event.VoiceState == nil || event.GuildID == "" {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	userID, err := snowflake.Parse(event.UserID)
	if err != nil {
		slog.Error("failed to parse user ID in voice state update", "error", err)
		return
	}

	// Parse the channel ID - nil means disconnected
	var channelID *snowflake.ID
	if event.ChannelID != "" {
		id, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("failed to parse channel ID in voice state update", "error", err)
			return
		}
		channelID = &id
	}

	err = h.publisher.Publish(domain.MembershipChanged{
		GuildID:   guildID,
		UserID:    userID,
		ChannelID: channelID,
	})
	if err != nil {
		slog.Warn("failed to publish membership change", "guild", guildID, "error", err)
	}
}
