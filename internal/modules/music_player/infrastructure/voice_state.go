package infrastructure

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
)

// VoiceStateProvider provides Discord voice state information from the
// gateway state cache.
type VoiceStateProvider struct {
	session *discordgo.Session
}

// NewVoiceStateProvider creates a new VoiceStateProvider.
func NewVoiceStateProvider(session *discordgo.Session) *VoiceStateProvider {
	return &VoiceStateProvider{
		session: session,
	}
}

// GetUserVoiceChannel returns the voice channel ID that the user is currently in.
// Returns nil if the user is not in a voice channel.
func (v *VoiceStateProvider) GetUserVoiceChannel(
	guildID, userID snowflake.ID,
) (*snowflake.ID, error) {
	vs, err := v.session.State.VoiceState(guildID.String(), userID.String())
	if errors.Is(err, discordgo.ErrStateNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if vs.ChannelID == "" {
		return nil, nil
	}

	channelID, err := snowflake.Parse(vs.ChannelID)
	if err != nil {
		return nil, fmt.Errorf("invalid channel ID %q: %w", vs.ChannelID, err)
	}
	return &channelID, nil
}

// CountListeners returns the number of non-bot members in the voice channel.
// Members missing from the cache count as listeners.
func (v *VoiceStateProvider) CountListeners(guildID, channelID snowflake.ID) (int, error) {
	guild, err := v.session.State.Guild(guildID.String())
	if err != nil {
		return 0, err
	}

	channel := channelID.String()
	var userIDs []string

	v.session.State.RLock()
	for _, vs := range guild.VoiceStates {
		if vs.ChannelID == channel {
			userIDs = append(userIDs, vs.UserID)
		}
	}
	v.session.State.RUnlock()

	count := 0
	for _, userID := range userIDs {
		member, err := v.session.State.Member(guild.ID, userID)
		if err == nil && member.User != nil && member.User.Bot {
			continue
		}
		count++
	}
	return count, nil
}

// Ensure VoiceStateProvider implements ports.VoiceStateProvider.
var _ ports.VoiceStateProvider = (*VoiceStateProvider)(nil)
