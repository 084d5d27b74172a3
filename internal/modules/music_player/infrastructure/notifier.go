package infrastructure

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/application/ports"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
	"golang.org/x/time/rate"
)

// Default notification budget, well inside Discord's per-channel limit.
const (
	DefaultNotifyRate  = 5
	DefaultNotifyBurst = 5
)

// MessageSender posts a message to a Discord channel.
// *discordgo.Session satisfies it.
type MessageSender interface {
	ChannelMessageSendComplex(
		channelID string,
		data *discordgo.MessageSend,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
}

// Notifier sends notifications to Discord channels.
// Sends share one rate limiter and wait for a token.
type Notifier struct {
	sender  MessageSender
	limiter *rate.Limiter
}

// NewNotifier creates a new Notifier allowing perSecond messages with the
// given burst.
func NewNotifier(sender MessageSender, perSecond float64, burst int) *Notifier {
	if perSecond <= 0 {
		perSecond = DefaultNotifyRate
	}
	if burst <= 0 {
		burst = DefaultNotifyBurst
	}

	return &Notifier{
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Send posts embed to the channel, with player controls when the embed asks
// for them.
func (n *Notifier) Send(ctx context.Context, channelID snowflake.ID, embed domain.Embed) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("notification rate limit: %w", err)
	}

	_, err := n.sender.ChannelMessageSendComplex(channelID.String(), &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{RenderEmbed(embed)},
		Components: RenderComponents(embed),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", channelID, err)
	}
	return nil
}

// Ensure Notifier implements ports.NotificationSender.
var _ ports.NotificationSender = (*Notifier)(nil)
