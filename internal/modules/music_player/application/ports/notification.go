package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// NotificationSender defines the interface for posting embeds to text channels.
type NotificationSender interface {
	Send(ctx context.Context, channelID snowflake.ID, embed domain.Embed) error
}
