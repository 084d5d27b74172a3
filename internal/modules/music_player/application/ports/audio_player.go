package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// AudioPlayer defines the interface for the external audio node.
// Track start and end notifications come back through an EventPublisher.
type AudioPlayer interface {
	// Search resolves a user query into a SearchResult.
	Search(ctx context.Context, query string) (domain.SearchResult, error)

	// Play starts playback of the given track at the given volume.
	Play(ctx context.Context, guildID snowflake.ID, track domain.Track, volume int) error

	// Pause pauses or resumes the current playback.
	Pause(ctx context.Context, guildID snowflake.ID, paused bool) error

	// Stop stops the current playback.
	Stop(ctx context.Context, guildID snowflake.ID) error
}
