package ports

import "github.com/sglre6355/tunebot/internal/modules/music_player/domain"

// EventPublisher defines the interface for publishing events asynchronously.
// Published events are delivered to the owning session in publish order.
type EventPublisher interface {
	Publish(event domain.Event) error
}
