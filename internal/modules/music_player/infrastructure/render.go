package infrastructure

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sglre6355/tunebot/internal/modules/music_player/domain"
)

// ComponentPrefix namespaces the custom IDs of the player's buttons.
const ComponentPrefix = "music_player"

// Player control actions carried by button custom IDs.
const (
	ActionResume     = "resume"
	ActionPause      = "pause"
	ActionSkip       = "skip"
	ActionQueueClear = "queue_clear"
	ActionShuffle    = "shuffle"
	ActionQueueShow  = "queue_show"
	ActionQueuePage  = "queue_page"
)

// Paginator button slots. Custom IDs must be unique within a message.
const (
	slotFirst     = "first"
	slotPrev      = "prev"
	slotIndicator = "indicator"
	slotNext      = "next"
	slotLast      = "last"
)

// ComponentID builds the custom ID of a player button.
func ComponentID(action string, args ...string) string {
	return strings.Join(append([]string{ComponentPrefix, action}, args...), ":")
}

// ParseQueuePageID returns the target page of a paginator button.
func ParseQueuePageID(customID string) (int, error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 4 || parts[0] != ComponentPrefix || parts[1] != ActionQueuePage {
		return 0, fmt.Errorf("not a queue page button: %q", customID)
	}
	page, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, fmt.Errorf("invalid page in %q: %w", customID, err)
	}
	return page, nil
}

// RenderEmbed converts a domain embed into a Discord message embed.
func RenderEmbed(embed domain.Embed) *discordgo.MessageEmbed {
	rendered := &discordgo.MessageEmbed{
		Title:       embed.Title,
		Description: embed.Description,
		URL:         embed.URL,
		Color:       embed.Color,
	}
	if embed.Author != "" {
		rendered.Author = &discordgo.MessageEmbedAuthor{Name: embed.Author}
	}
	if embed.Footer != "" {
		rendered.Footer = &discordgo.MessageEmbedFooter{Text: embed.Footer}
	}
	if embed.ThumbnailURL != "" {
		rendered.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: embed.ThumbnailURL}
	}
	return rendered
}

// RenderComponents returns the buttons to attach under embed.
func RenderComponents(embed domain.Embed) []discordgo.MessageComponent {
	if !embed.Controls {
		return nil
	}
	return PlayerControls()
}

// PlayerControls returns the two rows of player control buttons.
func PlayerControls() []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			controlButton(ActionResume, "Resume", "▶️"),
			controlButton(ActionPause, "Pause", "⏸️"),
			controlButton(ActionSkip, "Skip", "⏭️"),
		}},
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			controlButton(ActionQueueClear, "Clear queue", "🗑️"),
			controlButton(ActionShuffle, "Shuffle", "🔀"),
			controlButton(ActionQueueShow, "Queue", "📜"),
		}},
	}
}

func controlButton(action, label, emoji string) discordgo.Button {
	return discordgo.Button{
		Label:    label,
		Style:    discordgo.SecondaryButton,
		CustomID: ComponentID(action),
		Emoji:    &discordgo.ComponentEmoji{Name: emoji},
	}
}

// QueuePaginator returns the navigation row for a queue page.
// A single page needs no navigation.
func QueuePaginator(page domain.QueuePage) []discordgo.MessageComponent {
	if page.TotalPages <= 1 {
		return nil
	}

	first := page.Number == 1
	last := page.Number == page.TotalPages

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			pageButton("<<", 1, slotFirst, first),
			pageButton("<", page.Number-1, slotPrev, first),
			pageButton(
				fmt.Sprintf("%d/%d", page.Number, page.TotalPages),
				page.Number, slotIndicator, true,
			),
			pageButton(">", page.Number+1, slotNext, last),
			pageButton(">>", page.TotalPages, slotLast, last),
		}},
	}
}

func pageButton(label string, target int, slot string, disabled bool) discordgo.Button {
	return discordgo.Button{
		Label:    label,
		Style:    discordgo.SecondaryButton,
		CustomID: ComponentID(ActionQueuePage, strconv.Itoa(target), slot),
		Disabled: disabled,
	}
}
