package domain

import "fmt"

// AccentColor is the color of every embed the player posts.
const AccentColor = 0x71368A

// Embed is a rendered display artifact describing a track or a player action.
// It is platform neutral; the Discord adapter turns it into a message embed.
type Embed struct {
	Title       string
	Description string
	URL         string
	Author      string
	Footer      string
	Color       int
	// ThumbnailURL is shown beside the embed when set.
	ThumbnailURL string

	// Controls attaches the player control buttons to the message.
	Controls bool
}

// NewOneLineEmbed creates an embed that only carries a title.
func NewOneLineEmbed(title string) Embed {
	return Embed{
		Title: title,
		Color: AccentColor,
	}
}

// NowPlayingEmbed builds the "Now Playing" embed for track.
// The requester line is omitted when requesterMention is empty.
func NowPlayingEmbed(track Track, requesterMention, durationText string) Embed {
	embed := Embed{
		Title:        track.Title,
		URL:          track.URI,
		Author:       track.Author,
		Footer:       fmt.Sprintf("Duration: %s | Now playing", durationText),
		Color:        AccentColor,
		ThumbnailURL: track.ArtworkURL,
		Controls:     true,
	}
	if requesterMention != "" {
		embed.Description = "Requested by " + requesterMention
	}
	return embed
}
