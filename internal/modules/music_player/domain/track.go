package domain

import (
	"strconv"
	"time"
)

// TrackKey identifies a track for its whole lifetime.
// Two search hits for the same song share a key.
type TrackKey string

// Track represents a playable audio track returned by the audio node.
// Tracks are values and must not be modified after they are obtained.
type Track struct {
	Key        TrackKey
	Encoded    string // Lavalink encoded track data
	Title      string
	Author     string
	URI        string
	Duration   time.Duration
	ArtworkURL string
	SourceName string // e.g., "youtube", "soundcloud"
	IsStream   bool
}

// NewTrackKey builds the key for a track from its source and identifier.
func NewTrackKey(sourceName, identifier string) TrackKey {
	if sourceName == "" {
		return TrackKey(identifier)
	}
	return TrackKey(sourceName + ":" + identifier)
}

// IsValid returns true if the track has the minimum required fields.
func (t Track) IsValid() bool {
	return t.Key != "" && t.Encoded != "" && t.Title != ""
}

// FormattedDuration returns the duration as a human-readable string (mm:ss or hh:mm:ss).
func (t Track) FormattedDuration() string {
	if t.IsStream {
		return "LIVE"
	}
	return FormatDuration(t.Duration)
}

// TotalDuration sums the durations of the given tracks. Streams count as zero.
func TotalDuration(tracks []Track) time.Duration {
	var total time.Duration
	for _, t := range tracks {
		if !t.IsStream {
			total += t.Duration
		}
	}
	return total
}

// FormatDuration formats d as mm:ss, or hh:mm:ss when it exceeds an hour.
func FormatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
