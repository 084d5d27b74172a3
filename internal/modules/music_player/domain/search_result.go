package domain

import "time"

// SearchResult is the outcome of resolving a user query on the audio node.
// It is one of TrackFound, PlaylistFound or NotFound.
type SearchResult interface {
	isSearchResult()
}

// TrackFound is a single track match.
type TrackFound struct {
	Track Track
}

// PlaylistFound is a playlist; all of its tracks are enqueued together.
type PlaylistFound struct {
	Name   string
	URL    string
	Tracks []Track
}

// NotFound means the query matched nothing.
type NotFound struct{}

func (TrackFound) isSearchResult()    {}
func (PlaylistFound) isSearchResult() {}
func (NotFound) isSearchResult()      {}

// VariousArtists is the author label of a playlist whose tracks have different authors.
const VariousArtists = "Various artists"

// Authors returns the shared author of every track in the playlist,
// or VariousArtists when they differ.
func (p PlaylistFound) Authors() string {
	if len(p.Tracks) == 0 {
		return ""
	}
	author := p.Tracks[0].Author
	for _, t := range p.Tracks[1:] {
		if t.Author != author {
			return VariousArtists
		}
	}
	return author
}

// Duration returns the combined length of the playlist.
func (p PlaylistFound) Duration() time.Duration {
	return TotalDuration(p.Tracks)
}
