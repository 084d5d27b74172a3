package domain

import "fmt"

type embedEntry struct {
	embed Embed
	refs  int
}

// EmbedCache stores one "Now Playing" embed per track, shared by every holder
// that needs it: each queued copy of the track and the pending now-playing
// render. An entry lives exactly as long as its reference count is positive.
//
// EmbedCache is not safe for concurrent use; each session owns its own cache.
type EmbedCache struct {
	entries map[TrackKey]*embedEntry
}

// NewEmbedCache creates an empty EmbedCache.
func NewEmbedCache() *EmbedCache {
	return &EmbedCache{
		entries: make(map[TrackKey]*embedEntry),
	}
}

// AcquireNowPlaying takes a reference on the "Now Playing" embed for track.
// An existing embed is reused as-is; otherwise a new one is built from the
// requester mention and duration text.
func (c *EmbedCache) AcquireNowPlaying(track Track, requesterMention, durationText string) Embed {
	if entry, ok := c.entries[track.Key]; ok {
		entry.refs++
		return entry.embed
	}

	embed := NowPlayingEmbed(track, requesterMention, durationText)
	c.entries[track.Key] = &embedEntry{embed: embed, refs: 1}
	return embed
}

// Release drops a reference on the embed for track and returns the embed.
// The entry is removed when the last reference goes away; the returned embed
// is still valid for a final render.
// Returns ErrNotTracked if track holds no reference.
func (c *EmbedCache) Release(track Track) (Embed, error) {
	entry, ok := c.entries[track.Key]
	if !ok {
		return Embed{}, fmt.Errorf("%w: %s", ErrNotTracked, track.Key)
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(c.entries, track.Key)
	}
	return entry.embed, nil
}

// ResetAll drops every entry regardless of its reference count.
func (c *EmbedCache) ResetAll() {
	clear(c.entries)
}

// RefCount returns the number of references held on key.
func (c *EmbedCache) RefCount(key TrackKey) int {
	if entry, ok := c.entries[key]; ok {
		return entry.refs
	}
	return 0
}

// Len returns the number of cached embeds.
func (c *EmbedCache) Len() int {
	return len(c.entries)
}
