package domain

import "math/rand/v2"

// Queue is the ordered list of tracks waiting to be played.
// The track that is currently playing is never part of the queue: it is
// removed by PopFront when playback is dispatched.
//
// Queue is not safe for concurrent use; it is owned by a single session.
type Queue struct {
	tracks []Track
}

// NewQueue creates a new empty Queue.
func NewQueue() Queue {
	return Queue{
		tracks: make([]Track, 0),
	}
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Len returns the number of queued tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// List returns a copy of the queued tracks in playback order.
func (q *Queue) List() []Track {
	result := make([]Track, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// Append adds a track to the end of the queue.
func (q *Queue) Append(track Track) {
	q.tracks = append(q.tracks, track)
}

// AppendAll adds tracks to the end of the queue, preserving their order.
// The queue is only modified once the whole batch has been copied.
func (q *Queue) AppendAll(tracks []Track) {
	if len(tracks) == 0 {
		return
	}
	next := make([]Track, 0, len(q.tracks)+len(tracks))
	next = append(next, q.tracks...)
	next = append(next, tracks...)
	q.tracks = next
}

// PopFront removes and returns the first track.
// Returns ErrQueueEmpty if there is nothing queued.
func (q *Queue) PopFront() (Track, error) {
	if q.IsEmpty() {
		return Track{}, ErrQueueEmpty
	}
	track := q.tracks[0]
	q.tracks[0] = Track{}
	q.tracks = q.tracks[1:]
	return track, nil
}

// Shuffle randomizes the order of the queued tracks.
func (q *Queue) Shuffle() {
	rand.Shuffle(len(q.tracks), func(i, j int) {
		q.tracks[i], q.tracks[j] = q.tracks[j], q.tracks[i]
	})
}

// Clear removes all tracks from the queue and returns them.
func (q *Queue) Clear() []Track {
	removed := q.tracks
	q.tracks = make([]Track, 0)
	return removed
}

// PositionOf returns the 1-based position of the first queued track with the
// same key, or ErrNotQueued.
func (q *Queue) PositionOf(track Track) (int, error) {
	for i, t := range q.tracks {
		if t.Key == track.Key {
			return i + 1, nil
		}
	}
	return 0, ErrNotQueued
}
