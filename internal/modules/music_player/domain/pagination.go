package domain

// QueuePageSize is the number of queued tracks shown per page.
const QueuePageSize = 10

// QueueLine is a queued track with its 1-based rank in the queue.
type QueueLine struct {
	Rank  int
	Track Track
}

// QueuePage is one page of the queue display.
type QueuePage struct {
	Number      int // 1-based
	TotalPages  int
	TotalTracks int
	NowPlaying  *Track // set on the first page only
	Lines       []QueueLine
}

// PaginateQueue splits the queued tracks into pages of at most size lines.
// The first page also carries the current track, if any.
// Returns nil when there is nothing to show.
func PaginateQueue(current *Track, queued []Track, size int) []QueuePage {
	if size <= 0 {
		size = QueuePageSize
	}
	if current == nil && len(queued) == 0 {
		return nil
	}

	total := (len(queued) + size - 1) / size
	if total == 0 {
		total = 1
	}

	pages := make([]QueuePage, total)
	for p := range pages {
		start := p * size
		end := min(start+size, len(queued))

		lines := make([]QueueLine, 0, end-start)
		for i := start; i < end; i++ {
			lines = append(lines, QueueLine{Rank: i + 1, Track: queued[i]})
		}

		pages[p] = QueuePage{
			Number:      p + 1,
			TotalPages:  total,
			TotalTracks: len(queued),
			Lines:       lines,
		}
	}

	if current != nil {
		nowPlaying := *current
		pages[0].NowPlaying = &nowPlaying
	}

	return pages
}

// ClampPage returns page limited to [1, total].
func ClampPage(page, total int) int {
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}
