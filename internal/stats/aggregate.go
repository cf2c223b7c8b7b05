package stats

import (
	"fmt"
	"slices"

	"musicstats/internal/library"
)

// Entry is a category and its total play count.
type Entry struct {
	Name  string `json:"name"`
	Plays int64  `json:"plays"`
}

// Aggregate sums "Play Count" per value of groupKey, highest first. Equal
// totals keep the order in which the group was first seen. If truncateAt is
// positive only the top truncateAt entries are returned.
//
// Tracks missing groupKey or "Play Count" are skipped. Group values that are
// not strings are grouped by their text form.
func Aggregate(lib *library.Library, groupKey string, truncateAt int) []Entry {
	index := make(map[string]int)
	entries := make([]Entry, 0)

	for _, track := range lib.All() {
		value, ok := track[groupKey]
		if !ok {
			continue
		}
		group := groupName(value)
		plays, ok := track.Int(library.KeyPlayCount)
		if !ok {
			continue
		}

		i, seen := index[group]
		if !seen {
			i = len(entries)
			index[group] = i
			entries = append(entries, Entry{Name: group})
		}
		entries[i].Plays += plays
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		switch {
		case a.Plays > b.Plays:
			return -1
		case a.Plays < b.Plays:
			return 1
		}
		return 0
	})

	if truncateAt > 0 && len(entries) > truncateAt {
		entries = entries[:truncateAt]
	}
	return entries
}

func groupName(v any) string {
	switch g := v.(type) {
	case string:
		return g
	case library.Date:
		return string(g)
	default:
		return fmt.Sprint(g)
	}
}

// CollectGenreInfo aggregates play counts by genre.
func CollectGenreInfo(lib *library.Library, truncateAt int) []Entry {
	return Aggregate(lib, library.KeyGenre, truncateAt)
}

// CollectArtistInfo aggregates play counts by artist.
func CollectArtistInfo(lib *library.Library, truncateAt int) []Entry {
	return Aggregate(lib, library.KeyArtist, truncateAt)
}

// Total returns the sum of plays over entries.
func Total(entries []Entry) int64 {
	var sum int64
	for _, e := range entries {
		sum += e.Plays
	}
	return sum
}
