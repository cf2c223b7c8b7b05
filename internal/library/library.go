package library

import "iter"

// Library is the collection of track records keyed by track ID.
//
// Iteration follows the order in which each ID was first seen. Adding a
// record under an existing ID replaces it but keeps its position.
type Library struct {
	tracks map[int64]Track
	order  []int64
}

// New returns an empty library.
func New() *Library {
	return &Library{tracks: make(map[int64]Track)}
}

// Add stores t under id.
func (l *Library) Add(id int64, t Track) {
	if _, exists := l.tracks[id]; !exists {
		l.order = append(l.order, id)
	}
	l.tracks[id] = t
}

// Get returns the track with the given ID.
func (l *Library) Get(id int64) (Track, bool) {
	t, ok := l.tracks[id]
	return t, ok
}

// Len returns the number of tracks.
func (l *Library) Len() int {
	return len(l.order)
}

// IDs returns the track IDs in iteration order.
func (l *Library) IDs() []int64 {
	ids := make([]int64, len(l.order))
	copy(ids, l.order)
	return ids
}

// All iterates over the tracks in first-seen order.
func (l *Library) All() iter.Seq2[int64, Track] {
	return func(yield func(int64, Track) bool) {
		for _, id := range l.order {
			if !yield(id, l.tracks[id]) {
				return
			}
		}
	}
}

// Select returns a new library with the tracks for which keep returns true,
// in the same order.
func (l *Library) Select(keep func(id int64, t Track) bool) *Library {
	out := New()
	for id, t := range l.All() {
		if keep(id, t) {
			out.Add(id, t)
		}
	}
	return out
}
