// Package enrich fills properties missing from library records with the
// tags stored in the audio files themselves.
package enrich

import (
	"context"
	"fmt"

	"go.senan.xyz/taglib"

	"musicstats/internal/library"
	"musicstats/internal/metrics"
	"musicstats/pkg/utils"
)

// TagReader returns the tags of an audio file.
type TagReader func(path string) (map[string][]string, error)

// fields maps library properties to the file tags that can supply them.
var fields = []struct {
	property string
	tag      string
}{
	{library.KeyGenre, taglib.Genre},
	{library.KeyArtist, taglib.Artist},
	{library.KeyAlbum, taglib.Album},
}

// Options configures a Tags run.
type Options struct {
	// ReadTags defaults to taglib.ReadTags.
	ReadTags TagReader
	// OnProgress is called once per inspected track.
	OnProgress func()
}

// Stats summarises a Tags run.
type Stats struct {
	Inspected int
	Filled    int
	Failed    int
}

// Candidates returns how many tracks lack a genre or artist and have an
// audio file location to read from.
func Candidates(lib *library.Library) int {
	n := 0
	for _, t := range lib.All() {
		if needsTags(t) {
			n++
		}
	}
	return n
}

// Tags returns a copy of lib in which tracks missing a genre or artist get
// those values from their audio file's tags. Existing properties are never
// overwritten. Files that cannot be read are counted in Stats.Failed and left
// as they are.
func Tags(ctx context.Context, lib *library.Library, opts Options) (*library.Library, Stats, error) {
	read := opts.ReadTags
	if read == nil {
		read = taglib.ReadTags
	}

	var st Stats
	out := library.New()

	for id, track := range lib.All() {
		if !needsTags(track) {
			out.Add(id, track)
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, st, fmt.Errorf("tag enrichment cancelled: %w", err)
		}

		st.Inspected++
		filled, ok := fillFromFile(track, read)
		switch {
		case !ok:
			st.Failed++
			metrics.EnrichedTracksTotal.WithLabelValues("failed").Inc()
			out.Add(id, track)
		case filled != nil:
			st.Filled++
			metrics.EnrichedTracksTotal.WithLabelValues("filled").Inc()
			out.Add(id, filled)
		default:
			metrics.EnrichedTracksTotal.WithLabelValues("unchanged").Inc()
			out.Add(id, track)
		}

		if opts.OnProgress != nil {
			opts.OnProgress()
		}
	}

	return out, st, nil
}

func needsTags(t library.Track) bool {
	loc, ok := t.String(library.KeyLocation)
	if !ok || !utils.IsAudioFile(loc) {
		return false
	}
	_, hasGenre := t[library.KeyGenre]
	_, hasArtist := t[library.KeyArtist]
	return !hasGenre || !hasArtist
}

// fillFromFile returns a new record with the missing properties set, nil if
// the file had nothing to add, and ok=false if the file could not be read.
func fillFromFile(t library.Track, read TagReader) (library.Track, bool) {
	loc, _ := t.String(library.KeyLocation)
	path, err := utils.LocationToPath(loc)
	if err != nil {
		return nil, false
	}

	tags, err := read(path)
	if err != nil {
		return nil, false
	}

	var filled library.Track
	for _, f := range fields {
		if _, present := t[f.property]; present {
			continue
		}
		v := firstTag(tags, f.tag)
		if v == "" {
			continue
		}
		if filled == nil {
			filled = t.Clone()
		}
		filled[f.property] = v
	}
	return filled, true
}

func firstTag(tags map[string][]string, key string) string {
	if vals, ok := tags[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	return ""
}
