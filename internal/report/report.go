// Package report renders aggregated play counts as labeled magnitudes.
//
// It does no drawing. Shares are the proportions a pie chart would use and
// Cloud gives the weights of a size-scaled artist list; both are written as
// text tables or JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"musicstats/internal/stats"
)

const (
	// MaxLabelLength is the length at which cloud labels get cut.
	MaxLabelLength = 48
	// CloudScale multiplies the square root of the play count.
	CloudScale = 1.2
)

// Summary is everything one run produces.
type Summary struct {
	Library     string        `json:"library"`
	Since       string        `json:"since,omitempty"`
	Until       string        `json:"until,omitempty"`
	TotalTracks int           `json:"total_tracks"`
	Tracks      int           `json:"tracks"`
	Genres      []stats.Entry `json:"genres"`
	Artists     []stats.Entry `json:"artists"`
}

// Share is an entry's fraction of the total.
type Share struct {
	Name     string  `json:"name"`
	Plays    int64   `json:"plays"`
	Fraction float64 `json:"fraction"`
}

// Shares returns each entry's fraction of the summed plays, in input order.
func Shares(entries []stats.Entry) []Share {
	total := stats.Total(entries)
	out := make([]Share, len(entries))
	for i, e := range entries {
		out[i] = Share{Name: e.Name, Plays: e.Plays}
		if total > 0 {
			out[i].Fraction = float64(e.Plays) / float64(total)
		}
	}
	return out
}

// Word is a cloud label with its display weight.
type Word struct {
	Label  string  `json:"label"`
	Plays  int64   `json:"plays"`
	Weight float64 `json:"weight"`
}

// Cloud lays entries out bottom-up: the least played first, the most played
// last. Long names are cut and weights grow with the square root of plays.
func Cloud(entries []stats.Entry) []Word {
	out := make([]Word, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		out = append(out, Word{
			Label:  TruncateLabel(e.Name),
			Plays:  e.Plays,
			Weight: CloudScale * math.Sqrt(float64(e.Plays)),
		})
	}
	return out
}

// TruncateLabel cuts names of MaxLabelLength runes or more and marks the cut
// with an ellipsis.
func TruncateLabel(name string) string {
	r := []rune(name)
	if len(r) < MaxLabelLength {
		return name
	}
	return string(r[:MaxLabelLength-3]) + "..."
}

// WriteJSON writes s as indented JSON.
func WriteJSON(w io.Writer, s Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	return nil
}

// WriteText writes s as two aligned tables: genre shares and the artist cloud.
func WriteText(w io.Writer, s Summary) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Library: %s\n", s.Library)
	if s.Since != "" {
		until := s.Until
		if until == "" {
			until = "now"
		}
		fmt.Fprintf(&b, "Added:   %s .. %s\n", s.Since, until)
	}
	fmt.Fprintf(&b, "Tracks:  %d of %d\n\n", s.Tracks, s.TotalTracks)

	b.WriteString("=== Genres ===\n")
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, sh := range Shares(s.Genres) {
		// Legend labels are lower-cased.
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\t\n", strings.ToLower(sh.Name), sh.Plays, sh.Fraction*100)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	b.WriteString("\n=== Artists ===\n")
	tw = tabwriter.NewWriter(&b, 0, 0, 2, ' ', tabwriter.AlignRight)
	cloud := Cloud(s.Artists)
	// Print top-down so the heaviest label comes first.
	for i := len(cloud) - 1; i >= 0; i-- {
		word := cloud[i]
		fmt.Fprintf(tw, "%s\t%d\t%.1f\t\n", word.Label, word.Plays, word.Weight)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := io.WriteString(w, b.String())
	return err
}
