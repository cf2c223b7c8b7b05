package pipeline

import (
	"context"
	"fmt"

	"musicstats/internal/config"
	"musicstats/internal/enrich"
	"musicstats/internal/library"
	"musicstats/internal/logger"
	"musicstats/internal/report"
	"musicstats/internal/stats"
)

// Hooks lets the caller follow tag enrichment progress.
type Hooks struct {
	// OnEnrichStart is called with the number of tracks that will have their
	// file tags read.
	OnEnrichStart func(total int)
	OnProgress    func()
}

// Run reads the library, fills missing tags if enabled, filters by date and
// aggregates by genre and artist.
func Run(ctx context.Context, cfg config.Config, log *logger.Logger, hooks Hooks) (*report.Summary, error) {
	log.Debug("Reading library: %s", cfg.LibraryPath)
	lib, err := library.ReadFile(cfg.LibraryPath)
	if err != nil {
		return nil, err
	}
	log.Debug("Parsed %d tracks", lib.Len())

	if cfg.EnrichTags {
		lib, err = fillTags(ctx, lib, log, hooks)
		if err != nil {
			return nil, err
		}
	}

	return Summarize(lib, cfg)
}

// Summarize filters lib by the configured date range and aggregates it.
func Summarize(lib *library.Library, cfg config.Config) (*report.Summary, error) {
	summary := &report.Summary{
		Library:     cfg.LibraryPath,
		Since:       cfg.Since,
		Until:       cfg.Until,
		TotalTracks: lib.Len(),
	}

	selected := lib
	if cfg.Since != "" {
		var err error
		selected, err = stats.FilterByDate(lib, cfg.Since, cfg.Until)
		if err != nil {
			return nil, fmt.Errorf("failed to filter by date: %w", err)
		}
	}

	summary.Tracks = selected.Len()
	summary.Genres = stats.CollectGenreInfo(selected, cfg.Top)
	summary.Artists = stats.CollectArtistInfo(selected, cfg.Top)
	return summary, nil
}

func fillTags(ctx context.Context, lib *library.Library, log *logger.Logger, hooks Hooks) (*library.Library, error) {
	total := enrich.Candidates(lib)
	if total == 0 {
		log.Debug("No tracks need file tags")
		return lib, nil
	}

	log.Info("=== Reading tags for %d tracks ===", total)
	if hooks.OnEnrichStart != nil {
		hooks.OnEnrichStart(total)
	}

	out, st, err := enrich.Tags(ctx, lib, enrich.Options{OnProgress: hooks.OnProgress})
	if err != nil {
		return nil, err
	}

	if st.Failed > 0 {
		log.Warn("%d of %d files could not be read", st.Failed, st.Inspected)
	}
	log.Debug("Filled missing properties on %d tracks", st.Filled)
	return out, nil
}
