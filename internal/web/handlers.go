package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"musicstats/internal/config"
	"musicstats/internal/library"
	"musicstats/internal/pipeline"
	"musicstats/internal/report"
	"musicstats/internal/stats"
)

type TrackResponse struct {
	ID         int64         `json:"id"`
	Properties library.Track `json:"properties"`
}

// queryConfig applies since, until and top query parameters to the server
// defaults.
func (s *Server) queryConfig(q url.Values) (config.Config, error) {
	cfg := s.config
	if v := q.Get("since"); v != "" {
		cfg.Since = v
	}
	if v := q.Get("until"); v != "" {
		cfg.Until = v
	}
	if v := q.Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, errors.New("top must be a non-negative integer")
		}
		cfg.Top = n
	}
	if cfg.Until != "" && cfg.Since == "" {
		return cfg, errors.New("until requires since")
	}
	return cfg, nil
}

// summarize builds the summary for the request's query parameters.
func (s *Server) summarize(q url.Values) (*report.Summary, int, error) {
	cfg, err := s.queryConfig(q)
	if err != nil {
		return nil, http.StatusBadRequest, err
	}

	snap, err := s.store.Current()
	if err != nil {
		return nil, http.StatusServiceUnavailable, err
	}

	summary, err := pipeline.Summarize(snap.Library, cfg)
	if err != nil {
		if errors.Is(err, stats.ErrInvalidDate) {
			return nil, http.StatusBadRequest, err
		}
		return nil, http.StatusInternalServerError, err
	}
	summary.Library = s.store.Path()
	return summary, http.StatusOK, nil
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, status, err := s.summarize(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	s.writeJSON(w, summary)
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	s.handleEntries(w, r, func(sum *report.Summary) []stats.Entry { return sum.Genres })
}

func (s *Server) handleArtists(w http.ResponseWriter, r *http.Request) {
	s.handleEntries(w, r, func(sum *report.Summary) []stats.Entry { return sum.Artists })
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request, pick func(*report.Summary) []stats.Entry) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	summary, status, err := s.summarize(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), status)
		return
	}

	s.writeJSON(w, pick(summary))
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Extract track ID from path: /api/tracks/{id}
	raw := strings.TrimPrefix(r.URL.Path, "/api/tracks/")
	if raw == "" || strings.Contains(raw, "/") {
		http.Error(w, "Track ID required", http.StatusBadRequest)
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, "Track ID must be an integer", http.StatusBadRequest)
		return
	}

	snap, err := s.store.Current()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	track, ok := snap.Library.Get(id)
	if !ok {
		http.Error(w, "track not found", http.StatusNotFound)
		return
	}

	s.writeJSON(w, TrackResponse{ID: id, Properties: track})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("Failed to write JSON response: %v", err)
	}
}
