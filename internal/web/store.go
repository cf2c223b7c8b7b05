package web

import (
	"fmt"
	"sync"
	"time"

	"musicstats/internal/library"
)

// Snapshot is one loaded version of the library.
type Snapshot struct {
	Library  *library.Library
	Version  int
	LoadedAt time.Time
}

// Store holds the current library and fans out reloads to subscribers
type Store struct {
	path      string
	mu        sync.RWMutex
	current   Snapshot
	listeners []chan Snapshot
}

// NewStore creates a store for the library file at path. Call Load before use.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the watched library file.
func (s *Store) Path() string {
	return s.path
}

// Load parses the library file and, on success, replaces the current
// snapshot and notifies subscribers. On failure the previous snapshot stays.
func (s *Store) Load() (Snapshot, error) {
	lib, err := library.ReadFile(s.path)
	if err != nil {
		return Snapshot{}, err
	}
	return s.Set(lib), nil
}

// Set installs lib as the current snapshot.
func (s *Store) Set(lib *library.Library) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Snapshot{
		Library:  lib,
		Version:  s.current.Version + 1,
		LoadedAt: time.Now(),
	}
	s.notifyListeners(s.current)
	return s.current
}

// Current returns the current snapshot.
func (s *Store) Current() (Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current.Library == nil {
		return Snapshot{}, fmt.Errorf("library not loaded: %s", s.path)
	}
	return s.current, nil
}

// Subscribe subscribes to reloads
func (s *Store) Subscribe() <-chan Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 4)
	s.listeners = append(s.listeners, ch)
	return ch
}

// Unsubscribe removes a listener
func (s *Store) Unsubscribe(ch <-chan Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, listener := range s.listeners {
		if listener == ch {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			close(listener)
			break
		}
	}
}

// notifyListeners sends the snapshot to every listener that has room.
// A listener with a full buffer skips this version.
func (s *Store) notifyListeners(snap Snapshot) {
	for _, ch := range s.listeners {
		select {
		case ch <- snap:
		default:
		}
	}
}
