// Package repository defines the closing-spread store interface and errors.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cameronntaylor/nba-watchability/pkg/logger"
	"github.com/cameronntaylor/nba-watchability/pkg/metrics"
)

const (
	fileMode = 0o644
	dirMode  = 0o755
)

// FileStore is a Store backed by a flat JSON file of game id to home
// spread. A missing or corrupt file loads as empty; losing locally frozen
// spreads is preferable to refusing to run.
type FileStore struct {
	path   string
	mu     sync.RWMutex
	state  map[string]float64
	dirty  bool
	logger logger.Logger
}

// NewFileStore loads the store at path.
func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{
		path:   path,
		state:  make(map[string]float64),
		logger: logger.Get().Named("spread-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load()
	return s
}

func (s *FileStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn(context.Background(), "closing spread file unreadable, starting empty",
				logger.String("path", s.path),
				logger.Error(err),
			)
		}
		return
	}
	var state map[string]float64
	if err := json.Unmarshal(data, &state); err != nil {
		s.logger.Warn(context.Background(), "closing spread file corrupt, starting empty",
			logger.String("path", s.path),
			logger.Error(err),
		)
		return
	}
	s.state = state
}

// Get returns the frozen home spread for a game id.
func (s *FileStore) Get(gameID string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state[gameID]
	return v, ok
}

// Put records the frozen home spread for a game id.
func (s *FileStore) Put(gameID string, homeSpread float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.state[gameID]; ok && v == homeSpread {
		return
	}
	s.state[gameID] = homeSpread
	s.dirty = true
}

// Prune drops every game id not present in active and returns the number of
// entries removed. Games leave the slate once they finish, so without pruning
// the file grows for the whole season.
func (s *FileStore) Prune(active map[string]struct{}) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id := range s.state {
		if _, ok := active[id]; !ok {
			delete(s.state, id)
			removed++
		}
	}
	if removed > 0 {
		s.dirty = true
	}
	return removed
}

// Len returns the number of games tracked.
func (s *FileStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.state)
}

// Flush rewrites the backing file from the in-memory state via a temp file
// and an atomic rename. A flush with no changes since the last one is a
// no-op.
func (s *FileStore) Flush() error {
	s.mu.RLock()
	if !s.dirty {
		s.mu.RUnlock()
		return nil
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	held := len(s.state)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFlushFailed, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("%w: %v", ErrFlushFailed, err)
	}
	tmp, err := os.CreateTemp(dir, ".spreads-*")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFlushFailed, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrFlushFailed, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrFlushFailed, err)
	}
	if err := os.Chmod(tmpName, fileMode); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrFlushFailed, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: %v", ErrFlushFailed, err)
	}

	s.mu.Lock()
	s.dirty = false
	s.mu.Unlock()

	metrics.RecordClosingSpreadWrite(held)
	return nil
}
