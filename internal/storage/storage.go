// Package storage persists the small bits of state that survive between
// runs: the account snapshot used for sizing and the fills recorded against
// deterministic position IDs. Everything else is recomputed from the paste.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eddiefleurent/paper_tickets/internal/config"
)

const (
	accountFile = "account_state.yml"
	fillsFile   = "fills.yml"
)

// YAMLStore keeps account state and fills as two YAML files under a state
// directory. Writes go through a temp file and rename so a crash mid-write
// never corrupts state.
type YAMLStore struct {
	mu    sync.RWMutex
	dir   string
	fills map[string][]Fill
}

// NewYAMLStore opens (and if needed creates) the state directory and loads
// any recorded fills.
func NewYAMLStore(dir string) (*YAMLStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}
	s := &YAMLStore{dir: dir, fills: make(map[string][]Fill)}
	if err := s.loadFills(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *YAMLStore) accountPath() string { return filepath.Join(s.dir, accountFile) }
func (s *YAMLStore) fillsPath() string   { return filepath.Join(s.dir, fillsFile) }

// AccountState loads the persisted account snapshot. A missing file returns
// the baseline defaults; a corrupt file is an error, never silently ignored.
func (s *YAMLStore) AccountState() (config.AccountState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return config.LoadAccountState(s.accountPath())
}

// SaveAccountState writes the snapshot back.
func (s *YAMLStore) SaveAccountState(state config.AccountState) error {
	if err := state.Validate(); err != nil {
		return fmt.Errorf("invalid account state: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeYAML(s.accountPath(), &state)
}

// RecordFill appends one execution for a position and persists immediately.
func (s *YAMLStore) RecordFill(positionID string, price float64, at time.Time) error {
	if positionID == "" {
		return fmt.Errorf("position ID must not be empty")
	}
	if price <= 0 {
		return fmt.Errorf("fill price must be positive, got %.4f", price)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fills[positionID] = append(s.fills[positionID], Fill{Price: price, At: at.UTC()})
	return s.writeYAML(s.fillsPath(), s.fills)
}

// Fills returns all recorded fills for a position, oldest first.
func (s *YAMLStore) Fills(positionID string) []Fill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fills := s.fills[positionID]
	out := make([]Fill, len(fills))
	copy(out, fills)
	return out
}

// LatestFill returns the most recent fill, or nil when none is recorded.
func (s *YAMLStore) LatestFill(positionID string) *Fill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fills := s.fills[positionID]
	if len(fills) == 0 {
		return nil
	}
	latest := fills[0]
	for _, f := range fills[1:] {
		if f.At.After(latest.At) {
			latest = f
		}
	}
	return &latest
}

// PositionIDs returns the IDs with at least one recorded fill, sorted.
func (s *YAMLStore) PositionIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.fills))
	for id := range s.fills {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *YAMLStore) loadFills() error {
	data, err := os.ReadFile(s.fillsPath()) // #nosec G304 - path is store-controlled
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read fills: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.fills); err != nil {
		return fmt.Errorf("failed to parse fills: %w", err)
	}
	if s.fills == nil {
		s.fills = make(map[string][]Fill)
	}
	return nil
}

// writeYAML marshals v and swaps it into place atomically.
func (s *YAMLStore) writeYAML(path string, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}
