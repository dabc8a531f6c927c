// Package memory holds the aggregate and settings as JSON blobs in
// process memory. It backs tests and the zero-config demo mode.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"lms-store-service/internal/domain"
)

// Store is an in-memory implementation of app.Store and app.SettingsStore.
// Blobs are kept serialized so callers get the same deep-copy semantics
// as the durable backends.
type Store struct {
	mu        sync.RWMutex
	aggregate []byte
	settings  []byte
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) LoadAggregate(_ context.Context) (domain.Aggregate, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.aggregate == nil {
		return domain.Aggregate{}, false, nil
	}
	var agg domain.Aggregate
	if err := json.Unmarshal(s.aggregate, &agg); err != nil {
		return domain.Aggregate{}, false, fmt.Errorf("decode aggregate: %w", err)
	}
	return agg, true, nil
}

func (s *Store) SaveAggregate(_ context.Context, agg domain.Aggregate) error {
	data, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("encode aggregate: %w", err)
	}
	s.mu.Lock()
	s.aggregate = data
	s.mu.Unlock()
	return nil
}

func (s *Store) LoadSettings(_ context.Context) (domain.CloudSettings, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.settings == nil {
		return domain.CloudSettings{}, false, nil
	}
	var settings domain.CloudSettings
	if err := json.Unmarshal(s.settings, &settings); err != nil {
		return domain.CloudSettings{}, false, fmt.Errorf("decode settings: %w", err)
	}
	return settings, true, nil
}

func (s *Store) SaveSettings(_ context.Context, settings domain.CloudSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	s.mu.Lock()
	s.settings = data
	s.mu.Unlock()
	return nil
}

// Corrupt overwrites the stored aggregate bytes; test hook for the
// unreadable-state repair path.
func (s *Store) Corrupt(raw []byte) {
	s.mu.Lock()
	s.aggregate = raw
	s.mu.Unlock()
}
