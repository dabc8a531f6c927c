// Package file persists the aggregate and settings as two JSON files in
// one directory, the Go stand-in for the browser's local storage.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/singleflight"

	"lms-store-service/internal/domain"
)

const (
	aggregateFile = "db.json"
	settingsFile  = "settings.json"
)

// Store reads and writes the two records under dir. Writes go through a
// temp file and rename so a crash never leaves a half-written blob.
// Concurrent loads of the same record are coalesced.
type Store struct {
	dir string
	sf  singleflight.Group
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) LoadAggregate(_ context.Context) (domain.Aggregate, bool, error) {
	result, err, _ := s.sf.Do(aggregateFile, func() (interface{}, error) {
		raw, err := os.ReadFile(filepath.Join(s.dir, aggregateFile))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, fmt.Errorf("read aggregate: %w", err)
		}
		var agg domain.Aggregate
		if err := json.Unmarshal(raw, &agg); err != nil {
			return nil, fmt.Errorf("decode aggregate: %w", err)
		}
		return agg, nil
	})
	if err != nil {
		return domain.Aggregate{}, false, err
	}
	if result == nil {
		return domain.Aggregate{}, false, nil
	}
	return result.(domain.Aggregate), true, nil
}

func (s *Store) SaveAggregate(_ context.Context, agg domain.Aggregate) error {
	return s.writeJSON(aggregateFile, agg)
}

func (s *Store) LoadSettings(_ context.Context) (domain.CloudSettings, bool, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, settingsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return domain.CloudSettings{}, false, nil
		}
		return domain.CloudSettings{}, false, fmt.Errorf("read settings: %w", err)
	}
	var settings domain.CloudSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return domain.CloudSettings{}, false, fmt.Errorf("decode settings: %w", err)
	}
	return settings, true, nil
}

func (s *Store) SaveSettings(_ context.Context, settings domain.CloudSettings) error {
	return s.writeJSON(settingsFile, settings)
}

func (s *Store) writeJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	target := filepath.Join(s.dir, name)
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
