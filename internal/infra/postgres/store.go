// Package postgres persists the two records as JSONB rows keyed by name.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"lms-store-service/internal/domain"
)

const (
	aggregateRecord = "aggregate"
	settingsRecord  = "settings"
)

// Store is a Postgres implementation of app.Store and app.SettingsStore.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) LoadAggregate(ctx context.Context) (domain.Aggregate, bool, error) {
	raw, ok, err := s.loadRecord(ctx, aggregateRecord)
	if err != nil || !ok {
		return domain.Aggregate{}, ok, err
	}
	var agg domain.Aggregate
	if err := json.Unmarshal(raw, &agg); err != nil {
		return domain.Aggregate{}, false, fmt.Errorf("decode aggregate: %w", err)
	}
	return agg, true, nil
}

func (s *Store) SaveAggregate(ctx context.Context, agg domain.Aggregate) error {
	return s.saveRecord(ctx, aggregateRecord, agg)
}

func (s *Store) LoadSettings(ctx context.Context) (domain.CloudSettings, bool, error) {
	raw, ok, err := s.loadRecord(ctx, settingsRecord)
	if err != nil || !ok {
		return domain.CloudSettings{}, ok, err
	}
	var settings domain.CloudSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return domain.CloudSettings{}, false, fmt.Errorf("decode settings: %w", err)
	}
	return settings, true, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings domain.CloudSettings) error {
	return s.saveRecord(ctx, settingsRecord, settings)
}

func (s *Store) loadRecord(ctx context.Context, key string) ([]byte, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM records WHERE key=$1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load record %s: %w", key, err)
	}
	return raw, true, nil
}

func (s *Store) saveRecord(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record %s: %w", key, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO records (key, data) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
		key, data)
	if err != nil {
		return fmt.Errorf("save record %s: %w", key, err)
	}
	return nil
}
