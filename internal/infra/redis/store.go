// Package redis keeps the aggregate and settings as two JSON string
// keys, for deployments where the service itself must stay stateless.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"lms-store-service/internal/domain"
)

const (
	aggregateKey = "lms:store:aggregate"
	settingsKey  = "lms:store:settings"
)

// Store is a Redis implementation of app.Store and app.SettingsStore.
// Records never expire; the store is the system of record, not a cache.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) LoadAggregate(ctx context.Context) (domain.Aggregate, bool, error) {
	raw, err := s.client.Get(ctx, aggregateKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Aggregate{}, false, nil
	}
	if err != nil {
		return domain.Aggregate{}, false, fmt.Errorf("get aggregate: %w", err)
	}
	var agg domain.Aggregate
	if err := json.Unmarshal(raw, &agg); err != nil {
		return domain.Aggregate{}, false, fmt.Errorf("decode aggregate: %w", err)
	}
	return agg, true, nil
}

func (s *Store) SaveAggregate(ctx context.Context, agg domain.Aggregate) error {
	data, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("encode aggregate: %w", err)
	}
	if err := s.client.Set(ctx, aggregateKey, data, 0).Err(); err != nil {
		return fmt.Errorf("set aggregate: %w", err)
	}
	return nil
}

func (s *Store) LoadSettings(ctx context.Context) (domain.CloudSettings, bool, error) {
	raw, err := s.client.Get(ctx, settingsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.CloudSettings{}, false, nil
	}
	if err != nil {
		return domain.CloudSettings{}, false, fmt.Errorf("get settings: %w", err)
	}
	var settings domain.CloudSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return domain.CloudSettings{}, false, fmt.Errorf("decode settings: %w", err)
	}
	return settings, true, nil
}

func (s *Store) SaveSettings(ctx context.Context, settings domain.CloudSettings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := s.client.Set(ctx, settingsKey, data, 0).Err(); err != nil {
		return fmt.Errorf("set settings: %w", err)
	}
	return nil
}
