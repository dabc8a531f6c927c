package app

import (
	"context"

	"lms-store-service/internal/domain"
)

// Store persists the aggregate blob (in-memory, file, Redis, Postgres).
// LoadAggregate reports ok=false when nothing has been persisted yet and
// returns an error only for unreadable bytes.
type Store interface {
	LoadAggregate(ctx context.Context) (domain.Aggregate, bool, error)
	SaveAggregate(ctx context.Context, agg domain.Aggregate) error
}

// SettingsStore persists the cloud settings record, independently of the
// aggregate.
type SettingsStore interface {
	LoadSettings(ctx context.Context) (domain.CloudSettings, bool, error)
	SaveSettings(ctx context.Context, settings domain.CloudSettings) error
}

// Replicator is the push/pull connector to the remote endpoint.
type Replicator interface {
	Push(ctx context.Context, url string, agg domain.Aggregate) error
	Pull(ctx context.Context, url string) (domain.Aggregate, error)
}

// Dispatcher schedules the fire-and-forget auto-push so tests can swap
// the goroutine for something observable.
type Dispatcher interface {
	Dispatch(task func())
}

// GoDispatcher runs each task on its own goroutine, never delaying the
// mutation that scheduled it.
type GoDispatcher struct{}

func (GoDispatcher) Dispatch(task func()) {
	go task()
}
