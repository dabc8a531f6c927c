package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"lms-store-service/internal/domain"
)

// SettingsDefaults backs the settings record before anything has been
// saved: a built-in endpoint with auto-push switched on.
type SettingsDefaults struct {
	SheetURL string
	Enabled  bool
}

// StoreService owns the aggregate. Every operation repairs on read and
// mutates under one mutex, and every successful persist fires an
// unawaited best-effort push to the remote endpoint.
type StoreService struct {
	mu         sync.Mutex
	store      Store
	settings   SettingsStore
	remote     Replicator
	dispatcher Dispatcher
	logger     *zap.Logger
	defaults   SettingsDefaults

	now   func() time.Time
	newID func(prefix string) string
	rnd   *rand.Rand

	subMu       sync.Mutex
	subscribers map[chan domain.Leaderboard]struct{}
}

// Option tweaks service internals, mainly for deterministic tests.
type Option func(*StoreService)

// WithClock fixes the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *StoreService) { s.now = now }
}

// WithIDGenerator replaces the uuid-based id generator.
func WithIDGenerator(gen func(prefix string) string) Option {
	return func(s *StoreService) { s.newID = gen }
}

// WithRand seeds the shuffle used by random draws.
func WithRand(rnd *rand.Rand) Option {
	return func(s *StoreService) { s.rnd = rnd }
}

func NewStoreService(store Store, settings SettingsStore, remote Replicator, dispatcher Dispatcher, logger *zap.Logger, defaults SettingsDefaults, opts ...Option) *StoreService {
	s := &StoreService{
		store:       store,
		settings:    settings,
		remote:      remote,
		dispatcher:  dispatcher,
		logger:      logger,
		defaults:    defaults,
		now:         time.Now,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
	s.newID = func(prefix string) string { return prefix + uuid.NewString() }
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// loadRepaired reads the aggregate and heals it: a missing record or
// unreadable bytes become the full seed, a record missing a collection
// gets exactly that collection injected. The repaired form is persisted
// directly, without triggering an auto-push.
func (s *StoreService) loadRepaired(ctx context.Context) domain.Aggregate {
	agg, ok, err := s.store.LoadAggregate(ctx)
	if err != nil {
		s.logger.Error("store unreadable, reseeding", zap.Error(err))
		agg = SeedAggregate(s.now())
		s.saveQuiet(ctx, agg)
		return agg
	}
	if !ok {
		agg = SeedAggregate(s.now())
		s.saveQuiet(ctx, agg)
		return agg
	}

	repaired := false
	if agg.Users == nil {
		agg.Users = seedUsers(s.now())
		repaired = true
	}
	if agg.Questions == nil {
		agg.Questions = seedQuestions(s.now())
		repaired = true
	}
	if agg.Lessons == nil {
		agg.Lessons = []domain.Lesson{}
		repaired = true
	}
	if repaired {
		s.saveQuiet(ctx, agg)
	}
	return agg
}

func (s *StoreService) saveQuiet(ctx context.Context, agg domain.Aggregate) {
	if err := s.store.SaveAggregate(ctx, agg); err != nil {
		s.logger.Error("failed to persist repaired aggregate", zap.Error(err))
	}
}

// persist is the mutation gateway: save the blob, notify leaderboard
// subscribers, then schedule the auto-push. A failing push never reaches
// the caller of the mutation that scheduled it.
func (s *StoreService) persist(ctx context.Context, agg domain.Aggregate) error {
	if err := s.store.SaveAggregate(ctx, agg); err != nil {
		return err
	}
	s.broadcast(rankStudents(agg.Users, broadcastLimit, s.now()))

	settings := s.currentSettings(ctx)
	if settings.SheetURL == "" || !settings.IsEnabled {
		return nil
	}
	url := settings.SheetURL
	s.dispatcher.Dispatch(func() {
		if err := s.remote.Push(context.Background(), url, agg); err != nil {
			s.logger.Warn("auto push failed", zap.Error(err))
			return
		}
		s.logger.Debug("auto push dispatched", zap.String("url", url))
	})
	return nil
}

func (s *StoreService) currentSettings(ctx context.Context) domain.CloudSettings {
	settings, ok, err := s.settings.LoadSettings(ctx)
	if err != nil {
		s.logger.Error("settings unreadable, using defaults", zap.Error(err))
		ok = false
	}
	if !ok {
		return domain.CloudSettings{SheetURL: s.defaults.SheetURL, IsEnabled: s.defaults.Enabled}
	}
	return settings
}

// Settings returns the persisted cloud settings or the built-in default.
func (s *StoreService) Settings(ctx context.Context) domain.CloudSettings {
	return s.currentSettings(ctx)
}

// SaveSettings overwrites the settings record unconditionally. URL
// validity is not checked here; a bad URL surfaces when sync uses it.
func (s *StoreService) SaveSettings(ctx context.Context, settings domain.CloudSettings) error {
	return s.settings.SaveSettings(ctx, settings)
}

// SyncNow pushes the aggregate and, once the push went out, stamps
// lastSynced. This is the awaited, user-initiated variant.
func (s *StoreService) SyncNow(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.currentSettings(ctx)
	if settings.SheetURL == "" {
		return domain.ErrNoSyncURL
	}

	agg := s.loadRepaired(ctx)
	if err := s.remote.Push(ctx, settings.SheetURL, agg); err != nil {
		return err
	}

	settings.LastSynced = s.now().Format(time.RFC3339)
	if err := s.settings.SaveSettings(ctx, settings); err != nil {
		return err
	}
	return nil
}

// ImportFromRemote replaces the whole local aggregate with the remote
// copy. No merge. Any failure, including a missing URL, reports false.
func (s *StoreService) ImportFromRemote(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := s.currentSettings(ctx)
	if settings.SheetURL == "" {
		return false
	}

	agg, err := s.remote.Pull(ctx, settings.SheetURL)
	if err != nil {
		s.logger.Warn("cloud import failed", zap.Error(err))
		return false
	}

	// Verbatim overwrite; the next load repairs any collection the
	// remote copy lacks.
	if err := s.store.SaveAggregate(ctx, agg); err != nil {
		s.logger.Error("failed to store imported aggregate", zap.Error(err))
		return false
	}
	s.broadcast(rankStudents(agg.Users, broadcastLimit, s.now()))
	return true
}
