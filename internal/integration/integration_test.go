package integration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"

	"lms-store-service/internal/app"
	"lms-store-service/internal/domain"
	pgstore "lms-store-service/internal/infra/postgres"
	pgmigrations "lms-store-service/internal/infra/postgres/migrations"
	redisstore "lms-store-service/internal/infra/redis"
)

func TestPostgresBackedStoreEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	dsn, cleanup := startPostgres(t, ctx)
	defer cleanup()

	applyMigrations(t, ctx, dsn)

	pool, err := pgxpool.Connect(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pg: %v", err)
	}
	defer pool.Close()

	store := pgstore.NewStore(pool)
	service := app.NewStoreService(store, store, noopRemote{}, app.GoDispatcher{}, zap.NewNop(), app.SettingsDefaults{})

	// Fresh database seeds itself and stays loginable.
	resp, err := service.Authenticate(ctx, "admin", "admin")
	if err != nil {
		t.Fatalf("seed admin login: %v", err)
	}
	if resp.User.Role != domain.RoleAdmin {
		t.Fatalf("unexpected role %s", resp.User.Role)
	}

	created, err := service.CreateUser(ctx, domain.User{Username: "alice", FullName: "Alice", Role: domain.RoleStudent})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := service.UpdateScore(ctx, created.ID, 5); err != nil {
		t.Fatalf("update score: %v", err)
	}

	lb := service.Leaderboard(ctx, 5)
	if len(lb.Entries) != 1 || lb.Entries[0].TotalScore != 5 {
		t.Fatalf("unexpected leaderboard: %+v", lb.Entries)
	}

	// A second service instance over the same pool sees the same rows.
	second := app.NewStoreService(store, store, noopRemote{}, app.GoDispatcher{}, zap.NewNop(), app.SettingsDefaults{})
	users := second.ListUsers(ctx, app.UserFilter{Role: domain.RoleStudent})
	if len(users) != 1 || users[0].TotalScore != 5 {
		t.Fatalf("state not durable across instances: %+v", users)
	}
}

func TestRedisBackedStoreEndToEnd(t *testing.T) {
	ctx := context.Background()
	requireDocker(t)

	url, cleanup := startRedis(t, ctx)
	defer cleanup()

	client, err := redisClientFromURL(url)
	if err != nil {
		t.Fatalf("redis client: %v", err)
	}
	defer client.Close()

	store := redisstore.NewStore(client)
	service := app.NewStoreService(store, store, noopRemote{}, app.GoDispatcher{}, zap.NewNop(), app.SettingsDefaults{})

	raw := []app.RawQuestion{{Type: "multiple_choice", Question: "Q?", Options: []string{"a", "b"}, Answer: []byte(`0`)}}
	if _, err := service.BulkImportQuestions(ctx, raw); err != nil {
		t.Fatalf("bulk import: %v", err)
	}

	questions := service.ListQuestions(ctx)
	if len(questions) != 1 || questions[0].Type != domain.TypeMCQ {
		t.Fatalf("unexpected questions: %+v", questions)
	}
}

type noopRemote struct{}

func (noopRemote) Push(context.Context, string, domain.Aggregate) error { return nil }
func (noopRemote) Pull(context.Context, string) (domain.Aggregate, error) {
	return domain.Aggregate{}, domain.ErrNoSyncURL
}

func applyMigrations(t *testing.T, ctx context.Context, dsn string) {
	t.Helper()
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	migrator := migrate.NewMigrator(db, pgmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("migrator init: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
}

func startPostgres(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "postgres:15-alpine",
		Env:          map[string]string{"POSTGRES_USER": "lms", "POSTGRES_PASSWORD": "lmspass", "POSTGRES_DB": "lmsdb"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp"),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start postgres: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		t.Fatalf("port: %v", err)
	}
	dsn := fmt.Sprintf("postgres://lms:lmspass@%s:%s/lmsdb?sslmode=disable", host, port.Port())
	return dsn, func() {
		_ = container.Terminate(ctx)
	}
}

func startRedis(t *testing.T, ctx context.Context) (string, func()) {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		if strings.Contains(err.Error(), "Cannot connect to the Docker daemon") {
			t.Skipf("docker not available: %v", err)
		}
		t.Fatalf("start redis: %v", err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("redis host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379/tcp")
	if err != nil {
		t.Fatalf("redis port: %v", err)
	}
	url := fmt.Sprintf("redis://%s:%s", host, port.Port())
	return url, func() {
		_ = container.Terminate(ctx)
	}
}

func redisClientFromURL(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}), nil
}

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := tc.NewDockerProvider(); err != nil {
		t.Skipf("docker not available: %v", err)
	}
}
