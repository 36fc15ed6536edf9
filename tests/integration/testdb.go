// Package integration runs the payment flows against real PostgreSQL and Redis
// containers started with testcontainers.
package integration

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jobboard/backend/internal/domain/account"
	"github.com/jobboard/backend/internal/infrastructure/auth"
	applogger "github.com/jobboard/backend/internal/infrastructure/logger"
	"github.com/jobboard/backend/internal/infrastructure/migration"
	"github.com/jobboard/backend/internal/infrastructure/persistence"
)

const startupTimeout = 60 * time.Second

// TestDB is a migrated PostgreSQL database in its own container
type TestDB struct {
	DB    *gorm.DB
	SqlDB *sql.DB
	DSN   string
	t     *testing.T
}

// NewTestDB starts PostgreSQL and applies the embedded migrations. The
// container is terminated when the test ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	tdb := newEmptyTestDB(t)
	m, err := migration.New(tdb.SqlDB, "", zap.NewNop())
	require.NoError(t, err, "Failed to create migrator")
	require.NoError(t, m.Up(), "Failed to run migrations")
	return tdb
}

// newEmptyTestDB starts PostgreSQL without touching the schema
func newEmptyTestDB(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("jobboard_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("admin123"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(startupTimeout)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// TEST_DB_DEBUG prints every statement through the test log
	level, base := gormlogger.Silent, zap.NewNop()
	if os.Getenv("TEST_DB_DEBUG") != "" {
		level, base = gormlogger.Info, zaptest.NewLogger(t)
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{
		Logger:         applogger.NewGormLogger(base, level),
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to connect to database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Room for concurrent callbacks contending on the same row
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	t.Cleanup(func() { _ = sqlDB.Close() })

	return &TestDB{DB: db, SqlDB: sqlDB, DSN: dsn, t: t}
}

// CreateTestAccount stores an employer account with the given password
func (tdb *TestDB) CreateTestAccount(email, password string) *account.Account {
	tdb.t.Helper()

	hash, err := auth.NewPasswordHasher(4).Hash(password)
	require.NoError(tdb.t, err)
	acc, err := account.NewAccount(email, "Employer "+uuid.NewString()[:8], hash, account.RoleEmployer)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, persistence.NewGormAccountRepository(tdb.DB).Create(context.Background(), acc))
	return acc
}

// Points reads an account's balance straight from the table
func (tdb *TestDB) Points(id uuid.UUID) int64 {
	tdb.t.Helper()
	var points int64
	require.NoError(tdb.t, tdb.DB.Raw("SELECT points FROM accounts WHERE id = ?", id).Scan(&points).Error)
	return points
}

// NewTestRedis starts a Redis container and returns a connected client
func NewTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(startupTimeout),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate redis container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(ctx).Err())
	return client
}
