package persistence

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	sqlassets "github.com/carecrest/hospital-cms/database"
)

// MigrationsTable records applied goose versions.
const MigrationsTable = "cms_schema_migrations"

// goose keeps its configuration in package globals.
var gooseMu sync.Mutex

// Migrate applies every pending embedded migration. The database/sql handle shares the
// pool's connections and is deliberately not closed.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) error {
	if pool == nil {
		return fmt.Errorf("pool is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	db := stdlib.OpenDBFromPool(pool)

	goose.SetBaseFS(sqlassets.Migrations)
	goose.SetLogger(gooseLogger{logger: logger.Sugar().Named("goose")})
	goose.SetTableName(MigrationsTable)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, sqlassets.MigrationsDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// MigrationVersion reports the latest applied schema version.
func MigrationVersion(ctx context.Context, pool *pgxpool.Pool) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	db := stdlib.OpenDBFromPool(pool)
	goose.SetTableName(MigrationsTable)
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("set goose dialect: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	return version, nil
}

type gooseLogger struct {
	logger *zap.SugaredLogger
}

func (g gooseLogger) Printf(format string, args ...any) {
	g.logger.Infof(format, args...)
}

// Fatalf logs only; goose still returns the error to the caller.
func (g gooseLogger) Fatalf(format string, args ...any) {
	g.logger.Errorf(format, args...)
}
