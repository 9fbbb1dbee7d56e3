// Package cliutil holds the connection plumbing shared by cmsctl subcommands.
package cliutil

import (
	"context"
	"errors"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	platformauth "github.com/carecrest/hospital-cms/platform/go/auth"
	platformlogging "github.com/carecrest/hospital-cms/platform/go/logging"
	"github.com/carecrest/hospital-cms/platform/go/persistence"
	"github.com/carecrest/hospital-cms/platform/go/requesttrace"
)

// Conn carries the database flags of a command.
type Conn struct {
	DatabaseURL string
	LogLevel    string
}

// Bind registers --database-url (defaulting to $DATABASE_URL) and --log-level on cmd.
func (c *Conn) Bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.DatabaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string (default $DATABASE_URL)")
	cmd.Flags().StringVar(&c.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
}

// Open builds the logger and pool. Callers close the pool with persistence.ClosePool.
func (c *Conn) Open(ctx context.Context) (*pgxpool.Pool, *zap.Logger, error) {
	if c.DatabaseURL == "" {
		return nil, nil, errors.New("--database-url or DATABASE_URL is required")
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{Component: "cmsctl", Level: c.LogLevel})
	if err != nil {
		return nil, nil, err
	}

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: c.DatabaseURL, MaxConns: 4})
	if err != nil {
		return nil, nil, err
	}
	return pool, logger, nil
}

// OperatorAudit identifies writes made from the CLI. It carries the admin role so the
// services treat it like a signed-in administrator.
func OperatorAudit() requesttrace.AuditInfo {
	id := "cmsctl"
	return requesttrace.AuditInfo{
		ActorKind: requesttrace.ActorKindUser,
		UserID:    &id,
		Roles:     []string{platformauth.RoleAdmin},
		RequestID: "cmsctl",
	}
}
