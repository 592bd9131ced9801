// Package database owns the connection to PostgreSQL: building the DSN,
// opening and verifying a pool, sharing one handle across the process and
// bringing the schema up in the background at startup.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/dmitrijs2005/usersvc/internal/server/config"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const (
	driverName  = "pgx"
	verifyQuery = "SELECT NOW()"
)

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// DSN returns the connection URL for cfg. A configured DatabaseDSN is used
// as is; otherwise it is assembled from the DB* fields.
func DSN(cfg *config.Config) string {
	if cfg.DatabaseDSN != "" {
		return cfg.DatabaseDSN
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(cfg.DBHost, strconv.Itoa(cfg.DBPort)),
		Path:   "/" + cfg.DBName,
	}
	switch {
	case cfg.DBUser != "" && cfg.DBPassword != "":
		u.User = url.UserPassword(cfg.DBUser, cfg.DBPassword)
	case cfg.DBUser != "":
		u.User = url.User(cfg.DBUser)
	case cfg.DBPassword != "":
		// the driver falls back to its default user name
		u.User = url.UserPassword("", cfg.DBPassword)
	}
	if cfg.DBSSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {cfg.DBSSLMode}}.Encode()
	}
	return u.String()
}

// Connect opens a pool for dsn and verifies it with a trivial statement.
// Any failure is reported as common.ErrConnection; retrying is up to the caller.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	raw, err := sqlOpen(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", common.ErrConnection, err)
	}

	db := sqlx.NewDb(raw, driverName)
	if _, err := db.ExecContext(ctx, verifyQuery); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrConnection, err)
	}

	return db, nil
}
