package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/dmitrijs2005/usersvc/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	base := func() *config.Config {
		c := &config.Config{}
		c.LoadDefaults()
		return c
	}

	tests := []struct {
		name   string
		mutate func(c *config.Config)
		want   string
	}{
		{
			name: "full credentials",
			mutate: func(c *config.Config) {
				c.DBHost, c.DBName, c.DBUser, c.DBPassword = "db", "app", "u", "p@ss"
			},
			want: "postgres://u:p%40ss@db:5432/app?sslmode=disable",
		},
		{
			name:   "user without password",
			mutate: func(c *config.Config) { c.DBUser, c.DBName = "u", "app" },
			want:   "postgres://u@localhost:5432/app?sslmode=disable",
		},
		{
			name:   "password without user",
			mutate: func(c *config.Config) { c.DBPassword, c.DBName = "pw", "app" },
			want:   "postgres://:pw@localhost:5432/app?sslmode=disable",
		},
		{
			name:   "no user, custom port, no sslmode",
			mutate: func(c *config.Config) { c.DBPort, c.DBName, c.DBSSLMode = 6432, "app", "" },
			want:   "postgres://localhost:6432/app",
		},
		{
			name:   "explicit dsn wins",
			mutate: func(c *config.Config) { c.DatabaseDSN, c.DBHost = "postgres://x/y", "ignored" },
			want:   "postgres://x/y",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			assert.Equal(t, tt.want, DSN(c))
		})
	}
}

func withMockOpen(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)

	orig := sqlOpen
	sqlOpen = func(driver, dsn string) (*sql.DB, error) {
		if driver != "pgx" {
			return nil, errors.New("unexpected driver " + driver)
		}
		return raw, nil
	}
	t.Cleanup(func() { sqlOpen = orig })

	return mock
}

func TestConnect_Success(t *testing.T) {
	mock := withMockOpen(t)
	mock.ExpectExec(`SELECT NOW\(\)`).WillReturnResult(sqlmock.NewResult(0, 1))

	db, err := Connect(context.Background(), "postgres://u@h/db")
	require.NoError(t, err)
	require.NotNil(t, db)
	assert.Equal(t, "pgx", db.DriverName())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConnect_VerifyFails(t *testing.T) {
	mock := withMockOpen(t)
	cause := errors.New("password authentication failed")
	mock.ExpectExec(`SELECT NOW\(\)`).WillReturnError(cause)
	mock.ExpectClose()

	db, err := Connect(context.Background(), "postgres://u@h/db")
	require.Nil(t, db)
	assert.ErrorIs(t, err, common.ErrConnection)
	assert.ErrorIs(t, err, cause)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConnect_OpenFails(t *testing.T) {
	orig := sqlOpen
	sqlOpen = func(string, string) (*sql.DB, error) { return nil, errors.New("bad dsn") }
	t.Cleanup(func() { sqlOpen = orig })

	_, err := Connect(context.Background(), "::")
	assert.ErrorIs(t, err, common.ErrConnection)
	assert.Contains(t, err.Error(), "bad dsn")
}
