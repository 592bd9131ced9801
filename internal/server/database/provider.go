package database

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/usersvc/internal/logging"
	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/singleflight"
)

// ConnectFunc produces a verified handle.
type ConnectFunc func(ctx context.Context) (*sqlx.DB, error)

// Provider holds the single process-wide handle. It starts disconnected and
// becomes connected on the first successful Get; it never goes back.
type Provider struct {
	connect ConnectFunc
	logger  logging.Logger

	mu sync.RWMutex
	db *sqlx.DB

	group singleflight.Group
}

func NewProvider(connect ConnectFunc, l logging.Logger) *Provider {
	return &Provider{
		connect: connect,
		logger:  l.With("module", "database"),
	}
}

// Current returns the handle, or nil if no connection has been made yet.
// It never tries to connect.
func (p *Provider) Current() *sqlx.DB {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.db
}

// Get returns the handle, connecting first if there is none. Concurrent
// callers that find no handle share a single connection attempt.
func (p *Provider) Get(ctx context.Context) (*sqlx.DB, error) {
	if db := p.Current(); db != nil {
		return db, nil
	}

	v, err, _ := p.group.Do("connect", func() (any, error) {
		if db := p.Current(); db != nil {
			return db, nil
		}

		// the attempt is shared, so one caller going away must not abort it
		db, err := p.connect(context.WithoutCancel(ctx))
		if err != nil {
			p.logger.Error(ctx, "database connection failed", "error", err)
			return nil, err
		}

		p.mu.Lock()
		p.db = db
		p.mu.Unlock()

		p.logger.Info(ctx, "connected to PostgreSQL database")
		return db, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*sqlx.DB), nil
}

// Close releases the pool, if any.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
