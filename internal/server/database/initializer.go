package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/usersvc/internal/logging"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/dmitrijs2005/usersvc/internal/server/database"

// Migrator brings the schema up to date. It must be idempotent.
type Migrator func(ctx context.Context, db *sql.DB) error

// AttemptHook observes every initialization attempt; err is nil on success.
type AttemptHook func(attempt uint64, err error)

// RetryPolicy describes the backoff between initialization attempts:
// exponential from Base, never longer than Cap, at most MaxAttempts
// attempts in total (0 means keep trying).
type RetryPolicy struct {
	Base        time.Duration
	Cap         time.Duration
	MaxAttempts uint64
}

func (p RetryPolicy) backoff() retry.Backoff {
	base := p.Base
	if base <= 0 {
		base = 5 * time.Second
	}

	b := retry.NewExponential(base)
	if p.Cap > 0 {
		b = retry.WithCappedDuration(p.Cap, b)
	}
	if p.MaxAttempts > 0 {
		b = retry.WithMaxRetries(p.MaxAttempts-1, b)
	}
	return b
}

// Initializer connects through the Provider and applies migrations, retrying
// until it succeeds, the policy gives up or ctx is cancelled.
type Initializer struct {
	provider *Provider
	migrate  Migrator
	policy   RetryPolicy
	logger   logging.Logger
	hook     AttemptHook
	attempts metric.Int64Counter
}

// AttemptsMetric counts initialization attempts by "outcome" (success, failure).
const AttemptsMetric = "usersvc.db.init.attempts"

func newAttemptCounter(mp metric.MeterProvider) metric.Int64Counter {
	counter, _ := mp.Meter(meterName).Int64Counter(AttemptsMetric,
		metric.WithDescription("Database initialization attempts"),
		metric.WithUnit("{attempt}"),
	)
	return counter
}

func NewInitializer(p *Provider, m Migrator, policy RetryPolicy, l logging.Logger) *Initializer {
	return &Initializer{
		provider: p,
		migrate:  m,
		policy:   policy,
		logger:   l.With("module", "db_init"),
		attempts: newAttemptCounter(otel.GetMeterProvider()),
	}
}

// OnAttempt registers a hook called after every attempt.
func (i *Initializer) OnAttempt(h AttemptHook) {
	i.hook = h
}

// Run blocks until initialization succeeds or is abandoned.
func (i *Initializer) Run(ctx context.Context) error {
	var attempt uint64

	err := retry.Do(ctx, i.policy.backoff(), func(ctx context.Context) error {
		attempt++
		err := i.once(ctx)
		i.report(ctx, attempt, err)
		return retry.RetryableError(err)
	})
	if err != nil {
		return fmt.Errorf("database initialization abandoned after %d attempts: %w", attempt, err)
	}
	return nil
}

func (i *Initializer) once(ctx context.Context) error {
	db, err := i.provider.Get(ctx)
	if err != nil {
		return err
	}
	if err := i.migrate(ctx, db.DB); err != nil {
		return fmt.Errorf("schema creation: %w", err)
	}
	return nil
}

func (i *Initializer) report(ctx context.Context, attempt uint64, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
		i.logger.Warn(ctx, "database initialization attempt failed", "attempt", attempt, "error", err)
	} else {
		i.logger.Info(ctx, "database initialized successfully", "attempt", attempt)
	}

	if i.attempts != nil {
		i.attempts.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
	if i.hook != nil {
		i.hook(attempt, err)
	}
}
