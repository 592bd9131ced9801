// Package users contains the PostgreSQL repository for the users table.
package users

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/dmitrijs2005/usersvc/internal/dbx"
	"github.com/dmitrijs2005/usersvc/internal/server/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	table      = "users"
	tracerName = "github.com/dmitrijs2005/usersvc/internal/server/repositories/users"
)

var (
	psql       = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	allColumns = []string{"id", "name", "email", "age", "address"}
	returning  = "RETURNING id, name, email, age, address"
)

type PostgresRepository struct {
	db     dbx.DBTX
	tracer trace.Tracer
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return newPostgresRepository(db, otel.GetTracerProvider())
}

func newPostgresRepository(db dbx.DBTX, tp trace.TracerProvider) *PostgresRepository {
	return &PostgresRepository{db: db, tracer: tp.Tracer(tracerName)}
}

// List returns every user ordered by id. An empty table yields an empty,
// non-nil slice.
func (r *PostgresRepository) List(ctx context.Context) (_ []models.User, err error) {
	ctx, end := r.span(ctx, "SELECT")
	defer func() { end(err) }()

	query, args, err := psql.Select(allColumns...).From(table).OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	users := []models.User{}
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, fmt.Errorf("db error: %w", classify(err))
	}

	return users, nil
}

func (r *PostgresRepository) Create(ctx context.Context, in *models.UserInput) (_ *models.User, err error) {
	ctx, end := r.span(ctx, "INSERT")
	defer func() { end(err) }()

	query, args, err := psql.Insert(table).
		Columns("name", "email", "age", "address").
		Values(in.Name, in.Email, in.Age, in.Address).
		Suffix(returning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	user := &models.User{}
	if err := r.db.GetContext(ctx, user, query, args...); err != nil {
		return nil, fmt.Errorf("db error: %w", classify(err))
	}

	return user, nil
}

// Update overwrites all mutable fields of user id. A missing row yields
// common.ErrorNotFound.
func (r *PostgresRepository) Update(ctx context.Context, id int64, in *models.UserInput) (_ *models.User, err error) {
	ctx, end := r.span(ctx, "UPDATE")
	defer func() { end(err) }()

	query, args, err := psql.Update(table).
		Set("name", in.Name).
		Set("email", in.Email).
		Set("age", in.Age).
		Set("address", in.Address).
		Where(sq.Eq{"id": id}).
		Suffix(returning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	user := &models.User{}
	if err := r.db.GetContext(ctx, user, query, args...); err != nil {
		return nil, fmt.Errorf("db error: %w", classify(err))
	}

	return user, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) (err error) {
	ctx, end := r.span(ctx, "DELETE")
	defer func() { end(err) }()

	query, args, err := psql.Delete(table).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", classify(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", classify(err))
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) span(ctx context.Context, op string) (context.Context, func(error)) {
	ctx, span := r.tracer.Start(ctx, "users."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", op),
			attribute.String("db.sql.table", table),
		),
	)

	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
