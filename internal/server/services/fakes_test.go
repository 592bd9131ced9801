package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/dmitrijs2005/usersvc/internal/dbx"
	"github.com/dmitrijs2005/usersvc/internal/server/events"
	"github.com/dmitrijs2005/usersvc/internal/server/models"
	"github.com/dmitrijs2005/usersvc/internal/server/repositories/users"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// memRepo mimics the table: serial ids and a unique email constraint.
type memRepo struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.User
	err    error
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[int64]models.User{}}
}

func (r *memRepo) emailTaken(email string, except int64) bool {
	for id, u := range r.rows {
		if u.Email == email && id != except {
			return true
		}
	}
	return false
}

func (r *memRepo) List(context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	out := []models.User{}
	for _, u := range r.rows {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRepo) Create(_ context.Context, in *models.UserInput) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if r.emailTaken(in.Email, 0) {
		return nil, common.ErrAlreadyExists
	}
	r.nextID++
	u := models.User{ID: r.nextID, Name: in.Name, Email: in.Email, Age: in.Age, Address: in.Address}
	r.rows[u.ID] = u
	return &u, nil
}

func (r *memRepo) Update(_ context.Context, id int64, in *models.UserInput) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	if _, ok := r.rows[id]; !ok {
		return nil, common.ErrorNotFound
	}
	if r.emailTaken(in.Email, id) {
		return nil, common.ErrAlreadyExists
	}
	u := models.User{ID: id, Name: in.Name, Email: in.Email, Age: in.Age, Address: in.Address}
	r.rows[id] = u
	return &u, nil
}

func (r *memRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.rows, id)
	return nil
}

type fakeManager struct {
	repo  users.Repository
	bound []dbx.DBTX
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeManager) Users(db dbx.DBTX) users.Repository {
	m.bound = append(m.bound, db)
	return m.repo
}

type fakeHandles struct {
	db    *sqlx.DB
	err   error
	calls int
}

func (f *fakeHandles) Get(context.Context) (*sqlx.DB, error) {
	f.calls++
	return f.db, f.err
}

func (f *fakeHandles) Current() *sqlx.DB { return f.db }

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newMockHandle(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return sqlx.NewDb(raw, "pgx"), mock
}
