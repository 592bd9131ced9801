package httpapi

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/dmitrijs2005/usersvc/internal/server/models"
)

// memUsers behaves like the service over an empty table.
type memUsers struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]models.User
	err    error
}

func newMemUsers() *memUsers {
	return &memUsers{rows: map[int64]models.User{}}
}

func (m *memUsers) check(in *models.UserInput, except int64) error {
	if in.Name == "" || in.Email == "" {
		return common.ErrValidation
	}
	for id, u := range m.rows {
		if u.Email == in.Email && id != except {
			return common.ErrAlreadyExists
		}
	}
	return nil
}

func (m *memUsers) List(context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []models.User
	for _, u := range m.rows {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) Create(_ context.Context, in *models.UserInput) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if err := m.check(in, 0); err != nil {
		return nil, err
	}
	m.nextID++
	u := models.User{ID: m.nextID, Name: in.Name, Email: in.Email, Age: in.Age, Address: in.Address}
	m.rows[u.ID] = u
	return &u, nil
}

func (m *memUsers) Update(_ context.Context, id int64, in *models.UserInput) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if err := m.check(in, id); err != nil {
		return nil, err
	}
	if _, ok := m.rows[id]; !ok {
		return nil, common.ErrorNotFound
	}
	u := models.User{ID: id, Name: in.Name, Email: in.Email, Age: in.Age, Address: in.Address}
	m.rows[id] = u
	return &u, nil
}

func (m *memUsers) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(m.rows, id)
	return nil
}

type fakeHealth struct {
	status models.HealthStatus
}

func (f *fakeHealth) Check(context.Context) models.HealthStatus { return f.status }
