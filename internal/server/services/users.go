// Package services holds the business rules of the users API: input
// validation, handle acquisition, repository calls and change events.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/dmitrijs2005/usersvc/internal/logging"
	"github.com/dmitrijs2005/usersvc/internal/server/events"
	"github.com/dmitrijs2005/usersvc/internal/server/models"
	"github.com/dmitrijs2005/usersvc/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/usersvc/internal/server/repositories/users"
	"github.com/jmoiron/sqlx"
)

// HandleProvider hands out the shared database handle, connecting if needed.
type HandleProvider interface {
	Get(ctx context.Context) (*sqlx.DB, error)
}

type UserService struct {
	handles     HandleProvider
	repomanager repomanager.RepositoryManager
	publisher   events.Publisher
	logger      logging.Logger
	now         func() time.Time
}

func NewUserService(h HandleProvider, m repomanager.RepositoryManager, p events.Publisher, l logging.Logger) *UserService {
	if p == nil {
		p = events.NopPublisher{}
	}
	return &UserService{
		handles:     h,
		repomanager: m,
		publisher:   p,
		logger:      l.With("module", "user_service"),
		now:         time.Now,
	}
}

// validate checks presence of the required fields only.
func validate(in *models.UserInput) error {
	if in == nil || in.Name == "" || in.Email == "" {
		return fmt.Errorf("%w: name and email are required", common.ErrValidation)
	}
	return nil
}

func (s *UserService) repo(ctx context.Context) (users.Repository, error) {
	db, err := s.handles.Get(ctx)
	if err != nil {
		if errors.Is(err, common.ErrConnection) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrConnection, err)
	}
	return s.repomanager.Users(db), nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}

	list, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %w", err)
	}
	return list, nil
}

func (s *UserService) Create(ctx context.Context, in *models.UserInput) (*models.User, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}

	user, err := repo.Create(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.publish(ctx, events.Event{Type: events.UserCreated, UserID: user.ID, User: user})
	return user, nil
}

// Update replaces name, email, age and address of user id in one statement.
func (s *UserService) Update(ctx context.Context, id int64, in *models.UserInput) (*models.User, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	repo, err := s.repo(ctx)
	if err != nil {
		return nil, err
	}

	user, err := repo.Update(ctx, id, in)
	if err != nil {
		return nil, fmt.Errorf("error updating user %d: %w", id, err)
	}

	s.publish(ctx, events.Event{Type: events.UserUpdated, UserID: user.ID, User: user})
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	repo, err := s.repo(ctx)
	if err != nil {
		return err
	}

	if err := repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting user %d: %w", id, err)
	}

	s.publish(ctx, events.Event{Type: events.UserDeleted, UserID: id})
	return nil
}

func (s *UserService) publish(ctx context.Context, ev events.Event) {
	ev.OccurredAt = s.now().UTC()
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn(ctx, "event publish failed", "type", ev.Type, "user_id", ev.UserID, "error", err)
	}
}
