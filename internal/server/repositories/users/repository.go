package users

import (
	"context"

	"github.com/dmitrijs2005/usersvc/internal/server/models"
)

// Repository persists users. Errors are always from the common taxonomy:
// common.ErrorNotFound, common.ErrAlreadyExists or *common.StoreError.
type Repository interface {
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, in *models.UserInput) (*models.User, error)
	Update(ctx context.Context, id int64, in *models.UserInput) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}
