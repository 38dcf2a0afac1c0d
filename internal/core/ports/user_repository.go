package ports

import (
	"context"

	"github.com/jobtracker/jobtracker-api/internal/core/domain"
)

// UserRepository persists accounts. Create must enforce username uniqueness
// and return domain.ErrUserExists on conflict.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	SetActive(ctx context.Context, id int64, active bool) error
	// Delete removes the user together with every application they own.
	Delete(ctx context.Context, id int64) error
}
