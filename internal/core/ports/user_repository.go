package ports

import (
	"context"

	"github.com/inkpress/production-system/internal/core/domain"
)

// UserRepository defines the interface to the credential store.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
