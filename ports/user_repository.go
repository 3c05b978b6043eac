package ports

import (
	"context"

	"worklens/models"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user lookups. Registration and
// credential management live in the auth service, not here.
type UserRepository interface {
	// GetByID returns a user or ErrUserNotFound.
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// GetByToken resolves a bearer token to its user, or ErrUserNotFound.
	GetByToken(ctx context.Context, token string) (*models.User, error)

	// List returns all users ordered by creation time.
	List(ctx context.Context) ([]*models.User, error)
}
