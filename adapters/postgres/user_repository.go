package postgres

import (
	"context"
	"database/sql"
	"errors"

	"worklens/domain/core"
	"worklens/models"
	"worklens/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, name, email, role, COALESCE(api_token, '') AS api_token, created_at`

// UserRepositoryImpl implements UserRepository for PostgreSQL.
type UserRepositoryImpl struct {
	db *sqlx.DB
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sqlx.DB) ports.UserRepository {
	return &UserRepositoryImpl{db: db}
}

// GetByID returns a user by id.
func (r *UserRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := sqlx.GetContext(ctx, querier(ctx, r.db), &user, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrUserNotFound
	}
	if err != nil {
		return nil, core.NewStorageError("get user", err)
	}
	return &user, nil
}

// GetByToken resolves a bearer token to its user.
func (r *UserRepositoryImpl) GetByToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, core.ErrUserNotFound
	}
	var user models.User
	err := sqlx.GetContext(ctx, querier(ctx, r.db), &user, `
		SELECT `+userColumns+` FROM users WHERE api_token = $1
	`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrUserNotFound
	}
	if err != nil {
		return nil, core.NewStorageError("get user by token", err)
	}
	return &user, nil
}

// List returns all users ordered by creation time.
func (r *UserRepositoryImpl) List(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	err := sqlx.SelectContext(ctx, querier(ctx, r.db), &users, `
		SELECT `+userColumns+` FROM users ORDER BY created_at
	`)
	if err != nil {
		return nil, core.NewStorageError("list users", err)
	}
	return users, nil
}
