package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"worklens/domain/core"
	"worklens/models"
	"worklens/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ClientRepositoryImpl implements ClientRepository for PostgreSQL.
type ClientRepositoryImpl struct {
	db *sqlx.DB
}

// NewClientRepository creates a new PostgreSQL client repository.
func NewClientRepository(db *sqlx.DB) ports.ClientRepository {
	return &ClientRepositoryImpl{db: db}
}

// Create adds a client with a unique name.
func (r *ClientRepositoryImpl) Create(ctx context.Context, client *models.Client) error {
	if client.ID == uuid.Nil {
		client.ID = uuid.New()
	}
	_, err := querier(ctx, r.db).ExecContext(ctx, `
		INSERT INTO clients (id, name, contact_email, created_at)
		VALUES ($1, $2, $3, NOW())
	`, client.ID, client.Name, client.ContactEmail)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: client %q already exists", core.ErrValidation, client.Name)
		}
		return core.NewStorageError("insert client", err)
	}
	return nil
}

// List returns all clients ordered by name.
func (r *ClientRepositoryImpl) List(ctx context.Context) ([]*models.Client, error) {
	var clients []*models.Client
	err := sqlx.SelectContext(ctx, querier(ctx, r.db), &clients, `
		SELECT id, name, COALESCE(contact_email, '') AS contact_email, created_at
		FROM clients
		ORDER BY name
	`)
	if err != nil {
		return nil, core.NewStorageError("list clients", err)
	}
	return clients, nil
}

// Match resolves a reported client name case-insensitively against the
// clients table. Unmatched or empty names resolve to the "None" sentinel.
func (r *ClientRepositoryImpl) Match(ctx context.Context, reported string) (string, error) {
	if strings.TrimSpace(reported) == "" {
		return models.ClientNone, nil
	}

	var name string
	err := sqlx.GetContext(ctx, querier(ctx, r.db), &name, `
		SELECT name FROM clients WHERE LOWER(name) = LOWER($1) LIMIT 1
	`, reported)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ClientNone, nil
	}
	if err != nil {
		return models.ClientNone, core.NewStorageError("match client", err)
	}
	return name, nil
}
