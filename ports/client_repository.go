package ports

import (
	"context"

	"worklens/models"
)

// ClientRepository persists billable clients and resolves LLM-reported
// client names against them.
type ClientRepository interface {
	// Create adds a client with a unique name.
	Create(ctx context.Context, client *models.Client) error

	// List returns all clients ordered by name.
	List(ctx context.Context) ([]*models.Client, error)

	// Match resolves a reported name case-insensitively to a stored client
	// name, returning models.ClientNone when nothing matches.
	Match(ctx context.Context, reported string) (string, error)
}
