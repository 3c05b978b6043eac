package ports

import (
	"context"

	"worklens/models"

	"github.com/google/uuid"
)

// ScreenshotRepository persists append-only screenshot records.
type ScreenshotRepository interface {
	// Insert appends a screenshot row. Screenshots are never mutated.
	Insert(ctx context.Context, shot *models.Screenshot) error

	// ListByActivity returns screenshots attached to an interval, oldest first.
	ListByActivity(ctx context.Context, activityID uuid.UUID) ([]*models.Screenshot, error)
}
