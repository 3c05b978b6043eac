package postgres

import (
	"context"

	"worklens/domain/core"
	"worklens/models"
	"worklens/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ScreenshotRepositoryImpl implements ScreenshotRepository for PostgreSQL.
type ScreenshotRepositoryImpl struct {
	db *sqlx.DB
}

// NewScreenshotRepository creates a new PostgreSQL screenshot repository.
func NewScreenshotRepository(db *sqlx.DB) ports.ScreenshotRepository {
	return &ScreenshotRepositoryImpl{db: db}
}

// Insert appends a screenshot row.
func (r *ScreenshotRepositoryImpl) Insert(ctx context.Context, shot *models.Screenshot) error {
	if shot.ID == uuid.Nil {
		shot.ID = uuid.New()
	}
	_, err := querier(ctx, r.db).ExecContext(ctx, `
		INSERT INTO screenshots (id, user_id, activity_id, path, taken_at)
		VALUES ($1, $2, $3, $4, $5)
	`, shot.ID, shot.UserID, shot.ActivityID, shot.Path, shot.TakenAt)
	if err != nil {
		return core.NewStorageError("insert screenshot", err)
	}
	return nil
}

// ListByActivity returns screenshots attached to an interval, oldest first.
func (r *ScreenshotRepositoryImpl) ListByActivity(ctx context.Context, activityID uuid.UUID) ([]*models.Screenshot, error) {
	var shots []*models.Screenshot
	err := sqlx.SelectContext(ctx, querier(ctx, r.db), &shots, `
		SELECT id, user_id, activity_id, path, taken_at
		FROM screenshots
		WHERE activity_id = $1
		ORDER BY taken_at
	`, activityID)
	if err != nil {
		return nil, core.NewStorageError("list screenshots", err)
	}
	return shots, nil
}
