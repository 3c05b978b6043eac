package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"worklens/domain/core"
	"worklens/models"
	"worklens/ports"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const intervalColumns = `
	id, user_id, start_time, end_time, application, window_title,
	screenshot_path, extracted_text, ai_analysis, client_identified,
	category, productivity_score, status, entry_type,
	ROUND(CAST(EXTRACT(EPOCH FROM (COALESCE(end_time, NOW()) - start_time)) / 60.0 AS numeric), 2) AS duration_minutes,
	created_at`

// ActivityRepositoryImpl implements ActivityRepository for PostgreSQL.
type ActivityRepositoryImpl struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new PostgreSQL activity repository.
func NewActivityRepository(db *sqlx.DB) ports.ActivityRepository {
	return &ActivityRepositoryImpl{db: db}
}

// Insert persists a new interval.
func (r *ActivityRepositoryImpl) Insert(ctx context.Context, interval *models.ActivityInterval) error {
	if interval.ID == uuid.Nil {
		interval.ID = uuid.New()
	}
	_, err := querier(ctx, r.db).ExecContext(ctx, `
		INSERT INTO activities (id, user_id, start_time, end_time, application, window_title,
			screenshot_path, extracted_text, ai_analysis, client_identified,
			category, productivity_score, status, entry_type, duration_minutes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
	`, interval.ID, interval.UserID, interval.StartTime, interval.EndTime,
		interval.Application, interval.WindowTitle, interval.ScreenshotPath,
		interval.ExtractedText, interval.AIAnalysis, interval.ClientName,
		interval.Category, interval.Productivity, interval.Status,
		interval.EntryType, interval.DurationMinutes)
	if err != nil {
		return core.NewStorageError("insert interval", err)
	}
	return nil
}

// Update applies a partial write-back to an existing interval.
func (r *ActivityRepositoryImpl) Update(ctx context.Context, id uuid.UUID, update ports.IntervalUpdate) error {
	sets := make([]string, 0, 8)
	args := make([]interface{}, 0, 9)
	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.EndTime != nil {
		add("end_time", *update.EndTime)
	}
	if update.DurationMinutes != nil {
		add("duration_minutes", *update.DurationMinutes)
	}
	if update.ScreenshotPath != nil {
		add("screenshot_path", *update.ScreenshotPath)
	}
	if update.ExtractedText != nil {
		add("extracted_text", *update.ExtractedText)
	}
	if update.AIAnalysis != nil {
		add("ai_analysis", *update.AIAnalysis)
	}
	if update.ClientName != nil {
		add("client_identified", *update.ClientName)
	}
	if update.Category != nil {
		add("category", *update.Category)
	}
	if update.Productivity != nil {
		add("productivity_score", *update.Productivity)
	}
	if update.Status != nil {
		add("status", *update.Status)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE activities SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	res, err := querier(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return core.NewStorageError("update interval", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.ErrIntervalNotFound
	}
	return nil
}

// FindLastForUser returns the most recently started interval for the user.
func (r *ActivityRepositoryImpl) FindLastForUser(ctx context.Context, userID uuid.UUID) (*models.ActivityInterval, error) {
	var interval models.ActivityInterval
	err := sqlx.GetContext(ctx, querier(ctx, r.db), &interval, `
		SELECT `+intervalColumns+`
		FROM activities
		WHERE user_id = $1
		ORDER BY start_time DESC
		LIMIT 1
	`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrIntervalNotFound
	}
	if err != nil {
		return nil, core.NewStorageError("find last interval", err)
	}
	return &interval, nil
}

// FindOverlapping returns an interval overlapping [start, end) for the user.
// Open intervals are treated as running until NOW() for the comparison.
func (r *ActivityRepositoryImpl) FindOverlapping(ctx context.Context, userID uuid.UUID, start, end time.Time) (*models.ActivityInterval, error) {
	var interval models.ActivityInterval
	err := sqlx.GetContext(ctx, querier(ctx, r.db), &interval, `
		SELECT `+intervalColumns+`
		FROM activities
		WHERE user_id = $1
		  AND (
		        (start_time <= $2 AND COALESCE(end_time, NOW()) > $2) OR
		        (start_time <  $3 AND COALESCE(end_time, NOW()) >= $3) OR
		        (start_time >= $2 AND COALESCE(end_time, NOW()) <= $3)
		      )
		ORDER BY start_time
		LIMIT 1
	`, userID, start, end)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrIntervalNotFound
	}
	if err != nil {
		return nil, core.NewStorageError("find overlapping interval", err)
	}
	return &interval, nil
}

// ListByUserAndDate returns all intervals starting on a calendar date.
func (r *ActivityRepositoryImpl) ListByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]*models.ActivityInterval, error) {
	return r.list(ctx, `
		SELECT `+intervalColumns+`
		FROM activities
		WHERE user_id = $1 AND DATE(start_time) = DATE($2)
		ORDER BY start_time
	`, userID, date)
}

// ListByUser returns all intervals for a user, most recent first.
func (r *ActivityRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.ActivityInterval, error) {
	return r.list(ctx, `
		SELECT `+intervalColumns+`
		FROM activities
		WHERE user_id = $1
		ORDER BY start_time DESC
	`, userID)
}

// ListByUserAndRange returns intervals starting in [start, end).
func (r *ActivityRepositoryImpl) ListByUserAndRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*models.ActivityInterval, error) {
	return r.list(ctx, `
		SELECT `+intervalColumns+`
		FROM activities
		WHERE user_id = $1 AND start_time >= $2 AND start_time < $3
		ORDER BY start_time
	`, userID, start, end)
}

func (r *ActivityRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]*models.ActivityInterval, error) {
	var intervals []*models.ActivityInterval
	if err := sqlx.SelectContext(ctx, querier(ctx, r.db), &intervals, query, args...); err != nil {
		return nil, core.NewStorageError("list intervals", err)
	}
	return intervals, nil
}

// SummarizeDay computes the daily rollup for a user and date. Zero scores
// are excluded from the average but included in totals.
func (r *ActivityRepositoryImpl) SummarizeDay(ctx context.Context, userID uuid.UUID, date time.Time) (*ports.DailySummary, error) {
	var row struct {
		TotalMinutes    float64 `db:"total_minutes"`
		AvgProductivity float64 `db:"avg_productivity"`
		TaskCount       int     `db:"task_count"`
		ClientsCount    int     `db:"clients_count"`
	}
	err := sqlx.GetContext(ctx, querier(ctx, r.db), &row, `
		SELECT
			COALESCE(SUM(EXTRACT(EPOCH FROM (COALESCE(end_time, NOW()) - start_time)) / 60.0), 0) AS total_minutes,
			COALESCE(AVG(productivity_score) FILTER (WHERE productivity_score > 0), 0) AS avg_productivity,
			COUNT(*) AS task_count,
			COUNT(DISTINCT client_identified) FILTER (WHERE client_identified IS NOT NULL AND client_identified <> 'None') AS clients_count
		FROM activities
		WHERE user_id = $1 AND DATE(start_time) = DATE($2)
	`, userID, date)
	if err != nil {
		return nil, core.NewStorageError("summarize day", err)
	}
	return &ports.DailySummary{
		TotalMinutes:    row.TotalMinutes,
		TotalHours:      row.TotalMinutes / 60.0,
		AvgProductivity: row.AvgProductivity,
		TaskCount:       row.TaskCount,
		ClientsCount:    row.ClientsCount,
	}, nil
}

// SummarizeClients computes per-client minutes for a user and date.
func (r *ActivityRepositoryImpl) SummarizeClients(ctx context.Context, userID uuid.UUID, date time.Time) ([]ports.ClientMinutes, error) {
	var rows []ports.ClientMinutes
	err := sqlx.SelectContext(ctx, querier(ctx, r.db), &rows, `
		SELECT client_identified AS client,
		       COALESCE(SUM(EXTRACT(EPOCH FROM (COALESCE(end_time, NOW()) - start_time)) / 60.0), 0) AS minutes
		FROM activities
		WHERE user_id = $1 AND DATE(start_time) = DATE($2)
		  AND client_identified IS NOT NULL AND client_identified <> '' AND client_identified <> 'None'
		GROUP BY client_identified
		ORDER BY minutes DESC
	`, userID, date)
	if err != nil {
		return nil, core.NewStorageError("summarize clients", err)
	}
	return rows, nil
}

// WithUserLock runs fn inside a transaction holding a per-user advisory
// lock. Concurrent reconciliation for the same user serializes here; the
// lock releases on commit or rollback.
func (r *ActivityRepositoryImpl) WithUserLock(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.NewStorageError("begin tx", err)
	}

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, userID); err != nil {
		_ = tx.Rollback()
		return core.NewStorageError("acquire user lock", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return core.NewStorageError("commit tx", err)
	}
	return nil
}
