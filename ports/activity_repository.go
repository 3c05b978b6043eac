package ports

import (
	"context"
	"time"

	"worklens/models"

	"github.com/google/uuid"
)

// IntervalUpdate carries the mutable fields of an interval write-back.
// Nil pointers leave the column untouched.
type IntervalUpdate struct {
	EndTime         *time.Time
	DurationMinutes *float64
	ScreenshotPath  *string
	ExtractedText   *string
	AIAnalysis      *models.Classification
	ClientName      *string
	Category        *string
	Productivity    *int
	Status          *string
}

// DailySummary is the per-date rollup for one user.
type DailySummary struct {
	TotalMinutes    float64 `json:"total_minutes"`
	TotalHours      float64 `json:"total_hours"`
	AvgProductivity float64 `json:"avg_productivity"`
	TaskCount       int     `json:"task_count"`
	ClientsCount    int     `json:"clients_count"`
}

// ClientMinutes is one row of the per-client minutes breakdown.
type ClientMinutes struct {
	Client  string  `json:"client" db:"client"`
	Minutes float64 `json:"minutes" db:"minutes"`
}

// ActivityRepository defines the interface for activity interval persistence.
type ActivityRepository interface {
	// Insert persists a new interval.
	Insert(ctx context.Context, interval *models.ActivityInterval) error

	// Update applies a partial write-back to an existing interval.
	Update(ctx context.Context, id uuid.UUID, update IntervalUpdate) error

	// FindLastForUser returns the most recently started interval for the
	// user, or ErrIntervalNotFound. This row is the cross-process authority
	// for merge decisions.
	FindLastForUser(ctx context.Context, userID uuid.UUID) (*models.ActivityInterval, error)

	// FindOverlapping returns an interval overlapping [start, end) for the
	// user, or ErrIntervalNotFound when the range is free.
	FindOverlapping(ctx context.Context, userID uuid.UUID, start, end time.Time) (*models.ActivityInterval, error)

	// ListByUserAndDate returns all intervals starting on the given calendar
	// date, ordered by start time.
	ListByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]*models.ActivityInterval, error)

	// ListByUser returns all intervals for a user, most recent first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.ActivityInterval, error)

	// ListByUserAndRange returns intervals starting in [start, end),
	// ordered by start time.
	ListByUserAndRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*models.ActivityInterval, error)

	// SummarizeDay computes the daily rollup for a user and date.
	SummarizeDay(ctx context.Context, userID uuid.UUID, date time.Time) (*DailySummary, error)

	// SummarizeClients computes per-client minutes for a user and date.
	SummarizeClients(ctx context.Context, userID uuid.UUID, date time.Time) ([]ClientMinutes, error)

	// WithUserLock runs fn inside a transaction holding a per-user advisory
	// lock, serializing read-then-write reconciliation for that user.
	WithUserLock(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context) error) error
}
