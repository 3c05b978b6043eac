package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"worklens/domain/core"
	"worklens/models"
	"worklens/ports"

	"github.com/google/uuid"
)

// ManualEntry is a user-supplied time entry awaiting validation.
type ManualEntry struct {
	Description   string  `json:"description"`
	Application   string  `json:"application"`
	ProjectTask   string  `json:"project_task"`
	ClientName    string  `json:"clientName"`
	DurationHours float64 `json:"duration"`
	Date          string  `json:"date"`
	StartTime     string  `json:"startTime"`
	Status        string  `json:"status"`
}

// ManualEntryResult is returned on successful insertion.
type ManualEntryResult struct {
	IntervalID     uuid.UUID             `json:"id"`
	Classification models.Classification `json:"ai_analysis"`
}

// ManualEntryService validates and stores manual time entries. Validation
// is ordered: missing fields, duration bounds, date policy, then the
// overlap check. The overlap check and insert run atomically under the
// per-user lock so two concurrent submissions cannot both pass against a
// stale snapshot.
type ManualEntryService struct {
	cfg        *models.TrackerConfig
	clock      core.Clock
	classifier ports.Classifier
	activities ports.ActivityRepository
}

// NewManualEntryService wires the manual entry validator.
func NewManualEntryService(cfg *models.TrackerConfig, clock core.Clock, classifier ports.Classifier, activities ports.ActivityRepository) *ManualEntryService {
	return &ManualEntryService{cfg: cfg, clock: clock, classifier: classifier, activities: activities}
}

// Submit validates the entry and persists it tagged ManualEntry.
func (s *ManualEntryService) Submit(ctx context.Context, userID uuid.UUID, entry ManualEntry) (*ManualEntryResult, error) {
	if strings.TrimSpace(entry.Description) == "" {
		return nil, core.NewMissingFieldError("description")
	}
	if strings.TrimSpace(entry.Application) == "" {
		return nil, core.NewMissingFieldError("application")
	}
	if strings.TrimSpace(entry.ProjectTask) == "" {
		return nil, core.NewMissingFieldError("project_task")
	}

	durationMinutes := entry.DurationHours * 60
	if durationMinutes <= 0 || durationMinutes > 1440 {
		return nil, core.NewInvalidDurationError(durationMinutes)
	}

	date, err := time.ParseInLocation("2006-01-02", entry.Date, s.clock.Now().Location())
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", core.ErrInvalidDate)
	}
	if s.cfg.ManualEntryTodayOnly && !core.SameDate(date, s.clock.Now()) {
		return nil, fmt.Errorf("%w: manual entries are restricted to today", core.ErrInvalidDate)
	}

	startClock := entry.StartTime
	if startClock == "" {
		startClock = s.cfg.DefaultManualStart
	}
	clockTime, err := time.Parse("15:04", startClock)
	if err != nil {
		return nil, fmt.Errorf("%w: start time must be HH:MM", core.ErrValidation)
	}
	start := date.Add(time.Duration(clockTime.Hour())*time.Hour + time.Duration(clockTime.Minute())*time.Minute)
	end := start.Add(time.Duration(durationMinutes * float64(time.Minute)))

	status := entry.Status
	if status == "" {
		status = "In Progress"
	}

	// Restricted mode: the gateway contributes only activity type,
	// productivity and category. Client, description and project come
	// verbatim from the user and are never overwritten.
	window := models.WindowInfo{Application: entry.Application, WindowTitle: entry.Description}
	aiFields, _ := s.classifier.Classify(ctx, window, entry.Description, true)

	merged := models.Classification{
		ClientName:        entry.ClientName,
		Description:       entry.Description,
		ProjectOrTask:     entry.ProjectTask,
		ActivityType:      aiFields.ActivityType,
		ProductivityLevel: aiFields.ProductivityLevel,
		Category:          aiFields.Category,
	}
	if merged.ProductivityLevel == 0 {
		merged.ProductivityLevel = 7
	}
	if merged.Category == "" {
		merged.Category = "Work"
	}

	var result *ManualEntryResult
	err = s.activities.WithUserLock(ctx, userID, func(ctx context.Context) error {
		conflict, err := s.activities.FindOverlapping(ctx, userID, start, end)
		if err != nil && !core.IsNotFoundError(err) {
			return err
		}
		if conflict != nil {
			conflictEnd := conflict.StartTime
			if conflict.EndTime != nil {
				conflictEnd = *conflict.EndTime
			}
			return core.NewConflictError(conflict.StartTime, conflictEnd)
		}

		interval := &models.ActivityInterval{
			ID:              uuid.New(),
			UserID:          userID,
			StartTime:       start,
			EndTime:         &end,
			Application:     entry.Application,
			AIAnalysis:      merged,
			ClientName:      merged.ClientName,
			Category:        merged.Category,
			Productivity:    merged.ProductivityLevel,
			Status:          status,
			EntryType:       models.EntryTypeManualEntry,
			DurationMinutes: durationMinutes,
		}
		if err := s.activities.Insert(ctx, interval); err != nil {
			return err
		}
		result = &ManualEntryResult{IntervalID: interval.ID, Classification: merged}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}
