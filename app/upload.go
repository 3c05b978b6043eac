package app

import (
	"context"
	"log"
	"time"

	"worklens/domain/core"
	"worklens/models"
	"worklens/ports"

	"github.com/google/uuid"
)

// UploadResult is returned to the pushing agent.
type UploadResult struct {
	IntervalID     uuid.UUID             `json:"interval_id"`
	Classification models.Classification `json:"ai_analysis"`
	Merged         bool                  `json:"merged"`
}

// UploadService reconciles agent-pushed screenshot events against the
// persisted state. Unlike the polling Tracker it holds no in-memory
// interval: the pushing agent and the tracker may run in different
// processes, so the most recently started persisted row is the only
// authority for "is this the same logical activity". The read-merge-write
// sequence runs under a per-user lock held by the repository.
type UploadService struct {
	cfg         *models.TrackerConfig
	clock       core.Clock
	images      ports.ImageStore
	ocr         ports.TextExtractor
	classifier  ports.Classifier
	activities  ports.ActivityRepository
	screenshots ports.ScreenshotRepository
}

// NewUploadService wires the push-based reconciler.
func NewUploadService(
	cfg *models.TrackerConfig,
	clock core.Clock,
	images ports.ImageStore,
	ocr ports.TextExtractor,
	classifier ports.Classifier,
	activities ports.ActivityRepository,
	screenshots ports.ScreenshotRepository,
) *UploadService {
	return &UploadService{
		cfg:         cfg,
		clock:       clock,
		images:      images,
		ocr:         ocr,
		classifier:  classifier,
		activities:  activities,
		screenshots: screenshots,
	}
}

// ProcessUpload handles one screenshot event: persist the image, classify
// the observation, then merge with or rotate the persisted last interval.
func (s *UploadService) ProcessUpload(ctx context.Context, userID uuid.UUID, window models.WindowInfo, image []byte, takenAt time.Time) (*UploadResult, error) {
	if takenAt.IsZero() {
		takenAt = s.clock.Now()
	}

	path, err := s.images.Save(ctx, userID.String(), image, takenAt)
	if err != nil {
		return nil, core.NewStorageError("save upload", err)
	}

	extracted := s.ocr.ExtractText(ctx, path)
	classification, _ := s.classifier.Classify(ctx, window, extracted, false)
	applyClassificationDefaults(&classification)

	var result *UploadResult
	err = s.activities.WithUserLock(ctx, userID, func(ctx context.Context) error {
		now := s.clock.Now()

		last, err := s.activities.FindLastForUser(ctx, userID)
		if err != nil && !core.IsNotFoundError(err) {
			return err
		}

		if last != nil && last.Window().Matches(window) {
			// Merge case: a monotonic refinement of the same logical
			// interval. End advances, the newest observation wins.
			end := now
			duration := now.Sub(last.StartTime).Minutes()
			update := ports.IntervalUpdate{
				EndTime:         &end,
				DurationMinutes: &duration,
				ScreenshotPath:  &path,
				ExtractedText:   &extracted,
				AIAnalysis:      &classification,
				ClientName:      &classification.ClientName,
				Category:        &classification.Category,
				Productivity:    &classification.ProductivityLevel,
			}
			if err := s.activities.Update(ctx, last.ID, update); err != nil {
				return err
			}
			result = &UploadResult{IntervalID: last.ID, Classification: classification, Merged: true}
			return s.appendScreenshot(ctx, userID, last.ID, path, takenAt)
		}

		if last != nil && last.IsOpen() {
			// Rotation case: the open row belongs to a window the agent no
			// longer sees. Close the abandoned interval before opening.
			end := now
			duration := last.Duration(now)
			err := s.activities.Update(ctx, last.ID, ports.IntervalUpdate{
				EndTime:         &end,
				DurationMinutes: &duration,
			})
			if err != nil {
				return err
			}
		}

		interval := &models.ActivityInterval{
			ID:             uuid.New(),
			UserID:         userID,
			StartTime:      now,
			Application:    window.Application,
			WindowTitle:    window.WindowTitle,
			ScreenshotPath: path,
			ExtractedText:  extracted,
			AIAnalysis:     classification,
			ClientName:     classification.ClientName,
			Category:       classification.Category,
			Productivity:   classification.ProductivityLevel,
			Status:         "In Progress",
			EntryType:      models.EntryTypeAgentUpload,
		}
		if err := s.activities.Insert(ctx, interval); err != nil {
			return err
		}
		result = &UploadResult{IntervalID: interval.ID, Classification: classification}
		return s.appendScreenshot(ctx, userID, interval.ID, path, takenAt)
	})
	if err != nil {
		log.Printf("[Upload] Reconciliation failed for user %s: %v", userID, err)
		return nil, err
	}

	return result, nil
}

func (s *UploadService) appendScreenshot(ctx context.Context, userID, activityID uuid.UUID, path string, takenAt time.Time) error {
	return s.screenshots.Insert(ctx, &models.Screenshot{
		UserID:     userID,
		ActivityID: &activityID,
		Path:       path,
		TakenAt:    takenAt,
	})
}
