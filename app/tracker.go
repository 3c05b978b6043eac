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

// Tracker is the polling-loop session reconciler. It owns the notion of
// "the current open activity interval" for the tracked user: each tick it
// decides whether the observed window extends the open interval, closes it
// and opens a new one, or synthesizes an idle record.
//
// All in-memory state here is bookkeeping only; cross-process merge
// decisions (agent uploads) go through UploadService, which trusts the
// persisted last row instead.
type Tracker struct {
	cfg         *models.TrackerConfig
	clock       core.Clock
	windows     ports.WindowProvider
	capturer    ports.ScreenCapturer
	ocr         ports.TextExtractor
	input       ports.InputMonitor
	classifier  ports.Classifier
	activities  ports.ActivityRepository
	screenshots ports.ScreenshotRepository

	userID          uuid.UUID
	current         *models.ActivityInterval
	idleStart       time.Time
	idleLogged      bool
	lastObservation time.Time
}

// NewTracker wires a tracker for one user's polling session.
func NewTracker(
	cfg *models.TrackerConfig,
	clock core.Clock,
	windows ports.WindowProvider,
	capturer ports.ScreenCapturer,
	ocr ports.TextExtractor,
	input ports.InputMonitor,
	classifier ports.Classifier,
	activities ports.ActivityRepository,
	screenshots ports.ScreenshotRepository,
	userID uuid.UUID,
) *Tracker {
	return &Tracker{
		cfg:         cfg,
		clock:       clock,
		windows:     windows,
		capturer:    capturer,
		ocr:         ocr,
		input:       input,
		classifier:  classifier,
		activities:  activities,
		screenshots: screenshots,
		userID:      userID,
	}
}

// Run drives the polling loop until ctx is cancelled. Idle state is
// re-evaluated every IdleCheckInterval; a full window observation happens
// once per ScreenshotInterval. No single classification or storage
// failure terminates the loop.
func (t *Tracker) Run(ctx context.Context) {
	log.Printf("[Tracker] Started for user %s (tick=%s, idleThreshold=%s)",
		t.userID, t.cfg.ScreenshotInterval, t.cfg.IdleThreshold)

	wake := t.cfg.IdleCheckInterval
	if wake <= 0 || wake > t.cfg.ScreenshotInterval {
		wake = t.cfg.ScreenshotInterval
	}

	ticker := time.NewTicker(wake)
	defer ticker.Stop()

	t.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			t.closeCurrent(context.Background())
			log.Printf("[Tracker] Stopped for user %s", t.userID)
			return
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

// tick performs one reconciliation step.
func (t *Tracker) tick(ctx context.Context) {
	now := t.clock.Now()
	idle := now.Sub(t.input.LastActivity())

	if idle > t.cfg.IdleThreshold {
		// Idle ticks never touch the current interval.
		t.reconcileIdle(ctx, now)
		return
	}

	// Input ended the idle episode.
	t.idleStart = time.Time{}
	t.idleLogged = false

	if !t.lastObservation.IsZero() && now.Sub(t.lastObservation) < t.cfg.ScreenshotInterval {
		return
	}
	t.lastObservation = now

	t.reconcileWindow(ctx, t.windows.ActiveWindow(), now)
}

// reconcileWindow extends, rotates, or opens the current interval for the
// observed window.
func (t *Tracker) reconcileWindow(ctx context.Context, window models.WindowInfo, now time.Time) {
	if t.current != nil && t.current.Window().Matches(window) {
		// Same window: the interval is implicitly extended, duration is
		// derived at read time. No write this tick.
		return
	}

	// The persisted last row is the authority, not the in-memory pointer:
	// an agent upload in another process may have rotated the interval
	// under us. Re-check it before deciding to open vs. extend.
	last, err := t.activities.FindLastForUser(ctx, t.userID)
	if err != nil && !core.IsNotFoundError(err) {
		log.Printf("[Tracker] Last-row check failed, skipping tick: %v", err)
		return
	}
	if last != nil && last.IsOpen() {
		if last.Window().Matches(window) {
			t.current = last
			return
		}
		end := now
		duration := last.Duration(now)
		err := t.activities.Update(ctx, last.ID, ports.IntervalUpdate{
			EndTime:         &end,
			DurationMinutes: &duration,
		})
		if err != nil {
			log.Printf("[Tracker] Close write failed, skipping tick: %v", err)
			return
		}
	}
	t.current = nil

	screenshotPath := ""
	if path, err := t.capturer.Capture(ctx); err != nil {
		log.Printf("[Tracker] Screenshot capture failed: %v", err)
	} else {
		screenshotPath = path
	}

	extracted := ""
	if screenshotPath != "" {
		extracted = t.ocr.ExtractText(ctx, screenshotPath)
	}

	classification, _ := t.classifier.Classify(ctx, window, extracted, false)
	applyClassificationDefaults(&classification)

	interval := &models.ActivityInterval{
		ID:             uuid.New(),
		UserID:         t.userID,
		StartTime:      now,
		Application:    window.Application,
		WindowTitle:    window.WindowTitle,
		ScreenshotPath: screenshotPath,
		ExtractedText:  extracted,
		AIAnalysis:     classification,
		ClientName:     classification.ClientName,
		Category:       classification.Category,
		Productivity:   classification.ProductivityLevel,
		Status:         "In Progress",
		EntryType:      models.EntryTypeAutoTracked,
	}

	if err := t.activities.Insert(ctx, interval); err != nil {
		log.Printf("[Tracker] Open write failed, skipping tick: %v", err)
		return
	}
	t.current = interval

	if screenshotPath != "" {
		shot := &models.Screenshot{
			UserID:     t.userID,
			ActivityID: &interval.ID,
			Path:       screenshotPath,
			TakenAt:    now,
		}
		if err := t.screenshots.Insert(ctx, shot); err != nil {
			log.Printf("[Tracker] Screenshot record failed: %v", err)
		}
	}
}

// reconcileIdle runs idle synthesis for this tick. The first idle tick
// only marks the episode start; a row is written once the episode itself
// exceeds the threshold, and at most once per episode.
func (t *Tracker) reconcileIdle(ctx context.Context, now time.Time) {
	if t.idleStart.IsZero() {
		t.idleStart = now
		return
	}

	totalIdleMinutes := now.Sub(t.idleStart).Minutes()
	if totalIdleMinutes < t.cfg.IdleThreshold.Minutes() {
		return
	}
	if t.idleLogged {
		return
	}
	// A restart may have lost idleLogged; suppress only when the persisted
	// idle row already covers this episode.
	if last, err := t.activities.FindLastForUser(ctx, t.userID); err == nil &&
		last.EntryType == models.EntryTypeIdle && last.EndTime != nil && last.EndTime.After(t.idleStart) {
		t.idleLogged = true
		return
	}

	end := now
	idle := &models.ActivityInterval{
		ID:              uuid.New(),
		UserID:          t.userID,
		StartTime:       t.idleStart,
		EndTime:         &end,
		Application:     "Idle",
		WindowTitle:     "User is idle",
		ExtractedText:   "User is not active",
		ClientName:      models.ClientNone,
		Category:        "Idle/Leisure",
		Productivity:    0,
		Status:          "Idle",
		EntryType:       models.EntryTypeIdle,
		DurationMinutes: totalIdleMinutes,
	}

	if err := t.activities.Insert(ctx, idle); err != nil {
		log.Printf("[Tracker] Idle write failed, skipping tick: %v", err)
		return
	}
	t.idleLogged = true
	log.Printf("[Tracker] Logged idle episode for user %s (%.2f minutes)", t.userID, totalIdleMinutes)
}

// closeCurrent finalizes the open interval on shutdown.
func (t *Tracker) closeCurrent(ctx context.Context) {
	if t.current == nil {
		return
	}
	now := t.clock.Now()
	end := now
	duration := t.current.Duration(now)
	err := t.activities.Update(ctx, t.current.ID, ports.IntervalUpdate{
		EndTime:         &end,
		DurationMinutes: &duration,
	})
	if err != nil {
		log.Printf("[Tracker] Final close failed: %v", err)
	}
	t.current = nil
}

// applyClassificationDefaults fills the documented defaults on a new
// interval: client "None", category "Work", productivity 5.
func applyClassificationDefaults(c *models.Classification) {
	if c.ClientName == "" {
		c.ClientName = models.ClientNone
	}
	if c.Category == "" {
		c.Category = "Work"
	}
	if c.ProductivityLevel == 0 {
		c.ProductivityLevel = 5
	}
}
