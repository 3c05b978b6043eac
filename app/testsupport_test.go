package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"worklens/domain/core"
	"worklens/models"
	"worklens/ports"

	"github.com/google/uuid"
)

// fakeClock is a manually advanced clock for deterministic reconciliation
// tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memActivityRepo is an in-memory ActivityRepository. WithUserLock
// serializes on a plain mutex; overlap and rollup queries mirror the SQL
// semantics, including COALESCE(end_time, NOW()) for open rows.
type memActivityRepo struct {
	mu        sync.Mutex
	clock     core.Clock
	intervals []*models.ActivityInterval

	insertErr error
	updateErr error
}

func newMemActivityRepo(clock core.Clock) *memActivityRepo {
	return &memActivityRepo{clock: clock}
}

func (r *memActivityRepo) Insert(ctx context.Context, interval *models.ActivityInterval) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	copied := *interval
	r.intervals = append(r.intervals, &copied)
	return nil
}

func (r *memActivityRepo) Update(ctx context.Context, id uuid.UUID, update ports.IntervalUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return r.updateErr
	}
	for _, interval := range r.intervals {
		if interval.ID != id {
			continue
		}
		if update.EndTime != nil {
			end := *update.EndTime
			interval.EndTime = &end
		}
		if update.DurationMinutes != nil {
			interval.DurationMinutes = *update.DurationMinutes
		}
		if update.ScreenshotPath != nil {
			interval.ScreenshotPath = *update.ScreenshotPath
		}
		if update.ExtractedText != nil {
			interval.ExtractedText = *update.ExtractedText
		}
		if update.AIAnalysis != nil {
			interval.AIAnalysis = *update.AIAnalysis
		}
		if update.ClientName != nil {
			interval.ClientName = *update.ClientName
		}
		if update.Category != nil {
			interval.Category = *update.Category
		}
		if update.Productivity != nil {
			interval.Productivity = *update.Productivity
		}
		if update.Status != nil {
			interval.Status = *update.Status
		}
		return nil
	}
	return core.ErrIntervalNotFound
}

func (r *memActivityRepo) FindLastForUser(ctx context.Context, userID uuid.UUID) (*models.ActivityInterval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var last *models.ActivityInterval
	for _, interval := range r.intervals {
		if interval.UserID != userID {
			continue
		}
		if last == nil || !interval.StartTime.Before(last.StartTime) {
			last = interval
		}
	}
	if last == nil {
		return nil, core.ErrIntervalNotFound
	}
	return last, nil
}

func (r *memActivityRepo) FindOverlapping(ctx context.Context, userID uuid.UUID, start, end time.Time) (*models.ActivityInterval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.Now()
	for _, interval := range r.intervals {
		if interval.UserID != userID {
			continue
		}
		existingEnd := now
		if interval.EndTime != nil {
			existingEnd = *interval.EndTime
		}
		coversStart := !interval.StartTime.After(start) && existingEnd.After(start)
		coversEnd := interval.StartTime.Before(end) && !existingEnd.Before(end)
		contained := !start.After(interval.StartTime) && !existingEnd.After(end)
		if coversStart || coversEnd || contained {
			return interval, nil
		}
	}
	return nil, core.ErrIntervalNotFound
}

func (r *memActivityRepo) ListByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]*models.ActivityInterval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ActivityInterval
	for _, interval := range r.intervals {
		if interval.UserID == userID && core.SameDate(interval.StartTime, date) {
			out = append(out, interval)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *memActivityRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.ActivityInterval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ActivityInterval
	for _, interval := range r.intervals {
		if interval.UserID == userID {
			out = append(out, interval)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (r *memActivityRepo) ListByUserAndRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]*models.ActivityInterval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ActivityInterval
	for _, interval := range r.intervals {
		if interval.UserID != userID {
			continue
		}
		if interval.StartTime.Before(start) || !interval.StartTime.Before(end) {
			continue
		}
		out = append(out, interval)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *memActivityRepo) SummarizeDay(ctx context.Context, userID uuid.UUID, date time.Time) (*ports.DailySummary, error) {
	intervals, err := r.ListByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	now := r.clock.Now()
	summary := &ports.DailySummary{}
	var scoreSum float64
	var scored int
	clients := make(map[string]struct{})
	for _, interval := range intervals {
		summary.TotalMinutes += interval.Duration(now)
		summary.TaskCount++
		if interval.Productivity > 0 {
			scoreSum += float64(interval.Productivity)
			scored++
		}
		if interval.ClientName != "" && interval.ClientName != models.ClientNone {
			clients[interval.ClientName] = struct{}{}
		}
	}
	if scored > 0 {
		summary.AvgProductivity = scoreSum / float64(scored)
	}
	summary.ClientsCount = len(clients)
	return summary, nil
}

func (r *memActivityRepo) SummarizeClients(ctx context.Context, userID uuid.UUID, date time.Time) ([]ports.ClientMinutes, error) {
	intervals, err := r.ListByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	now := r.clock.Now()
	totals := make(map[string]float64)
	for _, interval := range intervals {
		if interval.ClientName == "" || interval.ClientName == models.ClientNone {
			continue
		}
		totals[interval.ClientName] += interval.Duration(now)
	}
	out := make([]ports.ClientMinutes, 0, len(totals))
	for client, minutes := range totals {
		out = append(out, ports.ClientMinutes{Client: client, Minutes: minutes})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Minutes > out[j].Minutes })
	return out, nil
}

func (r *memActivityRepo) WithUserLock(ctx context.Context, userID uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// all returns a snapshot of the stored intervals in insertion order.
func (r *memActivityRepo) all() []*models.ActivityInterval {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.ActivityInterval, len(r.intervals))
	copy(out, r.intervals)
	return out
}

func (r *memActivityRepo) openCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, interval := range r.intervals {
		if interval.IsOpen() {
			count++
		}
	}
	return count
}

// memScreenshotRepo records screenshot rows in memory.
type memScreenshotRepo struct {
	mu    sync.Mutex
	shots []*models.Screenshot
}

func (r *memScreenshotRepo) Insert(ctx context.Context, shot *models.Screenshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *shot
	r.shots = append(r.shots, &copied)
	return nil
}

func (r *memScreenshotRepo) ListByActivity(ctx context.Context, activityID uuid.UUID) ([]*models.Screenshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Screenshot
	for _, shot := range r.shots {
		if shot.ActivityID != nil && *shot.ActivityID == activityID {
			out = append(out, shot)
		}
	}
	return out, nil
}

func (r *memScreenshotRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shots)
}

// stubClassifier returns a fixed classification and records calls.
type stubClassifier struct {
	mu         sync.Mutex
	result     models.Classification
	calls      int
	restricted []bool
}

func (c *stubClassifier) Classify(ctx context.Context, window models.WindowInfo, extractedText string, restricted bool) (models.Classification, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.restricted = append(c.restricted, restricted)
	return c.result, ""
}

// stubWindows serves a swappable foreground window.
type stubWindows struct {
	mu     sync.Mutex
	window models.WindowInfo
}

func (w *stubWindows) ActiveWindow() models.WindowInfo {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.window
}

func (w *stubWindows) set(window models.WindowInfo) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.window = window
}

// stubCapturer returns sequential fake screenshot paths.
type stubCapturer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *stubCapturer) Capture(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	c.calls++
	return fmt.Sprintf("/tmp/shots/shot_%d.png", c.calls), nil
}

// stubOCR returns a fixed extraction result.
type stubOCR struct {
	text string
}

func (o *stubOCR) ExtractText(ctx context.Context, imagePath string) string {
	return o.text
}

// stubInput reports a settable last-input time.
type stubInput struct {
	mu   sync.Mutex
	last time.Time
}

func (i *stubInput) LastActivity() time.Time {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.last
}

func (i *stubInput) touch(at time.Time) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.last = at
}

// memImageStore stores upload bytes under deterministic paths.
type memImageStore struct {
	mu    sync.Mutex
	saved int
}

func (s *memImageStore) Save(ctx context.Context, userTag string, data []byte, takenAt time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved++
	return fmt.Sprintf("/tmp/uploads/%s/%d.png", userTag, s.saved), nil
}

func testTrackerConfig() *models.TrackerConfig {
	return &models.TrackerConfig{
		ScreenshotInterval:   30 * time.Second,
		IdleThreshold:        180 * time.Second,
		IdleCheckInterval:    5 * time.Second,
		ScreenshotDir:        "/tmp/shots",
		ManualEntryTodayOnly: true,
		DefaultManualStart:   "09:00",
	}
}
