package app

import (
	"context"
	"testing"
	"time"

	"worklens/domain/core"
	"worklens/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type manualFixture struct {
	clock      *fakeClock
	classifier *stubClassifier
	activities *memActivityRepo
	service    *ManualEntryService
	userID     uuid.UUID
}

func newManualFixture(t *testing.T) *manualFixture {
	t.Helper()
	clock := newFakeClock(time.Date(2026, 3, 4, 14, 0, 0, 0, time.UTC))
	f := &manualFixture{
		clock:      clock,
		classifier: &stubClassifier{},
		activities: newMemActivityRepo(clock),
		userID:     uuid.New(),
	}
	f.classifier.result = models.Classification{
		ActivityType:      "documentation",
		ProductivityLevel: 8,
		Category:          "Work",
	}
	f.service = NewManualEntryService(testTrackerConfig(), clock, f.classifier, f.activities)
	return f
}

func validEntry() ManualEntry {
	return ManualEntry{
		Description:   "Drafted the onboarding guide",
		Application:   "winword.exe",
		ProjectTask:   "Onboarding",
		ClientName:    "Acme Corp",
		DurationHours: 1,
		Date:          "2026-03-04",
		StartTime:     "09:00",
	}
}

func TestManualEntryMissingFields(t *testing.T) {
	f := newManualFixture(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*ManualEntry)
		field  string
	}{
		{"description", func(e *ManualEntry) { e.Description = "" }, "description"},
		{"application", func(e *ManualEntry) { e.Application = "  " }, "application"},
		{"project task", func(e *ManualEntry) { e.ProjectTask = "" }, "project_task"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := validEntry()
			tt.mutate(&entry)
			_, err := f.service.Submit(ctx, f.userID, entry)
			require.Error(t, err)
			assert.True(t, core.IsValidationError(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
	assert.Empty(t, f.activities.all(), "rejected entries must not persist")
}

func TestManualEntryDurationBounds(t *testing.T) {
	f := newManualFixture(t)
	ctx := context.Background()

	for _, hours := range []float64{0, -1, 24.5} {
		entry := validEntry()
		entry.DurationHours = hours
		_, err := f.service.Submit(ctx, f.userID, entry)
		require.Error(t, err, "duration %v hours", hours)
		assert.ErrorIs(t, err, core.ErrInvalidDuration)
	}

	entry := validEntry()
	entry.DurationHours = 24
	_, err := f.service.Submit(ctx, f.userID, entry)
	assert.NoError(t, err, "a full 24h day is the inclusive maximum")
}

func TestManualEntryRejectsOtherDates(t *testing.T) {
	f := newManualFixture(t)
	ctx := context.Background()

	entry := validEntry()
	entry.Date = "2026-03-03"
	_, err := f.service.Submit(ctx, f.userID, entry)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrInvalidDate)

	entry.Date = "03/04/2026"
	_, err = f.service.Submit(ctx, f.userID, entry)
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}

func TestManualEntryAnyDatePolicy(t *testing.T) {
	f := newManualFixture(t)
	f.service.cfg.ManualEntryTodayOnly = false

	entry := validEntry()
	entry.Date = "2026-03-02"
	_, err := f.service.Submit(context.Background(), f.userID, entry)
	assert.NoError(t, err)
}

func TestManualEntrySubmitPersistsTaggedInterval(t *testing.T) {
	f := newManualFixture(t)

	result, err := f.service.Submit(context.Background(), f.userID, validEntry())
	require.NoError(t, err)
	require.NotNil(t, result)

	intervals := f.activities.all()
	require.Len(t, intervals, 1)

	interval := intervals[0]
	assert.Equal(t, models.EntryTypeManualEntry, interval.EntryType)
	assert.Equal(t, time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC), interval.StartTime)
	require.NotNil(t, interval.EndTime)
	assert.Equal(t, time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC), *interval.EndTime)
	assert.InDelta(t, 60.0, interval.DurationMinutes, 0.001)

	// User-supplied fields are verbatim; the gateway contributes the rest.
	assert.Equal(t, "Acme Corp", interval.AIAnalysis.ClientName)
	assert.Equal(t, "Drafted the onboarding guide", interval.AIAnalysis.Description)
	assert.Equal(t, "Onboarding", interval.AIAnalysis.ProjectOrTask)
	assert.Equal(t, "documentation", interval.AIAnalysis.ActivityType)
	assert.Equal(t, 8, interval.Productivity)

	require.Len(t, f.classifier.restricted, 1)
	assert.True(t, f.classifier.restricted[0], "manual entries classify in restricted mode")
}

func TestManualEntryDefaultsWhenClassifierSilent(t *testing.T) {
	f := newManualFixture(t)
	f.classifier.result = models.Classification{}

	_, err := f.service.Submit(context.Background(), f.userID, validEntry())
	require.NoError(t, err)

	interval := f.activities.all()[0]
	assert.Equal(t, 7, interval.Productivity)
	assert.Equal(t, "Work", interval.Category)
}

func TestManualEntryDefaultStartTime(t *testing.T) {
	f := newManualFixture(t)

	entry := validEntry()
	entry.StartTime = ""
	_, err := f.service.Submit(context.Background(), f.userID, entry)
	require.NoError(t, err)

	interval := f.activities.all()[0]
	assert.Equal(t, 9, interval.StartTime.Hour())
	assert.Equal(t, 0, interval.StartTime.Minute())
}

func TestManualEntryOverlapConflict(t *testing.T) {
	f := newManualFixture(t)
	ctx := context.Background()

	_, err := f.service.Submit(ctx, f.userID, validEntry())
	require.NoError(t, err)

	overlapping := validEntry()
	overlapping.StartTime = "09:30"
	_, err = f.service.Submit(ctx, f.userID, overlapping)
	require.Error(t, err)
	assert.True(t, core.IsConflictError(err))
	assert.Contains(t, err.Error(), "09:00", "conflict message cites the existing task's bounds")
	assert.Contains(t, err.Error(), "10:00")

	assert.Len(t, f.activities.all(), 1, "conflicting entry must not persist")
}

func TestManualEntryConflictsWithTrackedInterval(t *testing.T) {
	f := newManualFixture(t)
	ctx := context.Background()

	// Overlap is checked against every interval type, not only manual ones.
	end := time.Date(2026, 3, 4, 9, 45, 0, 0, time.UTC)
	tracked := &models.ActivityInterval{
		ID:        uuid.New(),
		UserID:    f.userID,
		StartTime: time.Date(2026, 3, 4, 9, 15, 0, 0, time.UTC),
		EndTime:   &end,
		EntryType: models.EntryTypeAutoTracked,
	}
	require.NoError(t, f.activities.Insert(ctx, tracked))

	_, err := f.service.Submit(ctx, f.userID, validEntry())
	require.Error(t, err)
	assert.True(t, core.IsConflictError(err))
}

func TestManualEntryAdjacentIntervalsDoNotConflict(t *testing.T) {
	f := newManualFixture(t)
	ctx := context.Background()

	_, err := f.service.Submit(ctx, f.userID, validEntry())
	require.NoError(t, err)

	adjacent := validEntry()
	adjacent.StartTime = "10:00"
	_, err = f.service.Submit(ctx, f.userID, adjacent)
	assert.NoError(t, err, "[09:00,10:00) and [10:00,11:00) share only a boundary")
}
