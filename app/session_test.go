package app

import (
	"testing"
	"time"

	"worklens/domain/core"
	"worklens/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionManager(t *testing.T) (*SessionManager, *memActivityRepo) {
	t.Helper()
	clock := newFakeClock(time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC))
	windows := &stubWindows{}
	windows.set(models.WindowInfo{Application: "Code.exe", WindowTitle: "main.go"})
	input := &stubInput{}
	input.touch(clock.Now())
	activities := newMemActivityRepo(clock)
	manager := NewSessionManager(testTrackerConfig(), clock, windows, &stubCapturer{},
		&stubOCR{}, input, &stubClassifier{}, activities, &memScreenshotRepo{})
	return manager, activities
}

func TestSessionManagerStartStop(t *testing.T) {
	manager, _ := newSessionManager(t)
	userID := uuid.New()

	require.NoError(t, manager.Start(userID))
	active, running := manager.Active()
	assert.True(t, running)
	assert.Equal(t, userID, active)

	require.NoError(t, manager.Stop())
	_, running = manager.Active()
	assert.False(t, running)
}

func TestSessionManagerDoubleStartSameUser(t *testing.T) {
	manager, _ := newSessionManager(t)
	userID := uuid.New()

	require.NoError(t, manager.Start(userID))
	defer manager.Stop()

	assert.ErrorIs(t, manager.Start(userID), core.ErrSessionRunning)
}

func TestSessionManagerStopWhenIdle(t *testing.T) {
	manager, _ := newSessionManager(t)
	assert.ErrorIs(t, manager.Stop(), core.ErrSessionNotRunning)
}

func TestSessionManagerSwitchesUsers(t *testing.T) {
	manager, _ := newSessionManager(t)
	first, second := uuid.New(), uuid.New()

	require.NoError(t, manager.Start(first))
	require.NoError(t, manager.Start(second), "starting a new user replaces the running session")

	active, running := manager.Active()
	require.True(t, running)
	assert.Equal(t, second, active)
	require.NoError(t, manager.Stop())
}

func TestSessionManagerStopClosesOpenInterval(t *testing.T) {
	manager, activities := newSessionManager(t)
	userID := uuid.New()

	require.NoError(t, manager.Start(userID))
	// The initial tick opens an interval before Stop is observed.
	require.Eventually(t, func() bool {
		return len(activities.all()) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, manager.Stop())
	assert.Equal(t, 0, activities.openCount(), "shutdown finalizes the open interval")
}
