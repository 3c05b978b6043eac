package app

import (
	"context"
	"log"
	"sync"

	"worklens/domain/core"
	"worklens/models"
	"worklens/ports"

	"github.com/google/uuid"
)

// SessionManager owns the at-most-one active tracking session per process.
// Transitions are Idle -> Running(userID) -> Idle, guarded by a mutex.
// Starting for a new user while another user's session runs stops the
// previous session first. Stop is cooperative: the tracker observes
// cancellation at the top of its loop, so it may lag by up to one tick.
type SessionManager struct {
	cfg         *models.TrackerConfig
	clock       core.Clock
	windows     ports.WindowProvider
	capturer    ports.ScreenCapturer
	ocr         ports.TextExtractor
	input       ports.InputMonitor
	classifier  ports.Classifier
	activities  ports.ActivityRepository
	screenshots ports.ScreenshotRepository

	mu      sync.Mutex
	current *trackingSession
}

type trackingSession struct {
	userID uuid.UUID
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSessionManager creates the process-wide tracking session manager.
func NewSessionManager(
	cfg *models.TrackerConfig,
	clock core.Clock,
	windows ports.WindowProvider,
	capturer ports.ScreenCapturer,
	ocr ports.TextExtractor,
	input ports.InputMonitor,
	classifier ports.Classifier,
	activities ports.ActivityRepository,
	screenshots ports.ScreenshotRepository,
) *SessionManager {
	return &SessionManager{
		cfg:         cfg,
		clock:       clock,
		windows:     windows,
		capturer:    capturer,
		ocr:         ocr,
		input:       input,
		classifier:  classifier,
		activities:  activities,
		screenshots: screenshots,
	}
}

// Start begins tracking for a user. Returns ErrSessionRunning when the
// same user is already being tracked; a session for a different user is
// stopped first.
func (m *SessionManager) Start(userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current != nil {
		if m.current.userID == userID {
			return core.ErrSessionRunning
		}
		log.Printf("[SessionManager] Stopping session for user %s to start user %s", m.current.userID, userID)
		m.stopLocked()
	}

	ctx, cancel := context.WithCancel(context.Background())
	session := &trackingSession{
		userID: userID,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	tracker := NewTracker(m.cfg, m.clock, m.windows, m.capturer, m.ocr, m.input,
		m.classifier, m.activities, m.screenshots, userID)

	go func() {
		defer close(session.done)
		tracker.Run(ctx)
	}()

	m.current = session
	return nil
}

// Stop ends the active session. Returns ErrSessionNotRunning when idle.
func (m *SessionManager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return core.ErrSessionNotRunning
	}
	m.stopLocked()
	return nil
}

// Active returns the tracked user id, if a session is running.
func (m *SessionManager) Active() (uuid.UUID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == nil {
		return uuid.Nil, false
	}
	return m.current.userID, true
}

func (m *SessionManager) stopLocked() {
	m.current.cancel()
	<-m.current.done
	m.current = nil
}
