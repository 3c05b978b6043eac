package platform

import (
	"sync"
	"time"
)

// InputRecorder implements ports.InputMonitor. Platform event hooks
// (pointer move, click, scroll, key press) call Touch; the tracker loop
// reads LastActivity to derive idle state.
type InputRecorder struct {
	mu   sync.RWMutex
	last time.Time
}

// NewInputRecorder starts with the current time as the last activity.
func NewInputRecorder() *InputRecorder {
	return &InputRecorder{last: time.Now()}
}

// Touch records a user-input event.
func (r *InputRecorder) Touch() {
	r.mu.Lock()
	r.last = time.Now()
	r.mu.Unlock()
}

// LastActivity returns the time of the most recent input event.
func (r *InputRecorder) LastActivity() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.last
}
