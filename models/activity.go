package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EntryType tags the provenance of an activity interval.
type EntryType string

const (
	EntryTypeAutoTracked EntryType = "AutoTracked"
	EntryTypeAgentUpload EntryType = "AgentUpload"
	EntryTypeManualEntry EntryType = "ManualEntry"
	EntryTypeIdle        EntryType = "Idle"
)

// ClientNone is the sentinel stored when no client could be identified.
const ClientNone = "None"

// WindowInfo identifies the foreground window at observation time.
type WindowInfo struct {
	Application string `json:"application"`
	WindowTitle string `json:"window_title"`
}

// Matches reports whether two observations refer to the same logical window.
func (w WindowInfo) Matches(other WindowInfo) bool {
	return w.Application == other.Application && w.WindowTitle == other.WindowTitle
}

// Classification is the normalized productivity judgment for an interval.
// It is produced at the gateway boundary (or by the fallback rules) and is
// the only shape the reconcilers ever see.
type Classification struct {
	ClientName        string `json:"client_name"`
	ActivityType      string `json:"activity_type"`
	ProductivityLevel int    `json:"productivity_level"`
	Description       string `json:"description"`
	ProjectOrTask     string `json:"project_or_task"`
	Category          string `json:"category"`
}

// Value implements driver.Valuer so a Classification persists as JSONB.
func (c Classification) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan implements sql.Scanner. Legacy rows may hold a raw LLM payload in
// any of three shapes (object, quoted string, array); Normalize handles
// those at the gateway, so here only the canonical object form is expected,
// with a zero value for anything unreadable.
func (c *Classification) Scan(value interface{}) error {
	if value == nil {
		*c = Classification{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		*c = Classification{}
		return nil
	}
	if len(raw) == 0 {
		*c = Classification{}
		return nil
	}
	var parsed Classification
	if err := json.Unmarshal(raw, &parsed); err != nil {
		*c = Classification{}
		return nil
	}
	*c = parsed
	return nil
}

// ActivityInterval is a contiguous, possibly still-open, span of time
// attributed to one user doing one identified activity. EndTime == nil
// means the interval is open/in-progress.
type ActivityInterval struct {
	ID              uuid.UUID      `json:"id" db:"id"`
	UserID          uuid.UUID      `json:"user_id" db:"user_id"`
	StartTime       time.Time      `json:"start_time" db:"start_time"`
	EndTime         *time.Time     `json:"end_time,omitempty" db:"end_time"`
	Application     string         `json:"application" db:"application"`
	WindowTitle     string         `json:"window_title" db:"window_title"`
	ScreenshotPath  string         `json:"screenshot_path,omitempty" db:"screenshot_path"`
	ExtractedText   string         `json:"-" db:"extracted_text"`
	AIAnalysis      Classification `json:"ai_analysis" db:"ai_analysis"`
	ClientName      string         `json:"client_identified" db:"client_identified"`
	Category        string         `json:"category" db:"category"`
	Productivity    int            `json:"productivity_score" db:"productivity_score"`
	Status          string         `json:"status" db:"status"`
	EntryType       EntryType      `json:"entry_type" db:"entry_type"`
	DurationMinutes float64        `json:"duration_minutes" db:"duration_minutes"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
}

// Window returns the interval's window identity for merge comparisons.
func (a *ActivityInterval) Window() WindowInfo {
	return WindowInfo{Application: a.Application, WindowTitle: a.WindowTitle}
}

// IsOpen reports whether the interval is still in progress.
func (a *ActivityInterval) IsOpen() bool {
	return a.EndTime == nil
}

// Duration computes minutes covered by the interval, using now for an
// open interval. Stored DurationMinutes is a cache of this value at the
// last write; reads always recompute.
func (a *ActivityInterval) Duration(now time.Time) float64 {
	end := now
	if a.EndTime != nil {
		end = *a.EndTime
	}
	minutes := end.Sub(a.StartTime).Minutes()
	if minutes < 0 {
		return 0
	}
	return minutes
}

// Overlaps implements the three-way overlap test against [start, end):
// other starts inside, other ends inside, or other fully contains this.
func (a *ActivityInterval) Overlaps(start, end time.Time) bool {
	aEnd := a.StartTime
	if a.EndTime != nil {
		aEnd = *a.EndTime
	}
	if !a.StartTime.Before(aEnd) {
		return false
	}
	startsInside := !a.StartTime.After(start) && aEnd.After(start)
	endsInside := a.StartTime.Before(end) && !aEnd.Before(end)
	contained := !start.After(a.StartTime) && !aEnd.After(end)
	return startsInside || endsInside || contained
}
