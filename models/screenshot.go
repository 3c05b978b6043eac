package models

import (
	"time"

	"github.com/google/uuid"
)

// Screenshot is an append-only record of a captured image. An interval may
// have zero (idle), one (poll case) or many (repeated pushes) screenshots.
type Screenshot struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	ActivityID *uuid.UUID `json:"activity_id,omitempty" db:"activity_id"`
	Path       string     `json:"path" db:"path"`
	TakenAt    time.Time  `json:"taken_at" db:"taken_at"`
}
