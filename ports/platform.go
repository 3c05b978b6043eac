package ports

import (
	"context"
	"time"

	"worklens/models"
)

// WindowProvider reads the foreground window identity. Platforms without
// window introspection return the ("N/A","N/A") sentinel; lookup failures
// return ("Unknown","Unknown").
type WindowProvider interface {
	ActiveWindow() models.WindowInfo
}

// ScreenCapturer writes a screenshot to disk and returns its path.
type ScreenCapturer interface {
	Capture(ctx context.Context) (string, error)
}

// TextExtractor runs OCR over a captured image. Best effort: failures
// return an empty string, never an error.
type TextExtractor interface {
	ExtractText(ctx context.Context, imagePath string) string
}

// InputMonitor reports the last observed user-input event (pointer move,
// click, scroll, key press). The reconciler derives idle state from it.
type InputMonitor interface {
	LastActivity() time.Time
}

// ImageStore persists agent-pushed screenshot bytes and returns the
// stored path.
type ImageStore interface {
	Save(ctx context.Context, userTag string, data []byte, takenAt time.Time) (string, error)
}
