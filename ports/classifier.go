package ports

import (
	"context"

	"worklens/models"
)

// Classifier is the classification gateway boundary. Implementations fail
// open: every error path yields the deterministic fallback classification,
// so Classify never reports an error to callers. The raw response is
// returned for audit logging only.
type Classifier interface {
	// Classify produces a normalized classification for an observation.
	// Restricted mode returns only activity type, productivity level and
	// category; the remaining fields are left for caller-supplied values.
	Classify(ctx context.Context, window models.WindowInfo, extractedText string, restricted bool) (models.Classification, string)
}
