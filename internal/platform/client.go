package platform

import (
	"context"
	"errors"
	"time"

	"cpd/internal/models"
)

var (
	// ErrNotFound means the external platform does not know the handle.
	ErrNotFound = errors.New("platform: handle not found")
	// ErrHistoryUnsupported marks point-in-time platforms that expose
	// no rating-change log.
	ErrHistoryUnsupported = errors.New("platform: history not supported")
)

// CurrentStats is one platform's current view of a handle.
type CurrentStats struct {
	Rating         int
	SolvedCount    int
	TopicBreakdown map[string]int
}

// RatingChange is one entry of a platform's rating-change log.
type RatingChange struct {
	Timestamp time.Time
	Rating    int
}

// ClientInterface is the boundary to one external platform. GetHistory
// returns ErrHistoryUnsupported for platforms without a history API;
// GetDailySubmissionCounts is optional the same way.
type ClientInterface interface {
	GetCurrent(ctx context.Context, handle string) (*CurrentStats, error)
	GetHistory(ctx context.Context, handle string) ([]RatingChange, error)
	GetDailySubmissionCounts(ctx context.Context, handle string, days int) (map[string]int, error)
}

// Registry maps each known platform to its client.
type Registry map[models.Platform]ClientInterface

func (r Registry) Client(p models.Platform) (ClientInterface, bool) {
	c, ok := r[p]
	return c, ok
}
