package services

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"cpd/internal/models"
	"cpd/internal/platform"
	"cpd/internal/providers"
	"cpd/internal/structures"
)

type RefreshServiceInterface interface {
	Ingest(ctx context.Context, userID string, p models.Platform, handle string) (int, error)
	RefreshUser(ctx context.Context, userID string, filter models.Platform) int
	SweepAll(ctx context.Context) (ok, failed int)
}

// RefreshService pulls external platform state into the snapshot
// store. External failures never propagate as hard errors: they are
// logged and surfaced as a zero or partial write count.
type RefreshService struct {
	snapshots SnapshotServiceInterface
	clients   platform.Registry
	conf      *structures.Config
	logger    providers.Logger
	limiter   *rate.Limiter
	now       func() time.Time
}

func NewRefreshService(snapshots SnapshotServiceInterface, clients platform.Registry, conf *structures.Config, logger providers.Logger) RefreshServiceInterface {
	perSec := conf.Refresh.RatePerSec
	if perSec <= 0 {
		perSec = 1
	}
	burst := conf.Refresh.RateBurst
	if burst <= 0 {
		burst = 1
	}
	return &RefreshService{
		snapshots: snapshots,
		clients:   clients,
		conf:      conf,
		logger:    logger,
		limiter:   rate.NewLimiter(rate.Limit(perSec), burst),
		now:       time.Now,
	}
}

// Ingest backfills one handle. For history-kind platforms every
// rating-change entry within the lookback window becomes one snapshot
// at the entry's own timestamp, with the current topic breakdown
// attached to all of them (topic accumulation is not reconstructed
// historically). A final snapshot at now captures the latest state.
// The returned error is advisory: the count already reflects
// everything that was written.
func (rs *RefreshService) Ingest(ctx context.Context, userID string, p models.Platform, handle string) (int, error) {
	client, ok := rs.clients.Client(p)
	if !ok {
		return 0, errors.New("no client for platform")
	}

	cur, err := client.GetCurrent(ctx, handle)
	if err != nil {
		rs.logger.Warnf(providers.TypeIngest, "GetCurrent %s/%s failed: %s", p, handle, err)
		return 0, err
	}

	written := 0
	now := rs.now().UTC()

	history, err := client.GetHistory(ctx, handle)
	switch {
	case errors.Is(err, platform.ErrHistoryUnsupported):
		// Point-in-time platform: the current snapshot below is all
		// there is.
	case err != nil:
		rs.logger.Warnf(providers.TypeIngest, "GetHistory %s/%s failed: %s", p, handle, err)
	default:
		cutoff := now.AddDate(0, 0, -rs.conf.Refresh.LookbackDays)
		for _, change := range history {
			if change.Timestamp.Before(cutoff) {
				continue
			}
			if rs.snapshots.WriteSnapshot(&models.Snapshot{
				UserID:         userID,
				Platform:       p,
				Timestamp:      change.Timestamp,
				Rating:         change.Rating,
				TotalSolved:    cur.SolvedCount,
				TopicBreakdown: cur.TopicBreakdown,
			}) {
				written++
			}
		}
	}

	if rs.snapshots.WriteSnapshot(&models.Snapshot{
		UserID:         userID,
		Platform:       p,
		Timestamp:      now,
		Rating:         cur.Rating,
		TotalSolved:    cur.SolvedCount,
		TopicBreakdown: cur.TopicBreakdown,
	}) {
		written++
	}

	rs.logger.Debugf(providers.TypeIngest, "ingested %d snapshots for %s/%s", written, p, handle)
	return written, nil
}

// RefreshUser is the on-demand path: ingest the user's own handle(s),
// optionally narrowed to one platform. Runs outside the sweep guard.
func (rs *RefreshService) RefreshUser(ctx context.Context, userID string, filter models.Platform) int {
	written := 0
	for _, h := range rs.snapshots.HandlesFor(userID) {
		if filter != "" && filter != models.ModeOverall && h.Platform != filter {
			continue
		}
		n, _ := rs.Ingest(ctx, userID, h.Platform, h.Handle)
		written += n
	}
	return written
}

// SweepAll walks every verified handle serially under the rate
// limiter. Partial failure is the expected steady state; one failing
// handle never aborts the rest of the batch.
func (rs *RefreshService) SweepAll(ctx context.Context) (ok, failed int) {
	handles := rs.snapshots.VerifiedHandles()
	for _, h := range handles {
		if err := rs.limiter.Wait(ctx); err != nil {
			rs.logger.Warnf(providers.TypeScheduler, "sweep aborted: %s", err)
			return ok, failed
		}
		if _, err := rs.Ingest(ctx, h.UserID, h.Platform, h.Handle); err != nil {
			failed++
			continue
		}
		ok++
	}
	return ok, failed
}
