package services

import (
	"time"

	"cpd/internal/models"
	"cpd/internal/structures"
)

// AggregationMode selects how peer series are combined.
type AggregationMode string

const (
	ModeAverage AggregationMode = "average"
	ModePerPeer AggregationMode = "per-peer"
)

// AlignedSeries is a multi-user view on one shared calendar axis.
// Exactly one of PeerAverage / Peers is populated, per mode.
type AlignedSeries struct {
	Dates       []string              `json:"dates"`
	Primary     []*float64            `json:"primary"`
	PeerAverage []*float64            `json:"peer_average,omitempty"`
	Peers       map[string][]*float64 `json:"peers,omitempty"`
}

type AnalyticsServiceInterface interface {
	Reconstruct(userID string, platform models.Platform, windowDays int) models.DailySeries
	ReconstructOverall(userID string, windowDays int) models.DailySeries
	SeriesFor(userID string, filter models.Platform, windowDays int) models.DailySeries
	Aggregate(primaryID string, peerIDs []string, filter models.Platform, mode AggregationMode, windowDays int) AlignedSeries
	TopicBreakdown(userID string, filter models.Platform) map[string]int
}

// AnalyticsService rebuilds daily series from the sparse snapshot
// store. All outputs share a calendar axis generated independently of
// data availability, so cross-user alignment holds by construction.
type AnalyticsService struct {
	snapshots SnapshotServiceInterface
	conf      *structures.Config
	now       func() time.Time
}

func NewAnalyticsService(snapshots SnapshotServiceInterface, conf *structures.Config) AnalyticsServiceInterface {
	return &AnalyticsService{
		snapshots: snapshots,
		conf:      conf,
		now:       time.Now,
	}
}

// fallbackWindowDays bounds series requests that arrive without a
// usable window.
const fallbackWindowDays = 30

// axis returns windowDays consecutive day starts (UTC), ending today.
func (as *AnalyticsService) axis(windowDays int) []time.Time {
	if windowDays <= 0 {
		windowDays = fallbackWindowDays
	}
	end := as.now().UTC().Truncate(24 * time.Hour)
	days := make([]time.Time, windowDays)
	for i := range days {
		days[i] = end.AddDate(0, 0, i-windowDays+1)
	}
	return days
}

func dateStrings(axis []time.Time) []string {
	out := make([]string, len(axis))
	for i, d := range axis {
		out[i] = d.Format(models.DateKey)
	}
	return out
}

// forwardFill maps snapshots onto the axis: each day takes the rating
// of the latest snapshot dated on or before it; days before the first
// snapshot stay absent.
func forwardFill(snaps []*models.Snapshot, axis []time.Time) []*float64 {
	values := make([]*float64, len(axis))
	idx := 0
	var last *models.Snapshot
	for i, day := range axis {
		dayEnd := day.AddDate(0, 0, 1)
		for idx < len(snaps) && snaps[idx].Timestamp.Before(dayEnd) {
			last = snaps[idx]
			idx++
		}
		if last != nil {
			v := float64(last.Rating)
			values[i] = &v
		}
	}
	return values
}

func (as *AnalyticsService) ratingRange(p models.Platform) structures.PlatformRange {
	switch p {
	case models.PlatformCodeforces:
		return as.conf.Platforms.Codeforces
	default:
		return as.conf.Platforms.Leetcode
	}
}

// normalize rescales a platform rating onto 0-100, clamped at the
// declared range bounds rather than extrapolated.
func normalize(rating float64, r structures.PlatformRange) float64 {
	span := float64(r.MaxRating - r.MinRating)
	if span <= 0 {
		return 0
	}
	v := (rating - float64(r.MinRating)) / span * 100
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Reconstruct returns one user's forward-filled raw rating series for
// a single platform. The result always has exactly windowDays points.
func (as *AnalyticsService) Reconstruct(userID string, platform models.Platform, windowDays int) models.DailySeries {
	axis := as.axis(windowDays)
	from := axis[0]
	to := axis[len(axis)-1].AddDate(0, 0, 1).Add(-time.Second)

	snaps := as.snapshots.SnapshotsInWindow(userID, platform, from, to)
	values := forwardFill(snaps, axis)

	points := make([]models.DailyPoint, len(axis))
	for i, day := range axis {
		points[i] = models.DailyPoint{Date: day.Format(models.DateKey), Value: values[i]}
	}
	return models.DailySeries{UserID: userID, Platform: platform, Points: points}
}

// ReconstructOverall merges all platforms into one normalized series.
// A day's value is the mean of the normalized ratings of every
// platform with a positive rating that day; a single platform stands
// alone; no platform means the day is absent.
func (as *AnalyticsService) ReconstructOverall(userID string, windowDays int) models.DailySeries {
	axis := as.axis(windowDays)

	perPlatform := make(map[models.Platform][]*float64)
	for _, p := range models.KnownPlatforms() {
		perPlatform[p] = forwardFill(
			as.snapshots.SnapshotsInWindow(userID, p, axis[0], axis[len(axis)-1].AddDate(0, 0, 1).Add(-time.Second)),
			axis,
		)
	}

	points := make([]models.DailyPoint, len(axis))
	for i, day := range axis {
		var sum float64
		var n int
		for _, p := range models.KnownPlatforms() {
			raw := perPlatform[p][i]
			if raw == nil || *raw <= 0 {
				continue
			}
			sum += normalize(*raw, as.ratingRange(p))
			n++
		}
		point := models.DailyPoint{Date: day.Format(models.DateKey)}
		if n > 0 {
			v := sum / float64(n)
			point.Value = &v
		}
		points[i] = point
	}
	return models.DailySeries{UserID: userID, Platform: models.ModeOverall, Points: points}
}

// SeriesFor dispatches on the filter: a concrete platform yields the
// raw rating series, the overall sentinel the normalized merge.
func (as *AnalyticsService) SeriesFor(userID string, filter models.Platform, windowDays int) models.DailySeries {
	if filter == models.ModeOverall || filter == "" {
		return as.ReconstructOverall(userID, windowDays)
	}
	return as.Reconstruct(userID, filter, windowDays)
}

// Aggregate aligns the primary user's series with up to four peers on
// one axis. Leading days before the primary's first data point are
// trimmed from every series to keep alignment.
func (as *AnalyticsService) Aggregate(primaryID string, peerIDs []string, filter models.Platform, mode AggregationMode, windowDays int) AlignedSeries {
	primary := as.SeriesFor(primaryID, filter, windowDays)

	out := AlignedSeries{
		Dates:   make([]string, len(primary.Points)),
		Primary: make([]*float64, len(primary.Points)),
	}
	for i, pt := range primary.Points {
		out.Dates[i] = pt.Date
		out.Primary[i] = pt.Value
	}

	peerValues := make(map[string][]*float64, len(peerIDs))
	for _, peerID := range peerIDs {
		series := as.SeriesFor(peerID, filter, windowDays)
		values := make([]*float64, len(series.Points))
		for i, pt := range series.Points {
			values[i] = pt.Value
		}
		peerValues[peerID] = values
	}

	switch mode {
	case ModePerPeer:
		out.Peers = peerValues
	default:
		avg := make([]*float64, len(out.Dates))
		for i := range out.Dates {
			var sum float64
			var n int
			for _, values := range peerValues {
				v := values[i]
				if v == nil || *v <= 0 {
					continue
				}
				sum += *v
				n++
			}
			if n > 0 {
				mean := sum / float64(n)
				avg[i] = &mean
			}
		}
		out.PeerAverage = avg
	}

	return trimLeadingAbsent(out)
}

// trimLeadingAbsent cuts the axis forward to the primary's first
// non-absent day so an all-absent lead-in never renders as a
// baseline. Every series is cut at the same index.
func trimLeadingAbsent(s AlignedSeries) AlignedSeries {
	start := -1
	for i, v := range s.Primary {
		if v != nil {
			start = i
			break
		}
	}
	if start <= 0 {
		return s
	}

	s.Dates = s.Dates[start:]
	s.Primary = s.Primary[start:]
	if s.PeerAverage != nil {
		s.PeerAverage = s.PeerAverage[start:]
	}
	for id, values := range s.Peers {
		s.Peers[id] = values[start:]
	}
	return s
}

// TopicBreakdown returns the latest cumulative per-topic counts. In
// overall mode platform maps are summed key-wise; topic keys vary by
// platform, so disjoint keys simply coexist.
func (as *AnalyticsService) TopicBreakdown(userID string, filter models.Platform) map[string]int {
	out := make(map[string]int)
	for _, p := range models.KnownPlatforms() {
		if filter != models.ModeOverall && filter != "" && filter != p {
			continue
		}
		snap := as.snapshots.LatestSnapshot(userID, p)
		if snap == nil {
			continue
		}
		for topic, count := range snap.TopicBreakdown {
			out[topic] += count
		}
	}
	return out
}
