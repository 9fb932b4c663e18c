package services

import (
	"math"
	"sort"
	"time"

	"cpd/internal/models"
)

type ConsistencyServiceInterface interface {
	ComputeActivity(userID string, filter models.Platform, windowDays int) ([]models.ActivityDay, models.ConsistencyMetrics)
}

// ConsistencyService turns cumulative solved counters into daily
// deltas and streak statistics. It works on raw snapshots, not the
// forward-filled series: a day without an observed snapshot is
// indistinguishable from inactivity by design.
type ConsistencyService struct {
	snapshots SnapshotServiceInterface
	now       func() time.Time
}

func NewConsistencyService(snapshots SnapshotServiceInterface) ConsistencyServiceInterface {
	return &ConsistencyService{snapshots: snapshots, now: time.Now}
}

func (cs *ConsistencyService) ComputeActivity(userID string, filter models.Platform, windowDays int) ([]models.ActivityDay, models.ConsistencyMetrics) {
	if windowDays <= 0 {
		windowDays = fallbackWindowDays
	}
	today := cs.now().UTC().Truncate(24 * time.Hour)
	from := today.AddDate(0, 0, 1-windowDays)
	to := today.AddDate(0, 0, 1).Add(-time.Second)

	platform := filter
	if filter == models.ModeOverall {
		platform = ""
	}
	snaps := cs.snapshots.SnapshotsInWindow(userID, platform, from, to)

	// Latest cumulative total per (day, platform). Snapshots arrive
	// sorted time-ascending, so later ones win.
	type dayKey struct {
		date     string
		platform models.Platform
	}
	cumulative := make(map[dayKey]int)
	daysSeen := make(map[string]struct{})
	for _, snap := range snaps {
		date := snap.Timestamp.UTC().Format(models.DateKey)
		cumulative[dayKey{date, snap.Platform}] = snap.TotalSolved
		daysSeen[date] = struct{}{}
	}

	dates := make([]string, 0, len(daysSeen))
	for date := range daysSeen {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	// Walk forward tracking the previous cumulative per platform. The
	// first sighting of a platform sets the baseline and emits no
	// delta; apparent decreases clamp to zero instead of erroring.
	prev := make(map[models.Platform]int)
	var activity []models.ActivityDay
	for _, date := range dates {
		delta := 0
		for _, p := range models.KnownPlatforms() {
			cur, ok := cumulative[dayKey{date, p}]
			if !ok {
				continue
			}
			if prevVal, seen := prev[p]; seen {
				delta += max(0, cur-prevVal)
			}
			prev[p] = cur
		}
		if delta > 0 {
			activity = append(activity, models.ActivityDay{Date: date, Count: delta})
		}
	}

	return activity, cs.metrics(activity, today, windowDays)
}

func (cs *ConsistencyService) metrics(activity []models.ActivityDay, today time.Time, windowDays int) models.ConsistencyMetrics {
	m := models.ConsistencyMetrics{}
	if len(activity) == 0 {
		return m
	}

	active := make(map[string]struct{}, len(activity))
	for _, day := range activity {
		active[day.Date] = struct{}{}
	}

	// Current streak: walk backward from today, skipping inactive days
	// until the most recent active day, then count the contiguous run.
	// The first gap after the run ends it.
	windowStart := today.AddDate(0, 0, 1-windowDays)
	day := today
	for day.Compare(windowStart) >= 0 {
		if _, ok := active[day.Format(models.DateKey)]; ok {
			break
		}
		day = day.AddDate(0, 0, -1)
	}
	for day.Compare(windowStart) >= 0 {
		if _, ok := active[day.Format(models.DateKey)]; !ok {
			break
		}
		m.CurrentStreak++
		day = day.AddDate(0, 0, -1)
	}

	// Longest streak: longest run of calendar-adjacent active days.
	run := 1
	m.LongestStreak = 1
	for i := 1; i < len(activity); i++ {
		prevDay, _ := time.Parse(models.DateKey, activity[i-1].Date)
		curDay, _ := time.Parse(models.DateKey, activity[i].Date)
		if curDay.Sub(prevDay) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > m.LongestStreak {
			m.LongestStreak = run
		}
	}

	m.ActiveDays = len(activity)
	m.ActiveDaysPercentage = round1(float64(len(activity)) / float64(windowDays) * 100)

	// Mean calendar distance between consecutive active days; spans
	// before the first and after the last are not counted.
	if len(activity) > 1 {
		var totalGap float64
		for i := 1; i < len(activity); i++ {
			prevDay, _ := time.Parse(models.DateKey, activity[i-1].Date)
			curDay, _ := time.Parse(models.DateKey, activity[i].Date)
			totalGap += curDay.Sub(prevDay).Hours() / 24
		}
		m.AvgGapDays = round1(totalGap / float64(len(activity)-1))
	}

	return m
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
