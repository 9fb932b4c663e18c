package models

import "time"

type Platform string

const (
	PlatformCodeforces Platform = "codeforces"
	PlatformLeetcode   Platform = "leetcode"

	// ModeOverall is a filter sentinel combining all platforms.
	// It is never stored on a Snapshot.
	ModeOverall Platform = "overall"
)

func KnownPlatforms() []Platform {
	return []Platform{PlatformCodeforces, PlatformLeetcode}
}

func IsKnownPlatform(p Platform) bool {
	return p == PlatformCodeforces || p == PlatformLeetcode
}

// Snapshot is one point-in-time measurement for a user on one
// platform. Immutable once written; at most one per
// (UserID, Platform, Timestamp).
type Snapshot struct {
	UserID         string         `json:"user_id"`
	Platform       Platform       `json:"platform"`
	Timestamp      time.Time      `json:"timestamp"`
	Rating         int            `json:"rating"`
	TotalSolved    int            `json:"total_solved"`
	TopicBreakdown map[string]int `json:"topic_breakdown,omitempty"`
}

// PlatformHandle links a user to an external account, one per
// (UserID, Platform). CurrentRating is a denormalized cache refreshed
// whenever a newer snapshot for the pair is written.
type PlatformHandle struct {
	UserID        string    `json:"user_id"`
	Platform      Platform  `json:"platform"`
	Handle        string    `json:"handle"`
	Verified      bool      `json:"verified"`
	CurrentRating int       `json:"current_rating"`
	CreatedAt     time.Time `json:"created_at"`
}

// DailyPoint is one day of a reconstructed series. Value is nil for
// days before the user's first data point.
type DailyPoint struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

type DailySeries struct {
	UserID   string       `json:"user_id"`
	Platform Platform     `json:"platform"`
	Points   []DailyPoint `json:"points"`
}

// ActivityDay records new problems solved on one active day. Days
// with a zero delta never appear.
type ActivityDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type ConsistencyMetrics struct {
	CurrentStreak        int     `json:"current_streak"`
	LongestStreak        int     `json:"longest_streak"`
	ActiveDays           int     `json:"active_days"`
	ActiveDaysPercentage float64 `json:"active_days_percentage"`
	AvgGapDays           float64 `json:"avg_gap_days"`
}

// DateKey is the canonical day format used on every series axis.
const DateKey = "2006-01-02"
