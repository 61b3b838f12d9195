package models

import (
	"fmt"
	"time"
)

// DateLayout is the canonical calendar-date format used for all contribution keys
const DateLayout = "2006-01-02"

// DailyContribution is the number of contributions made on one calendar day
type DailyContribution struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// MonthlyAggregate maps "{year}.{month}" (month 1-12, unpadded) to a summed count
type MonthlyAggregate map[string]int

// MonthKey formats the aggregate key for a year and month
func MonthKey(year int, month time.Month) string {
	return fmt.Sprintf("%d.%d", year, int(month))
}

// GitHubContributions is what the GitHub calendar query yields
type GitHubContributions struct {
	Days    []DailyContribution
	Monthly MonthlyAggregate
}

// ContributionWindow is an inclusive date range in DateLayout form
type ContributionWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Contains reports whether date lies inside the window. Plain string
// comparison is valid because DateLayout is fixed width.
func (w ContributionWindow) Contains(date string) bool {
	return date >= w.Start && date <= w.End
}

// ContributionCacheEntry is a serialized series stored under a cache key
type ContributionCacheEntry struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired checks whether the entry is past its TTL at now
func (e *ContributionCacheEntry) IsExpired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// CacheKey builds the cache key for a username pair. Empty usernames are kept
// as-is, so two callers that both omit a username share an entry.
func CacheKey(githubUsername, giteeUsername string) string {
	return "contributions:" + githubUsername + ":" + giteeUsername
}

// ContributionReport is a series together with its window and month totals
type ContributionReport struct {
	Window  ContributionWindow  `json:"window"`
	Days    []DailyContribution `json:"days"`
	Summary MonthlyAggregate    `json:"summary"`
	Total   int                 `json:"total"`
}
