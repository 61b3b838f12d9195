package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/alimgiray/contribstats/internal/models"
)

// windowMonths is the number of calendar months covered, current month included
const windowMonths = 5

// ContributionWindowFor returns the trailing window ending on now's calendar
// date. Bounds are built from date components rather than formatted instants
// so the time zone of now never shifts them.
func ContributionWindowFor(now time.Time) models.ContributionWindow {
	startYear, startMonth := windowStart(now)
	year, month, day := now.Date()

	return models.ContributionWindow{
		Start: fmt.Sprintf("%04d-%02d-01", startYear, int(startMonth)),
		End:   fmt.Sprintf("%04d-%02d-%02d", year, int(month), day),
	}
}

func windowStart(now time.Time) (int, time.Month) {
	year, month, _ := now.Date()
	startMonth := int(month) - 1 - (windowMonths - 1)
	startYear := year
	if startMonth < 0 {
		startMonth += 12
		startYear--
	}
	return startYear, time.Month(startMonth + 1)
}

// ReconstructSeries turns a sparse list into one entry per day of the window
// ending at now. Entries outside the window are dropped and a repeated date
// keeps its last count.
func ReconstructSeries(days []models.DailyContribution, now time.Time) []models.DailyContribution {
	window := ContributionWindowFor(now)

	counts := make(map[string]int, len(days))
	for _, day := range days {
		if window.Contains(day.Date) {
			counts[day.Date] = day.Count
		}
	}

	startYear, startMonth := windowStart(now)
	year, month, dayOfMonth := now.Date()
	// Noon UTC keeps AddDate clear of DST transitions.
	current := time.Date(startYear, startMonth, 1, 12, 0, 0, 0, time.UTC)
	last := time.Date(year, month, dayOfMonth, 12, 0, 0, 0, time.UTC)

	series := make([]models.DailyContribution, 0, int(last.Sub(current).Hours()/24)+1)
	for !current.After(last) {
		date := current.Format(models.DateLayout)
		series = append(series, models.DailyContribution{Date: date, Count: counts[date]})
		current = current.AddDate(0, 0, 1)
	}

	return series
}

// ZeroSeries is the well-formed fallback for the window ending at now
func ZeroSeries(now time.Time) []models.DailyContribution {
	return ReconstructSeries(nil, now)
}

// AggregateByMonth sums daily counts into month buckets. Malformed dates are skipped.
func AggregateByMonth(days []models.DailyContribution) models.MonthlyAggregate {
	aggregate := make(models.MonthlyAggregate)
	for _, day := range days {
		date, err := time.Parse(models.DateLayout, day.Date)
		if err != nil {
			continue
		}
		key := models.MonthKey(date.Year(), date.Month())
		aggregate[key] += day.Count
	}
	return aggregate
}

// SortedMonthKeys returns the aggregate keys in chronological order
func SortedMonthKeys(aggregate models.MonthlyAggregate) []string {
	type month struct {
		key         string
		year, month int
	}

	months := make([]month, 0, len(aggregate))
	for key := range aggregate {
		var m month
		m.key = key
		if _, err := fmt.Sscanf(key, "%d.%d", &m.year, &m.month); err != nil {
			continue
		}
		months = append(months, m)
	}

	sort.Slice(months, func(i, j int) bool {
		if months[i].year != months[j].year {
			return months[i].year < months[j].year
		}
		return months[i].month < months[j].month
	})

	keys := make([]string, len(months))
	for i, m := range months {
		keys[i] = m.key
	}
	return keys
}
