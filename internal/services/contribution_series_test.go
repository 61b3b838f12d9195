package services

import (
	"testing"
	"time"

	"github.com/alimgiray/contribstats/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var march15 = time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)

func TestContributionWindowFor(t *testing.T) {
	testCases := []struct {
		name          string
		now           time.Time
		expectedStart string
		expectedEnd   string
	}{
		{
			name:          "Crosses year boundary",
			now:           march15,
			expectedStart: "2023-11-01",
			expectedEnd:   "2024-03-15",
		},
		{
			name:          "Same year",
			now:           time.Date(2024, time.August, 2, 0, 0, 0, 0, time.UTC),
			expectedStart: "2024-04-01",
			expectedEnd:   "2024-08-02",
		},
		{
			name:          "May starts in January",
			now:           time.Date(2024, time.May, 31, 23, 59, 0, 0, time.UTC),
			expectedStart: "2024-01-01",
			expectedEnd:   "2024-05-31",
		},
		{
			name:          "April starts in December",
			now:           time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
			expectedStart: "2024-12-01",
			expectedEnd:   "2025-04-01",
		},
		{
			name:          "Local calendar date is used",
			now:           time.Date(2024, time.March, 15, 1, 0, 0, 0, time.FixedZone("UTC+8", 8*3600)),
			expectedStart: "2023-11-01",
			expectedEnd:   "2024-03-15",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			window := ContributionWindowFor(tc.now)
			assert.Equal(t, tc.expectedStart, window.Start)
			assert.Equal(t, tc.expectedEnd, window.End)
		})
	}
}

func TestReconstructSeriesDensity(t *testing.T) {
	series := ReconstructSeries(nil, march15)

	// Nov 30 + Dec 31 + Jan 31 + Feb 29 + Mar 15
	require.Len(t, series, 136)
	assert.Equal(t, "2023-11-01", series[0].Date)
	assert.Equal(t, "2024-03-15", series[len(series)-1].Date)

	seen := make(map[string]bool)
	prev := time.Date(2023, time.October, 31, 0, 0, 0, 0, time.UTC)
	for _, day := range series {
		assert.False(t, seen[day.Date], "duplicate date %s", day.Date)
		seen[day.Date] = true

		date, err := time.Parse(models.DateLayout, day.Date)
		require.NoError(t, err)
		assert.True(t, prev.AddDate(0, 0, 1).Equal(date), "gap before %s", day.Date)
		prev = date

		assert.Equal(t, 0, day.Count)
	}
}

func TestReconstructSeriesFillsAndFilters(t *testing.T) {
	input := []models.DailyContribution{
		{Date: "2024-03-10", Count: 3},
		{Date: "2023-10-31", Count: 9},
		{Date: "2024-03-16", Count: 7},
		{Date: "2023-11-01", Count: 1},
		{Date: "2024-02-29", Count: 4},
		{Date: "2024-02-29", Count: 5},
	}

	series := ReconstructSeries(input, march15)
	require.Len(t, series, 136)

	counts := make(map[string]int)
	total := 0
	for _, day := range series {
		counts[day.Date] = day.Count
		total += day.Count
	}

	assert.Equal(t, 3, counts["2024-03-10"])
	assert.Equal(t, 1, counts["2023-11-01"])
	assert.Equal(t, 5, counts["2024-02-29"], "last duplicate wins")
	assert.NotContains(t, counts, "2023-10-31")
	assert.NotContains(t, counts, "2024-03-16")
	assert.Equal(t, 9, total)
}

func TestReconstructSeriesDoesNotAliasInput(t *testing.T) {
	input := []models.DailyContribution{{Date: "2024-03-01", Count: 2}}
	series := ReconstructSeries(input, march15)

	input[0].Count = 100
	for _, day := range series {
		if day.Date == "2024-03-01" {
			assert.Equal(t, 2, day.Count)
		}
	}
}

func TestZeroSeries(t *testing.T) {
	series := ZeroSeries(march15)
	require.Len(t, series, 136)
	for _, day := range series {
		assert.Zero(t, day.Count)
	}
}

func TestAggregateByMonth(t *testing.T) {
	aggregate := AggregateByMonth([]models.DailyContribution{
		{Date: "2023-12-31", Count: 2},
		{Date: "2024-01-01", Count: 3},
		{Date: "2024-01-20", Count: 4},
		{Date: "not-a-date", Count: 50},
	})

	assert.Equal(t, models.MonthlyAggregate{"2023.12": 2, "2024.1": 7}, aggregate)
}

func TestSortedMonthKeys(t *testing.T) {
	keys := SortedMonthKeys(models.MonthlyAggregate{
		"2024.3":  1,
		"2023.12": 1,
		"2024.10": 1,
		"2024.1":  1,
	})

	assert.Equal(t, []string{"2023.12", "2024.1", "2024.3", "2024.10"}, keys)
}
