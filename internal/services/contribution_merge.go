package services

import (
	"fmt"
	"sort"

	"github.com/alimgiray/contribstats/internal/models"
)

// MergePolicy decides how the two sources combine into one daily list
type MergePolicy string

const (
	// MergePolicyGitee returns the Gitee list as-is; the GitHub aggregate is
	// computed but not merged. This is the default.
	MergePolicyGitee MergePolicy = "gitee"
	// MergePolicyCombined sums GitHub and Gitee counts per day.
	MergePolicyCombined MergePolicy = "combined"
)

// ParseMergePolicy maps a configuration value to a policy
func ParseMergePolicy(value string) (MergePolicy, error) {
	switch MergePolicy(value) {
	case "", MergePolicyGitee:
		return MergePolicyGitee, nil
	case MergePolicyCombined:
		return MergePolicyCombined, nil
	default:
		return "", fmt.Errorf("unknown merge policy %q", value)
	}
}

// MergeContributions produces the daily list fed to ReconstructSeries
func MergeContributions(policy MergePolicy, github models.GitHubContributions, gitee []models.DailyContribution) []models.DailyContribution {
	if policy != MergePolicyCombined {
		if gitee == nil {
			return []models.DailyContribution{}
		}
		return gitee
	}

	counts := make(map[string]int, len(github.Days)+len(gitee))
	for _, day := range github.Days {
		counts[day.Date] += day.Count
	}
	for _, day := range gitee {
		counts[day.Date] += day.Count
	}

	merged := make([]models.DailyContribution, 0, len(counts))
	for date, count := range counts {
		merged = append(merged, models.DailyContribution{Date: date, Count: count})
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Date < merged[j].Date
	})
	return merged
}
