package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/alimgiray/contribstats/internal/models"
	"github.com/alimgiray/contribstats/pkg/logger"
	"github.com/alimgiray/contribstats/pkg/metrics"
	"github.com/sirupsen/logrus"
)

const (
	sourceGitHub = "github"
	sourceGitee  = "gitee"
)

// GitHubFetcher yields the GitHub contribution calendar of a login
type GitHubFetcher interface {
	Enabled() bool
	FetchContributions(ctx context.Context, username string) (models.GitHubContributions, error)
}

// GiteeFetcher yields the daily counts shown on a Gitee profile
type GiteeFetcher interface {
	FetchContributions(ctx context.Context, username string) ([]models.DailyContribution, error)
}

// ContributionCache is a string key-value store with per-entry TTL
type ContributionCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

type ContributionService struct {
	github  GitHubFetcher
	gitee   GiteeFetcher
	cache   ContributionCache
	metrics *metrics.Manager
	policy  MergePolicy
	ttl     time.Duration
	now     func() time.Time
	log     *logrus.Entry
}

// NewContributionService wires the fetchers and cache. cache may be nil, in
// which case every lookup is computed live.
func NewContributionService(
	github GitHubFetcher,
	gitee GiteeFetcher,
	cache ContributionCache,
	metricsManager *metrics.Manager,
	policy MergePolicy,
	ttl time.Duration,
) *ContributionService {
	return &ContributionService{
		github:  github,
		gitee:   gitee,
		cache:   cache,
		metrics: metricsManager,
		policy:  policy,
		ttl:     ttl,
		now:     time.Now,
		log:     logger.Component("contributions"),
	}
}

// GetContributions returns the dense series for the trailing window. It never
// fails: source and cache errors are logged, and an unexpected failure yields
// an all-zero series.
func (s *ContributionService) GetContributions(ctx context.Context, githubUsername, giteeUsername string) (series []models.DailyContribution) {
	now := s.now()
	fields := logrus.Fields{"github_username": githubUsername, "gitee_username": giteeUsername}

	defer func() {
		if r := recover(); r != nil {
			s.log.WithFields(fields).WithField("panic", fmt.Sprint(r)).Error("Failed to build contributions, returning zero series")
			s.metrics.RecordFallback()
			series = ZeroSeries(now)
		}
	}()

	key := models.CacheKey(githubUsername, giteeUsername)
	if cached, ok := s.lookup(ctx, key); ok {
		return cached
	}

	// A caller that goes away must not cut the fetches short, or the cache
	// would hold a zeroed series. The fetchers' own timeouts still bound them.
	workCtx := context.WithoutCancel(ctx)

	start := time.Now()
	githubResult, giteeDays := s.fetchAll(workCtx, githubUsername, giteeUsername)
	merged := MergeContributions(s.policy, githubResult, giteeDays)
	series = ReconstructSeries(merged, now)
	s.metrics.ObserveCompute(time.Since(start))

	s.store(workCtx, key, series)

	s.log.WithFields(fields).WithField("days", len(series)).Debug("Built contribution series")
	return series
}

// BuildReport wraps GetContributions with the window and month totals
func (s *ContributionService) BuildReport(ctx context.Context, githubUsername, giteeUsername string) models.ContributionReport {
	days := s.GetContributions(ctx, githubUsername, giteeUsername)

	total := 0
	for _, day := range days {
		total += day.Count
	}

	window := ContributionWindowFor(s.now())
	if len(days) > 0 {
		window = models.ContributionWindow{Start: days[0].Date, End: days[len(days)-1].Date}
	}

	return models.ContributionReport{
		Window:  window,
		Days:    days,
		Summary: AggregateByMonth(days),
		Total:   total,
	}
}

func (s *ContributionService) lookup(ctx context.Context, key string) ([]models.DailyContribution, bool) {
	if s.cache == nil {
		return nil, false
	}

	value, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Contribution cache lookup failed, computing live")
		s.metrics.RecordCacheLookup(metrics.CacheError)
		return nil, false
	}
	if !ok {
		s.metrics.RecordCacheLookup(metrics.CacheMiss)
		return nil, false
	}

	var series []models.DailyContribution
	if err := json.Unmarshal([]byte(value), &series); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Ignoring undecodable cached contributions")
		s.metrics.RecordCacheLookup(metrics.CacheCorrupt)
		return nil, false
	}

	s.metrics.RecordCacheLookup(metrics.CacheHit)
	return series, true
}

func (s *ContributionService) store(ctx context.Context, key string, series []models.DailyContribution) {
	if s.cache == nil {
		return
	}

	value, err := json.Marshal(series)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Failed to encode contributions for cache")
		s.metrics.RecordCacheWrite(metrics.CacheError)
		return
	}

	if err := s.cache.Set(ctx, key, string(value), s.ttl); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("Failed to cache contributions")
		s.metrics.RecordCacheWrite(metrics.CacheError)
		return
	}
	s.metrics.RecordCacheWrite(metrics.CacheStored)
}

// fetchAll runs both sources concurrently and waits for both. A failing or
// panicking source degrades to an empty value without affecting the other.
func (s *ContributionService) fetchAll(ctx context.Context, githubUsername, giteeUsername string) (models.GitHubContributions, []models.DailyContribution) {
	githubResult := models.GitHubContributions{Days: []models.DailyContribution{}, Monthly: models.MonthlyAggregate{}}
	giteeDays := []models.DailyContribution{}

	var wg sync.WaitGroup

	if s.github != nil && s.github.Enabled() && githubUsername != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.settle(sourceGitHub, githubUsername, func() error {
				result, err := s.github.FetchContributions(ctx, githubUsername)
				if err != nil {
					return err
				}
				githubResult = result
				return nil
			})
		}()
	} else {
		s.metrics.RecordFetch(sourceGitHub, metrics.OutcomeSkipped)
	}

	if s.gitee != nil && giteeUsername != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.settle(sourceGitee, giteeUsername, func() error {
				days, err := s.gitee.FetchContributions(ctx, giteeUsername)
				if err != nil {
					return err
				}
				if days != nil {
					giteeDays = days
				}
				return nil
			})
		}()
	} else {
		s.metrics.RecordFetch(sourceGitee, metrics.OutcomeSkipped)
	}

	wg.Wait()
	return githubResult, giteeDays
}

// settle runs fetch, converting errors and panics into a logged empty result
func (s *ContributionService) settle(source, username string, fetch func() error) {
	entry := s.log.WithFields(logrus.Fields{"source": source, "username": username})

	defer func() {
		if r := recover(); r != nil {
			entry.WithField("panic", fmt.Sprint(r)).Warn("Contribution source panicked, using empty result")
			s.metrics.RecordFetch(source, metrics.OutcomeRecovered)
		}
	}()

	if err := fetch(); err != nil {
		entry.WithError(err).Warn("Contribution source failed, using empty result")
		s.metrics.RecordFetch(source, metrics.OutcomeFailure)
		return
	}
	s.metrics.RecordFetch(source, metrics.OutcomeSuccess)
}
