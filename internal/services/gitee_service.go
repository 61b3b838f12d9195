package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alimgiray/contribstats/internal/models"
	"github.com/alimgiray/contribstats/pkg/logger"
	"github.com/sirupsen/logrus"
)

// maxProfileSize caps how much of a profile page is read
const maxProfileSize = 8 << 20

const (
	browserUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	browserAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	browserAcceptLanguage = "zh-CN,zh;q=0.9,en;q=0.8"
)

// ContributionExtractor pulls daily counts out of a rendered profile page
type ContributionExtractor interface {
	Extract(page []byte) []models.DailyContribution
}

// giteeContributionPattern matches heatmap cells such as
// data-content='3个贡献：2024-03-10'.
var giteeContributionPattern = regexp.MustCompile(`data-content=['"](\d+)个贡献：(\d{4}-\d{2}-\d{2})['"]`)

// RegexContributionExtractor scans markup attributes with a regular expression
type RegexContributionExtractor struct {
	pattern *regexp.Regexp
}

func NewRegexContributionExtractor() *RegexContributionExtractor {
	return &RegexContributionExtractor{pattern: giteeContributionPattern}
}

// Extract returns matches in page order, zero counts included
func (e *RegexContributionExtractor) Extract(page []byte) []models.DailyContribution {
	matches := e.pattern.FindAllSubmatch(page, -1)
	days := make([]models.DailyContribution, 0, len(matches))
	for _, match := range matches {
		count, err := strconv.Atoi(string(match[1]))
		if err != nil {
			continue
		}
		days = append(days, models.DailyContribution{
			Date:  string(match[2]),
			Count: count,
		})
	}
	return days
}

type GiteeContributionService struct {
	baseURL    string
	httpClient *http.Client
	extractor  ContributionExtractor
	log        *logrus.Entry
}

func NewGiteeContributionService(baseURL string, timeout time.Duration) *GiteeContributionService {
	return &GiteeContributionService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		extractor:  NewRegexContributionExtractor(),
		log:        logger.Component("gitee"),
	}
}

// WithExtractor swaps the extraction strategy
func (s *GiteeContributionService) WithExtractor(extractor ContributionExtractor) *GiteeContributionService {
	s.extractor = extractor
	return s
}

// FetchContributions scrapes the public profile page of username
func (s *GiteeContributionService) FetchContributions(ctx context.Context, username string) ([]models.DailyContribution, error) {
	profileURL := s.baseURL + "/" + url.PathEscape(username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build Gitee request: %w", err)
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Accept", browserAccept)
	req.Header.Set("Accept-Language", browserAcceptLanguage)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch Gitee profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: Gitee returned %d for %s", ErrUnexpectedStatus, resp.StatusCode, username)
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read Gitee profile: %w", err)
	}

	days := s.extractor.Extract(page)

	total := 0
	for _, day := range days {
		if day.Count > 0 {
			total += day.Count
		}
	}
	s.log.WithFields(logrus.Fields{
		"username": username,
		"days":     len(days),
		"total":    total,
	}).Info("Scraped Gitee contributions")

	return days, nil
}

// DailyContributions never fails; errors are logged and yield an empty list
func (s *GiteeContributionService) DailyContributions(ctx context.Context, username string) []models.DailyContribution {
	days, err := s.FetchContributions(ctx, username)
	if err != nil {
		s.log.WithError(err).WithField("username", username).Warn("Failed to fetch Gitee contributions")
		return []models.DailyContribution{}
	}
	return days
}
