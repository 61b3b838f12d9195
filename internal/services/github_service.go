package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alimgiray/contribstats/internal/models"
	"github.com/alimgiray/contribstats/pkg/logger"
	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const contributionCalendarQuery = `
query ($username: String!) {
  user(login: $username) {
    contributionsCollection {
      contributionCalendar {
        weeks {
          contributionDays {
            date
            contributionCount
          }
        }
      }
    }
  }
}`

type GitHubContributionService struct {
	token  string
	client *github.Client
	log    *logrus.Entry
}

type graphQLRequest struct {
	Query     string            `json:"query"`
	Variables map[string]string `json:"variables"`
}

// contributionCalendarResponse mirrors the GraphQL payload; nested objects are
// pointers because GitHub returns null for unknown logins.
type contributionCalendarResponse struct {
	Data struct {
		User *struct {
			ContributionsCollection *struct {
				ContributionCalendar *struct {
					Weeks []struct {
						ContributionDays []struct {
							Date              string `json:"date"`
							ContributionCount int    `json:"contributionCount"`
						} `json:"contributionDays"`
					} `json:"weeks"`
				} `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// NewGitHubContributionService creates the GitHub calendar fetcher. An empty
// token disables it; apiURL overrides https://api.github.com/.
func NewGitHubContributionService(token, apiURL string, timeout time.Duration) (*GitHubContributionService, error) {
	httpClient := &http.Client{Timeout: timeout}
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = timeout
	}

	client := github.NewClient(httpClient)
	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		baseURL, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid GitHub API URL: %w", err)
		}
		client.BaseURL = baseURL
	}

	return &GitHubContributionService{
		token:  token,
		client: client,
		log:    logger.Component("github"),
	}, nil
}

// Enabled reports whether a credential is configured
func (s *GitHubContributionService) Enabled() bool {
	return s.token != ""
}

// FetchContributions queries the contribution calendar of username. Without a
// credential it returns an empty result and makes no request.
func (s *GitHubContributionService) FetchContributions(ctx context.Context, username string) (models.GitHubContributions, error) {
	result := models.GitHubContributions{
		Days:    []models.DailyContribution{},
		Monthly: models.MonthlyAggregate{},
	}

	if !s.Enabled() {
		s.log.Warn("GITHUB_TOKEN is not configured, skipping GitHub contributions")
		return result, nil
	}

	req, err := s.client.NewRequest(http.MethodPost, "graphql", graphQLRequest{
		Query:     contributionCalendarQuery,
		Variables: map[string]string{"username": username},
	})
	if err != nil {
		return result, fmt.Errorf("failed to build GitHub GraphQL request: %w", err)
	}

	var payload contributionCalendarResponse
	if _, err := s.client.Do(ctx, req, &payload); err != nil {
		return result, fmt.Errorf("GitHub GraphQL request failed: %w", err)
	}

	if len(payload.Errors) > 0 {
		messages := make([]string, 0, len(payload.Errors))
		for _, e := range payload.Errors {
			messages = append(messages, e.Message)
		}
		return result, fmt.Errorf("%w: %s", ErrGraphQL, strings.Join(messages, "; "))
	}

	user := payload.Data.User
	if user == nil || user.ContributionsCollection == nil || user.ContributionsCollection.ContributionCalendar == nil {
		s.log.WithField("username", username).Info("GitHub returned no contribution calendar")
		return result, nil
	}

	for _, week := range user.ContributionsCollection.ContributionCalendar.Weeks {
		for _, day := range week.ContributionDays {
			result.Days = append(result.Days, models.DailyContribution{
				Date:  day.Date,
				Count: day.ContributionCount,
			})
		}
	}
	result.Monthly = AggregateByMonth(result.Days)

	s.log.WithFields(logrus.Fields{
		"username": username,
		"days":     len(result.Days),
		"months":   len(result.Monthly),
	}).Debug("Fetched GitHub contribution calendar")

	return result, nil
}

// MonthlyContributions returns the month-keyed totals for username and never
// fails; any error is logged and yields an empty mapping.
func (s *GitHubContributionService) MonthlyContributions(ctx context.Context, username string) models.MonthlyAggregate {
	result, err := s.FetchContributions(ctx, username)
	if err != nil {
		s.log.WithError(err).WithField("username", username).Warn("Failed to fetch GitHub contributions")
		return models.MonthlyAggregate{}
	}
	return result.Monthly
}
