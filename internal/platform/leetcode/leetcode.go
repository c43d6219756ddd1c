// Package leetcode fetches solved-problem counts from LeetCode's GraphQL endpoint.
package leetcode

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/algotrack/backend/internal/domain"
	"github.com/algotrack/backend/internal/platform/httpfetch"
)

// DefaultBaseURL is the public LeetCode origin
const DefaultBaseURL = "https://leetcode.com"

const solvedQuery = `query userProblemsSolved($username: String!) {
  matchedUser(username: $username) {
    submitStats {
      acSubmissionNum {
        difficulty
        count
      }
    }
  }
}`

type graphQLRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

type graphQLResponse struct {
	Data struct {
		MatchedUser *struct {
			SubmitStats struct {
				AcSubmissionNum []difficultyCount `json:"acSubmissionNum"`
			} `json:"submitStats"`
		} `json:"matchedUser"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type difficultyCount struct {
	Difficulty string `json:"difficulty"`
	Count      int    `json:"count"`
}

// Client handles LeetCode requests
type Client struct {
	fetcher *httpfetch.Fetcher
	baseURL string
	logger  *zap.Logger
}

// New creates a LeetCode client
func New(opts ...httpfetch.Option) *Client {
	cfg := httpfetch.NewConfig(DefaultBaseURL, opts...)
	return &Client{
		fetcher: httpfetch.NewFetcher(cfg),
		baseURL: cfg.BaseURL,
		logger:  cfg.Logger.With(zap.String("platform", string(domain.PlatformLeetCode))),
	}
}

// Platform returns the platform identifier
func (c *Client) Platform() domain.Platform { return domain.PlatformLeetCode }

// Capabilities reports what the public endpoint exposes
func (c *Client) Capabilities() domain.Capabilities {
	return domain.Capabilities{Implemented: true, DifficultyBreakdown: true}
}

// FetchUserData retrieves the per-difficulty accepted counts for username
func (c *Client) FetchUserData(ctx context.Context, username string) (*domain.PlatformStats, error) {
	c.logger.Debug("Fetching leetcode stats", zap.String("username", username))

	req := graphQLRequest{
		OperationName: "userProblemsSolved",
		Query:         solvedQuery,
		Variables:     map[string]any{"username": username},
	}
	body, err := c.fetcher.PostJSON(ctx, c.baseURL+"/graphql", req, map[string]string{
		"Referer": c.baseURL + "/" + username + "/",
	})
	if err != nil {
		return nil, err
	}
	return parseResponse(body)
}

func parseResponse(body []byte) (*domain.PlatformStats, error) {
	var resp graphQLResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse leetcode response: %w", err)
	}
	// an unknown user comes back as a null matchedUser, usually with an error message
	if resp.Data.MatchedUser == nil {
		return nil, domain.ErrProfileNotFound
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("leetcode API error: %s", resp.Errors[0].Message)
	}
	return computeStats(resp.Data.MatchedUser.SubmitStats.AcSubmissionNum), nil
}

// computeStats reduces acSubmissionNum to the normalized record.
// The "All" entry is ignored; the total is the sum of the three tiers.
func computeStats(counts []difficultyCount) *domain.PlatformStats {
	stats := &domain.PlatformStats{Platform: string(domain.PlatformLeetCode)}
	for _, dc := range counts {
		switch strings.ToLower(dc.Difficulty) {
		case "easy":
			stats.EasySolved = dc.Count
		case "medium":
			stats.MediumSolved = dc.Count
		case "hard":
			stats.HardSolved = dc.Count
		}
	}
	stats.TotalSolved = stats.EasySolved + stats.MediumSolved + stats.HardSolved
	return stats
}
