// Package hackerrank reads solved counts from HackerRank's public REST endpoints.
package hackerrank

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/algotrack/backend/internal/domain"
	"github.com/algotrack/backend/internal/platform/httpfetch"
)

// DefaultBaseURL is the public HackerRank origin
const DefaultBaseURL = "https://www.hackerrank.com"

type profileResponse struct {
	Model *struct {
		Username string `json:"username"`
		Level    int    `json:"level"`
	} `json:"model"`
}

type badgesResponse struct {
	Models []badge `json:"models"`
}

type badge struct {
	BadgeName string `json:"badge_name"`
	BadgeType string `json:"badge_type"`
	Stars     int    `json:"stars"`
	Solved    int    `json:"solved"`
}

// Client handles HackerRank requests
type Client struct {
	fetcher *httpfetch.Fetcher
	baseURL string
	logger  *zap.Logger
}

// New creates a HackerRank client
func New(opts ...httpfetch.Option) *Client {
	cfg := httpfetch.NewConfig(DefaultBaseURL, opts...)
	return &Client{
		fetcher: httpfetch.NewFetcher(cfg),
		baseURL: cfg.BaseURL,
		logger:  cfg.Logger.With(zap.String("platform", string(domain.PlatformHackerRank))),
	}
}

// Platform returns the platform identifier
func (c *Client) Platform() domain.Platform { return domain.PlatformHackerRank }

// Capabilities reports what the badges endpoint exposes
func (c *Client) Capabilities() domain.Capabilities {
	return domain.Capabilities{Implemented: true}
}

// FetchUserData confirms the hacker exists, then sums solved counts over badges
func (c *Client) FetchUserData(ctx context.Context, username string) (*domain.PlatformStats, error) {
	c.logger.Debug("Fetching hackerrank badges", zap.String("username", username))

	escaped := url.PathEscape(username)

	body, err := c.fetcher.Get(ctx, c.baseURL+"/rest/contests/master/hackers/"+escaped+"/profile", nil)
	if err != nil {
		if httpfetch.IsStatus(err, http.StatusNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	var profile profileResponse
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse hackerrank profile: %w", err)
	}
	if profile.Model == nil || profile.Model.Username == "" {
		return nil, domain.ErrProfileNotFound
	}

	body, err = c.fetcher.Get(ctx, c.baseURL+"/rest/hackers/"+escaped+"/badges", nil)
	if err != nil {
		return nil, err
	}
	var badges badgesResponse
	if err := json.Unmarshal(body, &badges); err != nil {
		return nil, fmt.Errorf("failed to parse hackerrank badges: %w", err)
	}
	return computeStats(badges.Models), nil
}

// computeStats sums badge solved counts and records each badge's stars
func computeStats(badges []badge) *domain.PlatformStats {
	stats := &domain.PlatformStats{Platform: string(domain.PlatformHackerRank)}
	bestStars := 0
	for _, b := range badges {
		stats.TotalSolved += b.Solved
		if b.BadgeType == "" {
			continue
		}
		if stats.Extra == nil {
			stats.Extra = make(map[string]string, len(badges))
		}
		stats.Extra[b.BadgeType] = strconv.Itoa(b.Stars) + "★"
		if b.Stars > bestStars {
			bestStars = b.Stars
			stats.Title = b.BadgeName + " " + strconv.Itoa(b.Stars) + "★"
		}
	}
	return stats
}
