// Package atcoder scrapes contest statistics from AtCoder profile pages.
package atcoder

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/algotrack/backend/internal/domain"
	"github.com/algotrack/backend/internal/platform/httpfetch"
	"github.com/algotrack/backend/internal/scrape"
)

// DefaultBaseURL is the public AtCoder origin
const DefaultBaseURL = "https://atcoder.jp"

// Client handles AtCoder requests
type Client struct {
	fetcher *httpfetch.Fetcher
	baseURL string
	logger  *zap.Logger
}

// New creates an AtCoder client
func New(opts ...httpfetch.Option) *Client {
	cfg := httpfetch.NewConfig(DefaultBaseURL, opts...)
	return &Client{
		fetcher: httpfetch.NewFetcher(cfg),
		baseURL: cfg.BaseURL,
		logger:  cfg.Logger.With(zap.String("platform", string(domain.PlatformAtCoder))),
	}
}

// Platform returns the platform identifier
func (c *Client) Platform() domain.Platform { return domain.PlatformAtCoder }

// Capabilities reports what the profile page exposes
func (c *Client) Capabilities() domain.Capabilities {
	return domain.Capabilities{Implemented: true, Rating: true, Contests: true}
}

// FetchUserData scrapes the public profile page for username
func (c *Client) FetchUserData(ctx context.Context, username string) (*domain.PlatformStats, error) {
	c.logger.Debug("Fetching atcoder profile", zap.String("username", username))

	body, err := c.fetcher.Get(ctx, c.baseURL+"/users/"+url.PathEscape(username), map[string]string{
		"Accept": "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	})
	if err != nil {
		if httpfetch.IsStatus(err, http.StatusNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}

	doc, err := scrape.ParseDocument(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return parseProfile(doc)
}

// parseProfile reads the dl-table rows of a profile page
func parseProfile(doc *goquery.Document) (*domain.PlatformStats, error) {
	if scrape.IsNotFound(scrape.PageText(doc)) {
		return nil, domain.ErrProfileNotFound
	}

	rows := map[string]string{}
	doc.Find("table.dl-table tr").Each(func(_ int, s *goquery.Selection) {
		key := strings.ToLower(strings.TrimSpace(s.Find("th").First().Text()))
		if key == "" {
			return
		}
		rows[key] = strings.Join(strings.Fields(s.Find("td").First().Text()), " ")
	})

	stats := &domain.PlatformStats{Platform: string(domain.PlatformAtCoder)}
	found := false

	if v, ok := scrape.ParseNumber(rows["rating"]); ok {
		stats.Rating = v
		found = true
	}
	if v, ok := scrape.ParseNumber(rows["highest rating"]); ok {
		stats.MaxRating = v
		found = true
	}
	if v, ok := scrape.ParseNumber(rows["rank"]); ok {
		stats.Rank = v
		found = true
	}
	if v, ok := scrape.ParseNumber(rows["rated matches"]); ok {
		stats.Contests = v
		stats.Extra = map[string]string{"ratedMatches": rows["rated matches"]}
		found = true
	}
	if !found {
		return nil, domain.ErrScrapeFailed
	}
	return stats, nil
}
