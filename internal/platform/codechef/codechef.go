// Package codechef scrapes rating and solved counts from CodeChef profile pages.
package codechef

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/algotrack/backend/internal/domain"
	"github.com/algotrack/backend/internal/platform/httpfetch"
	"github.com/algotrack/backend/internal/scrape"
)

// DefaultBaseURL is the public CodeChef origin
const DefaultBaseURL = "https://www.codechef.com"

// Selector priority lists. Earlier entries win.
var (
	ratingSelectors = []string{
		".rating-number",
		".rating-header .rating-number",
		"[class*=rating-number]",
	}
	maxRatingSelectors = []string{
		".rating-header small",
		".rating-container small",
	}
	starsSelectors = []string{
		".rating-star",
		"span.rating",
		".rating-header .rating",
	}
	contestsSelectors = []string{
		".contest-participated-count b",
		".contest-participated-count",
	}
	solvedSelectors = []string{
		".problems-solved h3:last-of-type",
		".rating-data-section.problems-solved h3",
	}
	globalRankSelectors = []string{
		".rating-ranks ul li:nth-child(1) strong",
		".rating-ranks strong",
	}
	countryRankSelectors = []string{
		".rating-ranks ul li:nth-child(2) strong",
	}
	divisionSelectors = []string{
		".rating-header div:nth-child(2)",
		".rating-header",
	}
)

var (
	highestRating = regexp.MustCompile(`(?i)highest\s+rating\s*:?\s*(\d+)`)
	totalSolved   = regexp.MustCompile(`(?i)total\s+problems\s+solved\s*:?\s*(\d+)`)
	division      = regexp.MustCompile(`(?i)\bdiv(?:ision)?\s*(\d)`)
)

// Client handles CodeChef requests
type Client struct {
	fetcher *httpfetch.Fetcher
	baseURL string
	logger  *zap.Logger
}

// New creates a CodeChef client
func New(opts ...httpfetch.Option) *Client {
	cfg := httpfetch.NewConfig(DefaultBaseURL, opts...)
	return &Client{
		fetcher: httpfetch.NewFetcher(cfg),
		baseURL: cfg.BaseURL,
		logger:  cfg.Logger.With(zap.String("platform", string(domain.PlatformCodeChef))),
	}
}

// Platform returns the platform identifier
func (c *Client) Platform() domain.Platform { return domain.PlatformCodeChef }

// Capabilities reports what the profile page exposes. CodeChef does not
// publish a per-difficulty breakdown.
func (c *Client) Capabilities() domain.Capabilities {
	return domain.Capabilities{Implemented: true, Rating: true, Contests: true}
}

// FetchUserData scrapes the public profile page for username
func (c *Client) FetchUserData(ctx context.Context, username string) (*domain.PlatformStats, error) {
	c.logger.Debug("Fetching codechef profile", zap.String("username", username))

	body, err := c.fetcher.Get(ctx, c.baseURL+"/users/"+url.PathEscape(username), map[string]string{
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"Referer":         c.baseURL + "/",
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

// parseProfile extracts statistics from a profile page
func parseProfile(doc *goquery.Document) (*domain.PlatformStats, error) {
	text := scrape.PageText(doc)
	if scrape.IsNotFound(text) {
		return nil, domain.ErrProfileNotFound
	}

	stats := &domain.PlatformStats{
		Platform: string(domain.PlatformCodeChef),
		Extra:    map[string]string{},
	}
	found := false

	if v, ok := scrape.ExtractNumber(doc, ratingSelectors...); ok {
		stats.Rating = v
		found = true
	}
	if v, ok := labeledMatch(doc, highestRating, maxRatingSelectors, text); ok {
		stats.MaxRating = v
	}
	if v, ok := scrape.ExtractNumber(doc, contestsSelectors...); ok {
		stats.Contests = v
	}
	if v, ok := labeledMatch(doc, totalSolved, solvedSelectors, text); ok {
		stats.TotalSolved = v
		found = true
	}
	if v, ok := scrape.ExtractNumber(doc, globalRankSelectors...); ok {
		stats.Rank = v
		stats.Extra["globalRank"] = strconv.Itoa(v)
	}
	if v, ok := scrape.ExtractNumber(doc, countryRankSelectors...); ok {
		stats.Extra["countryRank"] = strconv.Itoa(v)
	}
	if s, ok := scrape.ExtractText(doc, starsSelectors...); ok && strings.Contains(s, "★") {
		stats.Title = s
		stats.Extra["stars"] = s
	}
	if header, ok := scrape.ExtractText(doc, divisionSelectors...); ok {
		if m := division.FindStringSubmatch(header); m != nil {
			stats.Extra["division"] = "Div " + m[1]
		}
	}

	if !found {
		return nil, domain.ErrScrapeFailed
	}
	if len(stats.Extra) == 0 {
		stats.Extra = nil
	}
	return stats, nil
}

// labeledMatch applies re to the selector texts first, then to the page text
func labeledMatch(doc *goquery.Document, re *regexp.Regexp, selectors []string, pageText string) (int, bool) {
	for _, sel := range selectors {
		var (
			n  int
			ok bool
		)
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			n, ok = scrape.MatchLabeled(re, s.Text())
			return !ok
		})
		if ok {
			return n, true
		}
	}
	return scrape.MatchLabeled(re, pageText)
}
