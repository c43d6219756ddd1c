// Package geeksforgeeks scrapes solved-problem counts from GeeksforGeeks
// profile pages.
package geeksforgeeks

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

// DefaultBaseURL is the public GeeksforGeeks origin
const DefaultBaseURL = "https://www.geeksforgeeks.org"

// Difficulty tiers as GeeksforGeeks labels them
const (
	tierSchool = "school"
	tierBasic  = "basic"
	tierEasy   = "easy"
	tierMedium = "medium"
	tierHard   = "hard"
)

var tiers = []string{tierSchool, tierBasic, tierEasy, tierMedium, tierHard}

var tierPatterns = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(tiers))
	for _, t := range tiers {
		m[t] = regexp.MustCompile(`(?i)\b` + t + `\s*\(\s*(\d+)\s*\)`)
	}
	return m
}()

// tierCaptions match a caption that starts with the tier as a whole word
var tierCaptions = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(tiers))
	for _, t := range tiers {
		m[t] = regexp.MustCompile(`(?i)^\W*` + t + `\b`)
	}
	return m
}()

var (
	problemsSolved = regexp.MustCompile(`(?i)problems?\s+solved\s*:?\s*(\d[\d,]*)`)
	solvedCaption  = regexp.MustCompile(`(?i)\bproblems?\s+solved\b`)
	codingScore    = regexp.MustCompile(`(?i)coding\s+score\s*:?\s*(\d[\d,]*)`)
)

// strategy extracts one tier's count from a page
type strategy func(doc *goquery.Document, pageText, tier string) (int, bool)

// strategies are tried in order for every tier still unknown
var strategies = []strategy{
	labeledElement,
	pageRegex,
	numericContext,
}

// Client handles GeeksforGeeks requests
type Client struct {
	fetcher *httpfetch.Fetcher
	baseURL string
	logger  *zap.Logger
}

// New creates a GeeksforGeeks client
func New(opts ...httpfetch.Option) *Client {
	cfg := httpfetch.NewConfig(DefaultBaseURL, opts...)
	return &Client{
		fetcher: httpfetch.NewFetcher(cfg),
		baseURL: cfg.BaseURL,
		logger:  cfg.Logger.With(zap.String("platform", string(domain.PlatformGeeksforGeeks))),
	}
}

// Platform returns the platform identifier
func (c *Client) Platform() domain.Platform { return domain.PlatformGeeksforGeeks }

// Capabilities reports what the profile page exposes
func (c *Client) Capabilities() domain.Capabilities {
	return domain.Capabilities{Implemented: true, DifficultyBreakdown: true}
}

// FetchUserData scrapes the public profile page for username.
// A page with nothing extractable is an error, never a zero record.
func (c *Client) FetchUserData(ctx context.Context, username string) (*domain.PlatformStats, error) {
	c.logger.Debug("Fetching geeksforgeeks profile", zap.String("username", username))

	body, err := c.fetcher.Get(ctx, c.baseURL+"/user/"+url.PathEscape(username)+"/", map[string]string{
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
	stats, err := parseProfile(doc)
	if err != nil {
		c.logger.Warn("Could not extract geeksforgeeks stats",
			zap.String("username", username),
			zap.Error(err),
		)
		return nil, err
	}
	return stats, nil
}

// parseProfile extracts tier counts and the solved total from a profile page
func parseProfile(doc *goquery.Document) (*domain.PlatformStats, error) {
	text := scrape.PageText(doc)
	if scrape.IsNotFound(text) {
		return nil, domain.ErrProfileNotFound
	}

	counts := make(map[string]int, len(tiers))
	for _, tier := range tiers {
		for _, extract := range strategies {
			if n, ok := extract(doc, text, tier); ok {
				counts[tier] = n
				break
			}
		}
	}

	total, haveTotal := solvedTotal(doc, text)
	if len(counts) == 0 && !haveTotal {
		return nil, domain.ErrScrapeFailed
	}

	stats := &domain.PlatformStats{
		Platform:     string(domain.PlatformGeeksforGeeks),
		EasySolved:   counts[tierBasic] + counts[tierEasy],
		MediumSolved: counts[tierMedium],
		HardSolved:   counts[tierHard],
	}
	if haveTotal {
		stats.TotalSolved = total
	} else {
		stats.TotalSolved = counts[tierSchool] + stats.EasySolved + stats.MediumSolved + stats.HardSolved
	}

	extra := map[string]string{}
	if n, ok := counts[tierSchool]; ok {
		extra["school"] = strconv.Itoa(n)
	}
	if m := codingScore.FindStringSubmatch(text); m != nil {
		if n, ok := scrape.ParseNumber(m[1]); ok {
			extra["codingScore"] = strconv.Itoa(n)
		}
	}
	if len(extra) > 0 {
		stats.Extra = extra
	}
	return stats, nil
}

// labeledElement scans element texts for "<tier> (n)". An "easy" match inside
// text that also mentions "basic" is a combined label and is skipped.
func labeledElement(doc *goquery.Document, _ string, tier string) (int, bool) {
	re := tierPatterns[tier]
	var (
		n  int
		ok bool
	)
	doc.Find("body *").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		if tier == tierEasy && strings.Contains(strings.ToLower(text), tierBasic) {
			return true
		}
		n, ok = scrape.MatchLabeled(re, text)
		return !ok
	})
	return n, ok
}

// pageRegex applies the tier pattern to the whole page text
func pageRegex(_ *goquery.Document, pageText, tier string) (int, bool) {
	return scrape.MatchLabeled(tierPatterns[tier], pageText)
}

// numericContext looks for a bare number captioned by the tier name
func numericContext(doc *goquery.Document, _ string, tier string) (int, bool) {
	var near []scrape.Candidate
	for _, c := range scrape.NumberCandidates(doc) {
		if !tierCaptions[tier].MatchString(c.Label) {
			continue
		}
		if tier == tierEasy && strings.Contains(strings.ToLower(c.Label), tierBasic) {
			continue
		}
		near = append(near, c)
	}
	return scrape.FindNumberByRange(near, 0, 10000)
}

// solvedTotal reads the "Problems Solved" score card. The labeled text is
// preferred; a bare number only counts when its own caption says solved.
func solvedTotal(doc *goquery.Document, pageText string) (int, bool) {
	if m := problemsSolved.FindStringSubmatch(pageText); m != nil {
		if n, ok := scrape.ParseNumber(m[1]); ok {
			return n, true
		}
	}
	return scrape.FindNumberLabeled(scrape.NumberCandidates(doc), solvedCaption, 0, 100000)
}
