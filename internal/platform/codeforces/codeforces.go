// Package codeforces builds contest and solved-problem statistics from the
// Codeforces REST API.
package codeforces

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/algotrack/backend/internal/domain"
	"github.com/algotrack/backend/internal/platform/httpfetch"
)

// DefaultBaseURL is the public Codeforces origin
const DefaultBaseURL = "https://codeforces.com"

// apiResponse is the envelope every Codeforces method returns
type apiResponse[T any] struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Result  T      `json:"result"`
}

type apiUser struct {
	Handle        string `json:"handle"`
	Rank          string `json:"rank"`
	MaxRank       string `json:"maxRank"`
	Rating        int    `json:"rating"`
	MaxRating     int    `json:"maxRating"`
	Contribution  int    `json:"contribution"`
	FriendOfCount int    `json:"friendOfCount"`
}

type ratingChange struct {
	ContestID               int   `json:"contestId"`
	Rank                    int   `json:"rank"`
	RatingUpdateTimeSeconds int64 `json:"ratingUpdateTimeSeconds"`
	OldRating               int   `json:"oldRating"`
	NewRating               int   `json:"newRating"`
}

type submission struct {
	ID        int64  `json:"id"`
	ContestID int    `json:"contestId"`
	Verdict   string `json:"verdict"`
	Problem   struct {
		ContestID int    `json:"contestId"`
		Index     string `json:"index"`
		Name      string `json:"name"`
		Rating    *int   `json:"rating"`
	} `json:"problem"`
}

// Client handles Codeforces requests
type Client struct {
	fetcher *httpfetch.Fetcher
	baseURL string
	logger  *zap.Logger
}

// New creates a Codeforces client
func New(opts ...httpfetch.Option) *Client {
	cfg := httpfetch.NewConfig(DefaultBaseURL, opts...)
	return &Client{
		fetcher: httpfetch.NewFetcher(cfg),
		baseURL: cfg.BaseURL,
		logger:  cfg.Logger.With(zap.String("platform", string(domain.PlatformCodeforces))),
	}
}

// Platform returns the platform identifier
func (c *Client) Platform() domain.Platform { return domain.PlatformCodeforces }

// Capabilities reports what the API exposes
func (c *Client) Capabilities() domain.Capabilities {
	return domain.Capabilities{
		Implemented:         true,
		DifficultyBreakdown: true,
		Rating:              true,
		Contests:            true,
		RatingBands:         true,
	}
}

// FetchUserData issues the profile, rating-history and submission queries
// concurrently. Only the profile query is required; the other two degrade
// to empty histories.
func (c *Client) FetchUserData(ctx context.Context, username string) (*domain.PlatformStats, error) {
	c.logger.Debug("Fetching codeforces stats", zap.String("username", username))

	var (
		user      *apiUser
		changes   []ratingChange
		subs      []submission
		handleArg = url.QueryEscape(username)
	)

	// a missing profile cancels the other two queries
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = c.fetchUser(gctx, handleArg)
		return err
	})
	g.Go(func() error {
		var err error
		if changes, err = getResult[[]ratingChange](gctx, c, "/api/user.rating?handle="+handleArg); err != nil {
			c.logger.Warn("Rating history unavailable", zap.String("username", username), zap.Error(err))
			changes = nil
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if subs, err = getResult[[]submission](gctx, c, "/api/user.status?handle="+handleArg); err != nil {
			c.logger.Warn("Submission history unavailable", zap.String("username", username), zap.Error(err))
			subs = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return computeStats(user, changes, subs), nil
}

func (c *Client) fetchUser(ctx context.Context, handleArg string) (*apiUser, error) {
	users, err := getResult[[]apiUser](ctx, c, "/api/user.info?handles="+handleArg)
	if err != nil {
		// unknown handles are answered with 400 and status FAILED
		if httpfetch.IsStatus(err, http.StatusBadRequest) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	if len(users) == 0 {
		return nil, domain.ErrProfileNotFound
	}
	return &users[0], nil
}

func getResult[T any](ctx context.Context, c *Client, path string) (T, error) {
	var zero T
	body, err := c.fetcher.Get(ctx, c.baseURL+path, nil)
	if err != nil {
		return zero, err
	}
	var resp apiResponse[T]
	if err := json.Unmarshal(body, &resp); err != nil {
		return zero, fmt.Errorf("failed to parse codeforces response: %w", err)
	}
	if resp.Status != "OK" {
		if resp.Comment != "" {
			return zero, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, resp.Comment)
		}
		return zero, domain.ErrProfileNotFound
	}
	return resp.Result, nil
}

// computeStats merges profile, contest and problem statistics
func computeStats(user *apiUser, changes []ratingChange, subs []submission) *domain.PlatformStats {
	stats := &domain.PlatformStats{
		Platform:     string(domain.PlatformCodeforces),
		Rating:       user.Rating,
		MaxRating:    user.MaxRating,
		Title:        user.MaxRank,
		Friends:      user.FriendOfCount,
		Contribution: user.Contribution,
	}
	if user.Rank != "" {
		stats.Extra = map[string]string{"rank": user.Rank}
	}

	contests := computeContestStats(changes)
	stats.Contests = contests.count
	stats.Rank = contests.bestRank
	stats.LastThreeRanks = contests.lastThree
	stats.RatingChange = contests.lastChange

	problems := computeProblemStats(subs)
	stats.TotalSolved = problems.total
	stats.EasySolved = problems.easy
	stats.MediumSolved = problems.medium
	stats.HardSolved = problems.hard
	stats.RatingWiseCount = problems.bands

	return stats
}

type contestStats struct {
	count      int
	bestRank   int
	lastThree  []int
	lastChange int
}

// computeContestStats derives best placement, the three most recent ranks
// (most recent first) and the latest rating delta.
func computeContestStats(changes []ratingChange) contestStats {
	cs := contestStats{count: len(changes)}
	if len(changes) == 0 {
		return cs
	}

	cs.bestRank = changes[0].Rank
	for _, ch := range changes[1:] {
		if ch.Rank < cs.bestRank {
			cs.bestRank = ch.Rank
		}
	}

	recent := make([]ratingChange, len(changes))
	copy(recent, changes)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].RatingUpdateTimeSeconds > recent[j].RatingUpdateTimeSeconds
	})
	for i := 0; i < len(recent) && i < 3; i++ {
		cs.lastThree = append(cs.lastThree, recent[i].Rank)
	}
	cs.lastChange = recent[0].NewRating - recent[0].OldRating
	return cs
}

type problemStats struct {
	total, easy, medium, hard int
	bands                     map[string]int
}

// problemKey identifies a problem independent of how many times it was solved
type problemKey struct {
	contestID int
	index     string
}

// computeProblemStats counts distinct accepted problems and classifies each
// one into a rating band and a difficulty tier.
func computeProblemStats(subs []submission) problemStats {
	ps := problemStats{bands: domain.NewRatingWiseCount()}
	seen := make(map[problemKey]struct{}, len(subs))

	for _, s := range subs {
		if s.Verdict != "OK" {
			continue
		}
		contestID := s.Problem.ContestID
		if contestID == 0 {
			contestID = s.ContestID
		}
		key := problemKey{contestID: contestID, index: s.Problem.Index}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		ps.total++
		ps.bands[domain.RatingBand(s.Problem.Rating)]++
		switch domain.RatingDifficulty(s.Problem.Rating) {
		case domain.DifficultyEasy:
			ps.easy++
		case domain.DifficultyMedium:
			ps.medium++
		default:
			ps.hard++
		}
	}
	return ps
}
