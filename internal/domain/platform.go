package domain

import (
	"context"
	"strings"
)

// Platform identifies an external competitive-programming site
type Platform string

const (
	PlatformLeetCode      Platform = "leetcode"
	PlatformCodeforces    Platform = "codeforces"
	PlatformCodeChef      Platform = "codechef"
	PlatformGeeksforGeeks Platform = "geeksforgeeks"
	PlatformHackerRank    Platform = "hackerrank"
	PlatformAtCoder       Platform = "atcoder"
)

// Platforms lists every platform a user may link, in display order
var Platforms = []Platform{
	PlatformLeetCode,
	PlatformCodeforces,
	PlatformCodeChef,
	PlatformGeeksforGeeks,
	PlatformHackerRank,
	PlatformAtCoder,
}

// ParsePlatform normalizes a caller supplied identifier
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Platforms {
		if p == known {
			return p, nil
		}
	}
	return "", ErrUnsupportedPlatform
}

// String returns the identifier
func (p Platform) String() string {
	return string(p)
}

// Capabilities describes which statistics an adapter is able to produce.
// Implemented is false for adapters that only return an empty record.
type Capabilities struct {
	Implemented         bool `json:"implemented"`
	DifficultyBreakdown bool `json:"difficulty_breakdown"`
	Rating              bool `json:"rating"`
	Contests            bool `json:"contests"`
	RatingBands         bool `json:"rating_bands"`
}

// PlatformAdapter fetches one platform's raw data and normalizes it.
// FetchUserData returns ErrProfileNotFound when the handle does not exist.
type PlatformAdapter interface {
	Platform() Platform
	Capabilities() Capabilities
	FetchUserData(ctx context.Context, username string) (*PlatformStats, error)
}

// PlatformInfo is the public description of a supported platform
type PlatformInfo struct {
	Platform     Platform     `json:"platform"`
	Capabilities Capabilities `json:"capabilities"`
}
