// Package platform assembles the adapter set from configuration.
package platform

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/algotrack/backend/internal/domain"
	"github.com/algotrack/backend/internal/infrastructure"
	"github.com/algotrack/backend/internal/platform/atcoder"
	"github.com/algotrack/backend/internal/platform/codechef"
	"github.com/algotrack/backend/internal/platform/codeforces"
	"github.com/algotrack/backend/internal/platform/geeksforgeeks"
	"github.com/algotrack/backend/internal/platform/hackerrank"
	"github.com/algotrack/backend/internal/platform/httpfetch"
	"github.com/algotrack/backend/internal/platform/leetcode"
)

// NewAdapters builds one adapter per supported platform sharing a single
// HTTP client. Empty base URLs fall back to the public sites.
func NewAdapters(cfg infrastructure.PlatformsConfig, client *http.Client, logger *zap.Logger) []domain.PlatformAdapter {
	if client == nil {
		client = &http.Client{}
	}
	opts := func(baseURL string) []httpfetch.Option {
		return []httpfetch.Option{
			httpfetch.WithHTTPClient(client),
			httpfetch.WithBaseURL(baseURL),
			httpfetch.WithTimeout(cfg.FetchTimeout),
			httpfetch.WithUserAgent(cfg.UserAgent),
			httpfetch.WithLogger(logger),
		}
	}

	return []domain.PlatformAdapter{
		leetcode.New(opts(cfg.LeetCodeURL)...),
		codeforces.New(opts(cfg.CodeforcesURL)...),
		codechef.New(opts(cfg.CodeChefURL)...),
		geeksforgeeks.New(opts(cfg.GeeksforGeeksURL)...),
		hackerrank.New(opts(cfg.HackerRankURL)...),
		atcoder.New(opts(cfg.AtCoderURL)...),
	}
}
