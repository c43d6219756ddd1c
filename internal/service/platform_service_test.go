package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/algotrack/backend/internal/domain"
)

type stubAdapter struct {
	platform domain.Platform
	caps     domain.Capabilities
	fetch    func(ctx context.Context, username string) (*domain.PlatformStats, error)
}

func (a stubAdapter) Platform() domain.Platform {
	return a.platform
}

func (a stubAdapter) Capabilities() domain.Capabilities {
	return a.caps
}

func (a stubAdapter) FetchUserData(ctx context.Context, username string) (*domain.PlatformStats, error) {
	return a.fetch(ctx, username)
}

func newTestPlatformService(t *testing.T, adapters ...domain.PlatformAdapter) *PlatformService {
	t.Helper()
	return NewPlatformService(adapters, testTracer, testMetrics(t), testLogger)
}

func TestPlatformServiceDispatch(t *testing.T) {
	var gotUser string
	svc := newTestPlatformService(t, stubAdapter{
		platform: domain.PlatformLeetCode,
		fetch: func(_ context.Context, username string) (*domain.PlatformStats, error) {
			gotUser = username
			return &domain.PlatformStats{TotalSolved: 16, EasySolved: 10, MediumSolved: 5, HardSolved: 1}, nil
		},
	})

	stats := svc.FetchUserData(context.Background(), "  LeetCode ", "alice")
	if stats == nil {
		t.Fatal("FetchUserData returned nil")
	}
	if gotUser != "alice" {
		t.Errorf("adapter got username %q", gotUser)
	}
	want := &domain.PlatformStats{Platform: "leetcode", TotalSolved: 16, EasySolved: 10, MediumSolved: 5, HardSolved: 1}
	if diff := cmp.Diff(want, stats); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestPlatformServiceFailuresBecomeNil(t *testing.T) {
	tests := []struct {
		name     string
		platform string
		fetch    func(context.Context, string) (*domain.PlatformStats, error)
	}{
		{
			name:     "unsupported platform",
			platform: "topcoder",
			fetch: func(context.Context, string) (*domain.PlatformStats, error) {
				t.Error("adapter should not be called")
				return nil, nil
			},
		},
		{
			name:     "profile not found",
			platform: "codeforces",
			fetch: func(context.Context, string) (*domain.PlatformStats, error) {
				return nil, domain.ErrProfileNotFound
			},
		},
		{
			name:     "transport error",
			platform: "codeforces",
			fetch: func(context.Context, string) (*domain.PlatformStats, error) {
				return nil, errors.New("connection reset")
			},
		},
		{
			name:     "adapter panic",
			platform: "codeforces",
			fetch: func(context.Context, string) (*domain.PlatformStats, error) {
				panic("nil map write")
			},
		},
		{
			name:     "nil without error",
			platform: "codeforces",
			fetch: func(context.Context, string) (*domain.PlatformStats, error) {
				return nil, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestPlatformService(t, stubAdapter{platform: domain.PlatformCodeforces, fetch: tt.fetch})
			if got := svc.FetchUserData(context.Background(), tt.platform, "tourist"); got != nil {
				t.Errorf("FetchUserData = %+v, want nil", got)
			}
		})
	}
}

func TestPlatformServiceSupported(t *testing.T) {
	noop := func(context.Context, string) (*domain.PlatformStats, error) { return nil, nil }
	svc := newTestPlatformService(t,
		stubAdapter{platform: domain.PlatformCodeforces, caps: domain.Capabilities{Implemented: true, Rating: true}, fetch: noop},
		stubAdapter{platform: domain.PlatformCodeChef, caps: domain.Capabilities{Implemented: true}, fetch: noop},
	)

	want := []domain.PlatformInfo{
		{Platform: domain.PlatformCodeforces, Capabilities: domain.Capabilities{Implemented: true, Rating: true}},
		{Platform: domain.PlatformCodeChef, Capabilities: domain.Capabilities{Implemented: true}},
	}
	if diff := cmp.Diff(want, svc.Supported()); diff != "" {
		t.Errorf("Supported mismatch (-want +got):\n%s", diff)
	}
}
