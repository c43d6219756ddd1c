package codeforces

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/algotrack/backend/internal/domain"
	"github.com/algotrack/backend/internal/platform/httpfetch"
)

func intPtr(v int) *int { return &v }

func accepted(contestID int, index string, rating *int) submission {
	var s submission
	s.ContestID = contestID
	s.Verdict = "OK"
	s.Problem.ContestID = contestID
	s.Problem.Index = index
	s.Problem.Rating = rating
	return s
}

func TestComputeContestStats(t *testing.T) {
	tests := []struct {
		name    string
		changes []ratingChange
		want    contestStats
	}{
		{
			name: "no contests",
			want: contestStats{},
		},
		{
			name: "minimum rank is best placement",
			changes: []ratingChange{
				{Rank: 5, RatingUpdateTimeSeconds: 100, OldRating: 0, NewRating: 1400},
				{Rank: 2, RatingUpdateTimeSeconds: 200, OldRating: 1400, NewRating: 1550},
			},
			want: contestStats{count: 2, bestRank: 2, lastThree: []int{2, 5}, lastChange: 150},
		},
		{
			name: "most recent three by update time",
			changes: []ratingChange{
				{Rank: 40, RatingUpdateTimeSeconds: 300, OldRating: 1600, NewRating: 1580},
				{Rank: 10, RatingUpdateTimeSeconds: 100},
				{Rank: 30, RatingUpdateTimeSeconds: 400, OldRating: 1580, NewRating: 1620},
				{Rank: 20, RatingUpdateTimeSeconds: 200},
			},
			want: contestStats{count: 4, bestRank: 10, lastThree: []int{30, 40, 20}, lastChange: 40},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := computeContestStats(tt.changes)
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(contestStats{})); diff != "" {
				t.Errorf("computeContestStats() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeProblemStats(t *testing.T) {
	rejected := accepted(1, "C", intPtr(900))
	rejected.Verdict = "WRONG_ANSWER"

	subs := []submission{
		accepted(1, "A", intPtr(800)),
		accepted(1, "A", intPtr(800)), // resubmission of the same problem
		accepted(1, "B", intPtr(1200)),
		accepted(2, "A", intPtr(1201)),
		accepted(2, "B", intPtr(1800)),
		accepted(3, "D", intPtr(1900)),
		accepted(4, "E", intPtr(3500)),
		accepted(5, "F", nil),
		rejected,
	}

	got := computeProblemStats(subs)

	if got.total != 7 {
		t.Errorf("total = %d, want 7", got.total)
	}
	if got.easy != 3 || got.medium != 2 || got.hard != 2 {
		t.Errorf("easy/medium/hard = %d/%d/%d, want 3/2/2", got.easy, got.medium, got.hard)
	}
	if got.easy+got.medium+got.hard != got.total {
		t.Errorf("tier sum %d != total %d", got.easy+got.medium+got.hard, got.total)
	}

	wantBands := domain.NewRatingWiseCount()
	wantBands["below1000"] = 1
	wantBands["range1200to1399"] = 2
	wantBands["range1800to1999"] = 2
	wantBands["above3000"] = 1
	wantBands["unrated"] = 1
	if diff := cmp.Diff(wantBands, got.bands); diff != "" {
		t.Errorf("bands mismatch (-want +got):\n%s", diff)
	}

	sum := 0
	for _, n := range got.bands {
		sum += n
	}
	if sum != got.total {
		t.Errorf("band sum %d != total %d", sum, got.total)
	}
}

func TestFetchUserData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/user.info":
			if r.URL.Query().Get("handles") != "tourist" {
				t.Errorf("handles = %q", r.URL.Query().Get("handles"))
			}
			_, _ = w.Write([]byte(`{"status":"OK","result":[{"handle":"tourist","rank":"legendary grandmaster","maxRank":"legendary grandmaster","rating":3800,"maxRating":4009,"contribution":120,"friendOfCount":70000}]}`))
		case "/api/user.rating":
			_, _ = w.Write([]byte(`{"status":"OK","result":[{"contestId":1,"rank":5,"ratingUpdateTimeSeconds":100,"oldRating":0,"newRating":1500},{"contestId":2,"rank":2,"ratingUpdateTimeSeconds":200,"oldRating":1500,"newRating":1700}]}`))
		case "/api/user.status":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	got, err := New(httpfetch.WithBaseURL(srv.URL)).FetchUserData(context.Background(), "tourist")
	if err != nil {
		t.Fatalf("FetchUserData() error = %v", err)
	}

	want := &domain.PlatformStats{
		Platform:        "codeforces",
		Rating:          3800,
		MaxRating:       4009,
		Title:           "legendary grandmaster",
		Friends:         70000,
		Contribution:    120,
		Contests:        2,
		Rank:            2,
		LastThreeRanks:  []int{2, 5},
		RatingChange:    200,
		RatingWiseCount: domain.NewRatingWiseCount(),
		Extra:           map[string]string{"rank": "legendary grandmaster"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FetchUserData() mismatch (-want +got):\n%s", diff)
	}
}

func TestFetchUserDataUnknownHandle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/user.info" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status":"FAILED","comment":"handles: User with handle nobody not found"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"OK","result":[]}`))
	}))
	defer srv.Close()

	_, err := New(httpfetch.WithBaseURL(srv.URL)).FetchUserData(context.Background(), "nobody")
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("FetchUserData() error = %v, want ErrProfileNotFound", err)
	}
}

func TestFetchUserDataUnknownHandleCancelsHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/user.info" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status":"FAILED","comment":"handles: User with handle nobody not found"}`))
			return
		}
		// history calls hang until the client gives up
		select {
		case <-r.Context().Done():
		case <-time.After(10 * time.Second):
		}
	}))
	defer srv.Close()

	start := time.Now()
	_, err := New(httpfetch.WithBaseURL(srv.URL)).FetchUserData(context.Background(), "nobody")
	if !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("FetchUserData() error = %v, want ErrProfileNotFound", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("FetchUserData() took %v, history queries were not cancelled", elapsed)
	}
}

func TestFetchUserDataFailedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"FAILED","comment":"call limit exceeded"}`))
	}))
	defer srv.Close()

	_, err := New(httpfetch.WithBaseURL(srv.URL)).FetchUserData(context.Background(), "tourist")
	if err == nil {
		t.Fatal("FetchUserData() error = nil, want failure")
	}
}
