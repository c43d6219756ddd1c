package domain

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func intPtr(v int) *int { return &v }

func TestRatingBand(t *testing.T) {
	tests := []struct {
		rating *int
		want   string
	}{
		{nil, BandUnrated},
		{intPtr(800), BandBelow1000},
		{intPtr(999), BandBelow1000},
		{intPtr(1000), "range1000to1199"},
		{intPtr(1199), "range1000to1199"},
		{intPtr(1200), "range1200to1399"},
		{intPtr(1900), "range1800to1999"},
		{intPtr(2999), "range2800to2999"},
		{intPtr(3000), BandAbove3000},
		{intPtr(3500), BandAbove3000},
	}
	for _, tt := range tests {
		if got := RatingBand(tt.rating); got != tt.want {
			r := "nil"
			if tt.rating != nil {
				r = strconv.Itoa(*tt.rating)
			}
			t.Errorf("RatingBand(%s) = %q, want %q", r, got, tt.want)
		}
	}
}

func TestNewRatingWiseCountHasEveryBand(t *testing.T) {
	counts := NewRatingWiseCount()
	if len(counts) != 13 {
		t.Fatalf("len = %d, want 13", len(counts))
	}
	for _, band := range RatingBands {
		if v, ok := counts[band]; !ok || v != 0 {
			t.Errorf("band %q = %d, %v", band, v, ok)
		}
	}
}

func TestRatingDifficulty(t *testing.T) {
	tests := []struct {
		rating *int
		want   Difficulty
	}{
		{nil, DifficultyEasy},
		{intPtr(800), DifficultyEasy},
		{intPtr(1200), DifficultyEasy},
		{intPtr(1201), DifficultyMedium},
		{intPtr(1800), DifficultyMedium},
		{intPtr(1801), DifficultyHard},
	}
	for _, tt := range tests {
		if got := RatingDifficulty(tt.rating); got != tt.want {
			t.Errorf("RatingDifficulty(%v) = %v, want %v", tt.rating, got, tt.want)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := &PlatformStats{
		TotalSolved:     5,
		LastThreeRanks:  []int{1, 2, 3},
		RatingWiseCount: map[string]int{BandBelow1000: 2},
		Extra:           map[string]string{"stars": "3★"},
	}
	c := orig.Clone()
	c.LastThreeRanks[0] = 99
	c.RatingWiseCount[BandBelow1000] = 99
	c.Extra["stars"] = "7★"
	c.Platform = "codechef"

	want := &PlatformStats{
		TotalSolved:     5,
		LastThreeRanks:  []int{1, 2, 3},
		RatingWiseCount: map[string]int{BandBelow1000: 2},
		Extra:           map[string]string{"stars": "3★"},
	}
	if diff := cmp.Diff(want, orig); diff != "" {
		t.Errorf("original changed (-want +got):\n%s", diff)
	}
	if (*PlatformStats)(nil).Clone() != nil {
		t.Error("nil Clone() != nil")
	}
}

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in      string
		want    Platform
		wantErr bool
	}{
		{in: "leetcode", want: PlatformLeetCode},
		{in: "  CodeForces ", want: PlatformCodeforces},
		{in: "GeeksForGeeks", want: PlatformGeeksforGeeks},
		{in: "topcoder", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParsePlatform(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedPlatform) {
				t.Errorf("ParsePlatform(%q) error = %v, want ErrUnsupportedPlatform", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParsePlatform(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestParsePlan(t *testing.T) {
	for in, want := range map[string]Plan{"free": PlanFree, " Pro ": PlanPro} {
		if got, err := ParsePlan(in); err != nil || got != want {
			t.Errorf("ParsePlan(%q) = %q, %v, want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"", "enterprise"} {
		if _, err := ParsePlan(in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ParsePlan(%q) error = %v, want ErrInvalidInput", in, err)
		}
	}
}

func TestProgressUpdateApply(t *testing.T) {
	yes, no := true, false
	earlier := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		start  QuestionProgress
		update ProgressUpdate
		want   QuestionProgress
	}{
		{
			name:   "solve stamps time",
			update: ProgressUpdate{Solved: &yes},
			want:   QuestionProgress{Solved: true, SolvedAt: &now},
		},
		{
			name:   "re-solve keeps first time",
			start:  QuestionProgress{Solved: true, SolvedAt: &earlier},
			update: ProgressUpdate{Solved: &yes},
			want:   QuestionProgress{Solved: true, SolvedAt: &earlier},
		},
		{
			name:   "unsolve clears time",
			start:  QuestionProgress{Solved: true, SolvedAt: &earlier, Bookmarked: true},
			update: ProgressUpdate{Solved: &no},
			want:   QuestionProgress{Bookmarked: true},
		},
		{
			name:   "bookmark only",
			start:  QuestionProgress{Solved: true, SolvedAt: &earlier},
			update: ProgressUpdate{Bookmarked: &yes},
			want:   QuestionProgress{Solved: true, SolvedAt: &earlier, Bookmarked: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.start
			tt.update.Apply(&got, now)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if !(ProgressUpdate{}).Empty() || (ProgressUpdate{Bookmarked: &no}).Empty() {
		t.Error("Empty() wrong")
	}
}

func TestLimitError(t *testing.T) {
	var err error = NewDomainError(&LimitError{Current: 3, Limit: 3}, "")
	if !errors.Is(err, ErrLimitExceeded) {
		t.Error("LimitError does not match ErrLimitExceeded")
	}
	var limitErr *LimitError
	if !errors.As(err, &limitErr) || limitErr.Current != 3 || limitErr.Limit != 3 {
		t.Errorf("errors.As = %+v", limitErr)
	}
}

func TestLinkedPlatformStats(t *testing.T) {
	link := &LinkedPlatform{Platform: PlatformLeetCode}
	if stats, err := link.DecodeStats(); stats != nil || err != nil {
		t.Fatalf("empty DecodeStats() = %v, %v", stats, err)
	}

	in := &PlatformStats{Platform: "leetcode", TotalSolved: 16, EasySolved: 10, MediumSolved: 5, HardSolved: 1}
	if err := link.SetStats(in); err != nil {
		t.Fatalf("SetStats() error = %v", err)
	}
	out, err := link.DecodeStats()
	if err != nil {
		t.Fatalf("DecodeStats() error = %v", err)
	}
	if diff := cmp.Diff(in, out); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}

	link.Stats = []byte(`{"totalSolved":`)
	if _, err := link.DecodeStats(); err == nil {
		t.Error("corrupt stats decoded without error")
	}
	if resp := link.ToResponse(); resp.Stats != nil {
		t.Errorf("ToResponse() with corrupt stats = %+v, want nil stats", resp.Stats)
	}
}

func TestNewSyncLogEntry(t *testing.T) {
	userID := uuid.New()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	ok := NewSyncLogEntry(userID, PlatformCodeforces, SyncStatusSuccess, "", SyncLogData{Action: ActionSync, Timestamp: ts})
	if ok.ErrorMsg != nil {
		t.Errorf("ErrorMsg = %q, want nil", *ok.ErrorMsg)
	}

	failed := NewSyncLogEntry(userID, PlatformCodeforces, SyncStatusFailed, "boom", SyncLogData{Action: ActionSync, Timestamp: ts, Error: "boom"})
	if failed.ErrorMsg == nil || *failed.ErrorMsg != "boom" {
		t.Errorf("ErrorMsg = %v, want boom", failed.ErrorMsg)
	}
	var data SyncLogData
	if err := json.Unmarshal(failed.Data, &data); err != nil {
		t.Fatalf("data: %v", err)
	}
	if diff := cmp.Diff(SyncLogData{Action: ActionSync, Timestamp: ts, Error: "boom"}, data); diff != "" {
		t.Errorf("data mismatch (-want +got):\n%s", diff)
	}
}
