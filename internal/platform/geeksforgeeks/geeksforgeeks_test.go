package geeksforgeeks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/algotrack/backend/internal/domain"
	"github.com/algotrack/backend/internal/platform/httpfetch"
	"github.com/algotrack/backend/internal/scrape"
)

const profileFixture = `<html><body>
<div class="scoreCards">
  <div class="scoreCard"><div class="scoreCard_text">Coding Score</div> <div class="scoreCard_score">1,204</div></div>
  <div class="scoreCard"><div class="scoreCard_text">Problem Solved</div> <div class="scoreCard_score">40</div></div>
</div>
<div class="problemNavbar">
  <div class="problemNavbar_head">SCHOOL (2)</div>
  <div class="problemNavbar_head">BASIC (3)</div>
  <div class="problemNavbar_head">EASY (10)</div>
  <div class="problemNavbar_head">MEDIUM (20)</div>
  <div class="problemNavbar_head">HARD (5)</div>
</div>
</body></html>`

func parse(t *testing.T, html string) (*domain.PlatformStats, error) {
	t.Helper()
	doc, err := scrape.ParseDocument(strings.NewReader(html))
	if err != nil {
		t.Fatal(err)
	}
	return parseProfile(doc)
}

func TestParseProfile(t *testing.T) {
	got, err := parse(t, profileFixture)
	if err != nil {
		t.Fatalf("parseProfile() error = %v", err)
	}
	want := &domain.PlatformStats{
		Platform:     "geeksforgeeks",
		TotalSolved:  40,
		EasySolved:   13,
		MediumSolved: 20,
		HardSolved:   5,
		Extra:        map[string]string{"school": "2", "codingScore": "1204"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseProfile() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseProfileTiers(t *testing.T) {
	tests := []struct {
		name       string
		html       string
		wantEasy   int
		wantMedium int
		wantHard   int
		wantTotal  int
	}{
		{
			name:      "basic and easy in one element are merged",
			html:      `<body><p>Basic (3) ... Easy (10)</p></body>`,
			wantEasy:  13,
			wantTotal: 13,
		},
		{
			name:       "combined basic and easy label is not double counted",
			html:       `<body><span>Basic &amp; Easy (13)</span><span>Medium (1)</span></body>`,
			wantEasy:   13,
			wantMedium: 1,
			wantTotal:  14,
		},
		{
			name:       "numeric context fallback",
			html:       `<body><div><span>Medium</span> <span>7</span></div><div><span>Hard</span> <span>2</span></div></body>`,
			wantMedium: 7,
			wantHard:   2,
			wantTotal:  9,
		},
		{
			name: "flat score cards read the solved caption, not the coding score",
			html: `<body><div>Coding Score</div><div>1,204</div><div>Problem Solved</div><div>40</div>` +
				`<div>BASIC (3)</div><div>EASY (10)</div><div>MEDIUM (20)</div><div>HARD (5)</div></body>`,
			wantEasy:   13,
			wantMedium: 20,
			wantHard:   5,
			wantTotal:  40,
		},
		{
			name:       "tier word inside other text is not a caption",
			html:       `<body><div><span>Articles on hard topics</span> <span>12</span></div><ul><li>MEDIUM (6)</li></ul></body>`,
			wantMedium: 6,
			wantTotal:  6,
		},
		{
			name:       "bare solved number needs its own caption",
			html:       `<body><section><span>Coding Score</span><span>880</span><span>Solved</span></section><p>HARD (4)</p></body>`,
			wantHard:   4,
			wantTotal:  4,
		},
		{
			name:       "total falls back to the tier sum",
			html:       `<body><ul><li>EASY (4)</li><li>MEDIUM (6)</li></ul></body>`,
			wantEasy:   4,
			wantMedium: 6,
			wantTotal:  10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parse(t, tt.html)
			if err != nil {
				t.Fatalf("parseProfile() error = %v", err)
			}
			if got.EasySolved != tt.wantEasy || got.MediumSolved != tt.wantMedium ||
				got.HardSolved != tt.wantHard || got.TotalSolved != tt.wantTotal {
				t.Errorf("easy/medium/hard/total = %d/%d/%d/%d, want %d/%d/%d/%d",
					got.EasySolved, got.MediumSolved, got.HardSolved, got.TotalSolved,
					tt.wantEasy, tt.wantMedium, tt.wantHard, tt.wantTotal)
			}
		})
	}
}

func TestParseProfileErrors(t *testing.T) {
	if _, err := parse(t, `<body><h1>Welcome to practice</h1></body>`); !errors.Is(err, domain.ErrScrapeFailed) {
		t.Errorf("parseProfile() error = %v, want ErrScrapeFailed", err)
	}
	if _, err := parse(t, `<body><h1>404 Not Found</h1></body>`); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("parseProfile() error = %v, want ErrProfileNotFound", err)
	}
}

func TestFetchUserData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/geek/" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(profileFixture))
	}))
	defer srv.Close()

	c := New(httpfetch.WithBaseURL(srv.URL))
	got, err := c.FetchUserData(context.Background(), "geek")
	if err != nil {
		t.Fatalf("FetchUserData() error = %v", err)
	}
	if got.TotalSolved != 40 {
		t.Errorf("TotalSolved = %d, want 40", got.TotalSolved)
	}

	if _, err := c.FetchUserData(context.Background(), "nobody"); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("FetchUserData(nobody) error = %v, want ErrProfileNotFound", err)
	}
}
