package domain

import "time"

// PlatformStats is the normalized statistics record every adapter produces.
// Every field is optional; unknown values stay at their zero value.
type PlatformStats struct {
	Platform        string            `json:"platform,omitempty"`
	TotalSolved     int               `json:"totalSolved"`
	EasySolved      int               `json:"easySolved"`
	MediumSolved    int               `json:"mediumSolved"`
	HardSolved      int               `json:"hardSolved"`
	Rating          int               `json:"rating,omitempty"`
	MaxRating       int               `json:"maxRating,omitempty"`
	Rank            int               `json:"rank,omitempty"`
	Title           string            `json:"title,omitempty"`
	Contests        int               `json:"contests,omitempty"`
	LastThreeRanks  []int             `json:"lastThreeRanks,omitempty"`
	RatingChange    int               `json:"ratingChange,omitempty"`
	Friends         int               `json:"friends,omitempty"`
	Contribution    int               `json:"contribution,omitempty"`
	RatingWiseCount map[string]int    `json:"ratingWiseCount,omitempty"`
	Extra           map[string]string `json:"extra,omitempty"`

	LastUpdated  *time.Time `json:"lastUpdated,omitempty"`
	SyncedAt     *time.Time `json:"syncedAt,omitempty"`
	PreviousSync *time.Time `json:"previousSync,omitempty"`
}

// Rating band labels. Bands are closed-open intervals of width 200.
const (
	BandBelow1000 = "below1000"
	BandAbove3000 = "above3000"
	BandUnrated   = "unrated"
)

// RatingBands lists every band label in ascending order, unrated last
var RatingBands = []string{
	BandBelow1000,
	"range1000to1199",
	"range1200to1399",
	"range1400to1599",
	"range1600to1799",
	"range1800to1999",
	"range2000to2199",
	"range2200to2399",
	"range2400to2599",
	"range2600to2799",
	"range2800to2999",
	BandAbove3000,
	BandUnrated,
}

// NewRatingWiseCount returns a map with every band present and zero
func NewRatingWiseCount() map[string]int {
	counts := make(map[string]int, len(RatingBands))
	for _, band := range RatingBands {
		counts[band] = 0
	}
	return counts
}

// RatingBand maps a problem rating to its band label.
// A nil rating is unrated.
func RatingBand(rating *int) string {
	if rating == nil {
		return BandUnrated
	}
	r := *rating
	switch {
	case r < 1000:
		return BandBelow1000
	case r >= 3000:
		return BandAbove3000
	}
	// 1000 -> index 1, 1200 -> index 2, ...
	return RatingBands[1+(r-1000)/200]
}

// RatingDifficulty buckets a rated contest problem: easy up to 1200 (or
// unrated), medium up to 1800, hard above.
func RatingDifficulty(rating *int) Difficulty {
	switch {
	case rating == nil || *rating <= 1200:
		return DifficultyEasy
	case *rating <= 1800:
		return DifficultyMedium
	default:
		return DifficultyHard
	}
}

// Clone returns a deep copy so annotations never leak into shared records
func (s *PlatformStats) Clone() *PlatformStats {
	if s == nil {
		return nil
	}
	c := *s
	if s.LastThreeRanks != nil {
		c.LastThreeRanks = append([]int(nil), s.LastThreeRanks...)
	}
	if s.RatingWiseCount != nil {
		c.RatingWiseCount = make(map[string]int, len(s.RatingWiseCount))
		for k, v := range s.RatingWiseCount {
			c.RatingWiseCount[k] = v
		}
	}
	if s.Extra != nil {
		c.Extra = make(map[string]string, len(s.Extra))
		for k, v := range s.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// StatsPreview is the summary written into sync log entries
func (s *PlatformStats) StatsPreview() map[string]int {
	if s == nil {
		return nil
	}
	return map[string]int{
		"totalSolved":  s.TotalSolved,
		"easySolved":   s.EasySolved,
		"mediumSolved": s.MediumSolved,
		"hardSolved":   s.HardSolved,
		"rating":       s.Rating,
	}
}
