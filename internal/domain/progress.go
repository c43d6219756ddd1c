package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// QuestionProgress tracks whether a user has solved or bookmarked a question.
// A missing row means neither.
type QuestionProgress struct {
	UserID     uuid.UUID  `json:"user_id" gorm:"type:uuid;primaryKey"`
	QuestionID uuid.UUID  `json:"question_id" gorm:"type:uuid;primaryKey"`
	Solved     bool       `json:"solved" gorm:"not null;default:false"`
	Bookmarked bool       `json:"bookmarked" gorm:"not null;default:false"`
	SolvedAt   *time.Time `json:"solved_at"`
	UpdatedAt  time.Time  `json:"updated_at"`

	// Relationships
	Question Question `json:"-" gorm:"foreignKey:QuestionID"`
}

// TableName specifies the table name for GORM
func (QuestionProgress) TableName() string {
	return "question_progress"
}

// ProgressRepository defines the interface for progress data access
type ProgressRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) ([]QuestionProgress, error)
	Find(ctx context.Context, userID, questionID uuid.UUID) (*QuestionProgress, error)
	Upsert(ctx context.Context, progress *QuestionProgress) error
	FindBookmarked(ctx context.Context, userID uuid.UUID) ([]QuestionProgress, error)
}

// ProgressUpdate carries the optional fields of a progress change
type ProgressUpdate struct {
	Solved     *bool `json:"solved"`
	Bookmarked *bool `json:"bookmarked"`
}

// Apply merges the update into p, stamping SolvedAt when a question becomes solved
func (u ProgressUpdate) Apply(p *QuestionProgress, now time.Time) {
	if u.Solved != nil {
		if *u.Solved && !p.Solved {
			p.SolvedAt = &now
		}
		if !*u.Solved {
			p.SolvedAt = nil
		}
		p.Solved = *u.Solved
	}
	if u.Bookmarked != nil {
		p.Bookmarked = *u.Bookmarked
	}
}

// Empty reports whether the update changes nothing
func (u ProgressUpdate) Empty() bool {
	return u.Solved == nil && u.Bookmarked == nil
}
