package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Difficulty represents the difficulty level of a question
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Weight returns a numeric weight for sorting by difficulty
func (d Difficulty) Weight() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	default:
		return 0
	}
}

// Course is an ordered collection of practice questions
type Course struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	OrderIndex  int       `json:"order_index" gorm:"not null"`

	// Relationships
	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:CourseID"`
}

// TableName specifies the table name for GORM
func (Course) TableName() string {
	return "courses"
}

// BeforeCreate assigns the primary key client side
func (c *Course) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Question represents a single practice problem inside a course
type Question struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CourseID   uuid.UUID      `json:"course_id" gorm:"type:uuid;not null;index"`
	Title      string         `json:"title" gorm:"not null"`
	Slug       string         `json:"slug" gorm:"not null"`
	Difficulty Difficulty     `json:"difficulty" gorm:"type:varchar(10);not null"`
	Topics     pq.StringArray `json:"topics" gorm:"type:text[]"`
	URL        string         `json:"url"`
	OrderIndex int            `json:"order_index" gorm:"not null"` // position within the course
}

// TableName specifies the table name for GORM
func (Question) TableName() string {
	return "questions"
}

// BeforeCreate assigns the primary key client side
func (q *Question) BeforeCreate(*gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

// CourseRepository defines the interface for course catalog access
type CourseRepository interface {
	CreateBatch(ctx context.Context, courses []Course) error
	FindAll(ctx context.Context) ([]Course, error)
	FindBySlug(ctx context.Context, slug string) (*Course, error)
	FindQuestionByID(ctx context.Context, id uuid.UUID) (*Question, error)
	Count(ctx context.Context) (int64, error)
}

// CourseSummary is a course without its questions
type CourseSummary struct {
	ID            uuid.UUID `json:"id"`
	Slug          string    `json:"slug"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	QuestionCount int       `json:"question_count"`
}

// QuestionResponse represents a question together with the caller's progress
type QuestionResponse struct {
	ID         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Slug       string     `json:"slug"`
	Difficulty Difficulty `json:"difficulty"`
	Topics     []string   `json:"topics"`
	URL        string     `json:"url"`
	Solved     bool       `json:"solved"`
	Bookmarked bool       `json:"bookmarked"`
}

// ToResponse converts a Question to a QuestionResponse; progress may be nil
func (q *Question) ToResponse(progress *QuestionProgress) QuestionResponse {
	resp := QuestionResponse{
		ID:         q.ID,
		Title:      q.Title,
		Slug:       q.Slug,
		Difficulty: q.Difficulty,
		Topics:     q.Topics,
		URL:        q.URL,
	}
	if progress != nil {
		resp.Solved = progress.Solved
		resp.Bookmarked = progress.Bookmarked
	}
	return resp
}

// CourseDetail is a course with per-question progress
type CourseDetail struct {
	ID          uuid.UUID          `json:"id"`
	Slug        string             `json:"slug"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Solved      int                `json:"solved"`
	Questions   []QuestionResponse `json:"questions"`
}
