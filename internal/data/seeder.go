package data

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/algotrack/backend/internal/domain"
)

//go:embed courses.json
var coursesData []byte

// courseJSON represents the JSON structure for a course
type courseJSON struct {
	Slug        string         `json:"slug"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	OrderIndex  int            `json:"order_index"`
	Questions   []questionJSON `json:"questions"`
}

// questionJSON represents the JSON structure for a question
type questionJSON struct {
	Title      string   `json:"title"`
	Slug       string   `json:"slug"`
	Difficulty string   `json:"difficulty"`
	Topics     []string `json:"topics"`
	URL        string   `json:"url"`
}

// Seeder handles database seeding operations
type Seeder struct {
	courses domain.CourseRepository
	logger  *zap.Logger
}

// NewSeeder creates a new database seeder
func NewSeeder(courses domain.CourseRepository, logger *zap.Logger) *Seeder {
	return &Seeder{
		courses: courses,
		logger:  logger,
	}
}

// SeedCourses loads the embedded catalog once; an already seeded
// database is left alone.
func (s *Seeder) SeedCourses(ctx context.Context) error {
	s.logger.Info("Starting to seed courses...")

	count, err := s.courses.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		s.logger.Info("Courses already seeded, skipping",
			zap.Int64("count", count),
		)
		return nil
	}

	courses, err := EmbeddedCourses()
	if err != nil {
		return err
	}
	if err := s.courses.CreateBatch(ctx, courses); err != nil {
		return err
	}

	questions := 0
	for _, c := range courses {
		questions += len(c.Questions)
	}
	s.logger.Info("Successfully seeded courses",
		zap.Int("courses", len(courses)),
		zap.Int("questions", questions),
	)
	return nil
}

// EmbeddedCourses parses the embedded catalog. Question order follows the file.
func EmbeddedCourses() ([]domain.Course, error) {
	var raw []courseJSON
	if err := json.Unmarshal(coursesData, &raw); err != nil {
		return nil, fmt.Errorf("parse embedded courses: %w", err)
	}

	courses := make([]domain.Course, len(raw))
	for i, c := range raw {
		course := domain.Course{
			Slug:        c.Slug,
			Title:       c.Title,
			Description: c.Description,
			OrderIndex:  c.OrderIndex,
			Questions:   make([]domain.Question, len(c.Questions)),
		}
		for j, q := range c.Questions {
			difficulty := domain.Difficulty(q.Difficulty)
			if difficulty.Weight() == 0 {
				return nil, fmt.Errorf("question %s: unknown difficulty %q", q.Slug, q.Difficulty)
			}
			course.Questions[j] = domain.Question{
				Title:      q.Title,
				Slug:       q.Slug,
				Difficulty: difficulty,
				Topics:     q.Topics,
				URL:        q.URL,
				OrderIndex: j + 1,
			}
		}
		courses[i] = course
	}
	return courses, nil
}
