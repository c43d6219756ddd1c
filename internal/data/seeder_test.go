package data

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/algotrack/backend/internal/domain"
)

type recordingRepo struct {
	existing int64
	created  []domain.Course
}

func (r *recordingRepo) CreateBatch(_ context.Context, courses []domain.Course) error {
	r.created = append(r.created, courses...)
	return nil
}

func (r *recordingRepo) FindAll(context.Context) ([]domain.Course, error) {
	return r.created, nil
}

func (r *recordingRepo) FindBySlug(context.Context, string) (*domain.Course, error) {
	return nil, domain.ErrCourseNotFound
}

func (r *recordingRepo) FindQuestionByID(context.Context, uuid.UUID) (*domain.Question, error) {
	return nil, domain.ErrQuestionNotFound
}

func (r *recordingRepo) Count(context.Context) (int64, error) {
	return r.existing, nil
}

func TestEmbeddedCourses(t *testing.T) {
	courses, err := EmbeddedCourses()
	if err != nil {
		t.Fatalf("EmbeddedCourses: %v", err)
	}
	if len(courses) == 0 {
		t.Fatal("no courses embedded")
	}

	slugs := make(map[string]bool)
	for _, c := range courses {
		if slugs[c.Slug] {
			t.Errorf("duplicate course slug %q", c.Slug)
		}
		slugs[c.Slug] = true
		if len(c.Questions) == 0 {
			t.Errorf("course %q has no questions", c.Slug)
		}
		for i, q := range c.Questions {
			if q.OrderIndex != i+1 {
				t.Errorf("%s/%s order = %d, want %d", c.Slug, q.Slug, q.OrderIndex, i+1)
			}
			if q.URL == "" || q.Title == "" {
				t.Errorf("%s/%s is missing a title or url", c.Slug, q.Slug)
			}
		}
	}
}

func TestSeedCourses(t *testing.T) {
	tests := []struct {
		name     string
		existing int64
		wantNew  bool
	}{
		{"empty database", 0, true},
		{"already seeded", 5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &recordingRepo{existing: tt.existing}
			if err := NewSeeder(repo, zap.NewNop()).SeedCourses(context.Background()); err != nil {
				t.Fatalf("SeedCourses: %v", err)
			}
			if got := len(repo.created) > 0; got != tt.wantNew {
				t.Errorf("created courses = %v, want %v", got, tt.wantNew)
			}
		})
	}
}
