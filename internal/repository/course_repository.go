package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/algotrack/backend/internal/domain"
)

// courseRepository implements domain.CourseRepository using GORM
type courseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new course repository
func NewCourseRepository(db *gorm.DB) domain.CourseRepository {
	return &courseRepository{db: db}
}

// CreateBatch creates courses together with their questions
func (r *courseRepository) CreateBatch(ctx context.Context, courses []domain.Course) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range courses {
			if err := tx.Create(&courses[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// FindAll returns all courses with their questions, ordered by order_index
func (r *courseRepository) FindAll(ctx context.Context) ([]domain.Course, error) {
	var courses []domain.Course
	result := r.db.WithContext(ctx).
		Preload("Questions", orderByIndex).
		Order("order_index ASC").
		Find(&courses)
	return courses, result.Error
}

// FindBySlug finds a course and its questions by slug
func (r *courseRepository) FindBySlug(ctx context.Context, slug string) (*domain.Course, error) {
	var course domain.Course
	result := r.db.WithContext(ctx).
		Preload("Questions", orderByIndex).
		Where("slug = ?", slug).
		First(&course)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCourseNotFound
		}
		return nil, result.Error
	}
	return &course, nil
}

// FindQuestionByID finds a question by its ID
func (r *courseRepository) FindQuestionByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	var question domain.Question
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&question)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, result.Error
	}
	return &question, nil
}

// Count returns the total number of courses
func (r *courseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&domain.Course{}).Count(&count)
	return count, result.Error
}

func orderByIndex(db *gorm.DB) *gorm.DB {
	return db.Order("order_index ASC")
}
