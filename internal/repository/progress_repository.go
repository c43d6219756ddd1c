package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/algotrack/backend/internal/domain"
)

// progressRepository implements domain.ProgressRepository using GORM
type progressRepository struct {
	db *gorm.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *gorm.DB) domain.ProgressRepository {
	return &progressRepository{db: db}
}

// FindByUser returns all progress rows for a user
func (r *progressRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.QuestionProgress, error) {
	var rows []domain.QuestionProgress
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows)
	return rows, result.Error
}

// Find returns the progress row for one question, or nil when the user has
// never touched it.
func (r *progressRepository) Find(ctx context.Context, userID, questionID uuid.UUID) (*domain.QuestionProgress, error) {
	var row domain.QuestionProgress
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND question_id = ?", userID, questionID).
		First(&row)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &row, nil
}

// Upsert inserts or replaces the progress row keyed by (user, question)
func (r *progressRepository) Upsert(ctx context.Context, progress *domain.QuestionProgress) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "question_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"solved", "bookmarked", "solved_at", "updated_at"}),
		}).
		Create(progress).Error
}

// FindBookmarked returns bookmarked rows with their questions loaded
func (r *progressRepository) FindBookmarked(ctx context.Context, userID uuid.UUID) ([]domain.QuestionProgress, error) {
	var rows []domain.QuestionProgress
	result := r.db.WithContext(ctx).
		Preload("Question").
		Where("user_id = ? AND bookmarked = ?", userID, true).
		Order("updated_at DESC").
		Find(&rows)
	return rows, result.Error
}
