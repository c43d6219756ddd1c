package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/algotrack/backend/internal/domain"
)

// userRepository implements domain.UserRepository using GORM
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{db: db}
}

// FindOrCreateByExternalID returns the user for an identity, creating it on
// first use. A concurrent first request that wins the insert is re-read.
func (r *userRepository) FindOrCreateByExternalID(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	db := r.db.WithContext(ctx)

	user, err := r.findByExternalID(db, identity.ExternalID)
	if err == nil {
		if identity.Email != "" && user.Email != identity.Email {
			user.Email = identity.Email
			if err := db.Model(user).Update("email", identity.Email).Error; err != nil {
				return nil, err
			}
		}
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	user = &domain.User{
		ExternalID: identity.ExternalID,
		Email:      identity.Email,
		Plan:       domain.PlanFree,
	}
	if err := db.Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return r.findByExternalID(db, identity.ExternalID)
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) findByExternalID(db *gorm.DB, externalID string) (*domain.User, error) {
	var user domain.User
	result := db.Where("external_id = ?", externalID).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// FindByID finds a user by their ID
func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// UpdatePlan changes a user's subscription plan
func (r *userRepository) UpdatePlan(ctx context.Context, id uuid.UUID, plan domain.Plan) error {
	result := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Update("plan", plan)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
