package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/algotrack/backend/internal/domain"
)

// linkedPlatformRepository implements domain.LinkedPlatformRepository using GORM
type linkedPlatformRepository struct {
	db *gorm.DB
}

// NewLinkedPlatformRepository creates a new linked platform repository
func NewLinkedPlatformRepository(db *gorm.DB) domain.LinkedPlatformRepository {
	return &linkedPlatformRepository{db: db}
}

// Find returns the link for (user, platform) or domain.ErrNotLinked
func (r *linkedPlatformRepository) Find(ctx context.Context, userID uuid.UUID, platform domain.Platform) (*domain.LinkedPlatform, error) {
	var link domain.LinkedPlatform
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND platform = ?", userID, platform).
		First(&link)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotLinked
		}
		return nil, result.Error
	}
	return &link, nil
}

// FindByUser returns every link a user has, oldest first
func (r *linkedPlatformRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]domain.LinkedPlatform, error) {
	var links []domain.LinkedPlatform
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&links)
	return links, result.Error
}

// CreateLink inserts the link, bumps the user's counter and records the log
// entry in one transaction.
func (r *linkedPlatformRepository) CreateLink(ctx context.Context, link *domain.LinkedPlatform, entry *domain.SyncLogEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(link).Error; err != nil {
			if isDuplicateKey(err) {
				return domain.ErrAlreadyLinked
			}
			return err
		}
		if err := adjustLinkCount(tx, link.UserID, 1); err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

// UpdateLink saves the mutable link fields and records the log entry
func (r *linkedPlatformRepository) UpdateLink(ctx context.Context, link *domain.LinkedPlatform, entry *domain.SyncLogEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(link).
			Select("username", "stats", "last_sync", "is_active", "updated_at").
			Updates(link)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotLinked
		}
		return tx.Create(entry).Error
	})
}

// Unlink deletes the link, decrements the counter and records the log entry.
// Either all three take effect or none do.
func (r *linkedPlatformRepository) Unlink(ctx context.Context, link *domain.LinkedPlatform, entry *domain.SyncLogEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ?", link.ID).Delete(&domain.LinkedPlatform{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotLinked
		}
		if err := adjustLinkCount(tx, link.UserID, -1); err != nil {
			return err
		}
		return tx.Create(entry).Error
	})
}

// adjustLinkCount moves the denormalized counter, never below zero
func adjustLinkCount(tx *gorm.DB, userID uuid.UUID, delta int) error {
	q := tx.Model(&domain.User{}).Where("id = ?", userID)
	if delta < 0 {
		q = q.Where("linked_platform_count > 0")
	}
	result := q.UpdateColumn("linked_platform_count", gorm.Expr("linked_platform_count + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 && delta > 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// AppendLog records a standalone log entry
func (r *linkedPlatformRepository) AppendLog(ctx context.Context, entry *domain.SyncLogEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListLogs returns a user's most recent log entries, newest first
func (r *linkedPlatformRepository) ListLogs(ctx context.Context, userID uuid.UUID, limit int) ([]domain.SyncLogEntry, error) {
	var entries []domain.SyncLogEntry
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries)
	return entries, result.Error
}
