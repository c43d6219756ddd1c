package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SyncStatus is the outcome recorded in the sync log
type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "SUCCESS"
	SyncStatusFailed  SyncStatus = "FAILED"
)

// Sync log actions
const (
	ActionLink   = "link"
	ActionUpdate = "update"
	ActionSync   = "sync"
	ActionUnlink = "unlink"
)

// LinkedPlatform associates a platform handle with a user.
// (user_id, platform) is unique.
type LinkedPlatform struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_linked_user_platform"`
	Platform  Platform       `json:"platform" gorm:"type:varchar(32);not null;uniqueIndex:idx_linked_user_platform"`
	Username  string         `json:"username" gorm:"not null"`
	Stats     datatypes.JSON `json:"stats" gorm:"type:jsonb"`
	LastSync  *time.Time     `json:"last_sync"`
	IsActive  bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`

	// Relationships
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for GORM
func (LinkedPlatform) TableName() string {
	return "linked_platforms"
}

// BeforeCreate assigns the primary key client side
func (l *LinkedPlatform) BeforeCreate(*gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// DecodeStats returns the stored statistics, or nil when none are stored
func (l *LinkedPlatform) DecodeStats() (*PlatformStats, error) {
	if len(l.Stats) == 0 || string(l.Stats) == "null" {
		return nil, nil
	}
	var stats PlatformStats
	if err := json.Unmarshal(l.Stats, &stats); err != nil {
		return nil, fmt.Errorf("decode stats for %s: %w", l.Platform, err)
	}
	return &stats, nil
}

// SetStats encodes stats into the jsonb column
func (l *LinkedPlatform) SetStats(stats *PlatformStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("encode stats for %s: %w", l.Platform, err)
	}
	l.Stats = datatypes.JSON(raw)
	return nil
}

// SyncLogEntry is one append-only audit record of a link, sync or unlink
type SyncLogEntry struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	Platform  Platform       `json:"platform" gorm:"type:varchar(32);not null;index"`
	Status    SyncStatus     `json:"status" gorm:"type:varchar(16);not null"`
	ErrorMsg  *string        `json:"error_msg"`
	Data      datatypes.JSON `json:"data" gorm:"type:jsonb"`
	CreatedAt time.Time      `json:"created_at" gorm:"index"`
}

// TableName specifies the table name for GORM
func (SyncLogEntry) TableName() string {
	return "sync_logs"
}

// BeforeCreate assigns the primary key client side
func (e *SyncLogEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// SyncLogData is the free-form snapshot stored with each log entry
type SyncLogData struct {
	Action       string         `json:"action"`
	Timestamp    time.Time      `json:"timestamp"`
	Username     string         `json:"username,omitempty"`
	StatsPreview map[string]int `json:"statsPreview,omitempty"`
	LastStats    *PlatformStats `json:"lastStats,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// NewSyncLogEntry builds a log entry; errMsg is only stored when non-empty
func NewSyncLogEntry(userID uuid.UUID, platform Platform, status SyncStatus, errMsg string, data SyncLogData) *SyncLogEntry {
	entry := &SyncLogEntry{
		UserID:   userID,
		Platform: platform,
		Status:   status,
	}
	if errMsg != "" {
		entry.ErrorMsg = &errMsg
	}
	// SyncLogData only holds JSON-safe values
	raw, _ := json.Marshal(data)
	entry.Data = datatypes.JSON(raw)
	return entry
}

// LinkedPlatformRepository defines data access for links and their audit log.
// Multi-record mutations are atomic.
type LinkedPlatformRepository interface {
	Find(ctx context.Context, userID uuid.UUID, platform Platform) (*LinkedPlatform, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]LinkedPlatform, error)
	// CreateLink inserts the link, increments the user's counter and appends
	// the log entry. Returns ErrAlreadyLinked on a unique key violation.
	CreateLink(ctx context.Context, link *LinkedPlatform, entry *SyncLogEntry) error
	// UpdateLink saves the link and appends the log entry
	UpdateLink(ctx context.Context, link *LinkedPlatform, entry *SyncLogEntry) error
	// Unlink deletes the link, decrements the counter and appends the entry
	Unlink(ctx context.Context, link *LinkedPlatform, entry *SyncLogEntry) error
	AppendLog(ctx context.Context, entry *SyncLogEntry) error
	ListLogs(ctx context.Context, userID uuid.UUID, limit int) ([]SyncLogEntry, error)
}

// LinkRequest represents the data needed to link a platform
type LinkRequest struct {
	Platform string `json:"platform" binding:"required"`
	Username string `json:"username" binding:"required"`
}

// LinkResult is returned by a successful link
type LinkResult struct {
	Link      *LinkedPlatform `json:"link"`
	IsNewLink bool            `json:"is_new_link"`
}

// SyncOutcome is the per-platform result of a sync-all run
type SyncOutcome struct {
	Platform Platform       `json:"platform"`
	Status   SyncStatus     `json:"status"`
	Error    string         `json:"error,omitempty"`
	Stats    *PlatformStats `json:"stats,omitempty"`
}

// LinkedPlatformResponse represents a link in API responses
type LinkedPlatformResponse struct {
	Platform Platform       `json:"platform"`
	Username string         `json:"username"`
	Stats    *PlatformStats `json:"stats"`
	LastSync *time.Time     `json:"last_sync"`
	IsActive bool           `json:"is_active"`
}

// ToResponse converts a LinkedPlatform to its API shape.
// Undecodable stats are returned as nil rather than failing the response.
func (l *LinkedPlatform) ToResponse() LinkedPlatformResponse {
	stats, _ := l.DecodeStats()
	return LinkedPlatformResponse{
		Platform: l.Platform,
		Username: l.Username,
		Stats:    stats,
		LastSync: l.LastSync,
		IsActive: l.IsActive,
	}
}
