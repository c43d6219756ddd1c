package domain

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Plan is the subscription tier that bounds how many platforms a user may link
type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
)

// ParsePlan validates a plan name from request input
func ParsePlan(s string) (Plan, error) {
	switch p := Plan(strings.ToLower(strings.TrimSpace(s))); p {
	case PlanFree, PlanPro:
		return p, nil
	default:
		return "", NewDomainError(ErrInvalidInput, "plan must be free or pro")
	}
}

// Identity is what the external identity provider tells us about the caller
type Identity struct {
	ExternalID string
	Email      string
}

// User represents a registered user of the platform.
// Users are created lazily the first time an identity is seen.
type User struct {
	ID                  uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	ExternalID          string    `json:"-" gorm:"uniqueIndex;not null"`
	Email               string    `json:"email"`
	Plan                Plan      `json:"plan" gorm:"type:varchar(20);not null;default:'free'"`
	LinkedPlatformCount int       `json:"linked_platform_count" gorm:"not null;default:0"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	// Relationships
	LinkedPlatforms []LinkedPlatform   `json:"-" gorm:"foreignKey:UserID"`
	Progress        []QuestionProgress `json:"-" gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns the primary key client side so every dialect works
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Plan == "" {
		u.Plan = PlanFree
	}
	return nil
}

// UserRepository defines the interface for user data access
// This abstraction allows for easy testing and swapping implementations
type UserRepository interface {
	FindOrCreateByExternalID(ctx context.Context, identity Identity) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdatePlan(ctx context.Context, id uuid.UUID, plan Plan) error
}

// UserResponse represents the public user data returned by the API
type UserResponse struct {
	ID                  uuid.UUID `json:"id"`
	Email               string    `json:"email"`
	Plan                Plan      `json:"plan"`
	LinkedPlatformCount int       `json:"linked_platform_count"`
	PlatformLimit       int       `json:"platform_limit"`
	IsAdmin             bool      `json:"is_admin"`
	CreatedAt           time.Time `json:"created_at"`
}

// ToResponse converts a User to a UserResponse
func (u *User) ToResponse(limit int, isAdmin bool) UserResponse {
	return UserResponse{
		ID:                  u.ID,
		Email:               u.Email,
		Plan:                u.Plan,
		LinkedPlatformCount: u.LinkedPlatformCount,
		PlatformLimit:       limit,
		IsAdmin:             isAdmin,
		CreatedAt:           u.CreatedAt,
	}
}

// Dashboard combines course progress with linked platform statistics
type Dashboard struct {
	Courses   CourseProgressSummary `json:"courses"`
	Platforms PlatformSummary       `json:"platforms"`
}

// CourseProgressSummary represents the user's progress across the catalog
type CourseProgressSummary struct {
	TotalSolved  int                    `json:"total_solved"`
	EasySolved   int                    `json:"easy_solved"`
	MediumSolved int                    `json:"medium_solved"`
	HardSolved   int                    `json:"hard_solved"`
	Bookmarked   int                    `json:"bookmarked"`
	ByCourse     map[string]CourseStats `json:"by_course"`
}

// CourseStats represents progress within a single course
type CourseStats struct {
	Total  int `json:"total"`
	Solved int `json:"solved"`
}

// PlatformSummary aggregates totals across every linked platform
type PlatformSummary struct {
	TotalSolved  int                         `json:"total_solved"`
	EasySolved   int                         `json:"easy_solved"`
	MediumSolved int                         `json:"medium_solved"`
	HardSolved   int                         `json:"hard_solved"`
	ByPlatform   map[Platform]*PlatformStats `json:"by_platform"`
}
