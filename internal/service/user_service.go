package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/algotrack/backend/internal/domain"
)

// UserService handles user-related business logic
type UserService struct {
	users    domain.UserRepository
	links    domain.LinkedPlatformRepository
	courses  domain.CourseRepository
	progress domain.ProgressRepository
	limits   PlanLimits
	admins   AdminPolicy
	tracer   trace.Tracer
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	users domain.UserRepository,
	links domain.LinkedPlatformRepository,
	courses domain.CourseRepository,
	progress domain.ProgressRepository,
	limits PlanLimits,
	admins AdminPolicy,
	tracer trace.Tracer,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		users:    users,
		links:    links,
		courses:  courses,
		progress: progress,
		limits:   limits,
		admins:   admins,
		tracer:   tracer,
		logger:   logger,
	}
}

// EnsureUser returns the user for an identity, creating it on first use
func (s *UserService) EnsureUser(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.EnsureUser")
	defer span.End()

	user, err := s.users.FindOrCreateByExternalID(ctx, identity)
	if err != nil {
		s.logger.Error("Failed to resolve user", zap.String("external_id", identity.ExternalID), zap.Error(err))
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", user.ID.String()))
	return user, nil
}

// Profile returns the caller with their plan limit and admin flag
func (s *UserService) Profile(ctx context.Context, identity domain.Identity) (*domain.UserResponse, error) {
	user, err := s.EnsureUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	resp := user.ToResponse(s.limits.For(user.Plan), s.admins.IsAdmin(identity))
	return &resp, nil
}

// SetPlan moves another user between plans. Only admins may call it, and
// the returned profile describes the target user.
func (s *UserService) SetPlan(ctx context.Context, caller domain.Identity, userID uuid.UUID, plan domain.Plan) (*domain.UserResponse, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.SetPlan")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", userID.String()),
		attribute.String("user.plan", string(plan)),
	)

	if !s.admins.IsAdmin(caller) {
		s.logger.Warn("Plan change refused for non-admin",
			zap.String("external_id", caller.ExternalID),
			zap.String("target_user_id", userID.String()),
		)
		return nil, domain.ErrForbidden
	}
	plan, err := domain.ParsePlan(string(plan))
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdatePlan(ctx, userID, plan); err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.logger.Error("Failed to update plan", zap.String("user_id", userID.String()), zap.Error(err))
		}
		return nil, err
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to reload user", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, err
	}

	s.logger.Info("User plan changed",
		zap.String("user_id", userID.String()),
		zap.String("plan", string(plan)),
		zap.String("changed_by", caller.Email),
	)
	resp := user.ToResponse(s.limits.For(user.Plan), s.admins.IsAdmin(domain.Identity{Email: user.Email}))
	return &resp, nil
}

// GetDashboard combines course progress with linked platform totals.
// Both halves are loaded concurrently.
func (s *UserService) GetDashboard(ctx context.Context, identity domain.Identity) (*domain.Dashboard, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.GetDashboard")
	defer span.End()

	user, err := s.EnsureUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", user.ID.String()))

	type coursesResult struct {
		summary domain.CourseProgressSummary
		err     error
	}
	type platformsResult struct {
		summary domain.PlatformSummary
		err     error
	}
	courseCh := make(chan coursesResult, 1)
	platformCh := make(chan platformsResult, 1)

	go func() {
		summary, err := s.courseProgress(ctx, user)
		courseCh <- coursesResult{summary: summary, err: err}
	}()
	go func() {
		summary, err := s.platformSummary(ctx, user)
		platformCh <- platformsResult{summary: summary, err: err}
	}()

	courses := <-courseCh
	platforms := <-platformCh
	if courses.err != nil {
		s.logger.Error("Failed to load course progress", zap.String("user_id", user.ID.String()), zap.Error(courses.err))
		return nil, courses.err
	}
	if platforms.err != nil {
		s.logger.Error("Failed to load linked platforms", zap.String("user_id", user.ID.String()), zap.Error(platforms.err))
		return nil, platforms.err
	}

	return &domain.Dashboard{Courses: courses.summary, Platforms: platforms.summary}, nil
}

func (s *UserService) courseProgress(ctx context.Context, user *domain.User) (domain.CourseProgressSummary, error) {
	summary := domain.CourseProgressSummary{ByCourse: make(map[string]domain.CourseStats)}

	courses, err := s.courses.FindAll(ctx)
	if err != nil {
		return summary, err
	}
	rows, err := s.progress.FindByUser(ctx, user.ID)
	if err != nil {
		return summary, err
	}
	byQuestion := make(map[string]domain.QuestionProgress, len(rows))
	for _, row := range rows {
		byQuestion[row.QuestionID.String()] = row
		if row.Bookmarked {
			summary.Bookmarked++
		}
	}

	for _, course := range courses {
		stats := domain.CourseStats{Total: len(course.Questions)}
		for _, q := range course.Questions {
			row, ok := byQuestion[q.ID.String()]
			if !ok || !row.Solved {
				continue
			}
			stats.Solved++
			summary.TotalSolved++
			switch q.Difficulty {
			case domain.DifficultyEasy:
				summary.EasySolved++
			case domain.DifficultyMedium:
				summary.MediumSolved++
			case domain.DifficultyHard:
				summary.HardSolved++
			}
		}
		summary.ByCourse[course.Slug] = stats
	}
	return summary, nil
}

func (s *UserService) platformSummary(ctx context.Context, user *domain.User) (domain.PlatformSummary, error) {
	summary := domain.PlatformSummary{ByPlatform: make(map[domain.Platform]*domain.PlatformStats)}

	links, err := s.links.FindByUser(ctx, user.ID)
	if err != nil {
		return summary, err
	}
	for i := range links {
		stats, err := links[i].DecodeStats()
		if err != nil {
			s.logger.Warn("Skipping unreadable platform stats",
				zap.String("user_id", user.ID.String()),
				zap.String("platform", links[i].Platform.String()),
				zap.Error(err),
			)
			continue
		}
		if stats == nil {
			continue
		}
		summary.ByPlatform[links[i].Platform] = stats
		summary.TotalSolved += stats.TotalSolved
		summary.EasySolved += stats.EasySolved
		summary.MediumSolved += stats.MediumSolved
		summary.HardSolved += stats.HardSolved
	}
	return summary, nil
}
