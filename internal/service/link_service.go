package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/algotrack/backend/internal/domain"
	"github.com/algotrack/backend/internal/infrastructure"
)

// Sync log listing bounds
const (
	DefaultLogLimit = 20
	MaxLogLimit     = 100
)

// noDataMessage is stored on FAILED entries when the dispatcher returns nil
const noDataMessage = "No data returned from platform"

// LinkService links, syncs and unlinks platform accounts
type LinkService struct {
	users   domain.UserRepository
	links   domain.LinkedPlatformRepository
	fetcher StatsFetcher
	limits  PlanLimits
	admins  AdminPolicy
	tracer  trace.Tracer
	metrics *infrastructure.TelemetryMetrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewLinkService creates a new link service
func NewLinkService(
	users domain.UserRepository,
	links domain.LinkedPlatformRepository,
	fetcher StatsFetcher,
	limits PlanLimits,
	admins AdminPolicy,
	tracer trace.Tracer,
	metrics *infrastructure.TelemetryMetrics,
	logger *zap.Logger,
) *LinkService {
	return &LinkService{
		users:   users,
		links:   links,
		fetcher: fetcher,
		limits:  limits,
		admins:  admins,
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

// Link associates a platform handle with the caller. Linking an already
// linked platform refreshes its username and statistics.
func (s *LinkService) Link(ctx context.Context, identity domain.Identity, req domain.LinkRequest) (*domain.LinkResult, error) {
	ctx, span := s.tracer.Start(ctx, "LinkService.Link")
	defer span.End()

	platform, username, err := validateLinkRequest(req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("platform", platform.String()),
		attribute.String("platform.username", username),
	)

	user, err := s.users.FindOrCreateByExternalID(ctx, identity)
	if err != nil {
		return nil, err
	}

	existing, err := s.findLink(ctx, user.ID, platform)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		if err := s.checkLimit(identity, user); err != nil {
			s.logger.Info("Platform limit reached",
				zap.String("user_id", user.ID.String()),
				zap.String("platform", platform.String()),
				zap.Error(err),
			)
			return nil, err
		}
	}

	fetched := s.fetcher.FetchUserData(ctx, platform.String(), username)
	if fetched == nil {
		return nil, domain.NewDomainError(domain.ErrUsernameNotFound,
			fmt.Sprintf("username %q not found on %s", username, platform))
	}

	now := s.now()
	stats := fetched.Clone()
	stats.Platform = platform.String()
	stats.LastUpdated = &now

	// A concurrent first link can win the unique key; the second attempt
	// then takes the update path.
	result, err := retry.DoWithData(
		func() (*domain.LinkResult, error) {
			if existing == nil {
				link, err := s.createLink(ctx, user.ID, platform, username, stats, now)
				if errors.Is(err, domain.ErrAlreadyLinked) {
					if found, ferr := s.findLink(ctx, user.ID, platform); ferr == nil {
						existing = found
					}
				}
				if err != nil {
					return nil, err
				}
				return &domain.LinkResult{Link: link, IsNewLink: true}, nil
			}
			link, err := s.updateLink(ctx, existing, username, stats, now)
			if err != nil {
				return nil, err
			}
			return &domain.LinkResult{Link: link, IsNewLink: false}, nil
		},
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(10*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, domain.ErrAlreadyLinked) && existing != nil
		}),
		retry.OnRetry(func(n uint, err error) {
			s.logger.Info("Concurrent first link, retrying as update",
				zap.String("user_id", user.ID.String()),
				zap.String("platform", platform.String()),
			)
		}),
	)
	if err != nil {
		s.logger.Error("Failed to save platform link",
			zap.String("user_id", user.ID.String()),
			zap.String("platform", platform.String()),
			zap.Error(err),
		)
		return nil, err
	}

	action := domain.ActionUpdate
	if result.IsNewLink {
		action = domain.ActionLink
		s.metrics.ActiveLinks.Add(ctx, 1, metric.WithAttributes(attribute.String("platform", platform.String())))
	}
	s.recordOutcome(ctx, action, platform, domain.SyncStatusSuccess)

	s.logger.Info("Platform linked",
		zap.String("user_id", user.ID.String()),
		zap.String("platform", platform.String()),
		zap.String("username", username),
		zap.Bool("new_link", result.IsNewLink),
		zap.Int("total_solved", stats.TotalSolved),
	)
	return result, nil
}

func validateLinkRequest(req domain.LinkRequest) (domain.Platform, string, error) {
	platform, err := domain.ParsePlatform(req.Platform)
	if err != nil {
		return "", "", domain.NewDomainError(fmt.Errorf("%w: %w", domain.ErrInvalidInput, err),
			fmt.Sprintf("unsupported platform %q", req.Platform))
	}
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return "", "", domain.NewDomainError(domain.ErrInvalidInput, "username is required")
	}
	return platform, username, nil
}

func (s *LinkService) checkLimit(identity domain.Identity, user *domain.User) error {
	if s.admins.IsAdmin(identity) {
		return nil
	}
	limit := s.limits.For(user.Plan)
	if limit > 0 && user.LinkedPlatformCount >= limit {
		return &domain.LimitError{Current: user.LinkedPlatformCount, Limit: limit}
	}
	return nil
}

// findLink returns nil without error when the platform is not linked
func (s *LinkService) findLink(ctx context.Context, userID uuid.UUID, platform domain.Platform) (*domain.LinkedPlatform, error) {
	link, err := s.links.Find(ctx, userID, platform)
	if errors.Is(err, domain.ErrNotLinked) {
		return nil, nil
	}
	return link, err
}

func (s *LinkService) createLink(ctx context.Context, userID uuid.UUID, platform domain.Platform, username string, stats *domain.PlatformStats, now time.Time) (*domain.LinkedPlatform, error) {
	link := &domain.LinkedPlatform{
		UserID:   userID,
		Platform: platform,
		Username: username,
		LastSync: &now,
		IsActive: true,
	}
	if err := link.SetStats(stats); err != nil {
		return nil, err
	}
	entry := domain.NewSyncLogEntry(userID, platform, domain.SyncStatusSuccess, "", domain.SyncLogData{
		Action:       domain.ActionLink,
		Timestamp:    now,
		Username:     username,
		StatsPreview: stats.StatsPreview(),
	})
	if err := s.links.CreateLink(ctx, link, entry); err != nil {
		return nil, err
	}
	return link, nil
}

func (s *LinkService) updateLink(ctx context.Context, link *domain.LinkedPlatform, username string, stats *domain.PlatformStats, now time.Time) (*domain.LinkedPlatform, error) {
	updated := *link
	updated.Username = username
	updated.LastSync = &now
	updated.IsActive = true
	if err := updated.SetStats(stats); err != nil {
		return nil, err
	}
	entry := domain.NewSyncLogEntry(link.UserID, link.Platform, domain.SyncStatusSuccess, "", domain.SyncLogData{
		Action:       domain.ActionUpdate,
		Timestamp:    now,
		Username:     username,
		StatsPreview: stats.StatsPreview(),
	})
	if err := s.links.UpdateLink(ctx, &updated, entry); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Sync refreshes the statistics of a linked platform using the stored
// username. When the platform returns nothing the stored record is kept and
// ErrNoPlatformData is returned.
func (s *LinkService) Sync(ctx context.Context, identity domain.Identity, platformID string) (link *domain.LinkedPlatform, err error) {
	ctx, span := s.tracer.Start(ctx, "LinkService.Sync")
	defer span.End()

	platform, err := domain.ParsePlatform(platformID)
	if err != nil {
		return nil, domain.NewDomainError(fmt.Errorf("%w: %w", domain.ErrInvalidInput, err),
			fmt.Sprintf("unsupported platform %q", platformID))
	}
	span.SetAttributes(attribute.String("platform", platform.String()))

	var userID uuid.UUID
	defer func() {
		if r := recover(); r != nil {
			link, err = nil, s.syncFailure(ctx, userID, platform, fmt.Errorf("panic: %v", r))
		}
	}()

	user, err := s.users.FindOrCreateByExternalID(ctx, identity)
	if err != nil {
		return nil, s.syncFailure(ctx, userID, platform, err)
	}
	userID = user.ID

	existing, err := s.links.Find(ctx, user.ID, platform)
	if err != nil {
		if errors.Is(err, domain.ErrNotLinked) {
			return nil, err
		}
		return nil, s.syncFailure(ctx, userID, platform, err)
	}
	return s.syncLink(ctx, existing)
}

// syncLink fetches and stores fresh statistics for one link
func (s *LinkService) syncLink(ctx context.Context, link *domain.LinkedPlatform) (*domain.LinkedPlatform, error) {
	fetched := s.fetcher.FetchUserData(ctx, link.Platform.String(), link.Username)
	now := s.now()

	if fetched == nil {
		entry := domain.NewSyncLogEntry(link.UserID, link.Platform, domain.SyncStatusFailed, noDataMessage, domain.SyncLogData{
			Action:    domain.ActionSync,
			Timestamp: now,
			Username:  link.Username,
			Error:     noDataMessage,
		})
		if err := s.links.AppendLog(ctx, entry); err != nil {
			return nil, s.syncFailure(ctx, link.UserID, link.Platform, err)
		}
		s.recordOutcome(ctx, domain.ActionSync, link.Platform, domain.SyncStatusFailed)
		s.logger.Warn("Sync returned no data",
			zap.String("user_id", link.UserID.String()),
			zap.String("platform", link.Platform.String()),
			zap.String("username", link.Username),
		)
		return nil, domain.ErrNoPlatformData
	}

	stats := fetched.Clone()
	stats.Platform = link.Platform.String()
	stats.SyncedAt = &now
	stats.PreviousSync = link.LastSync

	updated := *link
	updated.LastSync = &now
	updated.IsActive = true
	if err := updated.SetStats(stats); err != nil {
		return nil, s.syncFailure(ctx, link.UserID, link.Platform, err)
	}
	entry := domain.NewSyncLogEntry(link.UserID, link.Platform, domain.SyncStatusSuccess, "", domain.SyncLogData{
		Action:       domain.ActionSync,
		Timestamp:    now,
		Username:     link.Username,
		StatsPreview: stats.StatsPreview(),
	})
	if err := s.links.UpdateLink(ctx, &updated, entry); err != nil {
		return nil, s.syncFailure(ctx, link.UserID, link.Platform, err)
	}

	s.recordOutcome(ctx, domain.ActionSync, link.Platform, domain.SyncStatusSuccess)
	s.logger.Info("Platform synced",
		zap.String("user_id", link.UserID.String()),
		zap.String("platform", link.Platform.String()),
		zap.Int("total_solved", stats.TotalSolved),
	)
	return &updated, nil
}

// syncFailure logs an unexpected sync error, writes a best-effort FAILED
// entry and returns the generic sync failure.
func (s *LinkService) syncFailure(ctx context.Context, userID uuid.UUID, platform domain.Platform, cause error) error {
	s.logger.Error("Platform sync failed",
		zap.String("user_id", userID.String()),
		zap.String("platform", platform.String()),
		zap.Error(cause),
	)
	s.recordOutcome(ctx, domain.ActionSync, platform, domain.SyncStatusFailed)

	msg := cause.Error()
	entry := domain.NewSyncLogEntry(userID, platform, domain.SyncStatusFailed, msg, domain.SyncLogData{
		Action:    domain.ActionSync,
		Timestamp: s.now(),
		Error:     msg,
	})
	if err := s.links.AppendLog(ctx, entry); err != nil {
		s.logger.Error("Failed to record sync failure",
			zap.String("user_id", userID.String()),
			zap.String("platform", platform.String()),
			zap.Error(err),
		)
	}
	return domain.ErrSyncFailed
}

// SyncAll syncs every linked platform concurrently. One platform failing
// never stops the others; each gets its own outcome.
func (s *LinkService) SyncAll(ctx context.Context, identity domain.Identity) ([]domain.SyncOutcome, error) {
	ctx, span := s.tracer.Start(ctx, "LinkService.SyncAll")
	defer span.End()

	user, err := s.users.FindOrCreateByExternalID(ctx, identity)
	if err != nil {
		return nil, err
	}
	links, err := s.links.FindByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("links.count", len(links)))

	outcomes := make([]domain.SyncOutcome, len(links))
	var wg sync.WaitGroup
	for i := range links {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = s.syncOne(ctx, &links[i])
		}(i)
	}
	wg.Wait()

	return outcomes, nil
}

func (s *LinkService) syncOne(ctx context.Context, link *domain.LinkedPlatform) (outcome domain.SyncOutcome) {
	outcome.Platform = link.Platform
	defer func() {
		if r := recover(); r != nil {
			err := s.syncFailure(ctx, link.UserID, link.Platform, fmt.Errorf("panic: %v", r))
			outcome.Status = domain.SyncStatusFailed
			outcome.Error = err.Error()
			outcome.Stats = nil
		}
	}()

	updated, err := s.syncLink(ctx, link)
	if err != nil {
		outcome.Status = domain.SyncStatusFailed
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Status = domain.SyncStatusSuccess
	outcome.Stats, _ = updated.DecodeStats()
	return outcome
}

// Unlink removes a linked platform. The deletion, the counter decrement and
// the log entry are committed together.
func (s *LinkService) Unlink(ctx context.Context, identity domain.Identity, platformID string) error {
	ctx, span := s.tracer.Start(ctx, "LinkService.Unlink")
	defer span.End()

	platform, err := domain.ParsePlatform(platformID)
	if err != nil {
		return domain.NewDomainError(fmt.Errorf("%w: %w", domain.ErrInvalidInput, err),
			fmt.Sprintf("unsupported platform %q", platformID))
	}
	span.SetAttributes(attribute.String("platform", platform.String()))

	user, err := s.users.FindOrCreateByExternalID(ctx, identity)
	if err != nil {
		return err
	}
	link, err := s.links.Find(ctx, user.ID, platform)
	if err != nil {
		return err
	}

	lastStats, err := link.DecodeStats()
	if err != nil {
		s.logger.Warn("Stored stats unreadable, unlinking without snapshot",
			zap.String("user_id", user.ID.String()),
			zap.String("platform", platform.String()),
			zap.Error(err),
		)
	}
	entry := domain.NewSyncLogEntry(user.ID, platform, domain.SyncStatusSuccess, "", domain.SyncLogData{
		Action:    domain.ActionUnlink,
		Timestamp: s.now(),
		Username:  link.Username,
		LastStats: lastStats,
	})
	if err := s.links.Unlink(ctx, link, entry); err != nil {
		s.logger.Error("Failed to unlink platform",
			zap.String("user_id", user.ID.String()),
			zap.String("platform", platform.String()),
			zap.Error(err),
		)
		return err
	}

	s.metrics.ActiveLinks.Add(ctx, -1, metric.WithAttributes(attribute.String("platform", platform.String())))
	s.recordOutcome(ctx, domain.ActionUnlink, platform, domain.SyncStatusSuccess)
	s.logger.Info("Platform unlinked",
		zap.String("user_id", user.ID.String()),
		zap.String("platform", platform.String()),
		zap.String("username", link.Username),
	)
	return nil
}

// ListLinked returns the caller's linked platforms
func (s *LinkService) ListLinked(ctx context.Context, identity domain.Identity) ([]domain.LinkedPlatform, error) {
	ctx, span := s.tracer.Start(ctx, "LinkService.ListLinked")
	defer span.End()

	user, err := s.users.FindOrCreateByExternalID(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.links.FindByUser(ctx, user.ID)
}

// ListSyncLogs returns the caller's most recent sync log entries.
// limit is clamped to [1, MaxLogLimit]; zero or less means DefaultLogLimit.
func (s *LinkService) ListSyncLogs(ctx context.Context, identity domain.Identity, limit int) ([]domain.SyncLogEntry, error) {
	ctx, span := s.tracer.Start(ctx, "LinkService.ListSyncLogs")
	defer span.End()

	switch {
	case limit <= 0:
		limit = DefaultLogLimit
	case limit > MaxLogLimit:
		limit = MaxLogLimit
	}

	user, err := s.users.FindOrCreateByExternalID(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.links.ListLogs(ctx, user.ID, limit)
}

func (s *LinkService) recordOutcome(ctx context.Context, action string, platform domain.Platform, status domain.SyncStatus) {
	s.metrics.SyncOutcomes.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("platform", platform.String()),
		attribute.String("status", string(status)),
	))
}
