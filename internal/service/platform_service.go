package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/algotrack/backend/internal/domain"
	"github.com/algotrack/backend/internal/infrastructure"
)

// StatsFetcher returns normalized statistics for a handle, or nil when
// nothing could be fetched.
type StatsFetcher interface {
	FetchUserData(ctx context.Context, platform, username string) *domain.PlatformStats
}

// PlatformService dispatches fetches to the adapter for each platform.
// It never returns an error: every failure is logged and becomes nil.
type PlatformService struct {
	adapters map[domain.Platform]domain.PlatformAdapter
	order    []domain.Platform
	tracer   trace.Tracer
	metrics  *infrastructure.TelemetryMetrics
	logger   *zap.Logger
}

// NewPlatformService creates a new platform service
func NewPlatformService(
	adapters []domain.PlatformAdapter,
	tracer trace.Tracer,
	metrics *infrastructure.TelemetryMetrics,
	logger *zap.Logger,
) *PlatformService {
	s := &PlatformService{
		adapters: make(map[domain.Platform]domain.PlatformAdapter, len(adapters)),
		tracer:   tracer,
		metrics:  metrics,
		logger:   logger,
	}
	for _, a := range adapters {
		if _, dup := s.adapters[a.Platform()]; !dup {
			s.order = append(s.order, a.Platform())
		}
		s.adapters[a.Platform()] = a
	}
	return s
}

// Supported lists the registered platforms and what each can report
func (s *PlatformService) Supported() []domain.PlatformInfo {
	infos := make([]domain.PlatformInfo, 0, len(s.order))
	for _, p := range s.order {
		infos = append(infos, domain.PlatformInfo{
			Platform:     p,
			Capabilities: s.adapters[p].Capabilities(),
		})
	}
	return infos
}

// FetchUserData normalizes the platform id and calls its adapter.
// Unknown platforms, adapter errors and adapter panics all yield nil.
func (s *PlatformService) FetchUserData(ctx context.Context, platform, username string) *domain.PlatformStats {
	id := domain.Platform(strings.ToLower(strings.TrimSpace(platform)))

	ctx, span := s.tracer.Start(ctx, "PlatformService.FetchUserData")
	defer span.End()
	span.SetAttributes(
		attribute.String("platform", id.String()),
		attribute.String("platform.username", username),
	)

	adapter, ok := s.adapters[id]
	if !ok {
		s.logger.Warn("Unsupported platform requested",
			zap.String("platform", platform),
			zap.Error(domain.ErrUnsupportedPlatform),
		)
		span.SetStatus(codes.Error, domain.ErrUnsupportedPlatform.Error())
		return nil
	}

	start := time.Now()
	stats, err := s.callAdapter(ctx, adapter, username)
	outcome := fetchOutcome(stats, err)

	s.metrics.PlatformFetchDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("platform", id.String())),
	)
	s.metrics.PlatformFetchCount.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("platform", id.String()),
			attribute.String("outcome", outcome),
		),
	)

	if err != nil {
		fields := []zap.Field{
			zap.String("platform", id.String()),
			zap.String("username", username),
			zap.Error(err),
		}
		if errors.Is(err, domain.ErrProfileNotFound) {
			s.logger.Info("Platform profile not found", fields...)
		} else {
			s.logger.Error("Platform fetch failed", fields...)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		return nil
	}
	if stats == nil {
		return nil
	}

	stats.Platform = id.String()
	span.SetAttributes(attribute.Int("stats.total_solved", stats.TotalSolved))
	return stats
}

// callAdapter turns an adapter panic into an error
func (s *PlatformService) callAdapter(ctx context.Context, adapter domain.PlatformAdapter, username string) (stats *domain.PlatformStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			stats = nil
			err = fmt.Errorf("adapter panic: %v", r)
		}
	}()
	return adapter.FetchUserData(ctx, username)
}

func fetchOutcome(stats *domain.PlatformStats, err error) string {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		return "not_found"
	case err != nil:
		return "error"
	case stats == nil:
		return "empty"
	default:
		return "ok"
	}
}
