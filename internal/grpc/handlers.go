package grpc

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/labor-insights/internal/pipeline"
	"github.com/godilite/labor-insights/internal/repository/models"
	"github.com/godilite/labor-insights/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultCacheDuration = 10 * time.Minute
	defaultGRPCTimeout   = 10 * time.Second
)

type CacheKeyType string

const (
	cacheKeyDescriptiveStats  CacheKeyType = "grpc:descriptive_stats"
	cacheKeyRegionStats       CacheKeyType = "grpc:region_stats"
	cacheKeyRegionStateMeans  CacheKeyType = "grpc:region_state_means"
	cacheKeyCorrelationMatrix CacheKeyType = "grpc:correlation_matrix"
	cacheKeyStateRanking      CacheKeyType = "grpc:state_ranking"
	cacheKeyLockdownImpact    CacheKeyType = "grpc:lockdown_impact"
)

type GRPCHandlers struct {
	analytics AnalyticsService
	cache     *responseCache
	logger    *zap.Logger
	cacheTTL  time.Duration
}

var _ LaborInsightsServer = (*GRPCHandlers)(nil)

// NewGRPCHandlers initializes the gRPC handlers. A nil cache disables
// response caching.
func NewGRPCHandlers(analytics AnalyticsService, cache Cacher, logger *zap.Logger, ttl time.Duration) *GRPCHandlers {
	if analytics == nil {
		panic("nil AnalyticsService provided to NewGRPCHandlers")
	}
	if ttl <= 0 {
		ttl = defaultCacheDuration
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("grpc-handler")
	return &GRPCHandlers{
		analytics: analytics,
		cache:     newResponseCache(cache, ttl, logger),
		logger:    logger,
		cacheTTL:  ttl,
	}
}

// revisionKey scopes a cache entry to one revision of the stored dataset.
func revisionKey(prefix CacheKeyType, rev models.DatasetRevision) string {
	return fmt.Sprintf("%s:%d-%d", prefix, rev.Count, rev.MaxID)
}

func (s *GRPCHandlers) handleError(ctx context.Context, op string, err error) error {
	switch ctx.Err() {
	case context.Canceled:
		s.logger.Warn("request canceled", zap.String("op", op))
		return status.Error(codes.Canceled, "request canceled")
	case context.DeadlineExceeded:
		s.logger.Warn("request timeout", zap.String("op", op))
		return status.Error(codes.DeadlineExceeded, "request timed out")
	}

	var pe *pipeline.Error
	switch {
	case errors.Is(err, service.ErrNoObservations):
		s.logger.Info("no observations stored", zap.String("op", op))
		return status.Error(codes.NotFound, "no observations have been imported")
	case errors.As(err, &pe):
		s.logger.Warn("pipeline rejected dataset", zap.String("op", op), zap.Error(err))
		return status.Error(codes.FailedPrecondition, pe.Error())
	case errors.Is(err, service.ErrStorageFailure):
		s.logger.Error("storage failure", zap.String("op", op), zap.Error(err))
		return status.Error(codes.Internal, "database error")
	default:
		s.logger.Error("unexpected error", zap.String("op", op), zap.Error(err))
		return status.Errorf(codes.Internal, "%s failed: %v", op, err)
	}
}

type tableFunc func(ctx context.Context) (pipeline.Table, error)

func (s *GRPCHandlers) encodeTable(ctx context.Context, build tableFunc) ([]byte, error) {
	t, err := build(ctx)
	if err != nil {
		return nil, err
	}
	st, err := TableToStruct(t)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(st)
}

// serveTable answers op from the cache when the dataset revision is
// unchanged, and otherwise derives the table from storage.
func (s *GRPCHandlers) serveTable(ctx context.Context, op string, prefix CacheKeyType, build tableFunc) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultGRPCTimeout)
	defer cancel()

	key := string(prefix)
	if s.cache.store != nil {
		rev, err := s.analytics.Revision(ctx)
		if err != nil {
			return nil, s.handleError(ctx, op, err)
		}
		key = revisionKey(prefix, rev)
	}

	data, err := s.cache.fetch(ctx, key, func(fetchCtx context.Context) ([]byte, error) {
		return s.encodeTable(fetchCtx, build)
	})
	if err != nil {
		return nil, s.handleError(ctx, op, err)
	}

	out := &structpb.Struct{}
	if err := proto.Unmarshal(data, out); err != nil {
		return nil, s.handleError(ctx, op, fmt.Errorf("decode cached %s: %w", prefix, err))
	}
	return out, nil
}

func (s *GRPCHandlers) GetDescriptiveStats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.serveTable(ctx, MethodGetDescriptiveStats, cacheKeyDescriptiveStats, func(ctx context.Context) (pipeline.Table, error) {
		stats, err := s.analytics.GetDescriptiveStats(ctx)
		if err != nil {
			return pipeline.Table{}, err
		}
		return stats.Table(), nil
	})
}

func (s *GRPCHandlers) GetRegionStats(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.serveTable(ctx, MethodGetRegionStats, cacheKeyRegionStats, func(ctx context.Context) (pipeline.Table, error) {
		g, err := s.analytics.GetRegionStats(ctx)
		if err != nil {
			return pipeline.Table{}, err
		}
		return g.Table(pipeline.TableRegionStats), nil
	})
}

func (s *GRPCHandlers) GetRegionStateMeans(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.serveTable(ctx, MethodGetRegionStateMeans, cacheKeyRegionStateMeans, func(ctx context.Context) (pipeline.Table, error) {
		g, err := s.analytics.GetRegionStateMeans(ctx)
		if err != nil {
			return pipeline.Table{}, err
		}
		return g.Table(pipeline.TableRegionStateMeans), nil
	})
}

func (s *GRPCHandlers) GetCorrelationMatrix(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.serveTable(ctx, MethodGetCorrelationMatrix, cacheKeyCorrelationMatrix, func(ctx context.Context) (pipeline.Table, error) {
		m, err := s.analytics.GetCorrelationMatrix(ctx)
		if err != nil {
			return pipeline.Table{}, err
		}
		return m.Table(), nil
	})
}

func (s *GRPCHandlers) GetStateRanking(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.serveTable(ctx, MethodGetStateRanking, cacheKeyStateRanking, func(ctx context.Context) (pipeline.Table, error) {
		g, err := s.analytics.GetStateRanking(ctx)
		if err != nil {
			return pipeline.Table{}, err
		}
		return g.Table(pipeline.TableStateRanking), nil
	})
}

func (s *GRPCHandlers) GetLockdownImpact(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return s.serveTable(ctx, MethodGetLockdownImpact, cacheKeyLockdownImpact, func(ctx context.Context) (pipeline.Table, error) {
		cmp, err := s.analytics.GetLockdownImpact(ctx)
		if err != nil {
			return pipeline.Table{}, err
		}
		return cmp.Table(), nil
	})
}
