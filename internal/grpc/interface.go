package grpc

import (
	"context"
	"time"

	"github.com/godilite/labor-insights/internal/pipeline"
	"github.com/godilite/labor-insights/internal/repository/models"
)

// Cacher defines the interface for cache operations.
type Cacher interface {
	Close() error
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// AnalyticsService is the slice of the service layer the handlers call.
type AnalyticsService interface {
	Revision(ctx context.Context) (models.DatasetRevision, error)
	GetDescriptiveStats(ctx context.Context) (pipeline.DescriptiveStats, error)
	GetRegionStats(ctx context.Context) (pipeline.GroupTable, error)
	GetRegionStateMeans(ctx context.Context) (pipeline.GroupTable, error)
	GetCorrelationMatrix(ctx context.Context) (pipeline.CorrelationMatrix, error)
	GetStateRanking(ctx context.Context) (pipeline.GroupTable, error)
	GetLockdownImpact(ctx context.Context) (pipeline.PeriodComparison, error)
}
