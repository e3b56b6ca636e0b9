package mocks

import (
	"context"
	"errors"

	"github.com/godilite/labor-insights/internal/pipeline"
	"github.com/godilite/labor-insights/internal/repository/models"
)

// MockAnalyticsService is a function-based mock of the AnalyticsService
// interface for testing the handler layer.
type MockAnalyticsService struct {
	RevisionFunc             func(ctx context.Context) (models.DatasetRevision, error)
	GetDescriptiveStatsFunc  func(ctx context.Context) (pipeline.DescriptiveStats, error)
	GetRegionStatsFunc       func(ctx context.Context) (pipeline.GroupTable, error)
	GetRegionStateMeansFunc  func(ctx context.Context) (pipeline.GroupTable, error)
	GetCorrelationMatrixFunc func(ctx context.Context) (pipeline.CorrelationMatrix, error)
	GetStateRankingFunc      func(ctx context.Context) (pipeline.GroupTable, error)
	GetLockdownImpactFunc    func(ctx context.Context) (pipeline.PeriodComparison, error)
}

// Revision returns a fixed revision unless RevisionFunc is set.
func (m *MockAnalyticsService) Revision(ctx context.Context) (models.DatasetRevision, error) {
	if m.RevisionFunc != nil {
		return m.RevisionFunc(ctx)
	}
	return models.DatasetRevision{Count: 1, MaxID: 1}, nil
}

func (m *MockAnalyticsService) GetDescriptiveStats(ctx context.Context) (pipeline.DescriptiveStats, error) {
	if m.GetDescriptiveStatsFunc != nil {
		return m.GetDescriptiveStatsFunc(ctx)
	}
	return pipeline.DescriptiveStats{}, errors.New("GetDescriptiveStatsFunc not implemented")
}

func (m *MockAnalyticsService) GetRegionStats(ctx context.Context) (pipeline.GroupTable, error) {
	if m.GetRegionStatsFunc != nil {
		return m.GetRegionStatsFunc(ctx)
	}
	return pipeline.GroupTable{}, errors.New("GetRegionStatsFunc not implemented")
}

func (m *MockAnalyticsService) GetRegionStateMeans(ctx context.Context) (pipeline.GroupTable, error) {
	if m.GetRegionStateMeansFunc != nil {
		return m.GetRegionStateMeansFunc(ctx)
	}
	return pipeline.GroupTable{}, errors.New("GetRegionStateMeansFunc not implemented")
}

func (m *MockAnalyticsService) GetCorrelationMatrix(ctx context.Context) (pipeline.CorrelationMatrix, error) {
	if m.GetCorrelationMatrixFunc != nil {
		return m.GetCorrelationMatrixFunc(ctx)
	}
	return pipeline.CorrelationMatrix{}, errors.New("GetCorrelationMatrixFunc not implemented")
}

func (m *MockAnalyticsService) GetStateRanking(ctx context.Context) (pipeline.GroupTable, error) {
	if m.GetStateRankingFunc != nil {
		return m.GetStateRankingFunc(ctx)
	}
	return pipeline.GroupTable{}, errors.New("GetStateRankingFunc not implemented")
}

func (m *MockAnalyticsService) GetLockdownImpact(ctx context.Context) (pipeline.PeriodComparison, error) {
	if m.GetLockdownImpactFunc != nil {
		return m.GetLockdownImpactFunc(ctx)
	}
	return pipeline.PeriodComparison{}, errors.New("GetLockdownImpactFunc not implemented")
}
