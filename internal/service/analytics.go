package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/labor-insights/internal/pipeline"
	"github.com/godilite/labor-insights/internal/repository/models"
	"go.uber.org/zap"
)

const (
	dbTimeout     = 1 * time.Second
	importTimeout = 30 * time.Second
)

var (
	ErrNoObservations = errors.New("no observations found")
	ErrStorageFailure = errors.New("storage failure")
)

// AnalyticsService loads the stored raw table and derives the dashboard
// tables from it. Every call recomputes from storage.
type AnalyticsService struct {
	storage  ObservationRepository
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
}

// NewAnalyticsService creates a new AnalyticsService. A nil pipeline uses the
// default lockdown comparator.
func NewAnalyticsService(storage ObservationRepository, p *pipeline.Pipeline, logger *zap.Logger) *AnalyticsService {
	if storage == nil {
		panic("storage must not be nil")
	}
	if p == nil {
		p = pipeline.New()
	}
	if logger == nil {
		l, _ := zap.NewProduction()
		logger = l
	}
	return &AnalyticsService{
		storage:  storage,
		pipeline: p,
		logger:   logger,
	}
}

// Import validates a raw table and stores it. Nothing is stored when any row
// fails normalization.
func (s *AnalyticsService) Import(ctx context.Context, header []string, rows [][]string, replace bool) (int64, error) {
	ds, err := s.pipeline.Normalize(header, rows)
	if err != nil {
		s.logPipelineError("import rejected", err)
		return 0, err
	}

	dbCtx, cancel := context.WithTimeout(ctx, importTimeout)
	defer cancel()

	var n int64
	if replace {
		n, err = s.storage.ReplaceAll(dbCtx, rows)
	} else {
		n, err = s.storage.InsertRaw(dbCtx, rows)
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}

	s.logger.Info("imported observations",
		zap.Int64("rows", n),
		zap.Bool("replace", replace),
		zap.Strings("regions", ds.Regions.Values()),
		zap.Strings("frequencies", ds.Frequencies.Values()))

	return n, nil
}

// Revision identifies the stored dataset.
func (s *AnalyticsService) Revision(ctx context.Context) (models.DatasetRevision, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	rev, err := s.storage.Revision(dbCtx)
	if err != nil {
		return models.DatasetRevision{}, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return rev, nil
}

func (s *AnalyticsService) load(ctx context.Context) (*pipeline.Dataset, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	stored, err := s.storage.ListRaw(dbCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(stored) == 0 {
		return nil, ErrNoObservations
	}

	rows := make([][]string, len(stored))
	for i, o := range stored {
		rows[i] = o.Values
	}

	ds, err := s.pipeline.Normalize(nil, rows)
	if err != nil {
		s.logPipelineError("stored observations failed normalization", err)
		return nil, err
	}

	s.logger.Debug("loaded observations", zap.Int("rows", len(ds.Records)))
	return ds, nil
}

func (s *AnalyticsService) logPipelineError(msg string, err error) {
	var pe *pipeline.Error
	if errors.As(err, &pe) {
		s.logger.Warn(msg,
			zap.String("kind", string(pe.Kind)),
			zap.String("stage", pe.Stage),
			zap.Int("row", pe.Row),
			zap.String("column", pe.Column),
			zap.Error(err))
		return
	}
	s.logger.Warn(msg, zap.Error(err))
}

// GetDescriptiveStats returns the describe() table of the labor metrics.
func (s *AnalyticsService) GetDescriptiveStats(ctx context.Context) (pipeline.DescriptiveStats, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return pipeline.DescriptiveStats{}, err
	}
	return s.pipeline.Summarize(ds), nil
}

// GetRegionStats returns region-level means.
func (s *AnalyticsService) GetRegionStats(ctx context.Context) (pipeline.GroupTable, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return pipeline.GroupTable{}, err
	}
	return s.pipeline.RegionStats(ds), nil
}

// GetRegionStateMeans returns mean unemployment per region and state.
func (s *AnalyticsService) GetRegionStateMeans(ctx context.Context) (pipeline.GroupTable, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return pipeline.GroupTable{}, err
	}
	return s.pipeline.RegionStateMeans(ds), nil
}

// GetCorrelationMatrix returns the Pearson matrix of the numeric fields.
func (s *AnalyticsService) GetCorrelationMatrix(ctx context.Context) (pipeline.CorrelationMatrix, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return pipeline.CorrelationMatrix{}, err
	}
	m, err := s.pipeline.Correlate(ds)
	if err != nil {
		s.logPipelineError("correlation failed", err)
		return pipeline.CorrelationMatrix{}, err
	}
	return m, nil
}

// GetStateRanking returns states ordered by mean unemployment, lowest first.
func (s *AnalyticsService) GetStateRanking(ctx context.Context) (pipeline.GroupTable, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return pipeline.GroupTable{}, err
	}
	return s.pipeline.StateRanking(ds), nil
}

// GetLockdownImpact returns the before/after comparison per state.
func (s *AnalyticsService) GetLockdownImpact(ctx context.Context) (pipeline.PeriodComparison, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return pipeline.PeriodComparison{}, err
	}

	cmp, err := s.pipeline.Compare(ds)
	if err != nil {
		s.logPipelineError("lockdown comparison failed", err)
		return pipeline.PeriodComparison{}, err
	}

	unclassified := 0
	for _, r := range cmp.Rows {
		if r.ImpactTier.Level == pipeline.Unclassified {
			unclassified++
		}
	}
	s.logger.Info("computed lockdown impact",
		zap.Int("states", len(cmp.Rows)),
		zap.Int("unclassified", unclassified),
		zap.Stringer("join", cmp.Join),
		zap.Stringer("delta", cmp.Delta))

	return cmp, nil
}

// GetTables derives every table from one load.
func (s *AnalyticsService) GetTables(ctx context.Context) (*pipeline.Tables, error) {
	dbCtx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	stored, err := s.storage.ListRaw(dbCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	if len(stored) == 0 {
		return nil, ErrNoObservations
	}

	rows := make([][]string, len(stored))
	for i, o := range stored {
		rows[i] = o.Values
	}

	tables, err := s.pipeline.Run(nil, rows)
	if err != nil {
		s.logPipelineError("pipeline run failed", err)
		return nil, err
	}
	return tables, nil
}
