package mocks

import (
	"context"
	"errors"

	"github.com/godilite/labor-insights/internal/repository/models"
)

// MockObservationRepository is a function-field mock of the service's
// ObservationRepository.
type MockObservationRepository struct {
	ListRawFunc    func(ctx context.Context) ([]models.RawObservation, error)
	InsertRawFunc  func(ctx context.Context, rows [][]string) (int64, error)
	ReplaceAllFunc func(ctx context.Context, rows [][]string) (int64, error)
	RevisionFunc   func(ctx context.Context) (models.DatasetRevision, error)
}

func (m *MockObservationRepository) ListRaw(ctx context.Context) ([]models.RawObservation, error) {
	if m.ListRawFunc != nil {
		return m.ListRawFunc(ctx)
	}
	return nil, errors.New("ListRawFunc not implemented")
}

func (m *MockObservationRepository) InsertRaw(ctx context.Context, rows [][]string) (int64, error) {
	if m.InsertRawFunc != nil {
		return m.InsertRawFunc(ctx, rows)
	}
	return 0, errors.New("InsertRawFunc not implemented")
}

func (m *MockObservationRepository) ReplaceAll(ctx context.Context, rows [][]string) (int64, error) {
	if m.ReplaceAllFunc != nil {
		return m.ReplaceAllFunc(ctx, rows)
	}
	return 0, errors.New("ReplaceAllFunc not implemented")
}

func (m *MockObservationRepository) Revision(ctx context.Context) (models.DatasetRevision, error) {
	if m.RevisionFunc != nil {
		return m.RevisionFunc(ctx)
	}
	return models.DatasetRevision{}, errors.New("RevisionFunc not implemented")
}
