package service

import (
	"context"

	"github.com/godilite/labor-insights/internal/repository/models"
)

// ObservationRepository defines the storage operations the service needs.
type ObservationRepository interface {
	ListRaw(ctx context.Context) ([]models.RawObservation, error)
	InsertRaw(ctx context.Context, rows [][]string) (int64, error)
	ReplaceAll(ctx context.Context, rows [][]string) (int64, error)
	Revision(ctx context.Context) (models.DatasetRevision, error)
}
