package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/godilite/labor-insights/internal/repository/models"
)

// ColumnCount is the number of stored source columns per observation.
const ColumnCount = 9

const schema = `
	CREATE TABLE IF NOT EXISTS observations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		state TEXT NOT NULL,
		obs_date TEXT NOT NULL,
		frequency TEXT NOT NULL,
		unemployment_rate TEXT NOT NULL,
		employed TEXT NOT NULL,
		labour_participation_rate TEXT NOT NULL,
		region TEXT NOT NULL,
		longitude TEXT NOT NULL,
		latitude TEXT NOT NULL
	);
`

type ObservationRepository struct {
	db *sql.DB
}

func NewObservationRepository(db *sql.DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

// EnsureSchema creates the observations table if it is missing.
func (s *ObservationRepository) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create observations schema: %w", err)
	}
	return nil
}

// InsertRaw stores rows as-is inside one transaction. Every row must have
// exactly ColumnCount values.
func (s *ObservationRepository) InsertRaw(ctx context.Context, rows [][]string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin InsertRaw: %w", err)
	}
	n, err := insertRows(ctx, tx, rows)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit InsertRaw: %w", err)
	}
	return n, nil
}

// ReplaceAll swaps the stored dataset for rows atomically.
func (s *ObservationRepository) ReplaceAll(ctx context.Context, rows [][]string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin ReplaceAll: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM observations`); err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("clear observations: %w", err)
	}
	n, err := insertRows(ctx, tx, rows)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit ReplaceAll: %w", err)
	}
	return n, nil
}

func insertRows(ctx context.Context, tx *sql.Tx, rows [][]string) (int64, error) {
	const query = `
		INSERT INTO observations (
			state, obs_date, frequency, unemployment_rate, employed,
			labour_participation_rate, region, longitude, latitude
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	var n int64
	for i, row := range rows {
		if len(row) != ColumnCount {
			return 0, fmt.Errorf("row %d: expected %d values, got %d", i, ColumnCount, len(row))
		}
		args := make([]any, ColumnCount)
		for j, v := range row {
			args[j] = v
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i, err)
		}
		n++
	}
	return n, nil
}

// ListRaw returns every stored row in insertion order.
func (s *ObservationRepository) ListRaw(ctx context.Context) ([]models.RawObservation, error) {
	const query = `
		SELECT
			id, state, obs_date, frequency, unemployment_rate, employed,
			labour_participation_rate, region, longitude, latitude
		FROM observations
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query ListRaw: %w", err)
	}
	defer rows.Close()

	var results []models.RawObservation
	for rows.Next() {
		obs := models.RawObservation{Values: make([]string, ColumnCount)}
		dest := []any{&obs.ID}
		for i := range obs.Values {
			dest = append(dest, &obs.Values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan ListRaw row: %w", err)
		}
		results = append(results, obs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ListRaw: %w", err)
	}
	return results, nil
}

// Revision reports the row count and highest id of the stored dataset.
func (s *ObservationRepository) Revision(ctx context.Context) (models.DatasetRevision, error) {
	const query = `SELECT COUNT(id), COALESCE(MAX(id), 0) FROM observations`

	var rev models.DatasetRevision
	if err := s.db.QueryRowContext(ctx, query).Scan(&rev.Count, &rev.MaxID); err != nil {
		return models.DatasetRevision{}, fmt.Errorf("query Revision: %w", err)
	}
	return rev, nil
}
