package models

// RawObservation is one stored input row, kept untyped in source column order.
type RawObservation struct {
	ID     int64
	Values []string
}

// DatasetRevision identifies the stored dataset. It changes whenever rows are
// added or replaced.
type DatasetRevision struct {
	Count int64
	MaxID int64
}
