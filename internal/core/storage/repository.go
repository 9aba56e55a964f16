package storage

import (
	"context"
	"errors"

	"github.com/envmon-lab/env-server/internal/core/resolution"
)

// ErrNotFound is returned when a location or sensor name has no registered id.
var ErrNotFound = errors.New("name is not registered")

// ErrDuplicate is returned when a reading with the same
// (timestamp, sensor_id, location_id) already exists.
var ErrDuplicate = errors.New("reading already exists")

// Bucket is one aggregated row of a range query: the bucket's formatted
// start timestamp and the average of all readings falling inside it.
type Bucket struct {
	Timestamp string
	Average   float64
}

// DictionaryStore maps location and sensor names to stable integer ids.
//
// Resolve never creates a row. Register is idempotent: registering an
// existing name returns the surviving id without error, including when two
// callers race on the same new name.
type DictionaryStore interface {
	ResolveLocation(ctx context.Context, name string) (int64, error)
	ResolveSensor(ctx context.Context, name string) (int64, error)
	RegisterLocation(ctx context.Context, name string) (int64, error)
	RegisterSensor(ctx context.Context, name string) (int64, error)
}

// ReadingStore persists readings and serves bucketed-average range queries.
type ReadingStore interface {
	// InsertReading appends one reading. Returns ErrDuplicate when the
	// (timestamp, sensor_id, location_id) triple is already present.
	InsertReading(ctx context.Context, timestamp, locationID, sensorID int64, value float64) error

	// QueryBuckets returns per-bucket averages for readings in [from, to]
	// (inclusive both ends), ordered ascending by bucket timestamp. Empty
	// buckets are omitted.
	QueryBuckets(ctx context.Context, locationID, sensorID, from, to int64, format resolution.BucketFormat) ([]Bucket, error)
}
