package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/envmon-lab/env-server/internal/core/resolution"
	"github.com/envmon-lab/env-server/internal/core/storage"
)

// ErrInvalidInterval marks zero-width or inverted query intervals. Mapped to
// HTTP 400 by the handler; no store query is issued.
var ErrInvalidInterval = errors.New("invalid query interval")

// Service is the adaptive-resolution read path: it resolves names, picks a
// bucket granularity from the interval width and runs one grouped-average
// query.
type Service struct {
	dict     storage.DictionaryStore
	readings storage.ReadingStore
}

func NewService(dict storage.DictionaryStore, readings storage.ReadingStore) *Service {
	if dict == nil {
		panic("query: dictionary store must not be nil")
	}
	if readings == nil {
		panic("query: reading store must not be nil")
	}
	return &Service{dict: dict, readings: readings}
}

// Query returns per-bucket averages for one (location, sensor, interval)
// triple, ordered ascending by bucket time. The bucket granularity is chosen
// from the span alone; callers never pick it.
func (s *Service) Query(ctx context.Context, req Request) ([]Measurement, error) {
	span := req.To - req.From
	format, err := resolution.SelectBucketFormat(span)
	if err != nil {
		return nil, fmt.Errorf("%w: span of %d seconds: %s", ErrInvalidInterval, span, err)
	}

	locationID, err := s.dict.ResolveLocation(ctx, req.Location)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("location %q: %w", req.Location, err)
		}
		return nil, fmt.Errorf("resolve location: %w", err)
	}

	sensorID, err := s.dict.ResolveSensor(ctx, req.Sensor)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("sensor %q: %w", req.Sensor, err)
		}
		return nil, fmt.Errorf("resolve sensor: %w", err)
	}

	slog.Debug("Executing range query",
		"location", req.Location,
		"sensor", req.Sensor,
		"span_seconds", span,
		"bucket_format", format.String())

	buckets, err := s.readings.QueryBuckets(ctx, locationID, sensorID, req.From, req.To, format)
	if err != nil {
		return nil, fmt.Errorf("query buckets: %w", err)
	}

	measurements := make([]Measurement, 0, len(buckets))
	for _, b := range buckets {
		measurements = append(measurements, Measurement{TS: b.Timestamp, Value: b.Average})
	}
	return measurements, nil
}
