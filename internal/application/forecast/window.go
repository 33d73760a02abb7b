package forecast

import (
	"context"
	"fmt"

	"github.com/go-iot-telemetry/internal/domain"
)

type readingSource interface {
	Latest(ctx context.Context, limit int) ([]domain.Reading, error)
}

// windowValues returns the metric's values from the newest size readings,
// oldest first. Readings without a value for the metric are skipped.
func windowValues(ctx context.Context, readings readingSource, size int, metric domain.Metric) ([]float64, error) {
	latest, err := readings.Latest(ctx, size)
	if err != nil {
		return nil, fmt.Errorf("load reading window: %w", err)
	}
	values := make([]float64, 0, len(latest))
	for i := len(latest) - 1; i >= 0; i-- {
		if v, ok := latest[i].Value(metric); ok {
			values = append(values, v)
		}
	}
	return values, nil
}
