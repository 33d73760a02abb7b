package forecast

import (
	"context"
	"fmt"

	"github.com/go-iot-telemetry/internal/domain"
)

type modelReader interface {
	Load(ctx context.Context, userID string, metric domain.Metric) (*domain.ForecastModel, error)
}

// Predictor extrapolates a stored model one step past the current window.
type Predictor struct {
	readings readingSource
	models   modelReader
	window   int
}

func NewPredictor(readings readingSource, models modelReader, window int) *Predictor {
	return &Predictor{readings: readings, models: models, window: window}
}

// Predict evaluates the user's model for metricName at x = k, where k is the
// number of values currently in the window.
func (p *Predictor) Predict(ctx context.Context, userID, metricName string) (*domain.Prediction, error) {
	metric, err := domain.ParseMetric(metricName)
	if err != nil {
		return nil, err
	}
	model, err := p.models.Load(ctx, userID, metric)
	if err != nil {
		return nil, err
	}
	values, err := windowValues(ctx, p.readings, p.window, metric)
	if err != nil {
		return nil, err
	}
	if len(values) < minPoints {
		return nil, fmt.Errorf("not enough %s readings to predict: %w", metric, domain.ErrBadRequest)
	}
	return &domain.Prediction{
		Metric: metric,
		Value:  model.At(float64(len(values))),
		Unit:   metric.Unit(),
	}, nil
}
