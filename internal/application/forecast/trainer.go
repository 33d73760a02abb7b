package forecast

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-iot-telemetry/internal/domain"
	"golang.org/x/sync/errgroup"
)

// minPoints is the fewest values a line can be fitted through.
const minPoints = 2

type modelWriter interface {
	Save(ctx context.Context, model *domain.ForecastModel) error
	Delete(ctx context.Context, userID string, metric domain.Metric) error
}

// Trainer fits a linear trend per metric over the most recent readings.
type Trainer struct {
	readings readingSource
	models   modelWriter
	window   int
	now      func() time.Time
}

func NewTrainer(readings readingSource, models modelWriter, window int) *Trainer {
	return &Trainer{readings: readings, models: models, window: window, now: time.Now}
}

// Train fits and stores a model for one metric. With fewer than two values
// it returns nil and leaves any stored model in place.
func (t *Trainer) Train(ctx context.Context, userID string, metric domain.Metric) (*domain.ForecastModel, error) {
	values, err := windowValues(ctx, t.readings, t.window, metric)
	if err != nil {
		return nil, err
	}
	if len(values) < minPoints {
		slog.Debug("training skipped", "user_id", userID, "metric", metric, "points", len(values))
		return nil, nil
	}

	slope, intercept := fitLine(values)
	model := &domain.ForecastModel{
		UserID:    userID,
		Metric:    metric,
		Slope:     slope,
		Intercept: intercept,
		Points:    len(values),
		TrainedAt: t.now().UTC(),
	}
	if err := t.models.Save(ctx, model); err != nil {
		return nil, fmt.Errorf("save %s model: %w", metric, err)
	}
	slog.Info("model trained", "user_id", userID, "metric", metric, "points", model.Points, "slope", slope)
	return model, nil
}

// TrainAll trains every tracked metric concurrently. One metric failing does
// not stop the others; all failures are joined.
func (t *Trainer) TrainAll(ctx context.Context, userID string) error {
	errs := make([]error, len(domain.Metrics))
	var g errgroup.Group
	for i, m := range domain.Metrics {
		g.Go(func() error {
			if _, err := t.Train(ctx, userID, m); err != nil {
				errs[i] = fmt.Errorf("train %s: %w", m, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// Forget removes every stored model for the user.
func (t *Trainer) Forget(ctx context.Context, userID string) error {
	var errs []error
	for _, m := range domain.Metrics {
		if err := t.models.Delete(ctx, userID, m); err != nil {
			errs = append(errs, fmt.Errorf("delete %s model: %w", m, err))
		}
	}
	return errors.Join(errs...)
}
