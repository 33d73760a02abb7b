package forecast

import (
	"context"
	"errors"
	"testing"

	"github.com/go-iot-telemetry/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrain_FitsOldestFirst(t *testing.T) {
	models := newMemModels()
	tr := NewTrainer(temps(20, 22, 24), models, 20)

	m, err := tr.Train(context.Background(), "u1", domain.MetricTemperature)

	require.NoError(t, err)
	require.NotNil(t, m)
	assert.InDelta(t, 2, m.Slope, 1e-9)
	assert.InDelta(t, 20, m.Intercept, 1e-9)
	assert.Equal(t, 3, m.Points)
	stored, err := models.Load(context.Background(), "u1", domain.MetricTemperature)
	require.NoError(t, err)
	assert.Equal(t, m.Slope, stored.Slope)
}

func TestTrain_FewerThanTwoPointsIsNoop(t *testing.T) {
	models := newMemModels()
	existing := &domain.ForecastModel{UserID: "u1", Metric: domain.MetricTemperature, Slope: 9}
	require.NoError(t, models.Save(context.Background(), existing))

	for _, fixture := range []*readingsFixture{temps(), temps(21)} {
		tr := NewTrainer(fixture, models, 20)
		m, err := tr.Train(context.Background(), "u1", domain.MetricTemperature)
		require.NoError(t, err)
		assert.Nil(t, m)
	}

	assert.Equal(t, 1, models.saves)
	stored, _ := models.Load(context.Background(), "u1", domain.MetricTemperature)
	assert.Equal(t, 9.0, stored.Slope)
}

func TestTrain_WindowLimitsReadings(t *testing.T) {
	models := newMemModels()
	tr := NewTrainer(temps(100, 100, 1, 2, 3), models, 3)

	m, err := tr.Train(context.Background(), "u1", domain.MetricTemperature)

	require.NoError(t, err)
	assert.Equal(t, 3, m.Points)
	assert.InDelta(t, 1, m.Slope, 1e-9)
}

func TestTrain_LightSkipsMissingValues(t *testing.T) {
	models := newMemModels()
	tr := NewTrainer(temps(20, 21, 22), models, 20)

	m, err := tr.Train(context.Background(), "u1", domain.MetricLight)

	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestTrainAll_TrainsEveryMetricAndJoinsErrors(t *testing.T) {
	models := newMemModels()
	tr := NewTrainer(temps(20, 22), models, 20)

	require.NoError(t, tr.TrainAll(context.Background(), "u1"))
	_, err := models.Load(context.Background(), "u1", domain.MetricTemperature)
	assert.NoError(t, err)
	_, err = models.Load(context.Background(), "u1", domain.MetricHumidity)
	assert.NoError(t, err)
	_, err = models.Load(context.Background(), "u1", domain.MetricLight)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	failing := NewTrainer(&readingsFixture{err: errors.New("dynamo down")}, models, 20)
	err = failing.TrainAll(context.Background(), "u1")
	assert.ErrorContains(t, err, "train temperature")
	assert.ErrorContains(t, err, "train humidity")
	assert.ErrorContains(t, err, "dynamo down")
}

func TestForget_RemovesModels(t *testing.T) {
	models := newMemModels()
	tr := NewTrainer(temps(20, 22), models, 20)
	require.NoError(t, tr.TrainAll(context.Background(), "u1"))

	require.NoError(t, tr.Forget(context.Background(), "u1"))

	_, err := models.Load(context.Background(), "u1", domain.MetricTemperature)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
