package s3infra

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/go-iot-telemetry/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memObjects struct {
	mu   sync.Mutex
	objs map[string][]byte
}

func newMemObjects() *memObjects { return &memObjects{objs: map[string][]byte{}} }

func (m *memObjects) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objs[key] = b
	return nil
}

func (m *memObjects) Download(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objs[key]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", key, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memObjects) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objs, key)
	return nil
}

func TestModelStore_SaveLoadRoundTrip(t *testing.T) {
	objs := newMemObjects()
	store := NewModelStore(objs)
	trained := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(context.Background(), &domain.ForecastModel{
		UserID: "u1", Metric: domain.MetricHumidity, Slope: 0.5, Intercept: 40, Points: 20, TrainedAt: trained,
	}))
	_, ok := objs.objs["models/u1/humidity.json"]
	assert.True(t, ok)

	got, err := store.Load(context.Background(), "u1", domain.MetricHumidity)
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.Slope)
	assert.Equal(t, 40.0, got.Intercept)
	assert.True(t, trained.Equal(got.TrainedAt))
}

func TestModelStore_SaveOverwrites(t *testing.T) {
	store := NewModelStore(newMemObjects())
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &domain.ForecastModel{UserID: "u1", Metric: domain.MetricLight, Slope: 1}))
	require.NoError(t, store.Save(ctx, &domain.ForecastModel{UserID: "u1", Metric: domain.MetricLight, Slope: 2}))

	got, err := store.Load(ctx, "u1", domain.MetricLight)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Slope)
}

func TestModelStore_LoadMissing(t *testing.T) {
	store := NewModelStore(newMemObjects())
	_, err := store.Load(context.Background(), "u1", domain.MetricTemperature)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
