package s3infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-iot-telemetry/internal/domain"
)

// objectStore is the subset of Store the model store needs.
type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// ModelStore persists one forecast model per (user, metric) as a JSON object.
type ModelStore struct {
	objects objectStore
}

func NewModelStore(objects objectStore) *ModelStore {
	return &ModelStore{objects: objects}
}

func modelKey(userID string, metric domain.Metric) string {
	return fmt.Sprintf("models/%s/%s.json", userID, metric)
}

// Save overwrites any existing model for the same key.
func (m *ModelStore) Save(ctx context.Context, model *domain.ForecastModel) error {
	b, err := json.Marshal(model)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	return m.objects.Upload(ctx, modelKey(model.UserID, model.Metric), bytes.NewReader(b), "application/json")
}

// Load returns the stored model or an error wrapping domain.ErrNotFound.
func (m *ModelStore) Load(ctx context.Context, userID string, metric domain.Metric) (*domain.ForecastModel, error) {
	rc, err := m.objects.Download(ctx, modelKey(userID, metric))
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	var model domain.ForecastModel
	if err := json.NewDecoder(rc).Decode(&model); err != nil {
		return nil, fmt.Errorf("decode model %s/%s: %w", userID, metric, err)
	}
	return &model, nil
}

func (m *ModelStore) Delete(ctx context.Context, userID string, metric domain.Metric) error {
	return m.objects.Delete(ctx, modelKey(userID, metric))
}
