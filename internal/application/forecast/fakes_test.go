package forecast

import (
	"context"
	"sync"
	"time"

	"github.com/go-iot-telemetry/internal/domain"
)

// readingsFixture serves newest-first readings like the repository does.
type readingsFixture struct {
	newestFirst []domain.Reading
	err         error
}

func (f *readingsFixture) Latest(_ context.Context, limit int) ([]domain.Reading, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.newestFirst) {
		return f.newestFirst[:limit], nil
	}
	return f.newestFirst, nil
}

// temps builds readings whose temperatures are given oldest first.
func temps(values ...float64) *readingsFixture {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	f := &readingsFixture{}
	for i := len(values) - 1; i >= 0; i-- {
		f.newestFirst = append(f.newestFirst, domain.Reading{
			ReadingID:   string(rune('a' + i)),
			Temperature: values[i],
			Humidity:    50,
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		})
	}
	return f
}

type memModels struct {
	mu     sync.Mutex
	models map[string]domain.ForecastModel
	saves  int
}

func newMemModels() *memModels { return &memModels{models: map[string]domain.ForecastModel{}} }

func modelKey(userID string, m domain.Metric) string { return userID + "/" + string(m) }

func (s *memModels) Save(_ context.Context, m *domain.ForecastModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models[modelKey(m.UserID, m.Metric)] = *m
	s.saves++
	return nil
}

func (s *memModels) Load(_ context.Context, userID string, metric domain.Metric) (*domain.ForecastModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.models[modelKey(userID, metric)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &m, nil
}

func (s *memModels) Delete(_ context.Context, userID string, metric domain.Metric) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.models, modelKey(userID, metric))
	return nil
}
