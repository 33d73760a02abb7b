package alarm

import (
	"context"

	"github.com/go-iot-telemetry/internal/domain"
	"github.com/stretchr/testify/mock"
)

type mockAlarmStore struct{ mock.Mock }

func (m *mockAlarmStore) Put(ctx context.Context, a *domain.Alarm) error {
	return m.Called(ctx, a).Error(0)
}
func (m *mockAlarmStore) Get(ctx context.Context, alarmID string) (*domain.Alarm, error) {
	args := m.Called(ctx, alarmID)
	if a, _ := args.Get(0).(*domain.Alarm); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAlarmStore) ListByUser(ctx context.Context, userID string) ([]domain.Alarm, error) {
	args := m.Called(ctx, userID)
	alarms, _ := args.Get(0).([]domain.Alarm)
	return alarms, args.Error(1)
}
func (m *mockAlarmStore) Update(ctx context.Context, alarmID string, updates map[string]interface{}) error {
	return m.Called(ctx, alarmID, updates).Error(0)
}
func (m *mockAlarmStore) Delete(ctx context.Context, alarmID string) error {
	return m.Called(ctx, alarmID).Error(0)
}

type mockNotificationWriter struct{ mock.Mock }

func (m *mockNotificationWriter) Put(ctx context.Context, n *domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishAlarm(ctx context.Context, n *domain.Notification, metric domain.Metric) error {
	return m.Called(ctx, n, metric).Error(0)
}

func f64(v float64) *float64 { return &v }
func ptr[T any](v T) *T       { return &v }
