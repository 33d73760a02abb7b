package alarm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-iot-telemetry/internal/domain"
	"github.com/go-iot-telemetry/internal/pkg/id"
)

type alarmLister interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Alarm, error)
}

type notificationWriter interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type alarmPublisher interface {
	PublishAlarm(ctx context.Context, n *domain.Notification, metric domain.Metric) error
}

// Evaluator checks a fresh reading against a user's alarms and records a
// notification for every threshold crossed.
type Evaluator struct {
	alarms        alarmLister
	notifications notificationWriter
	publisher     alarmPublisher
	now           func() time.Time
}

// NewEvaluator builds an Evaluator. publisher may be nil.
func NewEvaluator(alarms alarmLister, notifications notificationWriter, publisher alarmPublisher) *Evaluator {
	return &Evaluator{
		alarms:        alarms,
		notifications: notifications,
		publisher:     publisher,
		now:           time.Now,
	}
}

// Message formats the notification text for a crossed alarm.
func Message(a *domain.Alarm, value float64) string {
	return fmt.Sprintf("%s is %s %.1f (actual: %.1f)", a.Metric.Title(), a.Comparison, a.Threshold, value)
}

// Evaluate fires every active alarm whose metric strictly crosses its
// threshold. There is no debounce: an alarm still crossing on the next
// reading fires again. Persistence errors abort evaluation; push errors are
// only logged.
func (e *Evaluator) Evaluate(ctx context.Context, reading *domain.Reading, userID string) ([]domain.Notification, error) {
	alarms, err := e.alarms.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list alarms: %w", err)
	}

	var fired []domain.Notification
	for i := range alarms {
		a := &alarms[i]
		if !a.Active {
			continue
		}
		value, ok := reading.Value(a.Metric)
		if !ok {
			continue
		}
		if !a.Comparison.Crossed(value, a.Threshold) {
			continue
		}

		alarmID := a.AlarmID
		n := domain.Notification{
			NotificationID: id.New(),
			UserID:         userID,
			AlarmID:        &alarmID,
			Message:        Message(a, value),
			CreatedAt:      e.now().UTC(),
		}
		if err := e.notifications.Put(ctx, &n); err != nil {
			return nil, fmt.Errorf("persist notification for alarm %s: %w", a.AlarmID, err)
		}
		slog.Warn("alarm fired", "user_id", userID, "alarm_id", a.AlarmID, "metric", a.Metric, "value", value, "threshold", a.Threshold)

		if e.publisher != nil {
			if err := e.publisher.PublishAlarm(ctx, &n, a.Metric); err != nil {
				slog.Error("alarm push failed", "user_id", userID, "alarm_id", a.AlarmID, "err", err)
			}
		}
		fired = append(fired, n)
	}
	return fired, nil
}
