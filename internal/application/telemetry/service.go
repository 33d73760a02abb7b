package telemetry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-iot-telemetry/internal/domain"
	"github.com/go-iot-telemetry/internal/infrastructure/coreiot"
	"github.com/go-iot-telemetry/internal/pkg/id"
)

// dailyWindow is the look-back for DailyReadings.
const dailyWindow = 24 * time.Hour

type Service interface {
	Ingest(ctx context.Context, userID string) (*domain.Reading, error)
	DailyReadings(ctx context.Context, metric string, now time.Time) ([]domain.MetricPoint, error)
	SendCommand(ctx context.Context, userID string, on bool) error
	Latest(ctx context.Context) (*domain.Reading, error)
}

type userReader interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type readingStore interface {
	Put(ctx context.Context, r *domain.Reading) error
	Latest(ctx context.Context, limit int) ([]domain.Reading, error)
	Between(ctx context.Context, from, to time.Time) ([]domain.Reading, error)
}

type remoteClient interface {
	LatestTelemetry(ctx context.Context, token string) (*coreiot.Telemetry, error)
	SendRPC(ctx context.Context, token, method string, params interface{}) error
}

type alarmEvaluator interface {
	Evaluate(ctx context.Context, reading *domain.Reading, userID string) ([]domain.Notification, error)
}

type retrainScheduler interface {
	MaybeSchedule(ctx context.Context, userID string, now time.Time) (bool, error)
}

type service struct {
	users     userReader
	readings  readingStore
	remote    remoteClient
	evaluator alarmEvaluator
	scheduler retrainScheduler
	rpcMethod string
	now       func() time.Time
}

type ServiceDeps struct {
	UserRepo    userReader
	ReadingRepo readingStore
	Remote      remoteClient
	Evaluator   alarmEvaluator
	Scheduler   retrainScheduler
	RPCMethod   string
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:     deps.UserRepo,
		readings:  deps.ReadingRepo,
		remote:    deps.Remote,
		evaluator: deps.Evaluator,
		scheduler: deps.Scheduler,
		rpcMethod: deps.RPCMethod,
		now:       time.Now,
	}
}

// Ingest pulls the latest upstream sample for the user's device, stores it,
// evaluates the user's alarms against it and schedules a retrain if one is
// due. Upstream and validation failures leave nothing stored. Once the
// reading is stored it stays stored, even if a later step fails.
func (s *service) Ingest(ctx context.Context, userID string) (*domain.Reading, error) {
	token, err := s.credential(ctx, userID)
	if err != nil {
		return nil, err
	}
	t, err := s.remote.LatestTelemetry(ctx, token)
	if err != nil {
		return nil, err
	}

	reading := &domain.Reading{
		ReadingID:   id.NewAt(t.Temperature.Timestamp),
		Temperature: t.Temperature.Value,
		Humidity:    t.Humidity.Value,
		Timestamp:   t.Temperature.Timestamp.UTC(),
	}
	if t.Light != nil {
		light := t.Light.Value
		reading.Light = &light
	}
	if err := s.readings.Put(ctx, reading); err != nil {
		return nil, fmt.Errorf("store reading: %w", err)
	}
	slog.Info("reading ingested", "user_id", userID, "reading_id", reading.ReadingID, "timestamp", reading.Timestamp)

	if _, err := s.evaluator.Evaluate(ctx, reading, userID); err != nil {
		return nil, fmt.Errorf("evaluate alarms: %w", err)
	}
	if _, err := s.scheduler.MaybeSchedule(ctx, userID, s.now()); err != nil {
		return nil, fmt.Errorf("schedule training: %w", err)
	}
	return reading, nil
}

// DailyReadings returns the metric's points from the last 24 hours, oldest
// first. Readings without a value for the metric are left out.
func (s *service) DailyReadings(ctx context.Context, metric string, now time.Time) ([]domain.MetricPoint, error) {
	m, err := domain.ParseMetric(metric)
	if err != nil {
		return nil, err
	}
	now = now.UTC()
	readings, err := s.readings.Between(ctx, now.Add(-dailyWindow), now)
	if err != nil {
		return nil, err
	}
	points := make([]domain.MetricPoint, 0, len(readings))
	for i := range readings {
		if v, ok := readings[i].Value(m); ok {
			points = append(points, domain.MetricPoint{Timestamp: readings[i].Timestamp, Value: v})
		}
	}
	return points, nil
}

func (s *service) SendCommand(ctx context.Context, userID string, on bool) error {
	token, err := s.credential(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.remote.SendRPC(ctx, token, s.rpcMethod, on); err != nil {
		return err
	}
	slog.Info("device command sent", "user_id", userID, "method", s.rpcMethod, "on", on)
	return nil
}

func (s *service) Latest(ctx context.Context) (*domain.Reading, error) {
	readings, err := s.readings.Latest(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, fmt.Errorf("no readings stored: %w", domain.ErrNotFound)
	}
	return &readings[0], nil
}

func (s *service) credential(ctx context.Context, userID string) (string, error) {
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if !u.HasCoreIoTToken() {
		return "", fmt.Errorf("user %s: %w", userID, domain.ErrCredentialMissing)
	}
	return u.CoreIoTToken, nil
}
