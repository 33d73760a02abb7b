package alarm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-iot-telemetry/internal/domain"
	"github.com/go-iot-telemetry/internal/pkg/id"
	"github.com/go-iot-telemetry/internal/pkg/validate"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldMetric     = "metric"
	fieldComparison = "comparison"
	fieldThreshold  = "threshold"
	fieldActive     = "active"
)

type Service interface {
	List(ctx context.Context, userID string) ([]domain.Alarm, error)
	Create(ctx context.Context, userID string, req domain.CreateAlarmRequest) (*domain.Alarm, error)
	Get(ctx context.Context, alarmID, userID string) (*domain.Alarm, error)
	Update(ctx context.Context, alarmID, userID string, req domain.UpdateAlarmRequest) (*domain.Alarm, error)
	Delete(ctx context.Context, alarmID, userID string) error
}

type alarmStore interface {
	Put(ctx context.Context, a *domain.Alarm) error
	Get(ctx context.Context, alarmID string) (*domain.Alarm, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Alarm, error)
	Update(ctx context.Context, alarmID string, updates map[string]interface{}) error
	Delete(ctx context.Context, alarmID string) error
}

type service struct {
	repo alarmStore
}

func NewService(repo alarmStore) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, userID string) ([]domain.Alarm, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) Create(ctx context.Context, userID string, req domain.CreateAlarmRequest) (*domain.Alarm, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	now := time.Now().UTC()
	a := &domain.Alarm{
		AlarmID:    id.New(),
		UserID:     userID,
		Metric:     domain.Metric(req.Metric),
		Comparison: domain.Comparison(req.Comparison),
		Threshold:  *req.Threshold,
		Active:     active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Put(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Get returns ErrNotFound both for a missing alarm and for one owned by
// another user, so ids cannot be probed.
func (s *service) Get(ctx context.Context, alarmID, userID string) (*domain.Alarm, error) {
	a, err := s.repo.Get(ctx, alarmID)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, fmt.Errorf("alarm not found: %w", domain.ErrNotFound)
	}
	return a, nil
}

func (s *service) Update(ctx context.Context, alarmID, userID string, req domain.UpdateAlarmRequest) (*domain.Alarm, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	a, err := s.Get(ctx, alarmID, userID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Metric != nil {
		updates[fieldMetric] = *req.Metric
	}
	if req.Comparison != nil {
		updates[fieldComparison] = *req.Comparison
	}
	if req.Threshold != nil {
		updates[fieldThreshold] = *req.Threshold
	}
	if req.Active != nil {
		updates[fieldActive] = *req.Active
	}
	if len(updates) == 0 {
		return a, nil
	}
	if err := s.repo.Update(ctx, alarmID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, alarmID)
}

// Delete removes the alarm only. Notifications that reference it are kept.
func (s *service) Delete(ctx context.Context, alarmID, userID string) error {
	if _, err := s.Get(ctx, alarmID, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("load alarm: %w", err)
	}
	return s.repo.Delete(ctx, alarmID)
}
