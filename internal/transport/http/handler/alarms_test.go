package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-iot-telemetry/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAlarmSvc struct{ mock.Mock }

func (m *mockAlarmSvc) List(ctx context.Context, userID string) ([]domain.Alarm, error) {
	args := m.Called(ctx, userID)
	alarms, _ := args.Get(0).([]domain.Alarm)
	return alarms, args.Error(1)
}

func (m *mockAlarmSvc) Create(ctx context.Context, userID string, req domain.CreateAlarmRequest) (*domain.Alarm, error) {
	args := m.Called(ctx, userID, req)
	if a, _ := args.Get(0).(*domain.Alarm); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAlarmSvc) Get(ctx context.Context, alarmID, userID string) (*domain.Alarm, error) {
	args := m.Called(ctx, alarmID, userID)
	if a, _ := args.Get(0).(*domain.Alarm); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAlarmSvc) Update(ctx context.Context, alarmID, userID string, req domain.UpdateAlarmRequest) (*domain.Alarm, error) {
	args := m.Called(ctx, alarmID, userID, req)
	if a, _ := args.Get(0).(*domain.Alarm); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAlarmSvc) Delete(ctx context.Context, alarmID, userID string) error {
	return m.Called(ctx, alarmID, userID).Error(0)
}

func TestAlarmList_WrapsInEnvelope(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockAlarmSvc{}
	svc.On("List", mock.Anything, "u1").Return([]domain.Alarm{{AlarmID: "a1", Metric: domain.MetricTemperature}}, nil)
	h := NewAlarmHandler(svc)

	r := bearerReq(t, p, http.MethodGet, "/v1/alarms", "u1", domain.RoleUser, nil)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.List), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp ListEnvelope[domain.Alarm]
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "a1", resp.Data[0].AlarmID)
}

func TestAlarmCreate_UsesWireFieldNames(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockAlarmSvc{}
	svc.On("Create", mock.Anything, "u1", mock.MatchedBy(func(req domain.CreateAlarmRequest) bool {
		return req.Metric == "temperature" && req.Comparison == "above" && req.Threshold != nil && *req.Threshold == 30
	})).Return(&domain.Alarm{AlarmID: "a1", Metric: domain.MetricTemperature, Comparison: domain.ComparisonAbove, Threshold: 30, Active: true}, nil)
	h := NewAlarmHandler(svc)

	body := []byte(`{"type":"temperature","threshold_type":"above","value":30}`)
	r := bearerReq(t, p, http.MethodPost, "/v1/alarms", "u1", domain.RoleUser, body)
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Create), rr, r)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `"temperature"`, mustField(t, rr.Body.Bytes(), "type"))
	assert.JSONEq(t, `true`, mustField(t, rr.Body.Bytes(), "is_active"))
	svc.AssertExpectations(t)
}

func TestAlarmCreate_ValidationIs400(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockAlarmSvc{}
	svc.On("Create", mock.Anything, "u1", mock.Anything).Return(nil, domain.ErrBadRequest)
	h := NewAlarmHandler(svc)

	r := bearerReq(t, p, http.MethodPost, "/v1/alarms", "u1", domain.RoleUser, []byte(`{"type":"pressure"}`))
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Create), rr, r)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAlarmGet_OtherUsersAlarmIs404(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockAlarmSvc{}
	svc.On("Get", mock.Anything, "a1", "u1").Return(nil, domain.ErrNotFound)
	h := NewAlarmHandler(svc)

	r := withChiID(bearerReq(t, p, http.MethodGet, "/v1/alarms/a1", "u1", domain.RoleUser, nil), "a1")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Get), rr, r)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAlarmUpdate(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockAlarmSvc{}
	svc.On("Update", mock.Anything, "a1", "u1", mock.MatchedBy(func(req domain.UpdateAlarmRequest) bool {
		return req.Active != nil && !*req.Active && req.Threshold == nil
	})).Return(&domain.Alarm{AlarmID: "a1", Active: false}, nil)
	h := NewAlarmHandler(svc)

	r := withChiID(bearerReq(t, p, http.MethodPatch, "/v1/alarms/a1", "u1", domain.RoleUser, []byte(`{"is_active":false}`)), "a1")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Update), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestAlarmDelete(t *testing.T) {
	p := newTestJWTProvider(t)
	svc := &mockAlarmSvc{}
	svc.On("Delete", mock.Anything, "a1", "u1").Return(nil)
	h := NewAlarmHandler(svc)

	r := withChiID(bearerReq(t, p, http.MethodDelete, "/v1/alarms/a1", "u1", domain.RoleUser, nil), "a1")
	rr := httptest.NewRecorder()
	serveAuthed(p, http.HandlerFunc(h.Delete), rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Alarm deleted")
}

func mustField(t *testing.T, body []byte, key string) string {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &m))
	v, ok := m[key]
	require.True(t, ok, "missing field %q", key)
	return string(v)
}
