package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-iot-telemetry/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// AuthEnvelope wraps login responses.
type AuthEnvelope struct {
	Bearer    string    `json:"Bearer,omitempty"`
	SessionID string    `json:"session_id,omitempty"`
	User      *SafeUser `json:"user,omitempty"`
}

// ListEnvelope wraps collection responses.
type ListEnvelope[T any] struct {
	Data  []T `json:"data"`
	Count int `json:"count"`
}

// DailyDataEnvelope wraps the 24h series for one metric.
type DailyDataEnvelope struct {
	Type string               `json:"type"`
	Unit string               `json:"unit"`
	Data []domain.MetricPoint `json:"data"`
}

// SafeUser is a user without credentials; the remote token is reduced to a flag.
type SafeUser struct {
	UserID          string     `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	HasCoreIoTToken bool       `json:"has_coreiot_token"`
	LastTrainedAt   *time.Time `json:"last_trained_at,omitempty"`
	CreatedAt       time.Time  `json:"created"`
	UpdatedAt       time.Time  `json:"updated"`
}

func toSafeUser(u *domain.User) *SafeUser {
	if u == nil {
		return nil
	}
	return &SafeUser{
		UserID:          u.UserID,
		Username:        u.Username,
		Email:           u.Email,
		Role:            u.Role,
		HasCoreIoTToken: u.HasCoreIoTToken(),
		LastTrainedAt:   u.LastTrainedAt,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func newList[T any](items []T) ListEnvelope[T] {
	if items == nil {
		items = []T{}
	}
	return ListEnvelope[T]{Data: items, Count: len(items)}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg, ErrorCode: status})
}
