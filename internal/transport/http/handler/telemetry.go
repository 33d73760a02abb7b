package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-iot-telemetry/internal/application/telemetry"
	"github.com/go-iot-telemetry/internal/domain"
	"github.com/go-iot-telemetry/internal/transport/http/middleware"
)

// TelemetryHandler serves ingestion, stored readings and device commands.
type TelemetryHandler struct {
	svc telemetry.Service
	now func() time.Time
}

func NewTelemetryHandler(svc telemetry.Service) *TelemetryHandler {
	return &TelemetryHandler{svc: svc, now: time.Now}
}

type fanRequest struct {
	On *bool `json:"on"`
}

// Ingest pulls one sample from CoreIoT for the caller and returns the stored reading.
func (h *TelemetryHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	reading, err := h.svc.Ingest(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (h *TelemetryHandler) Latest(w http.ResponseWriter, r *http.Request) {
	reading, err := h.svc.Latest(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (h *TelemetryHandler) DailyData(w http.ResponseWriter, r *http.Request) {
	metric, err := domain.ParseMetric(r.URL.Query().Get("type"))
	if err != nil {
		httpError(w, err)
		return
	}
	points, err := h.svc.DailyReadings(r.Context(), string(metric), h.now())
	if err != nil {
		httpError(w, err)
		return
	}
	if points == nil {
		points = []domain.MetricPoint{}
	}
	writeJSON(w, http.StatusOK, DailyDataEnvelope{
		Type: string(metric),
		Unit: metric.Unit(),
		Data: points,
	})
}

func (h *TelemetryHandler) Fan(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req fanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.On == nil {
		writeError(w, http.StatusBadRequest, `body must be {"on": true|false}`)
		return
	}
	if err := h.svc.SendCommand(r.Context(), claims.UserID, *req.On); err != nil {
		httpError(w, err)
		return
	}
	state := "off"
	if *req.On {
		state = "on"
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "fan turned " + state})
}
