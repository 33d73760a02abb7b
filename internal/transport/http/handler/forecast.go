package handler

import (
	"context"
	"net/http"

	"github.com/go-iot-telemetry/internal/domain"
	"github.com/go-iot-telemetry/internal/transport/http/middleware"
)

type predictor interface {
	Predict(ctx context.Context, userID, metricName string) (*domain.Prediction, error)
}

// ForecastHandler serves next-value predictions.
type ForecastHandler struct {
	predictor predictor
}

func NewForecastHandler(p predictor) *ForecastHandler {
	return &ForecastHandler{predictor: p}
}

func (h *ForecastHandler) Predict(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	p, err := h.predictor.Predict(r.Context(), claims.UserID, r.URL.Query().Get("type"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
