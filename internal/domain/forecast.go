package domain

import "time"

// ForecastModel is a fitted linear trend for one (user, metric) pair.
type ForecastModel struct {
	UserID    string    `json:"user_id"`
	Metric    Metric    `json:"metric"`
	Slope     float64   `json:"slope"`
	Intercept float64   `json:"intercept"`
	Points    int       `json:"points"`
	TrainedAt time.Time `json:"trained_at"`
}

// At evaluates the model at index x.
func (m *ForecastModel) At(x float64) float64 {
	return m.Slope*x + m.Intercept
}

type Prediction struct {
	Metric Metric  `json:"metric"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
}
