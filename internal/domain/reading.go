package domain

import "time"

// Reading is one timestamped sample of every tracked metric. Readings are
// global across users and never updated once stored.
type Reading struct {
	ReadingID   string    `json:"id" dynamodbav:"reading_id"`
	Temperature float64   `json:"temperature" dynamodbav:"temperature"`
	Humidity    float64   `json:"humidity" dynamodbav:"humidity"`
	Light       *float64  `json:"light,omitempty" dynamodbav:"light,omitempty"`
	Timestamp   time.Time `json:"timestamp" dynamodbav:"timestamp"`
}

// Value returns the reading's value for m. ok is false for an unknown metric
// or when the reading carries no light sample.
func (r *Reading) Value(m Metric) (float64, bool) {
	switch m {
	case MetricTemperature:
		return r.Temperature, true
	case MetricHumidity:
		return r.Humidity, true
	case MetricLight:
		if r.Light == nil {
			return 0, false
		}
		return *r.Light, true
	}
	return 0, false
}

// MetricPoint is a single metric value at a point in time.
type MetricPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}
