package domain

import (
	"fmt"
	"strings"
)

// Metric names one tracked environmental measurement.
type Metric string

const (
	MetricTemperature Metric = "temperature"
	MetricHumidity    Metric = "humidity"
	MetricLight       Metric = "light"
)

// Metrics lists every tracked metric in upstream key order.
var Metrics = []Metric{MetricTemperature, MetricHumidity, MetricLight}

// ParseMetric validates a metric name from user input.
func ParseMetric(s string) (Metric, error) {
	m := Metric(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unsupported metric %q: %w", s, ErrBadRequest)
	}
	return m, nil
}

func (m Metric) Valid() bool {
	switch m {
	case MetricTemperature, MetricHumidity, MetricLight:
		return true
	}
	return false
}

// Title returns the display form used in notification messages.
func (m Metric) Title() string {
	s := string(m)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Unit is the display unit for predicted values.
func (m Metric) Unit() string {
	switch m {
	case MetricTemperature:
		return "°C"
	case MetricHumidity:
		return "%"
	case MetricLight:
		return "lux"
	}
	return ""
}

// Comparison is the direction an alarm threshold fires in.
type Comparison string

const (
	ComparisonAbove Comparison = "above"
	ComparisonBelow Comparison = "below"
)

// Crossed reports whether value strictly crosses threshold. Equality never crosses.
func (c Comparison) Crossed(value, threshold float64) bool {
	switch c {
	case ComparisonAbove:
		return value > threshold
	case ComparisonBelow:
		return value < threshold
	}
	return false
}
