package coreiot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-iot-telemetry/internal/config"
	"github.com/go-iot-telemetry/internal/domain"
)

const maxBodyBytes = 10 << 20

// Sample is one upstream time-series point.
type Sample struct {
	Timestamp time.Time
	Value     float64
}

// Telemetry holds the latest sample per metric. Light is nil when the device
// does not report it.
type Telemetry struct {
	Temperature Sample
	Humidity    Sample
	Light       *Sample
}

// Client talks to the CoreIoT REST API on behalf of one user per call.
// It never retries; callers decide.
type Client struct {
	baseURL    string
	entityID   string
	httpClient *http.Client
}

func NewClient(cfg config.CoreIoT) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		entityID:   cfg.EntityID,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type rawSample struct {
	Ts    int64           `json:"ts"`
	Value json.RawMessage `json:"value"`
}

// LatestTelemetry fetches the newest value of every tracked metric.
func (c *Client) LatestTelemetry(ctx context.Context, token string) (*Telemetry, error) {
	keys := make([]string, len(domain.Metrics))
	for i, m := range domain.Metrics {
		keys[i] = string(m)
	}
	path := fmt.Sprintf("/api/plugins/telemetry/DEVICE/%s/values/timeseries", url.PathEscape(c.entityID))
	q := url.Values{}
	q.Set("keys", strings.Join(keys, ","))
	q.Set("useStrictDataTypes", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	body, err := c.do(req, token, path)
	if err != nil {
		return nil, err
	}

	var series map[string][]rawSample
	if err := json.Unmarshal(body, &series); err != nil {
		return nil, fmt.Errorf("decoding telemetry: %v: %w", err, domain.ErrDataFormat)
	}
	return parseTelemetry(series)
}

func parseTelemetry(series map[string][]rawSample) (*Telemetry, error) {
	for _, m := range []domain.Metric{domain.MetricTemperature, domain.MetricHumidity} {
		if _, ok := series[string(m)]; !ok {
			return nil, fmt.Errorf("missing %s series: %w", m, domain.ErrDataFormat)
		}
	}
	for _, m := range []domain.Metric{domain.MetricTemperature, domain.MetricHumidity} {
		if len(series[string(m)]) == 0 {
			return nil, fmt.Errorf("no sensor data available: %w", domain.ErrNotFound)
		}
	}

	var t Telemetry
	var err error
	if t.Temperature, err = latest(domain.MetricTemperature, series); err != nil {
		return nil, err
	}
	if t.Humidity, err = latest(domain.MetricHumidity, series); err != nil {
		return nil, err
	}
	if len(series[string(domain.MetricLight)]) > 0 {
		light, err := latest(domain.MetricLight, series)
		if err != nil {
			return nil, err
		}
		t.Light = &light
	}
	return &t, nil
}

// latest returns the last element of the series, which upstream orders newest last.
func latest(m domain.Metric, series map[string][]rawSample) (Sample, error) {
	s := series[string(m)]
	last := s[len(s)-1]
	v, err := parseValue(last.Value)
	if err != nil {
		return Sample{}, fmt.Errorf("%s value: %v: %w", m, err, domain.ErrDataFormat)
	}
	return Sample{Timestamp: time.UnixMilli(last.Ts).UTC(), Value: v}, nil
}

// parseValue accepts both a JSON number and a numeric string, since
// useStrictDataTypes=false returns strings. Only finite values are accepted.
func parseValue(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, fmt.Errorf("unexpected value %s", string(raw))
		}
		if f, err = strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return 0, err
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %s", string(raw))
	}
	return f, nil
}

type rpcRequest struct {
	Method string      `json:"method"`
	Params interface{} `json:"params"`
}

// SendRPC posts a one-way command to the device. Any 2xx status is success.
func (c *Client) SendRPC(ctx context.Context, token, method string, params interface{}) error {
	payload, err := json.Marshal(rpcRequest{Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("encoding rpc: %w", err)
	}
	path := fmt.Sprintf("/api/plugins/rpc/oneway/%s", url.PathEscape(c.entityID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.do(req, token, path)
	return err
}

func (c *Client) do(req *http.Request, token, path string) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w: %w", path, domain.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w: %w", path, domain.ErrUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Endpoint:   path,
		}
	}
	return body, nil
}
