// Package metrics records host function calls as prometheus metrics.
package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/reglet-dev/native-starter/hostfuncs"
)

// Outcome label values.
const (
	OutcomeOK           = "ok"
	OutcomeError        = "error"
	OutcomeChannelError = "channel_error"
)

// Metrics holds the collectors for the native host functions.
type Metrics struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates the collectors and registers them on a private registry.
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "native_calls_total",
				Help: "Total number of native export calls by outcome and error code",
			},
			[]string{"function", "outcome", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "native_call_duration_seconds",
				Help:    "Duration of native export calls through the host function channel",
				Buckets: prometheus.ExponentialBuckets(1e-7, 4, 12),
			},
			[]string{"function"},
		),
	}
	if err := m.registry.Register(m.calls); err != nil {
		return nil, fmt.Errorf("failed to register calls counter: %w", err)
	}
	if err := m.registry.Register(m.duration); err != nil {
		return nil, fmt.Errorf("failed to register duration histogram: %w", err)
	}
	return m, nil
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware returns a hostfuncs middleware that counts every call and
// observes its duration.
func (m *Metrics) Middleware() hostfuncs.Middleware {
	return func(next hostfuncs.ByteHandler) hostfuncs.ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			name, ok := hostfuncs.FunctionNameFrom(ctx)
			if !ok {
				name = "unknown"
			}

			start := time.Now()
			resp, err := next(ctx, payload)
			m.duration.WithLabelValues(name).Observe(time.Since(start).Seconds())

			outcome, code := classify(resp, err)
			m.calls.WithLabelValues(name, outcome, code).Inc()
			return resp, err
		}
	}
}

// Calls returns the call count for a function and outcome across all codes.
func (m *Metrics) Calls(function, outcome string) (float64, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return 0, err
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != "native_calls_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["function"] == function && labels["outcome"] == outcome {
				total += metric.GetCounter().GetValue()
			}
		}
	}
	return total, nil
}

// WriteText writes every metric in the prometheus text exposition format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// classify derives the outcome label from a channel response.
func classify(resp []byte, err error) (outcome, code string) {
	if err != nil {
		return OutcomeChannelError, "GenericFailure"
	}
	if errResp, ok := hostfuncs.ParseErrorResponse(resp); ok {
		return OutcomeChannelError, errResp.Error
	}

	var body struct {
		Error *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if !bytes.Contains(resp, []byte(`"error"`)) || json.Unmarshal(resp, &body) != nil || body.Error == nil {
		return OutcomeOK, ""
	}
	return OutcomeError, body.Error.Code
}
