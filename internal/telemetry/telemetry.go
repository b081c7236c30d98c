// Package telemetry wires the OpenTelemetry metric pipeline to a Prometheus
// exporter and records per-route HTTP metrics.
package telemetry

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/global"
	export "go.opentelemetry.io/otel/sdk/export/metric"
	"go.opentelemetry.io/otel/sdk/metric/aggregator/histogram"
	controller "go.opentelemetry.io/otel/sdk/metric/controller/basic"
	processor "go.opentelemetry.io/otel/sdk/metric/processor/basic"
	selector "go.opentelemetry.io/otel/sdk/metric/selector/simple"
	"go.opentelemetry.io/otel/unit"
)

const (
	RequestCountName = "http/server/request_count"
	DurationName     = "http/server/duration_ms"
)

// Metrics owns the exporter and the HTTP instruments.
type Metrics struct {
	exporter *prometheus.Exporter
	requests metric.Int64Counter
	duration metric.Float64ValueRecorder
}

// New builds a cumulative, pull based pipeline and installs it as the global
// meter provider.
func New(serviceName string) (*Metrics, error) {
	config := prometheus.Config{}
	c := controller.New(
		processor.New(
			selector.NewWithHistogramDistribution(
				histogram.WithExplicitBoundaries(config.DefaultHistogramBoundaries),
			),
			export.CumulativeExportKindSelector(),
			processor.WithMemory(true),
		),
	)

	exporter, err := prometheus.New(config, c)
	if err != nil {
		return nil, fmt.Errorf("initialize prometheus exporter: %w", err)
	}
	global.SetMeterProvider(exporter.MeterProvider())

	meter := global.Meter(serviceName)

	requests, err := meter.NewInt64Counter(RequestCountName,
		metric.WithDescription("Count of completed requests, by HTTP method, route and response status"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", RequestCountName, err)
	}

	duration, err := meter.NewFloat64ValueRecorder(DurationName,
		metric.WithDescription("Request latency in milliseconds, by HTTP method, route and response status"),
		metric.WithUnit(unit.Milliseconds),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", DurationName, err)
	}

	return &Metrics{exporter: exporter, requests: requests, duration: duration}, nil
}

// Handler serves the Prometheus scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return m.exporter
}

// Middleware records one count and one latency sample per request. The route
// label is the matched chi pattern so ids do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}

		labels := []attribute.KeyValue{
			attribute.String("method", r.Method),
			attribute.String("route", route),
			attribute.String("status", strconv.Itoa(status)),
		}

		m.requests.Add(r.Context(), 1, labels...)
		m.duration.Record(r.Context(), float64(time.Since(start).Microseconds())/1000, labels...)
	})
}
