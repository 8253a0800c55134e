package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultOK        = "ok"
	ResultError     = "error"
	ResultDiscarded = "discarded"
)

// Metrics holds the Prometheus collectors of the monitor.
type Metrics struct {
	registry *prometheus.Registry

	RefreshTotal       *prometheus.CounterVec // labels: reason, result
	LateResponsesTotal *prometheus.CounterVec // labels: store
	SubmissionsTotal   *prometheus.CounterVec // labels: result
	PollingActive      prometheus.Gauge
	FetchDuration      *prometheus.HistogramVec // labels: store
}

// New registers all collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RefreshTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risk_monitor_refresh_total",
			Help: "Refresh cycles by trigger and outcome",
		}, []string{"reason", "result"}),
		LateResponsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risk_monitor_late_responses_total",
			Help: "Responses discarded because the selection moved on or a newer snapshot was stored",
		}, []string{"store"}),
		SubmissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "risk_monitor_submissions_total",
			Help: "New position submissions by outcome",
		}, []string{"result"}),
		PollingActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "risk_monitor_polling_active",
			Help: "1 while an account is being polled",
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "risk_monitor_fetch_duration_seconds",
			Help:    "Backend fetch latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"store"}),
	}

	m.registry.MustRegister(
		m.RefreshTotal,
		m.LateResponsesTotal,
		m.SubmissionsTotal,
		m.PollingActive,
		m.FetchDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		slog.Info("metrics endpoint started", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics endpoint failed", slog.String("err", err.Error()))
		}
	}()
}
