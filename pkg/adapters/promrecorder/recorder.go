// Package promrecorder implements ports.Metrics with Prometheus collectors
// registered on a private registry.
package promrecorder

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/user/scribbler/pkg/ports"
)

// Recorder holds the run collectors.
type Recorder struct {
	registry *prometheus.Registry

	framesTransformed *prometheus.CounterVec
	stageDuration     *prometheus.HistogramVec
	runs              *prometheus.CounterVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		framesTransformed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scribbler_frames_transformed_total",
			Help: "Frames written by the transform stage, by transformer source",
		}, []string{"source"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scribbler_stage_duration_seconds",
			Help:    "Duration of each pipeline stage",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"stage"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scribbler_runs_total",
			Help: "Pipeline runs, by final status",
		}, []string{"status"}),
	}
	r.registry.MustRegister(r.framesTransformed, r.stageDuration, r.runs)
	return r
}

// StageDuration observes d for stage.
func (r *Recorder) StageDuration(stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// FrameTransformed increments the frame counter for source.
func (r *Recorder) FrameTransformed(source string) {
	r.framesTransformed.WithLabelValues(source).Inc()
}

// RunFinished increments the run counter for status.
func (r *Recorder) RunFinished(status string) {
	r.runs.WithLabelValues(status).Inc()
}

// Registry returns the private registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler returns an http.Handler exposing the registry.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return r.serve(ctx, ln)
}

func (r *Recorder) serve(ctx context.Context, ln net.Listener) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Noop discards all measurements.
type Noop struct{}

func (Noop) StageDuration(string, time.Duration) {}
func (Noop) FrameTransformed(string)             {}
func (Noop) RunFinished(string)                  {}

var (
	_ ports.Metrics = (*Recorder)(nil)
	_ ports.Metrics = Noop{}
)
