package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// CommentsScanned counts comment bodies run through extraction.
	CommentsScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "branikbot_comments_scanned_total",
			Help: "Total number of comments scanned for amounts",
		},
	)

	// Replies counts composed replies by delivery result.
	Replies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "branikbot_replies_total",
			Help: "Total number of composed replies by result",
		},
		[]string{"result"},
	)

	// UnitPrice is the price used for the latest classification.
	UnitPrice = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "branikbot_unit_price",
			Help: "Current unit price used to classify amounts",
		},
	)

	// CycleDuration tracks how long one polling cycle takes.
	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "branikbot_cycle_duration_seconds",
			Help:    "Polling cycle duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
