// Copyright 2023, DASH-Industry Forum. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package metrics exposes the pipeline's prometheus counters and histograms.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const service = "dashplayer"

var fetchBuckets = []float64{5, 10, 20, 50, 100, 200, 500, 1000, 2000}

// Registry holds every metric the pipeline updates. A Registry is safe for
// concurrent use by the fetcher, decoder and synchronizer tasks of both streams.
type Registry struct {
	segmentsFetched  *prometheus.CounterVec
	fetchLatency     *prometheus.HistogramVec
	framesDecoded    *prometheus.CounterVec
	framesPresented  *prometheus.CounterVec
	framesDropped    *prometheus.CounterVec
	samplesQueued    prometheus.Counter
	reg              *prometheus.Registry
}

// New creates a Registry backed by its own prometheus.Registry, so repeated
// test runs in the same process never collide on global MustRegister calls.
func New() *Registry {
	reg := prometheus.NewRegistry()
	r := &Registry{
		reg: reg,
		segmentsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "segments_fetched_total",
			Help:        "Number of segments fetched, partitioned by stream.",
			ConstLabels: prometheus.Labels{"service": service},
		}, []string{"stream"}),
		fetchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "segment_fetch_duration_milliseconds",
			Help:        "Segment fetch latency.",
			ConstLabels: prometheus.Labels{"service": service},
			Buckets:     fetchBuckets,
		}, []string{"stream"}),
		framesDecoded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "frames_decoded_total",
			Help:        "Number of frames decoded, partitioned by stream.",
			ConstLabels: prometheus.Labels{"service": service},
		}, []string{"stream"}),
		framesPresented: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "frames_presented_total",
			Help:        "Number of frames presented, partitioned by stream.",
			ConstLabels: prometheus.Labels{"service": service},
		}, []string{"stream"}),
		framesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "frames_dropped_total",
			Help:        "Number of frames dropped for drift, partitioned by stream.",
			ConstLabels: prometheus.Labels{"service": service},
		}, []string{"stream"}),
		samplesQueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "samples_queued_total",
			Help:        "Number of PCM samples pushed to the audio ring.",
			ConstLabels: prometheus.Labels{"service": service},
		}),
	}
	reg.MustRegister(r.segmentsFetched, r.fetchLatency, r.framesDecoded,
		r.framesPresented, r.framesDropped, r.samplesQueued)
	return r
}

func (r *Registry) SegmentFetched(stream string, d time.Duration) {
	r.segmentsFetched.WithLabelValues(stream).Inc()
	r.fetchLatency.WithLabelValues(stream).Observe(float64(d.Nanoseconds()) * 1e-6)
}

func (r *Registry) FrameDecoded(stream string)   { r.framesDecoded.WithLabelValues(stream).Inc() }
func (r *Registry) FramePresented(stream string) { r.framesPresented.WithLabelValues(stream).Inc() }
func (r *Registry) FrameDropped(stream string)   { r.framesDropped.WithLabelValues(stream).Inc() }
func (r *Registry) SamplesQueued(n int)          { r.samplesQueued.Add(float64(n)) }

// Serve starts an HTTP server exposing /metrics and blocks until ctx is
// cancelled, at which point it shuts the server down. addr == "" is a no-op.
func (r *Registry) Serve(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
