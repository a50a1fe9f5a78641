// Package metrics provides a Prometheus implementation of the metrics port.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/ragcore/internal/core/ports/driven"
)

// Ensure Prometheus implements the interface.
var _ driven.Metrics = (*Prometheus)(nil)

const namespace = "ragcore"

// Prometheus records pipeline metrics on its own registry, so several
// instances can coexist in one process (and in tests).
type Prometheus struct {
	registry *prometheus.Registry

	documents        *prometheus.CounterVec
	chunksAccepted   prometheus.Counter
	chunksSkipped    prometheus.Counter
	chunkErrors      prometheus.Counter
	retrievals       *prometheus.CounterVec
	retrievalLatency prometheus.Histogram
	collectionSize   prometheus.Gauge
}

// NewPrometheus creates the collectors and registers them on a fresh registry.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		documents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_ingested_total",
				Help:      "Documents submitted for ingestion, by outcome.",
			},
			[]string{"status"},
		),
		chunksAccepted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_accepted_total",
			Help:      "Chunks embedded and stored.",
		}),
		chunksSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_skipped_duplicate_total",
			Help:      "Chunks skipped because their content hash was already stored.",
		}),
		chunkErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunk_errors_total",
			Help:      "Chunks dropped because embedding failed.",
		}),
		retrievals: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retrievals_total",
				Help:      "Retrieval requests, by outcome.",
			},
			[]string{"status"},
		),
		retrievalLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "retrieval_duration_seconds",
			Help:      "Retrieval latency including query embedding.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}),
		collectionSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "collection_records",
			Help:      "Records currently stored in the collection.",
		}),
	}
}

// RecordIngest records one document's outcome.
func (p *Prometheus) RecordIngest(accepted, skipped, chunkErrors int, docFailed bool) {
	status := "ok"
	if docFailed {
		status = "failed"
	}
	p.documents.WithLabelValues(status).Inc()
	p.chunksAccepted.Add(float64(accepted))
	p.chunksSkipped.Add(float64(skipped))
	p.chunkErrors.Add(float64(chunkErrors))
}

// RecordRetrieval records one retrieval and its latency.
func (p *Prometheus) RecordRetrieval(d time.Duration, results int, err error) {
	status := "ok"
	switch {
	case err != nil:
		status = "error"
	case results == 0:
		status = "empty"
	}
	p.retrievals.WithLabelValues(status).Inc()
	p.retrievalLatency.Observe(d.Seconds())
}

// SetCollectionSize records the current record count.
func (p *Prometheus) SetCollectionSize(n int) {
	p.collectionSize.Set(float64(n))
}

// Registry returns the registry holding the collectors.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{Registry: p.registry})
}
