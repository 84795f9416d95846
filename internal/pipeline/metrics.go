// SPDX-License-Identifier: MIT
package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// queueDepth is the number of snapshots waiting for the worker.
	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "freqlab",
		Subsystem: "pipeline",
		Name:      "queue_depth",
		Help:      "Snapshots waiting to be recomputed",
	})

	// requestsTotal counts enqueued snapshots.
	requestsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "freqlab",
		Subsystem: "pipeline",
		Name:      "requests_total",
		Help:      "Total snapshots enqueued for recompute",
	})

	// supersededTotal counts requests replaced before they started under
	// the latest-wins policy.
	supersededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "freqlab",
		Subsystem: "pipeline",
		Name:      "superseded_total",
		Help:      "Requests replaced by a newer snapshot before computing",
	})

	// computeSeconds measures one inverse transform plus result packing.
	computeSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "freqlab",
		Subsystem: "pipeline",
		Name:      "compute_seconds",
		Help:      "Recompute latency in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	// publishedTotal counts results handed to the result channel.
	publishedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "freqlab",
		Subsystem: "pipeline",
		Name:      "published_total",
		Help:      "Total results published",
	})

	// violationsTotal counts requests abandoned on a malformed snapshot.
	violationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "freqlab",
		Subsystem: "pipeline",
		Name:      "invariant_violations_total",
		Help:      "Requests skipped because the snapshot failed validation",
	})

	// unreadTotal counts results overwritten before any consumer took them.
	unreadTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "freqlab",
		Subsystem: "pipeline",
		Name:      "unread_results_total",
		Help:      "Results replaced by a newer one before being taken",
	})
)
