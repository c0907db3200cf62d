// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics wraps prometheus so every subsystem (northbound engine,
// LSDB, SPF scheduler, protocol instances) registers into one process-wide
// registry that can be scraped or gathered through a MultiGatherer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Registerer is an interface for registering prometheus metrics.
type Registerer interface {
	prometheus.Registerer
}

// Registry is an interface for a prometheus registry.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// NewRegistry creates a new prometheus registry.
func NewRegistry() Registry {
	return prometheus.NewRegistry()
}

// MultiGatherer merges metrics registered by name, one sub-gatherer per
// protocol instance plus one for the northbound engine, so /metrics can
// expose them all under one scrape without each instance needing a handle
// to the process registry.
type MultiGatherer interface {
	prometheus.Gatherer

	// Register adds a new gatherer under name.
	Register(name string, gatherer prometheus.Gatherer) error
}

type multiGatherer struct {
	gatherers map[string]prometheus.Gatherer
}

// NewMultiGatherer creates a new multi-gatherer.
func NewMultiGatherer() MultiGatherer {
	return &multiGatherer{
		gatherers: make(map[string]prometheus.Gatherer),
	}
}

func (mg *multiGatherer) Register(name string, gatherer prometheus.Gatherer) error {
	mg.gatherers[name] = gatherer
	return nil
}

func (mg *multiGatherer) Gather() ([]*dto.MetricFamily, error) {
	var result []*dto.MetricFamily
	for _, g := range mg.gatherers {
		families, err := g.Gather()
		if err != nil {
			return nil, err
		}
		result = append(result, families...)
	}
	return result, nil
}

// Northbound holds the northbound transaction engine's metrics (§4.1, §8).
type Northbound struct {
	CommitsTotal       prometheus.Counter
	CommitFailures     prometheus.Counter
	RollbacksTotal     prometheus.Counter
	TransactionLatency prometheus.Histogram
	JournalSize        prometheus.Gauge
}

// NewNorthbound registers and returns the northbound engine's metrics.
func NewNorthbound(registerer prometheus.Registerer) (*Northbound, error) {
	n := &Northbound{
		CommitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "polyd",
			Subsystem: "northbound",
			Name:      "commits_total",
			Help:      "Number of commits that completed the two-phase protocol successfully.",
		}),
		CommitFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "polyd",
			Subsystem: "northbound",
			Name:      "commit_failures_total",
			Help:      "Number of commits that failed validation or preparation.",
		}),
		RollbacksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "polyd",
			Subsystem: "northbound",
			Name:      "confirmed_rollbacks_total",
			Help:      "Number of confirmed-commit rollbacks triggered by timer expiry.",
		}),
		TransactionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "polyd",
			Subsystem: "northbound",
			Name:      "transaction_latency_seconds",
			Help:      "Time spent in the validate/prepare/apply pipeline.",
			Buckets:   prometheus.DefBuckets,
		}),
		JournalSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "polyd",
			Subsystem: "northbound",
			Name:      "journal_entries",
			Help:      "Number of transactions currently held in the journal.",
		}),
	}
	for _, c := range []prometheus.Collector{
		n.CommitsTotal, n.CommitFailures, n.RollbacksTotal,
		n.TransactionLatency, n.JournalSize,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// LinkState holds the per-instance link-state core metrics (§4.3, §8).
type LinkState struct {
	LSACount     prometheus.Gauge
	ChecksumSum  prometheus.Gauge
	SPFRunsTotal prometheus.Counter
	SPFDuration  prometheus.Histogram
	AdjUp        prometheus.Gauge
}

// NewLinkState registers and returns link-state metrics for one protocol
// instance, labeled by protocol+name in the metric name prefix so multiple
// instances don't collide on the same registry.
func NewLinkState(registerer prometheus.Registerer, namespace string) (*LinkState, error) {
	ls := &LinkState{
		LSACount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "lsdb",
			Name:      "lsa_count",
			Help:      "Number of LSAs/LSPs currently stored.",
		}),
		ChecksumSum: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "lsdb",
			Name:      "checksum_sum",
			Help:      "Sum of all stored entry header checksums, mod 2^32.",
		}),
		SPFRunsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "spf",
			Name:      "runs_total",
			Help:      "Number of SPF runs (full and partial).",
		}),
		SPFDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "spf",
			Name:      "duration_seconds",
			Help:      "Wall time of each SPF run.",
			Buckets:   prometheus.DefBuckets,
		}),
		AdjUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "adjacency",
			Name:      "up",
			Help:      "Number of adjacencies/neighbors currently Full/Up.",
		}),
	}
	for _, c := range []prometheus.Collector{
		ls.LSACount, ls.ChecksumSum, ls.SPFRunsTotal, ls.SPFDuration, ls.AdjUp,
	} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return ls, nil
}
