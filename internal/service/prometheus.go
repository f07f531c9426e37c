package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "liquidity_radar",
		Subsystem: "cycle",
		Name:      "runs_total",
		Help:      "Number of collection cycles started.",
	})

	cycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "liquidity_radar",
		Subsystem: "cycle",
		Name:      "duration_seconds",
		Help:      "Wall time of a full collection cycle.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	venueErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liquidity_radar",
		Subsystem: "venue",
		Name:      "errors_total",
		Help:      "Number of errored venue observations.",
	}, []string{"venue"})

	snapshotsPersistedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liquidity_radar",
		Subsystem: "venue",
		Name:      "snapshots_total",
		Help:      "Number of persisted metric snapshots.",
	}, []string{"venue"})

	alertsEmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liquidity_radar",
		Subsystem: "alerts",
		Name:      "emitted_total",
		Help:      "Number of alerts that survived deduplication.",
	}, []string{"type", "severity"})
)
