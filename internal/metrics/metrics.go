package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransactionsAdmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txwarden_transactions_admitted_total",
		Help: "Total number of transaction requests accepted at ingress.",
	})

	DecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "txwarden_decisions_total",
		Help: "Total number of terminal arbitration decisions, labelled by status.",
	}, []string{"status"})

	WarningsReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txwarden_warnings_received_total",
		Help: "Total number of rater warnings consumed by an open aggregation window.",
	})

	WarningsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txwarden_warnings_dropped_total",
		Help: "Total number of rater warnings with no open window (late or unknown id).",
	})

	BroadcastFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txwarden_broadcast_failures_total",
		Help: "Total number of per-rater delivery failures during broadcast.",
	})

	DispatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "txwarden_dispatch_failures_total",
		Help: "Total number of failed deliveries to the chain broadcaster.",
	})

	ConnectedRaters = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "txwarden_connected_raters",
		Help: "Number of currently registered rater connections.",
	})

	WindowResolution = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "txwarden_window_resolution_seconds",
		Help:    "Time from window open to resolution (first warning or timeout).",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})
)
