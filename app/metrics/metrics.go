// Package metrics exposes prometheus instrumentation for the sync and
// ingest paths.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoriesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storycache",
		Name:      "stories_ingested_total",
		Help:      "Stories written to the local store.",
	})

	PagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storycache",
		Name:      "pages_fetched_total",
		Help:      "Story pages fetched from the sync service.",
	})

	FetchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storycache",
		Name:      "fetch_failures_total",
		Help:      "Story page fetches that failed.",
	})

	ActionsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storycache",
		Name:      "actions_delivered_total",
		Help:      "Queued actions acknowledged by the sync service.",
	})

	ActionsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "storycache",
		Name:      "actions_failed_total",
		Help:      "Action deliveries that failed.",
	})
)
