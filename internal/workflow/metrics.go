package workflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tablesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_tables_total",
		Help: "Tables successfully ingested across all runs.",
	})
	columnsIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_columns_total",
		Help: "Columns successfully ingested across all runs.",
	})
	tableFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ingest_table_failures_total",
		Help: "Tables that failed introspection or sink delivery.",
	})
	runDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ingest_run_duration_seconds",
		Help:    "Wall-clock duration of ingestion runs.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)
