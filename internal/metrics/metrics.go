package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransactionsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noti_transactions_ingested_total",
		Help: "Total number of transactions accepted by the ingestion endpoint, labelled by source.",
	}, []string{"source"})

	IngestRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noti_ingest_rejected_total",
		Help: "Total number of rejected ingestion attempts, labelled by reason.",
	}, []string{"reason"})

	StatisticsRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "noti_statistics_requests_total",
		Help: "Total number of statistics computations served.",
	})

	StatisticsCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "noti_statistics_cache_hits_total",
		Help: "Total number of statistics responses served from cache.",
	})

	ExportOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "noti_exports_total",
		Help: "Total number of transaction export attempts, labelled by status.",
	}, []string{"status"})
)
