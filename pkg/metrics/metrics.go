package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "docshare"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	DocumentsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "documents_published_total", Help: "Documents published, by id kind (generated|custom)."},
		[]string{"kind"},
	)
	DocumentsFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "documents_fetched_total", Help: "Document fetches by result."},
		[]string{"result"},
	)
	DocumentsDeleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "documents_deleted_total", Help: "Delete requests by result."},
		[]string{"result"},
	)
	DocumentsSwept = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "documents_swept_total", Help: "Documents removed by the expiry sweep."},
	)
	SweepRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "sweep_runs_total", Help: "Expiry sweep runs by outcome."},
		[]string{"outcome"},
	)
	ArchiveFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "archive_failures_total", Help: "Expired documents that could not be archived before removal."},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(DocumentsPublished)
	reg.MustRegister(DocumentsFetched)
	reg.MustRegister(DocumentsDeleted)
	reg.MustRegister(DocumentsSwept)
	reg.MustRegister(SweepRuns)
	reg.MustRegister(ArchiveFailures)
}
