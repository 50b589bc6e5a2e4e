package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var HttpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "http_requests_total",
	Help: "Total number of requests labelled by path and status",
}, []string{"path", "status"})

var countJobsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "count_jobs_in_queue",
	Help: "Number of ingestion jobs waiting for a worker",
})

var dispatcherSignalCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "dispatcher_signal_count",
	Help: "How often the dispatcher has signaled to start worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active workers",
})

var ingestFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ingest_files_total",
	Help: "Files seen by the ingestion pipeline, labelled by outcome and stage",
}, []string{"outcome", "stage"})

var ingestRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ingest_records_total",
	Help: "Index records handled by the bulk indexer, labelled by outcome",
}, []string{"outcome"})

var bulkRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bulk_write_retries_total",
	Help: "Bulk write calls retried after a transient backend error",
})

var indexEnsureTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "index_ensure_total",
	Help: "Index ensure calls that reached the backend, labelled by result",
}, []string{"result"})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming handlers (the MCP endpoint) working behind the recorder.
func (r *HttpStatusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func IncrementJobsInQueue() {
	countJobsInQueue.Inc()
}

func DecrementJobsInQueue() {
	countJobsInQueue.Dec()
}

func StartDispatcherSignalCount() {
	dispatcherSignalCount.Inc()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}
func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func FileProcessed(stage string) {
	ingestFilesTotal.WithLabelValues("processed", stage).Inc()
}

func FileSkipped(stage string) {
	ingestFilesTotal.WithLabelValues("skipped", stage).Inc()
}

func RecordsWritten(n int) {
	ingestRecordsTotal.WithLabelValues("written").Add(float64(n))
}

func RecordsFailed(n int) {
	ingestRecordsTotal.WithLabelValues("failed").Add(float64(n))
}

func BulkRetry() {
	bulkRetriesTotal.Inc()
}

func IndexEnsured(result string) {
	indexEnsureTotal.WithLabelValues(result).Inc()
}

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "process_request_duration_seconds",
	Help:    "Total time spent running an ingestion job.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30, 60, 300},
}, []string{"status"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureJobMetrics(label string, timeElapsed time.Duration) {
	requestDuration.WithLabelValues(label).Observe(timeElapsed.Seconds())
}
