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

var questionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "questions_total",
	Help: "Answered questions labelled by outcome",
}, []string{"outcome"})

var syncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "sync_runs_total",
	Help: "Document sync runs labelled by result",
}, []string{"result"})

var questionsInQueue = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "questions_in_queue",
	Help: "Number of inbound questions waiting for a worker",
})

var activeWorkerCount = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "active_worker_count",
	Help: "Number of active answer workers",
})

type HttpStatusRecorder struct {
	http.ResponseWriter
	Status int
}

func (r *HttpStatusRecorder) WriteHeader(code int) {
	r.Status = code
	r.ResponseWriter.WriteHeader(code)
}

func IncrementQuestionsInQueue() {
	questionsInQueue.Inc()
}

func DecrementQuestionsInQueue() {
	questionsInQueue.Dec()
}

func IncrementActiveWorkerCount() {
	activeWorkerCount.Inc()
}

func DecrementActiveWorkerCount() {
	activeWorkerCount.Dec()
}

func CaptureQuestionOutcome(outcome string) {
	questionsTotal.WithLabelValues(outcome).Inc()
}

func CaptureSyncRun(result string) {
	syncRunsTotal.WithLabelValues(result).Inc()
}

var answerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "answer_duration_seconds",
	Help:    "Total time spent answering one question.",
	Buckets: []float64{.1, .5, 1, 2, 5, 10, 30},
}, []string{"outcome"})

var dependencyLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "dependency_latency_seconds",
	Help:    "Latency of external service calls.",
	Buckets: []float64{.05, .1, .25, .5, 1, 2, 5, 10},
}, []string{"service"})

func CaptureExecutionMetrics(label string, timeElapsed time.Duration) {
	dependencyLatency.WithLabelValues(label).Observe(timeElapsed.Seconds())
}

func CaptureAnswerMetrics(outcome string, timeElapsed time.Duration) {
	answerDuration.WithLabelValues(outcome).Observe(timeElapsed.Seconds())
}
