package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/typemnm/Mornoningo/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
// All methods are safe on a nil receiver.
type MetricsService struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestDuration    *prometheus.HistogramVec
	requestTotal       *prometheus.CounterVec
	answers            *prometheus.CounterVec
	sessions           *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	stateSaves         *prometheus.CounterVec
	stateSaveDuration  prometheus.Histogram

	requestCount         uint64
	requestDurationTotal uint64
	answerCount          uint64
	correctCount         uint64
	finishedCount        uint64
	generationCount      uint64
	generationFailed     uint64
	saveCount            uint64
	saveFailed           uint64
}

// NewMetricsService registers core Prometheus collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	answers := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_answers_total",
		Help: "Submitted quiz answers by result",
	}, []string{"result"})

	sessions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quiz_sessions_total",
		Help: "Quiz sessions by terminal outcome",
	}, []string{"outcome"})

	generationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "question_generation_duration_seconds",
		Help:    "Latency of question set generation",
		Buckets: []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"source", "outcome"})

	stateSaves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "study_state_saves_total",
		Help: "Study state persistence attempts",
	}, []string{"outcome"})

	stateSaveDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "study_state_save_duration_seconds",
		Help:    "Latency of study state writes",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, answers, sessions, generationDuration, stateSaves, stateSaveDuration, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		answers:            answers,
		sessions:           sessions,
		generationDuration: generationDuration,
		stateSaves:         stateSaves,
		stateSaveDuration:  stateSaveDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics and aggregates simple stats for snapshots.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordAnswer counts a submitted answer.
func (m *MetricsService) RecordAnswer(correct bool) {
	if m == nil {
		return
	}
	result := "incorrect"
	if correct {
		result = "correct"
		atomic.AddUint64(&m.correctCount, 1)
	}
	m.answers.WithLabelValues(result).Inc()
	atomic.AddUint64(&m.answerCount, 1)
}

// RecordSession counts a session reaching finished, abandoned or discarded.
func (m *MetricsService) RecordSession(outcome string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(outcome).Inc()
	if outcome == "finished" {
		atomic.AddUint64(&m.finishedCount, 1)
	}
}

// ObserveGeneration records one question source call.
func (m *MetricsService) ObserveGeneration(source string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
		atomic.AddUint64(&m.generationFailed, 1)
	}
	m.generationDuration.WithLabelValues(source, outcome).Observe(duration.Seconds())
	atomic.AddUint64(&m.generationCount, 1)
}

// ObserveStateSave records one persistence write.
func (m *MetricsService) ObserveStateSave(err error, duration time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
		atomic.AddUint64(&m.saveFailed, 1)
	}
	m.stateSaves.WithLabelValues(outcome).Inc()
	m.stateSaveDuration.Observe(duration.Seconds())
	atomic.AddUint64(&m.saveCount, 1)
}

// Snapshot returns aggregated metrics suitable for API consumers.
func (m *MetricsService) Snapshot() models.MetricsSnapshot {
	if m == nil {
		return models.MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return models.MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		AnswersTotal:             atomic.LoadUint64(&m.answerCount),
		CorrectAnswers:           atomic.LoadUint64(&m.correctCount),
		SessionsFinished:         atomic.LoadUint64(&m.finishedCount),
		Generations:              atomic.LoadUint64(&m.generationCount),
		GenerationFailures:       atomic.LoadUint64(&m.generationFailed),
		StateSaves:               atomic.LoadUint64(&m.saveCount),
		StateSaveFailures:        atomic.LoadUint64(&m.saveFailed),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
