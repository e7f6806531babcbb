package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsSnapshotAggregates(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/quiz", http.StatusOK, 10*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/api/v1/quiz/answer", http.StatusOK, 30*time.Millisecond)
	m.RecordAnswer(true)
	m.RecordAnswer(false)
	m.RecordSession(outcomeFinished)
	m.RecordSession(outcomeAbandoned)
	m.ObserveGeneration("local", nil, time.Millisecond)
	m.ObserveGeneration("remote", errors.New("boom"), time.Millisecond)
	m.ObserveStateSave(nil, time.Millisecond)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.RequestsTotal)
	assert.InDelta(t, 20.0, snap.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(2), snap.AnswersTotal)
	assert.Equal(t, uint64(1), snap.CorrectAnswers)
	assert.Equal(t, uint64(1), snap.SessionsFinished)
	assert.Equal(t, uint64(2), snap.Generations)
	assert.Equal(t, uint64(1), snap.GenerationFailures)
	assert.Equal(t, uint64(1), snap.StateSaves)
	assert.Zero(t, snap.StateSaveFailures)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `quiz_answers_total{result="correct"} 1`)
}

func TestNilMetricsServiceIsSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.RecordAnswer(true)
		m.ObserveStateSave(nil, time.Second)
	})
	assert.Zero(t, m.Snapshot().AnswersTotal)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
