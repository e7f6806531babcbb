package models

import "time"

// MetricsSnapshot is a JSON-friendly summary of the in-process counters.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	AnswersTotal             uint64    `json:"answersTotal"`
	CorrectAnswers           uint64    `json:"correctAnswers"`
	SessionsFinished         uint64    `json:"sessionsFinished"`
	Generations              uint64    `json:"generations"`
	GenerationFailures       uint64    `json:"generationFailures"`
	StateSaves               uint64    `json:"stateSaves"`
	StateSaveFailures        uint64    `json:"stateSaveFailures"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
