package models

import "math"

// MaxStreak caps the consecutive study day counter.
const MaxStreak = 365

// User holds the learner's aggregate counters.
type User struct {
	Name           string `json:"name"`
	Level          int    `json:"level"`
	Streak         int    `json:"streak"`
	TotalMinutes   int    `json:"totalMinutes"`
	TotalAnswers   int    `json:"totalAnswers"`
	CorrectAnswers int    `json:"correctAnswers"`
	BestRankDiff   int    `json:"bestRankDiff"`
}

// Accuracy returns the rounded percentage of correct answers.
func (u User) Accuracy() int {
	if u.TotalAnswers == 0 {
		return 0
	}
	return int(math.Round(float64(u.CorrectAnswers) / float64(u.TotalAnswers) * 100))
}

// LeaderboardEntry is one row of the ranking.
type LeaderboardEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Streak int    `json:"streak"`
}
