package service

import (
	"fmt"

	"github.com/typemnm/Mornoningo/internal/models"
	"github.com/typemnm/Mornoningo/pkg/clock"
)

const (
	bossID    = "u0"
	bossName  = "Ranking Champion"
	bossScore = 1680
)

// NewSampleState seeds a first-run state with two documents, their staged reviews and a leaderboard.
func NewSampleState(today clock.Date) *models.StudyState {
	docs := []models.Document{
		{
			ID:            "doc_os",
			Title:         "Operating Systems Intro.pptx",
			Type:          "pptx",
			Progress:      78,
			ConceptsCount: 23,
			CreatedAt:     today,
			Notes: "- Processes and threads\n- Process state transitions\n- Scheduling algorithms (FCFS, SJF, RR)\n" +
				"- Synchronization and semaphores\n- Deadlock conditions",
			QuizStats:        models.QuizStats{Attempts: 2, Correct: 15, Total: 20},
			ExtractionStatus: models.ExtractionReady,
			PreloadedQuiz:    []models.Question{},
		},
		{
			ID:               "doc_ds",
			Title:            "Data Structures Summary.pdf",
			Type:             "pdf",
			Progress:         56,
			ConceptsCount:    18,
			CreatedAt:        today,
			Notes:            "- Arrays vs linked lists\n- Stacks, queues, deques\n- Tree and graph terminology\n- Time complexity (O, Omega, Theta)",
			QuizStats:        models.QuizStats{Attempts: 1, Correct: 6, Total: 10},
			ExtractionStatus: models.ExtractionReady,
			PreloadedQuiz:    []models.Question{},
		},
	}

	reviews := make([]models.Review, 0, len(docs)*len(models.ReviewLadder))
	for i, doc := range docs {
		base := today
		if i > 0 {
			base = today.AddDays(-1)
		}
		for stage, offset := range models.ReviewLadder {
			reviews = append(reviews, models.Review{
				ID:         fmt.Sprintf("rev_%s_%d", doc.ID, offset),
				DocumentID: doc.ID,
				DueDate:    base.AddDays(offset),
				Stage:      stage + 1,
				Priority:   models.MinPriority,
			})
		}
	}

	return &models.StudyState{
		SchemaVersion: models.CurrentSchemaVersion,
		User: models.User{
			Name:           "Data Rookie",
			Level:          12,
			Streak:         3,
			TotalMinutes:   13*60 + 22,
			TotalAnswers:   30,
			CorrectAnswers: 21,
			BestRankDiff:   23,
		},
		Docs:             docs,
		Reviews:          reviews,
		QuizSessions:     []models.QuizRecord{},
		LastLoginDate:    today,
		CurrentUserID:    models.DefaultUserID,
		UpcomingExamDate: today.AddDays(30),
		Leaderboard: []models.LeaderboardEntry{
			{ID: bossID, Name: bossName, Score: bossScore, Streak: 10},
			{ID: models.DefaultUserID, Name: "Data Rookie", Score: 1240, Streak: 3},
			{ID: "u2", Name: "AI Explorer", Score: 1180, Streak: 5},
			{ID: "u3", Name: "Algorithm Artisan", Score: 1130, Streak: 2},
			{ID: "u4", Name: "Stats Master", Score: 980, Streak: 4},
			{ID: "u5", Name: "CS Fresh", Score: 910, Streak: 1},
		},
	}
}
