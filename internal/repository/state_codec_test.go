package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typemnm/Mornoningo/internal/models"
	appErrors "github.com/typemnm/Mornoningo/pkg/errors"
)

func fixtureState() *models.StudyState {
	return &models.StudyState{
		SchemaVersion: models.CurrentSchemaVersion,
		User: models.User{
			Name: "Data Rookie", Level: 12, Streak: 3, TotalMinutes: 802,
			TotalAnswers: 30, CorrectAnswers: 21, BestRankDiff: 23,
		},
		Docs: []models.Document{{
			ID:                 "doc_os",
			FileID:             "1715300000000_ab12cd34ef56.pptx",
			Title:              "Operating Systems.pptx",
			Type:               "pptx",
			Progress:           78,
			ConceptsCount:      5,
			CreatedAt:          "2024-05-10",
			Notes:              "- Processes\n- Scheduling",
			QuizStats:          models.QuizStats{Attempts: 2, Correct: 15, Total: 20},
			ExtractionStatus:   models.ExtractionReady,
			ExtractionProgress: 100,
			PreloadedQuiz: []models.Question{{
				Q: "Which is a scheduling policy?", Options: []string{"FCFS", "TCP", "SQL", "DNS"},
				Correct: 0, Explanation: "First come first served.",
			}},
		}},
		Reviews: []models.Review{{ID: "rev_1", DocumentID: "doc_os", DueDate: "2024-05-11", Stage: 1, Priority: 2}},
		QuizSessions: []models.QuizRecord{{
			ID: "quiz_1", DocumentID: "doc_os", Title: "Operating Systems.pptx", Score: 40,
			CorrectCount: 4, Total: 5, FinishedAt: time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC),
		}},
		LastLoginDate:    "2024-05-10",
		CurrentUserID:    models.DefaultUserID,
		UpcomingExamDate: "2024-06-09",
		Leaderboard:      []models.LeaderboardEntry{{ID: "u0", Name: "Ranking Champion", Score: 1680, Streak: 10}},
	}
}

func TestStateRoundTrip(t *testing.T) {
	original := fixtureState()
	raw, err := EncodeState(original)
	require.NoError(t, err)

	decoded, err := DecodeState(raw)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestDecodeStateCorrupt(t *testing.T) {
	_, err := DecodeState([]byte("{not json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrCorruptState))

	_, err = DecodeState([]byte(`{"schemaVersion": 99}`))
	assert.True(t, errors.Is(err, appErrors.ErrCorruptState))
}

func TestDecodeStateEmpty(t *testing.T) {
	state, err := DecodeState([]byte("  \n"))
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestDecodeLegacyStateHasZeroVersion(t *testing.T) {
	state, err := DecodeState([]byte(`{"user":{"name":"Data Rookie"},"docs":[],"reviews":[]}`))
	require.NoError(t, err)
	assert.Equal(t, 0, state.SchemaVersion)
	assert.Equal(t, "Data Rookie", state.User.Name)
}
