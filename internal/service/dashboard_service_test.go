package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typemnm/Mornoningo/internal/models"
)

func TestHomeSummary(t *testing.T) {
	env := newTestEnv(t, NewSampleState(testToday))
	home, err := NewDashboardService(env.study).Home(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Data Rookie", home.UserName)
	assert.Equal(t, 1, home.DueCount)
	assert.Equal(t, 67, home.AverageProgress)
	assert.Equal(t, 3, home.Streak)
	require.NotNil(t, home.RecommendedDocument)
	assert.Equal(t, "doc_ds", home.RecommendedDocument.ID)
	require.NotNil(t, home.DaysUntilExam)
	assert.Equal(t, 30, *home.DaysUntilExam)
	assert.Equal(t, 23, home.BestRankDiff)
}

func TestHomeSummaryWithoutDocuments(t *testing.T) {
	state := testState()
	state.Docs = nil
	state.Reviews = nil
	env := newTestEnv(t, state)

	home, err := NewDashboardService(env.study).Home(context.Background())
	require.NoError(t, err)
	assert.Zero(t, home.AverageProgress)
	assert.Nil(t, home.RecommendedDocument)
	assert.Zero(t, home.DueCount)
}

func TestProfileBadgesAndHistory(t *testing.T) {
	state := NewSampleState(testToday)
	for i := 0; i < 7; i++ {
		state.QuizSessions = append(state.QuizSessions, models.QuizRecord{
			ID:         "quiz_" + string(rune('a'+i)),
			Score:      i * 10,
			FinishedAt: time.Date(2024, 5, 1+i, 9, 0, 0, 0, time.UTC),
		})
	}
	env := newTestEnv(t, state)

	profile, err := NewDashboardService(env.study).Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 13, profile.StudyHours)
	assert.Equal(t, 22, profile.StudyMinutes)
	assert.Equal(t, 70, profile.Accuracy)

	earned := map[string]bool{}
	for _, b := range profile.Badges {
		earned[b.ID] = b.Earned
	}
	assert.Equal(t, map[string]bool{"first_10": true, "quiz_artisan": true, "streak_3": true, "answer_king": true}, earned)

	require.Len(t, profile.RecentQuizzes, recentQuizLimit)
	assert.Equal(t, "quiz_g", profile.RecentQuizzes[0].ID)
	assert.Equal(t, "quiz_c", profile.RecentQuizzes[4].ID)
}

func TestRanking(t *testing.T) {
	env := newTestEnv(t, NewSampleState(testToday))
	ranking, err := NewDashboardService(env.study).Ranking(context.Background())
	require.NoError(t, err)

	require.Len(t, ranking.Entries, 6)
	assert.Equal(t, 2, ranking.MyRank)
	assert.Equal(t, bossID, ranking.Entries[0].ID)
	assert.False(t, ranking.Entries[0].Challengeable)
	assert.True(t, ranking.Entries[1].Me)
	assert.False(t, ranking.Entries[1].Challengeable)
	assert.True(t, ranking.Entries[2].Challengeable)
	for i, e := range ranking.Entries {
		assert.Equal(t, i+1, e.Rank)
	}
}
