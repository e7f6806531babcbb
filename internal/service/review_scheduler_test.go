package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typemnm/Mornoningo/internal/models"
)

func TestDueReviewsFiltersAndSortsStably(t *testing.T) {
	state := &models.StudyState{Reviews: []models.Review{
		{ID: "a", DueDate: "2024-05-09", Priority: 2},
		{ID: "b", DueDate: "2024-05-10", Priority: 4},
		{ID: "c", DueDate: "2024-05-11", Priority: 4},
		{ID: "d", DueDate: "2024-05-01", Priority: 2},
		{ID: "e", DueDate: "2024-05-10", Priority: 1},
	}}

	due := DueReviews(state, "2024-05-10")
	ids := make([]string, 0, len(due))
	for _, r := range due {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"b", "a", "d", "e"}, ids)
}

func TestPriorityFor(t *testing.T) {
	cases := map[float64]int{0: 1, 0.1: 1, 0.2: 2, 0.5: 3, 0.84: 4, 1: 4, -3: 1, 7: 4}
	for rate, want := range cases {
		assert.Equal(t, want, PriorityFor(rate), "rate %v", rate)
	}
}

func TestWrongRate(t *testing.T) {
	assert.Equal(t, DefaultWrongRate, WrongRate(&models.Document{}))
	assert.Equal(t, DefaultWrongRate, WrongRate(nil))
	assert.InDelta(t, 0.25, WrongRate(&models.Document{QuizStats: models.QuizStats{Correct: 3, Total: 4}}), 1e-9)
}

func TestRescheduleAfterSessionAllWrong(t *testing.T) {
	state := testState()
	sched := NewReviewScheduler(sequentialIDs())

	res := sched.RescheduleAfterSession(state, "doc_alg", 1.0, testToday)

	assert.Equal(t, 4, res.Priority)
	assert.Equal(t, 2, res.Updated)
	require.Len(t, res.Created, 4)
	require.Len(t, state.Reviews, 7)

	byID := map[string]models.Review{}
	for _, r := range state.Reviews {
		byID[r.ID] = r
	}
	assert.Equal(t, 1, byID["rev_old"].Priority, "past reviews keep their priority")
	assert.Equal(t, 4, byID["rev_today"].Priority)
	assert.Equal(t, 4, byID["rev_later"].Priority)

	for i, r := range res.Created {
		assert.Equal(t, i+1, r.Stage)
		assert.Equal(t, testToday.AddDays(models.ReviewLadder[i]), r.DueDate)
		assert.Equal(t, 4, r.Priority)
		assert.Equal(t, "doc_alg", r.DocumentID)
	}
}

func TestRescheduleAfterSessionAllCorrect(t *testing.T) {
	state := testState()
	res := NewReviewScheduler(sequentialIDs()).RescheduleAfterSession(state, "doc_alg", 0, testToday)

	assert.Equal(t, 1, res.Priority)
	for _, r := range state.Reviews {
		assert.Equal(t, 1, r.Priority)
	}
	assert.Equal(t, []string{"2024-05-11", "2024-05-13", "2024-05-17", "2024-05-24"}, []string{
		res.Created[0].DueDate.String(), res.Created[1].DueDate.String(),
		res.Created[2].DueDate.String(), res.Created[3].DueDate.String(),
	})
}

func TestRescheduleLeavesOtherDocumentsAlone(t *testing.T) {
	state := testState()
	state.Reviews = append(state.Reviews, models.Review{ID: "other", DocumentID: "doc_x", DueDate: testToday, Stage: 1, Priority: 2})

	NewReviewScheduler(sequentialIDs()).RescheduleAfterSession(state, "doc_alg", 1, testToday)

	for _, r := range state.Reviews {
		if r.ID == "other" {
			assert.Equal(t, 2, r.Priority)
		}
	}
}

func TestSeedInitialReviews(t *testing.T) {
	state := &models.StudyState{}
	created := NewReviewScheduler(sequentialIDs()).SeedInitialReviews(state, "doc_new", testToday)

	require.Len(t, created, 4)
	assert.Equal(t, created, state.Reviews)
	assert.Equal(t, "rev_1", created[0].ID)
	for i, r := range created {
		assert.Equal(t, models.MinPriority, r.Priority)
		assert.Equal(t, i+1, r.Stage)
		assert.Equal(t, models.StageOffset(r.Stage), testToday.DaysUntil(r.DueDate))
	}
}

func TestRecommendationsPreferUpcoming(t *testing.T) {
	state := testState()
	recs := Recommendations(state, testToday)
	require.Len(t, recs, 4)

	require.NotNil(t, recs[0].Review)
	assert.Equal(t, "rev_old", recs[0].Review.ID, "falls back to the earliest when nothing is upcoming")
	assert.True(t, recs[0].DueToday)
	assert.Equal(t, "Algorithms.pdf", recs[0].DocumentTitle)

	require.NotNil(t, recs[1].Review)
	assert.Equal(t, "rev_today", recs[1].Review.ID)

	require.NotNil(t, recs[2].Review)
	assert.False(t, recs[2].DueToday)

	assert.Nil(t, recs[3].Review)
	assert.Equal(t, 14, recs[3].OffsetDays)
}
