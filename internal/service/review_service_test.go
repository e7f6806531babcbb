package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewServiceDue(t *testing.T) {
	env := newTestEnv(t, testState())
	svc := NewReviewService(env.study)

	resp, err := svc.Due(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, testToday, resp.Date)
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "Algorithms.pdf", resp.Reviews[0].DocumentTitle)

	resp, err = svc.Due(context.Background(), testToday.AddDays(4))
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Count)
}

func TestReviewServiceRecommendations(t *testing.T) {
	env := newTestEnv(t, testState())
	recs, err := NewReviewService(env.study).Recommendations(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 4)
	require.NotNil(t, recs[1].Review)
	assert.Equal(t, "rev_today", recs[1].Review.ID)
	assert.True(t, recs[1].DueToday)
	assert.Nil(t, recs[3].Review)
}
