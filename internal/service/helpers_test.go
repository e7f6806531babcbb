package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/typemnm/Mornoningo/internal/models"
	"github.com/typemnm/Mornoningo/pkg/clock"
)

const testToday = clock.Date("2024-05-10")

type memoryRepo struct {
	mu      sync.Mutex
	state   *models.StudyState
	loadErr error
	saveErr error
	saves   int
}

func (m *memoryRepo) Load(ctx context.Context) (*models.StudyState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.state == nil {
		return nil, nil
	}
	return m.state.Clone(), nil
}

func (m *memoryRepo) Save(ctx context.Context, state *models.StudyState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.state = state.Clone()
	m.saves++
	return nil
}

func (m *memoryRepo) failSaves(err error) {
	m.mu.Lock()
	m.saveErr = err
	m.mu.Unlock()
}

func (m *memoryRepo) saved() *models.StudyState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

func sequentialIDs() IDGenerator {
	var mu sync.Mutex
	n := 0
	return func(prefix string) string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s_%d", prefix, n)
	}
}

// testState holds one document titled "Algorithms.pdf" with no notes and no cached questions.
func testState() *models.StudyState {
	return &models.StudyState{
		SchemaVersion: models.CurrentSchemaVersion,
		User:          models.User{Name: "Tester", Level: 1, Streak: 2},
		Docs: []models.Document{{
			ID:               "doc_alg",
			Title:            "Algorithms.pdf",
			Type:             "pdf",
			CreatedAt:        testToday.AddDays(-3),
			ExtractionStatus: models.ExtractionPending,
			PreloadedQuiz:    []models.Question{},
		}},
		Reviews: []models.Review{
			{ID: "rev_old", DocumentID: "doc_alg", DueDate: testToday.AddDays(-2), Stage: 1, Priority: 1},
			{ID: "rev_today", DocumentID: "doc_alg", DueDate: testToday, Stage: 2, Priority: 1},
			{ID: "rev_later", DocumentID: "doc_alg", DueDate: testToday.AddDays(4), Stage: 3, Priority: 1},
		},
		QuizSessions:     []models.QuizRecord{},
		LastLoginDate:    testToday,
		CurrentUserID:    models.DefaultUserID,
		UpcomingExamDate: testToday.AddDays(30),
		Leaderboard:      []models.LeaderboardEntry{{ID: models.DefaultUserID, Name: "Tester", Score: 100}},
	}
}

type testEnv struct {
	repo  *memoryRepo
	bus   *EventBus
	study *StudyService
}

func newTestEnv(t *testing.T, state *models.StudyState) *testEnv {
	t.Helper()
	repo := &memoryRepo{state: state}
	bus := NewEventBus(256, zap.NewNop())
	study := NewStudyService(repo, clock.Fixed(testToday), bus, NewMetricsService(), zap.NewNop())
	require.NoError(t, study.Load(context.Background()))
	return &testEnv{repo: repo, bus: bus, study: study}
}

func (e *testEnv) doc(t *testing.T, id string) models.Document {
	t.Helper()
	var out models.Document
	require.NoError(t, e.study.View(func(state *models.StudyState) error {
		d, ok := state.Document(id)
		if !ok {
			return errors.New("missing document " + id)
		}
		out = *d
		return nil
	}))
	return out
}

func drain(ch <-chan Event) []Event {
	var out []Event
	for {
		select {
		case evt := <-ch:
			out = append(out, evt)
		case <-time.After(20 * time.Millisecond):
			return out
		}
	}
}

func eventTypes(events []Event) []EventType {
	out := make([]EventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func intPtr(v int) *int { return &v }
