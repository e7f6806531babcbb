package service

import (
	"math"
	"sort"

	"github.com/typemnm/Mornoningo/internal/models"
	"github.com/typemnm/Mornoningo/pkg/clock"
)

// DefaultWrongRate is assumed for a document with no answered questions.
const DefaultWrongRate = 0.5

// RescheduleResult describes what RescheduleAfterSession changed.
type RescheduleResult struct {
	DocumentID string          `json:"documentId"`
	WrongRate  float64         `json:"wrongRate"`
	Priority   int             `json:"priority"`
	Updated    int             `json:"updated"`
	Created    []models.Review `json:"created"`
}

// StageRecommendation is the suggested review for one ladder stage.
type StageRecommendation struct {
	Stage         int            `json:"stage"`
	OffsetDays    int            `json:"offsetDays"`
	Review        *models.Review `json:"review,omitempty"`
	DocumentTitle string         `json:"documentTitle,omitempty"`
	DueToday      bool           `json:"dueToday"`
}

// ReviewScheduler computes due reviews and reschedules them from quiz performance.
type ReviewScheduler struct {
	ids IDGenerator
}

// NewReviewScheduler constructs a scheduler. A nil generator defaults to UUID ids.
func NewReviewScheduler(ids IDGenerator) *ReviewScheduler {
	if ids == nil {
		ids = NewUUIDGenerator()
	}
	return &ReviewScheduler{ids: ids}
}

// PriorityFor maps a wrong rate in [0,1] onto a priority in [1,4].
func PriorityFor(wrongRate float64) int {
	return models.MinPriority + int(math.Round(clampRate(wrongRate)*3))
}

// WrongRate returns 1 - correct/total over the document's lifetime, or DefaultWrongRate when
// nothing was answered yet.
func WrongRate(doc *models.Document) float64 {
	if doc == nil || doc.QuizStats.Total <= 0 {
		return DefaultWrongRate
	}
	return clampRate(1 - float64(doc.QuizStats.Correct)/float64(doc.QuizStats.Total))
}

// DueReviews returns reviews with dueDate <= today, highest priority first. Equal priorities
// keep their stored order.
func DueReviews(state *models.StudyState, today clock.Date) []models.Review {
	due := make([]models.Review, 0)
	for _, r := range state.Reviews {
		if r.IsDue(today) {
			due = append(due, r)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].Priority > due[j].Priority })
	return due
}

// RescheduleAfterSession reprioritises every review of the document dated today or later and
// appends one new review per ladder stage counted from today. Earlier reviews are never
// replaced, so the backlog grows with each completed session.
func (s *ReviewScheduler) RescheduleAfterSession(state *models.StudyState, documentID string, wrongRate float64, today clock.Date) RescheduleResult {
	rate := clampRate(wrongRate)
	priority := PriorityFor(rate)
	result := RescheduleResult{DocumentID: documentID, WrongRate: rate, Priority: priority}

	for i := range state.Reviews {
		r := &state.Reviews[i]
		if r.DocumentID == documentID && !r.DueDate.Before(today) {
			r.Priority = priority
			result.Updated++
		}
	}

	result.Created = s.appendLadder(state, documentID, today, priority)
	return result
}

// SeedInitialReviews schedules the four ladder stages from base at minimum priority.
func (s *ReviewScheduler) SeedInitialReviews(state *models.StudyState, documentID string, base clock.Date) []models.Review {
	return s.appendLadder(state, documentID, base, models.MinPriority)
}

func (s *ReviewScheduler) appendLadder(state *models.StudyState, documentID string, base clock.Date, priority int) []models.Review {
	created := make([]models.Review, 0, len(models.ReviewLadder))
	for idx, offset := range models.ReviewLadder {
		r := models.Review{
			ID:         s.ids("rev"),
			DocumentID: documentID,
			DueDate:    base.AddDays(offset),
			Stage:      idx + 1,
			Priority:   priority,
		}
		state.Reviews = append(state.Reviews, r)
		created = append(created, r)
	}
	return created
}

// Recommendations picks, for each ladder stage, the earliest review due today or later, falling
// back to the earliest overall. Stages without reviews are returned empty.
func Recommendations(state *models.StudyState, today clock.Date) []StageRecommendation {
	out := make([]StageRecommendation, 0, len(models.ReviewLadder))
	for idx, offset := range models.ReviewLadder {
		stage := idx + 1
		rec := StageRecommendation{Stage: stage, OffsetDays: offset}

		var earliest, upcoming *models.Review
		for i := range state.Reviews {
			r := &state.Reviews[i]
			if r.Stage != stage {
				continue
			}
			if earliest == nil || r.DueDate.Before(earliest.DueDate) {
				earliest = r
			}
			if !r.DueDate.Before(today) && (upcoming == nil || r.DueDate.Before(upcoming.DueDate)) {
				upcoming = r
			}
		}
		pick := upcoming
		if pick == nil {
			pick = earliest
		}
		if pick != nil {
			cp := *pick
			rec.Review = &cp
			rec.DueToday = cp.IsDue(today)
			if doc, ok := state.Document(cp.DocumentID); ok {
				rec.DocumentTitle = doc.Title
			}
		}
		out = append(out, rec)
	}
	return out
}

func clampRate(rate float64) float64 {
	if math.IsNaN(rate) || rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}
