package service

import (
	"context"

	"github.com/typemnm/Mornoningo/internal/dto"
	"github.com/typemnm/Mornoningo/internal/models"
	"github.com/typemnm/Mornoningo/pkg/clock"
)

// ReviewService answers read-only queries over the review schedule.
type ReviewService struct {
	study *StudyService
}

// NewReviewService constructs a ReviewService.
func NewReviewService(study *StudyService) *ReviewService {
	return &ReviewService{study: study}
}

// Due lists the reviews due on date, or today when date is zero.
func (s *ReviewService) Due(ctx context.Context, date clock.Date) (*dto.DueReviewsResponse, error) {
	if date.IsZero() {
		date = s.study.Today()
	}
	resp := &dto.DueReviewsResponse{Date: date, Reviews: []dto.ReviewItem{}}
	err := s.study.View(func(state *models.StudyState) error {
		for _, r := range DueReviews(state, date) {
			item := dto.ReviewItem{Review: r}
			if doc, ok := state.Document(r.DocumentID); ok {
				item.DocumentTitle = doc.Title
			}
			resp.Reviews = append(resp.Reviews, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	resp.Count = len(resp.Reviews)
	return resp, nil
}

// Recommendations returns one suggested review per ladder stage.
func (s *ReviewService) Recommendations(ctx context.Context) ([]StageRecommendation, error) {
	var out []StageRecommendation
	today := s.study.Today()
	err := s.study.View(func(state *models.StudyState) error {
		out = Recommendations(state, today)
		return nil
	})
	return out, err
}

// Reviews lists every review of one document in stored order.
func (s *ReviewService) Reviews(ctx context.Context, documentID string) ([]models.Review, error) {
	var out []models.Review
	err := s.study.View(func(state *models.StudyState) error {
		out = state.ReviewsFor(documentID)
		return nil
	})
	return out, err
}
