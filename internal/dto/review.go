package dto

import (
	"github.com/typemnm/Mornoningo/internal/models"
	"github.com/typemnm/Mornoningo/pkg/clock"
)

// ReviewItem is a review with the title of its document.
type ReviewItem struct {
	models.Review
	DocumentTitle string `json:"documentTitle"`
}

// DueReviewsResponse lists the reviews due on a date, highest priority first.
type DueReviewsResponse struct {
	Date    clock.Date   `json:"date"`
	Count   int          `json:"count"`
	Reviews []ReviewItem `json:"reviews"`
}
