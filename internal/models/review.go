package models

import "github.com/typemnm/Mornoningo/pkg/clock"

// ReviewLadder holds the day offset of each stage; stage N uses ReviewLadder[N-1].
var ReviewLadder = [...]int{1, 3, 7, 14}

const (
	MinPriority = 1
	MaxPriority = 4
)

// Review is a scheduled study reminder for a document.
type Review struct {
	ID         string     `json:"id"`
	DocumentID string     `json:"docId"`
	DueDate    clock.Date `json:"dueDate"`
	Stage      int        `json:"stage"`
	Priority   int        `json:"priority"`
}

// StageOffset returns the day offset for stage, or 0 when the stage is off the ladder.
func StageOffset(stage int) int {
	if stage < 1 || stage > len(ReviewLadder) {
		return 0
	}
	return ReviewLadder[stage-1]
}

// IsDue reports whether the review's date has arrived by today.
func (r Review) IsDue(today clock.Date) bool {
	return !r.DueDate.After(today)
}
