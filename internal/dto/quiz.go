package dto

import "github.com/typemnm/Mornoningo/internal/models"

// PrepareQuizRequest asks for a question set for one document.
type PrepareQuizRequest struct {
	DocumentID      string `json:"documentId" binding:"required"`
	ForceRegenerate bool   `json:"forceRegenerate"`
	CacheOnly       bool   `json:"cacheOnly"`
}

// AnswerRequest submits the chosen option of the current question.
type AnswerRequest struct {
	OptionIndex *int `json:"optionIndex"`
}

// QuestionView is a question without its answer.
type QuestionView struct {
	Q       string   `json:"q"`
	Options []string `json:"opts"`
}

// QuizView is the client-facing quiz session. The pending question never carries its answer.
type QuizView struct {
	DocumentID   string           `json:"documentId,omitempty"`
	Title        string           `json:"title,omitempty"`
	Phase        models.QuizPhase `json:"phase"`
	CurrentIndex int              `json:"currentIndex"`
	Total        int              `json:"total"`
	Score        int              `json:"score"`
	CorrectCount int              `json:"correctCount"`
	Started      bool             `json:"started"`
	Finished     bool             `json:"finished"`
	Question     *QuestionView    `json:"question,omitempty"`
}

// NewQuizView projects a session for clients.
func NewQuizView(s models.QuizSession) QuizView {
	view := QuizView{
		DocumentID:   s.DocumentID,
		Title:        s.Title,
		Phase:        s.Phase,
		CurrentIndex: s.CurrentIndex,
		Total:        len(s.Questions),
		Score:        s.Score,
		CorrectCount: s.CorrectCount,
		Started:      s.Started,
		Finished:     s.Finished,
	}
	if q, ok := s.CurrentQuestion(); ok {
		view.Question = &QuestionView{Q: q.Q, Options: append([]string(nil), q.Options...)}
	}
	return view
}
