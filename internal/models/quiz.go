package models

import "time"

// Question is an immutable multiple-choice item.
type Question struct {
	Q           string   `json:"q"`
	Options     []string `json:"opts"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

// Valid reports whether the question has at least two options and an in-range answer.
func (q Question) Valid() bool {
	return len(q.Options) >= 2 && q.Correct >= 0 && q.Correct < len(q.Options)
}

// QuizPhase is the lifecycle position of the quiz session.
type QuizPhase string

const (
	PhaseIdle      QuizPhase = "idle"
	PhasePreparing QuizPhase = "preparing"
	PhaseReady     QuizPhase = "ready"
	PhaseActive    QuizPhase = "active"
	PhaseFinished  QuizPhase = "finished"
)

// Points awarded per correct answer.
const PointsPerCorrect = 10

// QuizSession is the single transient quiz attempt. It is never persisted.
type QuizSession struct {
	DocumentID   string     `json:"documentId"`
	Title        string     `json:"title"`
	Questions    []Question `json:"questions"`
	CurrentIndex int        `json:"currentIndex"`
	Score        int        `json:"score"`
	CorrectCount int        `json:"correctCount"`
	Started      bool       `json:"started"`
	Finished     bool       `json:"finished"`
	Phase        QuizPhase  `json:"phase"`
}

// CurrentQuestion returns the question awaiting an answer.
func (s *QuizSession) CurrentQuestion() (Question, bool) {
	if s == nil || s.Phase != PhaseActive || s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// QuizRecord is a finished session kept in the study history.
type QuizRecord struct {
	ID           string    `json:"id"`
	DocumentID   string    `json:"docId"`
	Title        string    `json:"title"`
	Score        int       `json:"score"`
	CorrectCount int       `json:"correctCount"`
	Total        int       `json:"total"`
	FinishedAt   time.Time `json:"finishedAt"`
}
