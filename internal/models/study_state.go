package models

import "github.com/typemnm/Mornoningo/pkg/clock"

// CurrentSchemaVersion is the persisted StudyState layout version.
const CurrentSchemaVersion = 1

// DefaultUserID identifies the local learner on the leaderboard.
const DefaultUserID = "user_me"

// StudyState is the whole persisted aggregate for one learner.
type StudyState struct {
	SchemaVersion    int                `json:"schemaVersion"`
	User             User               `json:"user"`
	Docs             []Document         `json:"docs"`
	Reviews          []Review           `json:"reviews"`
	QuizSessions     []QuizRecord       `json:"quizSessions"`
	LastLoginDate    clock.Date         `json:"lastLoginDate"`
	CurrentUserID    string             `json:"currentUserId"`
	UpcomingExamDate clock.Date         `json:"upcomingExamDate"`
	Leaderboard      []LeaderboardEntry `json:"leaderboard"`
}

// Document returns a pointer into Docs for id.
func (s *StudyState) Document(id string) (*Document, bool) {
	for i := range s.Docs {
		if s.Docs[i].ID == id {
			return &s.Docs[i], true
		}
	}
	return nil, false
}

// ReviewsFor returns copies of the reviews attached to documentID.
func (s *StudyState) ReviewsFor(documentID string) []Review {
	out := make([]Review, 0, len(ReviewLadder))
	for _, r := range s.Reviews {
		if r.DocumentID == documentID {
			out = append(out, r)
		}
	}
	return out
}

// RemoveDocument deletes the document and every review referencing it.
func (s *StudyState) RemoveDocument(id string) (Document, int, bool) {
	idx := -1
	for i := range s.Docs {
		if s.Docs[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Document{}, 0, false
	}
	removed := s.Docs[idx]
	s.Docs = append(s.Docs[:idx], s.Docs[idx+1:]...)

	kept := s.Reviews[:0]
	dropped := 0
	for _, r := range s.Reviews {
		if r.DocumentID == id {
			dropped++
			continue
		}
		kept = append(kept, r)
	}
	s.Reviews = kept
	return removed, dropped, true
}

// Clone returns a deep copy that shares no slices with s.
func (s *StudyState) Clone() *StudyState {
	if s == nil {
		return nil
	}
	out := *s
	out.Docs = make([]Document, len(s.Docs))
	for i, d := range s.Docs {
		out.Docs[i] = d.clone()
	}
	out.Reviews = append([]Review(nil), s.Reviews...)
	out.QuizSessions = append([]QuizRecord(nil), s.QuizSessions...)
	out.Leaderboard = append([]LeaderboardEntry(nil), s.Leaderboard...)
	if s.Reviews != nil && out.Reviews == nil {
		out.Reviews = []Review{}
	}
	if s.QuizSessions != nil && out.QuizSessions == nil {
		out.QuizSessions = []QuizRecord{}
	}
	if s.Leaderboard != nil && out.Leaderboard == nil {
		out.Leaderboard = []LeaderboardEntry{}
	}
	return &out
}

func (d Document) clone() Document {
	if d.PreloadedQuiz == nil {
		return d
	}
	qs := make([]Question, len(d.PreloadedQuiz))
	for i, q := range d.PreloadedQuiz {
		q.Options = append([]string(nil), q.Options...)
		qs[i] = q
	}
	d.PreloadedQuiz = qs
	return d
}
