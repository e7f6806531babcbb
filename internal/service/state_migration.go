package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/typemnm/Mornoningo/internal/models"
	"github.com/typemnm/Mornoningo/pkg/clock"
)

// MigrateState upgrades a loaded state to models.CurrentSchemaVersion in place and fills every
// field the current code relies on. It is applied once, right after load.
func MigrateState(state *models.StudyState, today clock.Date) {
	if state.SchemaVersion < 1 {
		migrateV0(state, today)
	}
	state.SchemaVersion = models.CurrentSchemaVersion
}

// migrateV0 handles the schemaless layout written before versioning existed.
func migrateV0(state *models.StudyState, today clock.Date) {
	if state.CurrentUserID == "" {
		state.CurrentUserID = models.DefaultUserID
	}
	if state.UpcomingExamDate.IsZero() {
		state.UpcomingExamDate = today.AddDays(30)
	}
	if state.LastLoginDate.IsZero() {
		state.LastLoginDate = today
	}
	normalizeUser(&state.User)

	if state.Docs == nil {
		state.Docs = []models.Document{}
	}
	known := make(map[string]struct{}, len(state.Docs))
	for i := range state.Docs {
		normalizeDocument(&state.Docs[i], today)
		known[state.Docs[i].ID] = struct{}{}
	}

	reviews := make([]models.Review, 0, len(state.Reviews))
	for i, r := range state.Reviews {
		if _, ok := known[r.DocumentID]; !ok {
			continue
		}
		if r.ID == "" {
			r.ID = fmt.Sprintf("rev_%s_legacy_%d", r.DocumentID, i)
		}
		r.Stage = clampInt(r.Stage, 1, len(models.ReviewLadder))
		r.Priority = clampInt(r.Priority, models.MinPriority, models.MaxPriority)
		reviews = append(reviews, r)
	}
	state.Reviews = reviews

	if state.QuizSessions == nil {
		state.QuizSessions = []models.QuizRecord{}
	}

	if len(state.Leaderboard) == 0 {
		state.Leaderboard = fallbackLeaderboard(state)
	}
	state.Leaderboard = seedLeaderboard(state.Leaderboard, state.CurrentUserID, state.User.Name)
}

func normalizeUser(u *models.User) {
	u.Streak = clampInt(u.Streak, 0, models.MaxStreak)
	if u.TotalAnswers < 0 {
		u.TotalAnswers = 0
	}
	u.CorrectAnswers = clampInt(u.CorrectAnswers, 0, u.TotalAnswers)
	if u.TotalMinutes < 0 {
		u.TotalMinutes = 0
	}
	if u.Level <= 0 {
		u.Level = 1
	}
}

func normalizeDocument(d *models.Document, today clock.Date) {
	if d.Type == "" {
		d.Type = models.SourceType(d.Title)
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = today
	}
	d.Progress = clampInt(d.Progress, 0, models.MaxProgress)
	d.SetExtractionProgress(d.ExtractionProgress)

	quiz := make([]models.Question, 0, len(d.PreloadedQuiz))
	for _, q := range d.PreloadedQuiz {
		if len(q.Options) < 2 {
			continue
		}
		q.Correct = clampInt(q.Correct, 0, len(q.Options)-1)
		quiz = append(quiz, q)
	}
	d.PreloadedQuiz = quiz

	if !d.ExtractionStatus.Valid() {
		if strings.TrimSpace(d.Notes) != "" || d.HasCachedQuiz() {
			d.ExtractionStatus = models.ExtractionReady
		} else {
			d.ExtractionStatus = models.ExtractionPending
		}
	}
}

// recoverInterrupted resets documents left mid-generation by a previous process.
func recoverInterrupted(state *models.StudyState) {
	for i := range state.Docs {
		if state.Docs[i].ExtractionStatus == models.ExtractionProcessing {
			settleInterrupted(&state.Docs[i])
		}
	}
}

// settleInterrupted marks a document whose generation will never complete.
func settleInterrupted(d *models.Document) {
	if d.HasCachedQuiz() {
		d.ExtractionStatus = models.ExtractionReady
		d.ExtractionProgress = models.MaxProgress
		return
	}
	d.ExtractionStatus = models.ExtractionPending
	d.ExtractionProgress = 0
}

func fallbackLeaderboard(state *models.StudyState) []models.LeaderboardEntry {
	base := 1000 + state.User.CorrectAnswers*5
	name := state.User.Name
	if name == "" {
		name = "Me"
	}
	return []models.LeaderboardEntry{
		{ID: state.CurrentUserID, Name: name, Score: base, Streak: state.User.Streak},
		{ID: "u2", Name: "AI Explorer", Score: base - 30, Streak: 5},
		{ID: "u3", Name: "Algorithm Artisan", Score: base - 60, Streak: 2},
	}
}

// seedLeaderboard ensures the champion row exists, drops blank and duplicate ids, keeps the
// learner's display name in sync and orders by score descending.
func seedLeaderboard(entries []models.LeaderboardEntry, userID, userName string) []models.LeaderboardEntry {
	hasBoss := false
	for _, e := range entries {
		if e.ID == bossID {
			hasBoss = true
			break
		}
	}
	if !hasBoss {
		entries = append(entries, models.LeaderboardEntry{ID: bossID, Name: bossName, Score: bossScore, Streak: 10})
	}

	seen := make(map[string]struct{}, len(entries))
	out := make([]models.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		if e.ID == userID && userName != "" {
			e.Name = userName
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
