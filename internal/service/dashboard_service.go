package service

import (
	"context"
	"math"
	"sort"

	"github.com/typemnm/Mornoningo/internal/models"
	"github.com/typemnm/Mornoningo/pkg/clock"
)

// recentQuizLimit caps the history shown on the profile.
const recentQuizLimit = 5

// HomeSummary feeds the landing screen.
type HomeSummary struct {
	UserName            string           `json:"userName"`
	Today               clock.Date       `json:"today"`
	DueCount            int              `json:"dueCount"`
	DueReviews          []models.Review  `json:"dueReviews"`
	AverageProgress     int              `json:"averageProgress"`
	Streak              int              `json:"streak"`
	RecommendedDocument *models.Document `json:"recommendedDocument,omitempty"`
	UpcomingExamDate    clock.Date       `json:"upcomingExamDate,omitempty"`
	DaysUntilExam       *int             `json:"daysUntilExam,omitempty"`
	BestRankDiff        int              `json:"bestRankDiff"`
}

// Badge is an achievement on the profile.
type Badge struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Earned bool   `json:"earned"`
}

// ProfileSummary aggregates the learner's counters.
type ProfileSummary struct {
	Name           string              `json:"name"`
	Level          int                 `json:"level"`
	Streak         int                 `json:"streak"`
	StudyHours     int                 `json:"studyHours"`
	StudyMinutes   int                 `json:"studyMinutes"`
	TotalAnswers   int                 `json:"totalAnswers"`
	CorrectAnswers int                 `json:"correctAnswers"`
	Accuracy       int                 `json:"accuracy"`
	BestRankDiff   int                 `json:"bestRankDiff"`
	Badges         []Badge             `json:"badges"`
	RecentQuizzes  []models.QuizRecord `json:"recentQuizzes"`
}

// RankingEntry is one leaderboard row with its position.
type RankingEntry struct {
	Rank          int    `json:"rank"`
	ID            string `json:"id"`
	Name          string `json:"name"`
	Score         int    `json:"score"`
	Streak        int    `json:"streak"`
	Me            bool   `json:"me"`
	Challengeable bool   `json:"challengeable"`
}

// RankingSummary is the sorted leaderboard.
type RankingSummary struct {
	Entries      []RankingEntry `json:"entries"`
	MyRank       int            `json:"myRank,omitempty"`
	BestRankDiff int            `json:"bestRankDiff"`
}

type badgeRule struct {
	id    string
	label string
	earn  func(models.User) bool
}

var badgeRules = []badgeRule{
	{"first_10", "First 10 questions", func(u models.User) bool { return u.TotalAnswers >= 10 }},
	{"quiz_artisan", "Quiz artisan", func(u models.User) bool { return u.TotalAnswers >= 30 }},
	{"streak_3", "3-day streak", func(u models.User) bool { return u.Streak >= 3 }},
	{"answer_king", "Answer king", func(u models.User) bool { return u.CorrectAnswers >= 20 }},
}

// DashboardService derives read-only summaries from the study state.
type DashboardService struct {
	study *StudyService
}

// NewDashboardService constructs the service.
func NewDashboardService(study *StudyService) *DashboardService {
	return &DashboardService{study: study}
}

// Home returns the landing summary for today.
func (s *DashboardService) Home(ctx context.Context) (*HomeSummary, error) {
	today := s.study.Today()
	out := &HomeSummary{Today: today}
	err := s.study.View(func(state *models.StudyState) error {
		out.UserName = state.User.Name
		out.DueReviews = DueReviews(state, today)
		out.DueCount = len(out.DueReviews)
		out.Streak = state.User.Streak
		out.BestRankDiff = state.User.BestRankDiff

		if len(state.Docs) > 0 {
			sum := 0
			lowest := 0
			for i, d := range state.Docs {
				sum += d.Progress
				if d.Progress < state.Docs[lowest].Progress {
					lowest = i
				}
			}
			out.AverageProgress = int(math.Round(float64(sum) / float64(len(state.Docs))))
			rec := state.Docs[lowest]
			rec.PreloadedQuiz = nil
			out.RecommendedDocument = &rec
		}

		if !state.UpcomingExamDate.IsZero() {
			out.UpcomingExamDate = state.UpcomingExamDate
			days := today.DaysUntil(state.UpcomingExamDate)
			out.DaysUntilExam = &days
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Profile returns the learner's totals, badges and latest finished quizzes.
func (s *DashboardService) Profile(ctx context.Context) (*ProfileSummary, error) {
	out := &ProfileSummary{}
	err := s.study.View(func(state *models.StudyState) error {
		u := state.User
		out.Name = u.Name
		out.Level = u.Level
		out.Streak = u.Streak
		out.StudyHours = u.TotalMinutes / 60
		out.StudyMinutes = u.TotalMinutes % 60
		out.TotalAnswers = u.TotalAnswers
		out.CorrectAnswers = u.CorrectAnswers
		out.Accuracy = u.Accuracy()
		out.BestRankDiff = u.BestRankDiff

		out.Badges = make([]Badge, 0, len(badgeRules))
		for _, rule := range badgeRules {
			out.Badges = append(out.Badges, Badge{ID: rule.id, Label: rule.label, Earned: rule.earn(u)})
		}

		history := state.QuizSessions
		start := len(history) - recentQuizLimit
		if start < 0 {
			start = 0
		}
		out.RecentQuizzes = make([]models.QuizRecord, 0, len(history)-start)
		for i := len(history) - 1; i >= start; i-- {
			out.RecentQuizzes = append(out.RecentQuizzes, history[i])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Ranking returns the leaderboard sorted by score. Entries ranked above the learner cannot be
// challenged, nor can the learner's own row.
func (s *DashboardService) Ranking(ctx context.Context) (*RankingSummary, error) {
	out := &RankingSummary{}
	err := s.study.View(func(state *models.StudyState) error {
		entries := append([]models.LeaderboardEntry(nil), state.Leaderboard...)
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })

		me := state.CurrentUserID
		if me == "" {
			me = models.DefaultUserID
		}
		for i, e := range entries {
			if e.ID == me {
				out.MyRank = i + 1
				break
			}
		}

		out.Entries = make([]RankingEntry, 0, len(entries))
		for i, e := range entries {
			rank := i + 1
			isMe := e.ID == me
			higher := out.MyRank > 0 && rank < out.MyRank
			out.Entries = append(out.Entries, RankingEntry{
				Rank:          rank,
				ID:            e.ID,
				Name:          e.Name,
				Score:         e.Score,
				Streak:        e.Streak,
				Me:            isMe,
				Challengeable: !isMe && !higher,
			})
		}
		out.BestRankDiff = state.User.BestRankDiff
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
