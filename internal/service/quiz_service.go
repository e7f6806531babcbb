package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/typemnm/Mornoningo/internal/models"
	"github.com/typemnm/Mornoningo/pkg/clock"
	appErrors "github.com/typemnm/Mornoningo/pkg/errors"
)

// Progress steps reported while a question set is being prepared.
const (
	stepPrepare  = 15
	stepExtract  = 45
	stepGenerate = 75
	stepFinalize = 90
)

// quickQuizSize caps the question count of a random quick quiz.
const quickQuizSize = 5

// Session outcomes recorded in metrics.
const (
	outcomeFinished  = "finished"
	outcomeAbandoned = "abandoned"
	outcomeDiscarded = "discarded"
)

type sessionRescheduler interface {
	RescheduleAfterSession(state *models.StudyState, documentID string, wrongRate float64, today clock.Date) RescheduleResult
}

// AnswerResult describes the effect of one submitted answer.
type AnswerResult struct {
	Correct      bool               `json:"correct"`
	CorrectIndex int                `json:"correctIndex"`
	Explanation  string             `json:"explanation"`
	Score        int                `json:"score"`
	CorrectCount int                `json:"correctCount"`
	Progress     int                `json:"progress"`
	Finished     bool               `json:"finished"`
	Reschedule   *RescheduleResult  `json:"reschedule,omitempty"`
	Record       *models.QuizRecord `json:"record,omitempty"`
}

// QuizService drives the single quiz session through idle, preparing, ready, active and
// finished. Its mutex may be held while taking the study lock, never the other way round.
type QuizService struct {
	study     *StudyService
	selector  *SourceSelector
	scheduler sessionRescheduler
	metrics   *MetricsService
	ids       IDGenerator
	logger    *zap.Logger

	mu      sync.Mutex
	session *models.QuizSession
	tokens  map[string]uint64
	lastDoc string
	rnd     *rand.Rand
}

// NewQuizService constructs the session state machine and registers it on the document delete
// cascade.
func NewQuizService(study *StudyService, selector *SourceSelector, scheduler sessionRescheduler, metrics *MetricsService, ids IDGenerator, rnd *rand.Rand, logger *zap.Logger) *QuizService {
	if ids == nil {
		ids = NewUUIDGenerator()
	}
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	q := &QuizService{
		study:     study,
		selector:  selector,
		scheduler: scheduler,
		metrics:   metrics,
		ids:       ids,
		logger:    logger,
		tokens:    make(map[string]uint64),
		rnd:       rnd,
	}
	study.OnDocumentDeleted(q.DiscardForDocument)
	return q
}

// Current returns a copy of the session, or an idle session when none exists.
func (q *QuizService) Current() models.QuizSession {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

// LastDocumentID returns the document of the most recently prepared session.
func (q *QuizService) LastDocumentID() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastDoc
}

// Prepare readies a question set for the document. A cached set is reused unless a regeneration
// is forced. Cache-only calls fill the document cache without touching the session and yield to a
// session already preparing the same document. A new session abandons one still preparing.
func (q *QuizService) Prepare(ctx context.Context, documentID string, opts PrepareOptions) (*models.QuizSession, error) {
	q.mu.Lock()
	doc, err := q.document(documentID)
	if err != nil {
		q.mu.Unlock()
		return nil, err
	}

	if opts.CacheOnly && q.preparingLocked(documentID) {
		q.mu.Unlock()
		return nil, nil
	}

	if doc.HasCachedQuiz() && !opts.ForceRegenerate {
		defer q.mu.Unlock()
		if opts.CacheOnly {
			return nil, q.markCached(ctx, doc)
		}
		q.abandonPreparingLocked(ctx)
		q.installLocked(doc, doc.PreloadedQuiz, "cache")
		out := q.snapshotLocked()
		return &out, nil
	}

	source, err := q.selector.Select(doc, opts)
	if err != nil {
		q.mu.Unlock()
		return nil, err
	}

	var owned *models.QuizSession
	if !opts.CacheOnly {
		q.abandonPreparingLocked(ctx)
		owned = &models.QuizSession{DocumentID: doc.ID, Title: doc.Title, Phase: models.PhasePreparing}
		q.session = owned
		q.lastDoc = doc.ID
	}
	q.tokens[documentID]++
	token := q.tokens[documentID]
	err = q.study.Update(ctx, func(state *models.StudyState) ([]Event, error) {
		d, ok := state.Document(documentID)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		d.ExtractionStatus = models.ExtractionProcessing
		d.SetExtractionProgress(stepGenerate)
		return []Event{
			progressEvent(documentID, "prepare", stepPrepare),
			progressEvent(documentID, "extract", stepExtract),
			progressEvent(documentID, "ai", stepGenerate),
		}, nil
	})
	if err != nil {
		q.releaseLocked(owned)
		q.mu.Unlock()
		return nil, err
	}
	q.mu.Unlock()

	start := time.Now()
	set, fetchErr := source.FetchQuestions(ctx, doc)
	if fetchErr == nil && (set == nil || len(set.Questions) == 0) {
		fetchErr = appErrors.Clone(appErrors.ErrAdapterFailure, "question source returned no questions")
	}
	q.metrics.ObserveGeneration(source.Name(), fetchErr, time.Since(start))

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.tokens[documentID] != token || (owned != nil && q.session != owned) {
		q.releaseLocked(owned)
		q.logger.Info("discarding superseded question set", zap.String("document_id", documentID), zap.String("source", source.Name()))
		return nil, appErrors.ErrStaleGeneration
	}
	if fetchErr != nil {
		return nil, q.failLocked(ctx, owned, documentID, source.Name(), fetchErr)
	}

	var prepared models.Document
	err = q.study.Update(ctx, func(state *models.StudyState) ([]Event, error) {
		d, ok := state.Document(documentID)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		d.PreloadedQuiz = append([]models.Question(nil), set.Questions...)
		if set.Notes != "" {
			d.Notes = set.Notes
			d.ConceptsCount = len(d.NoteSections())
		}
		d.ExtractionStatus = models.ExtractionReady
		d.SetExtractionProgress(models.MaxProgress)
		prepared = *d
		return []Event{
			progressEvent(documentID, "finalize", stepFinalize),
			progressEvent(documentID, "done", models.MaxProgress),
		}, nil
	})
	if err != nil {
		q.releaseLocked(owned)
		return nil, err
	}

	q.logger.Info("question set prepared",
		zap.String("document_id", documentID),
		zap.String("source", set.Source),
		zap.Int("questions", len(set.Questions)),
		zap.Bool("cache_only", opts.CacheOnly),
	)
	if opts.CacheOnly {
		return nil, nil
	}
	q.installLocked(prepared, prepared.PreloadedQuiz, set.Source)
	out := q.snapshotLocked()
	return &out, nil
}

// Regenerate forces a fresh question set for the last prepared document, or starts a quick
// random quiz when there is none.
func (q *QuizService) Regenerate(ctx context.Context) (*models.QuizSession, error) {
	last := q.LastDocumentID()
	if last != "" {
		err := q.study.View(func(state *models.StudyState) error {
			if _, ok := state.Document(last); !ok {
				last = ""
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	if last == "" {
		return q.StartRandom(ctx)
	}
	return q.Prepare(ctx, last, PrepareOptions{ForceRegenerate: true})
}

// StartRandom prepares a quick quiz of locally synthesised questions for a random document.
func (q *QuizService) StartRandom(ctx context.Context) (*models.QuizSession, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var doc models.Document
	err := q.study.View(func(state *models.StudyState) error {
		if len(state.Docs) == 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "no documents to quiz on")
		}
		doc = state.Docs[q.rnd.Intn(len(state.Docs))]
		return nil
	})
	if err != nil {
		return nil, err
	}

	local := q.selector.Local()
	if local == nil {
		return nil, appErrors.Clone(appErrors.ErrAdapterFailure, "no local question source configured")
	}
	start := time.Now()
	set, err := local.FetchQuestions(ctx, doc)
	q.metrics.ObserveGeneration(local.Name(), err, time.Since(start))
	if err != nil {
		return nil, err
	}
	questions := set.Questions
	if len(questions) > quickQuizSize {
		questions = questions[:quickQuizSize]
	}
	q.abandonPreparingLocked(ctx)
	q.installLocked(doc, questions, local.Name())
	out := q.snapshotLocked()
	return &out, nil
}

// Open starts the prepared question set from the first question.
func (q *QuizService) Open() (*models.QuizSession, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.session == nil || len(q.session.Questions) == 0 {
		return nil, appErrors.ErrEmptySession
	}
	s := q.session
	s.CurrentIndex = 0
	s.Score = 0
	s.CorrectCount = 0
	s.Started = true
	s.Finished = false
	s.Phase = models.PhaseActive
	q.study.bus.Publish(newEvent(EventSessionOpened, s.DocumentID, map[string]interface{}{
		"questions": len(s.Questions),
	}))
	out := q.snapshotLocked()
	return &out, nil
}

// SubmitAnswer grades the current question and advances. The last answer finishes the session
// and finalises it in the same state mutation.
func (q *QuizService) SubmitAnswer(ctx context.Context, optionIndex *int) (*AnswerResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	question, ok := q.session.CurrentQuestion()
	if !ok || optionIndex == nil {
		return nil, appErrors.ErrNoActiveQuestion
	}
	choice := *optionIndex
	if choice < 0 || choice >= len(question.Options) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "option index out of range")
	}

	s := q.session
	correct := choice == question.Correct
	last := s.CurrentIndex+1 >= len(s.Questions)
	score := s.Score
	correctCount := s.CorrectCount
	if correct {
		score += models.PointsPerCorrect
		correctCount++
	}

	result := &AnswerResult{
		Correct:      correct,
		CorrectIndex: question.Correct,
		Explanation:  question.Explanation,
		Score:        score,
		CorrectCount: correctCount,
		Finished:     last,
	}

	err := q.study.Update(ctx, func(state *models.StudyState) ([]Event, error) {
		doc, found := state.Document(s.DocumentID)
		if !found {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		state.User.TotalAnswers++
		doc.QuizStats.Attempts++
		doc.QuizStats.Total++
		if correct {
			state.User.CorrectAnswers++
			doc.QuizStats.Correct++
			doc.AddProgress(5)
		} else {
			doc.AddProgress(2)
		}
		result.Progress = doc.Progress

		events := []Event{newEvent(EventAnswerSubmitted, doc.ID, map[string]interface{}{
			"index":    s.CurrentIndex,
			"correct":  correct,
			"score":    score,
			"progress": doc.Progress,
		})}
		if !last {
			return events, nil
		}

		today := clock.DateOf(q.study.Now())
		resched := q.scheduler.RescheduleAfterSession(state, doc.ID, WrongRate(doc), today)
		result.Reschedule = &resched

		state.User.TotalMinutes += 3
		state.User.Streak++
		if state.User.Streak > models.MaxStreak {
			state.User.Streak = models.MaxStreak
		}
		record := models.QuizRecord{
			ID:           q.ids("quiz"),
			DocumentID:   doc.ID,
			Title:        s.Title,
			Score:        score,
			CorrectCount: correctCount,
			Total:        len(s.Questions),
			FinishedAt:   q.study.Now().UTC(),
		}
		state.QuizSessions = append(state.QuizSessions, record)
		result.Record = &record

		return append(events,
			newEvent(EventReviewsRescheduled, doc.ID, map[string]interface{}{
				"wrongRate": resched.WrongRate,
				"priority":  resched.Priority,
				"updated":   resched.Updated,
				"created":   len(resched.Created),
			}),
			newEvent(EventSessionFinished, doc.ID, map[string]interface{}{
				"score":        score,
				"correctCount": correctCount,
				"total":        len(s.Questions),
			}),
		), nil
	})
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			q.session = nil
		}
		return nil, err
	}

	q.metrics.RecordAnswer(correct)
	s.Score = score
	s.CorrectCount = correctCount
	if last {
		s.Finished = true
		s.Phase = models.PhaseFinished
		q.metrics.RecordSession(outcomeFinished)
	} else {
		s.CurrentIndex++
	}
	return result, nil
}

// Abandon discards the session without finalisation and invalidates any generation in flight
// for its document.
func (q *QuizService) Abandon(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.session == nil || q.session.Phase == models.PhaseIdle {
		return appErrors.ErrEmptySession
	}
	q.abandonLocked(ctx)
	return nil
}

func (q *QuizService) abandonPreparingLocked(ctx context.Context) {
	if q.session != nil && q.session.Phase == models.PhasePreparing {
		q.abandonLocked(ctx)
	}
}

func (q *QuizService) abandonLocked(ctx context.Context) {
	s := q.session
	q.session = nil
	q.tokens[s.DocumentID]++

	if s.Phase == models.PhasePreparing {
		err := q.study.Update(ctx, func(state *models.StudyState) ([]Event, error) {
			if doc, ok := state.Document(s.DocumentID); ok && doc.ExtractionStatus == models.ExtractionProcessing {
				settleInterrupted(doc)
			}
			return nil, nil
		})
		if err != nil {
			q.logger.Warn("failed to settle interrupted generation", zap.String("document_id", s.DocumentID), zap.Error(err))
		}
	}
	q.study.bus.Publish(newEvent(EventSessionAbandoned, s.DocumentID, map[string]interface{}{
		"phase":    string(s.Phase),
		"answered": s.CurrentIndex,
	}))
	q.metrics.RecordSession(outcomeAbandoned)
}

// DiscardForDocument drops the session and any in-flight generation for a deleted document.
func (q *QuizService) DiscardForDocument(documentID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tokens[documentID]++
	if q.lastDoc == documentID {
		q.lastDoc = ""
	}
	if q.session == nil || q.session.DocumentID != documentID {
		return
	}
	phase := q.session.Phase
	q.session = nil
	q.study.bus.Publish(newEvent(EventSessionDiscarded, documentID, map[string]interface{}{
		"phase": string(phase),
	}))
	q.metrics.RecordSession(outcomeDiscarded)
}

func (q *QuizService) document(id string) (models.Document, error) {
	var doc models.Document
	err := q.study.View(func(state *models.StudyState) error {
		d, ok := state.Document(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		doc = *d
		doc.PreloadedQuiz = append([]models.Question(nil), d.PreloadedQuiz...)
		return nil
	})
	return doc, err
}

func (q *QuizService) markCached(ctx context.Context, doc models.Document) error {
	if doc.ExtractionStatus == models.ExtractionReady && doc.ExtractionProgress == models.MaxProgress {
		return nil
	}
	return q.study.Update(ctx, func(state *models.StudyState) ([]Event, error) {
		if d, ok := state.Document(doc.ID); ok {
			d.ExtractionStatus = models.ExtractionReady
			d.SetExtractionProgress(models.MaxProgress)
		}
		return nil, nil
	})
}

func (q *QuizService) failLocked(ctx context.Context, owned *models.QuizSession, documentID, source string, cause error) error {
	q.releaseLocked(owned)

	err := q.study.Update(ctx, func(state *models.StudyState) ([]Event, error) {
		if d, ok := state.Document(documentID); ok {
			d.ExtractionStatus = models.ExtractionFailed
			d.SetExtractionProgress(0)
		}
		return []Event{progressEvent(documentID, "failed", 0)}, nil
	})
	if err != nil {
		q.logger.Error("failed to record generation failure", zap.String("document_id", documentID), zap.Error(err))
	}

	q.logger.Warn("question generation failed",
		zap.String("document_id", documentID),
		zap.String("source", source),
		zap.Error(cause),
	)
	var appErr *appErrors.Error
	if errors.As(cause, &appErr) {
		return cause
	}
	return appErrors.WrapAs(appErrors.ErrAdapterFailure, cause, "")
}

func (q *QuizService) installLocked(doc models.Document, questions []models.Question, source string) {
	q.session = &models.QuizSession{
		DocumentID: doc.ID,
		Title:      doc.Title,
		Questions:  append([]models.Question(nil), questions...),
		Phase:      models.PhaseReady,
	}
	q.lastDoc = doc.ID
	q.study.bus.Publish(newEvent(EventSessionPrepared, doc.ID, map[string]interface{}{
		"questions": len(questions),
		"source":    source,
	}))
}

// releaseLocked drops the session only while it is still the preparing session created by the caller.
func (q *QuizService) releaseLocked(owned *models.QuizSession) {
	if owned != nil && q.session == owned && owned.Phase == models.PhasePreparing {
		q.session = nil
	}
}

func (q *QuizService) preparingLocked(documentID string) bool {
	return q.session != nil && q.session.DocumentID == documentID && q.session.Phase == models.PhasePreparing
}

func (q *QuizService) snapshotLocked() models.QuizSession {
	if q.session == nil {
		return models.QuizSession{Phase: models.PhaseIdle}
	}
	out := *q.session
	out.Questions = append([]models.Question(nil), q.session.Questions...)
	return out
}

func progressEvent(documentID, step string, percent int) Event {
	return newEvent(EventSessionProgress, documentID, map[string]interface{}{
		"step":    step,
		"percent": percent,
	})
}
