package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/typemnm/Mornoningo/internal/models"
	"github.com/typemnm/Mornoningo/pkg/clock"
	appErrors "github.com/typemnm/Mornoningo/pkg/errors"
)

// StateRepository persists the single study state document.
type StateRepository interface {
	Load(ctx context.Context) (*models.StudyState, error)
	Save(ctx context.Context, state *models.StudyState) error
}

// IDGenerator mints unique identifiers with the given prefix.
type IDGenerator func(prefix string) string

// NewUUIDGenerator returns ids such as "doc_3f2c...".
func NewUUIDGenerator() IDGenerator {
	return func(prefix string) string {
		return prefix + "_" + uuid.NewString()
	}
}

// Mutation changes the state and returns the events describing the change.
type Mutation func(state *models.StudyState) ([]Event, error)

// StudyService owns the in-memory study state. Every mutation runs on a copy under the write
// lock and is saved before it becomes visible, so a failed save leaves the previous state.
type StudyService struct {
	repo    StateRepository
	clock   clock.Clock
	bus     *EventBus
	metrics *MetricsService
	logger  *zap.Logger

	mu    sync.RWMutex
	state *models.StudyState

	hookMu      sync.Mutex
	deleteHooks []func(documentID string)
}

// NewStudyService constructs a StudyService. Load must be called before use.
func NewStudyService(repo StateRepository, clk clock.Clock, bus *EventBus, metrics *MetricsService, logger *zap.Logger) *StudyService {
	if clk == nil {
		clk = clock.System()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudyService{repo: repo, clock: clk, bus: bus, metrics: metrics, logger: logger}
}

// Load reads the persisted state once. A missing or corrupt state is replaced by the sample seed.
func (s *StudyService) Load(ctx context.Context) error {
	today := s.Today()
	state, err := s.repo.Load(ctx)
	if err != nil {
		if !errors.Is(err, appErrors.ErrCorruptState) {
			return appErrors.WrapAs(appErrors.ErrPersistenceFailure, err, "failed to load study state")
		}
		s.logger.Warn("persisted study state is corrupt, reseeding sample state", zap.Error(err))
		state = nil
	}

	if state == nil {
		state = NewSampleState(today)
		s.logger.Info("seeded sample study state", zap.Int("documents", len(state.Docs)))
	} else {
		from := state.SchemaVersion
		MigrateState(state, today)
		recoverInterrupted(state)
		if from != state.SchemaVersion {
			s.logger.Info("migrated study state", zap.Int("from", from), zap.Int("to", state.SchemaVersion))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(ctx, state); err != nil {
		return err
	}
	s.state = state
	return nil
}

// Today returns the current calendar day of the service clock.
func (s *StudyService) Today() clock.Date {
	return clock.Today(s.clock)
}

// Now returns the current instant of the service clock.
func (s *StudyService) Now() time.Time {
	return s.clock.Now()
}

// View runs fn under the read lock. fn must not retain or mutate the state.
func (s *StudyService) View(fn func(state *models.StudyState) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == nil {
		return appErrors.Clone(appErrors.ErrInternal, "study state is not loaded")
	}
	return fn(s.state)
}

// Snapshot returns a deep copy of the current state.
func (s *StudyService) Snapshot() (*models.StudyState, error) {
	var out *models.StudyState
	err := s.View(func(state *models.StudyState) error {
		out = state.Clone()
		return nil
	})
	return out, err
}

// Update applies fn to a copy of the state, persists the copy, swaps it in and publishes the
// returned events. Nothing changes when fn or the save fails.
func (s *StudyService) Update(ctx context.Context, fn Mutation) error {
	events, err := s.apply(ctx, fn)
	if err != nil {
		return err
	}
	s.bus.Publish(events...)
	return nil
}

func (s *StudyService) apply(ctx context.Context, fn Mutation) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "study state is not loaded")
	}
	next := s.state.Clone()
	events, err := fn(next)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	s.state = next
	return events, nil
}

func (s *StudyService) save(ctx context.Context, state *models.StudyState) error {
	start := time.Now()
	err := s.repo.Save(ctx, state)
	s.metrics.ObserveStateSave(err, time.Since(start))
	if err != nil {
		s.logger.Error("failed to persist study state", zap.Error(err))
		return appErrors.WrapAs(appErrors.ErrPersistenceFailure, err, "")
	}
	return nil
}

// OnDocumentDeleted registers a hook run after a document delete commits.
func (s *StudyService) OnDocumentDeleted(fn func(documentID string)) {
	s.hookMu.Lock()
	defer s.hookMu.Unlock()
	s.deleteHooks = append(s.deleteHooks, fn)
}

// DeleteDocument removes the document and cascades to its reviews, then runs delete hooks with
// no lock held.
func (s *StudyService) DeleteDocument(ctx context.Context, id string) (*models.Document, error) {
	var removed models.Document
	err := s.Update(ctx, func(state *models.StudyState) ([]Event, error) {
		doc, dropped, ok := state.RemoveDocument(id)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		removed = doc
		return []Event{newEvent(EventDocumentDeleted, id, map[string]interface{}{
			"title":          doc.Title,
			"reviewsRemoved": dropped,
		})}, nil
	})
	if err != nil {
		return nil, err
	}

	s.hookMu.Lock()
	hooks := append([]func(string){}, s.deleteHooks...)
	s.hookMu.Unlock()
	for _, hook := range hooks {
		hook(id)
	}
	return &removed, nil
}
