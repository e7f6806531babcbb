package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/typemnm/Mornoningo/internal/models"
	"github.com/typemnm/Mornoningo/pkg/clock"
	appErrors "github.com/typemnm/Mornoningo/pkg/errors"
	"github.com/typemnm/Mornoningo/pkg/jobs"
	"github.com/typemnm/Mornoningo/pkg/storage"
)

// JobGenerateQuestions is the background job kind that fills a document's question cache.
const JobGenerateQuestions = "generate_questions"

type documentFiles interface {
	Save(filename string, r io.Reader) (string, error)
	Delete(fileID string) error
}

type generationQueue interface {
	TryEnqueue(job jobs.Job) error
}

type reviewSeeder interface {
	SeedInitialReviews(state *models.StudyState, documentID string, base clock.Date) []models.Review
}

// UploadDocumentRequest carries a file upload.
type UploadDocumentRequest struct {
	Filename string    `validate:"required,max=255"`
	Content  io.Reader `validate:"required"`
}

// CreateTextDocumentRequest creates a document from pasted notes.
type CreateTextDocumentRequest struct {
	Title string `json:"title" validate:"required,max=200"`
	Notes string `json:"notes" validate:"required"`
}

// DocumentService manages study material: ingestion, listing and deletion.
type DocumentService struct {
	study     *StudyService
	seeder    reviewSeeder
	files     documentFiles
	queue     generationQueue
	ids       IDGenerator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDocumentService constructs the service. files and queue may be nil, which disables uploads
// and background generation respectively.
func NewDocumentService(study *StudyService, seeder reviewSeeder, files documentFiles, queue generationQueue, ids IDGenerator, validate *validator.Validate, logger *zap.Logger) *DocumentService {
	if ids == nil {
		ids = NewUUIDGenerator()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentService{
		study:     study,
		seeder:    seeder,
		files:     files,
		queue:     queue,
		ids:       ids,
		validator: validate,
		logger:    logger,
	}
}

// List returns every document in creation order.
func (s *DocumentService) List(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	err := s.study.View(func(state *models.StudyState) error {
		docs = make([]models.Document, len(state.Docs))
		for i := range state.Docs {
			docs[i] = state.Docs[i]
			docs[i].PreloadedQuiz = append([]models.Question(nil), state.Docs[i].PreloadedQuiz...)
		}
		return nil
	})
	return docs, err
}

// Get returns one document.
func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := s.study.View(func(state *models.StudyState) error {
		d, ok := state.Document(id)
		if !ok {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		doc = *d
		doc.PreloadedQuiz = append([]models.Question(nil), d.PreloadedQuiz...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Upload stores the file, creates a document in processing state with its initial reviews and
// queues a cache-only question generation.
func (s *DocumentService) Upload(ctx context.Context, req UploadDocumentRequest) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid upload")
	}
	if s.files == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "uploads are not configured")
	}

	fileID, err := s.files.Save(req.Filename, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrExtensionNotAllowed):
			return nil, appErrors.WrapAs(appErrors.ErrUnsupportedFormat, err, "")
		case errors.Is(err, storage.ErrTooLarge):
			return nil, appErrors.WrapAs(appErrors.ErrPayloadTooLarge, err, "")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store upload")
		}
	}

	doc := models.Document{
		ID:               s.ids("doc"),
		FileID:           fileID,
		Title:            strings.TrimSpace(req.Filename),
		Type:             models.SourceType(req.Filename),
		CreatedAt:        s.study.Today(),
		ExtractionStatus: models.ExtractionProcessing,
		PreloadedQuiz:    []models.Question{},
	}
	if err := s.create(ctx, doc); err != nil {
		if rmErr := s.files.Delete(fileID); rmErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("file_id", fileID), zap.Error(rmErr))
		}
		return nil, err
	}

	if !s.enqueue(doc.ID) {
		if err := s.study.Update(ctx, func(state *models.StudyState) ([]Event, error) {
			if d, ok := state.Document(doc.ID); ok && d.ExtractionStatus == models.ExtractionProcessing {
				d.ExtractionStatus = models.ExtractionPending
			}
			return nil, nil
		}); err != nil {
			s.logger.Warn("failed to mark document pending", zap.String("document_id", doc.ID), zap.Error(err))
		}
	}
	return s.Get(ctx, doc.ID)
}

// CreateFromText creates a document from notes without an uploaded file. Its quizzes come from
// local synthesis.
func (s *DocumentService) CreateFromText(ctx context.Context, req CreateTextDocumentRequest) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	notes := NormalizeText(req.Notes)
	doc := models.Document{
		ID:               s.ids("doc"),
		Title:            strings.TrimSpace(req.Title),
		Type:             "text",
		CreatedAt:        s.study.Today(),
		Notes:            notes,
		ConceptsCount:    len(models.SplitSections(notes)),
		ExtractionStatus: models.ExtractionPending,
		PreloadedQuiz:    []models.Question{},
	}
	if err := s.create(ctx, doc); err != nil {
		return nil, err
	}
	return s.Get(ctx, doc.ID)
}

// Delete removes the document, its reviews, any session on it and its uploaded file.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	removed, err := s.study.DeleteDocument(ctx, id)
	if err != nil {
		return err
	}
	if removed.FileID != "" && s.files != nil {
		if err := s.files.Delete(removed.FileID); err != nil {
			s.logger.Warn("failed to delete uploaded file", zap.String("file_id", removed.FileID), zap.Error(err))
		}
	}
	s.logger.Info("document deleted", zap.String("document_id", id))
	return nil
}

// ResumePending queues generation for uploaded documents that have no cached questions yet.
func (s *DocumentService) ResumePending(ctx context.Context) int {
	var ids []string
	err := s.study.View(func(state *models.StudyState) error {
		for _, d := range state.Docs {
			if d.FileID != "" && !d.HasCachedQuiz() && d.ExtractionStatus == models.ExtractionPending {
				ids = append(ids, d.ID)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("failed to scan for pending documents", zap.Error(err))
		return 0
	}
	queued := 0
	for _, id := range ids {
		if s.enqueue(id) {
			queued++
		}
	}
	if queued > 0 {
		s.logger.Info("resumed pending question generation", zap.Int("documents", queued))
	}
	return queued
}

func (s *DocumentService) create(ctx context.Context, doc models.Document) error {
	return s.study.Update(ctx, func(state *models.StudyState) ([]Event, error) {
		state.Docs = append(state.Docs, doc)
		reviews := s.seeder.SeedInitialReviews(state, doc.ID, doc.CreatedAt)
		return []Event{newEvent(EventDocumentCreated, doc.ID, map[string]interface{}{
			"title":   doc.Title,
			"type":    doc.Type,
			"reviews": len(reviews),
		})}, nil
	})
}

func (s *DocumentService) enqueue(documentID string) bool {
	if s.queue == nil {
		return false
	}
	err := s.queue.TryEnqueue(jobs.Job{
		ID:         s.ids("job"),
		Kind:       JobGenerateQuestions,
		DocumentID: documentID,
	})
	if err != nil {
		s.logger.Warn("failed to queue question generation", zap.String("document_id", documentID), zap.Error(err))
		return false
	}
	return true
}

// NewGenerationHandler returns the job handler that fills a document's question cache.
// Superseded or deleted documents are not treated as failures.
func NewGenerationHandler(quiz *QuizService) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		_, err := quiz.Prepare(ctx, job.DocumentID, PrepareOptions{CacheOnly: true})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, appErrors.ErrStaleGeneration), errors.Is(err, appErrors.ErrNotFound):
			return nil
		default:
			return err
		}
	}
}
