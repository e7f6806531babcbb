package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/typemnm/Mornoningo/internal/models"
	"github.com/typemnm/Mornoningo/pkg/clock"
	appErrors "github.com/typemnm/Mornoningo/pkg/errors"
	"github.com/typemnm/Mornoningo/pkg/export"
)

// Export kinds.
const (
	ExportReviews   = "reviews"
	ExportDocuments = "documents"
	ExportHistory   = "history"
)

// ExportFile is a rendered study report.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders study reports as CSV or PDF.
type ExportService struct {
	study  *StudyService
	logger *zap.Logger
}

// NewExportService constructs the service.
func NewExportService(study *StudyService, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{study: study, logger: logger}
}

// Export renders the dataset named by kind in the requested format.
func (s *ExportService) Export(ctx context.Context, kind, format string) (*ExportFile, error) {
	renderer, err := export.ForFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported export format")
	}

	today := s.study.Today()
	var data export.Dataset
	err = s.study.View(func(state *models.StudyState) error {
		switch strings.ToLower(kind) {
		case ExportReviews:
			data = reviewsDataset(state, today)
		case ExportDocuments:
			data = documentsDataset(state)
		case ExportHistory:
			data = historyDataset(state)
		default:
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown export %q", kind))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	body, err := renderer.Render(data)
	if err != nil {
		s.logger.Error("failed to render export", zap.String("kind", kind), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("mornoningo-%s-%s%s", strings.ToLower(kind), today, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}

func reviewsDataset(state *models.StudyState, today clock.Date) export.Dataset {
	headers := []string{"Due Date", "Stage", "Priority", "Document", "Status"}
	reviews := append([]models.Review(nil), state.Reviews...)
	sort.SliceStable(reviews, func(i, j int) bool {
		if reviews[i].DueDate != reviews[j].DueDate {
			return reviews[i].DueDate.Before(reviews[j].DueDate)
		}
		return reviews[i].Priority > reviews[j].Priority
	})
	rows := make([]map[string]string, 0, len(reviews))
	for _, r := range reviews {
		title := r.DocumentID
		if doc, ok := state.Document(r.DocumentID); ok {
			title = doc.Title
		}
		status := "upcoming"
		if r.IsDue(today) {
			status = "due"
		}
		rows = append(rows, map[string]string{
			"Due Date": r.DueDate.String(),
			"Stage":    strconv.Itoa(r.Stage),
			"Priority": strconv.Itoa(r.Priority),
			"Document": title,
			"Status":   status,
		})
	}
	return export.Dataset{Title: "Review schedule", Headers: headers, Rows: rows}
}

func documentsDataset(state *models.StudyState) export.Dataset {
	headers := []string{"Title", "Type", "Created", "Progress", "Concepts", "Extraction", "Accuracy"}
	rows := make([]map[string]string, 0, len(state.Docs))
	for i := range state.Docs {
		d := &state.Docs[i]
		accuracy := "-"
		if d.QuizStats.Total > 0 {
			accuracy = fmt.Sprintf("%d%%", int(100*(1-WrongRate(d))+0.5))
		}
		rows = append(rows, map[string]string{
			"Title":      d.Title,
			"Type":       d.Type,
			"Created":    d.CreatedAt.String(),
			"Progress":   fmt.Sprintf("%d%%", d.Progress),
			"Concepts":   strconv.Itoa(d.ConceptsCount),
			"Extraction": string(d.ExtractionStatus),
			"Accuracy":   accuracy,
		})
	}
	return export.Dataset{Title: "Study material", Headers: headers, Rows: rows}
}

func historyDataset(state *models.StudyState) export.Dataset {
	headers := []string{"Finished", "Document", "Score", "Correct", "Total"}
	rows := make([]map[string]string, 0, len(state.QuizSessions))
	for i := len(state.QuizSessions) - 1; i >= 0; i-- {
		rec := state.QuizSessions[i]
		rows = append(rows, map[string]string{
			"Finished": rec.FinishedAt.Format("2006-01-02 15:04"),
			"Document": rec.Title,
			"Score":    strconv.Itoa(rec.Score),
			"Correct":  strconv.Itoa(rec.CorrectCount),
			"Total":    strconv.Itoa(rec.Total),
		})
	}
	return export.Dataset{Title: "Quiz history", Headers: headers, Rows: rows}
}
