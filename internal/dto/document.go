package dto

import (
	"github.com/typemnm/Mornoningo/internal/models"
	"github.com/typemnm/Mornoningo/pkg/clock"
)

// DocumentItem is a document without its cached answers.
type DocumentItem struct {
	ID                 string                  `json:"id"`
	FileID             string                  `json:"fileId,omitempty"`
	Title              string                  `json:"title"`
	Type               string                  `json:"type"`
	Progress           int                     `json:"progress"`
	ConceptsCount      int                     `json:"conceptsCount"`
	CreatedAt          clock.Date              `json:"createdAt"`
	QuizStats          models.QuizStats        `json:"quizStats"`
	ExtractionStatus   models.ExtractionStatus `json:"extractionStatus"`
	ExtractionProgress int                     `json:"extractionProgress"`
	CachedQuestions    int                     `json:"cachedQuestions"`
}

// DocumentDetail adds the notes split into sections.
type DocumentDetail struct {
	DocumentItem
	Notes    string          `json:"notes"`
	Sections []string        `json:"sections"`
	Reviews  []models.Review `json:"reviews,omitempty"`
}

// NewDocumentItem projects a document for listings.
func NewDocumentItem(d models.Document) DocumentItem {
	return DocumentItem{
		ID:                 d.ID,
		FileID:             d.FileID,
		Title:              d.Title,
		Type:               d.Type,
		Progress:           d.Progress,
		ConceptsCount:      d.ConceptsCount,
		CreatedAt:          d.CreatedAt,
		QuizStats:          d.QuizStats,
		ExtractionStatus:   d.ExtractionStatus,
		ExtractionProgress: d.ExtractionProgress,
		CachedQuestions:    len(d.PreloadedQuiz),
	}
}

// NewDocumentDetail projects one document with its notes.
func NewDocumentDetail(d models.Document) DocumentDetail {
	return DocumentDetail{
		DocumentItem: NewDocumentItem(d),
		Notes:        d.Notes,
		Sections:     d.NoteSections(),
	}
}
