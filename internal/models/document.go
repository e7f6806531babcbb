package models

import (
	"regexp"
	"strings"

	"github.com/typemnm/Mornoningo/pkg/clock"
)

// ExtractionStatus tracks how far question generation has progressed for a document.
type ExtractionStatus string

const (
	ExtractionPending    ExtractionStatus = "pending"
	ExtractionProcessing ExtractionStatus = "processing"
	ExtractionReady      ExtractionStatus = "ready"
	ExtractionFailed     ExtractionStatus = "failed"
)

// Valid reports whether s is a known status.
func (s ExtractionStatus) Valid() bool {
	switch s {
	case ExtractionPending, ExtractionProcessing, ExtractionReady, ExtractionFailed:
		return true
	}
	return false
}

// MaxProgress caps Document.Progress and Document.ExtractionProgress.
const MaxProgress = 100

// QuizStats are lifetime answer counters for a document.
type QuizStats struct {
	Attempts int `json:"attempts"`
	Correct  int `json:"correct"`
	Total    int `json:"total"`
}

// Document is a unit of study material.
type Document struct {
	ID                 string           `json:"id"`
	FileID             string           `json:"fileId,omitempty"`
	Title              string           `json:"title"`
	Type               string           `json:"type"`
	Progress           int              `json:"progress"`
	ConceptsCount      int              `json:"conceptsCount"`
	CreatedAt          clock.Date       `json:"createdAt"`
	Notes              string           `json:"notes"`
	QuizStats          QuizStats        `json:"quizStats"`
	ExtractionStatus   ExtractionStatus `json:"extractionStatus"`
	ExtractionProgress int              `json:"extractionProgress"`
	PreloadedQuiz      []Question       `json:"preloadedQuiz"`
}

// HasCachedQuiz reports whether a non-empty question set is cached on the document.
func (d *Document) HasCachedQuiz() bool {
	return len(d.PreloadedQuiz) > 0
}

// AddProgress raises progress by delta, never past MaxProgress and never downwards.
func (d *Document) AddProgress(delta int) {
	if delta <= 0 {
		return
	}
	d.Progress += delta
	if d.Progress > MaxProgress {
		d.Progress = MaxProgress
	}
}

// SetExtractionProgress stores percent clamped to [0,100].
func (d *Document) SetExtractionProgress(percent int) {
	d.ExtractionProgress = clamp(percent, 0, MaxProgress)
}

var blankLines = regexp.MustCompile(`\n\s*\n`)

// NoteSections splits notes into blank-line separated blocks.
func (d *Document) NoteSections() []string {
	return SplitSections(d.Notes)
}

// SplitSections splits text on blank lines and drops empty blocks.
func SplitSections(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	blocks := blankLines.Split(text, -1)
	out := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if trimmed := strings.TrimSpace(block); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// TitleStem returns the title without its final extension.
func TitleStem(title string) string {
	title = strings.TrimSpace(title)
	if i := strings.LastIndex(title, "."); i > 0 {
		return title[:i]
	}
	return title
}

// SourceType derives the document type from a file name, e.g. "pdf".
func SourceType(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 && i < len(filename)-1 {
		return strings.ToLower(filename[i+1:])
	}
	return "text"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
