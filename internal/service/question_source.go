package service

import (
	"context"

	"github.com/typemnm/Mornoningo/internal/models"
	appErrors "github.com/typemnm/Mornoningo/pkg/errors"
)

// GeneratedQuestionSet is a normalised response from a question source.
type GeneratedQuestionSet struct {
	Questions []models.Question
	Notes     string
	Source    string
}

// QuestionSource produces questions for a document.
type QuestionSource interface {
	Name() string
	FetchQuestions(ctx context.Context, doc models.Document) (*GeneratedQuestionSet, error)
}

// PrepareOptions tune quiz preparation.
type PrepareOptions struct {
	ForceRegenerate bool `json:"forceRegenerate"`
	CacheOnly       bool `json:"cacheOnly"`
}

// SourceSelector decides which question source serves a document.
type SourceSelector struct {
	remote QuestionSource
	local  QuestionSource
}

// NewSourceSelector builds a selector. remote may be nil when no generator is configured.
func NewSourceSelector(remote, local QuestionSource) *SourceSelector {
	return &SourceSelector{remote: remote, local: local}
}

// RemoteConfigured reports whether a remote generator is available.
func (s *SourceSelector) RemoteConfigured() bool {
	return s.remote != nil
}

// Local returns the fallback source.
func (s *SourceSelector) Local() QuestionSource {
	return s.local
}

// Select applies the policy: a configured remote serves documents that carry a file reference;
// forced or cache-only requests for documents without one cannot be served remotely and fail;
// everything else falls back to local synthesis.
func (s *SourceSelector) Select(doc models.Document, opts PrepareOptions) (QuestionSource, error) {
	if s.remote != nil {
		if doc.FileID != "" {
			return s.remote, nil
		}
		if opts.ForceRegenerate || opts.CacheOnly {
			return nil, appErrors.ErrNoFileReference
		}
	}
	if s.local == nil {
		return nil, appErrors.Clone(appErrors.ErrAdapterFailure, "no question source configured")
	}
	return s.local, nil
}
