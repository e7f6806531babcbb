package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	appErrors "github.com/typemnm/Mornoningo/pkg/errors"
)

// TextExtractor returns the plain text of an uploaded file.
type TextExtractor interface {
	ExtractText(ctx context.Context, fileID string) (string, error)
}

type uploadReader interface {
	ReadAll(fileID string, limit int64) ([]byte, error)
}

var plainTextExtensions = map[string]struct{}{".txt": {}, ".md": {}, ".csv": {}}

// PlainTextExtractor reads text-based uploads straight from storage.
type PlainTextExtractor struct {
	files    uploadReader
	maxBytes int64
}

// NewPlainTextExtractor constructs the extractor. maxBytes bounds how much is read per file.
func NewPlainTextExtractor(files uploadReader, maxBytes int64) *PlainTextExtractor {
	return &PlainTextExtractor{files: files, maxBytes: maxBytes}
}

func (e *PlainTextExtractor) ExtractText(ctx context.Context, fileID string) (string, error) {
	if _, ok := plainTextExtensions[strings.ToLower(filepath.Ext(fileID))]; !ok {
		return "", appErrors.ErrUnsupportedFormat
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := e.files.ReadAll(fileID, e.maxBytes)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		data = bytes.ToValidUTF8(data, []byte(" "))
	}
	return NormalizeText(string(data)), nil
}

// HTTPTextExtractor delegates binary formats (PDF, PPTX) to an extraction service that accepts
// a multipart "file" field and answers {"text": "..."}.
type HTTPTextExtractor struct {
	endpoint string
	client   *http.Client
	files    uploadReader
	maxBytes int64
}

// NewHTTPTextExtractor constructs the extractor.
func NewHTTPTextExtractor(endpoint string, timeout time.Duration, files uploadReader, maxBytes int64) *HTTPTextExtractor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPTextExtractor{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		files:    files,
		maxBytes: maxBytes,
	}
}

func (e *HTTPTextExtractor) ExtractText(ctx context.Context, fileID string) (string, error) {
	data, err := e.files.ReadAll(fileID, e.maxBytes)
	if err != nil {
		return "", err
	}

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)
	part, err := form.CreateFormFile("file", fileID)
	if err != nil {
		return "", fmt.Errorf("build extraction form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("build extraction form: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("build extraction form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("build extraction request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call extraction service: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("extraction service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode extraction response: %w", err)
	}
	return NormalizeText(payload.Text), nil
}

// ChainExtractor tries each extractor in order, skipping those that report ErrUnsupportedFormat.
type ChainExtractor []TextExtractor

func (c ChainExtractor) ExtractText(ctx context.Context, fileID string) (string, error) {
	for _, ex := range c {
		if ex == nil {
			continue
		}
		text, err := ex.ExtractText(ctx, fileID)
		if errors.Is(err, appErrors.ErrUnsupportedFormat) {
			continue
		}
		return text, err
	}
	return "", appErrors.Clone(appErrors.ErrUnsupportedFormat, fmt.Sprintf("no extractor for %s", filepath.Ext(fileID)))
}

var (
	carriageReturns = regexp.MustCompile(`\r+`)
	excessNewlines  = regexp.MustCompile(`\n{3,}`)
)

// NormalizeText strips NUL bytes, unifies line endings and collapses runs of blank lines.
func NormalizeText(text string) string {
	cleaned := strings.ReplaceAll(text, "\x00", " ")
	cleaned = strings.ReplaceAll(cleaned, "\r\n", "\n")
	cleaned = carriageReturns.ReplaceAllString(cleaned, "\n")
	cleaned = excessNewlines.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}
