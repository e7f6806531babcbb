package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrExtensionNotAllowed is returned when an upload's extension is outside the allow list.
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
	// ErrTooLarge is returned when an upload exceeds the configured byte limit.
	ErrTooLarge = errors.New("file exceeds size limit")
	// ErrInvalidFileID guards against path traversal through file ids.
	ErrInvalidFileID = errors.New("invalid file id")
)

// UploadStore persists uploaded study material on disk under opaque file ids.
type UploadStore struct {
	baseDir    string
	maxBytes   int64
	allowedExt map[string]struct{}
}

// NewUploadStore ensures the base directory exists and returns a handle.
func NewUploadStore(baseDir string, maxBytes int64, allowedExt []string) (*UploadStore, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	allowed := make(map[string]struct{}, len(allowedExt))
	for _, ext := range allowedExt {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}
	return &UploadStore{baseDir: baseDir, maxBytes: maxBytes, allowedExt: allowed}, nil
}

// Allowed reports whether filename carries an accepted extension. An empty allow list accepts everything.
func (s *UploadStore) Allowed(filename string) bool {
	if len(s.allowedExt) == 0 {
		return true
	}
	_, ok := s.allowedExt[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// Save copies r to a new file and returns its file id (<unixmillis>_<hex><ext>).
func (s *UploadStore) Save(filename string, r io.Reader) (string, error) {
	if !s.Allowed(filename) {
		return "", fmt.Errorf("%w: %s", ErrExtensionNotAllowed, filepath.Ext(filename))
	}
	fileID := fmt.Sprintf("%d_%s%s", time.Now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:12], strings.ToLower(filepath.Ext(filename)))
	path := filepath.Join(s.baseDir, fileID)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}

	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}
	written, copyErr := io.Copy(file, src)
	closeErr := file.Close()
	if copyErr == nil && s.maxBytes > 0 && written > s.maxBytes {
		copyErr = ErrTooLarge
	}
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(path)
		if errors.Is(copyErr, ErrTooLarge) {
			return "", copyErr
		}
		return "", fmt.Errorf("write upload: %w", copyErr)
	}
	return fileID, nil
}

// Open returns a read-only handle for the stored file.
func (s *UploadStore) Open(fileID string) (*os.File, error) {
	path, err := s.resolve(fileID)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	return file, nil
}

// ReadAll returns at most limit bytes of the stored file. A non-positive limit reads everything.
func (s *UploadStore) ReadAll(fileID string, limit int64) ([]byte, error) {
	file, err := s.Open(fileID)
	if err != nil {
		return nil, err
	}
	defer file.Close() //nolint:errcheck

	var r io.Reader = file
	if limit > 0 {
		r = io.LimitReader(file, limit)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

// Delete removes a stored file if present.
func (s *UploadStore) Delete(fileID string) error {
	path, err := s.resolve(fileID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload: %w", err)
	}
	return nil
}

func (s *UploadStore) resolve(fileID string) (string, error) {
	if fileID == "" || fileID != filepath.Base(fileID) || strings.HasPrefix(fileID, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidFileID, fileID)
	}
	return filepath.Join(s.baseDir, fileID), nil
}
