package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage writes uploads to a directory on disk. The files are
// served back by the HTTP layer under /uploads/.
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage creates the uploads directory if needed.
func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &LocalStorage{
		dir:     dir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Save writes the payload under a fresh name and returns its URL.
func (s *LocalStorage) Save(_ context.Context, data []byte, ext string) (string, error) {
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return s.baseURL + "/uploads/" + name, nil
}
