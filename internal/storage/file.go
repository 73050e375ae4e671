package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sammyzayn123/review-scraper/internal/config"
	"github.com/sammyzayn123/review-scraper/internal/types"
)

// FileStore is a directory-backed BlobStore with one directory per kind.
type FileStore struct {
	dirs   map[Kind]string
	logger *slog.Logger
}

// NewFileStore creates a FileStore over the configured artifact directories.
func NewFileStore(cfg *config.StorageConfig, logger *slog.Logger) (*FileStore, error) {
	dirs := map[Kind]string{
		KindCSV:    cfg.CSVDir,
		KindImage:  cfg.ImageDir,
		KindReport: cfg.ReportDir,
	}
	for kind, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &types.StorageError{Backend: string(kind), Err: err}
		}
	}
	return &FileStore{
		dirs:   dirs,
		logger: logger.With("component", "file_store"),
	}, nil
}

// Save writes content to <kind dir>/<name> and returns that path.
func (s *FileStore) Save(kind Kind, name string, content []byte) (string, error) {
	dir, ok := s.dirs[kind]
	if !ok {
		return "", &types.StorageError{Backend: string(kind), Err: fmt.Errorf("unknown artifact kind")}
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", &types.StorageError{Backend: string(kind), Err: err}
	}

	s.logger.Info("artifact written", "kind", kind, "path", path, "bytes", len(content))
	return path, nil
}

// Clean removes every file in a kind's directory. Residual artifacts from
// past searches would otherwise accumulate unbounded.
func (s *FileStore) Clean(kind Kind) error {
	dir, ok := s.dirs[kind]
	if !ok {
		return &types.StorageError{Backend: string(kind), Err: fmt.Errorf("unknown artifact kind")}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return &types.StorageError{Backend: string(kind), Err: err}
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return &types.StorageError{Backend: string(kind), Err: err}
		}
	}

	s.logger.Debug("artifacts cleaned", "kind", kind, "dir", dir, "removed", len(entries))
	return nil
}
