package project

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"storyreel/internal/logging"
	"storyreel/internal/snapshot"
)

// CleanResult lists temp files removed by CleanStaleTemp and any failures.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStaleTemp removes state-file temp files older than maxAge left behind
// by interrupted saves.
func (s *Store) CleanStaleTemp(ctx context.Context, maxAge time.Duration) CleanResult {
	result := CleanResult{}
	base := s.layout.Base()
	if base == "" {
		return result
	}

	projects, err := os.ReadDir(base)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: base, Error: err})
		}
		return result
	}

	logger := logging.WithContext(ctx, s.logger)
	prefix := "." + snapshot.StateFileName + "."
	cutoff := time.Now().Add(-maxAge)

	for _, dir := range projects {
		if !dir.IsDir() {
			continue
		}
		dirPath := filepath.Join(base, dir.Name())
		entries, err := os.ReadDir(dirPath)
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".tmp") {
				continue
			}
			path := filepath.Join(dirPath, name)
			info, err := entry.Info()
			if err != nil {
				result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
				continue
			}
			if !info.ModTime().Before(cutoff) {
				continue
			}
			if err := os.Remove(path); err != nil {
				result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
				logging.WarnWithContext(logger, "failed to remove stale state temp file", "project_cleanup_failed",
					logging.String(logging.FieldPath, path),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check projects_dir permissions"),
					logging.String(logging.FieldImpact, "disk space not reclaimed"))
				continue
			}
			result.Removed = append(result.Removed, path)
			logger.Info("removed stale state temp file",
				logging.String(logging.FieldPath, path),
				logging.Duration("age", time.Since(info.ModTime())),
				logging.String(logging.FieldEventType, "project_cleanup"))
		}
	}
	return result
}
