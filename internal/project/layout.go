package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"storyreel/internal/snapshot"
)

// DefaultDirName is used when a blank project name reaches directory
// resolution.
const DefaultDirName = "default"

// Layout maps project names to directories under a base directory.
type Layout struct {
	base string
}

// NewLayout returns a Layout rooted at base.
func NewLayout(base string) Layout {
	return Layout{base: strings.TrimSpace(base)}
}

// Base returns the projects root.
func (l Layout) Base() string { return l.base }

// ProjectDir returns base/<name>. A blank name resolves to the default
// directory.
func (l Layout) ProjectDir(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultDirName
	}
	return filepath.Join(l.base, name)
}

// StatePath returns the state file location for name.
func (l Layout) StatePath(name string) string {
	return filepath.Join(l.ProjectDir(name), snapshot.StateFileName)
}

// EnsureProjectDir creates the project directory if needed and returns it.
func (l Layout) EnsureProjectDir(name string) (string, error) {
	if l.base == "" {
		return "", errors.New("projects directory is not configured")
	}
	dir := l.ProjectDir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create project directory: %w", err)
	}
	return dir, nil
}

// validName rejects names that would resolve outside the base directory.
func validName(name string) error {
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid project name %q", name)
	}
	return nil
}
