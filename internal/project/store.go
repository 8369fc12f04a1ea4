package project

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"storyreel/internal/logging"
	"storyreel/internal/settings"
	"storyreel/internal/snapshot"
)

// Store saves, loads, lists, and deletes projects.
type Store struct {
	layout   Layout
	stores   *settings.Stores
	active   *Context
	bindings []binding
	logger   *slog.Logger
}

// NewStore builds a Store over the given settings stores.
func NewStore(layout Layout, stores *settings.Stores, logger *slog.Logger) *Store {
	return &Store{
		layout:   layout,
		stores:   stores,
		active:   NewContext(stores.Project.DirName),
		bindings: bindings(stores),
		logger:   logging.NewComponentLogger(logger, "project"),
	}
}

// Layout returns the directory mapping used by the store.
func (s *Store) Layout() Layout { return s.layout }

// Context returns the active project pointer.
func (s *Store) Context() *Context { return s.active }

// Active returns the active project name, blank when none is set or the
// pointer cannot be read.
func (s *Store) Active(ctx context.Context) string {
	name, err := s.active.Active(ctx)
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, s.logger), "read active project failed", "project_context_read_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "no active project reported"))
		return ""
	}
	return name
}

// Create starts a fresh project: every field returns to its default, name
// becomes active, and an initial state file is written. Create fails if name
// already holds a state file.
func (s *Store) Create(ctx context.Context, name string) bool {
	logger := logging.WithContext(ctx, s.logger)
	name = strings.TrimSpace(name)
	if name == "" {
		logging.WarnWithContext(logger, "create skipped: blank project name", "project_create_skipped",
			logging.String(logging.FieldImpact, "no project created"))
		return false
	}
	if !s.checkName(logger, name, "project_create_failed") {
		return false
	}
	logger = logger.With(logging.String(logging.FieldProject, name))

	if _, err := os.Stat(s.layout.StatePath(name)); err == nil {
		logging.WarnWithContext(logger, "project already exists", "project_create_skipped",
			logging.String(logging.FieldPath, s.layout.StatePath(name)),
			logging.String(logging.FieldErrorHint, "load the project or pick another name"),
			logging.String(logging.FieldImpact, "no project created"))
		return false
	}
	if err := s.stores.Reset(ctx, s.stores.Project.DirName.Name()); err != nil {
		logging.ErrorWithContext(logger, "reset fields failed", "project_create_failed",
			logging.Error(err))
		return false
	}
	if err := s.active.Activate(ctx, name); err != nil {
		logging.ErrorWithContext(logger, "activate project failed", "project_create_failed",
			logging.Error(err))
		return false
	}
	return s.Save(ctx)
}

// Save writes every field of the active project to its state file.
func (s *Store) Save(ctx context.Context) bool {
	logger := logging.WithContext(ctx, s.logger)

	name, err := s.active.Active(ctx)
	if err != nil {
		logging.ErrorWithContext(logger, "read active project failed", "project_save_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the field database"))
		return false
	}
	if name == "" {
		logging.WarnWithContext(logger, "save skipped: no active project", "project_save_skipped",
			logging.String(logging.FieldErrorHint, "load or create a project first"),
			logging.String(logging.FieldImpact, "project state not persisted"))
		return false
	}
	if !s.checkName(logger, name, "project_save_failed") {
		return false
	}
	logger = logger.With(logging.String(logging.FieldProject, name))

	snap, err := s.gather(ctx)
	if err != nil {
		logging.ErrorWithContext(logger, "gather project fields failed", "project_save_failed",
			logging.Error(err))
		return false
	}
	data, err := snapshot.Encode(snap)
	if err != nil {
		logging.ErrorWithContext(logger, "encode project snapshot failed", "project_save_failed",
			logging.Error(err))
		return false
	}

	if _, err := s.layout.EnsureProjectDir(name); err != nil {
		logging.ErrorWithContext(logger, "create project directory failed", "project_save_failed",
			logging.String(logging.FieldPath, s.layout.ProjectDir(name)),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check projects_dir permissions"))
		return false
	}
	path := s.layout.StatePath(name)
	if err := writeFileAtomic(path, data); err != nil {
		logging.ErrorWithContext(logger, "write project state failed", "project_save_failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check projects_dir permissions and free space"))
		return false
	}

	logger.Info("project saved",
		logging.String(logging.FieldEventType, "project_saved"),
		logging.String(logging.FieldPath, path),
		logging.Int("bytes", len(data)))
	return true
}

// gather reads every field concurrently. Each goroutine writes a distinct
// snapshot field.
func (s *Store) gather(ctx context.Context) (snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	for _, b := range s.bindings {
		g.Go(func() error {
			if err := b.gather(gctx, &snap); err != nil {
				return fmt.Errorf("%s: %w", b.name, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return snapshot.Snapshot{}, err
	}
	return snap, nil
}

// Load restores name into the field stores and makes it the active project.
// Fields absent from the state file keep their current values. If applying
// a value fails, Load stops and returns false; values applied before the
// failure are not rolled back.
func (s *Store) Load(ctx context.Context, name string) bool {
	logger := logging.WithContext(ctx, s.logger)
	name = strings.TrimSpace(name)
	if name == "" {
		logging.WarnWithContext(logger, "load skipped: blank project name", "project_load_skipped",
			logging.String(logging.FieldImpact, "no project loaded"))
		return false
	}
	if !s.checkName(logger, name, "project_load_failed") {
		return false
	}
	logger = logger.With(logging.String(logging.FieldProject, name))

	snap, ok := s.read(ctx, logger, name)
	if !ok {
		return false
	}

	applied, err := s.apply(ctx, &snap)
	if err != nil {
		logging.ErrorWithContext(logger, "apply project state failed", "project_load_partial",
			logging.Error(err),
			logging.Int("applied_fields", applied),
			logging.String(logging.FieldErrorHint, "reload the project once the field store recovers"),
			logging.String(logging.FieldImpact, "fields applied before the failure keep their loaded values"))
		return false
	}
	if err := s.active.Activate(ctx, name); err != nil {
		logging.ErrorWithContext(logger, "activate project failed", "project_load_failed",
			logging.Error(err))
		return false
	}

	logger.Info("project loaded",
		logging.String(logging.FieldEventType, "project_loaded"),
		logging.Int("applied_fields", applied),
		logging.Int("present_fields", snap.Present()))
	return true
}

func (s *Store) apply(ctx context.Context, snap *snapshot.Snapshot) (int, error) {
	applied := 0
	for _, b := range s.bindings {
		if b.apply == nil {
			continue
		}
		ok, err := b.apply(ctx, snap)
		if err != nil {
			return applied, fmt.Errorf("%s: %w", b.name, err)
		}
		if ok {
			applied++
		}
	}
	n, err := applyGeneration(ctx, s.stores.Generation, snap)
	applied += n
	if err != nil {
		return applied, fmt.Errorf("generation result: %w", err)
	}
	return applied, nil
}

// Show decodes the state file for name without applying it.
func (s *Store) Show(ctx context.Context, name string) (snapshot.Snapshot, bool) {
	logger := logging.WithContext(ctx, s.logger)
	name = strings.TrimSpace(name)
	if name == "" || !s.checkName(logger, name, "project_show_failed") {
		return snapshot.Snapshot{}, false
	}
	return s.read(ctx, logger.With(logging.String(logging.FieldProject, name)), name)
}

func (s *Store) read(_ context.Context, logger *slog.Logger, name string) (snapshot.Snapshot, bool) {
	path := s.layout.StatePath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("project state not found", logging.String(logging.FieldPath, path))
			return snapshot.Snapshot{}, false
		}
		logging.ErrorWithContext(logger, "read project state failed", "project_read_failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err))
		return snapshot.Snapshot{}, false
	}
	snap, err := snapshot.Decode(data)
	if err != nil {
		logging.ErrorWithContext(logger, "decode project state failed", "project_decode_failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "inspect or remove the corrupt state file"))
		return snapshot.Snapshot{}, false
	}
	return snap, true
}

// List returns the sorted names of project directories that hold a state
// file.
func (s *Store) List(ctx context.Context) []string {
	base := s.layout.Base()
	if base == "" {
		return []string{}
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logging.WarnWithContext(logging.WithContext(ctx, s.logger), "list projects failed", "project_list_failed",
				logging.String(logging.FieldPath, base),
				logging.Error(err),
				logging.String(logging.FieldImpact, "project list reported empty"))
		}
		return []string{}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := os.Stat(filepath.Join(base, entry.Name(), snapshot.StateFileName))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names
}

// Delete removes the project directory for name. Deleting the active project
// clears the active pointer.
func (s *Store) Delete(ctx context.Context, name string) bool {
	logger := logging.WithContext(ctx, s.logger)
	name = strings.TrimSpace(name)
	if name == "" {
		logging.WarnWithContext(logger, "delete skipped: blank project name", "project_delete_skipped",
			logging.String(logging.FieldImpact, "nothing deleted"))
		return false
	}
	if !s.checkName(logger, name, "project_delete_failed") {
		return false
	}
	logger = logger.With(logging.String(logging.FieldProject, name))

	dir := s.layout.ProjectDir(name)
	info, err := os.Lstat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("project directory not found", logging.String(logging.FieldPath, dir))
			return false
		}
		logging.ErrorWithContext(logger, "stat project directory failed", "project_delete_failed",
			logging.String(logging.FieldPath, dir),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, deleteHint(err)))
		return false
	}
	if !info.IsDir() {
		logging.ErrorWithContext(logger, "project path is not a directory", "project_delete_failed",
			logging.String(logging.FieldPath, dir),
			logging.String(logging.FieldErrorHint, "remove the stray file manually"))
		return false
	}
	if err := os.RemoveAll(dir); err != nil {
		logging.ErrorWithContext(logger, "remove project directory failed", "project_delete_failed",
			logging.String(logging.FieldPath, dir),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, deleteHint(err)))
		return false
	}

	if current, err := s.active.Active(ctx); err == nil && current == name {
		if err := s.active.Clear(ctx); err != nil {
			logging.WarnWithContext(logger, "clear active project failed", "project_context_clear_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "active project still names the deleted directory"))
		}
	}

	logger.Info("project deleted",
		logging.String(logging.FieldEventType, "project_deleted"),
		logging.String(logging.FieldPath, dir))
	return true
}

func (s *Store) checkName(logger *slog.Logger, name, eventType string) bool {
	if s.layout.Base() == "" {
		logging.ErrorWithContext(logger, "projects directory is not configured", eventType,
			logging.String(logging.FieldErrorHint, "set paths.projects_dir in the config"))
		return false
	}
	if err := validName(name); err != nil {
		logging.ErrorWithContext(logger, "invalid project name", eventType,
			logging.String(logging.FieldProject, name),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "project names cannot contain path separators"))
		return false
	}
	return true
}

func deleteHint(err error) string {
	if errors.Is(err, fs.ErrPermission) {
		return "check permissions on the project directory"
	}
	return "check the projects directory for I/O errors"
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
