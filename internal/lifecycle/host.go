package lifecycle

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"storyreel/internal/logging"
	"storyreel/internal/reconcile"
)

// Projects is the project store surface driven by the host.
type Projects interface {
	Active(ctx context.Context) string
	Save(ctx context.Context) bool
	Load(ctx context.Context, name string) bool
	Create(ctx context.Context, name string) bool
	Delete(ctx context.Context, name string) bool
	List(ctx context.Context) []string
}

// Reconciler starts one resume reconciliation.
type Reconciler interface {
	Start(ctx context.Context) <-chan reconcile.Result
}

// Host receives lifecycle events and user actions.
type Host struct {
	mu         sync.Mutex
	projects   Projects
	reconciler Reconciler
	logger     *slog.Logger
}

// New builds a Host.
func New(projects Projects, reconciler Reconciler, logger *slog.Logger) *Host {
	return &Host{
		projects:   projects,
		reconciler: reconciler,
		logger:     logging.NewComponentLogger(logger, "lifecycle"),
	}
}

func (h *Host) begin(ctx context.Context, event string) (context.Context, *slog.Logger) {
	ctx = logging.WithRunID(ctx, uuid.NewString())
	logger := logging.WithContext(ctx, h.logger)
	logger.Debug("lifecycle event", logging.String(logging.FieldEventType, event))
	return ctx, logger
}

// OnForegroundResume starts reconciliation. The channel yields one Result
// and is then closed. Reconciliation holds the host lock until it finishes,
// so it never interleaves with a load, switch or save.
func (h *Host) OnForegroundResume(ctx context.Context) <-chan reconcile.Result {
	ctx, _ = h.begin(ctx, "foreground_resume")
	done := make(chan reconcile.Result, 1)
	go func() {
		defer close(done)
		h.mu.Lock()
		defer h.mu.Unlock()
		if result, ok := <-h.reconciler.Start(ctx); ok {
			done <- result
		}
	}()
	return done
}

// OnBackground saves the active project. The channel yields the save
// outcome and is then closed.
func (h *Host) OnBackground(ctx context.Context) <-chan bool {
	ctx, _ = h.begin(ctx, "background")
	done := make(chan bool, 1)
	go func() {
		defer close(done)
		done <- h.save(ctx)
	}()
	return done
}

// Save persists the active project.
func (h *Host) Save(ctx context.Context) bool {
	ctx, _ = h.begin(ctx, "save")
	return h.save(ctx)
}

func (h *Host) save(ctx context.Context) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.projects.Save(ctx)
}

// Load applies name without saving the current project first.
func (h *Host) Load(ctx context.Context, name string) bool {
	ctx, _ = h.begin(ctx, "load")
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.projects.Load(ctx, name)
}

// Switch saves the active project, if any, then loads name.
func (h *Host) Switch(ctx context.Context, name string) bool {
	ctx, logger := h.begin(ctx, "switch")
	h.mu.Lock()
	defer h.mu.Unlock()

	if current := h.projects.Active(ctx); current != "" && current != name {
		if !h.projects.Save(ctx) {
			logging.WarnWithContext(logger, "save before switch failed", "project_switch_save_failed",
				logging.String("from", current),
				logging.String("to", name),
				logging.String(logging.FieldImpact, "unsaved changes to the previous project may be lost"))
		}
	}
	return h.projects.Load(ctx, name)
}

// Create saves the active project, if any, then starts name fresh.
func (h *Host) Create(ctx context.Context, name string) bool {
	ctx, logger := h.begin(ctx, "create")
	h.mu.Lock()
	defer h.mu.Unlock()

	if current := h.projects.Active(ctx); current != "" {
		if !h.projects.Save(ctx) {
			logging.WarnWithContext(logger, "save before create failed", "project_create_save_failed",
				logging.String("from", current),
				logging.String(logging.FieldImpact, "unsaved changes to the previous project may be lost"))
		}
	}
	return h.projects.Create(ctx, name)
}

// Delete removes name.
func (h *Host) Delete(ctx context.Context, name string) bool {
	ctx, _ = h.begin(ctx, "delete")
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.projects.Delete(ctx, name)
}

// List returns the saved project names.
func (h *Host) List(ctx context.Context) []string {
	return h.projects.List(ctx)
}
