package reconcile

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"storyreel/internal/jobs"
	"storyreel/internal/logging"
	"storyreel/internal/settings"
	"storyreel/internal/snapshot"
)

// Outcome summarises one sub-protocol run.
type Outcome string

const (
	// OutcomeSkipped means no flag was set, so no job query was made.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeActive means a matching job is still enqueued or running.
	OutcomeActive Outcome = "active"
	// OutcomeCleared means stale flags were reset.
	OutcomeCleared Outcome = "cleared"
	// OutcomeFailed means a read, query, or write failed and nothing else
	// was attempted.
	OutcomeFailed Outcome = "failed"
)

// Result reports both sub-protocols of one resume.
type Result struct {
	Audio         Outcome
	Scenes        Outcome
	ScenesCleared int
}

// Options names the job tags each sub-protocol queries.
type Options struct {
	AudioTag string
	VideoTag string
}

// Reconciler runs the resume protocols against the settings stores.
type Reconciler struct {
	narration settings.Narration
	scenes    settings.Scenes
	jobs      jobs.StatusQuery
	opts      Options
	logger    *slog.Logger
}

// New builds a Reconciler.
func New(stores *settings.Stores, query jobs.StatusQuery, opts Options, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		narration: stores.Narration,
		scenes:    stores.Scenes,
		jobs:      query,
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "reconcile"),
	}
}

// Run executes both sub-protocols concurrently and waits for them.
func (r *Reconciler) Run(ctx context.Context) Result {
	var result Result
	var g errgroup.Group
	g.Go(func() error {
		result.Audio = r.reconcileAudio(ctx)
		return nil
	})
	g.Go(func() error {
		result.Scenes, result.ScenesCleared = r.reconcileScenes(ctx)
		return nil
	})
	_ = g.Wait()
	return result
}

// Start runs the reconciler in the background. The returned channel yields
// one Result and is then closed.
func (r *Reconciler) Start(ctx context.Context) <-chan Result {
	done := make(chan Result, 1)
	go func() {
		defer close(done)
		done <- r.Run(ctx)
	}()
	return done
}

func (r *Reconciler) reconcileAudio(ctx context.Context) Outcome {
	logger := logging.WithContext(ctx, r.logger).With(logging.String("protocol", "audio"))

	processing, err := r.narration.Processing.Get(ctx)
	if err != nil {
		r.warn(logger, "read audio processing flag failed", err)
		return OutcomeFailed
	}
	if !processing {
		return OutcomeSkipped
	}

	active, err := r.active(ctx, r.opts.AudioTag)
	if err != nil {
		r.warn(logger, "query audio jobs failed", err)
		return OutcomeFailed
	}
	if active {
		logger.Debug("audio job still active", logging.String("tag", r.opts.AudioTag))
		return OutcomeActive
	}

	if err := r.narration.Processing.Set(ctx, false); err != nil {
		r.warn(logger, "clear audio processing flag failed", err)
		return OutcomeFailed
	}
	if err := r.narration.ProgressText.Set(ctx, ""); err != nil {
		r.warn(logger, "clear audio progress text failed", err)
		return OutcomeFailed
	}
	if err := r.narration.Error.Set(ctx, ""); err != nil {
		r.warn(logger, "clear audio error failed", err)
		return OutcomeFailed
	}

	logger.Info("cleared stale audio processing state",
		logging.String(logging.FieldEventType, "reconcile_audio_cleared"),
		logging.String("tag", r.opts.AudioTag))
	return OutcomeCleared
}

func (r *Reconciler) reconcileScenes(ctx context.Context) (Outcome, int) {
	logger := logging.WithContext(ctx, r.logger).With(logging.String("protocol", "scenes"))

	text, err := r.scenes.LinksJSON.Get(ctx)
	if err != nil {
		r.warn(logger, "read scene list failed", err)
		return OutcomeFailed, 0
	}
	list, err := snapshot.DecodeSceneList(text)
	if err != nil {
		r.warn(logger, "decode scene list failed", err)
		return OutcomeFailed, 0
	}

	busy := 0
	for i := 0; i < list.Len(); i++ {
		if list.At(i).Busy() {
			busy++
		}
	}
	if busy == 0 {
		return OutcomeSkipped, 0
	}

	active, err := r.active(ctx, r.opts.VideoTag)
	if err != nil {
		r.warn(logger, "query video jobs failed", err)
		return OutcomeFailed, 0
	}
	if active {
		logger.Debug("video job still active",
			logging.String("tag", r.opts.VideoTag),
			logging.Int("busy_scenes", busy))
		return OutcomeActive, 0
	}

	cleared := 0
	for i := 0; i < list.Len(); i++ {
		scene := list.At(i)
		if !scene.Busy() {
			continue
		}
		list = list.Replace(i, scene.Cleared())
		cleared++
	}
	if !list.Changed() {
		return OutcomeSkipped, 0
	}

	encoded, err := list.Encode()
	if err != nil {
		r.warn(logger, "encode scene list failed", err)
		return OutcomeFailed, 0
	}
	if err := r.scenes.LinksJSON.Set(ctx, encoded); err != nil {
		r.warn(logger, "write scene list failed", err)
		return OutcomeFailed, 0
	}

	logger.Info("cleared stale scene state",
		logging.String(logging.FieldEventType, "reconcile_scenes_cleared"),
		logging.String("tag", r.opts.VideoTag),
		logging.Int("scenes_cleared", cleared))
	return OutcomeCleared, cleared
}

func (r *Reconciler) active(ctx context.Context, tag string) (bool, error) {
	list, err := r.jobs.Query(ctx, tag)
	if err != nil {
		return false, err
	}
	return jobs.AnyActive(list), nil
}

func (r *Reconciler) warn(logger *slog.Logger, msg string, err error) {
	logging.WarnWithContext(logger, msg, "reconcile_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "state is left untouched until the next resume"),
		logging.String(logging.FieldImpact, "stale processing flags may remain visible"))
}
