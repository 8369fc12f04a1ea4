package reconcile_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"storyreel/internal/jobs"
	"storyreel/internal/logging"
	"storyreel/internal/reconcile"
	"storyreel/internal/snapshot"
	"storyreel/internal/testsupport"
)

const (
	audioTag = "narration_audio"
	videoTag = "video_processing"
)

var opts = reconcile.Options{AudioTag: audioTag, VideoTag: videoTag}

func TestIdleStateMakesNoQueriesOrWrites(t *testing.T) {
	stores, backend := testsupport.NewMemoryStores()
	query := jobs.NewStatic()

	result := reconcile.New(stores, query, opts, logging.NewNop()).Run(context.Background())

	if result.Audio != reconcile.OutcomeSkipped || result.Scenes != reconcile.OutcomeSkipped {
		t.Fatalf("unexpected result: %+v", result)
	}
	if query.Calls(audioTag) != 0 || query.Calls(videoTag) != 0 {
		t.Fatal("idle state must not query jobs")
	}
	if backend.Writes() != 0 {
		t.Fatalf("idle state must not write, got %d", backend.Writes())
	}
}

func TestAudioClearedWhenNoActiveJob(t *testing.T) {
	ctx := context.Background()
	stores, backend := testsupport.NewMemoryStores()
	_ = stores.Narration.Processing.Set(ctx, true)
	_ = stores.Narration.ProgressText.Set(ctx, "Synthesizing 40%")
	_ = stores.Narration.Error.Set(ctx, "timeout")
	before := backend.Writes()

	query := jobs.NewStatic(
		jobs.Job{ID: "1", Tag: audioTag, State: jobs.StateFailed},
		jobs.Job{ID: "2", Tag: audioTag, State: jobs.StateSucceeded},
	)
	result := reconcile.New(stores, query, opts, logging.NewNop()).Run(ctx)

	if result.Audio != reconcile.OutcomeCleared {
		t.Fatalf("audio outcome: %s", result.Audio)
	}
	if processing, _ := stores.Narration.Processing.Get(ctx); processing {
		t.Fatal("processing flag should be cleared")
	}
	if text, _ := stores.Narration.ProgressText.Get(ctx); text != "" {
		t.Fatalf("progress text should be cleared, got %q", text)
	}
	if msg, _ := stores.Narration.Error.Get(ctx); msg != "" {
		t.Fatalf("error should be cleared, got %q", msg)
	}
	if backend.Writes()-before != 3 {
		t.Fatalf("expected three writes, got %d", backend.Writes()-before)
	}
}

func TestAudioLeftAloneWhileJobActive(t *testing.T) {
	for _, state := range []jobs.State{jobs.StateEnqueued, jobs.StateRunning} {
		t.Run(string(state), func(t *testing.T) {
			ctx := context.Background()
			stores, backend := testsupport.NewMemoryStores()
			_ = stores.Narration.Processing.Set(ctx, true)
			before := backend.Writes()

			query := jobs.NewStatic(
				jobs.Job{ID: "1", Tag: audioTag, State: jobs.StateFailed},
				jobs.Job{ID: "2", Tag: audioTag, State: state},
			)
			result := reconcile.New(stores, query, opts, logging.NewNop()).Run(ctx)

			if result.Audio != reconcile.OutcomeActive {
				t.Fatalf("audio outcome: %s", result.Audio)
			}
			if backend.Writes() != before {
				t.Fatal("active job must not trigger writes")
			}
		})
	}
}

func TestAudioQueryErrorIsNoop(t *testing.T) {
	ctx := context.Background()
	stores, backend := testsupport.NewMemoryStores()
	_ = stores.Narration.Processing.Set(ctx, true)
	before := backend.Writes()

	query := jobs.NewStatic()
	query.Fail(audioTag, errors.New("scheduler unavailable"))
	result := reconcile.New(stores, query, opts, logging.NewNop()).Run(ctx)

	if result.Audio != reconcile.OutcomeFailed {
		t.Fatalf("audio outcome: %s", result.Audio)
	}
	if processing, _ := stores.Narration.Processing.Get(ctx); !processing {
		t.Fatal("flag must stay set when the query fails")
	}
	if backend.Writes() != before {
		t.Fatal("failed query must not trigger writes")
	}
}

const idleScene = `{"id":"s0","sceneIndex":0,"prompt":"quay","imagePath":"/img/0.png","videoPath":"/vid/0.mp4","clothesImagePath":"","isGenerating":false,"isChangingClothes":false,"isGeneratingVideo":false,"generationAttempt":1,"videoGenerationAttempt":0,"errorMessage":"","caption":"kept"}`

const busyScene = `{"id":"s1","sceneIndex":1,"prompt":"pier","isGeneratingVideo":true,"videoGenerationAttempt":2,"errorMessage":"gpu lost","thumbnail":"/thumb/1.png"}`

func TestScenesClearOnlyBusyEntries(t *testing.T) {
	ctx := context.Background()
	stores, _ := testsupport.NewMemoryStores()
	_ = stores.Scenes.LinksJSON.Set(ctx, "["+idleScene+","+busyScene+"]")

	query := jobs.NewStatic(jobs.Job{ID: "v", Tag: videoTag, State: jobs.StateCancelled})
	result := reconcile.New(stores, query, opts, logging.NewNop()).Run(ctx)

	if result.Scenes != reconcile.OutcomeCleared || result.ScenesCleared != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
	text, _ := stores.Scenes.LinksJSON.Get(ctx)
	if !strings.Contains(text, idleScene) {
		t.Fatalf("idle scene bytes must be preserved, got %s", text)
	}
	if !strings.Contains(text, `"thumbnail":"/thumb/1.png"`) {
		t.Fatalf("unknown fields of cleared scene must survive, got %s", text)
	}

	links, err := snapshot.DecodeSceneLinks(text)
	if err != nil {
		t.Fatalf("DecodeSceneLinks: %v", err)
	}
	cleared := links[1]
	if cleared.Busy() || cleared.VideoGenerationAttempt != 0 || cleared.ErrorMessage != "" {
		t.Fatalf("busy scene not cleared: %+v", cleared)
	}
	if cleared.Prompt != "pier" {
		t.Fatalf("non-flag fields must be kept, got %+v", cleared)
	}
	if links[0].GenerationAttempt != 1 {
		t.Fatalf("idle scene counters must be untouched, got %+v", links[0])
	}
}

func TestScenesStayClearedAcrossResumes(t *testing.T) {
	ctx := context.Background()
	stores, backend := testsupport.NewMemoryStores()
	_ = stores.Scenes.LinksJSON.Set(ctx, `[{"id":"a","isgenerating":true,"GenerationAttempt":2}]`)
	reconciler := reconcile.New(stores, jobs.NewStatic(), opts, logging.NewNop())

	if result := reconciler.Run(ctx); result.Scenes != reconcile.OutcomeCleared {
		t.Fatalf("first resume: %+v", result)
	}
	after := backend.Writes()
	for i := range 2 {
		if result := reconciler.Run(ctx); result.Scenes != reconcile.OutcomeSkipped {
			t.Fatalf("resume %d should find nothing busy, got %+v", i+2, result)
		}
	}
	if backend.Writes() != after {
		t.Fatal("later resumes must not rewrite scenes")
	}
}

func TestScenesLeftAloneWhileVideoJobActive(t *testing.T) {
	ctx := context.Background()
	stores, backend := testsupport.NewMemoryStores()
	_ = stores.Scenes.LinksJSON.Set(ctx, "["+busyScene+"]")
	before := backend.Writes()

	query := jobs.NewStatic(jobs.Job{ID: "v", Tag: videoTag, State: jobs.StateRunning})
	result := reconcile.New(stores, query, opts, logging.NewNop()).Run(ctx)

	if result.Scenes != reconcile.OutcomeActive {
		t.Fatalf("scene outcome: %s", result.Scenes)
	}
	if backend.Writes() != before {
		t.Fatal("active video job must not trigger writes")
	}
}

func TestScenesWithoutBusyFlagsSkipQuery(t *testing.T) {
	ctx := context.Background()
	stores, backend := testsupport.NewMemoryStores()
	_ = stores.Scenes.LinksJSON.Set(ctx, "["+idleScene+"]")
	before := backend.Writes()

	query := jobs.NewStatic()
	result := reconcile.New(stores, query, opts, logging.NewNop()).Run(ctx)

	if result.Scenes != reconcile.OutcomeSkipped || query.Calls(videoTag) != 0 {
		t.Fatalf("unexpected result %+v with %d queries", result, query.Calls(videoTag))
	}
	if backend.Writes() != before {
		t.Fatal("idle scenes must not be rewritten")
	}
}

func TestSubProtocolsAreIndependent(t *testing.T) {
	ctx := context.Background()
	stores, _ := testsupport.NewMemoryStores()
	_ = stores.Narration.Processing.Set(ctx, true)
	_ = stores.Scenes.LinksJSON.Set(ctx, "not json")

	result := reconcile.New(stores, jobs.NewStatic(), opts, logging.NewNop()).Run(ctx)

	if result.Scenes != reconcile.OutcomeFailed {
		t.Fatalf("scene outcome: %s", result.Scenes)
	}
	if result.Audio != reconcile.OutcomeCleared {
		t.Fatalf("audio must still be reconciled, got %s", result.Audio)
	}
}

func TestStartSignalsCompletion(t *testing.T) {
	stores, _ := testsupport.NewMemoryStores()
	done := reconcile.New(stores, jobs.NewStatic(), opts, logging.NewNop()).Start(context.Background())

	select {
	case result, ok := <-done:
		if !ok || result.Audio != reconcile.OutcomeSkipped {
			t.Fatalf("unexpected first receive: %+v ok=%v", result, ok)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("reconciler did not complete")
	}
	if _, ok := <-done; ok {
		t.Fatal("channel should be closed after the result")
	}
}
