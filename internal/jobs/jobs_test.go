package jobs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	"storyreel/internal/database"
)

func TestStateActive(t *testing.T) {
	tests := []struct {
		state  State
		active bool
	}{
		{StateEnqueued, true},
		{StateRunning, true},
		{StateSucceeded, false},
		{StateFailed, false},
		{StateCancelled, false},
	}
	for _, tc := range tests {
		if got := tc.state.Active(); got != tc.active {
			t.Errorf("%s.Active() = %v, want %v", tc.state, got, tc.active)
		}
	}
}

func TestParseState(t *testing.T) {
	if got, err := ParseState(" Running "); err != nil || got != StateRunning {
		t.Fatalf("ParseState running: %q (%v)", got, err)
	}
	if _, err := ParseState("paused"); err == nil {
		t.Fatal("expected error for unknown state")
	}
}

func TestAnyActive(t *testing.T) {
	if AnyActive(nil) {
		t.Fatal("empty list must not be active")
	}
	list := []Job{{State: StateFailed}, {State: StateSucceeded}}
	if AnyActive(list) {
		t.Fatal("terminal jobs must not be active")
	}
	list = append(list, Job{State: StateEnqueued})
	if !AnyActive(list) {
		t.Fatal("enqueued job must be active")
	}
}

func TestStaticCountsCallsAndReturnsErrors(t *testing.T) {
	ctx := context.Background()
	static := NewStatic(Job{ID: "a", Tag: "narration_audio", State: StateRunning})
	static.Put(Job{ID: "b", Tag: "video_processing", State: StateFailed})

	list, err := static.Query(ctx, "narration_audio")
	if err != nil || len(list) != 1 || list[0].ID != "a" {
		t.Fatalf("unexpected query result: %+v (%v)", list, err)
	}
	boom := errors.New("scheduler unavailable")
	static.Fail("video_processing", boom)
	if _, err := static.Query(ctx, "video_processing"); !errors.Is(err, boom) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if static.Calls("narration_audio") != 1 || static.Calls("video_processing") != 1 {
		t.Fatalf("unexpected call counts")
	}
}

func TestLedgerRecordAndQuery(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "fields.db"))
	if err != nil {
		t.Fatalf("database.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ledger := NewLedger(db)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ledger.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	first, err := ledger.Record(ctx, Job{Tag: "narration_audio", State: StateEnqueued})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected generated id")
	}
	if _, err := ledger.Record(ctx, Job{ID: "fixed", Tag: "narration_audio", State: StateRunning}); err != nil {
		t.Fatalf("Record fixed: %v", err)
	}
	if _, err := ledger.Record(ctx, Job{Tag: "video_processing", State: StateRunning}); err != nil {
		t.Fatalf("Record video: %v", err)
	}

	first.State = StateSucceeded
	if _, err := ledger.Record(ctx, first); err != nil {
		t.Fatalf("Record update: %v", err)
	}

	list, err := ledger.Query(ctx, "narration_audio")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 audio jobs, got %d", len(list))
	}
	if list[0].ID != first.ID || list[0].State != StateSucceeded {
		t.Fatalf("expected updated first job, got %+v", list[0])
	}
	if list[1].ID != "fixed" || list[1].State != StateRunning {
		t.Fatalf("unexpected second job: %+v", list[1])
	}
	if !AnyActive(list) {
		t.Fatal("running job should keep tag active")
	}

	if _, err := ledger.Record(ctx, Job{Tag: "narration_audio", State: "paused"}); err == nil {
		t.Fatal("expected invalid state rejection")
	}
	if _, err := ledger.Record(ctx, Job{State: StateRunning}); err == nil {
		t.Fatal("expected missing tag rejection")
	}
	if err := ledger.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

type fakeInspector struct {
	queues []string
	tasks  map[string]map[asynq.TaskState][]*asynq.TaskInfo
	err    error
}

func (f *fakeInspector) Queues() ([]string, error) { return f.queues, f.err }

func (f *fakeInspector) list(state asynq.TaskState) listFunc {
	return func(queue string, _ ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
		return f.tasks[queue][state], nil
	}
}

func (f *fakeInspector) ListPendingTasks(q string, o ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return f.list(asynq.TaskStatePending)(q, o...)
}

func (f *fakeInspector) ListActiveTasks(q string, o ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return f.list(asynq.TaskStateActive)(q, o...)
}

func (f *fakeInspector) ListScheduledTasks(q string, o ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return f.list(asynq.TaskStateScheduled)(q, o...)
}

func (f *fakeInspector) ListRetryTasks(q string, o ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return f.list(asynq.TaskStateRetry)(q, o...)
}

func (f *fakeInspector) ListArchivedTasks(q string, o ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return f.list(asynq.TaskStateArchived)(q, o...)
}

func (f *fakeInspector) ListCompletedTasks(q string, o ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
	return f.list(asynq.TaskStateCompleted)(q, o...)
}

func (f *fakeInspector) Close() error { return nil }

func task(id, typ string, state asynq.TaskState) *asynq.TaskInfo {
	return &asynq.TaskInfo{ID: id, Type: typ, State: state}
}

func TestAsynqQueryMapsStatesAcrossQueues(t *testing.T) {
	fake := &fakeInspector{
		queues: []string{"default", "critical"},
		tasks: map[string]map[asynq.TaskState][]*asynq.TaskInfo{
			"default": {
				asynq.TaskStatePending:   {task("p1", "video_processing", asynq.TaskStatePending)},
				asynq.TaskStateCompleted: {task("c1", "video_processing", asynq.TaskStateCompleted)},
				asynq.TaskStateActive:    {task("a1", "narration_audio", asynq.TaskStateActive)},
			},
			"critical": {
				asynq.TaskStateArchived: {task("x1", "video_processing", asynq.TaskStateArchived)},
				asynq.TaskStateRetry:    {task("r1", "video_processing", asynq.TaskStateRetry)},
			},
		},
	}
	adapter := &Asynq{inspector: fake}

	list, err := adapter.Query(context.Background(), "video_processing")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	got := make(map[string]State, len(list))
	for _, job := range list {
		if job.Tag != "video_processing" {
			t.Fatalf("unexpected tag %q", job.Tag)
		}
		got[job.ID] = job.State
	}
	want := map[string]State{
		"p1": StateEnqueued,
		"c1": StateSucceeded,
		"x1": StateFailed,
		"r1": StateEnqueued,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for id, state := range want {
		if got[id] != state {
			t.Errorf("job %s: got %s, want %s", id, got[id], state)
		}
	}
}

func TestAsynqQueryPropagatesInspectorErrors(t *testing.T) {
	adapter := &Asynq{inspector: &fakeInspector{err: errors.New("redis down")}}
	if _, err := adapter.Query(context.Background(), "narration_audio"); err == nil {
		t.Fatal("expected error")
	}
	if err := adapter.Ping(context.Background()); err == nil {
		t.Fatal("expected ping error")
	}
}

func TestCollectPaginates(t *testing.T) {
	calls := 0
	list := func(_ string, _ ...asynq.ListOption) ([]*asynq.TaskInfo, error) {
		calls++
		if calls == 1 {
			return make([]*asynq.TaskInfo, inspectPageSize), nil
		}
		return []*asynq.TaskInfo{task("tail", "video_processing", asynq.TaskStatePending)}, nil
	}
	tasks, err := collect(context.Background(), "default", list)
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if calls != 2 || len(tasks) != inspectPageSize+1 {
		t.Fatalf("expected two pages, got calls=%d tasks=%d", calls, len(tasks))
	}
}

func TestStateFromAsynq(t *testing.T) {
	tests := map[asynq.TaskState]State{
		asynq.TaskStatePending:     StateEnqueued,
		asynq.TaskStateScheduled:   StateEnqueued,
		asynq.TaskStateRetry:       StateEnqueued,
		asynq.TaskStateAggregating: StateEnqueued,
		asynq.TaskStateActive:      StateRunning,
		asynq.TaskStateCompleted:   StateSucceeded,
		asynq.TaskStateArchived:    StateFailed,
	}
	for in, want := range tests {
		if got := stateFromAsynq(in); got != want {
			t.Errorf("stateFromAsynq(%v) = %s, want %s", in, got, want)
		}
	}
}

type fakeClient struct {
	tasks []*asynq.Task
}

func (f *fakeClient) EnqueueContext(_ context.Context, t *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, t)
	return &asynq.TaskInfo{ID: "new", Queue: DefaultQueue, Type: t.Type(), State: asynq.TaskStatePending}, nil
}

func (f *fakeClient) Close() error { return nil }

func TestAsynqEnqueue(t *testing.T) {
	client := &fakeClient{}
	adapter := &Asynq{inspector: &fakeInspector{}, client: client}

	job, err := adapter.Enqueue(context.Background(), "narration_audio", []byte(`{"project":"alpha"}`), "")
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if job.ID != "new" || job.Tag != "narration_audio" || job.State != StateEnqueued {
		t.Fatalf("unexpected job: %+v", job)
	}
	if len(client.tasks) != 1 || string(client.tasks[0].Payload()) != `{"project":"alpha"}` {
		t.Fatalf("unexpected enqueued tasks: %d", len(client.tasks))
	}
	if _, err := adapter.Enqueue(context.Background(), " ", nil, ""); err == nil {
		t.Fatal("expected blank tag rejection")
	}
	if err := adapter.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}
