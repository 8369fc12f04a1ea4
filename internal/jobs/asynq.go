package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"
)

const inspectPageSize = 100

// DefaultQueue is the asynq queue Enqueue targets when none is given.
const DefaultQueue = "default"

// inspector is the slice of *asynq.Inspector the adapter reads from.
type inspector interface {
	Queues() ([]string, error)
	ListPendingTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
	ListActiveTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
	ListScheduledTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
	ListRetryTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
	ListArchivedTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
	ListCompletedTasks(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)
	Close() error
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// AsynqOptions locates the Redis deployment behind asynq.
type AsynqOptions struct {
	Addr     string
	Password string
	DB       int
}

func (o AsynqOptions) redis() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: o.Addr, Password: o.Password, DB: o.DB}
}

// Asynq answers job queries by inspecting every asynq queue. The job tag is
// the asynq task type.
type Asynq struct {
	inspector inspector
	client    enqueuer
}

// NewAsynq connects an inspector and client to the configured Redis.
func NewAsynq(opts AsynqOptions) *Asynq {
	return &Asynq{
		inspector: asynq.NewInspector(opts.redis()),
		client:    asynq.NewClient(opts.redis()),
	}
}

type listFunc func(queue string, opts ...asynq.ListOption) ([]*asynq.TaskInfo, error)

func (a *Asynq) Query(ctx context.Context, tag string) ([]Job, error) {
	queues, err := a.inspector.Queues()
	if err != nil {
		return nil, fmt.Errorf("list asynq queues: %w", err)
	}
	listers := []listFunc{
		a.inspector.ListPendingTasks,
		a.inspector.ListActiveTasks,
		a.inspector.ListScheduledTasks,
		a.inspector.ListRetryTasks,
		a.inspector.ListArchivedTasks,
		a.inspector.ListCompletedTasks,
	}

	var out []Job
	for _, queue := range queues {
		for _, list := range listers {
			tasks, err := collect(ctx, queue, list)
			if err != nil {
				return nil, fmt.Errorf("inspect asynq queue %s: %w", queue, err)
			}
			for _, task := range tasks {
				if task.Type != tag {
					continue
				}
				out = append(out, jobFromTask(task))
			}
		}
	}
	return out, nil
}

func collect(ctx context.Context, queue string, list listFunc) ([]*asynq.TaskInfo, error) {
	var all []*asynq.TaskInfo
	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		tasks, err := list(queue, asynq.PageSize(inspectPageSize), asynq.Page(page))
		if err != nil {
			return nil, err
		}
		all = append(all, tasks...)
		if len(tasks) < inspectPageSize {
			return all, nil
		}
	}
}

func jobFromTask(task *asynq.TaskInfo) Job {
	job := Job{ID: task.ID, Tag: task.Type, State: stateFromAsynq(task.State)}
	switch {
	case !task.CompletedAt.IsZero():
		job.UpdatedAt = task.CompletedAt
	case !task.LastFailedAt.IsZero():
		job.UpdatedAt = task.LastFailedAt
	case !task.NextProcessAt.IsZero():
		job.UpdatedAt = task.NextProcessAt
	}
	return job
}

func stateFromAsynq(state asynq.TaskState) State {
	switch state {
	case asynq.TaskStateActive:
		return StateRunning
	case asynq.TaskStateCompleted:
		return StateSucceeded
	case asynq.TaskStateArchived:
		return StateFailed
	default:
		// pending, scheduled, retry and aggregating tasks will still run.
		return StateEnqueued
	}
}

// Enqueue submits a task of type tag with payload to queue.
func (a *Asynq) Enqueue(ctx context.Context, tag string, payload []byte, queue string) (Job, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return Job{}, errors.New("job tag is required")
	}
	if strings.TrimSpace(queue) == "" {
		queue = DefaultQueue
	}
	task := asynq.NewTask(tag, payload,
		asynq.Queue(queue),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour),
	)
	info, err := a.client.EnqueueContext(ctx, task)
	if err != nil {
		return Job{}, fmt.Errorf("enqueue %s: %w", tag, err)
	}
	return jobFromTask(info), nil
}

// Ping checks that Redis answers.
func (a *Asynq) Ping(context.Context) error {
	if _, err := a.inspector.Queues(); err != nil {
		return fmt.Errorf("ping asynq: %w", err)
	}
	return nil
}

// Close releases the Redis connections.
func (a *Asynq) Close() error {
	return errors.Join(a.inspector.Close(), a.client.Close())
}
