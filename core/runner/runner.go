package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"deck-sync/core/record"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// MessageKind tags a task notification.
type MessageKind int

const (
	// MessageResult carries the records a task extracted.
	MessageResult MessageKind = iota
	// MessageError carries a human-readable task failure.
	MessageError
	// MessageFinished is sent once per task, after its result or error.
	MessageFinished
)

func (k MessageKind) String() string {
	switch k {
	case MessageResult:
		return "result"
	case MessageError:
		return "error"
	case MessageFinished:
		return "finished"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Message is a notification sent by a running task.
type Message struct {
	Kind       MessageKind
	Collection string
	Records    []record.Record
	Err        string
}

// Task is one unit of extraction work.
type Task struct {
	// Collection is the target collection the records belong to.
	Collection string
	// Name identifies the task in logs and error messages.
	Name string
	// Run produces the records.
	Run func(ctx context.Context) ([]record.Record, error)
}

// SourceFailure is implemented by errors attributed to a single source.
// Their message is reported as is.
type SourceFailure interface {
	error
	FailedSource() string
}

// Runner runs tasks on a bounded set of goroutines.
type Runner struct {
	sem    *semaphore.Weighted
	wg     sync.WaitGroup
	logger *zap.Logger
}

// New creates a runner allowing at most workers concurrent tasks.
// A value of zero or less means no limit.
func New(workers int, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runner{logger: logger}
	if workers > 0 {
		r.sem = semaphore.NewWeighted(int64(workers))
	}
	return r
}

// Submit schedules task and returns immediately. Notifications are sent to out.
// The caller must keep receiving from out until the Finished message arrives.
func (r *Runner) Submit(ctx context.Context, task Task, out chan<- Message) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			out <- Message{Kind: MessageFinished, Collection: task.Collection}
		}()

		if r.sem != nil {
			if err := r.sem.Acquire(ctx, 1); err != nil {
				out <- r.failure(task, err)
				return
			}
			defer r.sem.Release(1)
		}

		records, err := r.run(ctx, task)
		if err != nil {
			out <- r.failure(task, err)
			return
		}

		r.logger.Debug("Task completed",
			zap.String("task", task.Name),
			zap.String("collection", task.Collection),
			zap.Int("records", len(records)),
		)
		out <- Message{Kind: MessageResult, Collection: task.Collection, Records: records}
	}()
}

// Wait blocks until every submitted task has sent its Finished message.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, task Task) (records []record.Record, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return task.Run(ctx)
}

func (r *Runner) failure(task Task, err error) Message {
	msg := fmt.Sprintf("extract %s: %v", task.Name, err)
	var sf SourceFailure
	if errors.As(err, &sf) {
		msg = sf.Error()
	}

	r.logger.Warn("Task failed",
		zap.String("task", task.Name),
		zap.String("collection", task.Collection),
		zap.Error(err),
	)
	return Message{Kind: MessageError, Collection: task.Collection, Err: msg}
}
