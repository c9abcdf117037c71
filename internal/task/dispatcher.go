package task

import (
	"context"
	"fmt"
	"time"

	"stockd/internal/logger"
	"stockd/internal/notify"
	"stockd/internal/store"
	"stockd/internal/store/model"

	"github.com/google/uuid"
)

// HandlerFunc is one task implementation.
type HandlerFunc func(ctx context.Context) error

// Dispatcher turns pending execution records into handler invocations.
//
// Its contract is "always update, never throw past this boundary": whatever
// a handler does, the record gets a complete time and is persisted, and the
// calling trigger sees no error from an individual record.
type Dispatcher struct {
	execs    store.ExecutionRepository
	notifier notify.TextNotifier
	handlers map[model.TaskKind]HandlerFunc
	nowFn    func() time.Time
}

func NewDispatcher(execs store.ExecutionRepository, notifier notify.TextNotifier, handlers map[model.TaskKind]HandlerFunc) *Dispatcher {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Dispatcher{
		execs:    execs,
		notifier: notifier,
		handlers: handlers,
		nowFn:    time.Now,
	}
}

// RunCategory fetches all pending records of the given kinds and executes
// each in store order. Only the fetch itself can fail; record-level failures
// are recorded and notified, never returned.
func (d *Dispatcher) RunCategory(ctx context.Context, kinds ...model.TaskKind) error {
	list, err := d.execs.ListPending(ctx, kinds...)
	if err != nil {
		return fmt.Errorf("listing pending tasks failed: %w", err)
	}
	for i := range list {
		d.Execute(ctx, &list[i])
	}
	return nil
}

// Execute runs one record through its handler and persists the outcome.
func (d *Dispatcher) Execute(ctx context.Context, rec *model.TaskExecution) {
	start := d.nowFn()
	rec.StartTime = &start
	rec.State = model.TaskStateRunning
	rec.Message = ""

	trace := uuid.NewString()
	name := rec.TaskID.Name()
	logger.Debugf("task %s %d start trace=%s", name, rec.ID, trace)

	err := d.invoke(ctx, rec.TaskID)
	if err != nil {
		rec.State = model.TaskStateFailed
		rec.Message = err.Error()
		logger.Errorf("task %s %d error trace=%s: %v", name, rec.ID, trace, err)
		if nerr := d.notifier.SendText(fmt.Sprintf("task: %s, error: %s", name, err)); nerr != nil {
			logger.Warnf("task %s failure notification failed: %v", name, nerr)
		}
	} else {
		rec.State = model.TaskStateDone
	}

	complete := d.nowFn()
	rec.CompleteTime = &complete
	if uerr := d.execs.Update(ctx, rec); uerr != nil {
		logger.Errorf("task %s %d record update failed: %v", name, rec.ID, uerr)
	}
}

// invoke resolves and runs the handler. An unknown kind is a no-op, keeping
// the engine forward compatible with store rows it does not implement yet.
// A panicking handler is contained here like any other failure.
func (d *Dispatcher) invoke(ctx context.Context, kind model.TaskKind) (err error) {
	h, ok := d.handlers[kind]
	if !ok {
		logger.Debugf("task kind %d has no handler, skipping", kind)
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h(ctx)
}
