// Package sched drives the task engine off wall-clock triggers. Each trigger
// runs its own timer loop; a fire seeds pending execution records and hands
// them to the dispatcher.
package sched

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"stockd/internal/logger"
	"stockd/internal/store"
	"stockd/internal/store/model"
	"stockd/internal/task"
)

// Gate decides whether a trigger may fire at a given instant.
type Gate interface {
	IsBusinessDate(t time.Time) bool
	IsBusinessTime(t time.Time) bool
	Location() *time.Location
}

// Trigger is one schedule entry.
type Trigger struct {
	Name string
	Next NextFunc
	// Allow gates each fire; nil fires unconditionally.
	Allow func(now time.Time) bool
	Fire  func(ctx context.Context) error
}

// Runner owns the trigger loops.
type Runner struct {
	execs      store.ExecutionRepository
	dispatcher *task.Dispatcher
	triggers   []Trigger
	nowFn      func() time.Time
}

func NewRunner(execs store.ExecutionRepository, dispatcher *task.Dispatcher) *Runner {
	return &Runner{
		execs:      execs,
		dispatcher: dispatcher,
		nowFn:      time.Now,
	}
}

// Add registers a trigger. Not safe once Run has started.
func (r *Runner) Add(t Trigger) {
	r.triggers = append(r.triggers, t)
}

// AddCategory registers a trigger that seeds one pending execution record
// per kind, then runs everything pending for those kinds.
func (r *Runner) AddCategory(name string, next NextFunc, allow func(time.Time) bool, kinds ...model.TaskKind) {
	r.Add(Trigger{
		Name:  name,
		Next:  next,
		Allow: allow,
		Fire: func(ctx context.Context) error {
			return r.runCategory(ctx, kinds...)
		},
	})
}

// CategoryFire returns a fire function for the given kinds, for triggers
// that decide on their own when to run a category.
func (r *Runner) CategoryFire(kinds ...model.TaskKind) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return r.runCategory(ctx, kinds...)
	}
}

func (r *Runner) runCategory(ctx context.Context, kinds ...model.TaskKind) error {
	for _, kind := range kinds {
		rec := model.TaskExecution{TaskID: kind, State: model.TaskStatePending}
		if err := r.execs.Create(ctx, &rec); err != nil {
			return err
		}
	}
	return r.dispatcher.RunCategory(ctx, kinds...)
}

// Run starts every trigger loop and blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := range r.triggers {
		t := r.triggers[i]
		g.Go(func() error {
			r.loop(ctx, t)
			return nil
		})
	}
	return g.Wait()
}

func (r *Runner) loop(ctx context.Context, t Trigger) {
	logger.Infof("trigger %s: started", t.Name)
	for {
		now := r.nowFn()
		at := t.Next(now)
		wait := at.Sub(now)
		if wait < 0 {
			wait = 0
		}
		logger.Debugf("trigger %s: 下次执行=%s (in %s)", t.Name, at.Format(time.RFC3339), wait.Truncate(time.Second))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Infof("trigger %s: ctx done, exit", t.Name)
			return
		case <-timer.C:
		}

		fireAt := r.nowFn()
		if t.Allow != nil && !t.Allow(fireAt) {
			continue
		}
		if err := t.Fire(ctx); err != nil {
			logger.Errorf("trigger %s: %v", t.Name, err)
		}
	}
}
