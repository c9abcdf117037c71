package task

import (
	"context"
	"errors"
	"testing"

	"stockd/internal/store/model"

	"github.com/stretchr/testify/assert"
)

func TestDispatcherRecordFailureIsolated(t *testing.T) {
	execs := &memExecs{}
	notifier := &fakeNotifier{}
	handlers := map[model.TaskKind]HandlerFunc{
		model.TaskBeginOfDay: func(context.Context) error { return errors.New("boom") },
		model.TaskTicker:     func(context.Context) error { return nil },
	}
	d := NewDispatcher(execs, notifier, handlers)

	ctx := context.Background()
	bad := model.TaskExecution{TaskID: model.TaskBeginOfDay}
	good := model.TaskExecution{TaskID: model.TaskTicker}
	assert.NoError(t, execs.Create(ctx, &bad))
	assert.NoError(t, execs.Create(ctx, &good))

	err := d.RunCategory(ctx, model.TaskBeginOfDay, model.TaskTicker)
	assert.NoError(t, err, "record failures must not escape the dispatcher")

	badRec := execs.byID(bad.ID)
	assert.Equal(t, model.TaskStateFailed, badRec.State)
	assert.Equal(t, "boom", badRec.Message)
	assert.NotNil(t, badRec.StartTime)
	assert.NotNil(t, badRec.CompleteTime)

	goodRec := execs.byID(good.ID)
	assert.Equal(t, model.TaskStateDone, goodRec.State)
	assert.Empty(t, goodRec.Message)
	assert.NotNil(t, goodRec.CompleteTime)

	if assert.Len(t, notifier.sent, 1) {
		assert.Contains(t, notifier.sent[0], "task: beginOfDay")
		assert.Contains(t, notifier.sent[0], "boom")
	}
}

func TestDispatcherUnknownKindIsNoop(t *testing.T) {
	execs := &memExecs{}
	d := NewDispatcher(execs, nil, map[model.TaskKind]HandlerFunc{})

	ctx := context.Background()
	rec := model.TaskExecution{TaskID: model.TaskKind(99)}
	assert.NoError(t, execs.Create(ctx, &rec))

	d.Execute(ctx, &rec)
	assert.Equal(t, model.TaskStateDone, rec.State)
	assert.NotNil(t, rec.CompleteTime)
}

func TestDispatcherContainsPanics(t *testing.T) {
	execs := &memExecs{}
	notifier := &fakeNotifier{}
	handlers := map[model.TaskKind]HandlerFunc{
		model.TaskTicker: func(context.Context) error { panic("bad quote") },
	}
	d := NewDispatcher(execs, notifier, handlers)

	ctx := context.Background()
	rec := model.TaskExecution{TaskID: model.TaskTicker}
	assert.NoError(t, execs.Create(ctx, &rec))

	d.Execute(ctx, &rec)
	assert.Equal(t, model.TaskStateFailed, rec.State)
	assert.Contains(t, rec.Message, "panic")
	assert.Contains(t, rec.Message, "bad quote")
}

func TestDispatcherClearsStaleMessageOnRetry(t *testing.T) {
	execs := &memExecs{}
	handlers := map[model.TaskKind]HandlerFunc{
		model.TaskTicker: func(context.Context) error { return nil },
	}
	d := NewDispatcher(execs, nil, handlers)

	ctx := context.Background()
	rec := model.TaskExecution{TaskID: model.TaskTicker, Message: "old failure"}
	assert.NoError(t, execs.Create(ctx, &rec))

	d.Execute(ctx, &rec)
	assert.Equal(t, model.TaskStateDone, rec.State)
	assert.Empty(t, rec.Message)
}
