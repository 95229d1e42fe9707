package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/student-resources-api/internal/models"
	"github.com/noah-isme/student-resources-api/pkg/jobs"
)

type eventSinkFake struct {
	mu       sync.Mutex
	pushed   []interface{}
	failures int
	done     chan struct{}
}

func (f *eventSinkFake) Push(ctx context.Context, event interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return errors.New("redis unavailable")
	}
	f.pushed = append(f.pushed, event)
	if f.done != nil {
		close(f.done)
		f.done = nil
	}
	return nil
}

type enqueuerFake struct {
	jobs []jobs.Job
	err  error
}

func (f *enqueuerFake) TryEnqueue(job jobs.Job) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func TestEventServicePublishEnqueuesJob(t *testing.T) {
	queue := &enqueuerFake{}
	svc := NewEventService(queue, zap.NewNop())

	svc.Publish(context.Background(), models.MaterialEvent{Type: models.AuditActionApprove, MaterialID: 7, Title: "Vectors"})

	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "APPROVE", queue.jobs[0].Type)
	assert.NotEmpty(t, queue.jobs[0].ID)
	event, ok := queue.jobs[0].Payload.(models.MaterialEvent)
	require.True(t, ok)
	assert.Equal(t, int64(7), event.MaterialID)
}

func TestEventServicePublishSwallowsQueueErrors(t *testing.T) {
	svc := NewEventService(&enqueuerFake{err: jobs.ErrQueueFull}, nil)
	assert.NotPanics(t, func() {
		svc.Publish(context.Background(), models.MaterialEvent{Type: models.AuditActionUpload})
	})

	var nilSvc *EventService
	assert.NotPanics(t, func() {
		nilSvc.Publish(context.Background(), models.MaterialEvent{})
	})
}

func TestEventJobHandlerRejectsForeignPayload(t *testing.T) {
	handler := NewEventJobHandler(&eventSinkFake{})
	err := handler(context.Background(), jobs.Job{ID: "x", Payload: "not an event"})
	require.Error(t, err)
}

func TestEventPipelineRetriesUntilDelivered(t *testing.T) {
	sink := &eventSinkFake{failures: 2, done: make(chan struct{})}
	done := sink.done
	queue := jobs.NewQueue("material-events", NewEventJobHandler(sink), jobs.QueueConfig{
		Workers:    1,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})
	queue.Start(context.Background())
	defer queue.Stop(context.Background())

	NewEventService(queue, nil).Publish(context.Background(), models.MaterialEvent{Type: models.AuditActionDelete, MaterialID: 3})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.pushed, 1)
	assert.Equal(t, int64(3), sink.pushed[0].(models.MaterialEvent).MaterialID)
}
