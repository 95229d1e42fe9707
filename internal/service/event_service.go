package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/student-resources-api/internal/models"
	"github.com/noah-isme/student-resources-api/pkg/jobs"
)

type eventSink interface {
	Push(ctx context.Context, event interface{}) error
}

type jobEnqueuer interface {
	TryEnqueue(job jobs.Job) error
}

// EventService hands moderation events to a background queue that forwards them to the sink.
type EventService struct {
	queue  jobEnqueuer
	logger *zap.Logger
}

// NewEventService constructs the publisher on top of an already built queue.
func NewEventService(queue jobEnqueuer, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{queue: queue, logger: logger}
}

// Publish enqueues the event without blocking. Failures are logged and dropped.
func (s *EventService) Publish(ctx context.Context, event models.MaterialEvent) {
	if s == nil || s.queue == nil {
		return
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    string(event.Type),
		Payload: event,
	}
	if err := s.queue.TryEnqueue(job); err != nil {
		s.logger.Warn("moderation event dropped",
			zap.String("type", job.Type),
			zap.Int64("material_id", event.MaterialID),
			zap.Error(err),
		)
	}
}

// NewEventJobHandler returns the queue handler that forwards events to sink.
func NewEventJobHandler(sink eventSink) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		event, ok := job.Payload.(models.MaterialEvent)
		if !ok {
			return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
		}
		return sink.Push(ctx, event)
	}
}
