// Package activity is the audit trail: who did what, recorded off the
// request path through the Redis queue and drained into Postgres by the
// worker.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gramkatha/backend/pkg/queue"
)

// Recorder enqueues activity events. Recording is fire-and-forget: a queue
// failure is logged and swallowed so the triggering operation still
// succeeds.
type Recorder struct {
	queue  *queue.Queue
	logger *zap.Logger
}

// NewRecorder creates an activity recorder.
func NewRecorder(q *queue.Queue, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{queue: q, logger: logger}
}

// Record enqueues one activity event.
func (r *Recorder) Record(ctx context.Context, userID uuid.UUID, activityType, message string, metadata map[string]any) {
	if r.queue == nil {
		return
	}
	err := r.queue.EnqueueActivity(ctx, queue.ActivityPayload{
		UserID:   userID,
		Type:     activityType,
		Message:  message,
		Metadata: metadata,
		At:       time.Now(),
	})
	if err != nil {
		r.logger.Warn("activity enqueue failed",
			zap.String("activity_type", activityType),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}
