package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gramkatha/backend/internal/activity"
	"github.com/gramkatha/backend/internal/models"
	"github.com/gramkatha/backend/pkg/queue"
)

// ActivityProcessor drains activity jobs from the queue into Postgres.
type ActivityProcessor struct {
	repo   *activity.Repository
	queue  *queue.Queue
	logger *zap.Logger
}

// NewActivityProcessor creates an activity log processor.
func NewActivityProcessor(repo *activity.Repository, q *queue.Queue, logger *zap.Logger) *ActivityProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityProcessor{repo: repo, queue: q, logger: logger}
}

// Process executes one activity job.
func (p *ActivityProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeActivity {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ActivityPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	entry := &models.Activity{
		UserID:    payload.UserID,
		Type:      payload.Type,
		Message:   payload.Message,
		Metadata:  payload.Metadata,
		CreatedAt: payload.At,
	}
	if err := p.repo.Insert(ctx, entry); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}

	p.logger.Debug("activity stored",
		zap.String("activity_id", entry.ID.String()),
		zap.String("activity_type", entry.Type),
	)
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *ActivityProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("activity worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
