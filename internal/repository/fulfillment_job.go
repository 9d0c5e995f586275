package repository

import (
	"context"
	"time"

	"prepkit-store/internal/model"

	"gorm.io/gorm"
)

// FulfillmentJobRepository is the durable queue for grant+email work.
// Jobs are enqueued inside the caller's transaction and claimed by the
// worker with a short processing lease, so a crash mid-fulfillment makes
// the job due again instead of losing it.
type FulfillmentJobRepository interface {
	Enqueue(ctx context.Context, tx *gorm.DB, job *model.FulfillmentJob) error
	LockDue(ctx context.Context, limit int, lease time.Duration) ([]*model.FulfillmentJob, error)
	MarkSent(ctx context.Context, jobID uint) error
	Reschedule(ctx context.Context, job *model.FulfillmentJob, cause error, delay time.Duration) error
	MarkFailed(ctx context.Context, job *model.FulfillmentJob, cause error) error
}

type fulfillmentJobRepoImpl struct {
	db *gorm.DB
}

func NewFulfillmentJobRepository(db *gorm.DB) FulfillmentJobRepository {
	return &fulfillmentJobRepoImpl{
		db: db,
	}
}

func (r *fulfillmentJobRepoImpl) Enqueue(ctx context.Context, tx *gorm.DB, job *model.FulfillmentJob) error {
	job.Status = model.JobPending
	if job.NextRetry.IsZero() {
		job.NextRetry = time.Now()
	}
	return tx.WithContext(ctx).Create(job).Error
}

func (r *fulfillmentJobRepoImpl) LockDue(ctx context.Context, limit int, lease time.Duration) ([]*model.FulfillmentJob, error) {
	var jobs []*model.FulfillmentJob

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		err := tx.
			Where("(status = ? AND next_retry <= ?) OR (status = ? AND next_retry <= ?)",
				model.JobPending, now, model.JobProcessing, now).
			Order("id asc").
			Limit(limit).
			Find(&jobs).Error
		if err != nil {
			return err
		}

		releaseAt := now.Add(lease)
		for _, job := range jobs {
			err := tx.Model(&model.FulfillmentJob{}).
				Where("id = ?", job.ID).
				Updates(map[string]interface{}{
					"status":     model.JobProcessing,
					"next_retry": releaseAt,
					"updated_at": now,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (r *fulfillmentJobRepoImpl) MarkSent(ctx context.Context, jobID uint) error {
	return r.db.WithContext(ctx).Model(&model.FulfillmentJob{}).
		Where("id = ?", jobID).
		Updates(map[string]interface{}{
			"status":     model.JobSent,
			"last_error": "",
			"updated_at": time.Now(),
		}).Error
}

func (r *fulfillmentJobRepoImpl) Reschedule(ctx context.Context, job *model.FulfillmentJob, cause error, delay time.Duration) error {
	return r.db.WithContext(ctx).Model(&model.FulfillmentJob{}).
		Where("id = ?", job.ID).
		Updates(map[string]interface{}{
			"status":     model.JobPending,
			"attempts":   gorm.Expr("attempts + 1"),
			"next_retry": time.Now().Add(delay),
			"last_error": truncateError(cause),
			"updated_at": time.Now(),
		}).Error
}

func (r *fulfillmentJobRepoImpl) MarkFailed(ctx context.Context, job *model.FulfillmentJob, cause error) error {
	return r.db.WithContext(ctx).Model(&model.FulfillmentJob{}).
		Where("id = ?", job.ID).
		Updates(map[string]interface{}{
			"status":     model.JobFailed,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": truncateError(cause),
			"updated_at": time.Now(),
		}).Error
}

func truncateError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > 512 {
		msg = msg[:512]
	}
	return msg
}
