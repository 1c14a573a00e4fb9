package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRetentionJob deletes audit rows older than the retention window.
type AuditRetentionJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
	retain time.Duration
}

// NewAuditRetentionJob constructs the job with a default retention.
func NewAuditRetentionJob(pool *pgxpool.Pool, logger *slog.Logger, retain time.Duration) *AuditRetentionJob {
	return &AuditRetentionJob{pool: pool, logger: logger, retain: retain}
}

// Handle processes TaskAuditRetention tasks. The payload may override
// the configured window.
func (j *AuditRetentionJob) Handle(ctx context.Context, t *asynq.Task) error {
	retain := j.retain
	if len(t.Payload()) > 0 {
		var payload AuditRetentionPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if payload.RetainHours > 0 {
			retain = time.Duration(payload.RetainHours) * time.Hour
		}
	}
	cutoff := time.Now().UTC().Add(-retain)
	tag, err := j.pool.Exec(ctx, `DELETE FROM audit_logs WHERE occurred_at < $1`, cutoff)
	if err != nil {
		return err
	}
	j.log().Info("audit retention sweep",
		slog.Time("cutoff", cutoff),
		slog.Int64("deleted", tag.RowsAffected()))
	return nil
}

func (j *AuditRetentionJob) log() *slog.Logger {
	if j.logger != nil {
		return j.logger
	}
	return slog.Default()
}
