package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SessionCleanupJob purges session records past their expiry. The Redis
// entries expire on their own TTL; this sweeps the postgres audit copy.
type SessionCleanupJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewSessionCleanupJob constructs the job.
func NewSessionCleanupJob(pool *pgxpool.Pool, logger *slog.Logger) *SessionCleanupJob {
	return &SessionCleanupJob{pool: pool, logger: logger}
}

// Handle processes TaskSessionCleanup tasks.
func (j *SessionCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	tag, err := j.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
	if err != nil {
		return err
	}
	if j.logger != nil {
		j.logger.Info("session cleanup", slog.Int64("deleted", tag.RowsAffected()))
	}
	return nil
}
