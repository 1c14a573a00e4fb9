package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sentra-iam/sentra/internal/authz"
	"github.com/sentra-iam/sentra/internal/platform/db"
)

// CatalogSyncJob upserts the permission catalog. The catalog is fixed
// reference data; syncing keeps descriptions current after deploys
// without ever deleting rows grants may reference.
type CatalogSyncJob struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewCatalogSyncJob constructs the job.
func NewCatalogSyncJob(pool *pgxpool.Pool, logger *slog.Logger) *CatalogSyncJob {
	return &CatalogSyncJob{pool: pool, logger: logger}
}

// Handle processes TaskCatalogSync tasks. The upsert runs in one
// transaction so readers never observe a half-synced catalog.
func (j *CatalogSyncJob) Handle(ctx context.Context, t *asynq.Task) error {
	err := db.WithTx(ctx, j.pool, func(tx pgx.Tx) error {
		for _, perm := range authz.Catalog() {
			_, err := tx.Exec(ctx, `INSERT INTO permissions (name, description, category)
				VALUES ($1, $2, $3)
				ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description, category = EXCLUDED.category`,
				perm.Name, perm.Description, string(perm.Category))
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if j.logger != nil {
		j.logger.Info("permission catalog synced", slog.Int("permissions", len(authz.Catalog())))
	}
	return nil
}
