package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"customers-service/internal/domain/customer"
	"customers-service/internal/export"
)

// SnapshotJob periodically writes the full customer listing as a CSV
// file, using the same column contract as the export endpoint.
type SnapshotJob struct {
	service customer.Service
	dir     string
	logger  *slog.Logger
	now     func() time.Time
}

func NewSnapshotJob(service customer.Service, dir string, logger *slog.Logger) *SnapshotJob {
	if service == nil || logger == nil {
		panic("SnapshotJob dependencies cannot be nil")
	}
	if dir == "" {
		dir = "exports"
	}
	return &SnapshotJob{
		service: service,
		dir:     dir,
		logger:  logger.With("job", "CustomerExportSnapshot"),
		now:     time.Now,
	}
}

func (j *SnapshotJob) Run(ctx context.Context) error {
	startTime := j.now()
	j.logger.InfoContext(ctx, "Starting customer export snapshot job.")

	customers, err := j.service.ListCustomersForExport(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list customers, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run snapshot job, failed to list customers: %w", err)
	}

	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		j.logger.ErrorContext(ctx, "Failed to create export directory.", slog.Any("error", err))
		return fmt.Errorf("failed to create export directory %s: %w", j.dir, err)
	}

	path := filepath.Join(j.dir, export.Filename(startTime))
	file, err := os.Create(path)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to create snapshot file.", slog.Any("error", err))
		return fmt.Errorf("failed to create snapshot file %s: %w", path, err)
	}
	defer file.Close()

	if err := export.WriteCustomers(file, customers); err != nil {
		j.logger.ErrorContext(ctx, "Failed to write snapshot CSV.", slog.Any("error", err))
		return fmt.Errorf("failed to write snapshot %s: %w", path, err)
	}

	j.logger.InfoContext(ctx, "Customer export snapshot job finished.",
		slog.String("path", path),
		slog.Int("customers", len(customers)),
		slog.Duration("duration", time.Since(startTime)))
	return nil
}
