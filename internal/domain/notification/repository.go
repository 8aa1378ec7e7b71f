package notification

import (
	"context"
)

// JobRepository defines data access for notification jobs.
type JobRepository interface {
	// CreateBatch inserts jobs, silently skipping any whose event hash
	// already exists. Returns the number actually inserted.
	CreateBatch(ctx context.Context, jobs []Job) (int, error)

	// ExistingHashes returns which of the given hashes are already stored.
	ExistingHashes(ctx context.Context, hashes []string) (map[string]bool, error)

	ListByEmployee(ctx context.Context, employeeID string, limit int) ([]Job, error)
}
