package interfaces

import (
	"context"

	"github.com/ternarybob/subimport/internal/models"
)

// ImportAPI is the transport port used by the import controller.
// Implementations must be safe for concurrent use: a slow status fetch may
// still be in flight when the next tick issues another one.
type ImportAPI interface {
	// StartImport uploads the dataset and configuration. The returned state is
	// the server's acknowledgement and may be nil if the server sends none.
	StartImport(ctx context.Context, params models.ImportParams, file *models.UploadFile) (*models.JobState, error)

	// GetStatus fetches the current import job status.
	GetStatus(ctx context.Context) (*models.JobState, error)

	// GetLogs fetches the full cumulative log text of the current job.
	GetLogs(ctx context.Context) (string, error)

	// StopImport stops a running job, or clears a finished or failed one.
	StopImport(ctx context.Context) error

	// GetLists returns the subscriber lists an import can target.
	GetLists(ctx context.Context) ([]models.List, error)
}
