package lookup

import "errors"

// Error definitions for the lookup view.
var (
	// ErrNoSyncService indicates that no sync service was provided.
	ErrNoSyncService = errors.New("sync service is required")

	// ErrNoSearchCoordinator indicates that no search coordinator was provided.
	ErrNoSearchCoordinator = errors.New("search coordinator is required")
)
