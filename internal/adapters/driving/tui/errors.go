package tui

import "errors"

// ErrMissingSyncService is returned when the sync service is not provided.
var ErrMissingSyncService = errors.New("tui: sync service is required")

// ErrMissingSearchCoordinator is returned when the search coordinator is not provided.
var ErrMissingSearchCoordinator = errors.New("tui: search coordinator is required")
