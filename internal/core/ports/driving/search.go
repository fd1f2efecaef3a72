package driving

import "time"

// SearchCoordinator turns a stream of input changes into at most one
// action per settled value.
type SearchCoordinator interface {
	// Submit records a new input value and restarts the quiescence window.
	Submit(input string)

	// Cancel drops the pending value and cancels any running action.
	Cancel()

	// SetWindow changes the quiescence window for subsequent submissions.
	SetWindow(d time.Duration)

	// Close cancels everything and rejects further submissions.
	Close()
}
