package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Authentication Errors.

	// ErrAuthRequired indicates an operation needs a credential but none is stored.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the credential was rejected by the provider.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrInvalidTransition indicates the login state machine cannot perform
	// the requested step from its current state.
	ErrInvalidTransition = errors.New("invalid auth state transition")

	// ErrNoPendingLogin indicates a redirect arrived with no login attempt waiting for it.
	ErrNoPendingLogin = errors.New("no login attempt awaiting redirect")

	// ErrStateMismatch indicates the redirect carried a state parameter
	// that does not belong to the current attempt.
	ErrStateMismatch = errors.New("oauth state mismatch")

	// Provider Errors.

	// ErrForbidden indicates the provider refused the request.
	ErrForbidden = errors.New("forbidden")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrServer indicates a provider-side failure.
	ErrServer = errors.New("provider server error")

	// ErrNetwork indicates the request never produced a response.
	ErrNetwork = errors.New("network failure")

	// ErrDecode indicates a payload could not be decoded.
	ErrDecode = errors.New("malformed payload")

	// ErrCanceled indicates the operation was superseded before it finished.
	ErrCanceled = errors.New("canceled")
)

// ErrorKind tags a failure with exactly one class of the error taxonomy.
type ErrorKind int

// Error kinds.
const (
	// KindUnknown is the zero value and never produced by classification.
	KindUnknown ErrorKind = iota
	// KindNotFound means the resource is absent.
	KindNotFound
	// KindUnauthorized means the credential is bad, missing or expired.
	KindUnauthorized
	// KindForbidden means insufficient scope or any refusal that is not rate limiting.
	KindForbidden
	// KindRateLimited means the remaining quota is exhausted.
	KindRateLimited
	// KindServerError means a 5xx-class provider failure.
	KindServerError
	// KindNetworkError means transport failure with no response.
	KindNetworkError
	// KindDecodeError means a malformed content payload.
	KindDecodeError
	// KindEmpty tags the non-fatal "nothing found" notice.
	KindEmpty
	// KindCanceled marks superseded work. It is never stored in a snapshot.
	KindCanceled
)

// String returns the string representation.
func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindRateLimited:
		return "rate_limited"
	case KindServerError:
		return "server_error"
	case KindNetworkError:
		return "network_error"
	case KindDecodeError:
		return "decode_error"
	case KindEmpty:
		return "empty"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// sentinel returns the package error matched by errors.Is for the kind.
func (k ErrorKind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindUnauthorized:
		return ErrAuthInvalid
	case KindForbidden:
		return ErrForbidden
	case KindRateLimited:
		return ErrRateLimited
	case KindServerError:
		return ErrServer
	case KindNetworkError:
		return ErrNetwork
	case KindDecodeError:
		return ErrDecode
	case KindCanceled:
		return ErrCanceled
	default:
		return nil
	}
}

// ProviderError is a classified failure of a provider call.
type ProviderError struct {
	// Kind is the single taxonomy class of the failure.
	Kind ErrorKind
	// StatusCode is the HTTP status, or 0 when no response was received.
	StatusCode int
	// Message is the provider's message, when it sent one.
	Message string
	// ResetAt is the quota reset instant reported with a rate limit failure.
	ResetAt time.Time
	// Err is the underlying error.
	Err error
}

func (e *ProviderError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s (%d)", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	default:
		return e.Kind.String()
	}
}

// Unwrap returns the underlying error.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *ProviderError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && s == target
}

// NewProviderError creates a ProviderError of the given kind wrapping err.
func NewProviderError(kind ErrorKind, err error) *ProviderError {
	return &ProviderError{Kind: kind, Err: err}
}

// KindOf returns the classification of err.
// Unclassified non-nil errors are reported as network errors.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	switch {
	case errors.Is(err, ErrCanceled), errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, ErrAuthRequired), errors.Is(err, ErrAuthInvalid):
		return KindUnauthorized
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDecode):
		return KindDecodeError
	default:
		return KindNetworkError
	}
}

// ExchangeError is returned when the token exchange endpoint answers with an error field,
// or when the provider redirect carries one.
type ExchangeError struct {
	Code        string
	Description string
}

func (e *ExchangeError) Error() string {
	if e.Description == "" {
		return "token exchange failed: " + e.Code
	}
	return fmt.Sprintf("token exchange failed: %s - %s", e.Code, e.Description)
}
