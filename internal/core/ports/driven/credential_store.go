package driven

import "context"

// CredentialStore persists named secrets.
// Only one key is used in practice: domain.CredentialKey.
type CredentialStore interface {
	// Load returns the stored value, or "" when the key is absent.
	Load(ctx context.Context, key string) (string, error)

	// Save stores value under key, replacing any previous value.
	Save(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
