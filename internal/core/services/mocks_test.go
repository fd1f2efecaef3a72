package services

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/custodia-labs/ghview/internal/core/domain"
)

// mockSyncRepository is a hand-written driven.SyncRepository whose
// behaviour is set per test. Unset functions report not found.
type mockSyncRepository struct {
	getUser              func(ctx context.Context, username string) (*domain.Profile, error)
	getAuthenticatedUser func(ctx context.Context, credential string) (*domain.Profile, error)
	listRepos            func(ctx context.Context, username string) ([]domain.RepositoryEntry, error)
	getReadme            func(ctx context.Context, owner, repo string) (string, error)
	getRateLimit         func(ctx context.Context) (*domain.RateLimit, error)
	getGlobalStats       func(ctx context.Context) (*domain.GlobalStats, error)

	mu    sync.Mutex
	calls map[string][]string
}

func newMockSyncRepository() *mockSyncRepository {
	return &mockSyncRepository{calls: make(map[string][]string)}
}

func (m *mockSyncRepository) record(method, arg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[method] = append(m.calls[method], arg)
}

func (m *mockSyncRepository) callsTo(method string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls[method]...)
}

var errMockNotFound = &domain.ProviderError{Kind: domain.KindNotFound, StatusCode: 404, Message: "Not Found"}

func (m *mockSyncRepository) GetUser(ctx context.Context, username string) (*domain.Profile, error) {
	m.record("GetUser", username)
	if m.getUser == nil {
		return nil, errMockNotFound
	}
	return m.getUser(ctx, username)
}

func (m *mockSyncRepository) GetAuthenticatedUser(ctx context.Context, credential string) (*domain.Profile, error) {
	m.record("GetAuthenticatedUser", credential)
	if m.getAuthenticatedUser == nil {
		return nil, errMockNotFound
	}
	return m.getAuthenticatedUser(ctx, credential)
}

func (m *mockSyncRepository) ListRepos(ctx context.Context, username string) ([]domain.RepositoryEntry, error) {
	m.record("ListRepos", username)
	if m.listRepos == nil {
		return nil, errMockNotFound
	}
	return m.listRepos(ctx, username)
}

func (m *mockSyncRepository) GetReadme(ctx context.Context, owner, repo string) (string, error) {
	m.record("GetReadme", owner+"/"+repo)
	if m.getReadme == nil {
		return "", errMockNotFound
	}
	return m.getReadme(ctx, owner, repo)
}

func (m *mockSyncRepository) GetRateLimit(ctx context.Context) (*domain.RateLimit, error) {
	m.record("GetRateLimit", "")
	if m.getRateLimit == nil {
		return nil, errMockNotFound
	}
	return m.getRateLimit(ctx)
}

func (m *mockSyncRepository) GetGlobalStats(ctx context.Context) (*domain.GlobalStats, error) {
	m.record("GetGlobalStats", "")
	if m.getGlobalStats == nil {
		return nil, errMockNotFound
	}
	return m.getGlobalStats(ctx)
}

// mockCredentialStore is a driven.CredentialStore that can fail or block writes.
type mockCredentialStore struct {
	mu        sync.Mutex
	values    map[string]string
	loadErr   error
	saveErr   error
	deleteErr error
	saveGate  chan struct{}
	saving    chan struct{}
}

func newMockCredentialStore() *mockCredentialStore {
	return &mockCredentialStore{values: make(map[string]string)}
}

func (m *mockCredentialStore) Load(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return "", m.loadErr
	}
	return m.values[key], nil
}

func (m *mockCredentialStore) Save(_ context.Context, key, value string) error {
	m.mu.Lock()
	gate, saving := m.saveGate, m.saving
	m.saving = nil
	m.mu.Unlock()
	if saving != nil {
		close(saving)
	}
	if gate != nil {
		<-gate
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.values[key] = value
	return nil
}

func (m *mockCredentialStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.values, key)
	return nil
}

func (m *mockCredentialStore) stored(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

// mockExchanger is a driven.TokenExchanger that records its calls.
type mockExchanger struct {
	exchange func(ctx context.Context, code string) (string, error)
	urlErr   error

	mu     sync.Mutex
	codes  []string
	states []string
}

func (m *mockExchanger) AuthorizationURL(state string) (string, error) {
	if m.urlErr != nil {
		return "", m.urlErr
	}
	return "https://proxy.example.test/login?state=" + url.QueryEscape(state), nil
}

func (m *mockExchanger) Exchange(ctx context.Context, code, state string) (string, error) {
	m.mu.Lock()
	m.codes = append(m.codes, code)
	m.states = append(m.states, state)
	m.mu.Unlock()
	if m.exchange == nil {
		return "", errors.New("exchange not configured")
	}
	return m.exchange(ctx, code)
}

func (m *mockExchanger) exchangedCodes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.codes...)
}

// stateFromURL extracts the state parameter of an authorization URL.
func stateFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Query().Get("state")
}
