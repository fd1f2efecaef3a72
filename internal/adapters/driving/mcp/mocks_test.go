package mcp

import (
	"context"
	"sync"

	"github.com/custodia-labs/ghview/internal/core/domain"
)

// mockSyncService is a mock implementation of driving.SyncService.
// Fetch operations store the configured snapshot.
type mockSyncService struct {
	mu       sync.Mutex
	snap     domain.Snapshot
	onFetch  domain.Snapshot
	readme   string
	rate     *domain.RateLimit
	err      error
	lookups  []string
	authed   int
	statsRun int
}

func (m *mockSyncService) FetchProfile(_ context.Context, _ string) {}

func (m *mockSyncService) FetchRepos(_ context.Context, _ string) {}

func (m *mockSyncService) FetchAuthenticatedProfile(_ context.Context, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authed++
	m.snap = m.onFetch
}

func (m *mockSyncService) Lookup(_ context.Context, username string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups = append(m.lookups, username)
	m.snap = m.onFetch
}

func (m *mockSyncService) FetchGlobalStats(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsRun++
	m.snap.Stats = m.onFetch.Stats
}

func (m *mockSyncService) RateLimit(_ context.Context) (*domain.RateLimit, error) {
	return m.rate, m.err
}

func (m *mockSyncService) Readme(_ context.Context, _, _ string) (string, error) {
	return m.readme, m.err
}

func (m *mockSyncService) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = domain.Snapshot{}
}

func (m *mockSyncService) Snapshot() domain.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

func (m *mockSyncService) Subscribe() (<-chan domain.Snapshot, func()) {
	ch := make(chan domain.Snapshot, 1)
	ch <- m.Snapshot()
	return ch, func() {}
}

// mockAuthService is a mock implementation of driving.AuthService.
type mockAuthService struct {
	status domain.AuthStatus
}

func (m *mockAuthService) Begin(_ context.Context) (string, error) { return "", nil }

func (m *mockAuthService) HandleRedirect(_ context.Context, _ string) error { return nil }

func (m *mockAuthService) Abandon() {}

func (m *mockAuthService) Logout(_ context.Context) error { return nil }

func (m *mockAuthService) Status() domain.AuthStatus { return m.status }

func (m *mockAuthService) Subscribe() (<-chan domain.AuthStatus, func()) {
	ch := make(chan domain.AuthStatus, 1)
	ch <- m.status
	return ch, func() {}
}

func (m *mockAuthService) TakeFailure() error { return nil }
