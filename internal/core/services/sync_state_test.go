package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ghview/internal/core/domain"
)

func octocat() *domain.Profile {
	return &domain.Profile{Login: "octocat", Name: "The Octocat", Followers: 20, Following: 9}
}

func sampleRepos() []domain.RepositoryEntry {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return []domain.RepositoryEntry{
		{Name: "linguist", UpdatedAt: base.Add(-time.Hour)},
		{Name: "hello-world", UpdatedAt: base},
		{Name: "Spoon-Knife", UpdatedAt: base.Add(-time.Hour)},
	}
}

// gate blocks a mock call until released and reports when it has started.
type gate struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGate() *gate {
	return &gate{started: make(chan struct{}), release: make(chan struct{})}
}

func (g *gate) wait(ctx context.Context) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
	case <-ctx.Done():
		<-g.release
	}
}

func waitStarted(t *testing.T, g *gate) {
	t.Helper()
	select {
	case <-g.started:
	case <-time.After(2 * time.Second):
		t.Fatal("operation did not start")
	}
}

func TestSyncState_FetchProfile_Success(t *testing.T) {
	repo := newMockSyncRepository()
	repo.getUser = func(_ context.Context, username string) (*domain.Profile, error) {
		assert.Equal(t, "octocat", username)
		return octocat(), nil
	}
	state := NewSyncState(repo, nil)

	state.FetchProfile(context.Background(), "  octocat ")

	snap := state.Snapshot()
	require.NotNil(t, snap.Profile)
	assert.Equal(t, "The Octocat", snap.Profile.Name)
	assert.Equal(t, "octocat", snap.Target)
	assert.False(t, snap.Loading)
	assert.Nil(t, snap.Error)
}

func TestSyncState_FetchProfile_BlankUsernameDoesNothing(t *testing.T) {
	repo := newMockSyncRepository()
	state := NewSyncState(repo, nil)

	state.FetchProfile(context.Background(), "   ")

	assert.Empty(t, repo.callsTo("GetUser"))
	assert.Equal(t, uint64(0), state.Snapshot().Version)
}

func TestSyncState_FetchProfile_LoadingClearsPreviousError(t *testing.T) {
	repo := newMockSyncRepository()
	state := NewSyncState(repo, nil)

	state.FetchProfile(context.Background(), "ghost")
	require.NotNil(t, state.Snapshot().Error)

	repo.getUser = func(context.Context, string) (*domain.Profile, error) {
		snap := state.Snapshot()
		assert.True(t, snap.Loading)
		assert.Nil(t, snap.Error, "a loading snapshot never carries an error")
		return octocat(), nil
	}
	state.FetchProfile(context.Background(), "octocat")

	assert.Nil(t, state.Snapshot().Error)
}

func TestSyncState_FailureMessages(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    domain.ErrorKind
		message string
	}{
		{"not found", errMockNotFound, domain.KindNotFound, "User not found."},
		{"unauthorized", &domain.ProviderError{Kind: domain.KindUnauthorized, StatusCode: 401},
			domain.KindUnauthorized, "Authentication failed. Please login again."},
		{"forbidden", &domain.ProviderError{Kind: domain.KindForbidden, StatusCode: 403},
			domain.KindForbidden, "Access forbidden. Check token permissions."},
		{"server", &domain.ProviderError{Kind: domain.KindServerError, StatusCode: 502},
			domain.KindServerError, "Server error: 502"},
		{"network", domain.NewProviderError(domain.KindNetworkError, errors.New("connection refused")),
			domain.KindNetworkError, "Network error: connection refused"},
		{"decode", domain.NewProviderError(domain.KindDecodeError, errors.New("bad json")),
			domain.KindDecodeError, "Unexpected response from GitHub."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockSyncRepository()
			repo.getUser = func(context.Context, string) (*domain.Profile, error) { return nil, tt.err }
			state := NewSyncState(repo, nil)

			state.FetchProfile(context.Background(), "octocat")

			snap := state.Snapshot()
			require.NotNil(t, snap.Error)
			assert.Equal(t, tt.kind, snap.Error.Kind)
			assert.Equal(t, tt.message, snap.Error.Message)
			assert.False(t, snap.Error.Recoverable)
			assert.False(t, snap.Loading)
		})
	}
}

func TestSyncState_CancelledFetchStoresNoError(t *testing.T) {
	repo := newMockSyncRepository()
	repo.getUser = func(ctx context.Context, _ string) (*domain.Profile, error) {
		return nil, ctx.Err()
	}
	state := NewSyncState(repo, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	state.FetchProfile(ctx, "octocat")

	snap := state.Snapshot()
	assert.Nil(t, snap.Error)
	assert.False(t, snap.Loading)
}

func TestSyncState_FetchRepos_SortsNewestFirst(t *testing.T) {
	repo := newMockSyncRepository()
	repo.listRepos = func(context.Context, string) ([]domain.RepositoryEntry, error) {
		return sampleRepos(), nil
	}
	state := NewSyncState(repo, nil)

	state.FetchRepos(context.Background(), "octocat")

	snap := state.Snapshot()
	require.Len(t, snap.Repositories, 3)
	assert.Equal(t, "hello-world", snap.Repositories[0].Name)
	// Equal timestamps are ordered by name.
	assert.Equal(t, "Spoon-Knife", snap.Repositories[1].Name)
	assert.Equal(t, "linguist", snap.Repositories[2].Name)
	assert.Nil(t, snap.Error)
}

func TestSyncState_FetchRepos_EmptyIsRecoverableNotice(t *testing.T) {
	repo := newMockSyncRepository()
	repo.getUser = func(context.Context, string) (*domain.Profile, error) { return octocat(), nil }
	repo.listRepos = func(context.Context, string) ([]domain.RepositoryEntry, error) { return nil, nil }
	state := NewSyncState(repo, nil)

	state.FetchProfile(context.Background(), "octocat")
	state.FetchRepos(context.Background(), "octocat")

	snap := state.Snapshot()
	require.NotNil(t, snap.Profile, "the profile survives an empty repository list")
	assert.NotNil(t, snap.Repositories)
	assert.Empty(t, snap.Repositories)
	require.NotNil(t, snap.Error)
	assert.Equal(t, domain.KindEmpty, snap.Error.Kind)
	assert.Equal(t, "No repositories found.", snap.Error.Message)
	assert.True(t, snap.Error.Recoverable)
	assert.False(t, snap.HasError())
}

func TestSyncState_FailedReposKeepProfile(t *testing.T) {
	repo := newMockSyncRepository()
	repo.getUser = func(context.Context, string) (*domain.Profile, error) { return octocat(), nil }
	repo.listRepos = func(context.Context, string) ([]domain.RepositoryEntry, error) {
		return sampleRepos(), nil
	}
	state := NewSyncState(repo, nil)
	state.Lookup(context.Background(), "octocat")

	repo.listRepos = func(context.Context, string) ([]domain.RepositoryEntry, error) {
		return nil, &domain.ProviderError{Kind: domain.KindServerError, StatusCode: 500}
	}
	state.FetchRepos(context.Background(), "octocat")

	snap := state.Snapshot()
	assert.Equal(t, "octocat", snap.Profile.Login)
	assert.Len(t, snap.Repositories, 3)
	assert.Equal(t, "Server error: 500", snap.Error.Message)
}

func TestSyncState_Lookup_LoadsBothConcurrently(t *testing.T) {
	profileGate, reposGate := newGate(), newGate()
	repo := newMockSyncRepository()
	repo.getUser = func(ctx context.Context, _ string) (*domain.Profile, error) {
		profileGate.wait(ctx)
		return octocat(), nil
	}
	repo.listRepos = func(ctx context.Context, _ string) ([]domain.RepositoryEntry, error) {
		reposGate.wait(ctx)
		return sampleRepos(), nil
	}
	state := NewSyncState(repo, nil)

	done := make(chan struct{})
	go func() {
		state.Lookup(context.Background(), "octocat")
		close(done)
	}()

	// Both calls are in flight at the same time.
	waitStarted(t, profileGate)
	waitStarted(t, reposGate)

	close(reposGate.release)
	close(profileGate.release)
	<-done

	snap := state.Snapshot()
	assert.Equal(t, "octocat", snap.Profile.Login)
	assert.Len(t, snap.Repositories, 3)
	assert.False(t, snap.Loading)
}

func TestSyncState_ClearDiscardsInFlightResults(t *testing.T) {
	profileGate, reposGate := newGate(), newGate()
	repo := newMockSyncRepository()
	repo.getUser = func(ctx context.Context, _ string) (*domain.Profile, error) {
		profileGate.wait(ctx)
		return octocat(), nil
	}
	repo.listRepos = func(ctx context.Context, _ string) ([]domain.RepositoryEntry, error) {
		reposGate.wait(ctx)
		return sampleRepos(), nil
	}
	state := NewSyncState(repo, nil)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); state.FetchProfile(context.Background(), "octocat") }()
	go func() { defer wg.Done(); state.FetchRepos(context.Background(), "octocat") }()
	waitStarted(t, profileGate)
	waitStarted(t, reposGate)

	state.Clear()
	close(profileGate.release)
	close(reposGate.release)
	wg.Wait()

	snap := state.Snapshot()
	assert.Nil(t, snap.Profile)
	assert.Nil(t, snap.Repositories)
	assert.Nil(t, snap.Error)
	assert.Empty(t, snap.Target)
	assert.False(t, snap.Loading)
}

func TestSyncState_ClearResetsFieldsButKeepsStats(t *testing.T) {
	reset := time.Now().Add(time.Hour)
	repo := newMockSyncRepository()
	repo.getGlobalStats = func(context.Context) (*domain.GlobalStats, error) {
		return &domain.GlobalStats{TotalRepositories: 100, TotalUsers: 10}, nil
	}
	repo.getUser = func(context.Context, string) (*domain.Profile, error) { return octocat(), nil }
	repo.getRateLimit = func(context.Context) (*domain.RateLimit, error) {
		return &domain.RateLimit{Limit: 60, Remaining: 0, Reset: reset}, nil
	}
	state := NewSyncState(repo, nil)

	state.FetchGlobalStats(context.Background())
	state.FetchProfile(context.Background(), "octocat")
	_, err := state.RateLimit(context.Background())
	require.NoError(t, err)
	require.NotNil(t, state.Snapshot().RateLimitReset)

	state.Clear()

	snap := state.Snapshot()
	assert.Nil(t, snap.Profile)
	assert.Nil(t, snap.RateLimitReset)
	assert.Equal(t, 100, snap.Stats.TotalRepositories)
}

func TestSyncState_NewerFetchSupersedesOlder(t *testing.T) {
	first := newGate()
	repo := newMockSyncRepository()
	var firstCtx context.Context
	repo.getUser = func(ctx context.Context, username string) (*domain.Profile, error) {
		if username == "alice" {
			firstCtx = ctx
			first.wait(ctx)
			return &domain.Profile{Login: "alice"}, nil
		}
		return &domain.Profile{Login: username}, nil
	}
	state := NewSyncState(repo, nil)

	done := make(chan struct{})
	go func() {
		state.FetchProfile(context.Background(), "alice")
		close(done)
	}()
	waitStarted(t, first)

	state.FetchProfile(context.Background(), "bob")
	assert.ErrorIs(t, firstCtx.Err(), context.Canceled, "the superseded call is cancelled")

	close(first.release)
	<-done

	snap := state.Snapshot()
	assert.Equal(t, "bob", snap.Profile.Login)
	assert.Equal(t, "bob", snap.Target)
}

func TestSyncState_SameTargetRefetchDiscardsOlderResult(t *testing.T) {
	first := newGate()
	calls := 0
	var mu sync.Mutex
	repo := newMockSyncRepository()
	repo.listRepos = func(ctx context.Context, _ string) ([]domain.RepositoryEntry, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			first.wait(ctx)
			return []domain.RepositoryEntry{{Name: "stale"}}, nil
		}
		return []domain.RepositoryEntry{{Name: "fresh"}}, nil
	}
	state := NewSyncState(repo, nil)

	done := make(chan struct{})
	go func() {
		state.FetchRepos(context.Background(), "octocat")
		close(done)
	}()
	waitStarted(t, first)

	state.FetchRepos(context.Background(), "octocat")
	close(first.release)
	<-done

	snap := state.Snapshot()
	require.Len(t, snap.Repositories, 1)
	assert.Equal(t, "fresh", snap.Repositories[0].Name)
}

func TestSyncState_RateLimitedStoresResetFromSideQuery(t *testing.T) {
	reset := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := newMockSyncRepository()
	repo.getUser = func(context.Context, string) (*domain.Profile, error) {
		return nil, &domain.ProviderError{Kind: domain.KindRateLimited, StatusCode: 403}
	}
	repo.getRateLimit = func(context.Context) (*domain.RateLimit, error) {
		return &domain.RateLimit{Limit: 60, Remaining: 0, Reset: reset}, nil
	}
	state := NewSyncState(repo, nil)

	state.FetchProfile(context.Background(), "octocat")
	state.Wait()

	snap := state.Snapshot()
	require.NotNil(t, snap.Error)
	assert.Equal(t, domain.KindRateLimited, snap.Error.Kind)
	assert.Equal(t, "Rate limit exceeded. Try again later.", snap.Error.Message)
	require.NotNil(t, snap.RateLimitReset)
	assert.True(t, reset.Equal(*snap.RateLimitReset))
	assert.Equal(t, int64(0), state.SideQueryFailures())
}

func TestSyncState_RateLimitedSideQueryFailureIsSwallowed(t *testing.T) {
	repo := newMockSyncRepository()
	repo.getUser = func(context.Context, string) (*domain.Profile, error) {
		return nil, &domain.ProviderError{Kind: domain.KindRateLimited, StatusCode: 429}
	}
	repo.getRateLimit = func(context.Context) (*domain.RateLimit, error) {
		return nil, domain.NewProviderError(domain.KindNetworkError, errors.New("timeout"))
	}
	state := NewSyncState(repo, nil)

	state.FetchProfile(context.Background(), "octocat")
	state.Wait()

	snap := state.Snapshot()
	assert.Nil(t, snap.RateLimitReset, "reset stays unchanged")
	assert.Equal(t, "Rate limit exceeded. Try again later.", snap.Error.Message)
	assert.False(t, snap.Loading)
	assert.Equal(t, int64(1), state.SideQueryFailures())
}

func TestSyncState_RateLimitedUsesResetCarriedByError(t *testing.T) {
	reset := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := newMockSyncRepository()
	repo.listRepos = func(context.Context, string) ([]domain.RepositoryEntry, error) {
		return nil, &domain.ProviderError{Kind: domain.KindRateLimited, StatusCode: 403, ResetAt: reset}
	}
	repo.getRateLimit = func(context.Context) (*domain.RateLimit, error) {
		return nil, errors.New("unreachable")
	}
	state := NewSyncState(repo, nil)

	state.FetchRepos(context.Background(), "octocat")
	state.Wait()

	require.NotNil(t, state.Snapshot().RateLimitReset)
	assert.True(t, reset.Equal(*state.Snapshot().RateLimitReset))
}

func TestSyncState_SideQueryAfterClearIsDiscarded(t *testing.T) {
	sideGate := newGate()
	repo := newMockSyncRepository()
	repo.getUser = func(context.Context, string) (*domain.Profile, error) {
		return nil, &domain.ProviderError{Kind: domain.KindRateLimited, StatusCode: 403}
	}
	repo.getRateLimit = func(ctx context.Context) (*domain.RateLimit, error) {
		sideGate.wait(ctx)
		return &domain.RateLimit{Reset: time.Now().Add(time.Hour)}, nil
	}
	state := NewSyncState(repo, nil)

	state.FetchProfile(context.Background(), "octocat")
	waitStarted(t, sideGate)
	state.Clear()
	close(sideGate.release)
	state.Wait()

	assert.Nil(t, state.Snapshot().RateLimitReset)
}

func TestSyncState_FetchAuthenticatedProfile_LoadsProfileAndRepos(t *testing.T) {
	repo := newMockSyncRepository()
	repo.getAuthenticatedUser = func(_ context.Context, credential string) (*domain.Profile, error) {
		assert.Equal(t, "gho_valid", credential)
		return octocat(), nil
	}
	repo.listRepos = func(_ context.Context, username string) ([]domain.RepositoryEntry, error) {
		return sampleRepos(), nil
	}
	state := NewSyncState(repo, nil)

	state.FetchAuthenticatedProfile(context.Background(), "gho_valid")

	snap := state.Snapshot()
	assert.Equal(t, "octocat", snap.Profile.Login)
	assert.Equal(t, "octocat", snap.Target)
	assert.Len(t, snap.Repositories, 3)
	assert.Equal(t, []string{"octocat"}, repo.callsTo("ListRepos"))
	assert.False(t, snap.Loading)
}

func TestSyncState_FetchAuthenticatedProfile_ExpiredTokenKeepsPriorData(t *testing.T) {
	repo := newMockSyncRepository()
	repo.getUser = func(context.Context, string) (*domain.Profile, error) { return octocat(), nil }
	repo.listRepos = func(context.Context, string) ([]domain.RepositoryEntry, error) {
		return sampleRepos(), nil
	}
	repo.getAuthenticatedUser = func(context.Context, string) (*domain.Profile, error) {
		return nil, &domain.ProviderError{Kind: domain.KindUnauthorized, StatusCode: 401, Message: "Bad credentials"}
	}
	state := NewSyncState(repo, nil)
	state.Lookup(context.Background(), "octocat")
	before := state.Snapshot()

	state.FetchAuthenticatedProfile(context.Background(), "gho_expired")

	snap := state.Snapshot()
	require.NotNil(t, snap.Error)
	assert.Equal(t, domain.KindUnauthorized, snap.Error.Kind)
	assert.Equal(t, "Authentication failed. Please login again.", snap.Error.Message)
	assert.Equal(t, before.Profile, snap.Profile)
	assert.Equal(t, before.Repositories, snap.Repositories)
	assert.False(t, snap.Loading)
}

func TestSyncState_FetchAuthenticatedProfile_ForbiddenAndNotFound(t *testing.T) {
	tests := []struct {
		kind    domain.ErrorKind
		status  int
		message string
	}{
		{domain.KindForbidden, 403, "Access forbidden. Check token permissions."},
		{domain.KindNotFound, 404, "User not found."},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			repo := newMockSyncRepository()
			repo.getAuthenticatedUser = func(context.Context, string) (*domain.Profile, error) {
				return nil, &domain.ProviderError{Kind: tt.kind, StatusCode: tt.status}
			}
			state := NewSyncState(repo, nil)

			state.FetchAuthenticatedProfile(context.Background(), "gho_token")

			assert.Equal(t, tt.message, state.Snapshot().Error.Message)
			assert.Empty(t, repo.callsTo("ListRepos"))
		})
	}
}

func TestSyncState_LogoutDiscardsInFlightAuthenticatedFetch(t *testing.T) {
	creds := newMockCredentialStore()
	creds.values[domain.CredentialKey] = "gho_token"
	tokens := newTestTokenStore(t, creds)

	authGate := newGate()
	repo := newMockSyncRepository()
	repo.getAuthenticatedUser = func(ctx context.Context, _ string) (*domain.Profile, error) {
		authGate.wait(ctx)
		return octocat(), nil
	}
	repo.listRepos = func(context.Context, string) ([]domain.RepositoryEntry, error) {
		return sampleRepos(), nil
	}
	state := NewSyncState(repo, tokens)
	defer state.Close()

	done := make(chan struct{})
	go func() {
		state.FetchAuthenticatedProfile(context.Background(), tokens.Get())
		close(done)
	}()
	waitStarted(t, authGate)

	require.NoError(t, tokens.Clear(context.Background()))
	assert.Empty(t, tokens.Get(), "logout is visible immediately")
	assert.False(t, state.Snapshot().Loading)

	close(authGate.release)
	<-done

	snap := state.Snapshot()
	assert.Nil(t, snap.Profile, "the authenticated profile is not re-populated after logout")
	assert.Nil(t, snap.Repositories)
	assert.Empty(t, repo.callsTo("ListRepos"))
}

func TestSyncState_LogoutRemovesAuthenticatedData(t *testing.T) {
	creds := newMockCredentialStore()
	creds.values[domain.CredentialKey] = "gho_token"
	tokens := newTestTokenStore(t, creds)

	repo := newMockSyncRepository()
	repo.getAuthenticatedUser = func(context.Context, string) (*domain.Profile, error) { return octocat(), nil }
	repo.listRepos = func(context.Context, string) ([]domain.RepositoryEntry, error) {
		return sampleRepos(), nil
	}
	state := NewSyncState(repo, tokens)
	defer state.Close()

	state.FetchAuthenticatedProfile(context.Background(), tokens.Get())
	require.NotNil(t, state.Snapshot().Profile)

	require.NoError(t, tokens.Clear(context.Background()))

	snap := state.Snapshot()
	assert.Nil(t, snap.Profile)
	assert.Nil(t, snap.Repositories)
	assert.Empty(t, snap.Target)
}

func TestSyncState_LogoutKeepsPublicData(t *testing.T) {
	creds := newMockCredentialStore()
	creds.values[domain.CredentialKey] = "gho_token"
	tokens := newTestTokenStore(t, creds)

	repo := newMockSyncRepository()
	repo.getUser = func(context.Context, string) (*domain.Profile, error) { return octocat(), nil }
	state := NewSyncState(repo, tokens)
	defer state.Close()

	state.FetchProfile(context.Background(), "octocat")
	version := state.Snapshot().Version

	require.NoError(t, tokens.Clear(context.Background()))

	assert.NotNil(t, state.Snapshot().Profile)
	assert.Equal(t, version, state.Snapshot().Version)
}

func TestSyncState_SnapshotsAreLinearized(t *testing.T) {
	repo := newMockSyncRepository()
	repo.getUser = func(_ context.Context, username string) (*domain.Profile, error) {
		return &domain.Profile{Login: username}, nil
	}
	repo.listRepos = func(_ context.Context, username string) ([]domain.RepositoryEntry, error) {
		return []domain.RepositoryEntry{{Name: username + "-repo"}}, nil
	}
	state := NewSyncState(repo, nil)

	ch, unsubscribe := state.Subscribe()
	var (
		observed []domain.Snapshot
		readers  sync.WaitGroup
	)
	readers.Add(1)
	go func() {
		defer readers.Done()
		for snap := range ch {
			observed = append(observed, snap)
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			user := fmt.Sprintf("user%d", n%3)
			if n%2 == 0 {
				state.FetchProfile(context.Background(), user)
			} else {
				state.FetchRepos(context.Background(), user)
			}
		}(i)
	}
	wg.Wait()
	unsubscribe()
	readers.Wait()

	require.NotEmpty(t, observed)
	for i := 1; i < len(observed); i++ {
		assert.Greater(t, observed[i].Version, observed[i-1].Version)
	}
	for _, snap := range observed {
		if snap.Loading {
			assert.Nil(t, snap.Error)
		}
	}
	assert.Equal(t, state.Snapshot().Version, observed[len(observed)-1].Version)
}

func TestSyncState_TargetSwitchDropsPreviousData(t *testing.T) {
	reposGate := newGate()
	repo := newMockSyncRepository()
	repo.getUser = func(_ context.Context, username string) (*domain.Profile, error) {
		return &domain.Profile{Login: username}, nil
	}
	repo.listRepos = func(ctx context.Context, username string) ([]domain.RepositoryEntry, error) {
		if username == "bob" {
			reposGate.wait(ctx)
		}
		return []domain.RepositoryEntry{{Name: username + "-repo"}}, nil
	}
	state := NewSyncState(repo, nil)
	state.Lookup(context.Background(), "alice")
	require.NotNil(t, state.Snapshot().Profile)

	done := make(chan struct{})
	go func() {
		state.FetchRepos(context.Background(), "bob")
		close(done)
	}()
	waitStarted(t, reposGate)

	snap := state.Snapshot()
	assert.Equal(t, "bob", snap.Target)
	assert.Nil(t, snap.Profile, "alice's profile is not shown under bob")
	assert.Nil(t, snap.Repositories)
	assert.True(t, snap.Loading)

	close(reposGate.release)
	<-done

	snap = state.Snapshot()
	require.Len(t, snap.Repositories, 1)
	assert.Equal(t, "bob-repo", snap.Repositories[0].Name)
}

func TestSyncState_ConcurrentLookupsNeverMixTargets(t *testing.T) {
	repo := newMockSyncRepository()
	repo.getUser = func(_ context.Context, username string) (*domain.Profile, error) {
		return &domain.Profile{Login: username}, nil
	}
	repo.listRepos = func(_ context.Context, username string) ([]domain.RepositoryEntry, error) {
		return []domain.RepositoryEntry{{Name: username + "/one"}, {Name: username + "/two"}}, nil
	}
	state := NewSyncState(repo, nil)

	ch, unsubscribe := state.Subscribe()
	var (
		observed []domain.Snapshot
		readers  sync.WaitGroup
	)
	readers.Add(1)
	go func() {
		defer readers.Done()
		for snap := range ch {
			observed = append(observed, snap)
		}
	}()

	users := []string{"a", "b", "c"}
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			state.Lookup(context.Background(), users[n%len(users)])
		}(i)
	}
	wg.Wait()
	unsubscribe()
	readers.Wait()

	observed = append(observed, state.Snapshot())
	for _, snap := range observed {
		if snap.Profile != nil {
			assert.Equal(t, snap.Target, snap.Profile.Login, "profile under target %q", snap.Target)
		}
		for _, r := range snap.Repositories {
			assert.True(t, strings.HasPrefix(r.Name, snap.Target+"/"), "repo %s under target %q", r.Name, snap.Target)
		}
	}
}

func TestSyncState_AuthenticatedProfileDropsReposOfPreviousTarget(t *testing.T) {
	reposGate := newGate()
	repo := newMockSyncRepository()
	repo.getUser = func(_ context.Context, username string) (*domain.Profile, error) {
		return &domain.Profile{Login: username}, nil
	}
	repo.getAuthenticatedUser = func(context.Context, string) (*domain.Profile, error) { return octocat(), nil }
	repo.listRepos = func(ctx context.Context, username string) ([]domain.RepositoryEntry, error) {
		if username == "octocat" {
			reposGate.wait(ctx)
		}
		return []domain.RepositoryEntry{{Name: username + "-repo"}}, nil
	}
	state := NewSyncState(repo, nil)
	state.Lookup(context.Background(), "alice")

	done := make(chan struct{})
	go func() {
		state.FetchAuthenticatedProfile(context.Background(), "gho_token")
		close(done)
	}()
	waitStarted(t, reposGate)

	snap := state.Snapshot()
	assert.Equal(t, "octocat", snap.Target)
	assert.Equal(t, "octocat", snap.Profile.Login)
	assert.Nil(t, snap.Repositories, "alice's repositories are not shown under octocat")

	close(reposGate.release)
	<-done
	require.Len(t, state.Snapshot().Repositories, 1)
	assert.Equal(t, "octocat-repo", state.Snapshot().Repositories[0].Name)
}

func TestSyncState_LogoutRacingAuthenticatedFetchLeavesNoData(t *testing.T) {
	for i := 0; i < 100; i++ {
		creds := newMockCredentialStore()
		creds.values[domain.CredentialKey] = "gho_token"
		tokens := newTestTokenStore(t, creds)

		started := make(chan struct{})
		repo := newMockSyncRepository()
		repo.getAuthenticatedUser = func(context.Context, string) (*domain.Profile, error) {
			close(started)
			return octocat(), nil
		}
		repo.listRepos = func(context.Context, string) ([]domain.RepositoryEntry, error) {
			return sampleRepos(), nil
		}
		state := NewSyncState(repo, tokens)

		done := make(chan struct{})
		go func() {
			state.FetchAuthenticatedProfile(context.Background(), tokens.Get())
			close(done)
		}()
		<-started
		require.NoError(t, tokens.Clear(context.Background()))
		<-done

		snap := state.Snapshot()
		assert.Nil(t, snap.Profile, "iteration %d", i)
		assert.Nil(t, snap.Repositories, "iteration %d", i)
		assert.Empty(t, snap.Target, "iteration %d", i)
		assert.False(t, snap.Loading, "iteration %d", i)
		state.Close()
	}
}

func TestSyncState_FetchGlobalStats(t *testing.T) {
	repo := newMockSyncRepository()
	repo.getGlobalStats = func(context.Context) (*domain.GlobalStats, error) {
		return &domain.GlobalStats{TotalRepositories: 300000000, TotalUsers: 100000000}, nil
	}
	state := NewSyncState(repo, nil)

	state.FetchGlobalStats(context.Background())

	snap := state.Snapshot()
	assert.Equal(t, 300000000, snap.Stats.TotalRepositories)
	assert.Equal(t, 100000000, snap.Stats.TotalUsers)
	assert.Nil(t, snap.Error)
}

func TestSyncState_FetchGlobalStats_FailureKeepsStats(t *testing.T) {
	repo := newMockSyncRepository()
	repo.getGlobalStats = func(context.Context) (*domain.GlobalStats, error) {
		return &domain.GlobalStats{TotalRepositories: 5, TotalUsers: 2}, nil
	}
	state := NewSyncState(repo, nil)
	state.FetchGlobalStats(context.Background())

	repo.getGlobalStats = func(context.Context) (*domain.GlobalStats, error) {
		return nil, &domain.ProviderError{Kind: domain.KindServerError, StatusCode: 503}
	}
	state.FetchGlobalStats(context.Background())

	snap := state.Snapshot()
	assert.Equal(t, 5, snap.Stats.TotalRepositories)
	assert.Nil(t, snap.Error)
}

func TestSyncState_RateLimit(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := newMockSyncRepository()
	repo.getRateLimit = func(context.Context) (*domain.RateLimit, error) {
		return &domain.RateLimit{Limit: 60, Remaining: 42, Reset: now.Add(time.Hour)}, nil
	}
	state := NewSyncState(repo, nil)
	state.now = func() time.Time { return now }

	rl, err := state.RateLimit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 42, rl.Remaining)
	assert.Nil(t, state.Snapshot().RateLimitReset, "a healthy quota records nothing")
}

func TestSyncState_RateLimit_Error(t *testing.T) {
	state := NewSyncState(newMockSyncRepository(), nil)

	rl, err := state.RateLimit(context.Background())

	assert.Nil(t, rl)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncState_Readme(t *testing.T) {
	repo := newMockSyncRepository()
	repo.getReadme = func(_ context.Context, owner, name string) (string, error) {
		return "# " + owner + "/" + name, nil
	}
	state := NewSyncState(repo, nil)

	content, err := state.Readme(context.Background(), "octocat", "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "# octocat/hello-world", content)

	_, err = state.Readme(context.Background(), "octocat", " ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, uint64(0), state.Snapshot().Version, "readme never touches the state")
}
