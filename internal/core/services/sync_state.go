package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/ghview/internal/core/domain"
	"github.com/custodia-labs/ghview/internal/core/ports/driven"
	"github.com/custodia-labs/ghview/internal/core/ports/driving"
	"github.com/custodia-labs/ghview/internal/logger"
)

// Ensure SyncState implements the interface.
var _ driving.SyncService = (*SyncState)(nil)

// User-visible messages stored in snapshots.
const (
	msgUserNotFound   = "User not found."
	msgRateLimited    = "Rate limit exceeded. Try again later."
	msgUnauthorized   = "Authentication failed. Please login again."
	msgForbidden      = "Access forbidden. Check token permissions."
	msgNoRepositories = "No repositories found."
	msgDecode         = "Unexpected response from GitHub."
)

// sideQueryTimeout bounds the background rate limit lookup.
const sideQueryTimeout = 10 * time.Second

type opKind int

const (
	opProfile opKind = iota
	opRepos
	opStats
	numOps
)

func (k opKind) String() string {
	switch k {
	case opProfile:
		return "profile"
	case opRepos:
		return "repos"
	default:
		return "stats"
	}
}

// runningOp is the latest operation started for a kind.
type runningOp struct {
	authed bool
	cancel context.CancelFunc
}

// ticket captures what an operation saw when it started. Its result is only
// written when nothing has superseded it since.
type ticket struct {
	kind        opKind
	seq         uint64
	clearEpoch  uint64
	targetEpoch uint64
	authEpoch   uint64
	target      string
	authed      bool
	cancel      context.CancelFunc
}

// SyncState is the observable container for profile, repository and quota data.
//
// Network calls run concurrently, but every state mutation happens under a
// single mutex and publishes exactly one new snapshot before releasing it.
// A result is discarded when, by the time it arrives, its operation was
// superseded by a newer operation of the same kind, by an operation for a
// different target, by Clear, or (for authenticated fetches) by a token change.
type SyncState struct {
	repo driven.SyncRepository
	now  func() time.Time

	mu          sync.Mutex
	snap        domain.Snapshot
	running     [numOps]runningOp
	seq         [numOps]uint64
	clearEpoch  uint64
	targetEpoch uint64
	authEpoch   uint64
	authedData  bool

	feed *broadcaster[domain.Snapshot]

	side         sync.WaitGroup
	sideFailures atomic.Int64

	unbind func()
}

// NewSyncState creates a state container over repo. When tokens is not nil,
// every token change supersedes in-flight authenticated fetches and removes
// data that was loaded with the previous token.
func NewSyncState(repo driven.SyncRepository, tokens *TokenStore) *SyncState {
	s := &SyncState{
		repo:   repo,
		now:    time.Now,
		unbind: func() {},
	}
	s.feed = newBroadcaster(s.snap)
	if tokens != nil {
		s.unbind = tokens.OnChange(s.onTokenChange)
	}
	return s
}

// Close detaches the container from the token store and waits for
// background side queries.
func (s *SyncState) Close() {
	s.unbind()
	s.Clear()
	s.side.Wait()
}

// Snapshot returns the current state.
func (s *SyncState) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe returns a channel that always holds the latest snapshot.
func (s *SyncState) Subscribe() (<-chan domain.Snapshot, func()) {
	return s.feed.subscribe()
}

// Wait blocks until every background side query has finished.
func (s *SyncState) Wait() {
	s.side.Wait()
}

// SideQueryFailures returns how many rate limit side queries have failed.
func (s *SyncState) SideQueryFailures() int64 {
	return s.sideFailures.Load()
}

// FetchProfile loads the public profile of username.
func (s *SyncState) FetchProfile(ctx context.Context, username string) {
	username = strings.TrimSpace(username)
	if username == "" {
		return
	}

	ctx, t := s.begin(ctx, opProfile, username, false)
	defer t.cancel()

	logger.Debug("sync: fetching profile %s", username)
	profile, err := s.repo.GetUser(ctx, username)

	s.finish(t, func(snap *domain.Snapshot) {
		if err != nil {
			s.applyFailure(snap, err)
			return
		}
		snap.Profile = profile
	})
}

// FetchRepos loads every public repository of username, newest first.
func (s *SyncState) FetchRepos(ctx context.Context, username string) {
	username = strings.TrimSpace(username)
	if username == "" {
		return
	}
	s.fetchRepos(ctx, username, false)
}

func (s *SyncState) fetchRepos(ctx context.Context, username string, authed bool) {
	ctx, t := s.begin(ctx, opRepos, username, authed)
	s.runRepos(ctx, t, username)
}

func (s *SyncState) runRepos(ctx context.Context, t ticket, username string) {
	defer t.cancel()

	logger.Debug("sync: fetching repositories of %s", username)
	repos, err := s.repo.ListRepos(ctx, username)

	s.finish(t, func(snap *domain.Snapshot) {
		if err != nil {
			s.applyFailure(snap, err)
			return
		}
		snap.Repositories = domain.SortRepositories(repos)
		if len(repos) == 0 {
			snap.Error = &domain.SnapshotError{
				Kind:        domain.KindEmpty,
				Message:     msgNoRepositories,
				Recoverable: true,
			}
		}
	})
}

// FetchAuthenticatedProfile loads the profile owning credential and, on
// success, the repositories of the resolved login. On failure the previous
// profile and repositories are kept.
func (s *SyncState) FetchAuthenticatedProfile(ctx context.Context, credential string) {
	opCtx, t := s.begin(ctx, opProfile, "", true)
	defer t.cancel()

	logger.Debug("sync: fetching authenticated profile")
	profile, err := s.repo.GetAuthenticatedUser(opCtx, credential)

	written := s.finish(t, func(snap *domain.Snapshot) {
		if err != nil {
			s.applyFailure(snap, err)
			return
		}
		if profile.Login != snap.Target {
			snap.Repositories = nil
			snap.RateLimitReset = nil
		}
		snap.Profile = profile
		snap.Target = profile.Login
		s.authedData = true
	})
	if !written || err != nil {
		return
	}

	// The repositories only follow a profile that is still current. A logout
	// or another lookup since the profile was written supersedes them.
	s.mu.Lock()
	if s.stale(t) {
		s.mu.Unlock()
		logger.Debug("sync: skipping repositories of superseded profile %s", profile.Login)
		return
	}
	reposCtx, rt := s.beginLocked(ctx, opRepos, profile.Login, true)
	s.mu.Unlock()
	s.runRepos(reposCtx, rt, profile.Login)
}

// Lookup clears the state and loads profile and repositories of username concurrently.
func (s *SyncState) Lookup(ctx context.Context, username string) {
	s.Clear()
	username = strings.TrimSpace(username)
	if username == "" {
		return
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.FetchProfile(ctx, username)
	}()
	go func() {
		defer wg.Done()
		s.FetchRepos(ctx, username)
	}()
	wg.Wait()
}

// FetchGlobalStats loads provider-wide totals. Failures keep the previous
// totals and never replace the current error.
func (s *SyncState) FetchGlobalStats(ctx context.Context) {
	ctx, t := s.begin(ctx, opStats, "", false)
	defer t.cancel()

	stats, err := s.repo.GetGlobalStats(ctx)

	s.finish(t, func(snap *domain.Snapshot) {
		if err != nil {
			logger.Warn("sync: global stats: %v", err)
			if domain.KindOf(err) == domain.KindRateLimited {
				s.startRateLimitQuery(snap, err)
			}
			return
		}
		snap.Stats = *stats
	})
}

// RateLimit returns the current quota. An exhausted quota records its
// reset instant in the snapshot.
func (s *SyncState) RateLimit(ctx context.Context) (*domain.RateLimit, error) {
	rl, err := s.repo.GetRateLimit(ctx)
	if err != nil {
		return nil, err
	}
	if rl.Exhausted(s.now()) {
		s.mu.Lock()
		reset := rl.Reset
		s.snap.RateLimitReset = &reset
		s.commit()
		s.mu.Unlock()
	}
	return rl, nil
}

// Readme returns the decoded README of owner/repo.
func (s *SyncState) Readme(ctx context.Context, owner, repo string) (string, error) {
	owner, repo = strings.TrimSpace(owner), strings.TrimSpace(repo)
	if owner == "" || repo == "" {
		return "", fmt.Errorf("%w: owner and repository are required", domain.ErrInvalidInput)
	}
	return s.repo.GetReadme(ctx, owner, repo)
}

// Clear resets profile, repositories, error, rate limit reset and target,
// and supersedes every in-flight operation.
func (s *SyncState) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearEpoch++
	s.cancelRunning(true, func(runningOp) bool { return true })
	stats := s.snap.Stats
	s.snap = domain.Snapshot{Version: s.snap.Version, Stats: stats}
	s.authedData = false
	s.commit()
}

// begin registers a new operation and, except for stats, publishes the
// loading state with the previous error cleared. An authenticated fetch has
// no target until it resolves its login, so it always supersedes the
// operations of the current target. Switching to another target drops the
// data of the previous one in the same commit.
func (s *SyncState) begin(ctx context.Context, kind opKind, target string, authed bool) (context.Context, ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginLocked(ctx, kind, target, authed)
}

// beginLocked must be called with mu held.
func (s *SyncState) beginLocked(ctx context.Context, kind opKind, target string, authed bool) (context.Context, ticket) {
	ctx, cancel := context.WithCancel(ctx)

	if kind != opStats && (authed && target == "" || target != s.snap.Target) {
		s.targetEpoch++
		s.cancelRunning(false, func(runningOp) bool { return true })
	}
	if kind != opStats && target != "" && target != s.snap.Target {
		s.snap.Profile = nil
		s.snap.Repositories = nil
		s.snap.RateLimitReset = nil
		s.authedData = false
	}
	if prev := s.running[kind]; prev.cancel != nil {
		prev.cancel()
	}

	s.seq[kind]++
	s.running[kind] = runningOp{authed: authed, cancel: cancel}

	t := ticket{
		kind:        kind,
		seq:         s.seq[kind],
		clearEpoch:  s.clearEpoch,
		targetEpoch: s.targetEpoch,
		authEpoch:   s.authEpoch,
		target:      target,
		authed:      authed,
		cancel:      cancel,
	}

	if kind != opStats {
		if target != "" {
			s.snap.Target = target
		}
		s.snap.Loading = true
		s.snap.Error = nil
		s.commit()
	}
	return ctx, t
}

// finish applies the result of t unless it has been superseded.
// It reports whether the result was written.
func (s *SyncState) finish(t ticket, apply func(*domain.Snapshot)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stale(t) {
		logger.Debug("sync: discarding stale %s result", t.kind)
		return false
	}

	s.running[t.kind] = runningOp{}
	apply(&s.snap)
	if t.kind != opStats {
		s.snap.Loading = false
	}
	s.commit()
	return true
}

// stale must be called with mu held.
func (s *SyncState) stale(t ticket) bool {
	switch {
	case t.seq != s.seq[t.kind], t.clearEpoch != s.clearEpoch:
		return true
	case t.kind != opStats && t.targetEpoch != s.targetEpoch:
		return true
	case t.authed && t.authEpoch != s.authEpoch:
		return true
	case t.target != "" && t.target != s.snap.Target:
		return true
	default:
		return false
	}
}

// applyFailure stores the user-visible form of err. Canceled work stores nothing.
func (s *SyncState) applyFailure(snap *domain.Snapshot, err error) {
	kind := domain.KindOf(err)
	if kind == domain.KindCanceled {
		return
	}
	logger.Debug("sync: %s: %v", kind, err)
	snap.Error = &domain.SnapshotError{Kind: kind, Message: failureMessage(kind, err)}
	if kind == domain.KindRateLimited {
		s.startRateLimitQuery(snap, err)
	}
}

// startRateLimitQuery records any reset instant carried by err and launches
// the best-effort side query for the current one. Must be called with mu held.
func (s *SyncState) startRateLimitQuery(snap *domain.Snapshot, err error) {
	var pe *domain.ProviderError
	if errors.As(err, &pe) && !pe.ResetAt.IsZero() {
		reset := pe.ResetAt
		snap.RateLimitReset = &reset
	}

	epoch := s.clearEpoch
	s.side.Add(1)
	go func() {
		defer s.side.Done()

		ctx, cancel := context.WithTimeout(context.Background(), sideQueryTimeout)
		defer cancel()

		rl, err := s.repo.GetRateLimit(ctx)
		if err != nil {
			s.sideFailures.Add(1)
			logger.Warn("sync: rate limit side query failed: %v", err)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if epoch != s.clearEpoch {
			return
		}
		reset := rl.Reset
		s.snap.RateLimitReset = &reset
		s.commit()
	}()
}

// onTokenChange runs synchronously inside TokenStore.Set and Clear.
func (s *SyncState) onTokenChange(string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.authEpoch++
	superseded := s.cancelRunning(false, func(op runningOp) bool { return op.authed })
	if !superseded && !s.authedData {
		return
	}
	if s.authedData {
		s.snap.Target = ""
		s.snap.Profile = nil
		s.snap.Repositories = nil
		s.snap.Error = nil
		s.authedData = false
	}
	if superseded {
		s.snap.Loading = false
	}
	s.commit()
}

// cancelRunning cancels and forgets the running operations accepted by
// match. Stats operations are only considered when withStats is set.
// Must be called with mu held. It reports whether any were cancelled.
func (s *SyncState) cancelRunning(withStats bool, match func(runningOp) bool) bool {
	cancelled := false
	for k := opKind(0); k < numOps; k++ {
		if k == opStats && !withStats {
			continue
		}
		op := s.running[k]
		if op.cancel == nil || !match(op) {
			continue
		}
		op.cancel()
		s.running[k] = runningOp{}
		cancelled = true
	}
	return cancelled
}

// commit publishes the current snapshot as a new version. Must be called with mu held.
func (s *SyncState) commit() {
	s.snap.Version++
	s.feed.publish(s.snap)
}

// failureMessage returns the display text for a classified failure.
func failureMessage(kind domain.ErrorKind, err error) string {
	switch kind {
	case domain.KindNotFound:
		return msgUserNotFound
	case domain.KindRateLimited:
		return msgRateLimited
	case domain.KindUnauthorized:
		return msgUnauthorized
	case domain.KindForbidden:
		return msgForbidden
	case domain.KindDecodeError:
		return msgDecode
	case domain.KindServerError:
		var pe *domain.ProviderError
		if errors.As(err, &pe) && pe.StatusCode != 0 {
			return fmt.Sprintf("Server error: %d", pe.StatusCode)
		}
		return "Server error."
	default:
		cause := err
		var pe *domain.ProviderError
		if errors.As(err, &pe) && pe.Err != nil {
			cause = pe.Err
		}
		return fmt.Sprintf("Network error: %v", cause)
	}
}
