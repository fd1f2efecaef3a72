package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ghview/internal/core/domain"
)

func octocatSnapshot() domain.Snapshot {
	updated := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return domain.Snapshot{
		Target: "octocat",
		Profile: &domain.Profile{
			Login:     "octocat",
			Name:      "The Octocat",
			Bio:       "Mascot",
			Followers: 10,
			Following: 2,
		},
		Repositories: []domain.RepositoryEntry{
			{Name: "hello-world", Stars: 5, Forks: 1, Owner: domain.Owner{Login: "octocat"}, UpdatedAt: updated, Description: "My first repo"},
			{Name: "spoon-knife", Stars: 3, Owner: domain.Owner{Login: "octocat"}, UpdatedAt: updated.AddDate(0, -1, 0)},
		},
	}
}

func TestUserCmd_PrintsProfileAndRepositories(t *testing.T) {
	ts, restore := setupTestServices()
	defer restore()
	ts.sync.onLookup = func(string) domain.Snapshot { return octocatSnapshot() }

	out, err := execute(t, "user", "  octocat ")

	require.NoError(t, err)
	assert.Equal(t, []string{"octocat"}, ts.sync.Lookups())
	assert.Contains(t, out, "octocat (The Octocat)")
	assert.Contains(t, out, "Mascot")
	assert.Contains(t, out, "Followers: 10  Following: 2")
	assert.Contains(t, out, "Repositories (2):")
	assert.Contains(t, out, "octocat/hello-world  ★ 5  ⑂ 1  updated 2024-03-01")
	assert.Contains(t, out, "My first repo")
	assert.Contains(t, out, "octocat/spoon-knife")
}

func TestUserCmd_Limit(t *testing.T) {
	ts, restore := setupTestServices()
	defer restore()
	ts.sync.onLookup = func(string) domain.Snapshot { return octocatSnapshot() }

	out, err := execute(t, "user", "octocat", "--limit", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "octocat/hello-world")
	assert.NotContains(t, out, "octocat/spoon-knife")
	assert.Contains(t, out, "... and 1 more")
}

func TestUserCmd_JSON(t *testing.T) {
	ts, restore := setupTestServices()
	defer restore()
	ts.sync.onLookup = func(string) domain.Snapshot { return octocatSnapshot() }

	out, err := execute(t, "user", "octocat", "--json")
	require.NoError(t, err)

	var snap domain.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, "octocat", snap.Target)
	require.NotNil(t, snap.Profile)
	assert.Len(t, snap.Repositories, 2)
}

func TestUserCmd_BlankUsername(t *testing.T) {
	ts, restore := setupTestServices()
	defer restore()

	_, err := execute(t, "user", "   ")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be blank")
	assert.Empty(t, ts.sync.Lookups())
}

func TestUserCmd_RateLimitedError(t *testing.T) {
	ts, restore := setupTestServices()
	defer restore()
	reset := time.Now().Add(10 * time.Minute)
	ts.sync.onLookup = func(string) domain.Snapshot {
		return domain.Snapshot{
			Target:         "octocat",
			Error:          &domain.SnapshotError{Kind: domain.KindRateLimited, Message: "API rate limit exceeded."},
			RateLimitReset: &reset,
		}
	}

	_, err := execute(t, "user", "octocat")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API rate limit exceeded.")
	assert.Contains(t, err.Error(), "Resets at "+reset.Local().Format(time.Kitchen))
}

func TestUserCmd_RecoverableNotice(t *testing.T) {
	ts, restore := setupTestServices()
	defer restore()
	ts.sync.onLookup = func(string) domain.Snapshot {
		return domain.Snapshot{
			Target:  "ghost",
			Profile: &domain.Profile{Login: "ghost"},
			Error:   &domain.SnapshotError{Kind: domain.KindNotFound, Message: "ghost has no public repositories.", Recoverable: true},
		}
	}

	out, err := execute(t, "user", "ghost")

	require.NoError(t, err)
	assert.Contains(t, out, "ghost has no public repositories.")
	assert.NotContains(t, out, "Repositories (")
}

func TestUserCmd_RequiresOneArg(t *testing.T) {
	_, restore := setupTestServices()
	defer restore()

	_, err := execute(t, "user")
	assert.Error(t, err)
}
