package core_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgeworks/forgestat/core"
	"github.com/forgeworks/forgestat/core/identity"
	"github.com/forgeworks/forgestat/core/window"
	"github.com/forgeworks/forgestat/internal/contract"
	"github.com/forgeworks/forgestat/schema"
)

var (
	day1 = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	day2 = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	day3 = time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)
)

func testResolver() *identity.Resolver {
	return identity.NewResolver([]schema.User{
		{Login: "alice", Email: "alice@corp.example", FullName: "Alice Cooper", Active: true},
		{Login: "bob", Email: "bob@corp.example", FullName: "Bob Builder", Active: true},
	}, schema.AliasMap{"ci-bot": "bob"}, nil)
}

func repoList(names ...string) []schema.Repository {
	repos := make([]schema.Repository, 0, len(names))
	for _, name := range names {
		repos = append(repos, schema.Repository{
			Owner:    "corp",
			Name:     name,
			CloneURL: "https://git.corp.example/corp/" + name + ".git",
		})
	}
	return repos
}

// sourceFromMap serves canned commit lists keyed by repository name.
func sourceFromMap(byRepo map[string][]schema.RawCommit, errRepos map[string]error) contract.CommitSource {
	return contract.CommitSourceFunc(func(_ context.Context, repo schema.Repository, _ window.Window) ([]schema.RawCommit, error) {
		if err, ok := errRepos[repo.Name]; ok {
			return nil, err
		}
		return byRepo[repo.Name], nil
	})
}

func TestCollectorRun(t *testing.T) {
	byRepo := map[string][]schema.RawCommit{
		"api": {
			{Login: "alice", Email: "alice@corp.example", Timestamp: day2, Additions: 10, Deletions: 2},
			{Login: "ci-bot", Timestamp: day1, Additions: 5, Deletions: 5},
			{Login: "unknown", Timestamp: day1, Additions: 999, Deletions: 999},
			{Login: "drive-by", Email: "x@elsewhere.example", Timestamp: day1, Additions: 7},
		},
		"web": {
			{Login: "Alice Cooper", Email: "alice@corp.example", Timestamp: day3, Additions: 3, Deletions: 1},
			{Login: "alice", Email: "alice@corp.example", Additions: 50, Deletions: 50}, // no timestamp
		},
	}
	collector := core.NewCollector(testResolver(), sourceFromMap(byRepo, nil), window.Window{}, 0)
	result, diag := collector.Run(context.Background(), repoList("api", "web"))

	// Skip counters
	assert.Equal(t, 1, diag.UnknownSkips)
	assert.Equal(t, 1, diag.ExternalSkips)
	assert.Equal(t, 0, diag.EmptyRepos)

	// Repo stats keep input order and exclude skipped commits
	require.Len(t, result.RepoStats, 2)
	api := result.RepoStats[0]
	assert.Equal(t, "corp/api", api.Name)
	assert.Equal(t, 2, api.Commits)
	assert.Equal(t, 15, api.Additions)
	assert.Equal(t, 7, api.Deletions)
	assert.Equal(t, []string{"alice", "bob"}, api.Contributors)
	assert.Equal(t, 2, api.ContributorsCount)

	web := result.RepoStats[1]
	assert.Equal(t, "corp/web", web.Name)
	assert.Equal(t, 1, web.Commits) // timestamp-less commit credited nobody

	// User stats
	alice := result.UserStats["alice"]
	assert.Equal(t, 2, alice.Commits)
	assert.Equal(t, 13, alice.Additions)
	assert.Equal(t, 3, alice.Deletions)
	assert.Equal(t, []string{"corp/api", "corp/web"}, alice.Repos)
	assert.Equal(t, 2, alice.ReposCount)
	assert.Equal(t, "Alice Cooper", alice.FullName)
	assert.Equal(t, day2, alice.FirstCommit)
	assert.Equal(t, day3, alice.LastCommit)

	bob := result.UserStats["bob"]
	assert.Equal(t, 1, bob.Commits)
	assert.Equal(t, day1, bob.FirstCommit)
	assert.Equal(t, day1, bob.LastCommit)

	// Totals are sums over kept repos only
	assert.Equal(t, 2, result.Totals.Repos)
	assert.Equal(t, 3, result.Totals.Commits)
	assert.Equal(t, 18, result.Totals.Additions)
	assert.Equal(t, 8, result.Totals.Deletions)
	assert.Equal(t, 26, result.Totals.Lines)
}

func TestCollectorInvariants(t *testing.T) {
	byRepo := map[string][]schema.RawCommit{
		"api": {
			{Login: "alice", Timestamp: day1, Additions: 4, Deletions: 6},
			{Login: "bob", Timestamp: day2, Additions: 1, Deletions: 0},
		},
	}
	collector := core.NewCollector(testResolver(), sourceFromMap(byRepo, nil), window.Window{}, 0)
	result, _ := collector.Run(context.Background(), repoList("api"))

	for _, rs := range result.RepoStats {
		assert.Equal(t, rs.Additions+rs.Deletions, rs.TotalLines)
	}
	sumCommits, sumAdd, sumDel, sumLines := 0, 0, 0, 0
	for _, rs := range result.RepoStats {
		sumCommits += rs.Commits
		sumAdd += rs.Additions
		sumDel += rs.Deletions
		sumLines += rs.TotalLines
	}
	assert.Equal(t, sumCommits, result.Totals.Commits)
	assert.Equal(t, sumAdd, result.Totals.Additions)
	assert.Equal(t, sumDel, result.Totals.Deletions)
	assert.Equal(t, sumLines, result.Totals.Lines)

	for _, us := range result.UserStats {
		assert.Equal(t, us.Additions+us.Deletions, us.TotalLines)
		assert.Equal(t, len(us.Repos), us.ReposCount)
	}
}

func TestCollectorDropsRepos(t *testing.T) {
	byRepo := map[string][]schema.RawCommit{
		"empty": {},
		"externals-only": {
			{Login: "stranger", Timestamp: day1, Additions: 9, Deletions: 9},
		},
		"kept": {
			{Login: "alice", Timestamp: day1, Additions: 1, Deletions: 1},
		},
	}
	errRepos := map[string]error{"broken": errors.New("connection refused")}

	collector := core.NewCollector(testResolver(), sourceFromMap(byRepo, errRepos), window.Window{}, 0)
	result, diag := collector.Run(context.Background(), repoList("empty", "externals-only", "broken", "kept"))

	// Fetch failures and empty fetches count as empty; attribution drops do not.
	assert.Equal(t, 2, diag.EmptyRepos)
	assert.Equal(t, 1, diag.ExternalSkips)

	require.Len(t, result.RepoStats, 1)
	assert.Equal(t, "corp/kept", result.RepoStats[0].Name)
	assert.Equal(t, 1, result.Totals.Repos)
	assert.Equal(t, 2, result.Totals.Lines)
}

func TestCollectorEarliestLatestTies(t *testing.T) {
	// Two commits at the identical instant keep the first-seen value.
	byRepo := map[string][]schema.RawCommit{
		"api": {
			{Login: "alice", Timestamp: day1, Additions: 1},
			{Login: "alice", Timestamp: day1, Additions: 2},
		},
	}
	collector := core.NewCollector(testResolver(), sourceFromMap(byRepo, nil), window.Window{}, 0)
	result, _ := collector.Run(context.Background(), repoList("api"))

	alice := result.UserStats["alice"]
	assert.Equal(t, day1, alice.FirstCommit)
	assert.Equal(t, day1, alice.LastCommit)
	assert.Equal(t, 2, alice.Commits)
	assert.Equal(t, 1, alice.ReposCount)
}
