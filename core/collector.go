// Package core implements the statistics aggregation engine: it folds raw
// commit records into per-user and per-repository rollups after identity
// resolution and time-window filtering.
package core

import (
	"context"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/forgeworks/forgestat/core/identity"
	"github.com/forgeworks/forgestat/core/window"
	"github.com/forgeworks/forgestat/internal/contract"
	"github.com/forgeworks/forgestat/internal/logx"
	"github.com/forgeworks/forgestat/schema"
)

// userAcc holds the mutable running totals for one canonical login.
// total always equals additions+deletions.
type userAcc struct {
	commits   int
	additions int
	deletions int
	total     int
	repos     map[string]struct{}
	first     time.Time
	last      time.Time
}

// repoAcc holds the mutable running totals for one repository.
type repoAcc struct {
	name         string
	commits      int
	additions    int
	deletions    int
	total        int
	contributors map[string]struct{}
}

// Collector drives one aggregation run. It owns the accumulators
// exclusively until Run returns their immutable snapshot; there is exactly
// one writer by construction.
type Collector struct {
	resolver *identity.Resolver
	source   contract.CommitSource
	win      window.Window
	timeout  time.Duration

	users map[string]*userAcc
	repos []*repoAcc
	diag  schema.Diagnostics
}

// NewCollector builds a Collector over a resolver and a commit source.
// The timeout bounds each per-repository fetch; zero means no bound.
func NewCollector(resolver *identity.Resolver, source contract.CommitSource, win window.Window, timeout time.Duration) *Collector {
	return &Collector{
		resolver: resolver,
		source:   source,
		win:      win,
		timeout:  timeout,
		users:    make(map[string]*userAcc),
	}
}

// Run processes the repositories strictly in input order, one at a time,
// and returns the final snapshot plus the run's skip counters. Fetch
// failures degrade to an empty commit list for that repository and never
// abort the run.
func (c *Collector) Run(ctx context.Context, repos []schema.Repository) (schema.Result, schema.Diagnostics) {
	for _, repo := range repos {
		c.processRepo(ctx, repo)
	}
	return c.snapshot(), c.diag
}

func (c *Collector) processRepo(ctx context.Context, repo schema.Repository) {
	fetchCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	commits, err := c.source.Fetch(fetchCtx, repo, c.win)
	if err != nil {
		logx.WithError(err).WithField("repo", repo.FullName()).Warn("commit fetch failed, treating repository as empty")
		commits = nil
	}
	if len(commits) == 0 {
		c.diag.EmptyRepos++
		logx.WithField("repo", repo.FullName()).Debug("no commits fetched in window")
		return
	}

	acc := &repoAcc{name: repo.FullName(), contributors: make(map[string]struct{})}
	for _, commit := range commits {
		login, outcome := c.resolver.Resolve(commit.Login, commit.Email)
		switch outcome {
		case identity.SkipUnknown:
			c.diag.UnknownSkips++
			continue
		case identity.SkipExternal:
			c.diag.ExternalSkips++
			continue
		}
		if commit.Timestamp.IsZero() {
			// No usable instant, so the commit credits nobody. This is not
			// an unknown or external skip.
			continue
		}
		c.credit(login, acc, commit)
	}

	if acc.commits == 0 {
		// Nothing attributed: the repository is excluded from the report
		// and from every grand total.
		logx.WithFields(logrus.Fields{
			"repo":    repo.FullName(),
			"fetched": len(commits),
		}).Debug("no attributable commits, dropping repository")
		return
	}
	c.repos = append(c.repos, acc)
}

// credit applies one attributed commit to both the user and repository
// accumulators symmetrically.
func (c *Collector) credit(login string, repo *repoAcc, commit schema.RawCommit) {
	user, ok := c.users[login]
	if !ok {
		user = &userAcc{repos: make(map[string]struct{})}
		c.users[login] = user
	}

	user.commits++
	user.additions += commit.Additions
	user.deletions += commit.Deletions
	user.total = user.additions + user.deletions
	user.repos[repo.name] = struct{}{}

	ts := commit.Timestamp.UTC()
	// Strict comparisons keep the first-seen value on ties, so re-runs over
	// identical inputs reproduce the same snapshot.
	if user.first.IsZero() || ts.Before(user.first) {
		user.first = ts
	}
	if user.last.IsZero() || ts.After(user.last) {
		user.last = ts
	}

	repo.commits++
	repo.additions += commit.Additions
	repo.deletions += commit.Deletions
	repo.total = repo.additions + repo.deletions
	repo.contributors[login] = struct{}{}
}

// snapshot freezes the accumulators into the reportable result. Grand
// totals are summed strictly over the kept repository stats.
func (c *Collector) snapshot() schema.Result {
	result := schema.Result{
		GeneratedAt: time.Now().UTC(),
		Since:       c.win.Since,
		Until:       c.win.Until,
		UserStats:   make(map[string]schema.UserStat, len(c.users)),
		RepoStats:   make([]schema.RepoStat, 0, len(c.repos)),
	}

	for login, acc := range c.users {
		stat := schema.UserStat{
			Login:       login,
			Commits:     acc.commits,
			Additions:   acc.additions,
			Deletions:   acc.deletions,
			TotalLines:  acc.total,
			Repos:       sortedKeys(acc.repos),
			ReposCount:  len(acc.repos),
			FirstCommit: acc.first,
			LastCommit:  acc.last,
		}
		if u, ok := c.resolver.User(login); ok {
			stat.FullName = u.FullName
		}
		result.UserStats[login] = stat
	}

	for _, acc := range c.repos {
		result.RepoStats = append(result.RepoStats, schema.RepoStat{
			Name:              acc.name,
			Commits:           acc.commits,
			Additions:         acc.additions,
			Deletions:         acc.deletions,
			TotalLines:        acc.total,
			Contributors:      sortedKeys(acc.contributors),
			ContributorsCount: len(acc.contributors),
		})
		result.Totals.Repos++
		result.Totals.Commits += acc.commits
		result.Totals.Additions += acc.additions
		result.Totals.Deletions += acc.deletions
		result.Totals.Lines += acc.total
	}

	return result
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
