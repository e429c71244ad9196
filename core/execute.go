package core

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/forgeworks/forgestat/core/identity"
	"github.com/forgeworks/forgestat/internal/contract"
	"github.com/forgeworks/forgestat/internal/forge"
	"github.com/forgeworks/forgestat/internal/gitsrc"
	"github.com/forgeworks/forgestat/internal/logx"
	"github.com/forgeworks/forgestat/internal/outwriter"
	"github.com/forgeworks/forgestat/schema"
)

// newForgeClient builds the REST client from the validated configuration.
func newForgeClient(cfg *contract.Config) *forge.Client {
	return forge.NewClient(forge.Options{
		BaseURL:  cfg.ForgeURL,
		Token:    cfg.Token,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  cfg.Timeout,
	})
}

// buildSource selects the commit source for the run and wraps it with the
// commit cache.
func buildSource(cfg *contract.Config, client *forge.Client, mgr contract.CacheManager) contract.CommitSource {
	var source contract.CommitSource
	if cfg.Source == schema.GitSource {
		source = gitsrc.NewSource(cfg.CloneDir, cfg.Token, cfg.Username, cfg.Password, nil)
	} else {
		source = forge.NewSource(client)
	}

	var store contract.CacheStore
	if mgr != nil {
		store = mgr.GetCommitStore()
	}
	return NewCachedSource(source, store)
}

// ExecuteStats runs the full aggregation pass: registered users and
// repositories from the forge, per-repository commit collection, identity
// resolution, and the rendered report. Each run is recorded in the history
// store when one is configured.
func ExecuteStats(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	start := time.Now()
	client := newForgeClient(cfg)

	users, err := client.ListActiveUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list registered users: %w", err)
	}
	repos, err := client.ListAllRepos(ctx)
	if err != nil {
		return fmt.Errorf("failed to list repositories: %w", err)
	}
	logx.WithFields(logrus.Fields{
		"users": len(users),
		"repos": len(repos),
	}).Info("starting aggregation run")

	var history contract.HistoryStore
	var runID int64
	if mgr != nil {
		history = mgr.GetHistoryStore()
	}
	if history != nil {
		// A history failure never blocks the report itself.
		if runID, err = history.BeginRun(start, cfg.Window); err != nil {
			logx.WithError(err).Warn("failed to record run start")
			history = nil
		}
	}

	resolver := identity.NewResolver(users, cfg.Aliases, identity.SubstringMatcher{})
	source := buildSource(cfg, client, mgr)
	collector := NewCollector(resolver, source, cfg.Window, cfg.Timeout)
	result, diag := collector.Run(ctx, repos)

	if history != nil {
		summary := schema.RunSummary{
			ReposFetched: len(repos),
			ReposKept:    result.Totals.Repos,
			TotalCommits: result.Totals.Commits,
			ActiveUsers:  len(result.UserStats),
			Diagnostics:  diag,
		}
		if err := history.EndRun(runID, time.Now(), summary); err != nil {
			logx.WithError(err).Warn("failed to record run completion")
		}
	}

	return outwriter.NewOutWriter().WriteReport(&result, users, diag, cfg, time.Since(start))
}

// ExecuteUsers lists the registered active forge accounts.
func ExecuteUsers(ctx context.Context, cfg *contract.Config) error {
	client := newForgeClient(cfg)
	users, err := client.ListActiveUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to list registered users: %w", err)
	}
	return outwriter.NewOutWriter().WriteUsers(users, cfg)
}

// ExecuteRepos lists all non-fork repositories across every organization.
func ExecuteRepos(ctx context.Context, cfg *contract.Config) error {
	client := newForgeClient(cfg)
	repos, err := client.ListAllRepos(ctx)
	if err != nil {
		return fmt.Errorf("failed to list repositories: %w", err)
	}
	return outwriter.NewOutWriter().WriteRepos(repos, cfg)
}

// ExecuteHistoryList renders the most recent recorded runs.
func ExecuteHistoryList(cfg *contract.Config, mgr contract.CacheManager) error {
	store := mgr.GetHistoryStore()
	if store == nil {
		return fmt.Errorf("run history is not configured")
	}
	records, err := store.ListRuns(cfg.ResultLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	return outwriter.NewOutWriter().WriteRuns(records, cfg)
}
