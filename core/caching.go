package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/forgeworks/forgestat/core/window"
	"github.com/forgeworks/forgestat/internal/contract"
	"github.com/forgeworks/forgestat/internal/logx"
	"github.com/forgeworks/forgestat/schema"
)

// currentCacheVersion defines the version of the cached payload layout.
const currentCacheVersion = 1

// cacheTTL bounds how long a cached commit list stays valid.
const cacheTTL = 7 * 24 * time.Hour

// CachedSource wraps a CommitSource with a CacheStore so repeated runs over
// the same repository and window skip the network or subprocess round-trip.
// The engine downstream cannot tell a cached list from a fresh one.
type CachedSource struct {
	inner contract.CommitSource
	store contract.CacheStore
}

var _ contract.CommitSource = &CachedSource{} // Compile-time check

// NewCachedSource decorates inner with store. A nil store returns inner
// unchanged.
func NewCachedSource(inner contract.CommitSource, store contract.CacheStore) contract.CommitSource {
	if store == nil {
		return inner
	}
	return &CachedSource{inner: inner, store: store}
}

// Fetch implements the CommitSource interface.
func (s *CachedSource) Fetch(ctx context.Context, repo schema.Repository, win window.Window) ([]schema.RawCommit, error) {
	key := generateCacheKey(repo, win)

	if commits := s.checkCacheHit(key); commits != nil {
		logx.WithField("repo", repo.FullName()).Debug("commit cache hit")
		return commits, nil
	}

	commits, err := s.inner.Fetch(ctx, repo, win)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(commits); err == nil {
		_ = s.store.Set(key, data, currentCacheVersion, time.Now().Unix())
	}
	return commits, nil
}

// checkCacheHit attempts to retrieve and validate a cached commit list.
func (s *CachedSource) checkCacheHit(key string) []schema.RawCommit {
	data, version, ts, err := s.store.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	if version == currentCacheVersion {
		entryTimestamp := time.Unix(ts, 0)
		if time.Since(entryTimestamp) <= cacheTTL {
			var commits []schema.RawCommit
			if err := json.Unmarshal(data, &commits); err == nil && len(commits) > 0 {
				return commits
			}
		}
	}

	return nil // Cache miss (stale, empty or version mismatch)
}

// generateCacheKey creates a unique key from the repository and window.
func generateCacheKey(repo schema.Repository, win window.Window) string {
	since, until := "", ""
	if !win.Since.IsZero() {
		since = win.Since.UTC().Format(time.RFC3339)
	}
	if !win.Until.IsZero() {
		until = win.Until.UTC().Format(time.RFC3339)
	}
	key := fmt.Sprintf("commits:%s:%s:%s", repo.CloneURL, since, until)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
