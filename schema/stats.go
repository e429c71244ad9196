package schema

import "time"

// UserStat is the finalized per-user contribution rollup for one run.
// TotalLines always equals Additions+Deletions; Repos holds each
// contributed repository name exactly once.
type UserStat struct {
	Login       string    `json:"login"`
	FullName    string    `json:"full_name,omitempty"`
	Commits     int       `json:"commits"`
	Additions   int       `json:"additions"`
	Deletions   int       `json:"deletions"`
	TotalLines  int       `json:"total_lines"`
	Repos       []string  `json:"repos"`
	ReposCount  int       `json:"repos_count"`
	FirstCommit time.Time `json:"first_commit,omitzero"`
	LastCommit  time.Time `json:"last_commit,omitzero"`
}

// RepoStat is the finalized rollup for one repository that had at least one
// attributed commit in the window. Repositories with zero attributed commits
// never appear as a RepoStat.
type RepoStat struct {
	Name              string   `json:"name"` // owner/name
	Commits           int      `json:"commits"`
	Additions         int      `json:"additions"`
	Deletions         int      `json:"deletions"`
	TotalLines        int      `json:"total_lines"`
	Contributors      []string `json:"contributors"`
	ContributorsCount int      `json:"contributors_count"`
}

// Totals are grand totals summed strictly over the kept repository stats,
// never over raw fetch counts or the user rollups.
type Totals struct {
	Repos     int `json:"total_repos"`
	Commits   int `json:"total_commits"`
	Additions int `json:"total_additions"`
	Deletions int `json:"total_deletions"`
	Lines     int `json:"total_lines"`
}

// Result is the immutable aggregation snapshot handed to the renderers
// after a run completes.
type Result struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Since       time.Time           `json:"since,omitzero"`
	Until       time.Time           `json:"until,omitzero"`
	UserStats   map[string]UserStat `json:"user_stats"`
	RepoStats   []RepoStat          `json:"repo_stats"`
	Totals      Totals              `json:"totals"`
}

// Diagnostics are run-level skip counters surfaced alongside the Result,
// never inside it. UnknownSkips counts commits carrying the unknown-author
// sentinel, ExternalSkips counts commits by unmatched outside contributors,
// and EmptyRepos counts repositories whose source yielded no raw commits.
type Diagnostics struct {
	UnknownSkips  int `json:"unknown_skips"`
	ExternalSkips int `json:"external_skips"`
	EmptyRepos    int `json:"empty_repos"`
}
