package forge

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/forgeworks/forgestat/core/window"
	"github.com/forgeworks/forgestat/internal/contract"
	"github.com/forgeworks/forgestat/schema"
)

// Wire payloads for the Gitea REST v1 endpoints we consume. Only the
// fields the pipeline needs are declared.
type (
	apiUser struct {
		Login    string `json:"login"`
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Active   bool   `json:"active"`
	}

	apiOrg struct {
		Username string `json:"username"`
	}

	apiRepo struct {
		Name        string `json:"name"`
		CloneURL    string `json:"clone_url"`
		Description string `json:"description"`
		Fork        bool   `json:"fork"`
		Owner       struct {
			Login string `json:"login"`
		} `json:"owner"`
	}

	apiCommit struct {
		Author *struct {
			Login string `json:"login"`
		} `json:"author"`
		Commit struct {
			Author struct {
				Name  string `json:"name"`
				Email string `json:"email"`
				Date  string `json:"date"`
			} `json:"author"`
		} `json:"commit"`
		Stats *struct {
			Additions int `json:"additions"`
			Deletions int `json:"deletions"`
			Total     int `json:"total"`
		} `json:"stats"`
	}
)

var _ contract.ForgeClient = &Client{} // Compile-time check

// ListActiveUsers returns all registered accounts, filtered to active ones.
func (c *Client) ListActiveUsers(ctx context.Context) ([]schema.User, error) {
	var users []schema.User
	err := c.getPaged(ctx, "/api/v1/admin/users", nil, func(page json.RawMessage) (int, error) {
		var batch []apiUser
		if err := json.Unmarshal(page, &batch); err != nil {
			return 0, err
		}
		for _, u := range batch {
			if !u.Active {
				continue
			}
			users = append(users, schema.User{
				Login:    u.Login,
				Email:    u.Email,
				FullName: u.FullName,
				Active:   true,
			})
		}
		return len(batch), nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// ListOrgs returns the names of all organizations on the forge.
func (c *Client) ListOrgs(ctx context.Context) ([]string, error) {
	var orgs []string
	err := c.getPaged(ctx, "/api/v1/admin/orgs", nil, func(page json.RawMessage) (int, error) {
		var batch []apiOrg
		if err := json.Unmarshal(page, &batch); err != nil {
			return 0, err
		}
		for _, o := range batch {
			orgs = append(orgs, o.Username)
		}
		return len(batch), nil
	})
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

// ListOrgRepos returns an organization's repositories with forks excluded.
func (c *Client) ListOrgRepos(ctx context.Context, org string) ([]schema.Repository, error) {
	var repos []schema.Repository
	path := "/api/v1/orgs/" + url.PathEscape(org) + "/repos"
	err := c.getPaged(ctx, path, nil, func(page json.RawMessage) (int, error) {
		var batch []apiRepo
		if err := json.Unmarshal(page, &batch); err != nil {
			return 0, err
		}
		for _, r := range batch {
			if r.Fork {
				continue
			}
			owner := r.Owner.Login
			if owner == "" {
				owner = org
			}
			repos = append(repos, schema.Repository{
				Owner:       owner,
				Name:        r.Name,
				CloneURL:    r.CloneURL,
				Description: r.Description,
			})
		}
		return len(batch), nil
	})
	if err != nil {
		return nil, err
	}
	return repos, nil
}

// ListAllRepos walks every organization in order and concatenates their
// repositories, preserving the forge's listing order for reproducible runs.
func (c *Client) ListAllRepos(ctx context.Context) ([]schema.Repository, error) {
	orgs, err := c.ListOrgs(ctx)
	if err != nil {
		return nil, err
	}
	var all []schema.Repository
	for _, org := range orgs {
		repos, err := c.ListOrgRepos(ctx, org)
		if err != nil {
			return nil, err
		}
		all = append(all, repos...)
	}
	return all, nil
}

// ListRepoCommits returns a repository's commits within the window, mapped
// to raw commit records. Commits whose instant does not parse keep a zero
// timestamp; downstream aggregation drops them silently.
func (c *Client) ListRepoCommits(ctx context.Context, repo schema.Repository, win window.Window) ([]schema.RawCommit, error) {
	query := url.Values{}
	query.Set("stat", "true")
	if !win.Since.IsZero() {
		query.Set("since", win.Since.UTC().Format(time.RFC3339))
	}
	if !win.Until.IsZero() {
		query.Set("until", win.Until.UTC().Format(time.RFC3339))
	}

	var commits []schema.RawCommit
	path := "/api/v1/repos/" + url.PathEscape(repo.Owner) + "/" + url.PathEscape(repo.Name) + "/commits"
	err := c.getPaged(ctx, path, query, func(page json.RawMessage) (int, error) {
		var batch []apiCommit
		if err := json.Unmarshal(page, &batch); err != nil {
			return 0, err
		}
		for _, ac := range batch {
			commits = append(commits, mapCommit(ac))
		}
		return len(batch), nil
	})
	if err != nil {
		return nil, err
	}
	return commits, nil
}

func mapCommit(ac apiCommit) schema.RawCommit {
	rc := schema.RawCommit{
		Login: ac.Commit.Author.Name,
		Email: ac.Commit.Author.Email,
	}
	// Prefer the mapped forge account login over the free-text author name.
	if ac.Author != nil && ac.Author.Login != "" {
		rc.Login = ac.Author.Login
	}
	if ts, err := time.Parse(time.RFC3339, ac.Commit.Author.Date); err == nil {
		rc.Timestamp = ts.UTC()
	}
	if ac.Stats != nil {
		rc.Additions = ac.Stats.Additions
		rc.Deletions = ac.Stats.Deletions
		rc.Total = ac.Stats.Total
	}
	if rc.Total == 0 {
		rc.Total = rc.Additions + rc.Deletions
	}
	return rc
}

// Source adapts the client to the commit source boundary.
type Source struct {
	client *Client
}

var _ contract.CommitSource = &Source{} // Compile-time check

// NewSource wraps a client as a commit source.
func NewSource(client *Client) *Source {
	return &Source{client: client}
}

// Fetch implements the contract.CommitSource interface.
func (s *Source) Fetch(ctx context.Context, repo schema.Repository, win window.Window) ([]schema.RawCommit, error) {
	return s.client.ListRepoCommits(ctx, repo, win)
}
