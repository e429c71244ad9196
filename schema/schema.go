// Package schema has configs, models and shared constants for all parts of forgestat.
package schema

import (
	"fmt"
	"strings"
	"time"
)

// RawCommit is one commit as reported by a commit source, either the forge
// API or a local git log pass. It lives only while its repository is being
// aggregated; the cache persists the raw list verbatim, never this struct
// with any derived state.
type RawCommit struct {
	Login     string    `json:"login"`     // Free-text author login or name
	Email     string    `json:"email"`     // Author email, compared lowercased
	Timestamp time.Time `json:"timestamp"` // Committer instant in UTC; zero means unparseable
	Additions int       `json:"additions"`
	Deletions int       `json:"deletions"`
	Total     int       `json:"total"` // Recomputed from additions+deletions when missing
}

// Lines returns the commit's total changed lines, recomputing it when the
// source did not supply one.
func (c RawCommit) Lines() int {
	if c.Total > 0 {
		return c.Total
	}
	return c.Additions + c.Deletions
}

// User is a registered forge account. The set is loaded once per run,
// filtered to active accounts, and treated as read-only afterwards.
type User struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Active   bool   `json:"active"`
}

// Repository is one non-fork repository hosted on the forge.
type Repository struct {
	Owner       string `json:"owner"`
	Name        string `json:"name"`
	CloneURL    string `json:"clone_url"`
	Description string `json:"description"`
}

// FullName returns the owner-qualified repository name.
func (r Repository) FullName() string {
	return fmt.Sprintf("%s/%s", r.Owner, r.Name)
}

// AliasMap maps an arbitrary external login string to a canonical
// registered login. It is applied before any other identity matching.
type AliasMap map[string]string

// ParseAliases builds an AliasMap from a comma-separated list of
// external:canonical pairs. Entries without a colon or with an empty
// side are ignored.
func ParseAliases(raw string) AliasMap {
	aliases := AliasMap{}
	for pair := range strings.SplitSeq(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		external, canonical, ok := strings.Cut(pair, ":")
		external = strings.TrimSpace(external)
		canonical = strings.TrimSpace(canonical)
		if !ok || external == "" || canonical == "" {
			continue
		}
		aliases[external] = canonical
	}
	return aliases
}
