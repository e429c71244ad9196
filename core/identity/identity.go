// Package identity maps raw commit author identities onto registered
// forge accounts.
package identity

import (
	"sort"
	"strings"

	"github.com/forgeworks/forgestat/schema"
)

// Outcome classifies one resolution attempt.
type Outcome int

// All resolution outcomes.
const (
	Resolved     Outcome = iota
	SkipUnknown          // author is the unknown-author sentinel
	SkipExternal         // no registered account matched
)

// Matcher is the last-resort fuzzy strategy consulted only after exact
// login and email matching have failed. Logins are always presented in
// sorted order so the first match is deterministic.
type Matcher interface {
	Match(value string, logins []string) (string, bool)
}

// SubstringMatcher matches when the lowercased, space-stripped author
// value and a lowercased login contain each other, either way around.
// It can over-match on short names; swap in a stricter Matcher where
// that matters.
type SubstringMatcher struct{}

// Match implements the Matcher interface.
func (SubstringMatcher) Match(value string, logins []string) (string, bool) {
	needle := strings.ReplaceAll(strings.ToLower(value), " ", "")
	if needle == "" {
		return "", false
	}
	for _, login := range logins {
		candidate := strings.ToLower(login)
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			return login, true
		}
	}
	return "", false
}

// Resolver resolves raw author identities against a fixed registered-user
// set and alias map. It is read-only after construction, so resolving the
// same identity twice always yields the same answer.
type Resolver struct {
	users   map[string]schema.User
	emails  map[string]string
	logins  []string
	aliases schema.AliasMap
	matcher Matcher
}

// NewResolver builds a Resolver over the given users and aliases. A nil
// matcher falls back to SubstringMatcher.
func NewResolver(users []schema.User, aliases schema.AliasMap, matcher Matcher) *Resolver {
	if matcher == nil {
		matcher = SubstringMatcher{}
	}
	r := &Resolver{
		users:   make(map[string]schema.User, len(users)),
		emails:  make(map[string]string, len(users)),
		logins:  make([]string, 0, len(users)),
		aliases: aliases,
		matcher: matcher,
	}
	for _, u := range users {
		if _, ok := r.users[u.Login]; ok {
			continue
		}
		r.users[u.Login] = u
		r.logins = append(r.logins, u.Login)
	}
	sort.Strings(r.logins)
	// Registered emails are assumed unique; if two accounts share one, the
	// first login in sorted order keeps it.
	for _, login := range r.logins {
		email := strings.ToLower(r.users[login].Email)
		if email == "" {
			continue
		}
		if _, ok := r.emails[email]; !ok {
			r.emails[email] = login
		}
	}
	return r
}

// User returns the registered account for a canonical login.
func (r *Resolver) User(login string) (schema.User, bool) {
	u, ok := r.users[login]
	return u, ok
}

// Logins returns the registered logins in sorted order.
func (r *Resolver) Logins() []string {
	return r.logins
}

// Resolve maps a raw (login-or-name, email) pair to a canonical registered
// login. Matching order is load-bearing: the sentinel check comes first,
// then alias substitution, exact login match, email match, and only then
// the fuzzy matcher. Exact must precede fuzzy so a short login is never
// swallowed by a longer name that merely contains it.
func (r *Resolver) Resolve(login, email string) (string, Outcome) {
	if login == schema.UnknownAuthor {
		return "", SkipUnknown
	}
	if canonical, ok := r.aliases[login]; ok {
		login = canonical
	}
	if _, ok := r.users[login]; ok {
		return login, Resolved
	}
	if email != "" {
		if canonical, ok := r.emails[strings.ToLower(email)]; ok {
			return canonical, Resolved
		}
	}
	if canonical, ok := r.matcher.Match(login, r.logins); ok {
		return canonical, Resolved
	}
	return "", SkipExternal
}
