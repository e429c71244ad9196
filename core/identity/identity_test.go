package identity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/forgeworks/forgestat/core/identity"
	"github.com/forgeworks/forgestat/schema"
)

func testUsers() []schema.User {
	return []schema.User{
		{Login: "al", Email: "al@corp.example", FullName: "Al Short", Active: true},
		{Login: "alice", Email: "Alice@corp.example", FullName: "Alice Cooper", Active: true},
		{Login: "bob", Email: "bob@corp.example", FullName: "Bob Builder", Active: true},
	}
}

func TestResolveOrder(t *testing.T) {
	resolver := identity.NewResolver(testUsers(), schema.AliasMap{"acooper": "alice"}, nil)

	tests := []struct {
		name        string
		login       string
		email       string
		wantLogin   string
		wantOutcome identity.Outcome
	}{
		{
			name:        "unknown sentinel skipped before anything else",
			login:       "unknown",
			email:       "al@corp.example",
			wantOutcome: identity.SkipUnknown,
		},
		{
			name:        "alias maps to canonical login",
			login:       "acooper",
			wantLogin:   "alice",
			wantOutcome: identity.Resolved,
		},
		{
			name:        "exact login wins over fuzzy containment",
			login:       "al",
			wantLogin:   "al",
			wantOutcome: identity.Resolved,
		},
		{
			name:        "email match is case insensitive",
			login:       "Somebody Else",
			email:       "ALICE@CORP.EXAMPLE",
			wantLogin:   "alice",
			wantOutcome: identity.Resolved,
		},
		{
			name:        "fuzzy match strips spaces and lowercases",
			login:       "Bob Builder bob",
			wantLogin:   "bob",
			wantOutcome: identity.Resolved,
		},
		{
			name:        "no match is an external contributor",
			login:       "drive-by",
			email:       "stranger@elsewhere.example",
			wantOutcome: identity.SkipExternal,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			login, outcome := resolver.Resolve(tt.login, tt.email)
			assert.Equal(t, tt.wantOutcome, outcome)
			assert.Equal(t, tt.wantLogin, login)
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	resolver := identity.NewResolver(testUsers(), nil, nil)
	first, firstOutcome := resolver.Resolve("Alice Cooper", "alice@corp.example")
	second, secondOutcome := resolver.Resolve("Alice Cooper", "alice@corp.example")
	assert.Equal(t, first, second)
	assert.Equal(t, firstOutcome, secondOutcome)
}

func TestDuplicateEmailKeepsFirstSortedLogin(t *testing.T) {
	users := []schema.User{
		{Login: "zeta", Email: "shared@corp.example", Active: true},
		{Login: "alpha", Email: "shared@corp.example", Active: true},
	}
	resolver := identity.NewResolver(users, nil, nil)
	login, outcome := resolver.Resolve("Someone", "shared@corp.example")
	assert.Equal(t, identity.Resolved, outcome)
	assert.Equal(t, "alpha", login)
}

func TestSubstringMatcher(t *testing.T) {
	m := identity.SubstringMatcher{}

	login, ok := m.Match("Alice C", []string{"alice", "bob"})
	assert.True(t, ok)
	assert.Equal(t, "alice", login)

	_, ok = m.Match("", []string{"alice"})
	assert.False(t, ok)

	_, ok = m.Match("charlie", []string{"alice", "bob"})
	assert.False(t, ok)
}

type stubMatcher struct{ login string }

func (s stubMatcher) Match(string, []string) (string, bool) {
	return s.login, s.login != ""
}

func TestPluggableMatcher(t *testing.T) {
	resolver := identity.NewResolver(testUsers(), nil, stubMatcher{login: "bob"})
	login, outcome := resolver.Resolve("anything goes", "")
	assert.Equal(t, identity.Resolved, outcome)
	assert.Equal(t, "bob", login)
}
