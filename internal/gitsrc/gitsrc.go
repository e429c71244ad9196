// Package gitsrc fetches commit history by cloning repositories into a
// local work directory and parsing git log output. It is the subprocess
// alternative to the forge API commit source.
package gitsrc

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/forgeworks/forgestat/core/window"
	"github.com/forgeworks/forgestat/internal/logx"
	"github.com/forgeworks/forgestat/schema"
)

// logFormat emits one header line per commit, followed by its numstat
// lines. The -- prefix marks header lines during parsing.
const logFormat = "--%an|%ae|%aI"

// Runner executes a git command and returns its stdout. This allows the
// source to be tested without a real git executable.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) ([]byte, error)
}

// LocalRunner implements the Runner interface by executing the local
// 'git' binary installed on the machine.
type LocalRunner struct{}

var _ Runner = LocalRunner{} // Compile-time check

// Run executes a git command rooted at dir.
func (LocalRunner) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	fullArgs := append([]string{"-C", dir}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	out, err := cmd.Output()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		stderr := strings.TrimSpace(string(exitErr.Stderr))
		return nil, fmt.Errorf("git %s failed in %q: %s", args[0], dir, stderr)
	} else if err != nil {
		return nil, fmt.Errorf("git command failed: %w. Ensure Git is installed and available on your PATH", err)
	}
	return out, nil
}

// Source clones or refreshes each repository under a work directory and
// reads its history with git log. Credentials are embedded into the clone
// URL the way the forge expects them.
type Source struct {
	root     string
	token    string
	username string
	password string
	runner   Runner
}

// NewSource builds a git-backed commit source. A nil runner falls back to
// the local git binary.
func NewSource(root, token, username, password string, runner Runner) *Source {
	if runner == nil {
		runner = LocalRunner{}
	}
	return &Source{
		root:     root,
		token:    token,
		username: username,
		password: password,
		runner:   runner,
	}
}

// Fetch implements the contract.CommitSource interface. It synchronizes
// the local clone and parses the windowed log into raw commit records.
func (s *Source) Fetch(ctx context.Context, repo schema.Repository, win window.Window) ([]schema.RawCommit, error) {
	path, err := s.sync(ctx, repo)
	if err != nil {
		return nil, err
	}

	args := []string{"log", "--all", "--numstat", "--pretty=format:" + logFormat}
	if !win.Since.IsZero() {
		args = append(args, "--since="+win.Since.UTC().Format(time.RFC3339))
	}
	if !win.Until.IsZero() {
		args = append(args, "--until="+win.Until.UTC().Format(time.RFC3339))
	}
	out, err := s.runner.Run(ctx, path, args...)
	if err != nil {
		return nil, err
	}
	return ParseLog(out), nil
}

// sync clones the repository on first use and fetches updates afterwards,
// returning the local checkout path.
func (s *Source) sync(ctx context.Context, repo schema.Repository) (string, error) {
	path := filepath.Join(s.root, repo.Owner, repo.Name)
	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		logx.WithField("repo", repo.FullName()).Debug("fetching existing clone")
		if _, err := s.runner.Run(ctx, path, "fetch", "--all", "--prune", "--quiet"); err != nil {
			return "", err
		}
		return path, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	cloneURL, err := s.authURL(repo.CloneURL)
	if err != nil {
		return "", err
	}
	logx.WithField("repo", repo.FullName()).Debug("cloning repository")
	if _, err := s.runner.Run(ctx, filepath.Dir(path), "clone", "--quiet", cloneURL, path); err != nil {
		return "", err
	}
	return path, nil
}

// authURL embeds the configured credentials into the clone URL. Tokens use
// the oauth2 username convention.
func (s *Source) authURL(cloneURL string) (string, error) {
	u, err := url.Parse(cloneURL)
	if err != nil {
		return "", fmt.Errorf("invalid clone url %q: %w", cloneURL, err)
	}
	switch {
	case s.token != "":
		u.User = url.UserPassword("oauth2", s.token)
	case s.username != "":
		u.User = url.UserPassword(s.username, s.password)
	}
	return u.String(), nil
}
