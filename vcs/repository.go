package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Repository is a handle on a local git working tree. Methods shell
// out to the git binary; every call honors its context and falls back
// to a per-repository timeout.
type Repository struct {
	root    string
	timeout time.Duration
}

// Option configures a Repository.
type Option func(*Repository)

// WithTimeout sets the default timeout applied when a call's context
// has no deadline.
func WithTimeout(d time.Duration) Option {
	return func(r *Repository) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// Open returns a repository rooted at path. The path must contain a
// .git directory or worktree link file.
func Open(path string, opts ...Option) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	if !hasGitDir(abs) {
		return nil, fmt.Errorf("%w: %s", ErrNotRepository, path)
	}
	r := &Repository{root: abs, timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Discover walks up from path to the enclosing repository root and
// opens it.
func Discover(path string, opts ...Option) (*Repository, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	for dir := abs; ; {
		if hasGitDir(dir) {
			return Open(dir, opts...)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("%w: no repository above %s", ErrNotRepository, path)
		}
		dir = parent
	}
}

// Root returns the repository root directory.
func (r *Repository) Root() string { return r.root }

func hasGitDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if err != nil {
		return false
	}
	if info.IsDir() {
		return true
	}
	// Worktrees use a .git file pointing at the real git dir.
	content, err := os.ReadFile(filepath.Join(dir, ".git"))
	return err == nil && bytes.HasPrefix(content, []byte("gitdir:"))
}

// git runs one git command in the repository root and returns stdout.
func (r *Repository) git(ctx context.Context, args ...string) (string, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if execErr, ok := err.(*exec.Error); ok && execErr.Err == exec.ErrNotFound {
			return "", ErrGitNotInstalled
		}
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(msg, "not a git repository") {
			return "", ErrNotRepository
		}
		return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), msg)
	}
	return stdout.String(), nil
}
