package vcs

import (
	"context"
	"fmt"
	"strings"
)

// Branch is one local branch.
type Branch struct {
	// Name is the short branch name.
	Name string

	// Hash is the abbreviated tip commit.
	Hash string

	// Current reports whether HEAD points at the branch.
	Current bool
}

// Branches lists local branches.
func (r *Repository) Branches(ctx context.Context) ([]Branch, error) {
	out, err := r.git(ctx, "for-each-ref",
		"--format=%(refname:short)%00%(objectname:short)%00%(HEAD)",
		"refs/heads")
	if err != nil {
		return nil, err
	}
	return parseBranches(out)
}

// parseBranches parses for-each-ref output with NUL field separators,
// one branch per line.
func parseBranches(out string) ([]Branch, error) {
	var branches []Branch
	for _, line := range strings.Split(out, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\x00")
		if len(fields) != 3 {
			return nil, fmt.Errorf("malformed branch record: %q", line)
		}
		branches = append(branches, Branch{
			Name:    fields[0],
			Hash:    fields[1],
			Current: fields[2] == "*",
		})
	}
	return branches, nil
}

// CurrentBranch returns the branch HEAD points at, or ErrDetachedHead.
func (r *Repository) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.git(ctx, "symbolic-ref", "--short", "HEAD")
	if err != nil {
		if strings.Contains(err.Error(), "not a symbolic ref") {
			return "", ErrDetachedHead
		}
		return "", fmt.Errorf("current branch: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Checkout switches the working tree to the named branch.
func (r *Repository) Checkout(ctx context.Context, name string) error {
	if _, err := r.git(ctx, "checkout", name); err != nil {
		if strings.Contains(err.Error(), "did not match any") {
			return fmt.Errorf("%w: %s", ErrBranchNotFound, name)
		}
		return fmt.Errorf("checkout %s: %w", name, err)
	}
	return nil
}
