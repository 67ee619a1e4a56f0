package vcs

import "errors"

// Error values for repository operations.
var (
	// ErrNotRepository indicates the path is not inside a git
	// repository.
	ErrNotRepository = errors.New("not a git repository")

	// ErrDetachedHead indicates HEAD does not point at a branch.
	ErrDetachedHead = errors.New("detached HEAD")

	// ErrBranchNotFound indicates the branch does not exist.
	ErrBranchNotFound = errors.New("branch not found")

	// ErrGitNotInstalled indicates no git binary is on PATH.
	ErrGitNotInstalled = errors.New("git not installed")
)
