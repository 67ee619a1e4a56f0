package vcs

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// FileState classifies one side of a file's change.
type FileState int

const (
	// StateModified indicates changed content.
	StateModified FileState = iota
	// StateAdded indicates a new file.
	StateAdded
	// StateDeleted indicates a removed file.
	StateDeleted
	// StateRenamed indicates a moved file.
	StateRenamed
	// StateCopied indicates a copied file.
	StateCopied
	// StateConflict indicates an unmerged path.
	StateConflict
)

// String returns the state name.
func (s FileState) String() string {
	switch s {
	case StateModified:
		return "modified"
	case StateAdded:
		return "added"
	case StateDeleted:
		return "deleted"
	case StateRenamed:
		return "renamed"
	case StateCopied:
		return "copied"
	case StateConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// FileChange is one staged or unstaged change.
type FileChange struct {
	// Path is relative to the repository root.
	Path string

	// OldPath is set for renames and copies.
	OldPath string

	// State classifies the change.
	State FileState

	// Staged reports whether the change sits in the index.
	Staged bool
}

// Status is the working tree state reported by git status.
type Status struct {
	// Branch is the checked-out branch, empty when detached.
	Branch string

	// Upstream is the tracking branch, if configured.
	Upstream string

	// Ahead and Behind count commits relative to Upstream.
	Ahead  int
	Behind int

	// Head is the abbreviated HEAD commit hash.
	Head string

	// Detached reports a detached HEAD checkout.
	Detached bool

	// Changes holds staged and unstaged file changes in git's output
	// order.
	Changes []FileChange

	// Untracked lists paths git does not track.
	Untracked []string

	// Conflicts lists unmerged paths.
	Conflicts []string
}

// Dirty reports whether any change, untracked file, or conflict
// exists.
func (s *Status) Dirty() bool {
	return len(s.Changes) > 0 || len(s.Untracked) > 0 || len(s.Conflicts) > 0
}

// Staged returns only the index side of Changes.
func (s *Status) Staged() []FileChange {
	return s.filter(true)
}

// Unstaged returns only the worktree side of Changes.
func (s *Status) Unstaged() []FileChange {
	return s.filter(false)
}

func (s *Status) filter(staged bool) []FileChange {
	var out []FileChange
	for _, c := range s.Changes {
		if c.Staged == staged {
			out = append(out, c)
		}
	}
	return out
}

// Status runs git status and parses the result.
func (r *Repository) Status(ctx context.Context) (*Status, error) {
	out, err := r.git(ctx, "status", "--porcelain=v2", "--branch", "--untracked-files=all", "-z")
	if err != nil {
		return nil, err
	}
	return ParseStatus(out)
}

// ParseStatus parses NUL-terminated `git status --porcelain=v2
// --branch -z` output.
func ParseStatus(out string) (*Status, error) {
	status := &Status{}
	records := strings.Split(out, "\x00")
	for i := 0; i < len(records); i++ {
		rec := records[i]
		if rec == "" {
			continue
		}
		switch rec[0] {
		case '#':
			parseHeader(status, rec)
		case '1':
			if err := parseOrdinary(status, rec); err != nil {
				return nil, err
			}
		case '2':
			// The rename record's original path follows as its own
			// NUL-terminated field.
			var orig string
			if i+1 < len(records) {
				i++
				orig = records[i]
			}
			if orig == "" {
				return nil, fmt.Errorf("rename record missing origin path: %q", rec)
			}
			if err := parseRename(status, rec, orig); err != nil {
				return nil, err
			}
		case 'u':
			if err := parseUnmerged(status, rec); err != nil {
				return nil, err
			}
		case '?':
			status.Untracked = append(status.Untracked, rec[2:])
		case '!':
			// Ignored entries only appear on request.
		default:
			return nil, fmt.Errorf("unrecognized status record: %q", rec)
		}
	}
	return status, nil
}

func parseHeader(status *Status, rec string) {
	fields := strings.Fields(rec)
	if len(fields) < 3 {
		return
	}
	switch fields[1] {
	case "branch.oid":
		if fields[2] != "(initial)" {
			status.Head = shortHash(fields[2])
		}
	case "branch.head":
		if fields[2] == "(detached)" {
			status.Detached = true
		} else {
			status.Branch = fields[2]
		}
	case "branch.upstream":
		status.Upstream = fields[2]
	case "branch.ab":
		if len(fields) >= 4 {
			status.Ahead, _ = strconv.Atoi(strings.TrimPrefix(fields[2], "+"))
			status.Behind, _ = strconv.Atoi(strings.TrimPrefix(fields[3], "-"))
		}
	}
}

// parseOrdinary handles `1 XY sub mH mI mW hH hI path` records.
func parseOrdinary(status *Status, rec string) error {
	fields := strings.SplitN(rec, " ", 9)
	if len(fields) < 9 {
		return fmt.Errorf("malformed status record: %q", rec)
	}
	xy, path := fields[1], fields[8]
	appendChange(status, path, "", xy)
	return nil
}

// parseRename handles `2 XY sub mH mI mW hH hI Xscore path` records;
// orig is the pre-rename path from the following field.
func parseRename(status *Status, rec, orig string) error {
	fields := strings.SplitN(rec, " ", 10)
	if len(fields) < 10 {
		return fmt.Errorf("malformed rename record: %q", rec)
	}
	xy, path := fields[1], fields[9]
	appendChange(status, path, orig, xy)
	return nil
}

// parseUnmerged handles `u XY sub m1 m2 m3 mW h1 h2 h3 path` records.
func parseUnmerged(status *Status, rec string) error {
	fields := strings.SplitN(rec, " ", 11)
	if len(fields) < 11 {
		return fmt.Errorf("malformed unmerged record: %q", rec)
	}
	status.Conflicts = append(status.Conflicts, fields[10])
	return nil
}

// appendChange adds the index and worktree sides of an XY pair.
func appendChange(status *Status, path, oldPath, xy string) {
	if len(xy) != 2 {
		return
	}
	if xy[0] != '.' {
		status.Changes = append(status.Changes, FileChange{
			Path:    path,
			OldPath: oldPath,
			State:   stateOf(xy[0]),
			Staged:  true,
		})
	}
	if xy[1] != '.' {
		status.Changes = append(status.Changes, FileChange{
			Path:    path,
			OldPath: oldPath,
			State:   stateOf(xy[1]),
			Staged:  false,
		})
	}
}

func stateOf(c byte) FileState {
	switch c {
	case 'A':
		return StateAdded
	case 'D':
		return StateDeleted
	case 'R':
		return StateRenamed
	case 'C':
		return StateCopied
	case 'U':
		return StateConflict
	default:
		// M, T and anything exotic count as content changes.
		return StateModified
	}
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
