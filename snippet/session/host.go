package session

import "strings"

// Pos is a buffer position: zero-based line and byte column.
type Pos struct {
	Line int
	Col  int
}

// Before reports whether p precedes q in document order.
func (p Pos) Before(q Pos) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Col < q.Col)
}

// Range is a buffer region between two positions, Start <= End.
type Range struct {
	Start Pos
	End   Pos
}

// IsPoint reports whether the range is empty.
func (r Range) IsPoint() bool { return r.Start == r.End }

// Contains reports whether p lies within the range, boundaries
// included.
func (r Range) Contains(p Pos) bool {
	return !p.Before(r.Start) && !r.End.Before(p)
}

// ContainsRange reports whether o lies entirely within r, boundaries
// included.
func (r Range) ContainsRange(o Range) bool {
	return r.Contains(o.Start) && r.Contains(o.End)
}

// Growth selects how an anchor reacts to edits exactly at its
// boundaries.
type Growth uint8

const (
	// GrowInclusive extends the anchor around edits at either
	// boundary, so text typed exactly at a tabstop's start or end
	// stays inside it. Sessions use this policy for every anchor.
	GrowInclusive Growth = iota

	// GrowExclusive keeps boundary edits outside the anchor.
	GrowExclusive
)

// AnchorID identifies an anchor in the host's anchor arena. Nodes
// hold ids, never positions, so anchor lifetime is decoupled from node
// lifetime.
type AnchorID int

// Change describes one text edit applied to a document. Range is in
// pre-edit coordinates; NewEnd is the end of the inserted text after
// the edit.
type Change struct {
	Range  Range
	Lines  []string
	NewEnd Pos
}

// IsInsert reports whether the change inserted text without removing
// any.
func (c Change) IsInsert() bool { return c.Range.IsPoint() }

// Host is the buffer capability interface a session consumes. The
// in-memory Buffer implements it for tests and headless use; editor
// integrations supply their own.
//
// Hosts are expected to keep anchors adjusted across every edit,
// including edits performed by the session itself, and to invoke the
// registry's Handle* entry points from their change callbacks. All
// calls are serialized by the host; no Host needs to be safe for
// concurrent use.
type Host interface {
	// DocumentID identifies the document, unique within a Registry.
	DocumentID() string

	// LineCount returns the number of lines in the document.
	LineCount() int

	// Lines returns the half-open line range [start, end).
	Lines(start, end int) ([]string, error)

	// Replace replaces r with the given lines and returns the end
	// position of the inserted text. A nil or empty lines slice
	// deletes the range.
	Replace(r Range, lines []string) (Pos, error)

	// CreateAnchor registers a tracked region.
	CreateAnchor(r Range, g Growth) (AnchorID, error)

	// Anchor resolves an anchor to its current range.
	Anchor(id AnchorID) (Range, error)

	// DeleteAnchor removes an anchor from the arena.
	DeleteAnchor(id AnchorID) error

	// Cursor and SetCursor access the cursor position.
	Cursor() Pos
	SetCursor(p Pos) error

	// EnterEditMode asks the host to allow text input; InEditMode
	// reports the current state.
	EnterEditMode()
	InEditMode() bool
}

// lineAt returns line i, or "" when out of range.
func lineAt(h Host, i int) string {
	lines, err := h.Lines(i, i+1)
	if err != nil || len(lines) == 0 {
		return ""
	}
	return lines[0]
}

// textIn returns the text covered by r.
func textIn(h Host, r Range) (string, error) {
	lines, err := h.Lines(r.Start.Line, r.End.Line+1)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", nil
	}
	if len(lines) == 1 {
		return lines[0][r.Start.Col:r.End.Col], nil
	}
	parts := make([]string, 0, len(lines))
	parts = append(parts, lines[0][r.Start.Col:])
	for i := 1; i < len(lines)-1; i++ {
		parts = append(parts, lines[i])
	}
	parts = append(parts, lines[len(lines)-1][:r.End.Col])
	return strings.Join(parts, "\n"), nil
}

// splitLines splits text into lines for Host.Replace; text without a
// newline yields a single line.
func splitLines(text string) []string {
	return strings.Split(text, "\n")
}
