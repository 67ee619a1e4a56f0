package session

import "strings"

// Buffer is an in-memory Host with a full anchor arena. It backs the
// engine's tests and headless use; the anchor adjustment rules are the
// reference semantics editor integrations must provide.
//
// Buffer is not safe for concurrent use; like every Host it assumes
// the caller serializes access.
type Buffer struct {
	id        string
	lines     []string
	cursor    Pos
	editing   bool
	anchors   map[AnchorID]*bufAnchor
	nextID    AnchorID
	listeners []func(Change)
}

type bufAnchor struct {
	r      Range
	growth Growth
}

// NewBuffer creates a buffer holding text. An empty text yields one
// empty line.
func NewBuffer(id, text string) *Buffer {
	return &Buffer{
		id:      id,
		lines:   strings.Split(text, "\n"),
		anchors: make(map[AnchorID]*bufAnchor),
		nextID:  1,
	}
}

// OnChange registers a callback invoked after every edit, once anchors
// have been adjusted. This is how a Registry is wired to the buffer.
func (b *Buffer) OnChange(fn func(Change)) {
	b.listeners = append(b.listeners, fn)
}

// DocumentID implements Host.
func (b *Buffer) DocumentID() string { return b.id }

// LineCount implements Host.
func (b *Buffer) LineCount() int { return len(b.lines) }

// Lines implements Host.
func (b *Buffer) Lines(start, end int) ([]string, error) {
	if start < 0 || start > end || end > len(b.lines) {
		return nil, ErrRangeInvalid
	}
	out := make([]string, end-start)
	copy(out, b.lines[start:end])
	return out, nil
}

// Text returns the whole buffer content.
func (b *Buffer) Text() string { return strings.Join(b.lines, "\n") }

// Cursor implements Host.
func (b *Buffer) Cursor() Pos { return b.cursor }

// SetCursor implements Host.
func (b *Buffer) SetCursor(p Pos) error {
	if !b.validPos(p) {
		return ErrPosOutOfRange
	}
	b.cursor = p
	return nil
}

// EnterEditMode implements Host.
func (b *Buffer) EnterEditMode() { b.editing = true }

// InEditMode implements Host.
func (b *Buffer) InEditMode() bool { return b.editing }

// LeaveEditMode clears the edit-mode flag. Callers pair this with
// Registry.HandleModeChange, as an editor integration would.
func (b *Buffer) LeaveEditMode() { b.editing = false }

func (b *Buffer) validPos(p Pos) bool {
	return p.Line >= 0 && p.Line < len(b.lines) && p.Col >= 0 && p.Col <= len(b.lines[p.Line])
}

// Replace implements Host. Anchors and the cursor are adjusted before
// change listeners run.
func (b *Buffer) Replace(r Range, lines []string) (Pos, error) {
	if !b.validPos(r.Start) || !b.validPos(r.End) || r.End.Before(r.Start) {
		return Pos{}, ErrRangeInvalid
	}
	if len(lines) == 0 {
		lines = []string{""}
	}

	prefix := b.lines[r.Start.Line][:r.Start.Col]
	suffix := b.lines[r.End.Line][r.End.Col:]

	ins := make([]string, len(lines))
	copy(ins, lines)
	ins[0] = prefix + ins[0]
	var newEnd Pos
	if len(ins) == 1 {
		newEnd = Pos{Line: r.Start.Line, Col: len(ins[0])}
	} else {
		newEnd = Pos{Line: r.Start.Line + len(ins) - 1, Col: len(ins[len(ins)-1])}
	}
	ins[len(ins)-1] += suffix

	updated := make([]string, 0, len(b.lines)-(r.End.Line-r.Start.Line+1)+len(ins))
	updated = append(updated, b.lines[:r.Start.Line]...)
	updated = append(updated, ins...)
	updated = append(updated, b.lines[r.End.Line+1:]...)
	b.lines = updated

	for _, a := range b.anchors {
		startRight := a.growth == GrowExclusive
		endRight := a.growth == GrowInclusive
		a.r.Start = adjustPos(a.r.Start, r, newEnd, startRight)
		a.r.End = adjustPos(a.r.End, r, newEnd, endRight)
		if a.r.End.Before(a.r.Start) {
			a.r.End = a.r.Start
		}
	}
	b.cursor = adjustPos(b.cursor, r, newEnd, true)

	ch := Change{Range: r, Lines: lines, NewEnd: newEnd}
	for _, fn := range b.listeners {
		fn(ch)
	}
	return newEnd, nil
}

// Insert inserts text at p.
func (b *Buffer) Insert(p Pos, text string) error {
	_, err := b.Replace(Range{Start: p, End: p}, splitLines(text))
	return err
}

// Type inserts text at the cursor, as interactive typing would.
func (b *Buffer) Type(text string) error {
	return b.Insert(b.cursor, text)
}

// DeleteRange removes the text covered by r.
func (b *Buffer) DeleteRange(r Range) error {
	_, err := b.Replace(r, nil)
	return err
}

// CreateAnchor implements Host.
func (b *Buffer) CreateAnchor(r Range, g Growth) (AnchorID, error) {
	if !b.validPos(r.Start) || !b.validPos(r.End) || r.End.Before(r.Start) {
		return 0, ErrRangeInvalid
	}
	id := b.nextID
	b.nextID++
	b.anchors[id] = &bufAnchor{r: r, growth: g}
	return id, nil
}

// Anchor implements Host.
func (b *Buffer) Anchor(id AnchorID) (Range, error) {
	a, ok := b.anchors[id]
	if !ok {
		return Range{}, ErrAnchorNotFound
	}
	return a.r, nil
}

// DeleteAnchor implements Host.
func (b *Buffer) DeleteAnchor(id AnchorID) error {
	if _, ok := b.anchors[id]; !ok {
		return ErrAnchorNotFound
	}
	delete(b.anchors, id)
	return nil
}

// adjustPos maps a tracked position across an edit that replaced old
// with text ending at newEnd. right selects the gravity: a
// right-gravity position at an edit boundary moves past the inserted
// text, a left-gravity one stays put. Positions strictly inside the
// replaced region collapse to one of its ends according to gravity.
func adjustPos(p Pos, old Range, newEnd Pos, right bool) Pos {
	os, oe := old.Start, old.End
	switch {
	case p.Before(os):
		return p
	case p == os:
		if right {
			return newEnd
		}
		return os
	case p.Before(oe):
		if right {
			return newEnd
		}
		return os
	case p == oe:
		// Not inside the removed text, just after it.
		return newEnd
	default:
		if p.Line == oe.Line {
			return Pos{Line: newEnd.Line, Col: newEnd.Col + (p.Col - oe.Col)}
		}
		return Pos{Line: p.Line + (newEnd.Line - oe.Line), Col: p.Col}
	}
}
