package session

import (
	"fmt"
	"strings"
)

// Direction selects a jump target relative to the current tabstop.
type Direction uint8

const (
	// Next jumps to the following tabstop in traversal order,
	// wrapping past the final tabstop.
	Next Direction = iota

	// Prev jumps to the preceding tabstop, wrapping backwards.
	Prev
)

// tabstopState tracks one tabstop id within a session: every anchored
// occurrence in document order (the first is the reference node),
// navigation neighbors and interaction flags.
type tabstopState struct {
	id      string
	anchors []AnchorID
	choices []string
	prev    string
	next    string
	visited bool
	edited  bool
}

// Session is the live, anchored instance of a normalized template
// inserted into a document. It is created by Registry.Expand and
// mutated only through the registry's host callbacks.
type Session struct {
	host Host
	body string

	region     AnchorID
	tabstops   map[string]*tabstopState
	order      []string
	cur        string
	varAnchors []AnchorID

	// dirty collects tabstop ids whose linked duplicates need syncing
	// once this session becomes active again; populated while edits of
	// a nested session land inside this session's anchors.
	dirty map[string]bool

	choicesShown bool
}

// Body returns the template body the session was created from.
func (s *Session) Body() string { return s.body }

// CurrentTabstop returns the active tabstop id.
func (s *Session) CurrentTabstop() string { return s.cur }

// Order returns the tabstop traversal order: ascending by numeric id
// with the final tabstop last.
func (s *Session) Order() []string {
	return append([]string(nil), s.order...)
}

// Visited reports whether the tabstop was jumped away from at least
// once.
func (s *Session) Visited(id string) (bool, error) {
	ts, ok := s.tabstops[id]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrNoTabstop, id)
	}
	return ts.visited, nil
}

// Region returns the document range currently covered by the whole
// expansion.
func (s *Session) Region() (Range, error) {
	return s.host.Anchor(s.region)
}

// TabstopText returns the current text of the tabstop's reference
// node.
func (s *Session) TabstopText(id string) (string, error) {
	ts, ok := s.tabstops[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoTabstop, id)
	}
	r, err := s.host.Anchor(ts.anchors[0])
	if err != nil {
		return "", err
	}
	return textIn(s.host, r)
}

// tabstopOrder sorts distinct ids ascending by numeric value with the
// final tabstop forced last. Ties between numerically equal ids (such
// as "1" and "01") keep first-appearance order. ids must be in
// first-appearance order.
func tabstopOrder(ids []string) []string {
	order := make([]string, 0, len(ids))
	final := false
	for _, id := range ids {
		if id == "0" {
			final = true
			continue
		}
		order = append(order, id)
	}
	// Insertion sort keeps the walk order stable on ties.
	for i := 1; i < len(order); i++ {
		for j := i; j > 0 && numericLess(order[j], order[j-1]); j-- {
			order[j], order[j-1] = order[j-1], order[j]
		}
	}
	if final {
		order = append(order, "0")
	}
	return order
}

// numericLess compares digit strings by value, ignoring leading
// zeros. Equal values are not less, keeping sorts stable.
func numericLess(a, b string) bool {
	ta := strings.TrimLeft(a, "0")
	tb := strings.TrimLeft(b, "0")
	if len(ta) != len(tb) {
		return len(ta) < len(tb)
	}
	return ta < tb
}

// neighbor returns the jump target from id in the given direction,
// wrapping around the circular order.
func (s *Session) neighbor(id string, dir Direction) string {
	ts, ok := s.tabstops[id]
	if !ok {
		return id
	}
	if dir == Next {
		return ts.next
	}
	return ts.prev
}

// checkIntegrity verifies every anchor still resolves to a range
// inside the document.
func (s *Session) checkIntegrity() error {
	ids := make([]AnchorID, 0, 1+len(s.varAnchors))
	ids = append(ids, s.region)
	ids = append(ids, s.varAnchors...)
	for _, ts := range s.tabstops {
		ids = append(ids, ts.anchors...)
	}
	for _, id := range ids {
		r, err := s.host.Anchor(id)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorrupted, err)
		}
		if !s.validRange(r) {
			return fmt.Errorf("%w: anchor %d out of range", ErrCorrupted, id)
		}
	}
	return nil
}

func (s *Session) validRange(r Range) bool {
	if r.End.Before(r.Start) {
		return false
	}
	for _, p := range []Pos{r.Start, r.End} {
		if p.Line < 0 || p.Line >= s.host.LineCount() {
			return false
		}
		if p.Col < 0 || p.Col > len(lineAt(s.host, p.Line)) {
			return false
		}
	}
	return true
}

// editedTabstop locates the innermost tabstop whose anchor contains
// the change, preferring the current tabstop on equal ranges.
func (s *Session) editedTabstop(ch Change) (*tabstopState, AnchorID) {
	var best *tabstopState
	var bestAnchor AnchorID
	var bestRange Range
	consider := func(ts *tabstopState, id AnchorID, r Range) {
		if !r.Contains(ch.Range.Start) || !r.Contains(ch.NewEnd) {
			return
		}
		better := best == nil ||
			bestRange.ContainsRange(r) && (r != bestRange || ts.id == s.cur)
		if better {
			best, bestAnchor, bestRange = ts, id, r
		}
	}
	for _, ts := range s.tabstops {
		for _, id := range ts.anchors {
			r, err := s.host.Anchor(id)
			if err != nil {
				continue
			}
			consider(ts, id, r)
		}
	}
	return best, bestAnchor
}

// syncLinked copies the reference node's text into every duplicate
// anchor of the tabstop. Replacements run through the host, so nested
// anchors adjust as usual.
func (s *Session) syncLinked(ts *tabstopState) error {
	if len(ts.anchors) < 2 {
		return nil
	}
	refRange, err := s.host.Anchor(ts.anchors[0])
	if err != nil {
		return err
	}
	refText, err := textIn(s.host, refRange)
	if err != nil {
		return err
	}
	for _, id := range ts.anchors[1:] {
		r, err := s.host.Anchor(id)
		if err != nil {
			return err
		}
		cur, err := textIn(s.host, r)
		if err != nil {
			return err
		}
		if cur == refText {
			continue
		}
		if _, err := s.host.Replace(r, splitLines(refText)); err != nil {
			return err
		}
	}
	return nil
}

// replaceUntouchedPlaceholder implements the first-edit rule: the
// first character typed at the placeholder's start point replaces the
// whole placeholder. By the time the session sees the change the host
// has already inserted the text, so the stale placeholder is the
// remainder of the anchor after the inserted text.
func (s *Session) replaceUntouchedPlaceholder(ts *tabstopState, anchor AnchorID, ch Change) error {
	if ts.edited || !ch.IsInsert() {
		return nil
	}
	r, err := s.host.Anchor(anchor)
	if err != nil {
		return err
	}
	if ch.Range.Start != r.Start {
		return nil
	}
	stale := Range{Start: ch.NewEnd, End: r.End}
	if stale.IsPoint() {
		return nil
	}
	_, err = s.host.Replace(stale, nil)
	return err
}

// noteDeferred records linked tabstops touched by a nested session's
// edit; the sync itself runs when this session resumes.
func (s *Session) noteDeferred(ch Change) {
	if s.checkIntegrity() != nil {
		return
	}
	ts, _ := s.editedTabstop(ch)
	if ts != nil && len(ts.anchors) > 1 {
		s.dirty[ts.id] = true
	}
}

// flushDeferred syncs every tabstop marked dirty while the session was
// suspended.
func (s *Session) flushDeferred() error {
	for id := range s.dirty {
		ts, ok := s.tabstops[id]
		if !ok {
			continue
		}
		if err := s.syncLinked(ts); err != nil {
			return err
		}
	}
	s.dirty = make(map[string]bool)
	return nil
}

// cursorTarget returns where the cursor goes when the tabstop becomes
// active: the start of the reference node's placeholder.
func (s *Session) cursorTarget(id string) (Pos, error) {
	ts, ok := s.tabstops[id]
	if !ok {
		return Pos{}, fmt.Errorf("%w: %q", ErrNoTabstop, id)
	}
	r, err := s.host.Anchor(ts.anchors[0])
	if err != nil {
		return Pos{}, err
	}
	return r.Start, nil
}

// deleteAnchors removes every anchor the session owns. Used on stop;
// errors are ignored because stopping a corrupted session must
// succeed.
func (s *Session) deleteAnchors() {
	_ = s.host.DeleteAnchor(s.region)
	for _, id := range s.varAnchors {
		_ = s.host.DeleteAnchor(id)
	}
	for _, ts := range s.tabstops {
		for _, id := range ts.anchors {
			_ = s.host.DeleteAnchor(id)
		}
	}
}
