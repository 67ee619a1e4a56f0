package session

import (
	"fmt"

	"github.com/dshills/textkit/snippet"
	"github.com/dshills/textkit/snippet/indent"
)

// Option configures a Registry.
type Option func(*Registry)

// WithObserver registers an event observer. Observers run
// synchronously in registration order.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		r.observers = append(r.observers, o)
	}
}

// WithChoicePresenter sets the UI hook for choice tabstops.
func WithChoicePresenter(p ChoicePresenter) Option {
	return func(r *Registry) {
		r.presenter = p
	}
}

// WithIndentConfig sets the indent configuration used to compute the
// insertion prefix and to reflow multiline variable values.
func WithIndentConfig(cfg indent.Config) Option {
	return func(r *Registry) {
		r.indent = cfg
	}
}

// Registry manages snippet sessions across documents. Each document
// holds an independent stack of sessions; expanding while a session is
// active suspends it and pushes a nested one on top. The registry is
// driven by host callbacks and expects them to arrive from a single
// goroutine per the host's event loop.
type Registry struct {
	stacks    map[string][]*Session
	observers []Observer
	presenter ChoicePresenter
	indent    indent.Config

	// mute suppresses change handling while the registry itself edits
	// the document (linked sync, placeholder replacement).
	mute int
}

// NewRegistry returns a Registry with no active sessions.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{stacks: make(map[string][]*Session)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Active returns the active session for the document, or nil.
func (r *Registry) Active(docID string) *Session {
	stack := r.stacks[docID]
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

// Depth returns the number of stacked sessions for the document.
func (r *Registry) Depth(docID string) int {
	return len(r.stacks[docID])
}

func (r *Registry) emit(ev Event) {
	for _, o := range r.observers {
		o.HandleSnippetEvent(ev)
	}
}

func (r *Registry) muted(fn func() error) error {
	r.mute++
	defer func() { r.mute-- }()
	return fn()
}

// Expand parses, normalizes and inserts body at the host cursor,
// replacing matched characters before the cursor, and starts a
// session over the result. Templates that normalize to plain text are
// inserted without starting a session.
func (r *Registry) Expand(h Host, body string, matched int, res snippet.Resolver) (*Session, error) {
	tree, err := snippet.Parse(body)
	if err != nil {
		return nil, err
	}
	tree, err = snippet.Normalize(tree, res)
	if err != nil {
		return nil, err
	}

	at := h.Cursor()
	if matched > 0 {
		if matched > at.Col {
			return nil, fmt.Errorf("%w: matched %d exceeds column %d", ErrRangeInvalid, matched, at.Col)
		}
		start := Pos{Line: at.Line, Col: at.Col - matched}
		if _, err := h.Replace(Range{Start: start, End: at}, nil); err != nil {
			return nil, err
		}
		at = start
	}

	prefix := r.indent.PrefixAt(lineAt(h, at.Line), at.Col)
	lines, spans, _ := render(tree, at, prefix, r.indent.Options)

	if snippet.IsPlainText(tree) {
		end, err := h.Replace(Range{Start: at, End: at}, lines)
		if err != nil {
			return nil, err
		}
		h.SetCursor(end)
		return nil, nil
	}

	s := &Session{
		host:     h,
		body:     body,
		tabstops: make(map[string]*tabstopState),
		dirty:    make(map[string]bool),
	}

	var insertEnd Pos
	err = r.muted(func() error {
		var err error
		insertEnd, err = h.Replace(Range{Start: at, End: at}, lines)
		return err
	})
	if err != nil {
		return nil, err
	}

	// A failure past this point must not leave the half-built
	// expansion behind in the host.
	rollback := func(err error) (*Session, error) {
		s.deleteAnchors()
		_ = r.muted(func() error {
			_, err := h.Replace(Range{Start: at, End: insertEnd}, nil)
			return err
		})
		return nil, err
	}

	s.region, err = h.CreateAnchor(Range{Start: at, End: insertEnd}, GrowInclusive)
	if err != nil {
		return rollback(err)
	}

	var firstSeen []string
	for _, span := range spans {
		if span.variable != nil {
			id, err := h.CreateAnchor(span.r, GrowExclusive)
			if err != nil {
				return rollback(err)
			}
			s.varAnchors = append(s.varAnchors, id)
			continue
		}
		node := span.tabstop
		ts, ok := s.tabstops[node.ID]
		if !ok {
			ts = &tabstopState{id: node.ID, choices: node.Choices}
			s.tabstops[node.ID] = ts
			firstSeen = append(firstSeen, node.ID)
		}
		id, err := h.CreateAnchor(span.r, GrowInclusive)
		if err != nil {
			return rollback(err)
		}
		ts.anchors = append(ts.anchors, id)
	}

	s.order = tabstopOrder(firstSeen)
	for i, id := range s.order {
		ts := s.tabstops[id]
		ts.next = s.order[(i+1)%len(s.order)]
		ts.prev = s.order[(i+len(s.order)-1)%len(s.order)]
	}
	s.cur = s.order[0]

	cursor, err := s.cursorTarget(s.cur)
	if err != nil {
		return rollback(err)
	}
	h.SetCursor(cursor)
	h.EnterEditMode()

	docID := h.DocumentID()
	if parent := r.Active(docID); parent != nil {
		// The insert bypassed HandleTextChange, so record it for the
		// parent's linked-tabstop sync by hand.
		parent.noteDeferred(Change{
			Range:  Range{Start: at, End: at},
			Lines:  lines,
			NewEnd: insertEnd,
		})
		r.emit(Event{Kind: EventSuspend, DocumentID: docID, Body: parent.body})
	}
	r.stacks[docID] = append(r.stacks[docID], s)
	r.emit(Event{Kind: EventStart, DocumentID: docID, Body: body})
	r.updateChoices(s)
	return s, nil
}

// Jump moves the active session to the neighboring tabstop, wrapping
// around. Jumping marks the tabstop left behind as visited.
func (r *Registry) Jump(docID string, dir Direction) error {
	s := r.Active(docID)
	if s == nil {
		return ErrNoSession
	}
	from := s.cur
	to := s.neighbor(from, dir)
	r.emit(Event{Kind: EventPreJump, DocumentID: docID, Body: s.body, From: from, To: to})

	s.tabstops[from].visited = true
	s.cur = to
	cursor, err := s.cursorTarget(to)
	if err != nil {
		r.corrupt(docID, s, err)
		return err
	}
	s.host.SetCursor(cursor)
	r.emit(Event{Kind: EventJump, DocumentID: docID, Body: s.body, From: from, To: to})
	r.updateChoices(s)
	return nil
}

// Stop ends the active session for the document. The parent session,
// if any, resumes with its deferred syncs applied.
func (r *Registry) Stop(docID string) error {
	s := r.Active(docID)
	if s == nil {
		return ErrNoSession
	}
	r.stop(docID, s, true)
	return nil
}

// stop removes s from the top of the document's stack. flush controls
// whether the resumed parent applies deferred syncs; corruption skips
// it because the document state is no longer trusted.
func (r *Registry) stop(docID string, s *Session, flush bool) {
	if s.choicesShown && r.presenter != nil {
		r.presenter.HideChoices(docID)
		s.choicesShown = false
	}
	r.emit(Event{Kind: EventStop, DocumentID: docID, Body: s.body})
	s.deleteAnchors()

	stack := r.stacks[docID]
	r.stacks[docID] = stack[:len(stack)-1]

	parent := r.Active(docID)
	if parent == nil {
		delete(r.stacks, docID)
		return
	}
	if flush {
		err := r.muted(parent.flushDeferred)
		if err != nil {
			r.corrupt(docID, parent, err)
			return
		}
	}
	r.emit(Event{Kind: EventResume, DocumentID: docID, Body: parent.body})
	r.updateChoices(parent)
}

// corrupt force-stops a session whose anchors no longer reflect the
// document.
func (r *Registry) corrupt(docID string, s *Session, err error) {
	r.emit(Event{Kind: EventCorrupted, DocumentID: docID, Body: s.body, Err: err})
	r.stop(docID, s, false)
}

// HandleTextChange feeds a document change into the session machinery.
// The host must call it for every change, including ones made by other
// plugins; changes made by the registry itself are ignored.
func (r *Registry) HandleTextChange(docID string, ch Change) {
	if r.mute > 0 {
		return
	}
	s := r.Active(docID)
	if s == nil {
		return
	}
	if err := s.checkIntegrity(); err != nil {
		r.corrupt(docID, s, err)
		return
	}

	ts, anchor := s.editedTabstop(ch)
	if ts == nil {
		// Edits inside the region but outside every tabstop leave the
		// session alone; anchors already adjusted.
		r.deferToSuspended(docID, s, ch)
		return
	}

	err := r.muted(func() error {
		if ts.id == s.cur {
			if err := s.replaceUntouchedPlaceholder(ts, anchor, ch); err != nil {
				return err
			}
		}
		ts.edited = true
		return s.syncLinked(ts)
	})
	if err != nil {
		r.corrupt(docID, s, err)
		return
	}
	r.deferToSuspended(docID, s, ch)
	r.updateChoices(s)

	if s.cur == snippet.FinalTabstopID && ts.id == snippet.FinalTabstopID && s.host.InEditMode() {
		r.stop(docID, s, true)
	}
}

// deferToSuspended lets suspended sessions below the active one record
// linked tabstops the change touched.
func (r *Registry) deferToSuspended(docID string, active *Session, ch Change) {
	stack := r.stacks[docID]
	for _, s := range stack {
		if s == active {
			continue
		}
		s.noteDeferred(ch)
	}
}

// HandleModeChange implements the stop-on-normal-mode rule: leaving
// edit mode while the final tabstop is active ends the session.
func (r *Registry) HandleModeChange(docID string) {
	s := r.Active(docID)
	if s == nil {
		return
	}
	if !s.host.InEditMode() && s.cur == snippet.FinalTabstopID {
		r.stop(docID, s, true)
	}
}

// DocumentClosed drops every session for the document without touching
// the host.
func (r *Registry) DocumentClosed(docID string) {
	stack := r.stacks[docID]
	for i := len(stack) - 1; i >= 0; i-- {
		r.emit(Event{Kind: EventStop, DocumentID: docID, Body: stack[i].body})
	}
	delete(r.stacks, docID)
}

// updateChoices shows or hides the choice popup for the active
// tabstop: visible while the tabstop is untouched or its text is
// empty, hidden once it holds text. Deleting the text back to empty
// re-shows the list.
func (r *Registry) updateChoices(s *Session) {
	if r.presenter == nil {
		return
	}
	docID := s.host.DocumentID()
	ts := s.tabstops[s.cur]
	if ts != nil && len(ts.choices) > 0 {
		show := !ts.edited
		if !show {
			text, err := s.TabstopText(s.cur)
			show = err == nil && text == ""
		}
		if show {
			r.presenter.ShowChoices(docID, s.cur, ts.choices)
			s.choicesShown = true
			return
		}
	}
	if s.choicesShown {
		r.presenter.HideChoices(docID)
		s.choicesShown = false
	}
}
