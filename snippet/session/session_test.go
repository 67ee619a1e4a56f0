package session

import (
	"errors"
	"testing"

	"github.com/dshills/textkit/snippet"
	"github.com/dshills/textkit/snippet/indent"
)

type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) HandleSnippetEvent(ev Event) {
	r.events = append(r.events, ev)
}

func (r *eventRecorder) kinds() []EventKind {
	kinds := make([]EventKind, len(r.events))
	for i, ev := range r.events {
		kinds[i] = ev.Kind
	}
	return kinds
}

type choiceRecorder struct {
	shown   []string
	last    []string
	hideCnt int
}

func (c *choiceRecorder) ShowChoices(docID, tabstopID string, choices []string) {
	c.shown = append(c.shown, tabstopID)
	c.last = choices
}

func (c *choiceRecorder) HideChoices(docID string) { c.hideCnt++ }

// newTestSetup wires a buffer's change stream into a fresh registry,
// the way an editor host would.
func newTestSetup(t *testing.T, text string, opts ...Option) (*Buffer, *Registry, *eventRecorder) {
	t.Helper()
	rec := &eventRecorder{}
	reg := NewRegistry(append(opts, WithObserver(rec))...)
	buf := NewBuffer("doc", text)
	buf.OnChange(func(ch Change) {
		reg.HandleTextChange(buf.DocumentID(), ch)
	})
	return buf, reg, rec
}

func expand(t *testing.T, reg *Registry, buf *Buffer, body string) *Session {
	t.Helper()
	s, err := reg.Expand(buf, body, 0, nil)
	if err != nil {
		t.Fatalf("Expand(%q) error = %v", body, err)
	}
	return s
}

func sameKinds(a, b []EventKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestExpandPlainText(t *testing.T) {
	buf, reg, rec := newTestSetup(t, "")

	s, err := reg.Expand(buf, "hi $0", 0, nil)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if s != nil {
		t.Errorf("Expand() returned a session for plain text")
	}
	if got := buf.Text(); got != "hi " {
		t.Errorf("Text() = %q, want %q", got, "hi ")
	}
	if got := buf.Cursor(); got != (Pos{0, 3}) {
		t.Errorf("cursor = %v, want {0 3}", got)
	}
	if reg.Depth("doc") != 0 {
		t.Errorf("Depth() = %d, want 0", reg.Depth("doc"))
	}
	if len(rec.events) != 0 {
		t.Errorf("events = %v, want none", rec.kinds())
	}
}

func TestExpandStartsSession(t *testing.T) {
	buf, reg, rec := newTestSetup(t, "")

	s := expand(t, reg, buf, "func ${1:name}() {\n\t$0\n}")
	if s == nil {
		t.Fatal("Expand() returned nil session")
	}
	if got := buf.Text(); got != "func name() {\n\t\n}" {
		t.Errorf("Text() = %q", got)
	}
	if got := s.CurrentTabstop(); got != "1" {
		t.Errorf("CurrentTabstop() = %q, want %q", got, "1")
	}
	if got := buf.Cursor(); got != (Pos{0, 5}) {
		t.Errorf("cursor = %v, want {0 5}", got)
	}
	if !buf.InEditMode() {
		t.Error("InEditMode() = false after expand")
	}
	if text, err := s.TabstopText("1"); err != nil || text != "name" {
		t.Errorf("TabstopText(1) = %q, %v", text, err)
	}
	if !sameKinds(rec.kinds(), []EventKind{EventStart}) {
		t.Errorf("events = %v, want [start]", rec.kinds())
	}
}

func TestTabstopOrder(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want []string
	}{
		{"ascending", []string{"2", "0", "1"}, []string{"1", "2", "0"}},
		{"final absent", []string{"3", "1"}, []string{"1", "3"}},
		{"leading zeros tie", []string{"01", "1", "2"}, []string{"01", "1", "2"}},
		{"double digits", []string{"10", "2"}, []string{"2", "10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tabstopOrder(tt.ids)
			if len(got) != len(tt.want) {
				t.Fatalf("tabstopOrder() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("tabstopOrder() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestJumpCycle(t *testing.T) {
	buf, reg, _ := newTestSetup(t, "")

	s := expand(t, reg, buf, "T2=$2 T0=$0 T1=$1")
	if got := buf.Text(); got != "T2= T0= T1=" {
		t.Fatalf("Text() = %q", got)
	}
	if got := s.CurrentTabstop(); got != "1" {
		t.Fatalf("start tabstop = %q, want %q", got, "1")
	}

	// Ascending numeric order with the final tabstop last, wrapping.
	steps := []struct {
		id     string
		cursor Pos
	}{
		{"2", Pos{0, 3}},
		{"0", Pos{0, 7}},
		{"1", Pos{0, 11}},
		{"2", Pos{0, 3}},
	}
	for i, step := range steps {
		if err := reg.Jump("doc", Next); err != nil {
			t.Fatalf("Jump(%d) error = %v", i, err)
		}
		if got := s.CurrentTabstop(); got != step.id {
			t.Errorf("jump %d: tabstop = %q, want %q", i, got, step.id)
		}
		if got := buf.Cursor(); got != step.cursor {
			t.Errorf("jump %d: cursor = %v, want %v", i, got, step.cursor)
		}
	}

	if err := reg.Jump("doc", Prev); err != nil {
		t.Fatalf("Jump(Prev) error = %v", err)
	}
	if got := s.CurrentTabstop(); got != "1" {
		t.Errorf("Prev tabstop = %q, want %q", got, "1")
	}

	if v, err := s.Visited("1"); err != nil || !v {
		t.Errorf("Visited(1) = %v, %v, want true", v, err)
	}
}

func TestJumpWithoutSession(t *testing.T) {
	_, reg, _ := newTestSetup(t, "")
	if err := reg.Jump("doc", Next); !errors.Is(err, ErrNoSession) {
		t.Errorf("Jump() error = %v, want ErrNoSession", err)
	}
	if err := reg.Stop("doc"); !errors.Is(err, ErrNoSession) {
		t.Errorf("Stop() error = %v, want ErrNoSession", err)
	}
}

func TestFirstEditReplacesPlaceholder(t *testing.T) {
	buf, reg, _ := newTestSetup(t, "")

	s := expand(t, reg, buf, "T1=${1:<$2>}")
	if got := buf.Text(); got != "T1=<>" {
		t.Fatalf("Text() = %q", got)
	}

	if err := buf.Type("x"); err != nil {
		t.Fatalf("Type() error = %v", err)
	}
	if got := buf.Text(); got != "T1=x" {
		t.Errorf("Text() after first edit = %q, want %q", got, "T1=x")
	}
	if text, _ := s.TabstopText("1"); text != "x" {
		t.Errorf("TabstopText(1) = %q, want %q", text, "x")
	}

	// The nested tabstop survived the placeholder replacement.
	if err := reg.Jump("doc", Next); err != nil {
		t.Fatalf("Jump() error = %v", err)
	}
	if got := s.CurrentTabstop(); got != "2" {
		t.Fatalf("tabstop = %q, want %q", got, "2")
	}
	if err := buf.Type("q"); err != nil {
		t.Fatalf("Type() error = %v", err)
	}
	if got := buf.Text(); got != "T1=xq" {
		t.Errorf("Text() = %q, want %q", got, "T1=xq")
	}
	if text, _ := s.TabstopText("1"); text != "xq" {
		t.Errorf("TabstopText(1) = %q, want %q", text, "xq")
	}
	if text, _ := s.TabstopText("2"); text != "q" {
		t.Errorf("TabstopText(2) = %q, want %q", text, "q")
	}
}

func TestLinkedTabstopSync(t *testing.T) {
	t.Run("reference propagates to duplicates", func(t *testing.T) {
		buf, reg, _ := newTestSetup(t, "")
		expand(t, reg, buf, "a=${1:x} b=$1")
		if got := buf.Text(); got != "a=x b=x" {
			t.Fatalf("Text() = %q", got)
		}
		if err := buf.Type("y"); err != nil {
			t.Fatalf("Type() error = %v", err)
		}
		if got := buf.Text(); got != "a=y b=y" {
			t.Errorf("Text() = %q, want %q", got, "a=y b=y")
		}
	})

	t.Run("reference wins over duplicate edits", func(t *testing.T) {
		buf, reg, _ := newTestSetup(t, "")
		expand(t, reg, buf, "a=${1:x} b=$1")
		if err := buf.Type("y"); err != nil {
			t.Fatalf("Type() error = %v", err)
		}
		// An edit landing in the duplicate is overwritten by the
		// reference node's text on sync.
		if err := buf.Insert(Pos{0, 6}, "z"); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		if got := buf.Text(); got != "a=y b=y" {
			t.Errorf("Text() = %q, want %q", got, "a=y b=y")
		}
	})
}

func TestNestedSessionDefersLinkedSync(t *testing.T) {
	buf, reg, rec := newTestSetup(t, "")

	parent := expand(t, reg, buf, "x=$1 y=$1")
	if got := buf.Text(); got != "x= y=" {
		t.Fatalf("Text() = %q", got)
	}

	nested := expand(t, reg, buf, "(${1:q})")
	if got := buf.Text(); got != "x=(q) y=" {
		t.Fatalf("Text() after nested expand = %q", got)
	}
	if reg.Depth("doc") != 2 {
		t.Fatalf("Depth() = %d, want 2", reg.Depth("doc"))
	}
	if reg.Active("doc") != nested {
		t.Fatal("nested session is not active")
	}

	if err := buf.Type("r"); err != nil {
		t.Fatalf("Type() error = %v", err)
	}
	if got := buf.Text(); got != "x=(r) y=" {
		t.Fatalf("Text() = %q", got)
	}

	if err := reg.Stop("doc"); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if got := buf.Text(); got != "x=(r) y=(r)" {
		t.Errorf("Text() after resume = %q, want %q", got, "x=(r) y=(r)")
	}
	if reg.Active("doc") != parent {
		t.Error("parent session did not resume")
	}

	want := []EventKind{EventStart, EventSuspend, EventStart, EventStop, EventResume}
	if !sameKinds(rec.kinds(), want) {
		t.Errorf("events = %v, want %v", rec.kinds(), want)
	}
}

func TestAutostopAtFinalTabstop(t *testing.T) {
	buf, reg, rec := newTestSetup(t, "")

	expand(t, reg, buf, "$1!")
	if err := reg.Jump("doc", Next); err != nil {
		t.Fatalf("Jump() error = %v", err)
	}

	if err := buf.Type("."); err != nil {
		t.Fatalf("Type() error = %v", err)
	}
	if got := buf.Text(); got != "!." {
		t.Errorf("Text() = %q, want %q", got, "!.")
	}
	if reg.Depth("doc") != 0 {
		t.Errorf("Depth() = %d, want 0 after final edit", reg.Depth("doc"))
	}
	last := rec.events[len(rec.events)-1]
	if last.Kind != EventStop {
		t.Errorf("last event = %v, want stop", last.Kind)
	}
}

func TestStopOnModeChange(t *testing.T) {
	t.Run("final tabstop stops", func(t *testing.T) {
		buf, reg, _ := newTestSetup(t, "")
		expand(t, reg, buf, "$1")
		if err := reg.Jump("doc", Next); err != nil {
			t.Fatalf("Jump() error = %v", err)
		}
		buf.LeaveEditMode()
		reg.HandleModeChange("doc")
		if reg.Depth("doc") != 0 {
			t.Errorf("Depth() = %d, want 0", reg.Depth("doc"))
		}
	})

	t.Run("earlier tabstop keeps session", func(t *testing.T) {
		buf, reg, _ := newTestSetup(t, "")
		expand(t, reg, buf, "$1")
		buf.LeaveEditMode()
		reg.HandleModeChange("doc")
		if reg.Depth("doc") != 1 {
			t.Errorf("Depth() = %d, want 1", reg.Depth("doc"))
		}
	})
}

type flakyHost struct {
	*Buffer
	fail bool
}

func (f *flakyHost) Anchor(id AnchorID) (Range, error) {
	if f.fail {
		return Range{}, ErrAnchorNotFound
	}
	return f.Buffer.Anchor(id)
}

func TestCorruptedSessionForceStops(t *testing.T) {
	rec := &eventRecorder{}
	reg := NewRegistry(WithObserver(rec))
	host := &flakyHost{Buffer: NewBuffer("doc", "")}
	host.OnChange(func(ch Change) {
		reg.HandleTextChange(host.DocumentID(), ch)
	})

	if _, err := reg.Expand(host, "${1:a}", 0, nil); err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	host.fail = true
	if err := host.Type("x"); err != nil {
		t.Fatalf("Type() error = %v", err)
	}

	if reg.Depth("doc") != 0 {
		t.Errorf("Depth() = %d, want 0 after corruption", reg.Depth("doc"))
	}
	var corrupted *Event
	for i := range rec.events {
		if rec.events[i].Kind == EventCorrupted {
			corrupted = &rec.events[i]
		}
	}
	if corrupted == nil {
		t.Fatalf("no corrupted event in %v", rec.kinds())
	}
	if !errors.Is(corrupted.Err, ErrCorrupted) {
		t.Errorf("event error = %v, want ErrCorrupted", corrupted.Err)
	}
}

// anchorFailHost fails anchor creation after a budgeted number of
// successes and tracks how many anchors stay live.
type anchorFailHost struct {
	*Buffer
	failAfter int
	created   int
	live      int
}

func (h *anchorFailHost) CreateAnchor(r Range, g Growth) (AnchorID, error) {
	if h.created >= h.failAfter {
		return 0, ErrAnchorNotFound
	}
	h.created++
	h.live++
	return h.Buffer.CreateAnchor(r, g)
}

func (h *anchorFailHost) DeleteAnchor(id AnchorID) error {
	err := h.Buffer.DeleteAnchor(id)
	if err == nil {
		h.live--
	}
	return err
}

func TestExpandRollsBackOnAnchorFailure(t *testing.T) {
	rec := &eventRecorder{}
	reg := NewRegistry(WithObserver(rec))
	host := &anchorFailHost{Buffer: NewBuffer("doc", "left right"), failAfter: 2}
	host.OnChange(func(ch Change) {
		reg.HandleTextChange(host.DocumentID(), ch)
	})
	if err := host.SetCursor(Pos{0, 5}); err != nil {
		t.Fatal(err)
	}

	// Region and first tabstop anchor succeed, the second fails.
	if _, err := reg.Expand(host, "a ${1:x} $2", 0, nil); !errors.Is(err, ErrAnchorNotFound) {
		t.Fatalf("Expand() error = %v, want ErrAnchorNotFound", err)
	}

	if got := host.Text(); got != "left right" {
		t.Errorf("Text() = %q, want the insert rolled back", got)
	}
	if host.live != 0 {
		t.Errorf("live anchors = %d, want 0", host.live)
	}
	if reg.Depth("doc") != 0 {
		t.Errorf("Depth() = %d, want 0", reg.Depth("doc"))
	}
	if len(rec.events) != 0 {
		t.Errorf("events = %v, want none", rec.kinds())
	}
}

func TestChoicePresenter(t *testing.T) {
	t.Run("shown on start hidden on jump", func(t *testing.T) {
		choices := &choiceRecorder{}
		buf, reg, _ := newTestSetup(t, "", WithChoicePresenter(choices))
		expand(t, reg, buf, "${1|aa,bb|}")

		if len(choices.shown) != 1 || choices.shown[0] != "1" {
			t.Fatalf("shown = %v, want [1]", choices.shown)
		}
		if len(choices.last) != 2 || choices.last[0] != "aa" || choices.last[1] != "bb" {
			t.Errorf("choices = %v, want [aa bb]", choices.last)
		}
		if err := reg.Jump("doc", Next); err != nil {
			t.Fatalf("Jump() error = %v", err)
		}
		if choices.hideCnt != 1 {
			t.Errorf("hide count = %d, want 1", choices.hideCnt)
		}
	})

	t.Run("hidden after edit", func(t *testing.T) {
		choices := &choiceRecorder{}
		buf, reg, _ := newTestSetup(t, "", WithChoicePresenter(choices))
		expand(t, reg, buf, "${1|aa,bb|}")
		if err := buf.Type("x"); err != nil {
			t.Fatalf("Type() error = %v", err)
		}
		if got := buf.Text(); got != "x" {
			t.Errorf("Text() = %q, want %q", got, "x")
		}
		if choices.hideCnt != 1 {
			t.Errorf("hide count = %d, want 1", choices.hideCnt)
		}
	})

	t.Run("re-shown after deleting back to empty", func(t *testing.T) {
		choices := &choiceRecorder{}
		buf, reg, _ := newTestSetup(t, "", WithChoicePresenter(choices))
		s := expand(t, reg, buf, "${1|aa,bb|}")
		if err := buf.Type("x"); err != nil {
			t.Fatalf("Type() error = %v", err)
		}
		shownBefore := len(choices.shown)

		if err := buf.DeleteRange(Range{Start: Pos{0, 0}, End: Pos{0, 1}}); err != nil {
			t.Fatalf("DeleteRange() error = %v", err)
		}
		if text, _ := s.TabstopText("1"); text != "" {
			t.Fatalf("TabstopText(1) = %q, want empty", text)
		}
		if len(choices.shown) <= shownBefore {
			t.Errorf("shown = %v, want the list re-shown after re-emptying", choices.shown)
		}
	})
}

func TestExpandReplacesMatchedText(t *testing.T) {
	buf, reg, _ := newTestSetup(t, "  fn")
	if err := buf.SetCursor(Pos{0, 4}); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Expand(buf, "func $0", 2, nil); err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got := buf.Text(); got != "  func " {
		t.Errorf("Text() = %q, want %q", got, "  func ")
	}

	if _, err := reg.Expand(buf, "x", 40, nil); !errors.Is(err, ErrRangeInvalid) {
		t.Errorf("oversized match error = %v, want ErrRangeInvalid", err)
	}
}

func TestExpandCarriesIndent(t *testing.T) {
	buf, reg, _ := newTestSetup(t, "  ",
		WithIndentConfig(indent.Config{Options: indent.Options{ExpandTab: true, ShiftWidth: 2}}))
	if err := buf.SetCursor(Pos{0, 2}); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Expand(buf, "a\nb", 0, nil); err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got := buf.Text(); got != "  a\n  b" {
		t.Errorf("Text() = %q, want %q", got, "  a\n  b")
	}
}

func TestExpandReflowsVariableValue(t *testing.T) {
	res := snippet.ResolverFunc(func(name string) (string, bool) {
		if name == "SEL" {
			return "one\n    two", true
		}
		return "", false
	})
	buf, reg, _ := newTestSetup(t, "  ")
	if err := buf.SetCursor(Pos{0, 2}); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Expand(buf, "${SEL}", 0, res); err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if got := buf.Text(); got != "  one\n  two" {
		t.Errorf("Text() = %q, want %q", got, "  one\n  two")
	}
}

func TestSessionIntrospectionErrors(t *testing.T) {
	buf, reg, _ := newTestSetup(t, "")
	s := expand(t, reg, buf, "$1")
	if _, err := s.Visited("9"); !errors.Is(err, ErrNoTabstop) {
		t.Errorf("Visited() error = %v, want ErrNoTabstop", err)
	}
	if _, err := s.TabstopText("9"); !errors.Is(err, ErrNoTabstop) {
		t.Errorf("TabstopText() error = %v, want ErrNoTabstop", err)
	}
	order := s.Order()
	if len(order) != 2 || order[0] != "1" || order[1] != "0" {
		t.Errorf("Order() = %v, want [1 0]", order)
	}
	if r, err := s.Region(); err != nil || r.Start != (Pos{0, 0}) {
		t.Errorf("Region() = %v, %v", r, err)
	}
}

func TestDocumentClosed(t *testing.T) {
	buf, reg, rec := newTestSetup(t, "")
	expand(t, reg, buf, "a $1")
	expand(t, reg, buf, "b $1")
	reg.DocumentClosed("doc")
	if reg.Depth("doc") != 0 {
		t.Errorf("Depth() = %d, want 0", reg.Depth("doc"))
	}
	stops := 0
	for _, ev := range rec.events {
		if ev.Kind == EventStop {
			stops++
		}
	}
	if stops != 2 {
		t.Errorf("stop events = %d, want 2", stops)
	}
}
