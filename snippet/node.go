package snippet

import "strings"

// FinalTabstopID is the identifier of the final tabstop. A normalized
// tree always ends interaction at this tabstop; the normalizer appends
// one when the body does not declare it.
const FinalTabstopID = "0"

// Node is a single element of a snippet body. The concrete types are
// Text, Tabstop and Variable. The unexported method seals the set so
// type switches over nodes are exhaustive.
type Node interface {
	// Clone returns a deep copy of the node.
	Clone() Node

	node()
}

// NodeList is an ordered sequence of nodes. Placeholders are node
// lists themselves, so trees nest arbitrarily.
type NodeList []Node

// Clone returns a deep copy of the list.
func (l NodeList) Clone() NodeList {
	if l == nil {
		return nil
	}
	out := make(NodeList, len(l))
	for i, n := range l {
		out[i] = n.Clone()
	}
	return out
}

// Text renders the list as plain text: literal content for Text nodes,
// resolved value or placeholder text for variables, placeholder text
// for tabstops. Transforms are not evaluated.
func (l NodeList) Text() string {
	var b strings.Builder
	l.writeText(&b)
	return b.String()
}

func (l NodeList) writeText(b *strings.Builder) {
	for _, n := range l {
		switch n := n.(type) {
		case *Text:
			b.WriteString(n.Content)
		case *Tabstop:
			n.Placeholder.writeText(b)
		case *Variable:
			if n.Resolved {
				b.WriteString(n.Value)
			} else {
				n.Placeholder.writeText(b)
			}
		}
	}
}

// Walk visits every node in the list depth-first in document order.
// Returning false from fn stops the walk.
func Walk(l NodeList, fn func(Node) bool) bool {
	for _, n := range l {
		if !fn(n) {
			return false
		}
		switch n := n.(type) {
		case *Tabstop:
			if !Walk(n.Placeholder, fn) {
				return false
			}
		case *Variable:
			if !Walk(n.Placeholder, fn) {
				return false
			}
		}
	}
	return true
}

// Text is a literal text run.
type Text struct {
	Content string
}

func (*Text) node() {}

// Clone returns a deep copy of the node.
func (t *Text) Clone() Node {
	c := *t
	return &c
}

// Tabstop is a numbered interactive stop. The ID is an arbitrary
// non-empty digit string compared by exact string equality, so "1" and
// "01" are distinct tabstops.
type Tabstop struct {
	ID string

	// Placeholder is the default content. After normalization it is
	// always non-nil (possibly empty).
	Placeholder NodeList

	// Choices holds the declared choice list, if any. The first choice
	// doubles as the effective placeholder; the full list is kept for
	// completion UIs.
	Choices []string

	// Transform is parsed and stored but never evaluated.
	Transform *Transform
}

func (*Tabstop) node() {}

// Clone returns a deep copy of the node.
func (t *Tabstop) Clone() Node {
	c := *t
	c.Placeholder = t.Placeholder.Clone()
	if t.Choices != nil {
		c.Choices = append([]string(nil), t.Choices...)
	}
	if t.Transform != nil {
		tr := *t.Transform
		c.Transform = &tr
	}
	return &c
}

// Variable is a named substitution. Normalization resolves it to a
// value exactly once per distinct name; unresolved variables fall back
// to their placeholder.
type Variable struct {
	Name        string
	Placeholder NodeList
	Transform   *Transform

	// Value is the resolved text; meaningful only when Resolved is true.
	Value    string
	Resolved bool
}

func (*Variable) node() {}

// Clone returns a deep copy of the node.
func (v *Variable) Clone() Node {
	c := *v
	c.Placeholder = v.Placeholder.Clone()
	if v.Transform != nil {
		tr := *v.Transform
		c.Transform = &tr
	}
	return &c
}

// Transform is a parsed regex transform: ${1/pattern/format/flags}.
// It is stored for consumers but intentionally not executed.
type Transform struct {
	Pattern string
	Format  string
	Flags   string
}
