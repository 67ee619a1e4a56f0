package snippet

// Resolver supplies text for snippet variables. Resolve reports
// whether the name was resolved; an unresolved variable falls back to
// its own placeholder or empty text.
//
// During one Normalize call a resolver is invoked at most once per
// distinct variable name, no matter how often the name occurs.
type Resolver interface {
	Resolve(name string) (string, bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(name string) (string, bool)

// Resolve implements Resolver.
func (f ResolverFunc) Resolve(name string) (string, bool) { return f(name) }

// Normalize produces a canonical tree from a parsed snippet body:
//
//   - every variable is resolved at most once per distinct name; the
//     value replaces the placeholder, otherwise an empty placeholder is
//     synthesized
//   - a tabstop with a choice list gets its first choice as the
//     effective placeholder
//   - the first occurrence of a tabstop id is the reference node; later
//     occurrences are rewritten to carry the reference's placeholder
//     while keeping their own choices and transform
//   - an implicit final tabstop "0" is appended when the body has none
//   - a tabstop whose placeholder contains its own id at any depth is
//     rejected with a NestingError
//
// The input list is not modified; the result is a deep copy. A nil
// resolver leaves every variable unresolved.
func Normalize(list NodeList, r Resolver) (NodeList, error) {
	out := list.Clone()
	n := &normalizer{
		resolver: r,
		vars:     make(map[string]varValue),
		refs:     make(map[string]*Tabstop),
	}
	if err := n.walk(out, nil); err != nil {
		return nil, err
	}
	if _, ok := n.refs[FinalTabstopID]; !ok {
		out = append(out, &Tabstop{ID: FinalTabstopID, Placeholder: NodeList{}})
	}
	return out, nil
}

type varValue struct {
	text string
	ok   bool
}

type normalizer struct {
	resolver Resolver
	vars     map[string]varValue
	refs     map[string]*Tabstop
}

// walk normalizes the list in place. enclosing holds the tabstop ids
// of every ancestor placeholder, used to reject self-nesting.
func (n *normalizer) walk(list NodeList, enclosing []string) error {
	for _, node := range list {
		switch node := node.(type) {
		case *Text:
			// Literal text is already canonical.
		case *Variable:
			if err := n.variable(node, enclosing); err != nil {
				return err
			}
		case *Tabstop:
			if err := n.tabstop(node, enclosing); err != nil {
				return err
			}
		}
	}
	return nil
}

func (n *normalizer) variable(v *Variable, enclosing []string) error {
	val, seen := n.vars[v.Name]
	if !seen {
		if n.resolver != nil {
			val.text, val.ok = n.resolver.Resolve(v.Name)
		}
		n.vars[v.Name] = val
	}
	if val.ok {
		v.Value = val.text
		v.Resolved = true
		v.Placeholder = nil
		return nil
	}
	if v.Placeholder == nil {
		v.Placeholder = NodeList{}
	}
	return n.walk(v.Placeholder, enclosing)
}

func (n *normalizer) tabstop(t *Tabstop, enclosing []string) error {
	for _, id := range enclosing {
		if id == t.ID {
			return &NestingError{ID: t.ID}
		}
	}
	if len(t.Choices) > 0 && t.Placeholder == nil {
		t.Placeholder = NodeList{&Text{Content: t.Choices[0]}}
	}

	// The node's own placeholder is normalized (and validated) even
	// when a reference later overwrites it, so that self-nesting and
	// resolver-once semantics do not depend on duplicate order.
	if err := n.walk(t.Placeholder, append(enclosing, t.ID)); err != nil {
		return err
	}

	if ref, ok := n.refs[t.ID]; ok {
		t.Placeholder = ref.Placeholder.Clone()
		return nil
	}
	if t.Placeholder == nil {
		t.Placeholder = NodeList{}
	}
	n.refs[t.ID] = t
	return nil
}

// IsPlainText reports whether a normalized tree needs no interactive
// session: its only tabstop is a final "0" with an empty placeholder
// sitting at the end of the top-level list. Such a body renders as
// literal text.
func IsPlainText(list NodeList) bool {
	var stops int
	var only *Tabstop
	Walk(list, func(n Node) bool {
		if ts, ok := n.(*Tabstop); ok {
			stops++
			only = ts
		}
		return true
	})
	if stops != 1 || only.ID != FinalTabstopID || len(only.Placeholder) != 0 {
		return false
	}
	return len(list) > 0 && list[len(list)-1] == Node(only)
}
