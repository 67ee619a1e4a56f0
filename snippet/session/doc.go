// Package session runs live snippet sessions over a host document.
//
// A Registry owns one stack of sessions per document. Expand inserts a
// normalized template at the cursor, anchors every tabstop occurrence,
// and pushes a session; expanding again while one is active suspends
// it under the new one. The host drives the registry through
// HandleTextChange and HandleModeChange, and the registry edits the
// document only through the Host interface, so any editor able to
// provide gravity-aware text anchors can embed it.
//
// Typical wiring:
//
//	buf := session.NewBuffer("main.go", "")
//	reg := session.NewRegistry()
//	buf.OnChange(func(ch session.Change) {
//		reg.HandleTextChange(buf.DocumentID(), ch)
//	})
//
//	sess, err := reg.Expand(buf, "func ${1:name}() {\n\t$0\n}", 0, nil)
//
// Linked tabstops (the same id appearing more than once) mirror the
// first occurrence's text whenever any of them is edited. Jumping past
// the final tabstop wraps around; leaving edit mode on the final
// tabstop, or editing inside it, ends the session.
package session
