package session

import "errors"

// Errors returned by session and buffer operations.
var (
	// ErrPosOutOfRange indicates a position outside the document.
	ErrPosOutOfRange = errors.New("position out of range")

	// ErrRangeInvalid indicates a range with end before start or
	// positions outside the document.
	ErrRangeInvalid = errors.New("invalid range")

	// ErrAnchorNotFound indicates an unknown or deleted anchor id.
	ErrAnchorNotFound = errors.New("anchor not found")

	// ErrCorrupted indicates a session whose anchors were destroyed or
	// drifted out of the document's valid range. The session is
	// force-stopped; siblings and ancestors are unaffected.
	ErrCorrupted = errors.New("corrupted session")

	// ErrNoTabstop indicates a tabstop id the session does not know.
	ErrNoTabstop = errors.New("no such tabstop")

	// ErrNoSession indicates a document with no active session. Hosts
	// that treat jump and stop keys as optional can discard it.
	ErrNoSession = errors.New("no active session")
)
