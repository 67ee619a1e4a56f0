package snippet

import "fmt"

// SyntaxError reports a snippet body that violates the grammar. Offset
// is the byte offset of the offending character; Found is that
// character, or empty at end of input.
type SyntaxError struct {
	Offset int
	Found  string
	Msg    string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Found == "" {
		return fmt.Sprintf("snippet syntax at offset %d: %s, found end of input", e.Offset, e.Msg)
	}
	return fmt.Sprintf("snippet syntax at offset %d: %s, found %q", e.Offset, e.Msg, e.Found)
}

// NestingError reports a tabstop whose placeholder contains, at any
// depth, a tabstop with the same id.
type NestingError struct {
	ID string
}

// Error implements the error interface.
func (e *NestingError) Error() string {
	return fmt.Sprintf("tabstop %q cannot nest its own tabstop", e.ID)
}
