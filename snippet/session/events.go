package session

// EventKind enumerates session lifecycle notifications.
type EventKind uint8

const (
	// EventStart is emitted after a session rendered its template and
	// became active.
	EventStart EventKind = iota

	// EventStop is emitted when a session ends, explicitly or through
	// the autostop heuristic.
	EventStop

	// EventSuspend is emitted when a session yields to a nested one.
	EventSuspend

	// EventResume is emitted when a session becomes active again after
	// a nested session stopped.
	EventResume

	// EventPreJump is emitted before the cursor moves between
	// tabstops.
	EventPreJump

	// EventJump is emitted after the cursor moved between tabstops.
	EventJump

	// EventCorrupted is emitted when a session is force-stopped
	// because its anchors were destroyed or out of range. It is the
	// warning surfaced to the host; Err carries ErrCorrupted.
	EventCorrupted
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventStop:
		return "stop"
	case EventSuspend:
		return "suspend"
	case EventResume:
		return "resume"
	case EventPreJump:
		return "prejump"
	case EventJump:
		return "jump"
	case EventCorrupted:
		return "corrupted"
	default:
		return "unknown"
	}
}

// Event is a session notification. Body is the session's template
// body; From and To are tabstop ids on prejump/jump events.
type Event struct {
	Kind       EventKind
	DocumentID string
	Body       string
	From       string
	To         string
	Err        error
}

// Observer receives session notifications. The engine works headlessly
// with no observers attached; highlighting and UI layers subscribe at
// the boundary.
type Observer interface {
	HandleSnippetEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// HandleSnippetEvent implements Observer.
func (f ObserverFunc) HandleSnippetEvent(ev Event) { f(ev) }

// ChoicePresenter is the completion-UI collaborator. The engine shows
// the active tabstop's choice list while its text is empty and hides
// it as soon as the text becomes non-empty.
type ChoicePresenter interface {
	ShowChoices(docID, tabstopID string, choices []string)
	HideChoices(docID string)
}
