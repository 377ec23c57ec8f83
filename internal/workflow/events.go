package workflow

import "github.com/mgodinho/skunav/internal/domain"

// EventKind categorizes outbound UI events.
type EventKind int

const (
	// EventInfo is a neutral progress message.
	EventInfo EventKind = iota
	// EventWarning is a recoverable condition (no SKU, folder missing).
	EventWarning
	// EventError is a failed cycle (exhausted retries, declined auth).
	EventError
	// EventSuccess reports a completed side effect.
	EventSuccess
	// EventNavigate asks the UI to open a folder target.
	EventNavigate
	// EventExtrasFound offers additional detected SKUs for loading into
	// recents. Non-blocking: the UI answers via LoadExtras.
	EventExtrasFound
)

func (k EventKind) String() string {
	switch k {
	case EventInfo:
		return "info"
	case EventWarning:
		return "warning"
	case EventError:
		return "error"
	case EventSuccess:
		return "success"
	case EventNavigate:
		return "navigate"
	case EventExtrasFound:
		return "extras"
	default:
		return "unknown"
	}
}

// Event is a typed outbound message from the orchestrator. The core never
// renders; the UI collaborator subscribes and acts.
type Event struct {
	Kind    EventKind
	Message string
	Target  string               // navigation target (URL or path)
	Folder  *domain.FolderRecord // set on EventNavigate after a resolve
	SKUs    []string             // set on EventExtrasFound
	Err     error                // underlying cause on EventError/EventWarning
}

// Sink receives orchestrator events.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) { f(e) }

// NoopSink discards events (for testing/batch use).
type NoopSink struct{}

func (NoopSink) Emit(Event) {}
