package classify

// Kind is the raw notification kind delivered by the notifier.
type Kind int

const (
	// KindCreate indicates paths that appeared.
	KindCreate Kind = iota
	// KindRemove indicates paths that disappeared.
	KindRemove
	// KindOther covers notification kinds the classifier ignores
	// (metadata changes, writes).
	KindOther
	// KindError carries a delivery failure from the notification layer.
	KindError
)

// String returns a human-readable representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "CREATE"
	case KindRemove:
		return "REMOVE"
	case KindOther:
		return "OTHER"
	case KindError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// RawEvent is one notification from the underlying watch mechanism.
// A single event may carry several affected paths; each is classified
// independently, in order.
type RawEvent struct {
	// Kind is the raw notification kind.
	Kind Kind

	// Paths are the affected paths. Empty for KindError.
	Paths []string

	// Err is the delivery diagnostic for KindError events.
	Err error
}

// EventType is the semantic classification of a directory change.
type EventType int

const (
	// TypeCreated is a new top-level directory.
	TypeCreated EventType = iota
	// TypeMoved is a top-level directory found again elsewhere in the tree
	// after its old path disappeared.
	TypeMoved
	// TypeRemoved is a top-level directory that is gone with no surviving
	// same-named directory anywhere under the root.
	TypeRemoved
	// TypeWatchError surfaces a notification-layer failure.
	TypeWatchError
)

// String returns a human-readable representation of the event type.
func (t EventType) String() string {
	switch t {
	case TypeCreated:
		return "created"
	case TypeMoved:
		return "moved"
	case TypeRemoved:
		return "removed"
	case TypeWatchError:
		return "watch_error"
	default:
		return "unknown"
	}
}

// Event is a classified semantic event, the only output the core produces.
// Timestamps and formatting are the reporter's concern.
type Event struct {
	// Type is the semantic classification.
	Type EventType

	// Path is the affected path for Created and Removed events.
	Path string

	// OldName is the base name the directory had before moving.
	// Set only for Moved events.
	OldName string

	// NewPath is where the moved directory was found.
	// Set only for Moved events.
	NewPath string

	// Err is the diagnostic for WatchError events.
	Err error
}
