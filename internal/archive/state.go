package archive

import "fmt"

// State is the lifecycle phase of a Codec.
type State int

const (
	StateIdle State = iota
	StateCompressing
	StateExtracting
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCompressing:
		return "compressing"
	case StateExtracting:
		return "extracting"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// ProgressEvent is delivered to a ProgressFunc on every state change and
// after each entry is processed.
type ProgressEvent struct {
	State State
	// Entry is the slash-separated path of the entry just processed. Empty on
	// state changes.
	Entry string
	// Entries is the number of entries processed so far.
	Entries int
	// TotalEntries is the number of entries in the job, when known up front.
	TotalEntries int
	// Bytes is the number of uncompressed content bytes processed so far.
	Bytes int64
	// Err is set on the StateFailed event.
	Err error
}

// ProgressFunc receives progress events. It is called synchronously on the
// goroutine running the job.
type ProgressFunc func(ProgressEvent)
