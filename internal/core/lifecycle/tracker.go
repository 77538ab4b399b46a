// Package lifecycle tracks the pending/fulfilled/rejected phase of store
// operations and tags each request with a sequence number so a store can
// drop responses that were superseded by a newer request of the same kind.
package lifecycle

import "errors"

// ErrSuperseded is returned to the caller of a request whose response was
// discarded because a newer request of the same kind was issued after it.
var ErrSuperseded = errors.New("superseded by a newer request")

// Phase of a single operation kind
type Phase uint8

const (
	Idle Phase = iota
	Loading
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Succeeded:
		return "ok"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

// State is the tagged result of the latest request of one kind
type State struct {
	Phase Phase
	Err   error
	Seq   uint64
}

// Ticket identifies one issued request
type Ticket struct {
	Kind string
	Seq  uint64
}

// Tracker is not safe for concurrent use; the owning store serializes
// access with its own mutex so that the staleness check and the state
// write happen under the same lock.
type Tracker struct {
	seq      uint64
	inflight int
	states   map[string]State
}

// NewTracker creates an empty tracker
func NewTracker() *Tracker {
	return &Tracker{states: make(map[string]State)}
}

// Begin issues a new ticket for kind and marks the kind loading
func (t *Tracker) Begin(kind string) Ticket {
	t.seq++
	t.inflight++
	t.states[kind] = State{Phase: Loading, Seq: t.seq}
	return Ticket{Kind: kind, Seq: t.seq}
}

// Finish resolves tk. It reports whether tk is still the latest request of
// its kind; when it is not, the kind's state is left to the newer request.
func (t *Tracker) Finish(tk Ticket, err error) bool {
	if t.inflight > 0 {
		t.inflight--
	}
	current, ok := t.states[tk.Kind]
	if !ok || current.Seq != tk.Seq {
		return false
	}
	if err != nil {
		t.states[tk.Kind] = State{Phase: Failed, Err: err, Seq: tk.Seq}
	} else {
		t.states[tk.Kind] = State{Phase: Succeeded, Seq: tk.Seq}
	}
	return true
}

// Busy reports whether any request is in flight
func (t *Tracker) Busy() bool {
	return t.inflight > 0
}

// State returns the state of kind
func (t *Tracker) State(kind string) State {
	return t.states[kind]
}

// Reset forgets all states; in-flight tickets resolve as stale
func (t *Tracker) Reset() {
	t.states = make(map[string]State)
}
