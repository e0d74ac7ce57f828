package migration

import "fmt"

// RecordState is the position of one source row in its migration.
type RecordState int

const (
	StateFetched RecordState = iota
	StateValidated
	StateResolved
	StateInserted
	StateAuditLogged
	StateFailed
)

func (s RecordState) String() string {
	switch s {
	case StateFetched:
		return "fetched"
	case StateValidated:
		return "validated"
	case StateResolved:
		return "resolved"
	case StateInserted:
		return "inserted"
	case StateAuditLogged:
		return "audit-logged"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("RecordState(%d)", int(s))
	}
}

// transitions lists the allowed next states. Failed is terminal.
var transitions = map[RecordState][]RecordState{
	StateFetched:   {StateValidated},
	StateValidated: {StateResolved, StateFailed},
	StateResolved:  {StateInserted, StateFailed},
	StateInserted:  {StateAuditLogged, StateFailed},
}

// CanTransition reports whether a record may move from one state to another.
func CanTransition(from, to RecordState) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// recordTracker follows one row through the state machine.
type recordTracker struct {
	state RecordState
}

// advance moves the record to next, panicking on a transition the state
// machine does not allow.
func (r *recordTracker) advance(next RecordState) {
	if !CanTransition(r.state, next) {
		panic(fmt.Sprintf("invalid record transition %s -> %s", r.state, next))
	}
	r.state = next
}
