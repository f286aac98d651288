package core

import "log/slog"

// RequestState tracks a message through the pipeline.  No request may skip
// a state; any failure moves the request to StateError.
type RequestState string

const (
	StateReceived   RequestState = "received"
	StateClassified RequestState = "classified"
	StateDispatched RequestState = "dispatched"
	StateFiltered   RequestState = "filtered"
	StatePersisted  RequestState = "persisted"
	StateResponded  RequestState = "responded"
	StateError      RequestState = "error"
)

// validTransitions defines the allowed state transitions for a request.
// Every non-terminal state may fail into StateError.
var validTransitions = map[RequestState]map[RequestState]bool{
	StateReceived:   {StateClassified: true, StateError: true},
	StateClassified: {StateDispatched: true, StateError: true},
	StateDispatched: {StateFiltered: true, StateError: true},
	StateFiltered:   {StatePersisted: true, StateError: true},
	StatePersisted:  {StateResponded: true, StateError: true},
}

// transition validates and performs a request state transition.  An invalid
// transition is a pipeline bug; it is logged and the current state kept.
func transition(current, desired RequestState) RequestState {
	allowed, exists := validTransitions[current]
	if !exists || !allowed[desired] {
		slog.Error("invalid request state transition", "from", current, "to", desired)
		return current
	}
	return desired
}
