package core

import "fmt"

// ErrorKind classifies pipeline failures.  Only persistence failures
// surface to the boundary layer as request-level errors; everything else
// resolves to a degraded-but-valid reply.
type ErrorKind string

const (
	// KindInvalidInput - empty or oversized message, rejected before
	// classification with no state mutated.
	KindInvalidInput ErrorKind = "invalid_input"

	// KindClassificationAmbiguous - no trigger matched anywhere; the
	// message is routed to the general handler's fallback, not an error.
	KindClassificationAmbiguous ErrorKind = "classification_ambiguous"

	// KindHandlerFailure - a handler could not complete (missing slot,
	// no appointment on file); recovered locally with a clarification reply.
	KindHandlerFailure ErrorKind = "handler_failure"

	// KindPersistenceFailure - a store is unreachable; fatal for the
	// request, no partial append is performed.
	KindPersistenceFailure ErrorKind = "persistence_failure"
)

// EngineError wraps a pipeline failure with its kind.
type EngineError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *EngineError) Unwrap() error { return e.Cause }

// IsFatal reports whether the error must surface to the boundary layer.
func (e *EngineError) IsFatal() bool { return e.Kind == KindPersistenceFailure }

func invalidInput(message string) *EngineError {
	return &EngineError{Kind: KindInvalidInput, Message: message}
}

func persistenceFailure(message string, cause error) *EngineError {
	return &EngineError{Kind: KindPersistenceFailure, Message: message, Cause: cause}
}
