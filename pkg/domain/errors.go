package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

var (
	// ErrInvalidFlow is the family of flow definition errors (GraphError).
	ErrInvalidFlow = errors.New("invalid flow definition")
	// ErrEmptyCaseID is returned when a case has no identity.
	ErrEmptyCaseID = fmt.Errorf("%w: case without id", ErrInvalidFlow)

	// ErrIllegalTransition is matched by every rejected event.
	ErrIllegalTransition = errors.New("illegal transition")
	// ErrUnknownNode is returned when an event or snapshot references a node outside the graph.
	ErrUnknownNode = errors.New("unknown node")

	// ErrExportInProgress is returned when an export is requested while a task is outstanding.
	ErrExportInProgress = errors.New("export already in progress")
	// ErrImportInProgress is returned when an import is requested while a task is outstanding.
	ErrImportInProgress = errors.New("import already in progress")
	// ErrSectionMismatch is returned when an archive does not belong to the loaded section.
	ErrSectionMismatch = errors.New("solution does not match section")

	// ErrSessionClosed is returned by a session after TryClose succeeded.
	ErrSessionClosed = errors.New("session closed")
	// ErrInvalidSnapshot is returned when a snapshot cannot be restored onto a graph.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)

// CyclicFlowError reports a flow whose next references never reach Total.
type CyclicFlowError struct {
	// NodeKey is the first node seen twice.
	NodeKey string
	Steps   int
}

func (e *CyclicFlowError) Error() string {
	return fmt.Sprintf("cyclic flow: node '%s' revisited after %d steps", e.NodeKey, e.Steps)
}

func (e *CyclicFlowError) Unwrap() error { return ErrInvalidFlow }

// DanglingReferenceError reports a next reference to an unknown case.
type DanglingReferenceError struct {
	From string
	Ref  string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("dangling reference: '%s' points to unknown node '%s'", e.From, e.Ref)
}

func (e *DanglingReferenceError) Unwrap() error { return ErrInvalidFlow }

// DuplicateCaseError reports two cases sharing one identity.
type DuplicateCaseError struct {
	CaseID string
}

func (e *DuplicateCaseError) Error() string {
	return fmt.Sprintf("duplicate case id '%s'", e.CaseID)
}

func (e *DuplicateCaseError) Unwrap() error { return ErrInvalidFlow }

// IllegalTransitionError describes an event received while its precondition failed.
type IllegalTransitionError struct {
	Event   EventType
	NodeKey string
	State   NodeState
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition: '%s' on node '%s' in state '%s'", e.Event, e.NodeKey, e.State)
}

func (e *IllegalTransitionError) Unwrap() error { return ErrIllegalTransition }

// ExportError wraps a failed export with its destination path.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export to '%s' failed: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// ImportError wraps a failed import with its source path.
type ImportError struct {
	Path string
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("import from '%s' failed: %v", e.Path, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }
