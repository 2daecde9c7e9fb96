package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/diantamela/satgas-ppk/models"
	"github.com/diantamela/satgas-ppk/repository"
)

// Kind classifies a workflow failure
type Kind string

// Error kinds
const (
	KindValidation             Kind = "validation"
	KindNotFound               Kind = "not_found"
	KindInvalidState           Kind = "invalid_state"
	KindConcurrentModification Kind = "concurrent_modification"
	KindAuthorization          Kind = "authorization"
	KindStorage                Kind = "storage"
)

// Error is the single error type returned by the workflow
type Error struct {
	Kind    Kind
	Op      string
	Message string

	// set for validation failures
	Field string
	// set for invalid state failures
	Current models.CaseStatus
	Event   Event

	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil && msg == "" {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// ValidationError reports malformed input on field
func ValidationError(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf("%s: %s", field, msg)}
}

// NotFoundError reports a missing entity
func NotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id), Err: repository.ErrNotFound}
}

// InvalidStateError reports an event the current status does not accept
func InvalidStateError(current models.CaseStatus, event Event) *Error {
	return &Error{
		Kind:    KindInvalidState,
		Current: current,
		Event:   event,
		Message: fmt.Sprintf("event %s not permitted while case is %s", event, current),
	}
}

// ConcurrentModificationError reports that the case moved under the caller
func ConcurrentModificationError(caseID string) *Error {
	return &Error{Kind: KindConcurrentModification, Message: fmt.Sprintf("case %s was modified concurrently", caseID), Err: repository.ErrConflict}
}

// AuthorizationError reports an actor lacking the required role
func AuthorizationError(actor models.Actor, action string) *Error {
	return &Error{Kind: KindAuthorization, Message: fmt.Sprintf("actor %q with role %q may not %s", actor.ID, actor.Role, action)}
}

// StorageError wraps a backend failure
func StorageError(err error) *Error {
	return &Error{Kind: KindStorage, Message: "storage failure", Err: err}
}

// KindOf classifies err. Raw repository sentinels are classified too, so callers outside
// the workflow can share one mapping.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var werr *Error
	if errors.As(err, &werr) {
		return werr.Kind
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return KindNotFound
	case errors.Is(err, repository.ErrConflict):
		return KindConcurrentModification
	}
	return KindStorage
}

// IsKind reports whether err is of kind k
func IsKind(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// classify turns whatever came out of a transaction into a workflow *Error
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var werr *Error
	if errors.As(err, &werr) {
		if werr.Op == "" {
			werr.Op = op
		}
		return werr
	}
	out := &Error{Op: op, Err: err}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		out.Kind = KindNotFound
		out.Message = "record not found"
	case errors.Is(err, repository.ErrConflict):
		out.Kind = KindConcurrentModification
		out.Message = "case was modified concurrently"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		out.Kind = KindStorage
		out.Message = "storage timeout"
	default:
		out.Kind = KindStorage
		out.Message = "storage failure"
	}
	return out
}
