package matching

import (
	"errors"
	"fmt"
)

// Kind classifies a matching error for the transport layer
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthenticated
	KindNotFound
	KindForbidden
	KindStore
	KindPartialProvisioning
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindStore:
		return "store"
	case KindPartialProvisioning:
		return "partial_provisioning"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by Service operations.
// Message is safe to show to the caller; Err carries the underlying cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string

	// Verification levels, set for KindForbidden
	Required int
	Current  int

	// MatchID is set for KindPartialProvisioning
	MatchID string

	Err error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.MatchID != "" {
		msg = fmt.Sprintf("%s (match %s)", msg, e.MatchID)
	}
	if e.Err != nil {
		return fmt.Sprintf("matching: %s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("matching: %s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or 0 if err is not a matching error
func KindOf(err error) Kind {
	var me *Error
	if errors.As(err, &me) {
		return me.Kind
	}
	return 0
}

func validationError(op, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: msg}
}

func notFoundError(op, msg string, err error) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: msg, Err: err}
}

func storeError(op, msg string, err error) *Error {
	return &Error{Kind: KindStore, Op: op, Message: msg, Err: err}
}

func forbiddenError(op, msg string, required, current int) *Error {
	return &Error{Kind: KindForbidden, Op: op, Message: msg, Required: required, Current: current}
}
