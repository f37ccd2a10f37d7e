// Package apperror holds the error taxonomy the pipeline converts low-level
// failures into at component boundaries.
package apperror

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Kind string

const (
	KindNotFound            Kind = "not_found"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindParse               Kind = "parse_error"
	KindValidation          Kind = "validation_error"
	KindConflict            Kind = "conflict"
	KindOverflow            Kind = "overflow"
	KindInternal            Kind = "internal"
)

// Error is the structured error surfaced by the pipeline.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error

	// Raw carries the unparseable LLM response for KindParse.
	Raw string
	// Timeout is set when an upstream call ran past its deadline.
	Timeout bool
	// CorrelationID is set for KindInternal so logs can be matched.
	CorrelationID string
	// Existing carries whatever was already persisted for KindConflict.
	Existing any
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = fmt.Sprintf("[%s] %s", e.Op, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(op, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

func UpstreamUnavailable(op, message string, err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Op: op, Message: message, Err: err}
}

func Timeout(op string, err error) *Error {
	return &Error{Kind: KindUpstreamUnavailable, Op: op, Message: "timeout", Err: err, Timeout: true}
}

func Parse(op, message, raw string, err error) *Error {
	return &Error{Kind: KindParse, Op: op, Message: message, Raw: raw, Err: err}
}

func Validation(op, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Message: message}
}

func Conflict(op, message string, existing any) *Error {
	return &Error{Kind: KindConflict, Op: op, Message: message, Existing: existing}
}

func Overflow(op, message string) *Error {
	return &Error{Kind: KindOverflow, Op: op, Message: message}
}

// Internal wraps err with a fresh correlation id.
func Internal(op string, err error) *Error {
	return &Error{
		Kind:          KindInternal,
		Op:            op,
		Message:       "internal error",
		Err:           err,
		CorrelationID: uuid.NewString(),
	}
}

// As returns the *Error in err's chain, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf reports the taxonomy kind of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindUpstreamUnavailable:
		return http.StatusBadGateway
	case KindParse:
		return http.StatusUnprocessableEntity
	case KindValidation, KindOverflow:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
