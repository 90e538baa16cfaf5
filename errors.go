package postboard

import (
	"errors"
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Kind is the classified outcome of a failed operation.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindUnauthorized Kind = "unauthorized"
	KindNotFound     Kind = "not_found"
	KindUnexpected   Kind = "unexpected"
	KindNetwork      Kind = "network"
)

const (
	textCodeNotLoggedIn        = "NOT_LOGGED_IN"
	textCodeNotOwner           = "NOT_POST_OWNER"
	textCodeDeleteDeclined     = "DELETE_DECLINED"
	textCodeSubmissionInFlight = "SUBMISSION_IN_FLIGHT"
	textCodeInvalidPostID      = "INVALID_POST_ID"
)

// ErrNotLoggedIn is returned when an operation requires a logged in user.
var ErrNotLoggedIn = goerrors.New("operation requires a logged in user", goerrors.CategoryAuth).
	WithTextCode(textCodeNotLoggedIn).
	WithCode(goerrors.CodeUnauthorized)

// ErrNotOwner is returned when the logged in user is not the post author.
var ErrNotOwner = goerrors.New("operation restricted to the post author", goerrors.CategoryAuthz).
	WithTextCode(textCodeNotOwner).
	WithCode(goerrors.CodeForbidden)

// ErrDeleteDeclined is returned when the user does not confirm a delete.
var ErrDeleteDeclined = goerrors.New("delete was not confirmed", goerrors.CategoryOperation).
	WithTextCode(textCodeDeleteDeclined)

// ErrSubmissionInFlight is returned when a form is submitted while a previous
// submission has not completed.
var ErrSubmissionInFlight = goerrors.New("a submission is already in progress", goerrors.CategoryConflict).
	WithTextCode(textCodeSubmissionInFlight).
	WithCode(goerrors.CodeConflict)

// ErrInvalidPostID is returned for non positive post ids.
var ErrInvalidPostID = goerrors.New("invalid post id", goerrors.CategoryBadInput).
	WithTextCode(textCodeInvalidPostID).
	WithCode(goerrors.CodeBadRequest)

// IsBlocked reports whether err is a client side guard rejection.
func IsBlocked(err error) bool {
	return errors.Is(err, ErrNotLoggedIn) || errors.Is(err, ErrNotOwner)
}

// OperationError is a classified failure. Only the Classifier builds them.
type OperationError struct {
	Kind Kind
	// Status is the HTTP status, zero when no response was received.
	Status int
	// Messages holds the user facing messages, in server order for
	// validation failures.
	Messages  []string
	Body      string
	Operation string
	RequestID string
	Cause     error
}

func (e *OperationError) Error() string {
	if e == nil {
		return "operation error"
	}

	scope := "operation"
	if e.Operation != "" {
		scope = e.Operation
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s failed (%s", scope, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, ", status %d", e.Status)
	}
	b.WriteString(")")
	if msg := e.Message(); msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	return b.String()
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// HasStatus reports whether a response was received.
func (e *OperationError) HasStatus() bool {
	return e != nil && e.Status != 0
}

// Message joins the user facing messages.
func (e *OperationError) Message() string {
	if e == nil {
		return ""
	}
	return strings.Join(e.Messages, "; ")
}

// Metadata returns diagnostic fields for logging.
func (e *OperationError) Metadata() map[string]any {
	if e == nil {
		return nil
	}

	meta := map[string]any{
		"kind": string(e.Kind),
	}
	if e.Operation != "" {
		meta["operation"] = e.Operation
	}
	if e.Status != 0 {
		meta["status"] = e.Status
	}
	if len(e.Messages) > 0 {
		meta["messages"] = append([]string(nil), e.Messages...)
	}
	if e.Body != "" {
		meta["body"] = e.Body
	}
	if e.RequestID != "" {
		meta["request_id"] = e.RequestID
	}
	if e.Cause != nil {
		meta["error"] = e.Cause.Error()
	}
	return meta
}

var kindErrors = map[Kind]*goerrors.Error{
	KindValidation: goerrors.New("request rejected by validation", goerrors.CategoryValidation).
		WithTextCode("VALIDATION_FAILED").
		WithCode(goerrors.CodeBadRequest),
	KindUnauthorized: goerrors.New("session is not authorized", goerrors.CategoryAuth).
		WithTextCode("UNAUTHORIZED").
		WithCode(goerrors.CodeUnauthorized),
	KindNotFound: goerrors.New("resource not found", goerrors.CategoryNotFound).
		WithTextCode("NOT_FOUND").
		WithCode(goerrors.CodeNotFound),
	KindUnexpected: goerrors.New("unexpected server response", goerrors.CategoryInternal).
		WithTextCode("UNEXPECTED_RESPONSE").
		WithCode(goerrors.CodeInternal),
	KindNetwork: goerrors.New("server unreachable", goerrors.CategoryOperation).
		WithTextCode("NETWORK_FAILURE"),
}

// Rich converts e into a go-errors value so it can be logged with the rest
// of the rich error stack.
func (e *OperationError) Rich() *goerrors.Error {
	if e == nil {
		return nil
	}

	base, ok := kindErrors[e.Kind]
	if !ok {
		base = kindErrors[KindUnexpected]
	}

	clone := base.Clone()
	if clone == nil {
		clone = base
	}
	if msg := e.Message(); msg != "" {
		clone.Message = msg
	}
	if e.Kind == KindUnexpected && e.Status != 0 {
		clone.WithCode(e.Status)
	}
	if e.Cause != nil {
		clone.Source = e.Cause
	}
	clone.WithMetadata(e.Metadata())

	return clone
}

// AsOperationError extracts a classified error from err.
func AsOperationError(err error) (*OperationError, bool) {
	var opErr *OperationError
	if errors.As(err, &opErr) && opErr != nil {
		return opErr, true
	}
	return nil, false
}

// IsKind reports whether err is a classified error of the given kind.
func IsKind(err error, kind Kind) bool {
	opErr, ok := AsOperationError(err)
	return ok && opErr.Kind == kind
}
