package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error so the HTTP layer can map it to a status code
// without inspecting message text.
type Kind int

const (
	// Internal is an unexpected failure (persistence, programming error).
	Internal Kind = iota
	// Invalid is a malformed or incomplete request payload.
	Invalid
	// NotFound means the referenced record does not exist.
	NotFound
	// Conflict means a uniqueness constraint was violated (e.g. duplicate nonce).
	Conflict
	// InsufficientFunds means a transfer would drive a balance negative.
	InsufficientFunds
)

func (k Kind) String() string {
	switch k {
	case Invalid:
		return "invalid"
	case NotFound:
		return "not found"
	case Conflict:
		return "conflict"
	case InsufficientFunds:
		return "insufficient funds"
	default:
		return "internal"
	}
}

// Error carries a kind, a caller-safe message and an optional wrapped cause.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an Error. The last argument may be a wrapped cause.
func E(kind Kind, msg string, err ...error) error {
	out := &Error{Kind: kind, Msg: msg}
	if len(err) > 0 {
		out.Err = err[0]
	}
	return out
}

// KindOf extracts the kind of err, defaulting to Internal for plain errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// Message returns the caller-safe message of err. Internal errors collapse to
// a fixed message so persistence detail never reaches the client.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != Internal {
		return e.Msg
	}
	return "internal error"
}

// ValidationErrors collects per-field problems so a handler can report all of
// them in one response.
type ValidationErrors struct {
	fields []string
}

// ValidationErrs returns an empty collector.
func ValidationErrs() *ValidationErrors {
	return &ValidationErrors{}
}

// Add records a problem with the named field.
func (v *ValidationErrors) Add(field, problem string) {
	v.fields = append(v.fields, fmt.Sprintf("%s: %s", field, problem))
}

// Err returns an Invalid error covering the collected fields, or nil if none
// were added.
func (v *ValidationErrors) Err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return E(Invalid, "validation failed: "+strings.Join(v.fields, "; "))
}

// EmptyFieldErr is a shortcut for a single missing required field.
func EmptyFieldErr(field string) error {
	ve := ValidationErrs()
	ve.Add(field, "cannot be empty")
	return ve.Err()
}
