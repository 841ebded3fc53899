// Package errors implements Causality's categorized error taxonomy (§7):
// every error carries a kind, a bounded context map, a source location and
// an optional cause, the same shape as the teacher's ServiceError but
// generalized from HTTP-status categories to the engine's error kinds.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// Kind is one row of the §7 error taxonomy table.
type Kind string

const (
	KindSerialization        Kind = "Serialization"
	KindValidation           Kind = "Validation"
	KindResourceNotFound     Kind = "ResourceNotFound"
	KindResourceInvalidState Kind = "ResourceInvalidState"
	KindResourceLockConflict Kind = "ResourceLockConflict"
	KindRegistry             Kind = "Registry"
	KindEffectHandling       Kind = "EffectHandling"
	KindNodeTimeout          Kind = "NodeTimeout"
	KindProofGeneration      Kind = "Proof.Generation"
	KindProofVerification    Kind = "Proof.Verification"
	KindConsistency          Kind = "Consistency"
	KindBoundary             Kind = "Boundary"
	KindSystem               Kind = "System"
)

const (
	maxContextEntries  = 8
	maxContextValueLen = 64
)

// Error is Causality's structured error: a kind, a short message, a
// bounded context map, the source location where it was constructed, and
// an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Context map[string]string
	File    string
	Line    int
	Cause   error
}

// New constructs an Error of the given kind, capturing the call site.
func New(kind Kind, message string) *Error {
	e := &Error{Kind: kind, Message: message}
	e.captureLocation(2)
	return e
}

// Wrap constructs an Error of the given kind wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	e := &Error{Kind: kind, Message: message, Cause: cause}
	e.captureLocation(2)
	return e
}

func (e *Error) captureLocation(skip int) {
	_, file, line, ok := runtime.Caller(skip)
	if ok {
		e.File, e.Line = file, line
	}
}

// WithContext adds a bounded key/value to the error's context map. Beyond
// maxContextEntries, further entries are dropped; values longer than
// maxContextValueLen are truncated. Both bounds match §7.
func (e *Error) WithContext(key, value string) *Error {
	if e.Context == nil {
		e.Context = make(map[string]string, maxContextEntries)
	}
	if len(e.Context) >= maxContextEntries {
		if _, exists := e.Context[key]; !exists {
			return e
		}
	}
	if len(value) > maxContextValueLen {
		value = value[:maxContextValueLen]
	}
	e.Context[key] = value
	return e
}

// Error implements the error interface: kind, message, the wrapped cause's
// text if any, and source location. UserMessage is the variant that
// omits the cause.
func (e *Error) Error() string {
	loc := ""
	if e.File != "" {
		loc = fmt.Sprintf(" (%s:%d)", shortFile(e.File), e.Line)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v%s", e.Kind, e.Message, e.Cause, loc)
	}
	return fmt.Sprintf("[%s] %s%s", e.Kind, e.Message, loc)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Cause }

// LogMessage renders the error with its full cause chain walked to
// completion, for structured logs.
func (e *Error) LogMessage() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	cur := e.Cause
	for cur != nil {
		msg += ": " + cur.Error()
		cur = errors.Unwrap(cur)
	}
	return msg
}

// UserMessage renders only the top frame: code, category, message and
// location, eliding the cause chain, per §7's user-visible disposition.
func (e *Error) UserMessage() string {
	if e.File != "" {
		return fmt.Sprintf("[%s] %s (%s:%d)", e.Kind, e.Message, shortFile(e.File), e.Line)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func shortFile(path string) string {
	depth := 0
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			depth++
			if depth == 2 {
				return path[i+1:]
			}
		}
	}
	return path
}

// Is reports whether err (or any error in its chain) is a *Error of kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// As extracts a *Error from err's chain, if present.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// --- Per-kind constructors mirroring the teacher's per-category helpers ---

func Serialization(message string, cause error) *Error {
	return Wrap(KindSerialization, message, cause)
}

func Validation(field, reason string) *Error {
	return New(KindValidation, "validation failed").WithContext("field", field).WithContext("reason", reason)
}

func ResourceNotFound(id string) *Error {
	return New(KindResourceNotFound, "resource not found").WithContext("id", id)
}

func ResourceInvalidState(reason string) *Error {
	return New(KindResourceInvalidState, reason)
}

func ResourceLockConflict(id string) *Error {
	return New(KindResourceLockConflict, "resource is locked by another holder").WithContext("id", id)
}

func Registry(message string, cause error) *Error {
	return Wrap(KindRegistry, message, cause)
}

func EffectHandling(tag string, cause error) *Error {
	return Wrap(KindEffectHandling, "effect handler returned an error", cause).WithContext("tag", tag)
}

func NodeTimeout(nodeID string) *Error {
	return New(KindNodeTimeout, "node execution timeout").WithContext("node_id", nodeID)
}

func ProofGeneration(message string, cause error) *Error {
	return Wrap(KindProofGeneration, message, cause)
}

func ProofVerification(message string) *Error {
	return New(KindProofVerification, message)
}

func Consistency(message string) *Error {
	return New(KindConsistency, message)
}

func Boundary(system string, cause error) *Error {
	return Wrap(KindBoundary, "external system refused operation", cause).WithContext("system", system)
}

func System(message string, cause error) *Error {
	return Wrap(KindSystem, message, cause)
}
