package apperrors

import (
	"errors"
	"strings"
)

type Kind string

const (
	// KindResource marks I/O failures on the input or output resource.
	// These always abort the run.
	KindResource Kind = "resource"
	// KindContent marks malformed document content. The scanner recovers
	// from these and the run continues.
	KindContent Kind = "content"
	// KindEmpty marks a fully scanned input that produced no usable records.
	KindEmpty Kind = "empty"
)

type Error struct {
	Kind Kind
	// Resource names the failing file or stream for user-facing output.
	Resource string
	Cause    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := defaultMessage(e.Kind)
	if res := strings.TrimSpace(e.Resource); res != "" {
		msg += ": " + res
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func defaultMessage(kind Kind) string {
	switch kind {
	case KindResource:
		return "resource failure"
	case KindContent:
		return "malformed content"
	case KindEmpty:
		return "no valid records found"
	default:
		return "conversion failed"
	}
}

func New(kind Kind, resource string, cause error) error {
	return &Error{
		Kind:     kind,
		Resource: strings.TrimSpace(resource),
		Cause:    cause,
	}
}

// Resource wraps a fatal I/O failure on the named input or output.
func Resource(resource string, cause error) error {
	return New(KindResource, resource, cause)
}

// Content wraps a recoverable malformed-document condition.
func Content(cause error) error {
	return New(KindContent, "", cause)
}

// Empty reports the zero-valid-record outcome for the named input.
func Empty(resource string) error {
	return New(KindEmpty, resource, nil)
}

func KindOf(err error) (Kind, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	return e.Kind, true
}

// IsFatal reports whether err must abort the run. Content errors are
// recoverable; everything else is fatal.
func IsFatal(err error) bool {
	kind, ok := KindOf(err)
	if !ok {
		return true
	}
	return kind != KindContent
}

func IsEmptyResult(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindEmpty
}
