package downloader

import (
	"errors"
	"fmt"
)

// Kind classifies a download failure.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindExit
	KindFinalizer
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindExit:
		return "exit"
	case KindFinalizer:
		return "finalizer"
	default:
		return "internal"
	}
}

// Error is a classified failure of one download run.
type Error struct {
	Kind     Kind
	Detail   string // user-facing detail (validation text, tool path)
	ExitCode int
	Err      error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Detail != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the text shown to the user for this failure.
func (e *Error) Message() string {
	switch e.Kind {
	case KindValidation:
		return e.Detail
	case KindNotFound:
		return fmt.Sprintf("SpotDL not found. Make sure it is installed. Path: %s", e.Detail)
	case KindExit:
		return "SpotDL exited with errors. Check output above."
	case KindFinalizer:
		return fmt.Sprintf("Generation failed: %v", e.Err)
	default:
		return fmt.Sprintf("Unexpected error: %v", e.Err)
	}
}

// KindOf returns the [Kind] of err, or [KindInternal] for unclassified errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// AsError classifies any error, wrapping unclassified ones as [KindInternal].
func AsError(err error) *Error {
	var de *Error
	if errors.As(err, &de) {
		return de
	}
	return &Error{Kind: KindInternal, Err: err}
}

func validationError(msg string) *Error {
	return &Error{Kind: KindValidation, Detail: msg}
}

func notFoundError(path string, err error) *Error {
	return &Error{Kind: KindNotFound, Detail: path, Err: err}
}

func exitError(code int, err error) *Error {
	return &Error{Kind: KindExit, ExitCode: code, Err: err}
}

func finalizerError(err error) *Error {
	return &Error{Kind: KindFinalizer, Err: err}
}

func internalError(err error) *Error {
	return &Error{Kind: KindInternal, Err: err}
}
