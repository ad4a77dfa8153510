// Package relerr defines the statement-pipeline error taxonomy. Every
// error that crosses the analyzer/planner/portal/execution boundary is a
// *relerr.Error carrying a stable Kind so callers can branch on failure
// class without string matching.
package relerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a pipeline error. See spec §7 for the full taxonomy.
type Kind int

const (
	Internal Kind = iota
	TableNotFound
	ColumnNotFound
	AmbiguousColumn
	DuplicateAlias
	IncompatibleType
	InvalidValueCount
	IndexNotFound
	IndexExists
	NoJoinAlgorithm
	IoError
)

func (k Kind) String() string {
	switch k {
	case TableNotFound:
		return "TableNotFound"
	case ColumnNotFound:
		return "ColumnNotFound"
	case AmbiguousColumn:
		return "AmbiguousColumn"
	case DuplicateAlias:
		return "DuplicateAlias"
	case IncompatibleType:
		return "IncompatibleType"
	case InvalidValueCount:
		return "InvalidValueCount"
	case IndexNotFound:
		return "IndexNotFound"
	case IndexExists:
		return "IndexExists"
	case NoJoinAlgorithm:
		return "NoJoinAlgorithm"
	case IoError:
		return "IoError"
	default:
		return "InternalError"
	}
}

// Error is the concrete error type carried through the pipeline. It wraps
// an underlying cause (produced by github.com/pkg/errors.New or .Wrap
// so the telemetry boundary can log a stack trace on Internal/IoError).
type Error struct {
	Kind Kind
	msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a taxonomy error with a stack trace attached via pkg/errors.
func New(kind Kind, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Kind: kind, msg: msg, Err: errors.New(msg)}
}

// Wrap attaches a taxonomy kind to an existing error, preserving it as the
// cause and adding a stack trace recorded at this call site.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{Kind: kind, msg: msg, Err: errors.Wrap(err, msg)}
}

// KindOf extracts the taxonomy Kind from err, defaulting to Internal for
// errors that never passed through this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
