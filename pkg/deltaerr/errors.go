package deltaerr

import (
	"errors"
	"fmt"
)

// Kind identifies one of deltakit's error categories.
type Kind string

const (
	ConfigError         Kind = "ConfigError"
	IoError             Kind = "IoError"
	CorruptLog          Kind = "CorruptLog"
	VersionNotFound     Kind = "VersionNotFound"
	UnsupportedProtocol Kind = "UnsupportedProtocol"
	MissingStatistics   Kind = "MissingStatistics"
	Infeasible          Kind = "Infeasible"
	EmptyTable          Kind = "EmptyTable"
	InvalidConfig       Kind = "InvalidConfig"
	Cancelled           Kind = "Cancelled"
	Internal            Kind = "Internal"
)

// IOKind sub-classifies an IoError.
type IOKind string

const (
	NotFound  IOKind = "NotFound"
	Forbidden IOKind = "Forbidden"
	Network   IOKind = "Network"
	Malformed IOKind = "Malformed"
)

// Error is deltakit's single error type. Context carries structured detail
// (version, path, cap name, shard index) a caller renders into a
// human-readable remediation hint or a JSON error body.
type Error struct {
	Kind    Kind
	IOKind  IOKind // only meaningful when Kind == IoError
	Message string
	Context map[string]any
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a *Error with the same Kind, so callers can
// write errors.Is(err, &deltaerr.Error{Kind: deltaerr.VersionNotFound}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// With attaches a context key/value and returns the receiver for chaining.
func (e *Error) With(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

func newErr(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func Config(msg string, cause error) *Error { return newErr(ConfigError, msg, cause) }

func IO(kind IOKind, msg string, cause error) *Error {
	e := newErr(IoError, msg, cause)
	e.IOKind = kind
	return e
}

func Corrupt(version int64, msg string, cause error) *Error {
	return newErr(CorruptLog, msg, cause).With("version", version)
}

func NotFoundVersion(target int64) *Error {
	return newErr(VersionNotFound, fmt.Sprintf("version %d not found", target), nil).With("version", target)
}

func Unsupported(reader, writer int) *Error {
	return newErr(UnsupportedProtocol, fmt.Sprintf("reader protocol version %d exceeds supported version", reader), nil).
		With("reader", reader).With("writer", writer)
}

func MissingStats(msg string) *Error { return newErr(MissingStatistics, msg, nil) }

func InfeasibleCap(cap string, shard int, msg string) *Error {
	return newErr(Infeasible, msg, nil).With("cap", cap).With("shard", shard)
}

func Invalid(msg string) *Error { return newErr(InvalidConfig, msg, nil) }

func Empty(msg string) *Error { return newErr(EmptyTable, msg, nil) }

func Cancel() *Error { return newErr(Cancelled, "operation cancelled", nil) }

func InternalErr(msg string, cause error) *Error { return newErr(Internal, msg, cause) }

// ExitCode maps a Kind to the deltakit CLI's process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var e *Error
	if !errors.As(err, &e) {
		return 1
	}
	switch e.Kind {
	case VersionNotFound:
		return 3
	case CorruptLog:
		return 4
	case Infeasible, MissingStatistics:
		return 5
	case IoError:
		return 6
	case ConfigError, InvalidConfig:
		return 2
	default:
		return 1
	}
}
