package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a scenario step failed.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	LaunchFailure
	ReadinessTimeout
	WatchTimeout
	AdminCommandFailed
	ProcessExitNonZero
)

func (k ErrorKind) String() string {
	switch k {
	case LaunchFailure:
		return "launch_failure"
	case ReadinessTimeout:
		return "readiness_timeout"
	case WatchTimeout:
		return "watch_timeout"
	case AdminCommandFailed:
		return "admin_command_failed"
	case ProcessExitNonZero:
		return "process_exit_nonzero"
	default:
		return "unknown"
	}
}

// Error is the single error type every harness component returns.
// Op is the logical operation (create, destroy, shutdown, await-absence ...),
// Name the process or path it concerns, Status the exit status when one exists.
type Error struct {
	Kind   ErrorKind
	Op     string
	Name   string
	Status int
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s %s", e.Kind, e.Op, e.Name)
	if e.Kind == AdminCommandFailed || e.Kind == ProcessExitNonZero {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so errors.Is(err, &Error{Kind: WatchTimeout}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf reports the kind of the first *Error found in err's chain.
func KindOf(err error) ErrorKind {
	var he *Error
	if errors.As(err, &he) {
		return he.Kind
	}
	return KindUnknown
}

func NewError(kind ErrorKind, op, name string, err error) *Error {
	return &Error{Kind: kind, Op: op, Name: name, Err: err}
}
