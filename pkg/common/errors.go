package common

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorKind int

const (
	ConfigError ErrorKind = iota
	SpawnError
	TrainingError
	StateError
	SinkError
)

func (k ErrorKind) String() string {
	switch k {
	case ConfigError:
		return "configuration error"
	case SpawnError:
		return "spawn error"
	case TrainingError:
		return "training error"
	case StateError:
		return "state error"
	case SinkError:
		return "output sink error"
	default:
		return fmt.Sprintf("error kind %d", int(k))
	}
}

// Error carries one of the failure kinds of an experiment. Errors of the same
// kind match each other under errors.Is regardless of the wrapped cause.
type Error struct {
	Kind ErrorKind
	Err  error
}

var (
	ErrConfig   = &Error{Kind: ConfigError}
	ErrSpawn    = &Error{Kind: SpawnError}
	ErrTraining = &Error{Kind: TrainingError}
	ErrState    = &Error{Kind: StateError}
	ErrSink     = &Error{Kind: SinkError}
)

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// NewError builds an error of the given kind. A nil cause produces a fresh
// error from the message; otherwise the cause is wrapped with it.
func NewError(kind ErrorKind, cause error, format string, args ...interface{}) error {
	if cause == nil {
		return &Error{Kind: kind, Err: errors.Errorf(format, args...)}
	}
	return &Error{Kind: kind, Err: errors.Wrapf(cause, format, args...)}
}
