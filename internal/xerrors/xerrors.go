// Package xerrors attaches call-site information to errors so the logger can
// print where a failure was created and each place it was wrapped.
//
// New, Newf, WithStack and EnsureTrace record a full stack. Wrap and Wrapf
// record a single program counter and prefix the message as "msg: err".
// Everything unwraps with the standard errors package.
package xerrors

import (
	"errors"
	"fmt"
	"runtime"
)

const maxStackDepth = 64

type stacked struct {
	err error
	pcs []uintptr
}

func (s *stacked) Error() string       { return s.err.Error() }
func (s *stacked) Unwrap() error       { return s.err }
func (s *stacked) StackPCs() []uintptr { return s.pcs }

type wrapped struct {
	err error
	msg string
	pc  uintptr
}

func (w *wrapped) Error() string { return w.msg + ": " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }
func (w *wrapped) PC() uintptr   { return w.pc }

// stack returns the pcs above the exported function that called it.
func stack() []uintptr {
	pcs := make([]uintptr, maxStackDepth)
	// runtime.Callers, stack, the exported constructor
	n := runtime.Callers(3, pcs)
	return pcs[:n]
}

// callSite returns the pc of whoever called the exported function.
func callSite() uintptr {
	var pcs [1]uintptr
	if runtime.Callers(3, pcs[:]) == 0 {
		return 0
	}
	return pcs[0]
}

// New returns an error with message msg and the caller's stack.
func New(msg string) error {
	return &stacked{err: errors.New(msg), pcs: stack()}
}

// Newf is New with fmt formatting. %w verbs are honored.
func Newf(format string, args ...any) error {
	return &stacked{err: fmt.Errorf(format, args...), pcs: stack()}
}

// WithStack records the caller's stack on err. It returns nil for nil.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	return &stacked{err: err, pcs: stack()}
}

// EnsureTrace is WithStack unless some error in err's chain already carries a
// stack, in which case err is returned as is.
func EnsureTrace(err error) error {
	if err == nil {
		return nil
	}
	var hs interface{ StackPCs() []uintptr }
	if errors.As(err, &hs) && len(hs.StackPCs()) > 0 {
		return err
	}
	return &stacked{err: err, pcs: stack()}
}

// Wrap prefixes err with msg and records the call site. It returns nil for
// nil so it can wrap a return value directly.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return &wrapped{err: err, msg: msg, pc: callSite()}
}

// Wrapf is Wrap with fmt formatting of the prefix.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return &wrapped{err: err, msg: fmt.Sprintf(format, args...), pc: callSite()}
}
