package object

import "github.com/dusklang/dusk/errz"

// Error is the value form of a runtime error. It wraps the same
// *errz.StructuredError the interpreter raises internally and exposes its
// kind and message as attributes. RAISE_ERROR and the VM's Run report
// errors as the *errz.StructuredError itself, not as an Error value.
type Error struct {
	Err *errz.StructuredError
}

func NewError(err *errz.StructuredError) *Error {
	return &Error{Err: err}
}

func (e *Error) Type() Type   { return ERROR }
func (e *Error) Str() string  { return e.Err.Error() }
func (e *Error) Repr() string { return "<error: " + e.Err.Error() + ">" }

func (e *Error) GetAttr(name string) (Object, bool) {
	switch name {
	case "kind":
		return NewStr(e.Err.Kind.String()), true
	case "message":
		return NewStr(e.Err.Message), true
	}
	return nil, false
}

// The constructors below build *errz.StructuredError values for ten of the
// error kinds; KeyboardInterrupt and UnexpectedError are built with
// errz.New directly. They return a plain Go error; the VM attaches captured
// frame snapshots and, if uncaught, returns it to the embedder as that same
// *errz.StructuredError.

func NewTypeError(format string, args ...any) error {
	return errz.Newf(errz.TypeError, format, args...)
}

func NewNameError(format string, args ...any) error {
	return errz.Newf(errz.NameError, format, args...)
}

func NewIndexError(format string, args ...any) error {
	return errz.Newf(errz.IndexError, format, args...)
}

func NewValueError(format string, args ...any) error {
	return errz.Newf(errz.ValueError, format, args...)
}

func NewZeroDivisionError(format string, args ...any) error {
	return errz.Newf(errz.ZeroDivisionError, format, args...)
}

func NewAttributeError(format string, args ...any) error {
	return errz.Newf(errz.AttributeError, format, args...)
}

func NewImportError(format string, args ...any) error {
	return errz.Newf(errz.ImportError, format, args...)
}

func NewAssertionError(format string, args ...any) error {
	return errz.Newf(errz.AssertionError, format, args...)
}

func NewKeyError(format string, args ...any) error {
	return errz.Newf(errz.KeyError, format, args...)
}

func NewRecursionError(format string, args ...any) error {
	return errz.Newf(errz.RecursionError, format, args...)
}
