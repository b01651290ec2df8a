// Package errz provides the structured runtime error type raised by the
// virtual machine: a typed error kind, a message, and a LIFO stack of frame
// snapshots captured at the moment the error left each frame.
package errz

import (
	"bytes"
	"fmt"

	"github.com/gofrs/uuid"
)

// ErrorKind categorizes a runtime error. This is the flat, non-extensible
// taxonomy the interpreter raises; embedders distinguish kinds by value
// comparison, never by parsing Message.
type ErrorKind int

const (
	TypeError ErrorKind = iota
	NameError
	IndexError
	ValueError
	ZeroDivisionError
	AttributeError
	ImportError
	AssertionError
	KeyboardInterrupt
	RecursionError
	KeyError
	UnexpectedError
)

func (k ErrorKind) String() string {
	switch k {
	case TypeError:
		return "TypeError"
	case NameError:
		return "NameError"
	case IndexError:
		return "IndexError"
	case ValueError:
		return "ValueError"
	case ZeroDivisionError:
		return "ZeroDivisionError"
	case AttributeError:
		return "AttributeError"
	case ImportError:
		return "ImportError"
	case AssertionError:
		return "AssertionError"
	case KeyboardInterrupt:
		return "KeyboardInterrupt"
	case RecursionError:
		return "RecursionError"
	case KeyError:
		return "KeyError"
	case UnexpectedError:
		return "UnexpectedError"
	default:
		return "Error"
	}
}

// MaxSnapshots bounds the number of frame snapshots kept per error, matching
// the original interpreter's cap (`if (snapshots.size() < 8)`): a deep
// recursive failure still reports a small, useful trace instead of one
// frame per recursion level.
const MaxSnapshots = 8

// Snapshot captures the location a frame was executing at when an error
// passed through it: filename, 1-based line, and the source line's text.
type Snapshot struct {
	Filename string
	Line     int
	Source   string
}

func (s Snapshot) String() string {
	if s.Filename == "" {
		return fmt.Sprintf("line %d: %s", s.Line, s.Source)
	}
	return fmt.Sprintf("%s:%d: %s", s.Filename, s.Line, s.Source)
}

// StructuredError is the Go representation of RuntimeError(kind, message,
// snapshots). It is raised by the interpreter and caught at exactly one
// point: the top-level Exec call.
type StructuredError struct {
	Kind      ErrorKind
	Message   string
	Snapshots []Snapshot
	Cause     error

	// CorrelationID tags this error's whole snapshot batch with a v4 UUID so
	// an embedder can match a CLI/log line back to the exact error instance
	// across process boundaries. Generated once, at construction.
	CorrelationID string
}

func New(kind ErrorKind, message string) *StructuredError {
	return &StructuredError{Kind: kind, Message: message, CorrelationID: newCorrelationID()}
}

func Newf(kind ErrorKind, format string, args ...any) *StructuredError {
	return &StructuredError{Kind: kind, Message: fmt.Sprintf(format, args...), CorrelationID: newCorrelationID()}
}

func newCorrelationID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return ""
	}
	return id.String()
}

func (e *StructuredError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *StructuredError) Unwrap() error {
	return e.Cause
}

func (e *StructuredError) WithCause(cause error) *StructuredError {
	e.Cause = cause
	return e
}

// PushSnapshot records the location a frame was at when the error passed
// through it, ignoring any further snapshot once MaxSnapshots is reached.
// Snapshots are pushed as the error unwinds, so index 0 is the innermost
// frame and the innermost MaxSnapshots frames are the ones kept.
func (e *StructuredError) PushSnapshot(s Snapshot) {
	if len(e.Snapshots) >= MaxSnapshots {
		return
	}
	e.Snapshots = append(e.Snapshots, s)
}

// Traceback renders the error and its captured call stack, innermost frame
// first, the way a REPL or CLI reports an uncaught error.
func (e *StructuredError) Traceback() string {
	var buf bytes.Buffer
	buf.WriteString(e.Error())
	if e.CorrelationID != "" {
		buf.WriteString(" [")
		buf.WriteString(e.CorrelationID)
		buf.WriteString("]")
	}
	for _, s := range e.Snapshots {
		buf.WriteString("\n  at ")
		buf.WriteString(s.String())
	}
	return buf.String()
}
