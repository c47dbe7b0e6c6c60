// Package bdcoreerr defines the structured error taxonomy that every
// construction, compilation and evaluation failure in bdcore is reported
// through. Callers discriminate failures with KindOf, never by matching
// error strings.
package bdcoreerr

import "fmt"

// Kind enumerates the taxonomy of errors a diagram can raise, per the
// error-handling design.
type Kind int

const (
	// BlockCheck: a block's self-check or arity constraint failed.
	BlockCheck Kind = iota
	// SubsystemShape: subsystem inport/outport topology invalid.
	SubsystemShape
	// SubsystemCompile: nested compilation failed.
	SubsystemCompile
	// DuplicateName: two blocks share a resolved name after flattening.
	DuplicateName
	// StateNames: declared state-name list length disagrees with nstates.
	StateNames
	// PortOutOfRange: a wire references a port outside its block's arity.
	PortOutOfRange
	// DoubleDriver: more than one wire ends at the same input port.
	DoubleDriver
	// Unconnected: an input port has no driver after compilation.
	Unconnected
	// AlgebraicLoop: function-only cycle found.
	AlgebraicLoop
	// BundleWidth: slice-to-slice or slice-to-block arities mismatch.
	BundleWidth
	// IncompleteInputs: block was invoked before all its inputs arrived.
	IncompleteInputs
	// NonFinite: block output contains NaN or infinity under the
	// finite-check flag.
	NonFinite
	// EvaluationDryRun: initial evaluation during compile failed.
	EvaluationDryRun
	// TransferInRealtime: realtime mode invoked on a diagram with transfer
	// blocks.
	TransferInRealtime
)

func (k Kind) String() string {
	switch k {
	case BlockCheck:
		return "BlockCheck"
	case SubsystemShape:
		return "SubsystemShape"
	case SubsystemCompile:
		return "SubsystemCompile"
	case DuplicateName:
		return "DuplicateName"
	case StateNames:
		return "StateNames"
	case PortOutOfRange:
		return "PortOutOfRange"
	case DoubleDriver:
		return "DoubleDriver"
	case Unconnected:
		return "Unconnected"
	case AlgebraicLoop:
		return "AlgebraicLoop"
	case BundleWidth:
		return "BundleWidth"
	case IncompleteInputs:
		return "IncompleteInputs"
	case NonFinite:
		return "NonFinite"
	case EvaluationDryRun:
		return "EvaluationDryRun"
	case TransferInRealtime:
		return "TransferInRealtime"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type raised by every bdcore package. Block,
// Wire and Path are populated when relevant to the Kind and are empty
// otherwise.
type Error struct {
	Kind    Kind
	Message string
	Block   string   // offending block name, if any
	Wire    string   // offending wire name/id, if any
	Path    []string // cycle path, for AlgebraicLoop
	Cause   error
}

func (e *Error) Error() string {
	s := e.Kind.String() + ": " + e.Message
	if e.Block != "" {
		s += " (block " + e.Block + ")"
	}
	if len(e.Path) > 0 {
		s += " (path: "
		for i, p := range e.Path {
			if i > 0 {
				s += " -> "
			}
			s += p
		}
		s += ")"
	}
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds an Error of the given kind around a lower-level cause.
func Wrap(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// WithBlock attaches the offending block's name to the error and returns it.
func (e *Error) WithBlock(name string) *Error {
	e.Block = name
	return e
}

// WithWire attaches the offending wire's name to the error and returns it.
func (e *Error) WithWire(name string) *Error {
	e.Wire = name
	return e
}

// WithPath attaches a cycle path to the error and returns it.
func (e *Error) WithPath(path []string) *Error {
	e.Path = path
	return e
}

// KindOf extracts the Kind from err if it (or one of the errors it wraps) is
// a *Error, and reports whether one was found.
func KindOf(err error) (Kind, bool) {
	for err != nil {
		if be, ok := err.(*Error); ok {
			return be.Kind, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return 0, false
}

// Is reports whether err is a bdcoreerr.Error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
