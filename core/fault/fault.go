// Package fault defines the error taxonomy shared by every formstate package.
//
// Errors fall into three kinds:
//   - Precondition: a required argument was missing (nil config list, nil updater,
//     empty service name). A programming error in the caller.
//   - Configuration: the caller supplied a configuration the engine cannot
//     accept (missing or unsupported value host type, duplicate name).
//   - Disposed: the manager or its services were used after teardown.
//
// Each package declares its own sentinel errors in errors.go. Those sentinels
// are wrapped in an *Error carrying the kind, so callers can test for either
// the specific cause or the kind:
//
//	_, err := m.AddValueHost(cfg, nil)
//	errors.Is(err, manager.ErrDuplicateName) // specific
//	errors.Is(err, fault.ErrConfiguration)   // kind
package fault

import (
	"errors"
	"fmt"
)

// Kind identifies the category of an error.
type Kind int

const (
	// KindUnknown indicates an error of unknown category.
	KindUnknown Kind = iota
	// KindPrecondition indicates a missing required argument.
	KindPrecondition
	// KindConfiguration indicates caller misuse of configuration.
	KindConfiguration
	// KindDisposed indicates use after teardown.
	KindDisposed
)

// Kind sentinels. Every *Error unwraps to the sentinel matching its Kind.
var (
	ErrPrecondition  = errors.New("precondition violation")
	ErrConfiguration = errors.New("configuration error")
	ErrDisposed      = errors.New("object disposed")
)

func (k Kind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindConfiguration:
		return "configuration"
	case KindDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindPrecondition:
		return ErrPrecondition
	case KindConfiguration:
		return ErrConfiguration
	case KindDisposed:
		return ErrDisposed
	default:
		return nil
	}
}

// Error is a categorized error raised by the engine.
type Error struct {
	// Op is the operation that failed (e.g. "manager.AddValueHost").
	Op string
	// Kind categorizes the error.
	Kind Kind
	// Name is the value host or service name involved, if any.
	Name string
	// Err is the specific cause.
	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Name != "" {
		return fmt.Sprintf("%s [%s] %q: %s", e.Op, e.Kind, e.Name, msg)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Op, e.Kind, msg)
}

// Unwrap exposes both the kind sentinel and the specific cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Precondition returns a KindPrecondition error for op.
func Precondition(op string, err error) error {
	return &Error{Op: op, Kind: KindPrecondition, Err: err}
}

// Configuration returns a KindConfiguration error for op naming the offending
// value host.
func Configuration(op, name string, err error) error {
	return &Error{Op: op, Kind: KindConfiguration, Name: name, Err: err}
}

// Disposed returns a KindDisposed error for op.
func Disposed(op string) error {
	return &Error{Op: op, Kind: KindDisposed}
}

// KindOf reports the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}
