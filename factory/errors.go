package factory

import "errors"

var (
	// ErrMissingType is returned when a configuration has no value host type.
	ErrMissingType = errors.New("value host type not set")
	// ErrUnsupportedType is returned when no registered generator accepts a
	// configuration.
	ErrUnsupportedType = errors.New("unsupported value host type")
	// ErrNilConfig is returned when a nil configuration is passed.
	ErrNilConfig = errors.New("value host configuration is nil")
	// ErrNilGenerator is returned when registering a nil generator.
	ErrNilGenerator = errors.New("generator is nil")
)
