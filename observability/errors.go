package observability

import "errors"

// ErrUnknownObserver is returned by GetObserver for an unregistered name.
var ErrUnknownObserver = errors.New("unknown observer")
