package manager

import "errors"

var (
	// ErrNilConfig is returned when a nil manager or value host
	// configuration is passed.
	ErrNilConfig = errors.New("configuration is nil")
	// ErrNilConfigs is returned by New when ValueHostConfigs is nil. An empty
	// list is valid.
	ErrNilConfigs = errors.New("value host configurations are nil")
	// ErrDuplicateName is returned by AddValueHost for a name already in use.
	ErrDuplicateName = errors.New("value host name already in use")
	// ErrNilUpdater is returned by UpdateInstanceState for a nil updater.
	ErrNilUpdater = errors.New("instance state updater is nil")
)
