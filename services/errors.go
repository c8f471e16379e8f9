package services

import "errors"

// Sentinel errors for the service locator.
var (
	ErrEmptyName       = errors.New("service name is empty")
	ErrServiceNotFound = errors.New("service not registered")
	ErrServiceType     = errors.New("service has the wrong type for its name")
)
