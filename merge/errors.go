package merge

import (
	"errors"
	"fmt"

	"github.com/tailored-agentic-units/formstate/core/config"
)

// ErrIncompatible signals that prior instance state must not survive the
// configuration replacement.
var ErrIncompatible = errors.New("incompatible value host configuration")

func checkCompatible(existing, incoming *config.ValueHostConfig) error {
	switch {
	case existing.Name != incoming.Name:
		return fmt.Errorf("%w: name %q replaced by %q", ErrIncompatible, existing.Name, incoming.Name)
	case existing.Type != incoming.Type:
		return fmt.Errorf("%w: %q changed type %s -> %s", ErrIncompatible, incoming.Name, existing.Type, incoming.Type)
	case existing.DataType != "" && incoming.DataType != "" && existing.DataType != incoming.DataType:
		return fmt.Errorf("%w: %q changed data type %s -> %s", ErrIncompatible, incoming.Name, existing.DataType, incoming.DataType)
	}
	return nil
}
