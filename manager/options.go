package manager

import (
	"github.com/tailored-agentic-units/formstate/core/state"
	"github.com/tailored-agentic-units/formstate/factory"
	"github.com/tailored-agentic-units/formstate/observability"
	"github.com/tailored-agentic-units/formstate/services"
	"github.com/tailored-agentic-units/formstate/valuehost"
)

// InstanceStateChangedFunc receives the manager state after every applied
// change.
type InstanceStateChangedFunc func(m *Manager, st state.ManagerInstanceState)

// ValueHostInstanceStateChangedFunc receives a value host's state after every
// applied change.
type ValueHostInstanceStateChangedFunc func(m *Manager, st state.ValueHostInstanceState)

// ValueChangedFunc receives a value host whose native value changed.
type ValueChangedFunc func(vh valuehost.ValueHost, oldValue any)

// InputValueChangedFunc receives an input host whose raw input changed.
type InputValueChangedFunc func(vh valuehost.InputValueHost, oldValue any)

// Option configures a Manager. Options are applied by New before any value
// host is created; unset collaborators then receive their defaults.
type Option func(*Manager)

// WithServices replaces the default services.NewDefault locator.
func WithServices(s *services.Services) Option {
	return func(m *Manager) { m.services = s }
}

// WithFactory replaces the standard generator registry.
func WithFactory(f *factory.Factory) Option {
	return func(m *Manager) { m.factory = f }
}

// WithObserver overrides both Config.Observer and the locator's observer.
func WithObserver(o observability.Observer) Option {
	return func(m *Manager) { m.observer = o }
}

func WithOnInstanceStateChanged(fn InstanceStateChangedFunc) Option {
	return func(m *Manager) { m.onInstanceStateChanged = fn }
}

func WithOnValueHostInstanceStateChanged(fn ValueHostInstanceStateChangedFunc) Option {
	return func(m *Manager) { m.onValueHostInstanceStateChanged = fn }
}

func WithOnValueChanged(fn ValueChangedFunc) Option {
	return func(m *Manager) { m.onValueChanged = fn }
}

func WithOnInputValueChanged(fn InputValueChangedFunc) Option {
	return func(m *Manager) { m.onInputValueChanged = fn }
}
