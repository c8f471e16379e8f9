// Package valuehost implements the live value hosts tracked by a manager and
// the generators that construct them.
//
// A value host is bound once, at construction, to its owning Manager, a
// private copy of its configuration and its instance state. Configuration
// changes never mutate a live host; the manager discards it and asks the
// generator for a new one.
//
// Capabilities are expressed as interfaces and checked with type assertions:
//
//	ValueHost                 every host
//	ValidatableValueHost      hosts with validators (Input, Property)
//	InputValueHost            hosts that also track the raw input value (Input)
//	CalcValueHost             hosts whose value is computed from peers (Calc)
//	PeerValueChangeListener   hosts that react to changes of other hosts
package valuehost

import (
	"github.com/tailored-agentic-units/formstate/core/config"
	"github.com/tailored-agentic-units/formstate/core/state"
	"github.com/tailored-agentic-units/formstate/services"
)

// Manager is the owning manager as seen from a value host. Hosts use it for
// lookups and to report their state changes; they never control its
// lifecycle.
type Manager interface {
	// GetValueHost returns the named host, or nil.
	GetValueHost(name string) ValueHost
	// Services returns the manager's service locator.
	Services() *services.Services
	// NotifyValueHostInstanceStateChanged records a host's new state.
	NotifyValueHostInstanceStateChanged(host ValueHost, st state.ValueHostInstanceState)
	// NotifyValueChanged reports a change of a host's native value.
	NotifyValueChanged(host ValueHost, oldValue any)
	// NotifyInputValueChanged reports a change of an input host's raw input.
	NotifyInputValueChanged(host InputValueHost, oldValue any)
	// NotifyOtherValueHostsOfValueChange tells every other listener that
	// name changed.
	NotifyOtherValueHostsOfValueChange(name string, revalidate bool)
}

// SetValueOptions controls SetValue and SetInputValue.
type SetValueOptions struct {
	// Validate runs validation after the value is stored and asks peers to
	// revalidate.
	Validate bool
	// Reset clears change tracking and validation results.
	Reset bool
	// SkipNotify suppresses value-changed callbacks and peer notification.
	SkipNotify bool
}

// ValueHost is implemented by every live value host.
type ValueHost interface {
	Name() string
	Type() config.ValueHostType
	Label() string
	DataType() string
	// Config returns a copy of the bound configuration.
	Config() config.ValueHostConfig
	// Value returns the native value; nil means undefined.
	Value() any
	SetValue(value any, opts SetValueOptions)
	// IsChanged reports whether the value was edited since the last reset.
	IsChanged() bool
	IsEnabled() bool
	// InstanceState returns a copy of the current instance state.
	InstanceState() state.ValueHostInstanceState
	GetItem(key string) (any, bool)
	SetItem(key string, value any)
	// Dispose severs the host from its manager. Called when the manager
	// discards or replaces it.
	Dispose()
	IsDisposed() bool
}

// ValidateOptions controls Validate.
type ValidateOptions struct {
	// SkipPeerNotify keeps validation from triggering peer revalidation.
	SkipPeerNotify bool
}

// ValidateResult is the outcome of Validate.
type ValidateResult struct {
	Status      state.ValidationStatus
	IssuesFound []state.IssueFound
}

// ValidatableValueHost is a host with validators.
type ValidatableValueHost interface {
	ValueHost
	ValidationStatus() state.ValidationStatus
	IssuesFound() []state.IssueFound
	IsValid() bool
	Validate(opts ValidateOptions) ValidateResult
	ClearValidation()
	SetBusinessLogicError(issue state.IssueFound)
	ClearBusinessLogicErrors()
	BusinessLogicErrors() []state.IssueFound
}

// InputValueHost is a validatable host that also tracks the raw input value
// as typed by the user, separate from its parsed native value.
type InputValueHost interface {
	ValidatableValueHost
	InputValue() any
	SetInputValue(value any, opts SetValueOptions)
	SetValues(value, inputValue any, opts SetValueOptions)
}

// CalcValueHost computes its value from peers on every read.
type CalcValueHost interface {
	ValueHost
	IsCalculated() bool
}

// PeerValueChangeListener reacts to value changes of other hosts.
type PeerValueChangeListener interface {
	OtherValueHostChanged(name string, revalidate bool)
}
