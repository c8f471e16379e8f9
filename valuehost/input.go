package valuehost

import (
	"github.com/tailored-agentic-units/formstate/core/config"
	"github.com/tailored-agentic-units/formstate/core/state"
)

// InputValueHostImpl backs an editable input. It tracks the raw input value
// next to the native value parsed from it.
type InputValueHostImpl struct {
	validatable
}

// NewInputValueHost binds an input host to m, cfg and st.
func NewInputValueHost(m Manager, cfg config.ValueHostConfig, st state.ValueHostInstanceState) *InputValueHostImpl {
	vh := &InputValueHostImpl{validatable: validatable{base: newBase(m, cfg, st)}}
	vh.self = vh
	return vh
}

func (vh *InputValueHostImpl) InputValue() any {
	return vh.state.InputValue
}

// SetInputValue stores the raw input. Validation results are cleared when the
// input changes unless opts.Validate reruns them.
func (vh *InputValueHostImpl) SetInputValue(value any, opts SetValueOptions) {
	old := vh.state.InputValue
	changed := !state.ValuesEqual(old, value)

	next := vh.state.Clone()
	next.InputValue = value
	switch {
	case opts.Reset:
		next.Changed = false
		clearValidation(&next)
	case changed:
		next.Changed = true
		clearValidation(&next)
	}
	vh.updateState(next)

	if opts.Validate {
		vh.Validate(ValidateOptions{SkipPeerNotify: true})
	}
	if changed && !opts.SkipNotify && vh.manager != nil {
		vh.manager.NotifyInputValueChanged(vh, old)
	}
}

// SetValues sets the native and input values together, as after parsing
// user input.
func (vh *InputValueHostImpl) SetValues(value, inputValue any, opts SetValueOptions) {
	oldInput := vh.state.InputValue
	inputChanged := !state.ValuesEqual(oldInput, inputValue)

	old, changed := vh.setValue(value, opts, func(next *state.ValueHostInstanceState, valueChanged bool) {
		next.InputValue = inputValue
		if inputChanged && !opts.Reset {
			next.Changed = true
		}
		if opts.Reset || valueChanged || inputChanged {
			clearValidation(next)
		}
	})

	if opts.Validate {
		vh.Validate(ValidateOptions{SkipPeerNotify: true})
	}
	if inputChanged && !opts.SkipNotify && vh.manager != nil {
		vh.manager.NotifyInputValueChanged(vh, oldInput)
	}
	if changed {
		vh.notifyValueChanged(old, opts)
	}
}
