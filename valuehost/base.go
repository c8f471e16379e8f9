package valuehost

import (
	"github.com/tailored-agentic-units/formstate/condition"
	"github.com/tailored-agentic-units/formstate/core/config"
	"github.com/tailored-agentic-units/formstate/core/state"
)

// base carries the fields every host kind shares. self is the outer host so
// notifications carry the concrete type.
type base struct {
	self     ValueHost
	manager  Manager
	config   config.ValueHostConfig
	state    state.ValueHostInstanceState
	disposed bool
}

func newBase(m Manager, cfg config.ValueHostConfig, st state.ValueHostInstanceState) base {
	st = st.Clone()
	st.Name = cfg.Name
	return base{
		manager: m,
		config:  cfg.Clone(),
		state:   st,
	}
}

func (b *base) Name() string {
	return b.config.Name
}

func (b *base) Type() config.ValueHostType {
	return b.config.Type
}

func (b *base) Label() string {
	return b.config.Label
}

func (b *base) DataType() string {
	return b.config.DataType
}

func (b *base) Config() config.ValueHostConfig {
	return b.config.Clone()
}

func (b *base) Value() any {
	return b.state.Value
}

func (b *base) IsChanged() bool {
	return b.state.Changed
}

func (b *base) IsEnabled() bool {
	return b.config.IsEnabled()
}

func (b *base) InstanceState() state.ValueHostInstanceState {
	return b.state.Clone()
}

func (b *base) GetItem(key string) (any, bool) {
	return b.state.Item(key)
}

func (b *base) SetItem(key string, value any) {
	next := b.state.Clone()
	if next.Items == nil {
		next.Items = make(map[string]any)
	}
	next.Items[key] = value
	b.updateState(next)
}

func (b *base) Dispose() {
	b.disposed = true
	b.manager = nil
}

func (b *base) IsDisposed() bool {
	return b.disposed
}

// updateState replaces the state and reports it to the manager when it
// differs by value. A disposed host only updates its own copy.
func (b *base) updateState(next state.ValueHostInstanceState) {
	if next.Equal(b.state) {
		return
	}
	b.state = next
	if b.manager != nil {
		b.manager.NotifyValueHostInstanceStateChanged(b.self, next.Clone())
	}
}

// setValue stores value and reports whether it differs from the old one.
func (b *base) setValue(value any, opts SetValueOptions, prepare func(next *state.ValueHostInstanceState, changed bool)) (old any, changed bool) {
	old = b.state.Value
	changed = !state.ValuesEqual(old, value)

	next := b.state.Clone()
	next.Value = value
	switch {
	case opts.Reset:
		next.Changed = false
	case changed:
		next.Changed = true
	}
	if prepare != nil {
		prepare(&next, changed)
	}

	b.updateState(next)
	return old, changed
}

// notifyValueChanged fires value-changed and peer notification.
func (b *base) notifyValueChanged(old any, opts SetValueOptions) {
	if b.manager == nil || opts.SkipNotify {
		return
	}
	b.manager.NotifyValueChanged(b.self, old)
	b.manager.NotifyOtherValueHostsOfValueChange(b.config.Name, opts.Validate)
}

// finder resolves peers through the manager for condition evaluation.
type finder struct {
	manager Manager
}

func (f finder) Find(name string) (condition.ValueSource, bool) {
	if f.manager == nil {
		return nil, false
	}
	vh := f.manager.GetValueHost(name)
	if vh == nil {
		return nil, false
	}
	return vh, true
}

// lookup adapts the manager to config.ValueLookup for calc functions.
func lookup(m Manager) config.ValueLookup {
	return func(name string) (any, bool) {
		if m == nil {
			return nil, false
		}
		vh := m.GetValueHost(name)
		if vh == nil {
			return nil, false
		}
		return vh.Value(), true
	}
}
