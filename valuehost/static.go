package valuehost

import (
	"github.com/tailored-agentic-units/formstate/core/config"
	"github.com/tailored-agentic-units/formstate/core/state"
)

// StaticValueHost holds a value supplied by the application, with no
// validation.
type StaticValueHost struct {
	base
}

// NewStaticValueHost binds a static host to m, cfg and st.
func NewStaticValueHost(m Manager, cfg config.ValueHostConfig, st state.ValueHostInstanceState) *StaticValueHost {
	vh := &StaticValueHost{base: newBase(m, cfg, st)}
	vh.self = vh
	return vh
}

func (vh *StaticValueHost) SetValue(value any, opts SetValueOptions) {
	old, changed := vh.setValue(value, opts, nil)
	if changed {
		vh.notifyValueChanged(old, opts)
	}
}
