package valuehost

import (
	"github.com/tailored-agentic-units/formstate/core/config"
	"github.com/tailored-agentic-units/formstate/core/state"
)

// PropertyValueHost is a validatable host whose value comes from the
// application's business logic (a model property) rather than from a user
// input control, so it has no separate input value.
type PropertyValueHost struct {
	validatable
}

// NewPropertyValueHost binds a property host to m, cfg and st.
func NewPropertyValueHost(m Manager, cfg config.ValueHostConfig, st state.ValueHostInstanceState) *PropertyValueHost {
	vh := &PropertyValueHost{validatable: validatable{base: newBase(m, cfg, st)}}
	vh.self = vh
	return vh
}
