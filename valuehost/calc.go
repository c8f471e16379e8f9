package valuehost

import (
	"github.com/tailored-agentic-units/formstate/core/config"
	"github.com/tailored-agentic-units/formstate/core/state"
)

// CalcValueHostImpl computes its value from other hosts on every read using
// the configuration's Calc function. Its value is never persisted.
type CalcValueHostImpl struct {
	base
	computing bool
}

// NewCalcValueHost binds a calc host to m, cfg and st.
func NewCalcValueHost(m Manager, cfg config.ValueHostConfig, st state.ValueHostInstanceState) *CalcValueHostImpl {
	vh := &CalcValueHostImpl{base: newBase(m, cfg, st)}
	vh.self = vh
	return vh
}

// Value runs the Calc function. It returns nil without a function, after
// disposal, or when a calculation cycle reaches this host again.
func (vh *CalcValueHostImpl) Value() any {
	if vh.config.Calc == nil || vh.manager == nil || vh.computing {
		return nil
	}
	vh.computing = true
	defer func() { vh.computing = false }()

	return vh.config.Calc(vh.config.DataType, lookup(vh.manager))
}

// SetValue is ignored; the value is always computed.
func (vh *CalcValueHostImpl) SetValue(any, SetValueOptions) {}

func (vh *CalcValueHostImpl) IsCalculated() bool {
	return true
}
