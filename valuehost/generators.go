package valuehost

import (
	"slices"

	"github.com/tailored-agentic-units/formstate/core/config"
	"github.com/tailored-agentic-units/formstate/core/state"
)

// StaticGenerator builds StaticValueHost for TypeStatic.
type StaticGenerator struct{}

func (StaticGenerator) CanCreate(cfg config.ValueHostConfig) bool {
	return cfg.Type == config.TypeStatic
}

func (StaticGenerator) Create(m Manager, cfg config.ValueHostConfig, st state.ValueHostInstanceState) ValueHost {
	return NewStaticValueHost(m, cfg, st)
}

func (StaticGenerator) CreateDefaultState(cfg config.ValueHostConfig) state.ValueHostInstanceState {
	return state.ValueHostInstanceState{Name: cfg.Name, Value: cfg.InitialValue}
}

// CleanupState drops validation results, which static hosts never produce.
func (StaticGenerator) CleanupState(st state.ValueHostInstanceState, cfg config.ValueHostConfig) state.ValueHostInstanceState {
	cleaned := st.Clone()
	cleaned.Name = cfg.Name
	cleaned.InputValue = nil
	cleaned.Status = ""
	cleaned.IssuesFound = nil
	cleaned.BusinessLogicErrors = nil
	return cleaned
}

// InputGenerator builds InputValueHostImpl for TypeInput.
type InputGenerator struct{}

func (InputGenerator) CanCreate(cfg config.ValueHostConfig) bool {
	return cfg.Type == config.TypeInput
}

func (InputGenerator) Create(m Manager, cfg config.ValueHostConfig, st state.ValueHostInstanceState) ValueHost {
	return NewInputValueHost(m, cfg, st)
}

func (InputGenerator) CreateDefaultState(cfg config.ValueHostConfig) state.ValueHostInstanceState {
	return validatableDefault(cfg)
}

func (InputGenerator) CleanupState(st state.ValueHostInstanceState, cfg config.ValueHostConfig) state.ValueHostInstanceState {
	return cleanupValidation(st, cfg)
}

// PropertyGenerator builds PropertyValueHost for TypeProperty.
type PropertyGenerator struct{}

func (PropertyGenerator) CanCreate(cfg config.ValueHostConfig) bool {
	return cfg.Type == config.TypeProperty
}

func (PropertyGenerator) Create(m Manager, cfg config.ValueHostConfig, st state.ValueHostInstanceState) ValueHost {
	return NewPropertyValueHost(m, cfg, st)
}

func (PropertyGenerator) CreateDefaultState(cfg config.ValueHostConfig) state.ValueHostInstanceState {
	return validatableDefault(cfg)
}

// CleanupState behaves like the input generator's but never keeps an input
// value, which property hosts do not have.
func (PropertyGenerator) CleanupState(st state.ValueHostInstanceState, cfg config.ValueHostConfig) state.ValueHostInstanceState {
	cleaned := cleanupValidation(st, cfg)
	cleaned.InputValue = nil
	return cleaned
}

// CalcGenerator builds CalcValueHostImpl for TypeCalc.
type CalcGenerator struct{}

func (CalcGenerator) CanCreate(cfg config.ValueHostConfig) bool {
	return cfg.Type == config.TypeCalc
}

func (CalcGenerator) Create(m Manager, cfg config.ValueHostConfig, st state.ValueHostInstanceState) ValueHost {
	return NewCalcValueHost(m, cfg, st)
}

func (CalcGenerator) CreateDefaultState(cfg config.ValueHostConfig) state.ValueHostInstanceState {
	return state.ValueHostInstanceState{Name: cfg.Name}
}

// CleanupState keeps only the auxiliary items; the value is always computed.
func (CalcGenerator) CleanupState(st state.ValueHostInstanceState, cfg config.ValueHostConfig) state.ValueHostInstanceState {
	return state.ValueHostInstanceState{
		Name:  cfg.Name,
		Items: st.Clone().Items,
	}
}

func validatableDefault(cfg config.ValueHostConfig) state.ValueHostInstanceState {
	status := state.StatusNotAttempted
	if !cfg.IsEnabled() {
		status = state.StatusDisabled
	}
	return state.ValueHostInstanceState{
		Name:   cfg.Name,
		Value:  cfg.InitialValue,
		Status: status,
	}
}

// cleanupValidation drops issues whose error code no longer belongs to an
// enabled validator and resets a status the remaining issues cannot support.
func cleanupValidation(st state.ValueHostInstanceState, cfg config.ValueHostConfig) state.ValueHostInstanceState {
	cleaned := st.Clone()
	cleaned.Name = cfg.Name

	codes := cfg.ErrorCodes()
	cleaned.IssuesFound = slices.DeleteFunc(cleaned.IssuesFound, func(issue state.IssueFound) bool {
		return !codes[issue.ErrorCode]
	})
	if len(cleaned.IssuesFound) == 0 {
		cleaned.IssuesFound = nil
	}

	switch {
	case !cfg.IsEnabled():
		cleaned.Status = state.StatusDisabled
		cleaned.IssuesFound = nil
	case cleaned.Status == "":
		cleaned.Status = state.StatusNotAttempted
	case cleaned.Status == state.StatusDisabled:
		cleaned.Status = state.StatusNotAttempted
	case len(codes) == 0:
		cleaned.Status = state.StatusNotAttempted
	case cleaned.Status == state.StatusInvalid && !hasBlockingIssue(cleaned.IssuesFound):
		cleaned.Status = state.StatusNotAttempted
	}

	return cleaned
}
