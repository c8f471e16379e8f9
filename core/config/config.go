// Package config defines the serializable configuration of value hosts.
//
// A ValueHostConfig declares one value host: its unique name, the Type tag
// that selects a generator, and kind-specific fields such as validators for
// input-capable hosts or a calculation function for computed hosts. Managers
// always store a private copy obtained through Clone; callers may keep
// mutating their own values without affecting the manager.
package config

import (
	"fmt"

	"github.com/tailored-agentic-units/formstate/core/clone"
	"github.com/tiendc/go-deepcopy"
)

// ValueHostType is the kind tag selecting a generator. The set is open:
// applications register generators for their own tags.
type ValueHostType string

// Standard value host types.
const (
	TypeStatic   ValueHostType = "Static"
	TypeInput    ValueHostType = "Input"
	TypeProperty ValueHostType = "Property"
	TypeCalc     ValueHostType = "Calc"
)

// ValueLookup returns the current value of a named value host.
type ValueLookup func(name string) (value any, ok bool)

// CalcFunc computes the value of a calc value host from its peers.
type CalcFunc func(dataType string, lookup ValueLookup) any

// ValueHostConfig declares a single value host.
type ValueHostConfig struct {
	Name         string            `json:"name" yaml:"name"`
	Type         ValueHostType     `json:"valueHostType" yaml:"valueHostType"`
	Label        string            `json:"label,omitempty" yaml:"label,omitempty"`
	LabelL10n    string            `json:"labell10n,omitempty" yaml:"labell10n,omitempty"`
	DataType     string            `json:"dataType,omitempty" yaml:"dataType,omitempty"`
	InitialValue any               `json:"initialValue,omitempty" yaml:"initialValue,omitempty"`
	Enabled      *bool             `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Validators   []ValidatorConfig `json:"validatorConfigs,omitempty" yaml:"validatorConfigs,omitempty"`

	// Calc is used by TypeCalc hosts. Functions cannot be serialized.
	Calc CalcFunc `json:"-" yaml:"-"`
}

// Clone returns a deep copy of c. Function fields are shared, and values
// other than maps and slices are copied by assignment.
func (c ValueHostConfig) Clone() ValueHostConfig {
	cp := c
	cp.InitialValue = clone.Value(c.InitialValue)
	if c.Enabled != nil {
		enabled := *c.Enabled
		cp.Enabled = &enabled
	}

	cp.Validators = nil
	if c.Validators != nil {
		if err := deepcopy.Copy(&cp.Validators, &c.Validators); err != nil {
			// ValidatorConfig holds only copyable fields; failure is a bug.
			panic(fmt.Sprintf("config: clone validators of %q: %v", c.Name, err))
		}
		// Params may carry opaque values the generic copy cannot preserve.
		for i := range cp.Validators {
			cp.Validators[i].Condition.Params = clone.Map(c.Validators[i].Condition.Params)
		}
	}
	return cp
}

// IsEnabled reports whether the value host is enabled. Nil means enabled.
func (c *ValueHostConfig) IsEnabled() bool {
	return c.Enabled == nil || *c.Enabled
}

// EnabledValidators returns the validators that are not explicitly disabled.
func (c *ValueHostConfig) EnabledValidators() []ValidatorConfig {
	enabled := make([]ValidatorConfig, 0, len(c.Validators))
	for _, v := range c.Validators {
		if v.IsEnabled() {
			enabled = append(enabled, v)
		}
	}
	return enabled
}

// ErrorCodes returns the set of effective error codes of enabled validators.
func (c *ValueHostConfig) ErrorCodes() map[string]bool {
	codes := make(map[string]bool, len(c.Validators))
	for _, v := range c.EnabledValidators() {
		codes[v.EffectiveErrorCode()] = true
	}
	return codes
}

// Severity ranks a validator's issue.
type Severity string

const (
	SeverityError   Severity = "Error"
	SeveritySevere  Severity = "Severe"
	SeverityWarning Severity = "Warning"
)

// ValidatorConfig attaches one condition to an input-capable value host.
type ValidatorConfig struct {
	ErrorCode      string          `json:"errorCode,omitempty" yaml:"errorCode,omitempty"`
	Condition      ConditionConfig `json:"conditionConfig" yaml:"conditionConfig"`
	ErrorMessage   string          `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
	SummaryMessage string          `json:"summaryMessage,omitempty" yaml:"summaryMessage,omitempty"`
	Severity       Severity        `json:"severity,omitempty" yaml:"severity,omitempty"`
	Enabled        *bool           `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// EffectiveErrorCode is ErrorCode, or the condition type when ErrorCode is empty.
func (v *ValidatorConfig) EffectiveErrorCode() string {
	if v.ErrorCode != "" {
		return v.ErrorCode
	}
	return v.Condition.ConditionType
}

// EffectiveSeverity is Severity, defaulting to SeverityError.
func (v *ValidatorConfig) EffectiveSeverity() Severity {
	if v.Severity == "" {
		return SeverityError
	}
	return v.Severity
}

// IsEnabled reports whether the validator is enabled. Nil means enabled.
func (v *ValidatorConfig) IsEnabled() bool {
	return v.Enabled == nil || *v.Enabled
}

// ConditionConfig describes a condition for the external condition factory.
type ConditionConfig struct {
	ConditionType       string         `json:"conditionType" yaml:"conditionType"`
	ValueHostName       string         `json:"valueHostName,omitempty" yaml:"valueHostName,omitempty"`
	SecondValueHostName string         `json:"secondValueHostName,omitempty" yaml:"secondValueHostName,omitempty"`
	Params              map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// References reports whether the condition reads the named value host.
func (c *ConditionConfig) References(name string) bool {
	return name != "" && (c.ValueHostName == name || c.SecondValueHostName == name)
}
