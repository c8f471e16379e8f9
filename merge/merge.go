// Package merge decides whether a replacement value host configuration is
// compatible with the one it replaces, and produces the configuration the
// manager stores when it is.
//
// The manager consults a Service during UpdateValueHost. A compatible merge
// lets the prior instance state (value, issues found) be carried forward after
// cleanup; ErrIncompatible makes the manager start from the generator's
// default state instead.
package merge

import "github.com/tailored-agentic-units/formstate/core/config"

// Service merges an existing configuration with its replacement.
type Service interface {
	// Merge returns the configuration to store for incoming, or an error
	// wrapping ErrIncompatible when prior state must not be carried forward.
	Merge(existing, incoming config.ValueHostConfig) (config.ValueHostConfig, error)
}

// DefaultService is the standard Service.
//
// Configurations are incompatible when their names or value host types
// differ, or when both declare a data type and those differ. Otherwise the
// incoming configuration wins, with empty label, label key and data type
// filled in from the existing one, and each incoming validator inheriting
// empty messages and severity from the existing validator with the same
// effective error code.
type DefaultService struct{}

// NewService returns the default merge service.
func NewService() *DefaultService {
	return &DefaultService{}
}

func (DefaultService) Merge(existing, incoming config.ValueHostConfig) (config.ValueHostConfig, error) {
	if err := checkCompatible(&existing, &incoming); err != nil {
		return config.ValueHostConfig{}, err
	}

	merged := incoming.Clone()

	if merged.Label == "" {
		merged.Label = existing.Label
	}
	if merged.LabelL10n == "" {
		merged.LabelL10n = existing.LabelL10n
	}
	if merged.DataType == "" {
		merged.DataType = existing.DataType
	}

	prior := make(map[string]config.ValidatorConfig, len(existing.Validators))
	for _, v := range existing.Validators {
		prior[v.EffectiveErrorCode()] = v
	}
	for i := range merged.Validators {
		old, ok := prior[merged.Validators[i].EffectiveErrorCode()]
		if !ok {
			continue
		}
		mergeValidator(&merged.Validators[i], &old)
	}

	return merged, nil
}

func mergeValidator(v *config.ValidatorConfig, source *config.ValidatorConfig) {
	if v.ErrorMessage == "" {
		v.ErrorMessage = source.ErrorMessage
	}
	if v.SummaryMessage == "" {
		v.SummaryMessage = source.SummaryMessage
	}
	if v.Severity == "" {
		v.Severity = source.Severity
	}
}
