package valuehost

import (
	"slices"

	"github.com/tailored-agentic-units/formstate/condition"
	"github.com/tailored-agentic-units/formstate/core/config"
	"github.com/tailored-agentic-units/formstate/core/state"
)

// validatable adds validators, issues found and business logic errors to
// base. Input and Property hosts embed it.
type validatable struct {
	base
}

func (v *validatable) ValidationStatus() state.ValidationStatus {
	return v.state.Status
}

func (v *validatable) IssuesFound() []state.IssueFound {
	return slices.Clone(v.state.IssuesFound)
}

func (v *validatable) BusinessLogicErrors() []state.IssueFound {
	return slices.Clone(v.state.BusinessLogicErrors)
}

// IsValid reports false when the last validation failed or a business logic
// error of error severity is present.
func (v *validatable) IsValid() bool {
	if v.state.Status == state.StatusInvalid {
		return false
	}
	return !hasBlockingIssue(v.state.BusinessLogicErrors)
}

func (v *validatable) SetValue(value any, opts SetValueOptions) {
	old, changed := v.setValue(value, opts, v.resetValidation(opts))
	if opts.Validate {
		v.Validate(ValidateOptions{SkipPeerNotify: true})
	}
	if changed {
		v.notifyValueChanged(old, opts)
	}
}

// resetValidation clears results made stale by a new value.
func (v *validatable) resetValidation(opts SetValueOptions) func(*state.ValueHostInstanceState, bool) {
	return func(next *state.ValueHostInstanceState, changed bool) {
		if opts.Reset || changed {
			clearValidation(next)
		}
	}
}

// Validate evaluates every enabled validator through the condition factory
// and stores the outcome. Without a factory the status is Undetermined.
func (v *validatable) Validate(opts ValidateOptions) ValidateResult {
	next := v.state.Clone()
	next.Status, next.IssuesFound = v.evaluate()
	v.updateState(next)

	if !opts.SkipPeerNotify && v.manager != nil {
		v.manager.NotifyOtherValueHostsOfValueChange(v.config.Name, true)
	}

	return ValidateResult{
		Status:      v.state.Status,
		IssuesFound: slices.Clone(v.state.IssuesFound),
	}
}

func (v *validatable) evaluate() (state.ValidationStatus, []state.IssueFound) {
	if !v.config.IsEnabled() {
		return state.StatusDisabled, nil
	}

	validators := v.config.EnabledValidators()
	if len(validators) == 0 {
		return state.StatusValid, nil
	}
	if v.manager == nil {
		return state.StatusUndetermined, nil
	}

	factory, err := v.manager.Services().ConditionFactory()
	if err != nil || factory == nil {
		return state.StatusUndetermined, nil
	}

	var (
		issues       []state.IssueFound
		undetermined int
		find         = finder{manager: v.manager}
	)
	for _, cfg := range validators {
		cond, err := factory.Create(cfg.Condition)
		if err != nil {
			undetermined++
			continue
		}

		result := cond.Evaluate(v.self, find)
		if result == condition.Undetermined {
			undetermined++
			continue
		}
		if result == condition.NoMatch {
			issues = append(issues, issueFor(v.config.Name, &cfg))
			if cfg.EffectiveSeverity() == config.SeveritySevere {
				break
			}
		}
	}

	switch {
	case hasBlockingIssue(issues):
		return state.StatusInvalid, issues
	case undetermined == len(validators):
		return state.StatusUndetermined, issues
	default:
		return state.StatusValid, issues
	}
}

func (v *validatable) ClearValidation() {
	next := v.state.Clone()
	clearValidation(&next)
	v.updateState(next)
}

// SetBusinessLogicError records an error produced by the application's
// business logic rather than by a validator. An issue with the same error
// code replaces the previous one; an error-level issue marks the host
// Invalid.
func (v *validatable) SetBusinessLogicError(issue state.IssueFound) {
	if issue.ValueHostName == "" {
		issue.ValueHostName = v.config.Name
	}
	if issue.Severity == "" {
		issue.Severity = string(config.SeverityError)
	}

	next := v.state.Clone()
	next.BusinessLogicErrors = slices.DeleteFunc(next.BusinessLogicErrors, func(e state.IssueFound) bool {
		return e.ErrorCode == issue.ErrorCode
	})
	next.BusinessLogicErrors = append(next.BusinessLogicErrors, issue)
	if hasBlockingIssue(next.BusinessLogicErrors) {
		next.Status = state.StatusInvalid
	}
	v.updateState(next)
}

func (v *validatable) ClearBusinessLogicErrors() {
	next := v.state.Clone()
	next.BusinessLogicErrors = nil
	if next.Status == state.StatusInvalid && !hasBlockingIssue(next.IssuesFound) {
		next.Status = state.StatusNotAttempted
	}
	v.updateState(next)
}

// OtherValueHostChanged revalidates when a validator reads the changed host.
func (v *validatable) OtherValueHostChanged(name string, revalidate bool) {
	if !revalidate || name == v.config.Name {
		return
	}
	for _, cfg := range v.config.EnabledValidators() {
		if cfg.Condition.References(name) {
			v.Validate(ValidateOptions{SkipPeerNotify: true})
			return
		}
	}
}

func clearValidation(st *state.ValueHostInstanceState) {
	st.Status = state.StatusNotAttempted
	st.IssuesFound = nil
}

func issueFor(name string, cfg *config.ValidatorConfig) state.IssueFound {
	return state.IssueFound{
		ErrorCode:      cfg.EffectiveErrorCode(),
		ValueHostName:  name,
		Severity:       string(cfg.EffectiveSeverity()),
		ErrorMessage:   cfg.ErrorMessage,
		SummaryMessage: cfg.SummaryMessage,
	}
}

func hasBlockingIssue(issues []state.IssueFound) bool {
	for _, issue := range issues {
		if config.Severity(issue.Severity) != config.SeverityWarning {
			return true
		}
	}
	return false
}
