// Package state defines the persisted, serializable runtime state of value
// hosts and of the manager that owns them.
//
// States are plain values. Clone produces an independent deep copy, Equal
// compares by value, and Merge layers a persisted snapshot over a default.
// Nothing in this package aliases a caller's maps or slices after Clone.
package state

import (
	"fmt"
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/tailored-agentic-units/formstate/core/clone"
	"github.com/tiendc/go-deepcopy"
)

// ValidationStatus summarizes the last validation of a value host.
type ValidationStatus string

const (
	StatusNotAttempted ValidationStatus = "NotAttempted"
	StatusUndetermined ValidationStatus = "Undetermined"
	StatusValid        ValidationStatus = "Valid"
	StatusInvalid      ValidationStatus = "Invalid"
	StatusDisabled     ValidationStatus = "Disabled"
)

// IssueFound is a single validation failure retained in instance state.
type IssueFound struct {
	ErrorCode      string `json:"errorCode" yaml:"errorCode"`
	ValueHostName  string `json:"valueHostName" yaml:"valueHostName"`
	Severity       string `json:"severity,omitempty" yaml:"severity,omitempty"`
	ErrorMessage   string `json:"errorMessage,omitempty" yaml:"errorMessage,omitempty"`
	SummaryMessage string `json:"summaryMessage,omitempty" yaml:"summaryMessage,omitempty"`
}

// ValueHostInstanceState is the persisted snapshot of one value host.
type ValueHostInstanceState struct {
	Name                string           `json:"name" yaml:"name"`
	Value               any              `json:"value,omitempty" yaml:"value,omitempty"`
	InputValue          any              `json:"inputValue,omitempty" yaml:"inputValue,omitempty"`
	Status              ValidationStatus `json:"status,omitempty" yaml:"status,omitempty"`
	IssuesFound         []IssueFound     `json:"issuesFound,omitempty" yaml:"issuesFound,omitempty"`
	BusinessLogicErrors []IssueFound     `json:"businessLogicErrors,omitempty" yaml:"businessLogicErrors,omitempty"`
	Changed             bool             `json:"changed,omitempty" yaml:"changed,omitempty"`
	Items               map[string]any   `json:"items,omitempty" yaml:"items,omitempty"`
}

// Clone returns an independent deep copy of s. Values other than maps and
// slices are copied by assignment.
func (s ValueHostInstanceState) Clone() ValueHostInstanceState {
	cp := s
	cp.Value = clone.Value(s.Value)
	cp.InputValue = clone.Value(s.InputValue)
	cp.IssuesFound = copyIssues(s.IssuesFound, s.Name)
	cp.BusinessLogicErrors = copyIssues(s.BusinessLogicErrors, s.Name)
	cp.Items = clone.Map(s.Items)
	return cp
}

// plainValueHostState has no Equal method, so cmp compares it field by field.
type plainValueHostState ValueHostInstanceState

// Equal reports whether s and other hold the same values. Nil and empty
// collections are treated as equal.
func (s ValueHostInstanceState) Equal(other ValueHostInstanceState) bool {
	return cmp.Equal(plainValueHostState(s), plainValueHostState(other), equalOpts...)
}

// Merge applies non-zero values from source over a copy of s and returns it.
// It is used to layer a persisted snapshot over a generator's default state.
func (s ValueHostInstanceState) Merge(source ValueHostInstanceState) ValueHostInstanceState {
	merged := s.Clone()
	src := source.Clone()

	if src.Name != "" {
		merged.Name = src.Name
	}
	if src.Value != nil {
		merged.Value = src.Value
	}
	if src.InputValue != nil {
		merged.InputValue = src.InputValue
	}
	if src.Status != "" {
		merged.Status = src.Status
	}
	if src.IssuesFound != nil {
		merged.IssuesFound = src.IssuesFound
	}
	if src.BusinessLogicErrors != nil {
		merged.BusinessLogicErrors = src.BusinessLogicErrors
	}
	if src.Changed {
		merged.Changed = true
	}
	if len(src.Items) > 0 {
		if merged.Items == nil {
			merged.Items = make(map[string]any, len(src.Items))
		}
		for k, v := range src.Items {
			merged.Items[k] = v
		}
	}

	return merged
}

// Item returns an entry from the auxiliary bag.
func (s ValueHostInstanceState) Item(key string) (any, bool) {
	v, ok := s.Items[key]
	return v, ok
}

// ManagerInstanceState is the persisted, manager-wide state.
type ManagerInstanceState struct {
	// StateChangeCounter increases by one for every applied state change.
	StateChangeCounter int            `json:"stateChangeCounter" yaml:"stateChangeCounter"`
	Items              map[string]any `json:"items,omitempty" yaml:"items,omitempty"`
}

// Clone returns an independent deep copy of s.
func (s ManagerInstanceState) Clone() ManagerInstanceState {
	cp := s
	cp.Items = clone.Map(s.Items)
	return cp
}

type plainManagerState ManagerInstanceState

// Equal reports whether s and other hold the same values.
func (s ManagerInstanceState) Equal(other ManagerInstanceState) bool {
	return cmp.Equal(plainManagerState(s), plainManagerState(other), equalOpts...)
}

// equalOpts treat nil and empty collections alike and compare unexported
// fields of application value types instead of panicking on them.
var equalOpts = []cmp.Option{
	cmpopts.EquateEmpty(),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

// ValuesEqual compares two value host values the same way Equal does.
func ValuesEqual(a, b any) bool {
	return cmp.Equal(a, b, equalOpts...)
}

func copyIssues(issues []IssueFound, name string) []IssueFound {
	if issues == nil {
		return nil
	}
	var cp []IssueFound
	if err := deepcopy.Copy(&cp, &issues); err != nil {
		panic(fmt.Sprintf("state: clone issues of %q: %v", name, err))
	}
	return cp
}
