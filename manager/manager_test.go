package manager_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/tailored-agentic-units/formstate/condition"
	"github.com/tailored-agentic-units/formstate/core/config"
	"github.com/tailored-agentic-units/formstate/core/fault"
	"github.com/tailored-agentic-units/formstate/core/state"
	"github.com/tailored-agentic-units/formstate/manager"
	"github.com/tailored-agentic-units/formstate/observability"
	"github.com/tailored-agentic-units/formstate/services"
	"github.com/tailored-agentic-units/formstate/valuehost"
)

func newManager(t *testing.T, cfg *manager.Config, opts ...manager.Option) *manager.Manager {
	t.Helper()

	if cfg == nil {
		c := manager.DefaultConfig()
		cfg = &c
	}
	m, err := manager.New(cfg, opts...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return m
}

func inputConfig(name string) *config.ValueHostConfig {
	return &config.ValueHostConfig{Name: name, Type: config.TypeInput, DataType: "Integer"}
}

func requiredValidator() config.ValidatorConfig {
	return config.ValidatorConfig{Condition: config.ConditionConfig{ConditionType: "Required"}}
}

func withRequiredCondition(t *testing.T) *services.Services {
	t.Helper()

	reg := condition.NewRegistry()
	err := reg.Register("Required", func(cfg config.ConditionConfig) (condition.Condition, error) {
		return condition.Func{
			ConditionType: cfg.ConditionType,
			Fn: func(source condition.ValueSource, _ condition.Finder) condition.Result {
				if source.Value() == nil {
					return condition.NoMatch
				}
				return condition.Match
			},
		}, nil
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	svc := services.NewDefault()
	if err := svc.SetConditionFactory(reg); err != nil {
		t.Fatalf("SetConditionFactory failed: %v", err)
	}
	return svc
}

func checkIdentityMap(t *testing.T, m *manager.Manager) {
	t.Helper()

	names := m.ValueHostNames()
	var configNames []string
	for _, cfg := range m.ValueHostConfigs() {
		configNames = append(configNames, cfg.Name)
	}
	if diff := cmp.Diff(names, configNames); diff != "" {
		t.Errorf("config names differ from host names (-hosts +configs):\n%s", diff)
	}
	for _, name := range names {
		if m.GetValueHost(name) == nil {
			t.Errorf("config %q has no live host", name)
		}
	}
}

func TestNew_Preconditions(t *testing.T) {
	if _, err := manager.New(nil); !errors.Is(err, manager.ErrNilConfig) || !errors.Is(err, fault.ErrPrecondition) {
		t.Errorf("New(nil) error = %v", err)
	}
	if _, err := manager.New(&manager.Config{}); !errors.Is(err, manager.ErrNilConfigs) {
		t.Errorf("New(nil configs) error = %v", err)
	}

	m := newManager(t, nil)
	if len(m.ValueHostNames()) != 0 {
		t.Errorf("empty config produced hosts: %v", m.ValueHostNames())
	}

	cfg := manager.Config{
		ValueHostConfigs: []config.ValueHostConfig{*inputConfig("A"), *inputConfig("A")},
	}
	if _, err := manager.New(&cfg); !errors.Is(err, manager.ErrDuplicateName) {
		t.Errorf("New(duplicate) error = %v, want ErrDuplicateName", err)
	}

	cfg = manager.Config{ValueHostConfigs: []config.ValueHostConfig{}, Observer: "missing"}
	if _, err := manager.New(&cfg); !errors.Is(err, fault.ErrConfiguration) {
		t.Errorf("New(unknown observer) error = %v, want ErrConfiguration", err)
	}
}

func TestAddValueHost_Uniqueness(t *testing.T) {
	m := newManager(t, nil)

	first, err := m.AddValueHost(inputConfig("Field1"), nil)
	if err != nil {
		t.Fatalf("AddValueHost failed: %v", err)
	}

	_, err = m.AddValueHost(&config.ValueHostConfig{Name: "Field1", Type: config.TypeStatic}, nil)
	if !errors.Is(err, manager.ErrDuplicateName) || !errors.Is(err, fault.ErrConfiguration) {
		t.Fatalf("second AddValueHost error = %v, want ErrDuplicateName", err)
	}

	if m.GetValueHost("Field1") != first {
		t.Error("failed add replaced the live host")
	}
	if cfgs := m.ValueHostConfigs(); len(cfgs) != 1 || cfgs[0].Type != config.TypeInput {
		t.Errorf("failed add changed the configurations: %+v", cfgs)
	}
	checkIdentityMap(t, m)
}

func TestAddValueHost_Failures(t *testing.T) {
	m := newManager(t, nil)

	tests := []struct {
		name    string
		cfg     *config.ValueHostConfig
		wantErr error
	}{
		{name: "nil config", cfg: nil, wantErr: fault.ErrPrecondition},
		{name: "missing type", cfg: &config.ValueHostConfig{Name: "A"}, wantErr: fault.ErrConfiguration},
		{name: "unsupported type", cfg: &config.ValueHostConfig{Name: "A", Type: "Slider"}, wantErr: fault.ErrConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.AddValueHost(tt.cfg, nil); !errors.Is(err, tt.wantErr) {
				t.Errorf("AddValueHost() error = %v, want %v", err, tt.wantErr)
			}
			if len(m.ValueHostNames()) != 0 {
				t.Errorf("failed add left hosts behind: %v", m.ValueHostNames())
			}
		})
	}
}

func TestIdentityMap_AcrossOperations(t *testing.T) {
	m := newManager(t, nil)

	steps := []struct {
		name string
		run  func() error
	}{
		{name: "add A", run: func() error { _, err := m.AddValueHost(inputConfig("A"), nil); return err }},
		{name: "add B", run: func() error {
			_, err := m.AddValueHost(&config.ValueHostConfig{Name: "B", Type: config.TypeStatic}, nil)
			return err
		}},
		{name: "update A", run: func() error { _, err := m.UpdateValueHost(inputConfig("A"), nil); return err }},
		{name: "update unknown C", run: func() error { _, err := m.UpdateValueHost(inputConfig("C"), nil); return err }},
		{name: "discard B", run: func() error { return m.DiscardValueHost("B") }},
		{name: "discard unknown", run: func() error { return m.DiscardValueHost("Nope") }},
		{name: "re-add B", run: func() error {
			_, err := m.AddValueHost(&config.ValueHostConfig{Name: "B", Type: config.TypeCalc}, nil)
			return err
		}},
	}

	for _, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("%s failed: %v", step.name, err)
		}
		checkIdentityMap(t, m)
	}

	if diff := cmp.Diff([]string{"A", "C", "B"}, m.ValueHostNames()); diff != "" {
		t.Errorf("insertion order mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateValueHost_ReplacesInstance(t *testing.T) {
	m := newManager(t, nil)
	before, _ := m.AddValueHost(inputConfig("Field1"), nil)

	after, err := m.UpdateValueHost(inputConfig("Field1"), nil)
	if err != nil {
		t.Fatalf("UpdateValueHost failed: %v", err)
	}

	if after == before {
		t.Fatal("UpdateValueHost returned the previous instance")
	}
	if !before.IsDisposed() {
		t.Error("replaced instance was not disposed")
	}
	if m.GetValueHost("Field1") != after {
		t.Error("GetValueHost should return the new instance")
	}
}

func TestStatePrecedence(t *testing.T) {
	saved := manager.Config{
		ValueHostConfigs:             []config.ValueHostConfig{},
		SavedValueHostInstanceStates: []state.ValueHostInstanceState{{Name: "Field1", Value: 10}},
	}

	t.Run("saved state", func(t *testing.T) {
		m := newManager(t, &saved)
		vh, err := m.AddValueHost(inputConfig("Field1"), nil)
		if err != nil {
			t.Fatalf("AddValueHost failed: %v", err)
		}
		if vh.Value() != 10 {
			t.Errorf("Value() = %v, want 10", vh.Value())
		}
	})

	t.Run("explicit state wins", func(t *testing.T) {
		m := newManager(t, &saved)
		vh, err := m.AddValueHost(inputConfig("Field1"), &state.ValueHostInstanceState{Name: "Field1", Value: "ABC"})
		if err != nil {
			t.Fatalf("AddValueHost failed: %v", err)
		}
		if vh.Value() != "ABC" {
			t.Errorf("Value() = %v, want ABC", vh.Value())
		}
	})

	t.Run("default state", func(t *testing.T) {
		m := newManager(t, nil)
		cfg := inputConfig("Field1")
		cfg.InitialValue = 3
		vh, _ := m.AddValueHost(cfg, nil)
		if vh.Value() != 3 {
			t.Errorf("Value() = %v, want 3", vh.Value())
		}
	})

	t.Run("saved state restored by New", func(t *testing.T) {
		cfg := saved
		cfg.ValueHostConfigs = []config.ValueHostConfig{*inputConfig("Field1")}
		m := newManager(t, &cfg)
		if got := m.GetValueHost("Field1").Value(); got != 10 {
			t.Errorf("Value() = %v, want 10", got)
		}
	})
}

func TestDiscardValueHost_Purges(t *testing.T) {
	m := newManager(t, &manager.Config{
		ValueHostConfigs:             []config.ValueHostConfig{*inputConfig("Field1")},
		SavedValueHostInstanceStates: []state.ValueHostInstanceState{{Name: "Field1", Value: 10}},
	})
	old := m.GetValueHost("Field1")

	if err := m.DiscardValueHost("Field1"); err != nil {
		t.Fatalf("DiscardValueHost failed: %v", err)
	}
	if m.GetValueHost("Field1") != nil || m.Store().Len() != 0 {
		t.Fatal("discard left the host or its state behind")
	}
	if !old.IsDisposed() {
		t.Error("discarded instance was not disposed")
	}

	vh, err := m.AddValueHost(inputConfig("Field1"), nil)
	if err != nil {
		t.Fatalf("AddValueHost failed: %v", err)
	}
	if vh.Value() != nil {
		t.Errorf("re-added Value() = %v, want undefined", vh.Value())
	}
}

func TestUpdateInstanceState_Counter(t *testing.T) {
	var calls []int
	m := newManager(t, nil, manager.WithOnInstanceStateChanged(func(_ *manager.Manager, st state.ManagerInstanceState) {
		calls = append(calls, st.StateChangeCounter)
	}))

	for i := 1; i <= 3; i++ {
		st, err := m.UpdateInstanceState(func(st state.ManagerInstanceState) state.ManagerInstanceState {
			st.Items = map[string]any{"step": i}
			return st
		})
		if err != nil {
			t.Fatalf("UpdateInstanceState failed: %v", err)
		}
		if st.StateChangeCounter != i {
			t.Errorf("counter = %d, want %d", st.StateChangeCounter, i)
		}
	}

	st, err := m.UpdateInstanceState(func(st state.ManagerInstanceState) state.ManagerInstanceState {
		return st
	})
	if err != nil {
		t.Fatalf("UpdateInstanceState failed: %v", err)
	}
	if st.StateChangeCounter != 3 {
		t.Errorf("no-op update changed counter to %d", st.StateChangeCounter)
	}
	if diff := cmp.Diff([]int{1, 2, 3}, calls); diff != "" {
		t.Errorf("callback values mismatch (-want +got):\n%s", diff)
	}

	if _, err := m.UpdateInstanceState(nil); !errors.Is(err, manager.ErrNilUpdater) || !errors.Is(err, fault.ErrPrecondition) {
		t.Errorf("UpdateInstanceState(nil) error = %v", err)
	}
}

func TestNoAliasing(t *testing.T) {
	m := newManager(t, nil)

	cfg := inputConfig("Field1")
	cfg.Label = "Original"
	cfg.Validators = []config.ValidatorConfig{{ErrorCode: "Required", Condition: config.ConditionConfig{ConditionType: "Required"}}}
	initial := &state.ValueHostInstanceState{Value: 1, Items: map[string]any{"k": "v"}}

	vh, err := m.AddValueHost(cfg, initial)
	if err != nil {
		t.Fatalf("AddValueHost failed: %v", err)
	}

	cfg.Label = "Mutated"
	cfg.Validators[0].ErrorCode = "Mutated"
	initial.Items["k"] = "mutated"
	initial.Value = 2

	stored := m.ValueHostConfigs()[0]
	if stored.Label != "Original" || stored.Validators[0].ErrorCode != "Required" {
		t.Errorf("stored configuration aliased the caller's: %+v", stored)
	}
	if got := vh.Config(); got.Label != "Original" {
		t.Errorf("bound configuration aliased the caller's: %+v", got)
	}
	if item, _ := vh.GetItem("k"); item != "v" || vh.Value() != 1 {
		t.Errorf("host state aliased the caller's: item %v, value %v", item, vh.Value())
	}

	stored.Label = "Changed copy"
	if m.ValueHostConfigs()[0].Label != "Original" {
		t.Error("ValueHostConfigs returned the manager's own copy")
	}

	update := inputConfig("Field1")
	if _, err := m.UpdateValueHost(update, nil); err != nil {
		t.Fatalf("UpdateValueHost failed: %v", err)
	}
	update.DataType = "Mutated"
	if m.GetValueHost("Field1").DataType() != "Integer" {
		t.Error("updated host aliased the caller's configuration")
	}
}

func TestCapabilityNarrowing(t *testing.T) {
	m := newManager(t, nil)
	_ = m.Build().
		Static("Static1", "String", "x").
		Input("Input1", "Integer").
		Property("Property1", "Integer").
		Calc("Calc1", "Integer", func(string, config.ValueLookup) any { return 1 }).
		Apply()

	tests := []struct {
		name            string
		wantValidatable bool
		wantInput       bool
		wantCalc        bool
	}{
		{name: "Static1"},
		{name: "Input1", wantValidatable: true, wantInput: true},
		{name: "Property1", wantValidatable: true},
		{name: "Calc1", wantCalc: true},
		{name: "Missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if (m.GetValueHost(tt.name) != nil) != (tt.name != "Missing") {
				t.Errorf("GetValueHost(%s) = %v", tt.name, m.GetValueHost(tt.name))
			}
			if (m.GetValidatableValueHost(tt.name) != nil) != tt.wantValidatable {
				t.Errorf("GetValidatableValueHost(%s) mismatch", tt.name)
			}
			if (m.GetInputValueHost(tt.name) != nil) != tt.wantInput {
				t.Errorf("GetInputValueHost(%s) mismatch", tt.name)
			}
			if (m.GetCalcValueHost(tt.name) != nil) != tt.wantCalc {
				t.Errorf("GetCalcValueHost(%s) mismatch", tt.name)
			}
		})
	}
}

func TestUpdateValueHost_UnknownNameAdds(t *testing.T) {
	var changes int
	m := newManager(t, nil, manager.WithOnValueHostInstanceStateChanged(func(*manager.Manager, state.ValueHostInstanceState) {
		changes++
	}))

	vh, err := m.UpdateValueHost(inputConfig("New"), &state.ValueHostInstanceState{Value: 4})
	if err != nil {
		t.Fatalf("UpdateValueHost failed: %v", err)
	}
	if vh.Value() != 4 || m.GetValueHost("New") != vh {
		t.Errorf("UpdateValueHost(unknown) did not add the host")
	}
	if changes != 0 || m.InstanceState().StateChangeCounter != 0 {
		t.Error("adding through UpdateValueHost should not report a state change")
	}
}

func TestUpdateValueHost_CallbackOrder(t *testing.T) {
	var (
		events []string
		m      *manager.Manager
		old    valuehost.ValueHost
	)
	m = newManager(t, nil,
		manager.WithOnInstanceStateChanged(func(mgr *manager.Manager, st state.ManagerInstanceState) {
			if !old.IsDisposed() || mgr.GetValueHost("Field1") == old {
				t.Error("state callback ran before the old instance was replaced")
			}
			events = append(events, fmt.Sprintf("manager:%d", st.StateChangeCounter))
		}),
		manager.WithOnValueHostInstanceStateChanged(func(_ *manager.Manager, st state.ValueHostInstanceState) {
			events = append(events, "valuehost:"+st.Name+":"+string(st.Status))
		}),
	)

	cfg := inputConfig("Field1")
	cfg.Validators = []config.ValidatorConfig{requiredValidator()}
	old, _ = m.AddValueHost(cfg, &state.ValueHostInstanceState{
		Status:      state.StatusInvalid,
		IssuesFound: []state.IssueFound{{ErrorCode: "Required", ValueHostName: "Field1", Severity: "Error"}},
	})
	if len(events) != 0 {
		t.Fatalf("AddValueHost fired callbacks: %v", events)
	}

	if _, err := m.UpdateValueHost(inputConfig("Field1"), nil); err != nil {
		t.Fatalf("UpdateValueHost failed: %v", err)
	}

	want := []string{"manager:1", "valuehost:Field1:NotAttempted"}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Errorf("callback order mismatch (-want +got):\n%s", diff)
	}

	old = m.GetValueHost("Field1")
	if _, err := m.UpdateValueHost(inputConfig("Field1"), nil); err != nil {
		t.Fatalf("UpdateValueHost failed: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("update that kept the same state fired callbacks: %v", events)
	}
}

func TestUpdateValueHost_Compatibility(t *testing.T) {
	tests := []struct {
		name      string
		update    config.ValueHostConfig
		wantValue any
		wantLabel string
	}{
		{
			name:      "compatible keeps state and fills label",
			update:    config.ValueHostConfig{Name: "Field1", Type: config.TypeInput},
			wantValue: 7,
			wantLabel: "First",
		},
		{
			name:      "type change resets state",
			update:    config.ValueHostConfig{Name: "Field1", Type: config.TypeStatic, Label: "Static"},
			wantValue: nil,
			wantLabel: "Static",
		},
		{
			name:      "data type change resets state",
			update:    config.ValueHostConfig{Name: "Field1", Type: config.TypeInput, DataType: "String"},
			wantValue: nil,
			wantLabel: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newManager(t, nil)
			cfg := inputConfig("Field1")
			cfg.Label = "First"
			if _, err := m.AddValueHost(cfg, &state.ValueHostInstanceState{Value: 7}); err != nil {
				t.Fatalf("AddValueHost failed: %v", err)
			}

			update := tt.update
			vh, err := m.UpdateValueHost(&update, nil)
			if err != nil {
				t.Fatalf("UpdateValueHost failed: %v", err)
			}
			if vh.Value() != tt.wantValue {
				t.Errorf("Value() = %v, want %v", vh.Value(), tt.wantValue)
			}
			if vh.Label() != tt.wantLabel {
				t.Errorf("Label() = %q, want %q", vh.Label(), tt.wantLabel)
			}
		})
	}
}

func TestUpdateValueHost_ExplicitStateWins(t *testing.T) {
	m := newManager(t, nil)
	_, _ = m.AddValueHost(inputConfig("Field1"), &state.ValueHostInstanceState{Value: 7})

	vh, err := m.UpdateValueHost(inputConfig("Field1"), &state.ValueHostInstanceState{Name: "Other", Value: 8})
	if err != nil {
		t.Fatalf("UpdateValueHost failed: %v", err)
	}
	if vh.Value() != 8 || vh.InstanceState().Name != "Field1" {
		t.Errorf("state = %+v, want value 8 named Field1", vh.InstanceState())
	}
	if m.InstanceState().StateChangeCounter != 1 {
		t.Errorf("counter = %d, want 1", m.InstanceState().StateChangeCounter)
	}
}

func TestLiveHostChanges(t *testing.T) {
	var (
		valueChanges []any
		inputChanges []any
		hostStates   []state.ValueHostInstanceState
	)
	m := newManager(t, nil,
		manager.WithServices(withRequiredCondition(t)),
		manager.WithOnValueChanged(func(_ valuehost.ValueHost, old any) { valueChanges = append(valueChanges, old) }),
		manager.WithOnInputValueChanged(func(_ valuehost.InputValueHost, old any) { inputChanges = append(inputChanges, old) }),
		manager.WithOnValueHostInstanceStateChanged(func(_ *manager.Manager, st state.ValueHostInstanceState) {
			hostStates = append(hostStates, st)
		}),
	)

	cfg := inputConfig("Age")
	cfg.Validators = []config.ValidatorConfig{requiredValidator()}
	if _, err := m.AddValueHost(cfg, nil); err != nil {
		t.Fatalf("AddValueHost failed: %v", err)
	}

	if m.Validate() {
		t.Error("Validate() = true with an empty required field")
	}

	m.GetInputValueHost("Age").SetValues(42, "42", valuehost.SetValueOptions{Validate: true})

	if !m.Validate() {
		t.Error("Validate() = false after setting the value")
	}
	if diff := cmp.Diff([]any{nil}, valueChanges); diff != "" {
		t.Errorf("value changes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{nil}, inputChanges); diff != "" {
		t.Errorf("input changes mismatch (-want +got):\n%s", diff)
	}

	stored, _ := m.Store().Get("Age")
	if stored.Value != 42 || stored.Status != state.StatusValid {
		t.Errorf("stored state = %+v", stored)
	}
	if len(hostStates) == 0 || m.InstanceState().StateChangeCounter != len(hostStates) {
		t.Errorf("counter = %d, host state callbacks = %d", m.InstanceState().StateChangeCounter, len(hostStates))
	}
}

func TestDisposedHostCannotMutateManager(t *testing.T) {
	m := newManager(t, nil)
	old, _ := m.AddValueHost(inputConfig("Field1"), nil)
	if _, err := m.UpdateValueHost(inputConfig("Field1"), nil); err != nil {
		t.Fatalf("UpdateValueHost failed: %v", err)
	}

	revision := m.Store().Revision()
	old.SetValue(99, valuehost.SetValueOptions{})

	if m.Store().Revision() != revision || m.GetValueHost("Field1").Value() != nil {
		t.Error("disposed instance changed manager state")
	}
}

func TestPeerNotification(t *testing.T) {
	m := newManager(t, nil)
	err := m.Build().
		Input("A", "Integer").
		Add(config.ValueHostConfig{
			Name: "B",
			Type: config.TypeInput,
			Validators: []config.ValidatorConfig{{
				Condition: config.ConditionConfig{ConditionType: "Required", ValueHostName: "A"},
			}},
		}).
		Apply()
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	m.GetValueHost("A").SetValue(1, valuehost.SetValueOptions{Validate: true})

	// The default services register no condition types.
	if got := m.GetValidatableValueHost("B").ValidationStatus(); got != state.StatusUndetermined {
		t.Errorf("B status = %s, want Undetermined after peer revalidation", got)
	}
}

func TestDispose(t *testing.T) {
	var types []observability.EventType
	obs := observability.ObserverFunc(func(_ context.Context, e observability.Event) {
		types = append(types, e.Type)
	})

	m := newManager(t, nil, manager.WithObserver(obs))
	old, _ := m.AddValueHost(inputConfig("A"), nil)
	m.Dispose()
	m.Dispose()

	if !m.Disposed() || !m.Services().Disposed() {
		t.Fatal("manager or services not disposed")
	}
	if !old.IsDisposed() || m.GetValueHost("A") != nil {
		t.Error("hosts survived Dispose")
	}

	if _, err := m.AddValueHost(inputConfig("B"), nil); !errors.Is(err, fault.ErrDisposed) {
		t.Errorf("AddValueHost after Dispose error = %v", err)
	}
	if _, err := m.UpdateValueHost(inputConfig("B"), nil); !errors.Is(err, fault.ErrDisposed) {
		t.Errorf("UpdateValueHost after Dispose error = %v", err)
	}
	if err := m.DiscardValueHost("A"); !errors.Is(err, fault.ErrDisposed) {
		t.Errorf("DiscardValueHost after Dispose error = %v", err)
	}

	want := []observability.EventType{manager.EventValueHostAdd, manager.EventDispose}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshot(t *testing.T) {
	m := newManager(t, nil)
	_ = m.Build().
		Static("S", "String", "x").
		Calc("C", "Integer", func(string, config.ValueLookup) any { return 5 }).
		Apply()

	snap := m.Snapshot()
	if len(snap.ValueHosts) != 2 {
		t.Fatalf("snapshot has %d hosts, want 2", len(snap.ValueHosts))
	}
	if snap.ValueHosts[0].Value != "x" {
		t.Errorf("static value = %v, want x", snap.ValueHosts[0].Value)
	}
	if snap.ValueHosts[1].Value != nil {
		t.Error("calc values must not be persisted")
	}

	restored := newManager(t, &manager.Config{
		ValueHostConfigs:             m.ValueHostConfigs(),
		SavedInstanceState:           &snap.Manager,
		SavedValueHostInstanceStates: snap.ValueHosts,
	})
	if !slices.Equal(restored.ValueHostNames(), m.ValueHostNames()) {
		t.Errorf("restored names = %v, want %v", restored.ValueHostNames(), m.ValueHostNames())
	}
	if restored.GetValueHost("C").Value() != 5 {
		t.Error("restored calc host should compute its value")
	}
}

func TestEventsCounted(t *testing.T) {
	counter, err := observability.NewMetricsObserver(prom.NewRegistry())
	if err != nil {
		t.Fatalf("NewMetricsObserver failed: %v", err)
	}

	m := newManager(t, nil, manager.WithObserver(counter))
	_, _ = m.AddValueHost(inputConfig("A"), nil)
	_, _ = m.AddValueHost(inputConfig("B"), nil)
	_, _ = m.UpdateValueHost(inputConfig("A"), &state.ValueHostInstanceState{Value: 1})
	_ = m.DiscardValueHost("B")

	tests := []struct {
		eventType observability.EventType
		level     observability.Level
		want      float64
	}{
		{eventType: manager.EventValueHostAdd, level: observability.LevelInfo, want: 2},
		{eventType: manager.EventValueHostUpdate, level: observability.LevelInfo, want: 1},
		{eventType: manager.EventValueHostDiscard, level: observability.LevelInfo, want: 1},
		{eventType: manager.EventValueHostStateChange, level: observability.LevelVerbose, want: 1},
		{eventType: manager.EventStateChange, level: observability.LevelVerbose, want: 1},
	}

	for _, tt := range tests {
		if got := counter.Count(tt.eventType, tt.level); got != tt.want {
			t.Errorf("Count(%s) = %v, want %v", tt.eventType, got, tt.want)
		}
	}
}

func TestDiscardValueHost_PurgesUnclaimedSavedState(t *testing.T) {
	m := newManager(t, &manager.Config{
		ValueHostConfigs:             []config.ValueHostConfig{},
		SavedValueHostInstanceStates: []state.ValueHostInstanceState{{Name: "Field1", Value: 10}},
	})

	if err := m.DiscardValueHost("Field1"); err != nil {
		t.Fatalf("DiscardValueHost failed: %v", err)
	}
	if _, ok := m.Store().Get("Field1"); ok {
		t.Fatal("saved state survived the discard")
	}

	vh, err := m.AddValueHost(inputConfig("Field1"), nil)
	if err != nil {
		t.Fatalf("AddValueHost failed: %v", err)
	}
	if vh.Value() != nil {
		t.Errorf("Value() = %v, want undefined", vh.Value())
	}
}

func TestTimeValuesSurvive(t *testing.T) {
	when := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	m := newManager(t, nil)

	vh, err := m.AddValueHost(&config.ValueHostConfig{Name: "D", Type: config.TypeInput}, &state.ValueHostInstanceState{Value: when})
	if err != nil {
		t.Fatalf("AddValueHost failed: %v", err)
	}
	if got, ok := vh.Value().(time.Time); !ok || !got.Equal(when) {
		t.Errorf("Value() = %v, want %v", vh.Value(), when)
	}

	snap := m.Snapshot()
	if got, ok := snap.ValueHosts[0].Value.(time.Time); !ok || !got.Equal(when) {
		t.Errorf("snapshot value = %v, want %v", snap.ValueHosts[0].Value, when)
	}

	vh, err = m.UpdateValueHost(&config.ValueHostConfig{Name: "D", Type: config.TypeInput, Label: "Date"}, nil)
	if err != nil {
		t.Fatalf("UpdateValueHost failed: %v", err)
	}
	if got, ok := vh.Value().(time.Time); !ok || !got.Equal(when) {
		t.Errorf("Value() after update = %v, want %v", vh.Value(), when)
	}
	if m.InstanceState().StateChangeCounter != 0 {
		t.Error("carrying the same state forward should not count as a change")
	}
}

func TestEventsIdentifyManagerAndHost(t *testing.T) {
	var events []observability.Event
	obs := observability.ObserverFunc(func(_ context.Context, e observability.Event) {
		events = append(events, e)
	})

	m := newManager(t, nil, manager.WithObserver(obs))
	_, _ = m.AddValueHost(inputConfig("A"), nil)
	_ = m.DiscardValueHost("A")

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	for _, e := range events {
		if e.ManagerID != m.ID().String() {
			t.Errorf("%s ManagerID = %q, want %q", e.Type, e.ManagerID, m.ID())
		}
		if e.ValueHost != "A" {
			t.Errorf("%s ValueHost = %q, want A", e.Type, e.ValueHost)
		}
	}
}
