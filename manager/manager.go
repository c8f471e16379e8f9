// Package manager owns a collection of value hosts and reconciles their
// configuration and instance state across additions, replacements and
// discards.
//
// A Manager is single-goroutine: none of its methods lock, and callbacks
// run synchronously and may call back into it. The configuration map, the
// live host map and the insertion order are always updated together before
// any callback runs.
//
//	cfg := manager.DefaultConfig()
//	cfg.ValueHostConfigs = append(cfg.ValueHostConfigs, config.ValueHostConfig{
//		Name: "FirstName", Type: config.TypeInput, DataType: "String",
//	})
//	m, err := manager.New(&cfg)
//	m.GetInputValueHost("FirstName").SetValue("Ada", valuehost.SetValueOptions{Validate: true})
package manager

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/formstate/core/config"
	"github.com/tailored-agentic-units/formstate/core/fault"
	"github.com/tailored-agentic-units/formstate/core/state"
	"github.com/tailored-agentic-units/formstate/factory"
	"github.com/tailored-agentic-units/formstate/merge"
	"github.com/tailored-agentic-units/formstate/observability"
	"github.com/tailored-agentic-units/formstate/services"
	"github.com/tailored-agentic-units/formstate/valuehost"
)

// Manager is the value host manager.
type Manager struct {
	id       uuid.UUID
	services *services.Services
	factory  *factory.Factory
	observer observability.Observer

	configs  map[string]config.ValueHostConfig
	hosts    map[string]valuehost.ValueHost
	order    []string
	store    *Store
	instance state.ManagerInstanceState
	disposed bool

	onInstanceStateChanged          InstanceStateChangedFunc
	onValueHostInstanceStateChanged ValueHostInstanceStateChangedFunc
	onValueChanged                  ValueChangedFunc
	onInputValueChanged             InputValueChangedFunc
}

var _ valuehost.Manager = (*Manager)(nil)

// New creates a Manager from cfg. Saved states are ingested first, then
// every configured value host is added in order. Construction fires no
// state change callbacks.
func New(cfg *Config, opts ...Option) (*Manager, error) {
	const op = "manager.New"

	if cfg == nil {
		return nil, fault.Precondition(op, ErrNilConfig)
	}
	if cfg.ValueHostConfigs == nil {
		return nil, fault.Precondition(op, ErrNilConfigs)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to create manager id: %w", err)
	}

	m := &Manager{
		id:      id,
		configs: make(map[string]config.ValueHostConfig, len(cfg.ValueHostConfigs)),
		hosts:   make(map[string]valuehost.ValueHost, len(cfg.ValueHostConfigs)),
		order:   make([]string, 0, len(cfg.ValueHostConfigs)),
		store:   NewStore(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.services == nil {
		m.services = services.NewDefault()
	}
	if m.factory == nil {
		m.factory = factory.NewStandard()
	}
	if m.observer == nil {
		if cfg.Observer != "" {
			obs, err := observability.GetObserver(cfg.Observer)
			if err != nil {
				return nil, fault.Configuration(op, cfg.Observer, err)
			}
			m.observer = obs
		} else {
			m.observer = m.services.Observer()
		}
	}

	if cfg.SavedInstanceState != nil {
		m.instance = cfg.SavedInstanceState.Clone()
	}
	for _, st := range cfg.SavedValueHostInstanceStates {
		if st.Name != "" {
			m.store.Put(st)
		}
	}

	for i := range cfg.ValueHostConfigs {
		if _, err := m.AddValueHost(&cfg.ValueHostConfigs[i], nil); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ID identifies the manager in emitted events.
func (m *Manager) ID() uuid.UUID {
	return m.id
}

func (m *Manager) Services() *services.Services {
	return m.services
}

// Store exposes the instance state store.
func (m *Manager) Store() *Store {
	return m.store
}

// AddValueHost creates a value host for cfg. The initial state is, in order
// of precedence: initialState, the saved state for cfg.Name adapted to cfg,
// or the generator's default. A name already in use fails with
// ErrDuplicateName and leaves the manager unchanged.
func (m *Manager) AddValueHost(cfg *config.ValueHostConfig, initialState *state.ValueHostInstanceState) (valuehost.ValueHost, error) {
	const op = "manager.AddValueHost"

	if m.disposed {
		return nil, fault.Disposed(op)
	}
	if cfg == nil {
		return nil, fault.Precondition(op, ErrNilConfig)
	}
	if _, exists := m.configs[cfg.Name]; exists {
		return nil, fault.Configuration(op, cfg.Name, ErrDuplicateName)
	}

	return m.add(op, cfg, initialState)
}

func (m *Manager) add(op string, cfg *config.ValueHostConfig, initialState *state.ValueHostInstanceState) (valuehost.ValueHost, error) {
	gen, err := m.factory.Resolve(cfg)
	if err != nil {
		return nil, err
	}

	private := cfg.Clone()
	st := gen.CreateDefaultState(private)
	switch {
	case initialState != nil:
		st = st.Merge(explicitState(initialState, private.Name))
	default:
		if saved, ok := m.store.Get(private.Name); ok {
			st = st.Merge(gen.CleanupState(saved, private))
		}
	}

	vh := gen.Create(m, private, st)
	m.install(private, vh)
	m.store.Put(vh.InstanceState())

	m.emit(EventValueHostAdd, observability.LevelInfo, op, private.Name, map[string]any{
		"type": string(private.Type),
	})

	return vh, nil
}

// UpdateValueHost replaces the value host named by cfg with a new instance.
// The prior instance is disposed. Its state carries over, adapted to the new
// configuration, unless newState is given or the merge service reports the
// configurations incompatible, in which case the default state is used.
//
// An unknown name behaves exactly like AddValueHost.
func (m *Manager) UpdateValueHost(cfg *config.ValueHostConfig, newState *state.ValueHostInstanceState) (valuehost.ValueHost, error) {
	const op = "manager.UpdateValueHost"

	if m.disposed {
		return nil, fault.Disposed(op)
	}
	if cfg == nil {
		return nil, fault.Precondition(op, ErrNilConfig)
	}

	existing, exists := m.configs[cfg.Name]
	if !exists {
		return m.add(op, cfg, newState)
	}

	gen, err := m.factory.Resolve(cfg)
	if err != nil {
		return nil, err
	}

	incoming := cfg.Clone()
	compatible := true

	ms, err := m.services.MergeService()
	if err != nil {
		return nil, err
	}
	if ms != nil {
		merged, err := ms.Merge(existing, incoming)
		switch {
		case errors.Is(err, merge.ErrIncompatible):
			compatible = false
			m.services.Logger().Debug("prior state dropped", "name", incoming.Name, "reason", err)
		case err != nil:
			return nil, fault.Configuration(op, incoming.Name, err)
		default:
			incoming = merged
		}
	}

	prior, hadPrior := m.store.Get(incoming.Name)

	st := gen.CreateDefaultState(incoming)
	switch {
	case newState != nil:
		st = st.Merge(explicitState(newState, incoming.Name))
	case hadPrior && compatible:
		st = st.Merge(gen.CleanupState(prior, incoming))
	}

	if old := m.hosts[incoming.Name]; old != nil {
		old.Dispose()
	}

	vh := gen.Create(m, incoming, st)
	m.install(incoming, vh)

	current := vh.InstanceState()
	if m.store.Put(current) && hadPrior {
		m.valueHostStateChanged(current)
	}

	m.emit(EventValueHostUpdate, observability.LevelInfo, op, incoming.Name, map[string]any{
		"type":       string(incoming.Type),
		"compatible": compatible,
	})

	return vh, nil
}

// DiscardValueHost removes a value host and its retained state. The removed
// instance is disposed. For a name without a host only retained state is
// removed.
func (m *Manager) DiscardValueHost(name string) error {
	const op = "manager.DiscardValueHost"

	if m.disposed {
		return fault.Disposed(op)
	}
	if _, exists := m.configs[name]; !exists {
		// Saved state not yet claimed by a host is purged as well.
		m.store.Delete(name)
		return nil
	}

	vh := m.hosts[name]
	delete(m.configs, name)
	delete(m.hosts, name)
	m.order = slices.DeleteFunc(m.order, func(n string) bool { return n == name })
	m.store.Delete(name)

	if vh != nil {
		vh.Dispose()
	}

	m.emit(EventValueHostDiscard, observability.LevelInfo, op, name, nil)

	return nil
}

// GetValueHost returns the named value host, or nil.
func (m *Manager) GetValueHost(name string) valuehost.ValueHost {
	return m.hosts[name]
}

// GetValidatableValueHost returns the named host when it supports
// validation, or nil.
func (m *Manager) GetValidatableValueHost(name string) valuehost.ValidatableValueHost {
	vh, _ := m.hosts[name].(valuehost.ValidatableValueHost)
	return vh
}

// GetInputValueHost returns the named host when it is an input host, or nil.
func (m *Manager) GetInputValueHost(name string) valuehost.InputValueHost {
	vh, _ := m.hosts[name].(valuehost.InputValueHost)
	return vh
}

// GetCalcValueHost returns the named host when it is a calc host, or nil.
func (m *Manager) GetCalcValueHost(name string) valuehost.CalcValueHost {
	vh, _ := m.hosts[name].(valuehost.CalcValueHost)
	return vh
}

// ValueHostNames returns the host names in insertion order.
func (m *Manager) ValueHostNames() []string {
	return slices.Clone(m.order)
}

// ValueHostConfigs returns copies of the host configurations in insertion
// order.
func (m *Manager) ValueHostConfigs() []config.ValueHostConfig {
	configs := make([]config.ValueHostConfig, 0, len(m.order))
	for _, name := range m.order {
		configs = append(configs, m.configs[name].Clone())
	}
	return configs
}

// InstanceState returns a copy of the manager state.
func (m *Manager) InstanceState() state.ManagerInstanceState {
	return m.instance.Clone()
}

// ValueHostInstanceStates returns copies of the retained host states in
// insertion order.
func (m *Manager) ValueHostInstanceStates() []state.ValueHostInstanceState {
	states := make([]state.ValueHostInstanceState, 0, len(m.order))
	for _, name := range m.order {
		if st, ok := m.store.Get(name); ok {
			states = append(states, st)
		}
	}
	return states
}

// Snapshot captures everything needed to restore the manager later.
func (m *Manager) Snapshot() state.Snapshot {
	return state.Snapshot{
		Manager:    m.InstanceState(),
		ValueHosts: m.ValueHostInstanceStates(),
	}
}

// UpdateInstanceState applies updater to a copy of the manager state. A
// result equal to the current state is ignored; otherwise the counter is
// advanced by one and OnInstanceStateChanged fires.
func (m *Manager) UpdateInstanceState(updater func(state.ManagerInstanceState) state.ManagerInstanceState) (state.ManagerInstanceState, error) {
	const op = "manager.UpdateInstanceState"

	if m.disposed {
		return state.ManagerInstanceState{}, fault.Disposed(op)
	}
	if updater == nil {
		return state.ManagerInstanceState{}, fault.Precondition(op, ErrNilUpdater)
	}

	next := updater(m.instance.Clone())
	if next.Equal(m.instance) {
		return m.instance.Clone(), nil
	}

	next.StateChangeCounter = m.instance.StateChangeCounter + 1
	m.instance = next.Clone()
	m.instanceStateChanged(op)

	return m.instance.Clone(), nil
}

// Validate validates every validatable host in insertion order and reports
// whether all of them are valid.
func (m *Manager) Validate() bool {
	valid := true
	for _, name := range slices.Clone(m.order) {
		vh, ok := m.hosts[name].(valuehost.ValidatableValueHost)
		if !ok {
			continue
		}
		vh.Validate(valuehost.ValidateOptions{SkipPeerNotify: true})
		if !vh.IsValid() {
			valid = false
		}
	}
	return valid
}

// NotifyValueHostInstanceStateChanged records a live host's new state. Hosts
// that are no longer current are ignored.
func (m *Manager) NotifyValueHostInstanceStateChanged(host valuehost.ValueHost, st state.ValueHostInstanceState) {
	if m.disposed || host == nil || m.hosts[host.Name()] != host {
		return
	}
	if m.store.Put(st) {
		m.valueHostStateChanged(st)
	}
}

func (m *Manager) NotifyValueChanged(host valuehost.ValueHost, oldValue any) {
	if m.onValueChanged != nil {
		m.onValueChanged(host, oldValue)
	}
}

func (m *Manager) NotifyInputValueChanged(host valuehost.InputValueHost, oldValue any) {
	if m.onInputValueChanged != nil {
		m.onInputValueChanged(host, oldValue)
	}
}

// NotifyOtherValueHostsOfValueChange tells every listening host other than
// name that name's value changed, in insertion order.
func (m *Manager) NotifyOtherValueHostsOfValueChange(name string, revalidate bool) {
	for _, other := range slices.Clone(m.order) {
		if other == name {
			continue
		}
		if l, ok := m.hosts[other].(valuehost.PeerValueChangeListener); ok {
			l.OtherValueHostChanged(name, revalidate)
		}
	}
}

// Build starts a fluent collector whose Apply routes every collected
// configuration through UpdateValueHost.
func (m *Manager) Build() *Builder {
	return &Builder{manager: m}
}

// Dispose disposes every host and the services. Later mutations fail with
// fault.ErrDisposed and lookups return nil.
func (m *Manager) Dispose() {
	if m.disposed {
		return
	}

	for _, name := range m.order {
		if vh := m.hosts[name]; vh != nil {
			vh.Dispose()
		}
	}

	m.emit(EventDispose, observability.LevelInfo, "manager.Dispose", "", map[string]any{
		"value_hosts": len(m.order),
	})

	m.disposed = true
	m.configs = map[string]config.ValueHostConfig{}
	m.hosts = map[string]valuehost.ValueHost{}
	m.order = nil
	m.services.Dispose()
}

func (m *Manager) Disposed() bool {
	return m.disposed
}

func (m *Manager) install(cfg config.ValueHostConfig, vh valuehost.ValueHost) {
	if _, exists := m.configs[cfg.Name]; !exists {
		m.order = append(m.order, cfg.Name)
	}
	m.configs[cfg.Name] = cfg
	m.hosts[cfg.Name] = vh
}

func (m *Manager) valueHostStateChanged(st state.ValueHostInstanceState) {
	m.instance.StateChangeCounter++
	m.instanceStateChanged("manager.valuehost")

	if m.onValueHostInstanceStateChanged != nil {
		m.onValueHostInstanceStateChanged(m, st.Clone())
	}

	m.emit(EventValueHostStateChange, observability.LevelVerbose, "manager.valuehost", st.Name, map[string]any{
		"status": string(st.Status),
	})
}

func (m *Manager) instanceStateChanged(source string) {
	if m.onInstanceStateChanged != nil {
		m.onInstanceStateChanged(m, m.instance.Clone())
	}

	m.emit(EventStateChange, observability.LevelVerbose, source, "", map[string]any{
		"counter": m.instance.StateChangeCounter,
	})
}

func (m *Manager) emit(t observability.EventType, level observability.Level, source, valueHost string, data map[string]any) {
	m.observer.OnEvent(context.Background(), observability.Event{
		Type:      t,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		ManagerID: m.id.String(),
		ValueHost: valueHost,
		Data:      data,
	})
}

func explicitState(st *state.ValueHostInstanceState, name string) state.ValueHostInstanceState {
	explicit := st.Clone()
	explicit.Name = name
	return explicit
}
