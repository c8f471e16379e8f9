// Package services is the locator every manager holds for its collaborators.
//
// Well-known collaborators are typed fields (condition factory, merge
// service, logger, observer) resolved without type assertions. Anything else
// lives in a string-keyed map; keys are case-insensitive and the last write
// wins. A service implementing Accessor receives a back-reference to the
// locator when it is registered.
//
// After Dispose every lookup fails with an error matching fault.ErrDisposed.
package services

import (
	"log/slog"
	"sync"

	"github.com/tailored-agentic-units/formstate/condition"
	"github.com/tailored-agentic-units/formstate/core/fault"
	"github.com/tailored-agentic-units/formstate/merge"
	"github.com/tailored-agentic-units/formstate/observability"
	"golang.org/x/text/cases"
)

// Names of the well-known services for GetService/SetService.
const (
	ConditionFactory = "ConditionFactory"
	MergeService     = "MergeService"
	Logger           = "Logger"
	Observer         = "Observer"
)

// Accessor is implemented by services that need the locator itself.
type Accessor interface {
	SetServices(s *Services)
}

// Services holds a manager's collaborators. Safe for concurrent use.
type Services struct {
	conditionFactory condition.Factory
	mergeService     merge.Service
	logger           *slog.Logger
	observer         observability.Observer
	extra            map[string]any
	disposed         bool
	mu               sync.RWMutex
}

// New creates an empty locator. Logger defaults to slog.Default and
// Observer to NoOpObserver.
func New() *Services {
	return &Services{
		logger:   slog.Default(),
		observer: observability.NoOpObserver{},
		extra:    make(map[string]any),
	}
}

// NewDefault creates a locator with the default merge service and an empty
// condition registry.
func NewDefault() *Services {
	s := New()
	s.mergeService = merge.NewService()
	s.conditionFactory = condition.NewRegistry()
	return s
}

// key folds name for case-insensitive lookup. A Caser is stateful, so each
// call gets its own.
func (s *Services) key(name string) string {
	return cases.Fold().String(name)
}

// GetService returns a service by case-insensitive name.
func (s *Services) GetService(name string) (any, error) {
	const op = "services.GetService"
	if name == "" {
		return nil, fault.Precondition(op, ErrEmptyName)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.disposed {
		return nil, fault.Disposed(op)
	}

	var svc any
	switch s.key(name) {
	case s.key(ConditionFactory):
		if s.conditionFactory != nil {
			svc = s.conditionFactory
		}
	case s.key(MergeService):
		if s.mergeService != nil {
			svc = s.mergeService
		}
	case s.key(Logger):
		svc = s.logger
	case s.key(Observer):
		svc = s.observer
	default:
		svc = s.extra[s.key(name)]
	}

	if svc == nil {
		return nil, &fault.Error{Op: op, Name: name, Err: ErrServiceNotFound}
	}
	return svc, nil
}

// SetService registers svc under name, replacing any previous value. A nil
// svc removes the entry. Well-known names must carry the matching type.
func (s *Services) SetService(name string, svc any) error {
	const op = "services.SetService"
	if name == "" {
		return fault.Precondition(op, ErrEmptyName)
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return fault.Disposed(op)
	}
	if err := s.setLocked(name, svc); err != nil {
		s.mu.Unlock()
		return &fault.Error{Op: op, Kind: fault.KindPrecondition, Name: name, Err: err}
	}
	s.mu.Unlock()

	s.inject(svc)
	return nil
}

func (s *Services) setLocked(name string, svc any) error {
	switch s.key(name) {
	case s.key(ConditionFactory):
		if svc == nil {
			s.conditionFactory = nil
			return nil
		}
		f, ok := svc.(condition.Factory)
		if !ok {
			return ErrServiceType
		}
		s.conditionFactory = f
	case s.key(MergeService):
		if svc == nil {
			s.mergeService = nil
			return nil
		}
		m, ok := svc.(merge.Service)
		if !ok {
			return ErrServiceType
		}
		s.mergeService = m
	case s.key(Logger):
		l, ok := svc.(*slog.Logger)
		if svc != nil && !ok {
			return ErrServiceType
		}
		if l == nil {
			l = slog.Default()
		}
		s.logger = l
	case s.key(Observer):
		o, ok := svc.(observability.Observer)
		if svc != nil && !ok {
			return ErrServiceType
		}
		if o == nil {
			o = observability.NoOpObserver{}
		}
		s.observer = o
	default:
		if svc == nil {
			delete(s.extra, s.key(name))
			return nil
		}
		s.extra[s.key(name)] = svc
	}
	return nil
}

// inject runs outside the lock so the accessor may call back into s.
func (s *Services) inject(svc any) {
	if a, ok := svc.(Accessor); ok {
		a.SetServices(s)
	}
}

// ConditionFactory returns the condition factory. The factory is nil, with
// no error, when none was registered.
func (s *Services) ConditionFactory() (condition.Factory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.disposed {
		return nil, fault.Disposed("services.ConditionFactory")
	}
	return s.conditionFactory, nil
}

// SetConditionFactory replaces the condition factory.
func (s *Services) SetConditionFactory(f condition.Factory) error {
	return s.SetService(ConditionFactory, f)
}

// MergeService returns the config merge service, nil when none was registered.
func (s *Services) MergeService() (merge.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.disposed {
		return nil, fault.Disposed("services.MergeService")
	}
	return s.mergeService, nil
}

// SetMergeService replaces the config merge service.
func (s *Services) SetMergeService(m merge.Service) error {
	return s.SetService(MergeService, m)
}

// Logger returns the logger. It never fails; a disposed locator returns a
// logger that discards output.
func (s *Services) Logger() *slog.Logger {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.disposed {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// Observer returns the event observer. A disposed locator returns NoOpObserver.
func (s *Services) Observer() observability.Observer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.disposed {
		return observability.NoOpObserver{}
	}
	return s.observer
}

// Dispose releases every service. Subsequent lookups fail with ErrDisposed.
func (s *Services) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.disposed = true
	s.conditionFactory = nil
	s.mergeService = nil
	s.extra = nil
}

// Disposed reports whether Dispose has been called.
func (s *Services) Disposed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disposed
}
