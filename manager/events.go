package manager

import "github.com/tailored-agentic-units/formstate/observability"

// Manager event types.
const (
	EventValueHostAdd         observability.EventType = "manager.valuehost.add"
	EventValueHostUpdate      observability.EventType = "manager.valuehost.update"
	EventValueHostDiscard     observability.EventType = "manager.valuehost.discard"
	EventValueHostStateChange observability.EventType = "manager.valuehost.state.change"
	EventStateChange          observability.EventType = "manager.state.change"
	EventDispose              observability.EventType = "manager.dispose"
)
