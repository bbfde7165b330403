package ports

import "go.trai.ch/ivpm/internal/core/domain"

// EventListener receives progress events.
//
//go:generate mockgen -source=events.go -destination=mocks/mock_events.go -package=mocks
type EventListener interface {
	// OnEvent handles one event. Implementations must not block.
	OnEvent(ev domain.Event)
}

// EventDispatcher fans events out to listeners in registration order.
type EventDispatcher interface {
	// AddListener registers a listener.
	AddListener(l EventListener)

	// Dispatch delivers ev to every listener without blocking the caller.
	Dispatch(ev domain.Event)

	// Flush waits until every dispatched event has been delivered.
	Flush()
}
