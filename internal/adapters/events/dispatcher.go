// Package events delivers progress events to listeners and renders them for
// terminals and CI logs.
package events

import (
	"slices"
	"sync"
	"time"

	"go.trai.ch/ivpm/internal/core/domain"
	"go.trai.ch/ivpm/internal/core/ports"
)

// Dispatcher fans events out to listeners on a background goroutine so that
// fetch workers never wait for rendering. Events are delivered in dispatch
// order and every listener sees them in registration order.
type Dispatcher struct {
	now func() time.Time

	mu        sync.Mutex
	listeners []ports.EventListener
	queue     []domain.Event
	draining  bool
	pending   sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with the given listeners.
func NewDispatcher(listeners ...ports.EventListener) *Dispatcher {
	return &Dispatcher{
		now:       time.Now,
		listeners: slices.Clone(listeners),
	}
}

// AddListener implements ports.EventDispatcher.
func (d *Dispatcher) AddListener(l ports.EventListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

// Dispatch implements ports.EventDispatcher. A zero Time is stamped with the
// dispatch time.
func (d *Dispatcher) Dispatch(ev domain.Event) {
	if ev.Time.IsZero() {
		ev.Time = d.now()
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.pending.Add(1)
	d.queue = append(d.queue, ev)
	if !d.draining {
		d.draining = true
		go d.drain()
	}
}

// Flush implements ports.EventDispatcher.
func (d *Dispatcher) Flush() {
	d.pending.Wait()
}

func (d *Dispatcher) drain() {
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.draining = false
			d.mu.Unlock()
			return
		}
		ev := d.queue[0]
		d.queue = d.queue[1:]
		listeners := d.listeners
		d.mu.Unlock()

		for _, l := range listeners {
			l.OnEvent(ev)
		}
		d.pending.Done()
	}
}
