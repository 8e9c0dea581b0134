package catalog

import (
	"context"
	"sync"
)

// Mutation events dispatched by catalog writers.
const (
	EventAttributeSetSaveAfter      = "eav_entity_attribute_set_save_after"
	EventAttributeSetDeleteAfter    = "eav_entity_attribute_set_delete_after"
	EventEntityAttributeSaveAfter   = "eav_entity_attribute_save_after"
	EventEntityAttributeDeleteAfter = "eav_entity_attribute_delete_after"
)

// Event carries the object a mutation event is about. Exactly one of Set or
// EntityAttribute is non-nil for the events above.
type Event struct {
	Name            string
	Set             *AttributeSet
	EntityAttribute *EntityAttribute
}

// Observer handles dispatched events. Observers do not report errors back to
// the dispatcher.
type Observer interface {
	Execute(ctx context.Context, event Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, event Event)

// Execute calls f.
func (f ObserverFunc) Execute(ctx context.Context, event Event) { f(ctx, event) }

// EventDispatcher routes events to subscribed observers.
type EventDispatcher interface {
	Subscribe(name string, observer Observer)
	Dispatch(ctx context.Context, event Event)
}

// Dispatcher is a synchronous EventDispatcher. Observers run in
// subscription order on the dispatching goroutine.
type Dispatcher struct {
	mu        sync.RWMutex
	observers map[string][]Observer
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{observers: make(map[string][]Observer)}
}

// Subscribe registers observer for events named name.
func (d *Dispatcher) Subscribe(name string, observer Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers[name] = append(d.observers[name], observer)
}

// Dispatch delivers event to every observer of its name.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	d.mu.RLock()
	observers := append([]Observer(nil), d.observers[event.Name]...)
	d.mu.RUnlock()

	for _, o := range observers {
		o.Execute(ctx, event)
	}
}

var _ EventDispatcher = (*Dispatcher)(nil)
