// Package signals routes named UI events from widgets to registered listeners.
//
// Delivery is synchronous and in registration order. A source is any
// comparable value, in practice a pointer to a widget.
package signals

import "sync"

// Click is the event a button emits when it is activated.
const Click = "click"

// Listener is invoked with the source that emitted the event.
type Listener func(source any)

type key struct {
	source any
	event  string
}

// Bus holds listeners keyed by (source, event).
type Bus struct {
	mu        sync.RWMutex
	listeners map[key][]Listener
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{listeners: make(map[key][]Listener)}
}

// Default is the process-wide bus.
var Default = New()

// Connect registers listener for event on source. Registering the same
// listener twice results in two invocations per Emit.
// Panics if listener is nil (programmer error).
func (b *Bus) Connect(source any, event string, listener Listener) {
	if listener == nil {
		panic("signals: Connect called with nil listener")
	}
	k := key{source: source, event: event}
	b.mu.Lock()
	b.listeners[k] = append(b.listeners[k], listener)
	b.mu.Unlock()
}

// Emit invokes every listener registered for (source, event) in
// registration order. Emitting on a pair with no listeners is a no-op.
// Listeners connected while Emit runs are not called by that Emit.
func (b *Bus) Emit(source any, event string) {
	b.mu.RLock()
	registered := b.listeners[key{source: source, event: event}]
	snapshot := make([]Listener, len(registered))
	copy(snapshot, registered)
	b.mu.RUnlock()

	for _, l := range snapshot {
		l(source)
	}
}

// Disconnect drops every listener registered on source, for all events.
func (b *Bus) Disconnect(source any) {
	b.mu.Lock()
	for k := range b.listeners {
		if k.source == source {
			delete(b.listeners, k)
		}
	}
	b.mu.Unlock()
}

// Count returns the number of listeners registered for (source, event).
func (b *Bus) Count(source any, event string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[key{source: source, event: event}])
}

// Connect registers listener on the Default bus.
func Connect(source any, event string, listener Listener) {
	Default.Connect(source, event, listener)
}

// Emit emits on the Default bus.
func Emit(source any, event string) {
	Default.Emit(source, event)
}
