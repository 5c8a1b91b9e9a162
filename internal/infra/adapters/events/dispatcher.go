package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"mangopay-card-gateway/internal/domain/ports/adapter"
)

var _ adapter.EventDispatcher = (*Dispatcher)(nil)

// Listener consumes one registration event.
type Listener func(ctx context.Context, event adapter.RegistrationEvent)

// Dispatcher delivers registration events to in-process listeners,
// synchronously and in subscription order. A panicking listener is recovered
// and logged; it never breaks the callback protocol.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	log       *zerolog.Logger
}

func NewDispatcher(logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		listeners: make(map[string][]Listener),
		log:       logger,
	}
}

func (d *Dispatcher) Subscribe(name string, fn Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[name] = append(d.listeners[name], fn)
}

func (d *Dispatcher) Dispatch(ctx context.Context, event adapter.RegistrationEvent) {
	d.mu.RLock()
	listeners := d.listeners[event.Name]
	d.mu.RUnlock()

	for _, fn := range listeners {
		d.invoke(ctx, event, fn)
	}
}

func (d *Dispatcher) invoke(ctx context.Context, event adapter.RegistrationEvent, fn Listener) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error().
				Interface("panic", r).
				Str("event", event.Name).
				Msg("event listener panicked")
		}
	}()
	fn(ctx, event)
}
