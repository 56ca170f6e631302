package event

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/sungwon/chirper/internal/metrics"
)

// Handler reacts to a dispatched event.
type Handler interface {
	Handle(ctx context.Context, e Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, e Event) error

// Handle calls f(ctx, e).
func (f HandlerFunc) Handle(ctx context.Context, e Event) error { return f(ctx, e) }

// Dispatcher publishes events. The chirp service depends on this rather than
// on Registry.
type Dispatcher interface {
	Dispatch(ctx context.Context, e Event)
}

// Registry maps event names to subscribers. It is built once at startup and
// passed to producers explicitly.
type Registry struct {
	mu       sync.RWMutex
	handlers map[Name][]Handler
	log      zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		handlers: make(map[Name][]Handler),
		log:      log,
	}
}

// Subscribe registers h for events named name. Handlers run in
// registration order.
func (r *Registry) Subscribe(name Name, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = append(r.handlers[name], h)
}

// Subscribers returns the number of handlers registered for name.
func (r *Registry) Subscribers(name Name) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[name])
}

// Dispatch synchronously invokes every handler registered for e. A failing or
// panicking handler is logged and does not stop the remaining handlers; the
// caller never sees the failure.
func (r *Registry) Dispatch(ctx context.Context, e Event) {
	name := e.EventName()

	r.mu.RLock()
	handlers := append([]Handler(nil), r.handlers[name]...)
	r.mu.RUnlock()

	metrics.EventsDispatchedTotal.WithLabelValues(string(name)).Inc()

	for i, h := range handlers {
		if err := r.invoke(ctx, h, e); err != nil {
			metrics.EventHandlerErrorsTotal.WithLabelValues(string(name)).Inc()
			r.log.Error().
				Err(err).
				Str("event", string(name)).
				Int("handler", i).
				Msg("event handler failed")
		}
	}
}

func (r *Registry) invoke(ctx context.Context, h Handler, e Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()
	return h.Handle(ctx, e)
}
