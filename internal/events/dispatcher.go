package events

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"weak"

	"github.com/phrazzld/todo-core/internal/platform/logger"
)

// EventHandler is implemented by components that consume events.
type EventHandler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts an ordinary function to EventHandler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f(ctx, event).
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// listener is one registration. Strong listeners have alive == nil.
type listener struct {
	id     uint64
	invoke func(ctx context.Context, event *Event) (bool, error)
	alive  func() bool
}

func (l *listener) live() bool {
	return l.alive == nil || l.alive()
}

// Subscription is the handle returned by On and OnWeak.
type Subscription struct {
	d    *Dispatcher
	name Name
	id   uint64
}

// Unsubscribe removes the registration. Calling it more than once is harmless.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.d == nil {
		return
	}
	s.d.remove(s.name, func(l *listener) bool { return l.id == s.id })
}

// Dispatcher routes events to the listeners registered for their name.
// It is safe for concurrent use; handlers may register, unregister and
// dispatch from inside a callback.
type Dispatcher struct {
	mu        sync.Mutex
	listeners map[Name][]*listener
	nextID    uint64
	logger    *slog.Logger
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(l *slog.Logger) *Dispatcher {
	if l == nil {
		l = slog.Default()
	}
	return &Dispatcher{
		listeners: make(map[Name][]*listener),
		logger:    l.With("component", "event_dispatcher"),
	}
}

func (d *Dispatcher) add(name Name, l *listener) *Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	l.id = d.nextID
	d.listeners[name] = append(d.listeners[name], l)

	d.logger.Debug("registered event listener",
		slog.String("event", string(name)),
		slog.Int("listener_count", len(d.listeners[name])),
		slog.Bool("weak", l.alive != nil))

	return &Subscription{d: d, name: name, id: l.id}
}

func (d *Dispatcher) remove(name Name, match func(*listener) bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	remaining := slices.DeleteFunc(slices.Clone(d.listeners[name]), match)
	if len(remaining) == 0 {
		delete(d.listeners, name)
		return
	}
	d.listeners[name] = remaining
}

// On registers h for events called name. The registration stays until the
// returned Subscription is unsubscribed or Off/Clear removes it.
func (d *Dispatcher) On(name Name, h EventHandler) *Subscription {
	return d.add(name, &listener{
		invoke: func(ctx context.Context, event *Event) (bool, error) {
			return true, h.HandleEvent(ctx, event)
		},
	})
}

// OnWeak registers fn for events called name while owner is reachable. Only a
// weak pointer to owner is retained; fn receives the owner on each call and
// must not capture it, otherwise the owner can never be collected. Once the
// owner is gone the registration is skipped and pruned on the next dispatch.
func OnWeak[T any](d *Dispatcher, name Name, owner *T, fn func(owner *T, ctx context.Context, event *Event) error) *Subscription {
	wp := weak.Make(owner)
	return d.add(name, &listener{
		invoke: func(ctx context.Context, event *Event) (bool, error) {
			o := wp.Value()
			if o == nil {
				return false, nil
			}
			return true, fn(o, ctx, event)
		},
		alive: func() bool { return wp.Value() != nil },
	})
}

// Off removes the given subscriptions for name, or every listener for name
// when no subscription is given.
func (d *Dispatcher) Off(name Name, subs ...*Subscription) {
	if len(subs) == 0 {
		d.mu.Lock()
		delete(d.listeners, name)
		d.mu.Unlock()
		return
	}

	ids := make(map[uint64]struct{}, len(subs))
	for _, s := range subs {
		if s != nil && s.d == d && s.name == name {
			ids[s.id] = struct{}{}
		}
	}
	d.remove(name, func(l *listener) bool {
		_, ok := ids[l.id]
		return ok
	})
}

// Clear removes every listener.
func (d *Dispatcher) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = make(map[Name][]*listener)
}

// HasListeners reports whether at least one live listener is registered for name.
func (d *Dispatcher) HasListeners(name Name) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, l := range d.listeners[name] {
		if l.live() {
			return true
		}
	}
	return false
}

// Dispatch delivers event to every listener registered for event.Name at the
// moment of the call. Listeners run on the calling goroutine, outside the
// dispatcher's lock.
func (d *Dispatcher) Dispatch(ctx context.Context, event *Event) {
	if event == nil {
		return
	}

	d.mu.Lock()
	snapshot := slices.Clone(d.listeners[event.Name])
	d.mu.Unlock()

	if len(snapshot) == 0 {
		return
	}

	log := logger.FromContextOrDefault(ctx, d.logger)
	var dead []uint64
	for i, l := range snapshot {
		ok, err := d.invoke(ctx, l, event)
		if !ok {
			dead = append(dead, l.id)
			continue
		}
		if err != nil {
			log.Error("event listener failed",
				slog.String("error", err.Error()),
				slog.Int("listener_index", i),
				slog.String("event", string(event.Name)),
				slog.String("event_id", event.ID.String()))
		}
	}

	if len(dead) > 0 {
		d.remove(event.Name, func(l *listener) bool { return slices.Contains(dead, l.id) })
		d.logger.Debug("pruned collected listeners",
			slog.String("event", string(event.Name)),
			slog.Int("pruned", len(dead)))
	}
}

// invoke runs a single listener, turning a panic into an error.
func (d *Dispatcher) invoke(ctx context.Context, l *listener, event *Event) (alive bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			alive = true
			err = fmt.Errorf("listener panicked: %v", p)
		}
	}()
	return l.invoke(ctx, event)
}

// Emit builds an event from name and payload and dispatches it. A payload that
// cannot be encoded is logged and dropped.
func (d *Dispatcher) Emit(ctx context.Context, name Name, payload any) {
	event, err := NewEvent(name, payload)
	if err != nil {
		logger.FromContextOrDefault(ctx, d.logger).Error("failed to build event",
			slog.String("event", string(name)),
			slog.String("error", err.Error()))
		return
	}
	d.Dispatch(ctx, event)
}
