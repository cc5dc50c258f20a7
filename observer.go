// Package svcreg provides binding-event observer contracts for the registry.
// Event envelopes follow the CloudEvents specification for standardized
// formatting and interoperability with external systems.
package svcreg

import (
	"context"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
)

// EventKind distinguishes the two binding events the registry emits.
type EventKind string

const (
	// EventAdded is delivered after a registration is appended for a name.
	EventAdded EventKind = "added"

	// EventRemoved is delivered after a name's registrations are removed.
	EventRemoved EventKind = "removed"
)

// CloudEvent type constants for binding events, using reverse domain
// notation per the CloudEvents specification.
const (
	EventTypeBindingAdded   = "com.svcreg.binding.added"
	EventTypeBindingRemoved = "com.svcreg.binding.removed"
)

// BindingEvent is the payload delivered to subscribers when a binding is
// added or removed. For removals the Binding is the first registration that
// was removed.
type BindingEvent struct {
	// Kind reports whether the binding was added or removed.
	Kind EventKind

	// Binding carries the name, type name, and live object reference.
	Binding Binding

	// Time is when the table mutation completed.
	Time time.Time
}

// BindingListener receives binding events for one exact name. Listeners are
// invoked synchronously on the goroutine that mutated the table, after the
// mutation is durable; slow listeners therefore block binders.
type BindingListener interface {
	// OnBindingEvent is called once per bind or unbind of the subscribed
	// name. An error return is logged by the registry and does not prevent
	// delivery to later listeners.
	OnBindingEvent(ctx context.Context, event BindingEvent) error

	// ListenerID returns a unique identifier for this listener, used for
	// registration tracking and debugging.
	ListenerID() string
}

// FuncListener adapts a plain function into a BindingListener. This is
// useful for quick listener creation without defining full structs.
type FuncListener struct {
	id      string
	handler func(ctx context.Context, event BindingEvent) error
}

// NewFuncListener creates a listener that delegates to handler.
func NewFuncListener(id string, handler func(ctx context.Context, event BindingEvent) error) *FuncListener {
	return &FuncListener{id: id, handler: handler}
}

// OnBindingEvent implements BindingListener.
func (f *FuncListener) OnBindingEvent(ctx context.Context, event BindingEvent) error {
	return f.handler(ctx, event)
}

// ListenerID implements BindingListener.
func (f *FuncListener) ListenerID() string {
	return f.id
}

// NewCloudEventListener creates a listener that forwards each binding event
// to handler as a CloudEvents envelope. Handlers written against the
// CloudEvents SDK (bridges to brokers, audit sinks) can subscribe without
// knowing the registry's native event type. The live object reference is not
// part of the envelope; handlers needing it should implement BindingListener
// directly.
func NewCloudEventListener(id string, handler func(ctx context.Context, event cloudevents.Event) error) *FuncListener {
	return NewFuncListener(id, func(ctx context.Context, event BindingEvent) error {
		return handler(ctx, event.CloudEvent())
	})
}
