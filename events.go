// Package svcreg provides CloudEvents projection for binding events.
package svcreg

import (
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// eventSource is the CloudEvents source attribute for registry emissions.
const eventSource = "svcreg/registry"

// BindingEventData is the CloudEvents data payload for a binding event.
// The live object reference is deliberately excluded so the envelope stays
// serializable for external consumers.
type BindingEventData struct {
	Name       string `json:"name"`
	ObjectType string `json:"objectType"`
}

// CloudEvent projects the binding event into a CloudEvents-v1 envelope with
// a time-ordered unique ID.
func (e BindingEvent) CloudEvent() cloudevents.Event {
	event := cloudevents.NewEvent()

	event.SetID(newEventID())
	event.SetSource(eventSource)
	event.SetSpecVersion(cloudevents.VersionV1)
	switch e.Kind {
	case EventRemoved:
		event.SetType(EventTypeBindingRemoved)
	default:
		event.SetType(EventTypeBindingAdded)
	}

	when := e.Time
	if when.IsZero() {
		when = time.Now()
	}
	event.SetTime(when)

	_ = event.SetData(cloudevents.ApplicationJSON, BindingEventData{
		Name:       e.Binding.Name,
		ObjectType: e.Binding.ObjectType,
	})

	return event
}

// newEventID generates a unique identifier using UUIDv7, which embeds
// timestamp information for time-ordered uniqueness.
func newEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails for any reason
		id = uuid.New()
	}
	return id.String()
}
