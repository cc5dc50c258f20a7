package svcreg

import "fmt"

// Binding is one name-to-object association held by the registry, as exposed
// to callers of ListBindings and to binding event subscribers.
type Binding struct {
	// Name is the name the object is bound under.
	Name string

	// ObjectType is the Go type name of the bound object.
	ObjectType string

	// Object is the bound object itself. The registry shares it with whoever
	// received it from Lookup; it never destroys it, it only forgets it.
	Object any
}

// registration is the registry's internal record of one binding.
// It is immutable once created.
type registration struct {
	name   string
	object any
}

func newRegistration(name string, object any) *registration {
	return &registration{name: name, object: object}
}

// binding converts the internal record into the exported form.
func (r *registration) binding() Binding {
	return Binding{
		Name:       r.name,
		ObjectType: fmt.Sprintf("%T", r.object),
		Object:     r.object,
	}
}

func (r *registration) String() string {
	return fmt.Sprintf("%s(%T)", r.name, r.object)
}
