package grove

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/component"

	"github.com/phanxgames/grove/native"
)

// Bundles hydrate components on scene-tree entities from their nodes.
//
// Field bindings copy a node field into a component once, on entities
// carrying a marker. If the field is not set yet the binding stays pending
// and is retried at each topology pass until it applies. Default bindings add
// a component to every scene-tree entity at registration.
//
// Bindings are registered before App.Attach and frozen afterwards.
type Bundles struct {
	log    logr.Logger
	frozen bool

	fields   []fieldBinding
	defaults []defaultBinding
	seen     map[component.ComponentTypeId]struct{}

	// pending maps an entity to the field bindings not yet applied to it.
	pending map[donburi.Entity][]int
}

type fieldBinding struct {
	marker component.IComponentType
	field  string
	name   string
	// apply returns false if v could not be converted.
	apply func(entry *donburi.Entry, v any) bool
}

type defaultBinding struct {
	name  string
	apply func(entry *donburi.Entry, n native.Node)
}

func newBundles(log logr.Logger) *Bundles {
	return &Bundles{
		log:     log,
		seen:    make(map[component.ComponentTypeId]struct{}),
		pending: make(map[donburi.Entity][]int),
	}
}

// RegisterField binds node field to component ctype on entities carrying
// marker. convert turns the raw field value into C; nil means a plain type
// assertion.
func RegisterField[C any](b *Bundles, marker component.IComponentType, field string, ctype *donburi.ComponentType[C], convert func(any) (C, bool)) error {
	if b.frozen {
		return ErrBundlesFrozen
	}
	if marker == nil || ctype == nil || field == "" {
		return fmt.Errorf("grove: RegisterField needs a marker, a field name and a component type")
	}
	if convert == nil {
		convert = func(v any) (C, bool) {
			c, ok := v.(C)
			return c, ok
		}
	}
	b.fields = append(b.fields, fieldBinding{
		marker: marker,
		field:  field,
		name:   ctype.Name(),
		apply: func(entry *donburi.Entry, v any) bool {
			c, ok := convert(v)
			if !ok {
				return false
			}
			if !entry.HasComponent(ctype) {
				entry.AddComponent(ctype)
			}
			ctype.SetValue(entry, c)
			return true
		},
	})
	return nil
}

// RegisterDefault adds ctype to every scene-tree entity, initialised by init
// (nil leaves the zero value). Registering the same component type twice
// keeps the first registration.
func RegisterDefault[C any](b *Bundles, ctype *donburi.ComponentType[C], init func(native.Node) C) error {
	if b.frozen {
		return ErrBundlesFrozen
	}
	if ctype == nil {
		return fmt.Errorf("grove: RegisterDefault needs a component type")
	}
	if _, dup := b.seen[ctype.Id()]; dup {
		b.log.V(1).Info("default component already registered", "component", ctype.Name())
		return nil
	}
	b.seen[ctype.Id()] = struct{}{}
	b.defaults = append(b.defaults, defaultBinding{
		name: ctype.Name(),
		apply: func(entry *donburi.Entry, n native.Node) {
			if entry.HasComponent(ctype) {
				return
			}
			entry.AddComponent(ctype)
			if init != nil {
				ctype.SetValue(entry, init(n))
			}
		},
	})
	return nil
}

func (b *Bundles) freeze() { b.frozen = true }

// onRegister applies defaults and tries every matching field binding.
func (b *Bundles) onRegister(entry *donburi.Entry, n native.Node) {
	for _, d := range b.defaults {
		d.apply(entry, n)
	}
	var waiting []int
	for i, f := range b.fields {
		if !entry.HasComponent(f.marker) {
			continue
		}
		if !b.try(entry, n, i) {
			waiting = append(waiting, i)
		}
	}
	if len(waiting) > 0 {
		b.pending[entry.Entity()] = waiting
	}
}

// try applies binding i. It returns false only if the field is missing; a
// value that cannot be converted is logged and not retried.
func (b *Bundles) try(entry *donburi.Entry, n native.Node, i int) bool {
	f := b.fields[i]
	v, ok := n.Field(f.field)
	if !ok {
		return false
	}
	if !f.apply(entry, v) {
		b.log.Info("bundle field has the wrong type", "field", f.field, "component", f.name,
			"node", n.InstanceID(), "value", fmt.Sprintf("%T", v))
	}
	return true
}

// retry re-attempts pending bindings. Entities that left the world or whose
// node is gone are dropped.
func (b *Bundles) retry(w donburi.World) {
	for e, waiting := range b.pending {
		if !w.Valid(e) {
			delete(b.pending, e)
			continue
		}
		entry := w.Entry(e)
		n, ok := Handle.GetValue(entry).Resolve()
		if !ok {
			continue
		}
		rest := waiting[:0]
		for _, i := range waiting {
			if !b.try(entry, n, i) {
				rest = append(rest, i)
			}
		}
		if len(rest) == 0 {
			delete(b.pending, e)
		} else {
			b.pending[e] = rest
		}
	}
}

func (b *Bundles) forget(e donburi.Entity) { delete(b.pending, e) }

// Pending returns the number of entities with field bindings still waiting.
func (b *Bundles) Pending() int { return len(b.pending) }
