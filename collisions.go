package grove

import (
	"slices"
	"sync"

	"github.com/go-logr/logr"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/phanxgames/grove/native"
)

// CollisionEventKind says whether a contact started or ended.
type CollisionEventKind uint8

const (
	CollisionStarted CollisionEventKind = iota
	CollisionEnded
)

func (k CollisionEventKind) String() string {
	if k == CollisionStarted {
		return "started"
	}
	return "ended"
}

// CollisionEvent is a body or area entered/exited signal between two
// registered entities.
type CollisionEvent struct {
	Kind   CollisionEventKind
	Origin donburi.Entity
	Target donburi.Entity
}

// CollisionEvents carries CollisionEvents to application systems. They are
// delivered in PrePhysicsUpdate after Contacts has been updated.
var CollisionEvents = events.NewEventType[CollisionEvent]()

// Collisions tracks the contacts of one collision object.
type Collisions struct {
	colliding []donburi.Entity
	recent    []donburi.Entity
}

// Colliding returns the entities currently in contact.
func (c Collisions) Colliding() []donburi.Entity { return slices.Clone(c.colliding) }

// Recent returns the entities that started contact this physics frame.
func (c Collisions) Recent() []donburi.Entity { return slices.Clone(c.recent) }

// IsColliding reports whether e is currently in contact.
func (c Collisions) IsColliding(e donburi.Entity) bool { return slices.Contains(c.colliding, e) }

// Contacts holds the Collisions of entities whose node is a collision object.
var Contacts = donburi.NewComponentType[Collisions]().SetName("Contacts")

func isCollisionObject(chain []native.Class) bool {
	return native.HasClass(chain, native.ClassCollisionObject2D) ||
		native.HasClass(chain, native.ClassCollisionObject3D)
}

type contactSignal struct {
	origin, target native.NodeID
	started        bool
}

// collisionQueue buffers engine collision signals until PrePhysicsUpdate.
type collisionQueue struct {
	log     logr.Logger
	metrics *Metrics

	mu      sync.Mutex
	signals []contactSignal
}

// Collision implements native.CollisionListener.
func (q *collisionQueue) Collision(origin, target native.Node, started bool) {
	if native.IsNil(origin) || native.IsNil(target) {
		q.metrics.DroppedNotifications.WithLabelValues(dropNilNode).Inc()
		q.log.Info("dropping collision signal", "reason", dropNilNode, "started", started)
		return
	}
	q.mu.Lock()
	q.signals = append(q.signals, contactSignal{origin.InstanceID(), target.InstanceID(), started})
	q.mu.Unlock()
}

func (q *collisionQueue) drain() []contactSignal {
	q.mu.Lock()
	defer q.mu.Unlock()
	s := q.signals
	q.signals = nil
	return s
}

// apply clears Recent on every collision object, then applies queued signals
// in order. Signals naming unregistered nodes are skipped.
func (q *collisionQueue) apply(w donburi.World, r *Registry) {
	Contacts.Each(w, func(entry *donburi.Entry) {
		c := Contacts.Get(entry)
		c.recent = c.recent[:0]
	})

	for _, s := range q.drain() {
		origin, ok := r.Entity(s.origin)
		if !ok {
			continue
		}
		target, ok := r.Entity(s.target)
		if !ok || !w.Valid(origin) {
			continue
		}
		entry := w.Entry(origin)
		if !entry.HasComponent(Contacts) {
			continue
		}
		c := Contacts.Get(entry)
		evt := CollisionEvent{Kind: CollisionStarted, Origin: origin, Target: target}
		if s.started {
			if !slices.Contains(c.colliding, target) {
				c.colliding = append(c.colliding, target)
			}
			c.recent = append(c.recent, target)
		} else {
			evt.Kind = CollisionEnded
			c.colliding = slices.DeleteFunc(c.colliding, func(e donburi.Entity) bool { return e == target })
		}
		CollisionEvents.Publish(w, evt)
	}
	CollisionEvents.ProcessEvents(w)
}

// forget drops e from every contact list, for when e leaves the world.
func (q *collisionQueue) forget(w donburi.World, e donburi.Entity) {
	Contacts.Each(w, func(entry *donburi.Entry) {
		c := Contacts.Get(entry)
		match := func(x donburi.Entity) bool { return x == e }
		c.colliding = slices.DeleteFunc(c.colliding, match)
		c.recent = slices.DeleteFunc(c.recent, match)
	})
}
