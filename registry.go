package grove

import (
	"slices"
	"sync"

	"github.com/go-logr/logr"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/component"
	"github.com/yohamta/donburi/filter"

	"github.com/phanxgames/grove/native"
)

// RegisterHook runs after an entity has been created for node.
type RegisterHook func(entry *donburi.Entry, node native.Node)

// UnregisterHook runs before a registered entity is removed from the world.
type UnregisterHook func(entity donburi.Entity, id native.NodeID)

// Registry maps engine nodes to entities, one entity per node.
//
// Register and Unregister change the world's structure and must run on the
// driver goroutine. Lookups are safe from parallel systems.
type Registry struct {
	world   donburi.World
	tree    native.Tree
	log     logr.Logger
	metrics *Metrics

	mu       sync.RWMutex
	byNode   map[native.NodeID]donburi.Entity
	byEntity map[donburi.Entity]NodeHandle
	stale    map[donburi.Entity]struct{}

	onRegister   []RegisterHook
	onUnregister []UnregisterHook
}

// NewRegistry creates an empty registry for nodes of tree. metrics may be nil.
func NewRegistry(world donburi.World, tree native.Tree, log logr.Logger, metrics *Metrics) *Registry {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	r := &Registry{
		world:    world,
		tree:     tree,
		log:      log,
		metrics:  metrics,
		byNode:   make(map[native.NodeID]donburi.Entity),
		byEntity: make(map[donburi.Entity]NodeHandle),
		stale:    make(map[donburi.Entity]struct{}),
	}
	world.OnRemove(r.worldRemoved)
	return r
}

// OnRegister adds a hook run for every new registration.
func (r *Registry) OnRegister(h RegisterHook) { r.onRegister = append(r.onRegister, h) }

// OnUnregister adds a hook run before every unregistration.
func (r *Registry) OnUnregister(h UnregisterHook) { r.onUnregister = append(r.onUnregister, h) }

// Register returns the entity for n, creating it on first sight. The entity
// gets the Handle and Name components and one marker per class in n's class
// chain. Registering the same node again returns the same entity and adds
// nothing.
func (r *Registry) Register(n native.Node) (donburi.Entity, error) {
	if native.IsNil(n) {
		return donburi.Null, &ContractViolation{Op: "Register", Reason: "nil node"}
	}
	id := n.InstanceID()
	if id == 0 {
		return donburi.Null, &ContractViolation{Op: "Register", Reason: "node has no instance id"}
	}
	if n.IsFreed() {
		return donburi.Null, &ContractViolation{Op: "Register", NodeID: id, Reason: "node is freed"}
	}

	r.mu.RLock()
	e, ok := r.byNode[id]
	r.mu.RUnlock()
	if ok && r.world.Valid(e) {
		return e, nil
	}

	e = r.world.Create(componentsFor(n.ClassChain())...)
	entry := r.world.Entry(e)
	h := handleFor(r.tree, n)
	Handle.SetValue(entry, h)
	Name.SetValue(entry, NodeName(n.Name()))

	r.mu.Lock()
	r.byNode[id] = e
	r.byEntity[e] = h
	count := len(r.byNode)
	r.mu.Unlock()

	for _, hook := range r.onRegister {
		hook(entry, n)
	}
	r.metrics.Registrations.Inc()
	r.metrics.RegisteredEntities.Set(float64(count))
	r.log.V(1).Info("registered node", "node", id, "name", n.Name(), "class", n.Class(), "entity", e.Id())
	return e, nil
}

func componentsFor(chain []native.Class) []component.IComponentType {
	comps := make([]component.IComponentType, 0, len(chain)+3)
	comps = append(comps, Handle, Name)
	for _, class := range chain {
		m := Marker(class)
		if !slices.Contains(comps, component.IComponentType(m)) {
			comps = append(comps, m)
		}
	}
	if !slices.Contains(comps, component.IComponentType(NodeMarker)) {
		comps = append(comps, NodeMarker)
	}
	return comps
}

// Unregister removes e from the registry and the world. It reports whether e
// was registered.
func (r *Registry) Unregister(e donburi.Entity) bool {
	h, ok := r.drop(e)
	if !ok {
		return false
	}
	// Dropped first, so the world's remove callback finds nothing to do.
	if r.world.Valid(e) {
		r.world.Remove(e)
	}
	r.log.V(1).Info("unregistered node", "node", h.id, "entity", e.Id())
	return true
}

// worldRemoved keeps the maps in step when application code removes a
// scene-tree entity from the world directly. The node stays in the tree.
func (r *Registry) worldRemoved(_ donburi.World, e donburi.Entity) {
	if h, ok := r.drop(e); ok {
		r.log.V(1).Info("entity removed from the world", "node", h.id, "entity", e.Id())
	}
}

// drop deletes e's record and runs the unregister hooks while e is still
// in the world.
func (r *Registry) drop(e donburi.Entity) (NodeHandle, bool) {
	r.mu.Lock()
	h, ok := r.byEntity[e]
	if ok {
		delete(r.byEntity, e)
		if r.byNode[h.id] == e {
			delete(r.byNode, h.id)
		}
		delete(r.stale, e)
	}
	count := len(r.byNode)
	r.mu.Unlock()
	if !ok {
		return h, false
	}

	for _, hook := range r.onUnregister {
		hook(e, h.id)
	}
	r.metrics.Unregistrations.Inc()
	r.metrics.RegisteredEntities.Set(float64(count))
	return h, true
}

// UnregisterNode removes the entity registered for id, if any.
func (r *Registry) UnregisterNode(id native.NodeID) (donburi.Entity, bool) {
	e, ok := r.Entity(id)
	if !ok {
		return donburi.Null, false
	}
	return e, r.Unregister(e)
}

// Entity returns the entity registered for the node id.
func (r *Registry) Entity(id native.NodeID) (donburi.Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byNode[id]
	return e, ok
}

// Handle returns the node handle of a registered entity.
func (r *Registry) Handle(e donburi.Entity) (NodeHandle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.byEntity[e]
	return h, ok
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byNode)
}

// Entities returns a snapshot of the registered entities.
func (r *Registry) Entities() []donburi.Entity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]donburi.Entity, 0, len(r.byEntity))
	for e := range r.byEntity {
		out = append(out, e)
	}
	return out
}

// markStale records that e's node could not be resolved. The next topology
// pass confirms and unregisters it.
func (r *Registry) markStale(e donburi.Entity) {
	r.mu.Lock()
	if _, ok := r.byEntity[e]; ok {
		r.stale[e] = struct{}{}
	}
	r.mu.Unlock()
}

// sweepStale unregisters stale candidates whose node is really gone and
// returns how many it removed.
func (r *Registry) sweepStale() int {
	r.mu.Lock()
	if len(r.stale) == 0 {
		r.mu.Unlock()
		return 0
	}
	candidates := make([]donburi.Entity, 0, len(r.stale))
	for e := range r.stale {
		candidates = append(candidates, e)
	}
	clear(r.stale)
	r.mu.Unlock()

	removed := 0
	for _, e := range candidates {
		h, ok := r.Handle(e)
		if !ok {
			continue
		}
		if _, live := h.tree.Lookup(h.id); live {
			continue
		}
		if r.Unregister(e) {
			removed++
			r.metrics.StaleHandles.Inc()
		}
	}
	return removed
}

var namedQuery = donburi.NewQuery(filter.Contains(Handle, Name))

// FindEntityByName returns the first scene-tree entity whose node is named
// name. Names are not unique; with duplicates the match is arbitrary.
func FindEntityByName(w donburi.World, name string) (donburi.Entity, bool) {
	found := donburi.Null
	namedQuery.Each(w, func(entry *donburi.Entry) {
		if found == donburi.Null && string(Name.GetValue(entry)) == name {
			found = entry.Entity()
		}
	})
	return found, found != donburi.Null
}
