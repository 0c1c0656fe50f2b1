package scene

import (
	"sync"

	"github.com/phanxgames/grove/native"
)

// Scene owns the node tree and plays the engine role: it assigns instance ids,
// emits tree notifications, and calls frame listeners once per visual frame
// and once per physics frame.
type Scene struct {
	root  *Node
	debug bool

	mu    sync.RWMutex
	nodes map[native.NodeID]*Node

	observers  []native.Observer
	listeners  []native.FrameListener
	collisions []native.CollisionListener

	tweens      []*TweenGroup
	injectQueue []syntheticNotification

	frames        uint64
	physicsFrames uint64

	processBuf []*Node
}

// New creates a new scene with a pre-created root node inside the tree.
func New() *Scene {
	s := &Scene{nodes: make(map[native.NodeID]*Node)}
	s.root = NewNode("root", native.ClassNode)
	s.enterTree(s.root)
	return s
}

// Root returns the scene's root node.
func (s *Scene) Root() *Node {
	return s.root
}

// AddObserver subscribes o to tree notifications.
func (s *Scene) AddObserver(o native.Observer) {
	s.observers = append(s.observers, o)
}

// AddFrameListener registers l to be called at the end of every Process and
// PhysicsProcess.
func (s *Scene) AddFrameListener(l native.FrameListener) {
	s.listeners = append(s.listeners, l)
}

// AddCollisionListener subscribes l to collision signals.
func (s *Scene) AddCollisionListener(l native.CollisionListener) {
	s.collisions = append(s.collisions, l)
}

// Lookup returns the live node with the given id. Safe for concurrent use.
func (s *Scene) Lookup(id native.NodeID) (native.Node, bool) {
	n, ok := s.Node(id)
	if !ok {
		return nil, false
	}
	return n, true
}

// Node is Lookup with the concrete type.
func (s *Scene) Node(id native.NodeID) (*Node, bool) {
	s.mu.RLock()
	n := s.nodes[id]
	s.mu.RUnlock()
	if n == nil || n.IsFreed() {
		return nil, false
	}
	return n, true
}

// Walk visits every node in the tree in pre-order.
func (s *Scene) Walk(fn func(native.Node) bool) {
	walk(s.root, func(n *Node) bool { return fn(n) })
}

// Frames returns the number of completed Process calls.
func (s *Scene) Frames() uint64 { return s.frames }

// PhysicsFrames returns the number of completed PhysicsProcess calls.
func (s *Scene) PhysicsFrames() uint64 { return s.physicsFrames }

// Process advances one visual frame: injected notifications, tweens, node
// OnProcess callbacks, world transforms, then frame listeners.
func (s *Scene) Process(dt float64) {
	s.processInjected()
	s.updateTweens(float32(dt))

	for _, n := range s.snapshot() {
		if n.OnProcess != nil && !n.IsFreed() {
			n.OnProcess(dt)
		}
	}
	updateWorldTransform(s.root, identityTransform, false)

	for _, l := range s.listeners {
		l.Process(dt)
	}
	s.frames++
}

// PhysicsProcess advances one physics frame: body velocities are integrated,
// OnPhysicsProcess callbacks run, then frame listeners.
func (s *Scene) PhysicsProcess(dt float64) {
	s.processInjected()

	for _, n := range s.snapshot() {
		if n.IsFreed() {
			continue
		}
		integrate(n, dt)
		if n.OnPhysicsProcess != nil {
			n.OnPhysicsProcess(dt)
		}
	}

	for _, l := range s.listeners {
		l.PhysicsProcess(dt)
	}
	s.physicsFrames++
}

// EmitCollision delivers a body/area entered (started) or exited signal.
func (s *Scene) EmitCollision(origin, target *Node, started bool) {
	for _, l := range s.collisions {
		l.Collision(origin, target, started)
	}
}

// SetDebugMode enables or disables debug mode. When enabled, use of freed
// nodes in tree operations panics and tree depth and child count warnings are
// printed to stderr.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply.
var globalDebug bool

// integrate applies velocity for physics body classes.
func integrate(n *Node, dt float64) {
	switch {
	case n.IsClass(native.ClassPhysicsBody2D):
		if n.Velocity != (native.Vec2{}) {
			n.X += n.Velocity.X * dt
			n.Y += n.Velocity.Y * dt
			n.transformDirty = true
		}
	case n.IsClass(native.ClassPhysicsBody3D):
		if n.Velocity3 != (native.Vec3{}) {
			n.Position3 = n.Position3.Add(n.Velocity3.Scale(dt))
		}
	}
}

// snapshot collects the tree in pre-order so callbacks may mutate it.
func (s *Scene) snapshot() []*Node {
	s.processBuf = s.processBuf[:0]
	walk(s.root, func(n *Node) bool {
		s.processBuf = append(s.processBuf, n)
		return true
	})
	return s.processBuf
}

// enterTree attaches a subtree to the scene, parents before children.
func (s *Scene) enterTree(n *Node) {
	n.owner = s
	n.inTree = true
	s.mu.Lock()
	s.nodes[n.id] = n
	s.mu.Unlock()
	for _, o := range s.observers {
		o.NodeAdded(n)
	}
	for _, child := range n.children {
		s.enterTree(child)
	}
}

// exitTree detaches a subtree from the scene, children before parents. Nodes
// stay resolvable until freed.
func (s *Scene) exitTree(n *Node) {
	for i := len(n.children) - 1; i >= 0; i-- {
		s.exitTree(n.children[i])
	}
	for _, o := range s.observers {
		o.NodeRemoved(n)
	}
	n.inTree = false
}

func (s *Scene) notifyRenamed(n *Node, old string) {
	for _, o := range s.observers {
		o.NodeRenamed(n, old)
	}
}

func (s *Scene) forget(n *Node) {
	s.mu.Lock()
	delete(s.nodes, n.id)
	s.mu.Unlock()
}
