// Package native describes the host engine surface that grove talks to.
//
// The host owns every node. grove only holds instance ids and resolves them on
// demand through a [Tree], so nothing in this package implies ownership.
package native

import "reflect"

// NodeID is the engine-assigned instance id of a node. Zero is never a valid id.
type NodeID uint64

// Class names a node type in the engine's class hierarchy.
type Class string

// Node is the read side of a native scene node.
type Node interface {
	// InstanceID returns the engine-assigned id. It stays readable after free.
	InstanceID() NodeID
	// Class returns the most specific class of the node.
	Class() Class
	// ClassChain returns the class hierarchy from the most specific class up to
	// and including ClassNode.
	ClassChain() []Class
	// Name returns the node's current name in its parent.
	Name() string
	// IsFreed reports whether the engine has freed the node.
	IsFreed() bool
	// Field returns an exposed property or metadata value by name.
	Field(name string) (any, bool)
}

// Spatial2D is implemented by nodes carrying a 2D local transform.
type Spatial2D interface {
	Node
	Transform2D() Transform2D
	SetTransform2D(t Transform2D)
}

// Spatial3D is implemented by nodes carrying a 3D local transform.
type Spatial3D interface {
	Node
	Transform3D() Transform3D
	SetTransform3D(t Transform3D)
}

// Tree resolves instance ids to live nodes. Lookup must be safe for
// concurrent readers.
type Tree interface {
	// Lookup returns the node for id, or false if it was never created by this
	// tree or has been freed.
	Lookup(id NodeID) (Node, bool)
	// Walk visits every node currently in the tree in pre-order. Returning
	// false from fn stops the walk.
	Walk(fn func(Node) bool)
}

// Observer receives scene tree notifications. The engine calls these from its
// main thread while it mutates the tree.
type Observer interface {
	NodeAdded(n Node)
	NodeRemoved(n Node)
	NodeRenamed(n Node, oldName string)
}

// FrameListener is called once per visual frame and once per physics frame
// with the elapsed time in seconds.
type FrameListener interface {
	Process(delta float64)
	PhysicsProcess(delta float64)
}

// CollisionListener receives body/area entered and exited signals.
type CollisionListener interface {
	Collision(origin, target Node, started bool)
}

// Host is everything grove needs from an engine instance.
type Host interface {
	Tree
	AddObserver(o Observer)
	AddFrameListener(l FrameListener)
	AddCollisionListener(l CollisionListener)
}

// IsNil reports whether n is nil or wraps a nil pointer, such as a
// (*T)(nil) stored in a Node.
func IsNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}
