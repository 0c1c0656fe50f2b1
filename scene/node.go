package scene

import (
	"fmt"
	"sync/atomic"

	"github.com/phanxgames/grove/native"
)

// --- ID counter ---

// nodeIDCounter hands out instance ids. Ids are never reused, so a stale id can
// never resolve to a different node.
var nodeIDCounter atomic.Uint64

func nextNodeID() native.NodeID {
	return native.NodeID(nodeIDCounter.Add(1))
}

// --- Node ---

// Node is the fundamental scene graph element. A single flat struct is used for
// all node classes; the class chain decides which fields are meaningful.
type Node struct {
	// Identity
	id    native.NodeID
	name  string
	class native.Class
	chain []native.Class

	// Hierarchy
	Parent   *Node
	children []*Node

	// owner is the scene the node first entered; it keeps the id resolvable
	// after the node leaves the tree and until it is freed.
	owner  *Scene
	inTree bool

	// Transform (local, 2D classes)
	X, Y     float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64

	// Transform (local, 3D classes)
	Position3 native.Vec3
	Rotation3 native.Quat
	Scale3    native.Vec3

	// Velocity is integrated every physics frame for physics body classes.
	Velocity  native.Vec2
	Velocity3 native.Vec3

	// Computed during Process
	worldTransform [6]float64
	transformDirty bool

	// Metadata
	UserData any
	meta     map[string]any

	// Per-node callbacks (nil by default)
	OnProcess        func(dt float64)
	OnPhysicsProcess func(dt float64)

	freed atomic.Bool
}

// NewNode creates a detached node of the given class.
// Panics if the class is unknown.
func NewNode(name string, class native.Class) *Node {
	chain := ClassChain(class)
	if chain == nil {
		panic(fmt.Sprintf("scene: unknown class %q", class))
	}
	n := &Node{
		id:             nextNodeID(),
		name:           name,
		class:          class,
		chain:          chain,
		ScaleX:         1,
		ScaleY:         1,
		Rotation3:      native.QuatIdentity,
		Scale3:         native.Vec3{X: 1, Y: 1, Z: 1},
		transformDirty: true,
	}
	return n
}

// NewNode2D creates a plain 2D node.
func NewNode2D(name string) *Node { return NewNode(name, native.ClassNode2D) }

// NewSprite2D creates a sprite node.
func NewSprite2D(name string) *Node { return NewNode(name, native.ClassSprite2D) }

// NewCharacterBody2D creates a kinematic body whose Velocity is integrated at
// physics cadence.
func NewCharacterBody2D(name string) *Node { return NewNode(name, native.ClassCharacterBody2D) }

// NewArea2D creates a 2D area that can emit collision signals.
func NewArea2D(name string) *Node { return NewNode(name, native.ClassArea2D) }

// NewNode3D creates a plain 3D node.
func NewNode3D(name string) *Node { return NewNode(name, native.ClassNode3D) }

// NewRigidBody3D creates a 3D body whose Velocity3 is integrated at physics
// cadence.
func NewRigidBody3D(name string) *Node { return NewNode(name, native.ClassRigidBody3D) }

// --- native.Node ---

// InstanceID returns the node's engine id. It stays valid after Free.
func (n *Node) InstanceID() native.NodeID { return n.id }

// Class returns the node's most specific class.
func (n *Node) Class() native.Class { return n.class }

// ClassChain returns the class hierarchy from the node's class up to Node.
// The returned slice MUST NOT be mutated.
func (n *Node) ClassChain() []native.Class { return n.chain }

// IsClass reports whether the node is an instance of class or a subclass.
func (n *Node) IsClass(class native.Class) bool { return native.HasClass(n.chain, class) }

// Name returns the node's name.
func (n *Node) Name() string { return n.name }

// SetName renames the node, notifying observers if the node is in a tree.
func (n *Node) SetName(name string) {
	if n.name == name {
		return
	}
	old := n.name
	n.name = name
	if n.inTree {
		n.owner.notifyRenamed(n, old)
	}
}

// IsFreed reports whether Free has been called on this node or an ancestor.
func (n *Node) IsFreed() bool { return n.freed.Load() }

// IsInsideTree reports whether the node is attached under a scene root.
func (n *Node) IsInsideTree() bool { return n.inTree }

// Field returns a metadata value set with SetMeta.
func (n *Node) Field(name string) (any, bool) {
	v, ok := n.meta[name]
	return v, ok
}

// SetMeta stores a metadata value readable through Field.
func (n *Node) SetMeta(name string, value any) {
	if n.meta == nil {
		n.meta = make(map[string]any)
	}
	n.meta[name] = value
}

// RemoveMeta deletes a metadata value.
func (n *Node) RemoveMeta(name string) {
	delete(n.meta, name)
}

// --- Tree manipulation ---

// AddChild appends child to this node's children.
// If child already has a parent, it is removed from that parent first.
// Panics if child is nil or child is an ancestor of this node (cycle).
func (n *Node) AddChild(child *Node) {
	if child == nil {
		panic("scene: cannot add nil child")
	}
	if globalDebug {
		debugCheckFreed(n, "AddChild (parent)")
		debugCheckFreed(child, "AddChild (child)")
	}
	if isAncestor(child, n) {
		panic("scene: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.children = append(n.children, child)
	markSubtreeDirty(child)
	if n.inTree {
		n.owner.enterTree(child)
	}
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(n)
	}
}

// AddChildAt inserts child at the given index.
// Same reparenting and cycle-check behavior as AddChild.
func (n *Node) AddChildAt(child *Node, index int) {
	if child == nil {
		panic("scene: cannot add nil child")
	}
	if globalDebug {
		debugCheckFreed(n, "AddChildAt (parent)")
		debugCheckFreed(child, "AddChildAt (child)")
	}
	if isAncestor(child, n) {
		panic("scene: adding child would create a cycle")
	}
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	if index < 0 || index > len(n.children) {
		panic("scene: child index out of range")
	}
	child.Parent = n
	n.children = append(n.children, nil)
	copy(n.children[index+1:], n.children[index:])
	n.children[index] = child
	markSubtreeDirty(child)
	if n.inTree {
		n.owner.enterTree(child)
	}
}

// RemoveChild detaches child from this node. The child is not freed.
// Panics if child.Parent != n.
func (n *Node) RemoveChild(child *Node) {
	if globalDebug {
		debugCheckFreed(n, "RemoveChild (parent)")
	}
	if child.Parent != n {
		panic("scene: child's parent is not this node")
	}
	if child.inTree {
		n.owner.exitTree(child)
	}
	n.removeChildByPtr(child)
	child.Parent = nil
	markSubtreeDirty(child)
}

// RemoveFromParent detaches this node from its parent.
// No-op if this node has no parent.
func (n *Node) RemoveFromParent() {
	if n.Parent == nil {
		return
	}
	n.Parent.RemoveChild(n)
}

// RemoveChildren detaches all children from this node.
// Children are NOT freed.
func (n *Node) RemoveChildren() {
	for len(n.children) > 0 {
		n.RemoveChild(n.children[len(n.children)-1])
	}
}

// Children returns the child list. The returned slice MUST NOT be mutated by the caller.
func (n *Node) Children() []*Node {
	return n.children
}

// NumChildren returns the number of children.
func (n *Node) NumChildren() int {
	return len(n.children)
}

// ChildAt returns the child at the given index.
func (n *Node) ChildAt(index int) *Node {
	return n.children[index]
}

// FindChild returns the first direct child with the given name.
func (n *Node) FindChild(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}

// --- Free ---

// Free removes this node from its parent, marks it and all descendants as
// freed, and makes their ids unresolvable. Observers see NodeRemoved for every
// node that was inside the tree before any of them is marked freed.
func (n *Node) Free() {
	if n.IsFreed() {
		return
	}
	n.RemoveFromParent()
	n.free()
}

func (n *Node) free() {
	n.freed.Store(true)
	if n.owner != nil {
		n.owner.forget(n)
	}
	for _, child := range n.children {
		child.Parent = nil
		child.free()
	}
	n.children = nil
	n.Parent = nil
	n.meta = nil
	n.UserData = nil
	n.OnProcess = nil
	n.OnPhysicsProcess = nil
}

// --- Helpers ---

// isAncestor reports whether candidate is an ancestor of node.
func isAncestor(candidate, node *Node) bool {
	for p := node; p != nil; p = p.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// removeChildByPtr removes child from n.children without clearing child.Parent.
// Uses copy+nil to avoid retaining a dangling pointer in the backing array.
func (n *Node) removeChildByPtr(child *Node) {
	for i, c := range n.children {
		if c == child {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// markSubtreeDirty sets transformDirty on node and all its descendants.
func markSubtreeDirty(node *Node) {
	node.transformDirty = true
	for _, child := range node.children {
		markSubtreeDirty(child)
	}
}

// walk visits node and its descendants in pre-order until fn returns false.
func walk(node *Node, fn func(*Node) bool) bool {
	if !fn(node) {
		return false
	}
	for _, child := range node.children {
		if !walk(child, fn) {
			return false
		}
	}
	return true
}
