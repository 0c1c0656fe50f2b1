package grove

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/phanxgames/grove/native"
)

// NodeHandle is a non-owning reference to an engine node. It stores the
// instance id and resolves it through the tree on demand, so it never keeps a
// freed node reachable as if it were alive.
//
// Copies share one resolution cache. The registry issues a single handle per
// node, so handles read from the Handle component compare equal with ==.
type NodeHandle struct {
	id    native.NodeID
	tree  native.Tree
	cache *handleCache
}

type handleCache struct {
	node atomic.Pointer[nodeBox]
}

type nodeBox struct {
	node native.Node
}

// NewNodeHandle returns a handle for id in tree.
func NewNodeHandle(tree native.Tree, id native.NodeID) NodeHandle {
	return NodeHandle{id: id, tree: tree, cache: &handleCache{}}
}

// handleFor builds a handle with the cache already populated.
func handleFor(tree native.Tree, n native.Node) NodeHandle {
	h := NewNodeHandle(tree, n.InstanceID())
	h.cache.node.Store(&nodeBox{node: n})
	return h
}

// ID returns the node's instance id.
func (h NodeHandle) ID() native.NodeID { return h.id }

// IsZero reports whether h is the zero handle.
func (h NodeHandle) IsZero() bool { return h.id == 0 || h.tree == nil }

// Equal reports whether h and o refer to the same node of the same tree.
func (h NodeHandle) Equal(o NodeHandle) bool {
	return h.id == o.id && h.tree == o.tree
}

func (h NodeHandle) String() string {
	return fmt.Sprintf("NodeHandle(%d)", h.id)
}

// Resolve returns the live node, or false if it has been freed or was never
// part of the tree. It is safe to call from parallel systems.
func (h NodeHandle) Resolve() (native.Node, bool) {
	if h.IsZero() {
		return nil, false
	}
	if h.cache != nil {
		if b := h.cache.node.Load(); b != nil {
			// Ids are never reused, so a freed cached node settles it.
			if b.node.IsFreed() {
				return nil, false
			}
			return b.node, true
		}
	}
	n, ok := h.tree.Lookup(h.id)
	if !ok || native.IsNil(n) {
		return nil, false
	}
	if h.cache != nil {
		h.cache.node.CompareAndSwap(nil, &nodeBox{node: n})
	}
	return n, true
}

// Resolve returns the live node behind h as a T.
func Resolve[T any](h NodeHandle) (T, bool) {
	var zero T
	n, ok := h.Resolve()
	if !ok {
		return zero, false
	}
	t, ok := n.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// Get returns the node behind h as a T. Use it only where a marker query has
// already established that the node exists and has the right class; it panics
// with a *ContractViolation otherwise.
func Get[T any](h NodeHandle) T {
	n, ok := h.Resolve()
	if !ok {
		panic(&ContractViolation{Op: "Get", NodeID: h.id, Reason: "node is freed or not in the tree"})
	}
	t, ok := n.(T)
	if !ok {
		panic(&ContractViolation{
			Op:     "Get",
			NodeID: h.id,
			Reason: fmt.Sprintf("node of class %s is not a %s", n.Class(), reflect.TypeFor[T]()),
		})
	}
	return t
}

// ResolveClass returns the live node if its class chain contains class.
func ResolveClass(h NodeHandle, class native.Class) (native.Node, bool) {
	n, ok := h.Resolve()
	if !ok || !native.HasClass(n.ClassChain(), class) {
		return nil, false
	}
	return n, true
}
