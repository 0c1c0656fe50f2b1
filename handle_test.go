package grove

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/grove/native"
	"github.com/phanxgames/grove/scene"
)

type notANode interface{ NotANode() }

func TestHandleResolveLifecycle(t *testing.T) {
	s := scene.New()
	n := scene.NewNode2D("hero")
	s.Root().AddChild(n)

	h := NewNodeHandle(s, n.InstanceID())
	assert.False(t, h.IsZero())
	assert.Equal(t, n.InstanceID(), h.ID())

	got, ok := h.Resolve()
	require.True(t, ok)
	assert.Same(t, n, got.(*scene.Node))

	n.Free()
	_, ok = h.Resolve()
	assert.False(t, ok, "freed node must not resolve")

	// A fresh handle without a cached node goes through the tree.
	_, ok = NewNodeHandle(s, n.InstanceID()).Resolve()
	assert.False(t, ok)
}

func TestHandleSurvivesRemovalUntilFreed(t *testing.T) {
	s := scene.New()
	n := scene.NewNode2D("detached")
	s.Root().AddChild(n)
	h := NewNodeHandle(s, n.InstanceID())

	n.RemoveFromParent()
	_, ok := h.Resolve()
	assert.True(t, ok, "a removed node is still alive")

	n.Free()
	_, ok = h.Resolve()
	assert.False(t, ok)
}

func TestZeroHandle(t *testing.T) {
	var h NodeHandle
	assert.True(t, h.IsZero())
	_, ok := h.Resolve()
	assert.False(t, ok)
	assert.True(t, h.Equal(NodeHandle{}))
}

func TestHandleEqual(t *testing.T) {
	s := scene.New()
	other := scene.New()
	a := NewNodeHandle(s, 7)
	assert.True(t, a.Equal(NewNodeHandle(s, 7)))
	assert.False(t, a.Equal(NewNodeHandle(s, 8)))
	assert.False(t, a.Equal(NewNodeHandle(other, 7)))

	b := a
	assert.Equal(t, a, b, "copies share the cache and compare equal")
}

func TestResolveGeneric(t *testing.T) {
	s := scene.New()
	n := scene.NewSprite2D("sprite")
	s.Root().AddChild(n)
	h := NewNodeHandle(s, n.InstanceID())

	node, ok := Resolve[*scene.Node](h)
	require.True(t, ok)
	assert.Equal(t, "sprite", node.Name())

	spatial, ok := Resolve[native.Spatial2D](h)
	require.True(t, ok)
	assert.Equal(t, native.IdentityTransform2D, spatial.Transform2D())

	_, ok = Resolve[notANode](h)
	assert.False(t, ok)

	n.Free()
	_, ok = Resolve[*scene.Node](h)
	assert.False(t, ok, "must not panic or resolve after free")
}

func TestGetPanicsWithContractViolation(t *testing.T) {
	s := scene.New()
	n := scene.NewNode2D("gone")
	s.Root().AddChild(n)
	h := NewNodeHandle(s, n.InstanceID())

	assert.NotPanics(t, func() { _ = Get[*scene.Node](h) })

	cv := recoverViolation(t, func() { _ = Get[notANode](h) })
	assert.Equal(t, n.InstanceID(), cv.NodeID)
	assert.Contains(t, cv.Reason, "Node2D")

	n.Free()
	cv = recoverViolation(t, func() { _ = Get[*scene.Node](h) })
	assert.Equal(t, "Get", cv.Op)
	assert.True(t, IsContractViolation(cv))
}

func TestResolveClass(t *testing.T) {
	s := scene.New()
	body := scene.NewCharacterBody2D("body")
	s.Root().AddChild(body)
	h := NewNodeHandle(s, body.InstanceID())

	_, ok := ResolveClass(h, native.ClassPhysicsBody2D)
	assert.True(t, ok)
	_, ok = ResolveClass(h, native.ClassNode3D)
	assert.False(t, ok)
}

func TestConcurrentResolve(t *testing.T) {
	s := scene.New()
	n := scene.NewNode2D("shared")
	s.Root().AddChild(n)
	h := NewNodeHandle(s, n.InstanceID())

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				if got, ok := h.Resolve(); !ok || got.InstanceID() != n.InstanceID() {
					t.Errorf("resolve failed: %v %v", got, ok)
					return
				}
			}
		}()
	}
	wg.Wait()
}
