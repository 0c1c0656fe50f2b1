package grove

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/grove/scene"
)

func dropped(h *harness, reason string) float64 {
	return testutil.ToFloat64(h.app.Metrics().DroppedNotifications.WithLabelValues(reason))
}

func TestWatcherRegistersOnEnter(t *testing.T) {
	h := newHarness(t)
	events := treeEvents(h.world())

	n := h.add(scene.NewNode2D("player"))
	assert.False(t, h.registered(n), "registration waits for the next topology pass")
	assert.Equal(t, 1+1, h.app.Watcher().Pending(), "root from Prime plus the new node")

	h.frame()
	require.True(t, h.registered(n))
	assert.Zero(t, h.app.Watcher().Pending())
	require.Len(t, *events, 2)
	last := (*events)[1]
	assert.Equal(t, NodeEntered, last.Kind)
	assert.Equal(t, n.InstanceID(), last.Node)
	assert.Equal(t, h.entity(n), last.Entity)
	assert.Equal(t, "player", last.Name)
}

func TestPrimeRegistersExistingTree(t *testing.T) {
	s := scene.New()
	parent := scene.NewNode2D("parent")
	child := scene.NewSprite2D("child")
	parent.AddChild(child)
	s.Root().AddChild(parent)

	app, err := NewApp()
	require.NoError(t, err)
	require.NoError(t, app.Attach(s))
	assert.Equal(t, 3, app.Watcher().Pending())

	s.Process(frameDelta)
	assert.Equal(t, 3, app.Registry().Len())
	_, ok := app.Registry().Entity(child.InstanceID())
	assert.True(t, ok)
}

func TestSubtreeEnterAndExit(t *testing.T) {
	h := newHarness(t)
	parent := scene.NewNode2D("parent")
	a := scene.NewNode2D("a")
	b := scene.NewNode2D("b")
	parent.AddChild(a)
	a.AddChild(b)
	h.add(parent)
	h.frame()
	require.Equal(t, 4, h.app.Registry().Len())

	parent.Free()
	h.frame()
	assert.Equal(t, 1, h.app.Registry().Len(), "only the root is left")
	assert.False(t, h.registered(b))
}

func TestRenameUpdatesName(t *testing.T) {
	h := newHarness(t)
	n := h.add(scene.NewNode2D("before"))
	h.frame()
	events := treeEvents(h.world())

	n.SetName("after")
	h.frame()

	assert.Equal(t, NodeName("after"), Name.GetValue(h.entry(n)))
	require.Len(t, *events, 1)
	assert.Equal(t, NodeRenamed, (*events)[0].Kind)
	assert.Equal(t, "before", (*events)[0].OldName)
	assert.Equal(t, "after", (*events)[0].Name)

	e, ok := FindEntityByName(h.world(), "after")
	require.True(t, ok)
	assert.Equal(t, h.entity(n), e)
}

func TestAddedAndFreedInOneBatch(t *testing.T) {
	h := newHarness(t)
	h.frame()
	events := treeEvents(h.world())

	n := h.add(scene.NewNode2D("blink"))
	n.Free()
	h.frame()

	require.Len(t, *events, 2)
	assert.Equal(t, NodeEntered, (*events)[0].Kind)
	assert.Equal(t, NodeExited, (*events)[1].Kind)
	assert.False(t, h.registered(n))
	assert.Equal(t, 1, h.app.Registry().Len())
}

func TestAddedAndRemovedInOneBatch(t *testing.T) {
	h := newHarness(t)
	h.frame()
	events := treeEvents(h.world())

	n := h.add(scene.NewNode2D("visitor"))
	n.RemoveFromParent()
	h.frame()

	require.Len(t, *events, 2)
	entered, exited := (*events)[0], (*events)[1]
	assert.Equal(t, entered.Entity, exited.Entity)
	assert.False(t, h.world().Valid(exited.Entity))
	assert.False(t, h.registered(n))
}

func TestReparentKeepsNodeRegistered(t *testing.T) {
	h := newHarness(t)
	a := h.add(scene.NewNode2D("a"))
	b := h.add(scene.NewNode2D("b"))
	child := scene.NewNode2D("child")
	a.AddChild(child)
	h.frame()

	b.AddChild(child)
	h.frame()

	require.True(t, h.registered(child))
	node, ok := Handle.GetValue(h.entry(child)).Resolve()
	require.True(t, ok)
	assert.Same(t, child, node.(*scene.Node))
}

func TestMalformedNotificationsAreDropped(t *testing.T) {
	h := newHarness(t)
	h.frame()
	before := h.app.Registry().Len()

	other := scene.New()
	foreign := scene.NewNode2D("foreign")
	other.Root().AddChild(foreign)

	freed := h.add(scene.NewNode2D("freed"))
	h.frame()
	freed.Free()
	h.frame()

	h.scene.InjectAdded(nil)
	h.scene.InjectAdded((*scene.Node)(nil))
	h.scene.InjectRemoved((*scene.Node)(nil))
	h.scene.InjectAdded(&fakeNode{})
	h.scene.InjectAdded(foreign)
	h.scene.InjectRenamed(foreign, "x")
	h.scene.InjectAdded(freed)
	h.frame()

	assert.Equal(t, float64(3), dropped(h, dropNilNode))
	assert.Equal(t, float64(1), dropped(h, dropZeroID))
	assert.Equal(t, float64(2), dropped(h, dropForeign))
	assert.Equal(t, float64(1), dropped(h, dropFreed))
	assert.Equal(t, before, h.app.Registry().Len())
	assert.False(t, h.registered(foreign))
}

func TestFreedRemovalIsAccepted(t *testing.T) {
	h := newHarness(t)
	n := h.add(scene.NewNode2D("n"))
	h.frame()
	e := h.entity(n)

	// An engine that reports the exit only after freeing.
	n.RemoveFromParent()
	h.app.Watcher().drain()
	n.Free()
	h.scene.InjectRemoved(n)
	h.frame()

	assert.False(t, h.world().Valid(e))
	assert.Zero(t, dropped(h, dropFreed))
}
