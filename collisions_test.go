package grove

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"

	"github.com/phanxgames/grove/scene"
)

func contacts(h *harness, n *scene.Node) Collisions {
	return Contacts.GetValue(h.entry(n))
}

func TestCollisionObjectsGetContacts(t *testing.T) {
	h := newHarness(t)
	area := h.add(scene.NewArea2D("area"))
	body := h.add(scene.NewRigidBody3D("body"))
	plain := h.add(scene.NewSprite2D("plain"))
	h.frame()

	assert.True(t, h.entry(area).HasComponent(Contacts))
	assert.True(t, h.entry(body).HasComponent(Contacts))
	assert.False(t, h.entry(plain).HasComponent(Contacts))
}

func TestCollisionLifecycle(t *testing.T) {
	h := newHarness(t)
	area := h.add(scene.NewArea2D("area"))
	body := h.add(scene.NewCharacterBody2D("body"))
	h.frame()
	bodyE := h.entity(body)

	var got []CollisionEvent
	CollisionEvents.Subscribe(h.world(), func(_ donburi.World, e CollisionEvent) {
		got = append(got, e)
	})

	h.scene.EmitCollision(area, body, true)
	h.scene.Process(frameDelta)
	assert.Empty(t, contacts(h, area).Colliding(), "applied at physics cadence")

	h.scene.PhysicsProcess(frameDelta)
	c := contacts(h, area)
	assert.Equal(t, []donburi.Entity{bodyE}, c.Colliding())
	assert.Equal(t, []donburi.Entity{bodyE}, c.Recent())
	assert.True(t, c.IsColliding(bodyE))
	require.Len(t, got, 1)
	assert.Equal(t, CollisionEvent{Kind: CollisionStarted, Origin: h.entity(area), Target: bodyE}, got[0])

	h.scene.PhysicsProcess(frameDelta)
	c = contacts(h, area)
	assert.Empty(t, c.Recent(), "recent is reset every physics frame")
	assert.True(t, c.IsColliding(bodyE))

	h.scene.EmitCollision(area, body, false)
	h.scene.PhysicsProcess(frameDelta)
	assert.Empty(t, contacts(h, area).Colliding())
	require.Len(t, got, 2)
	assert.Equal(t, CollisionEnded, got[1].Kind)
}

func TestCollisionWithUnregisteredNodeIsSkipped(t *testing.T) {
	h := newHarness(t)
	area := h.add(scene.NewArea2D("area"))
	h.frame()

	stranger := scene.NewCharacterBody2D("stranger")
	h.scene.EmitCollision(area, stranger, true)
	h.scene.PhysicsProcess(frameDelta)

	assert.Empty(t, contacts(h, area).Colliding())
}

func TestFreedContactIsForgotten(t *testing.T) {
	h := newHarness(t)
	area := h.add(scene.NewArea2D("area"))
	body := h.add(scene.NewCharacterBody2D("body"))
	h.frame()

	h.scene.EmitCollision(area, body, true)
	h.frame()
	require.Len(t, contacts(h, area).Colliding(), 1)

	body.Free()
	h.frame()
	assert.Empty(t, contacts(h, area).Colliding())
}

func TestNilCollisionSignalIsDropped(t *testing.T) {
	h := newHarness(t)
	area := h.add(scene.NewArea2D("area"))
	h.frame()

	h.scene.EmitCollision(area, (*scene.Node)(nil), true)
	h.scene.EmitCollision((*scene.Node)(nil), area, false)
	h.scene.PhysicsProcess(frameDelta)

	assert.Empty(t, contacts(h, area).Colliding())
	assert.Equal(t, float64(2), dropped(h, dropNilNode))
}

func TestRemovedEntityLeavesContacts(t *testing.T) {
	h := newHarness(t)
	area := h.add(scene.NewArea2D("area"))
	body := h.add(scene.NewCharacterBody2D("body"))
	h.frame()

	h.scene.EmitCollision(area, body, true)
	h.frame()
	require.Len(t, contacts(h, area).Colliding(), 1)

	h.world().Remove(h.entity(body))
	assert.Empty(t, contacts(h, area).Colliding())
	assert.False(t, h.registered(body))
	assert.Equal(t, float64(2), testutil.ToFloat64(h.app.Metrics().RegisteredEntities))
}
