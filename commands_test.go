package grove

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"

	"github.com/phanxgames/grove/scene"
	"github.com/phanxgames/grove/schedule"
)

func TestDespawnAppliesAtNextTopology(t *testing.T) {
	h := newHarness(t)
	n := h.add(scene.NewNode2D("victim"))
	h.frame()
	e := h.entity(n)

	h.app.AddSystem(schedule.Update, schedule.System{
		Name: "despawn",
		Run: func(w donburi.World) error {
			if w.Valid(e) {
				h.app.Commands().Despawn(e)
			}
			return nil
		},
		Parallel: true,
	})

	h.scene.Process(frameDelta)
	assert.True(t, h.world().Valid(e), "queued, not applied")
	assert.Equal(t, 1, h.app.Commands().Len())

	h.scene.PhysicsProcess(frameDelta)
	assert.False(t, h.world().Valid(e))
	assert.False(t, h.registered(n))
	assert.False(t, n.IsFreed(), "the node is left to the engine")
}

func TestDespawnPlainEntity(t *testing.T) {
	h := newHarness(t)
	e := h.world().Create(healthComponent)
	h.app.Commands().Despawn(e)
	h.frame()
	assert.False(t, h.world().Valid(e))
}

func TestPushedCommandsRunInOrder(t *testing.T) {
	h := newHarness(t)
	var got []int
	c := h.app.Commands()
	c.Push(func(donburi.World) { got = append(got, 1) })
	c.Push(func(donburi.World) {
		got = append(got, 2)
		c.Push(func(donburi.World) { got = append(got, 3) })
	})
	h.scene.Process(frameDelta)
	require.Equal(t, []int{1, 2, 3}, got)
	assert.Zero(t, c.Len())
}
