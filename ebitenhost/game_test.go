package ebitenhost

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/grove/scene"
)

func TestUpdateAdvancesPhysicsFrame(t *testing.T) {
	s := scene.New()
	g := NewGame(s, 320, 240)
	calls := 0
	g.OnUpdate = func() error { calls++; return nil }

	require.NoError(t, g.Update())
	require.NoError(t, g.Update())
	assert.Equal(t, uint64(2), s.PhysicsFrames())
	assert.Zero(t, s.Frames())
	assert.Equal(t, 2, calls)
}

func TestUpdateStopsOnCallbackError(t *testing.T) {
	g := NewGame(scene.New(), 320, 240)
	stop := errors.New("stop")
	g.OnUpdate = func() error { return stop }
	assert.ErrorIs(t, g.Update(), stop)
}

func TestLayoutIsFixed(t *testing.T) {
	g := NewGame(scene.New(), 640, 480)
	w, h := g.Layout(1920, 1080)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}

func TestRunRejectsEmptyScreen(t *testing.T) {
	assert.Error(t, Run(scene.New(), RunConfig{Title: "x"}, nil))
}
