package grove

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"

	"github.com/phanxgames/grove/native"
	"github.com/phanxgames/grove/scene"
	"github.com/phanxgames/grove/schedule"
)

func TestFreedNodeLeavesRegistry(t *testing.T) {
	h := newHarness(t)
	a := h.add(scene.NewNode2D("A"))
	require.Len(t, a.ClassChain(), 3)
	h.frame()

	e := h.entity(a)
	assert.Len(t, MarkersOf(h.world().Entry(e)), 3)
	handle := Handle.GetValue(h.world().Entry(e))

	a.Free()
	h.scene.PhysicsProcess(frameDelta)
	h.scene.Process(frameDelta)

	_, ok := h.app.Registry().Entity(a.InstanceID())
	assert.False(t, ok)
	assert.False(t, h.world().Valid(e))
	_, ok = handle.Resolve()
	assert.False(t, ok)
}

func TestPhaseOrderAndClock(t *testing.T) {
	h := newHarness(t, WithFixedStep(10*time.Millisecond))
	var (
		mu  sync.Mutex
		got []string
	)
	rec := func(name string) schedule.SystemFunc {
		return func(donburi.World) error {
			mu.Lock()
			got = append(got, name)
			mu.Unlock()
			return nil
		}
	}
	for _, p := range append(append([]schedule.Phase{}, schedule.MainPhases...), schedule.PhysicsPhases...) {
		h.app.AddSystemFunc(p, p.String(), rec(p.String()))
	}

	h.scene.PhysicsProcess(0.02)
	h.scene.Process(0.025)
	assert.Equal(t, []string{
		"PrePhysicsUpdate", "PhysicsUpdate", "PostPhysicsUpdate",
		"First", "PreUpdate", "FixedUpdate", "FixedUpdate", "Update", "PostUpdate", "Last",
	}, got)

	clock := FrameClockOf(h.world())
	assert.Equal(t, uint64(1), clock.Frames)
	assert.Equal(t, uint64(1), clock.PhysicsFrames)
	assert.Equal(t, 25*time.Millisecond, clock.Delta)
	assert.Equal(t, 20*time.Millisecond, clock.PhysicsDelta)
	assert.Equal(t, uint64(2), clock.FixedTicks)
	assert.Equal(t, 10*time.Millisecond, clock.FixedStep)
	assert.InDelta(t, 0.025, clock.DeltaSeconds(), 1e-9)
}

func TestMaxDeltaClampsFixedUpdates(t *testing.T) {
	h := newHarness(t, WithFixedStep(10*time.Millisecond), WithMaxDelta(30*time.Millisecond))
	h.scene.Process(1.0)
	assert.Equal(t, uint64(3), FrameClockOf(h.world()).FixedTicks)
	assert.Equal(t, time.Second, FrameClockOf(h.world()).Delta, "the clock reports the real delta")
}

func TestSettingsResource(t *testing.T) {
	h := newHarness(t, WithSyncConfig(TwoWaySync()))
	assert.Equal(t, TwoWaySync(), SettingsOf(h.world()))
	assert.Equal(t, TwoWaySync(), h.app.SyncConfig())
}

func TestSystemErrorsAreReportedNotFatal(t *testing.T) {
	h := newHarness(t)
	boom := errors.New("boom")
	fail := true
	ran := 0
	h.app.AddSystemFunc(schedule.Update, "flaky", func(donburi.World) error {
		if fail {
			return boom
		}
		return nil
	})
	h.app.AddSystemFunc(schedule.Last, "after", func(donburi.World) error { ran++; return nil })

	h.scene.Process(frameDelta)
	assert.ErrorIs(t, h.app.Err(), boom)
	assert.Equal(t, 1, ran)
	assert.Equal(t, float64(1), testutil.ToFloat64(h.app.Metrics().SystemErrors))

	fail = false
	h.scene.Process(frameDelta)
	assert.NoError(t, h.app.Err())
}

func TestWorkerPanicReachesHost(t *testing.T) {
	h := newHarness(t)
	h.app.AddSystem(schedule.Update,
		schedule.System{Name: "ok", Run: func(donburi.World) error { return nil }, Parallel: true},
		schedule.System{Name: "violate", Run: func(donburi.World) error {
			_ = Get[*scene.Node](NodeHandle{})
			return nil
		}, Parallel: true},
	)
	cv := recoverViolation(t, func() { h.scene.Process(frameDelta) })
	assert.Equal(t, "Get", cv.Op)
}

func TestAttachTwice(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.app.Attach(scene.New()), ErrAttached)

	app, err := NewApp()
	require.NoError(t, err)
	assert.Error(t, app.Attach(nil))
	assert.Nil(t, app.Registry())
	assert.ErrorIs(t, app.EnableTransformSync(donburi.Null), ErrNotAttached)
}

func TestNewAppRejectsBadConfig(t *testing.T) {
	_, err := NewApp(WithSyncConfig(SyncConfig{Mode: SyncMode(9)}))
	assert.Error(t, err)
}

func TestWithWorld(t *testing.T) {
	w := donburi.NewWorld()
	app, err := NewApp(WithWorld(w))
	require.NoError(t, err)
	assert.Equal(t, w, app.World())
}

func TestMetricsAreRegistered(t *testing.T) {
	h := newHarness(t)
	h.add(scene.NewNode2D("counted"))
	h.frames(2)

	assert.Equal(t, float64(2), testutil.ToFloat64(h.app.Metrics().Frames.WithLabelValues("visual")))
	assert.Equal(t, float64(2), testutil.ToFloat64(h.app.Metrics().RegisteredEntities))

	families, err := h.prom.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "grove_frames_total")
	assert.Contains(t, names, "grove_registered_entities")
}

func TestNodeCallbacksSeeRegisteredEntities(t *testing.T) {
	h := newHarness(t)
	spawner := h.add(scene.NewNode2D("spawner"))
	var spawned *scene.Node
	spawner.OnProcess = func(float64) {
		if spawned == nil {
			spawned = scene.NewSprite2D("spawned")
			spawner.AddChild(spawned)
		}
	}

	// The engine callback runs before the App, so the node is registered
	// in the same visual frame.
	h.scene.Process(frameDelta)
	require.NotNil(t, spawned)
	assert.True(t, h.registered(spawned))
	assert.True(t, h.entry(spawned).HasComponent(Marker(native.ClassSprite2D)))
}
