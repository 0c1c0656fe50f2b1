package grove

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/yohamta/donburi"
	"go.uber.org/multierr"

	"github.com/phanxgames/grove/native"
	"github.com/phanxgames/grove/schedule"
)

// App drives an ECS world from a host engine's frame callbacks. The host owns
// the loop: it calls Process once per visual frame and PhysicsProcess once
// per physics frame, in whatever interleaving it likes, and both must be
// called from the same goroutine.
type App struct {
	world     donburi.World
	sched     *schedule.Schedule
	log       logr.Logger
	metrics   *Metrics
	sync      SyncConfig
	resources donburi.Entity

	bundles  *Bundles
	commands *Commands
	contacts *collisionQueue

	host     native.Host
	registry *Registry
	watcher  *Watcher
	sync2D   *syncer[native.Transform2D]
	sync3D   *syncer[native.Transform3D]

	lastErr error
}

// NewApp creates an App with its own world unless WithWorld is given.
func NewApp(opts ...Option) (*App, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.sync.Validate(); err != nil {
		return nil, err
	}
	if o.world == nil {
		o.world = donburi.NewWorld()
	}

	a := &App{
		world:    o.world,
		sched:    schedule.New(o.world, o.scheduleOptions()...),
		log:      o.log.WithName("grove"),
		metrics:  NewMetrics(o.registry),
		sync:     o.sync,
		commands: &Commands{},
	}
	a.contacts = &collisionQueue{log: a.log.WithName("collisions"), metrics: a.metrics}
	a.sched.Fixed().MaxDelta = o.maxDelta
	a.bundles = newBundles(a.log.WithName("bundles"))

	a.resources = a.world.Create(Clock, Settings)
	entry := a.world.Entry(a.resources)
	Clock.SetValue(entry, FrameClock{FixedStep: a.sched.Fixed().Step})
	Settings.SetValue(entry, a.sync)
	return a, nil
}

// Attach connects the App to host: it subscribes to tree, collision and frame
// callbacks, installs the sync systems and queues every node already in the
// tree for registration on the next frame. Bundles are frozen from here on.
func (a *App) Attach(host native.Host) error {
	if a.host != nil {
		return ErrAttached
	}
	if host == nil {
		return fmt.Errorf("grove: Attach: nil host")
	}
	a.host = host
	a.registry = NewRegistry(a.world, host, a.log.WithName("registry"), a.metrics)
	a.watcher = NewWatcher(host, a.log.WithName("watcher"), a.metrics)
	a.commands.registry = a.registry
	a.bundles.freeze()

	if a.sync.Enabled(Dimensions2D) {
		a.sync2D = new2DSyncer(a.registry, a.metrics)
	}
	if a.sync.Enabled(Dimensions3D) {
		a.sync3D = new3DSyncer(a.registry, a.metrics)
	}
	a.registry.OnRegister(a.onRegister)
	a.registry.OnUnregister(a.onUnregister)
	a.installSystems()

	host.AddObserver(a.watcher)
	host.AddCollisionListener(a.contacts)
	host.AddFrameListener(a)
	a.watcher.Prime()
	a.log.Info("attached", "sync", a.sync.Mode.String(), "dimensions", a.sync.Dimensions.String(),
		"autoSync", a.sync.AutoSync, "pending", a.watcher.Pending())
	return nil
}

func (a *App) installSystems() {
	a.sched.Add(schedule.First, schedule.System{Name: "grove.topology", Run: a.topology, Stage: schedule.StageEarly})
	a.sched.Add(schedule.PrePhysicsUpdate,
		schedule.System{Name: "grove.topology", Run: a.topology, Stage: schedule.StageEarly},
		schedule.System{Name: "grove.collisions", Run: a.applyCollisions, Stage: schedule.StageEarly},
	)
	a.sched.Add(schedule.FixedUpdate, schedule.System{Name: "grove.fixed_clock", Run: a.fixedClock, Stage: schedule.StageEarly})
	if a.sync2D != nil {
		a.sync2D.install(a.sched, a.sync.Mode)
	}
	if a.sync3D != nil {
		a.sync3D.install(a.sched, a.sync.Mode)
	}
}

// Process implements native.FrameListener for the visual frame.
func (a *App) Process(delta float64) {
	d := seconds(delta)
	Clock.Get(a.world.Entry(a.resources)).tick(d)
	a.metrics.Frames.WithLabelValues("visual").Inc()
	a.finish("visual", a.sched.RunMain(d))
}

// PhysicsProcess implements native.FrameListener for the physics frame.
func (a *App) PhysicsProcess(delta float64) {
	d := seconds(delta)
	Clock.Get(a.world.Entry(a.resources)).tickPhysics(d)
	a.metrics.Frames.WithLabelValues("physics").Inc()
	a.finish("physics", a.sched.RunPhysics())
}

func (a *App) finish(frame string, err error) {
	a.lastErr = err
	if err == nil {
		return
	}
	errs := multierr.Errors(err)
	a.metrics.SystemErrors.Add(float64(len(errs)))
	a.log.Error(err, "frame finished with system errors", "frame", frame, "count", len(errs))
}

// Err returns the system errors of the most recent frame.
func (a *App) Err() error { return a.lastErr }

// AddSystem adds systems to phase p.
func (a *App) AddSystem(p schedule.Phase, systems ...schedule.System) {
	a.sched.Add(p, systems...)
}

// AddSystemFunc adds a sequential system to phase p.
func (a *App) AddSystemFunc(p schedule.Phase, name string, fn schedule.SystemFunc) {
	a.sched.AddFunc(p, name, fn)
}

// topology applies queued commands and tree notifications, sweeps stale
// entities and retries pending bundles, then delivers SceneTreeEvents.
func (a *App) topology(w donburi.World) error {
	a.commands.apply(w)
	var err error
	for _, n := range a.watcher.drain() {
		err = multierr.Append(err, a.applyNotification(w, n))
	}
	if removed := a.registry.sweepStale(); removed > 0 {
		a.log.V(1).Info("removed stale entities", "count", removed)
	}
	a.bundles.retry(w)
	SceneTreeEvents.ProcessEvents(w)
	return err
}

func (a *App) applyNotification(w donburi.World, n notification) error {
	evt := TreeEvent{Kind: n.kind, Node: n.id, Entity: donburi.Null, Name: n.name, OldName: n.oldName}
	switch n.kind {
	case NodeEntered:
		// A node freed since it entered is followed by its exit.
		if !n.node.IsFreed() {
			e, err := a.registry.Register(n.node)
			if err != nil {
				return err
			}
			evt.Entity = e
		}
	case NodeExited:
		if e, ok := a.registry.UnregisterNode(n.id); ok {
			evt.Entity = e
		}
	case NodeRenamed:
		if e, ok := a.registry.Entity(n.id); ok && w.Valid(e) {
			Name.SetValue(w.Entry(e), NodeName(n.name))
			evt.Entity = e
		}
	}
	SceneTreeEvents.Publish(w, evt)
	return nil
}

func (a *App) applyCollisions(w donburi.World) error {
	a.contacts.apply(w, a.registry)
	return nil
}

func (a *App) fixedClock(w donburi.World) error {
	Clock.Get(w.Entry(a.resources)).FixedTicks = a.sched.Fixed().Ticks()
	return nil
}

func (a *App) onRegister(entry *donburi.Entry, n native.Node) {
	if a.sync.AutoSync {
		a.attachTransforms(entry, n)
	}
	if isCollisionObject(n.ClassChain()) {
		entry.AddComponent(Contacts)
	}
	a.bundles.onRegister(entry, n)
}

func (a *App) onUnregister(e donburi.Entity, _ native.NodeID) {
	a.bundles.forget(e)
	a.contacts.forget(a.world, e)
}

func (a *App) attachTransforms(entry *donburi.Entry, n native.Node) bool {
	attached := false
	if a.sync2D != nil && a.sync2D.attach(entry, n) {
		attached = true
	}
	if a.sync3D != nil && a.sync3D.attach(entry, n) {
		attached = true
	}
	return attached
}

// EnableTransformSync attaches transform components to a registered entity,
// seeded from its node. It is how entities opt in when AutoSync is off, and
// must be called from the driver goroutine: a sequential system, an event
// subscriber, or between frames.
func (a *App) EnableTransformSync(e donburi.Entity) error {
	if a.registry == nil {
		return ErrNotAttached
	}
	if a.sync.Mode == SyncDisabled {
		return ErrSyncDisabled
	}
	h, ok := a.registry.Handle(e)
	if !ok || !a.world.Valid(e) {
		return ErrNotRegistered
	}
	n, ok := h.Resolve()
	if !ok {
		return fmt.Errorf("grove: EnableTransformSync: node %d is gone", h.ID())
	}
	if !a.attachTransforms(a.world.Entry(e), n) {
		return fmt.Errorf("grove: EnableTransformSync: node %d (%s) has no synchronized transform", h.ID(), n.Class())
	}
	return nil
}

// World returns the ECS world.
func (a *App) World() donburi.World { return a.world }

// Schedule returns the scheduler.
func (a *App) Schedule() *schedule.Schedule { return a.sched }

// Registry returns the entity-node registry, or nil before Attach.
func (a *App) Registry() *Registry { return a.registry }

// Watcher returns the scene tree watcher, or nil before Attach.
func (a *App) Watcher() *Watcher { return a.watcher }

// Commands returns the deferred command queue.
func (a *App) Commands() *Commands { return a.commands }

// Bundles returns the bundle bindings.
func (a *App) Bundles() *Bundles { return a.bundles }

// Metrics returns the App's collectors.
func (a *App) Metrics() *Metrics { return a.metrics }

// SyncConfig returns the configuration the App was created with.
func (a *App) SyncConfig() SyncConfig { return a.sync }
