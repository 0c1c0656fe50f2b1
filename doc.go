// Package grove keeps a [Donburi] ECS world in step with a host engine's
// scene tree.
//
// The engine owns every node. grove gives each node in the tree an entity,
// tags it with one marker per class in the node's class chain, and moves
// transform data between the two sides at well-defined points in the frame.
// The engine keeps control of the loop and calls grove back once per visual
// frame and once per physics frame.
//
// # Quick start
//
//	app, err := grove.NewApp(grove.WithSyncConfig(grove.TwoWaySync()))
//	if err != nil {
//		return err
//	}
//	app.AddSystemFunc(schedule.Update, "move", func(w donburi.World) error {
//		query.Each(w, func(e *donburi.Entry) {
//			t := grove.Transform2D.Get(e)
//			t.Position.X += 10 * grove.FrameClockOf(w).DeltaSeconds()
//		})
//		return nil
//	})
//	if err := app.Attach(host); err != nil {
//		return err
//	}
//
// Any [native.Host] works; package scene provides an in-process one and
// package ebitenhost runs it under [Ebitengine].
//
// # Frames and phases
//
// A visual frame runs First, PreUpdate, FixedUpdate (zero or more times),
// Update, PostUpdate and Last. A physics frame runs PrePhysicsUpdate,
// PhysicsUpdate and PostPhysicsUpdate. Nothing is assumed about how the two
// interleave. Tree changes reported by the engine are applied at the start of
// First and PrePhysicsUpdate; subscribe to [SceneTreeEvents] to react to them.
//
// # Transform sync
//
// [SyncConfig] picks the direction. With [SyncOneWay], changes to the
// [Transform2D] and [Transform3D] components are written to nodes in Last
// and never read back. With [SyncTwoWay], node transforms are also read in
// First, before gameplay, and a value that has crossed once is not sent back.
// Physics bodies follow the physics frame instead: read in PrePhysicsUpdate,
// written in PostPhysicsUpdate. [SyncDisabled] never creates the components.
//
// # Nodes from systems
//
// [NodeHandle] is stored on every entity in the [Handle] component. It does
// not keep the node alive; [Resolve] returns false once the engine frees it.
//
//	h := grove.Handle.GetValue(entry)
//	if sprite, ok := grove.Resolve[*scene.Node](h); ok {
//		sprite.SetMeta("hit", true)
//	}
//
// [Donburi]: https://github.com/yohamta/donburi
// [Ebitengine]: https://ebitengine.org
package grove
