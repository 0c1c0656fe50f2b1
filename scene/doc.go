// Package scene is an in-process host engine for grove.
//
// It owns a tree of [Node] values rooted at [Scene.Root], hands out instance
// ids, and implements [native.Host]: tree notifications, per-frame callbacks,
// and collision signals. Use it to run grove without an external engine, or
// as the engine side in tests.
//
// # Driving frames
//
// The host calls [Scene.Process] once per visual frame and
// [Scene.PhysicsProcess] once per physics frame. Each runs engine work first
// (tweens and OnProcess callbacks, or velocity integration and
// OnPhysicsProcess callbacks) and then every registered
// [native.FrameListener]:
//
//	s := scene.New()
//	s.AddFrameListener(app)
//	for {
//		s.PhysicsProcess(1.0 / 60)
//		s.Process(dt)
//	}
//
// # Nodes
//
// A single flat [Node] struct serves every class. [NewNode] takes any known
// class; [RegisterClass] adds custom classes on top of the built-in
// hierarchy. Nodes added under a node that is inside the tree emit
// NodeAdded parents-first; removals emit NodeRemoved children-first, before
// anything is freed.
//
// # Animation
//
// [TweenGroup] animates node fields via [gween], writing straight into the
// node the way an engine animation player does.
//
// [gween]: https://github.com/tanema/gween
package scene
