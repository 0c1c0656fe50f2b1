package grove

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/component"
	"github.com/yohamta/donburi/filter"

	"github.com/phanxgames/grove/native"
	"github.com/phanxgames/grove/schedule"
)

// transform is a transform value whose Equal treats NaN as equal to NaN.
type transform[T any] interface {
	Equal(T) bool
}

// syncer moves one kind of transform between nodes and entities.
//
// Change detection is by value: the mirror holds the last transform known to
// be equal on both sides. A push writes state that differs from the mirror; a
// pull copies a node transform that differs from the mirror. Both then update
// the mirror, so a value that has crossed once is never sent back.
type syncer[T transform[T]] struct {
	dim      Dimensions
	state    *donburi.ComponentType[T]
	mirror   *donburi.ComponentType[T]
	marker   component.IComponentType
	physics  component.IComponentType
	read     func(native.Node) (T, bool)
	write    func(native.Node, T) bool
	registry *Registry
	writes   prometheus.Counter
	reads    prometheus.Counter

	visual *donburi.Query
	bodies *donburi.Query
}

func newSyncer[T transform[T]](
	dim Dimensions,
	state, mirror *donburi.ComponentType[T],
	marker, physics component.IComponentType,
	read func(native.Node) (T, bool),
	write func(native.Node, T) bool,
	registry *Registry,
	m *Metrics,
) *syncer[T] {
	synced := filter.Contains(Handle, state, mirror)
	return &syncer[T]{
		dim:      dim,
		state:    state,
		mirror:   mirror,
		marker:   marker,
		physics:  physics,
		read:     read,
		write:    write,
		registry: registry,
		writes:   m.TransformWrites.WithLabelValues(dim.String()),
		reads:    m.TransformReads.WithLabelValues(dim.String()),
		visual:   donburi.NewQuery(filter.And(synced, filter.Not(filter.Contains(physics)))),
		bodies:   donburi.NewQuery(filter.And(synced, filter.Contains(physics))),
	}
}

func new2DSyncer(r *Registry, m *Metrics) *syncer[native.Transform2D] {
	return newSyncer(Dimensions2D, Transform2D, mirror2D, Node2DMarker, PhysicsBody2DMarker,
		func(n native.Node) (native.Transform2D, bool) {
			s, ok := n.(native.Spatial2D)
			if !ok {
				return native.Transform2D{}, false
			}
			return s.Transform2D(), true
		},
		func(n native.Node, t native.Transform2D) bool {
			s, ok := n.(native.Spatial2D)
			if ok {
				s.SetTransform2D(t)
			}
			return ok
		}, r, m)
}

func new3DSyncer(r *Registry, m *Metrics) *syncer[native.Transform3D] {
	return newSyncer(Dimensions3D, Transform3D, mirror3D, Node3DMarker, PhysicsBody3DMarker,
		func(n native.Node) (native.Transform3D, bool) {
			s, ok := n.(native.Spatial3D)
			if !ok {
				return native.Transform3D{}, false
			}
			return s.Transform3D(), true
		},
		func(n native.Node, t native.Transform3D) bool {
			s, ok := n.(native.Spatial3D)
			if ok {
				s.SetTransform3D(t)
			}
			return ok
		}, r, m)
}

// attach adds state and mirror to entry, seeded from the node. It reports
// false when the node does not carry this kind of transform.
func (s *syncer[T]) attach(entry *donburi.Entry, n native.Node) bool {
	if !entry.HasComponent(s.marker) {
		return false
	}
	v, ok := s.read(n)
	if !ok {
		return false
	}
	if !entry.HasComponent(s.state) {
		entry.AddComponent(s.state)
	}
	if !entry.HasComponent(s.mirror) {
		entry.AddComponent(s.mirror)
	}
	s.state.SetValue(entry, v)
	s.mirror.SetValue(entry, v)
	return true
}

func (s *syncer[T]) push(q *donburi.Query) schedule.SystemFunc {
	return func(w donburi.World) error {
		q.Each(w, func(entry *donburi.Entry) {
			cur := s.state.GetValue(entry)
			if cur.Equal(s.mirror.GetValue(entry)) {
				return
			}
			n, ok := Handle.GetValue(entry).Resolve()
			if !ok {
				s.registry.markStale(entry.Entity())
				return
			}
			if s.write(n, cur) {
				s.mirror.SetValue(entry, cur)
				s.writes.Inc()
			}
		})
		return nil
	}
}

func (s *syncer[T]) pull(q *donburi.Query) schedule.SystemFunc {
	return func(w donburi.World) error {
		q.Each(w, func(entry *donburi.Entry) {
			last := s.mirror.GetValue(entry)
			if !s.state.GetValue(entry).Equal(last) {
				// An ECS change is waiting for its push; it wins.
				return
			}
			n, ok := Handle.GetValue(entry).Resolve()
			if !ok {
				s.registry.markStale(entry.Entity())
				return
			}
			v, ok := s.read(n)
			if !ok || v.Equal(last) {
				return
			}
			s.state.SetValue(entry, v)
			s.mirror.SetValue(entry, v)
			s.reads.Inc()
		})
		return nil
	}
}

// install adds the sync systems for mode. Visual entities follow the visual
// frame; physics bodies follow the physics frame.
func (s *syncer[T]) install(sched *schedule.Schedule, mode SyncMode) {
	name := "grove.transform" + s.dim.String()
	if mode == SyncTwoWay {
		sched.Add(schedule.First, schedule.System{
			Name: name + ".pull", Run: s.pull(s.visual), Stage: schedule.StageEarly, Parallel: true,
		})
		sched.Add(schedule.PrePhysicsUpdate, schedule.System{
			Name: name + ".pull_bodies", Run: s.pull(s.bodies), Stage: schedule.StageEarly, Parallel: true,
		})
	}
	sched.Add(schedule.Last, schedule.System{
		Name: name + ".push", Run: s.push(s.visual), Stage: schedule.StageLate, Parallel: true,
	})
	sched.Add(schedule.PostPhysicsUpdate, schedule.System{
		Name: name + ".push_bodies", Run: s.push(s.bodies), Stage: schedule.StageLate, Parallel: true,
	})
}
