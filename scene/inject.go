package scene

import "github.com/phanxgames/grove/native"

type notificationKind uint8

const (
	notifyAdded notificationKind = iota
	notifyRemoved
	notifyRenamed
)

// syntheticNotification is a queued notification that bypasses the tree.
type syntheticNotification struct {
	kind    notificationKind
	node    native.Node
	oldName string
}

// InjectAdded queues a NodeAdded notification for n. It is delivered to every
// observer at the start of the next Process or PhysicsProcess without touching
// the tree, so n may be nil, freed, or owned by another scene.
func (s *Scene) InjectAdded(n native.Node) {
	s.injectQueue = append(s.injectQueue, syntheticNotification{kind: notifyAdded, node: n})
}

// InjectRemoved queues a NodeRemoved notification for n.
func (s *Scene) InjectRemoved(n native.Node) {
	s.injectQueue = append(s.injectQueue, syntheticNotification{kind: notifyRemoved, node: n})
}

// InjectRenamed queues a NodeRenamed notification for n.
func (s *Scene) InjectRenamed(n native.Node, oldName string) {
	s.injectQueue = append(s.injectQueue, syntheticNotification{kind: notifyRenamed, node: n, oldName: oldName})
}

// processInjected delivers every queued notification in order.
func (s *Scene) processInjected() {
	if len(s.injectQueue) == 0 {
		return
	}
	queue := s.injectQueue
	s.injectQueue = nil
	for _, evt := range queue {
		for _, o := range s.observers {
			switch evt.kind {
			case notifyAdded:
				o.NodeAdded(evt.node)
			case notifyRemoved:
				o.NodeRemoved(evt.node)
			case notifyRenamed:
				o.NodeRenamed(evt.node, evt.oldName)
			}
		}
	}
}
