package grove

import (
	"sync"

	"github.com/go-logr/logr"
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"

	"github.com/phanxgames/grove/native"
)

// TreeEventKind says what happened to a node.
type TreeEventKind uint8

const (
	NodeEntered TreeEventKind = iota
	NodeExited
	NodeRenamed
)

func (k TreeEventKind) String() string {
	switch k {
	case NodeEntered:
		return "entered"
	case NodeExited:
		return "exited"
	case NodeRenamed:
		return "renamed"
	}
	return "unknown"
}

// TreeEvent is published on SceneTreeEvents after the registry has applied a
// notification. Entity is donburi.Null when nothing was registered, e.g. for a
// node freed before its entered notification was processed.
type TreeEvent struct {
	Kind    TreeEventKind
	Node    native.NodeID
	Entity  donburi.Entity
	Name    string
	OldName string
}

// SceneTreeEvents carries TreeEvents to application systems. Subscribers run
// during the topology pass, after the registry is up to date.
var SceneTreeEvents = events.NewEventType[TreeEvent]()

// Reasons a notification is dropped.
const (
	dropNilNode = "nil_node"
	dropZeroID  = "zero_id"
	dropFreed   = "freed"
	dropForeign = "foreign"
)

type notification struct {
	kind    TreeEventKind
	node    native.Node
	id      native.NodeID
	name    string
	oldName string
}

// Watcher receives tree notifications from the engine and queues them until
// the next topology pass. Notifications are validated on arrival, while the
// node is still in the state the engine reported.
type Watcher struct {
	tree    native.Tree
	log     logr.Logger
	metrics *Metrics

	mu    sync.Mutex
	queue []notification
}

// NewWatcher creates a watcher for tree. metrics may be nil.
func NewWatcher(tree native.Tree, log logr.Logger, metrics *Metrics) *Watcher {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Watcher{tree: tree, log: log, metrics: metrics}
}

// NodeAdded implements native.Observer.
func (w *Watcher) NodeAdded(n native.Node) {
	if w.validate("added", n, false) {
		w.push(notification{kind: NodeEntered, node: n, id: n.InstanceID(), name: n.Name()})
	}
}

// NodeRemoved implements native.Observer.
func (w *Watcher) NodeRemoved(n native.Node) {
	if w.validate("removed", n, true) {
		w.push(notification{kind: NodeExited, node: n, id: n.InstanceID(), name: n.Name()})
	}
}

// NodeRenamed implements native.Observer.
func (w *Watcher) NodeRenamed(n native.Node, oldName string) {
	if w.validate("renamed", n, false) {
		w.push(notification{kind: NodeRenamed, node: n, id: n.InstanceID(), name: n.Name(), oldName: oldName})
	}
}

// Prime queues an entered notification for every node already in the tree,
// parents first.
func (w *Watcher) Prime() {
	w.tree.Walk(func(n native.Node) bool {
		w.NodeAdded(n)
		return true
	})
}

// Pending returns the number of queued notifications.
func (w *Watcher) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// validate reports whether n is a well-formed node of the watched tree.
// Removals of freed nodes are accepted so their entities are cleaned up.
func (w *Watcher) validate(what string, n native.Node, allowFreed bool) bool {
	reason := ""
	switch {
	case native.IsNil(n):
		reason = dropNilNode
	case n.InstanceID() == 0:
		reason = dropZeroID
	case n.IsFreed():
		if !allowFreed {
			reason = dropFreed
		}
	default:
		if got, ok := w.tree.Lookup(n.InstanceID()); !ok || got != n {
			reason = dropForeign
		}
	}
	if reason == "" {
		return true
	}
	w.metrics.DroppedNotifications.WithLabelValues(reason).Inc()
	kv := []any{"notification", what, "reason", reason}
	if reason != dropNilNode {
		kv = append(kv, "node", n.InstanceID())
	}
	w.log.Info("dropping scene tree notification", kv...)
	return false
}

func (w *Watcher) push(n notification) {
	w.mu.Lock()
	w.queue = append(w.queue, n)
	w.mu.Unlock()
}

// drain takes the queued notifications in arrival order.
func (w *Watcher) drain() []notification {
	w.mu.Lock()
	defer w.mu.Unlock()
	q := w.queue
	w.queue = nil
	return q
}
