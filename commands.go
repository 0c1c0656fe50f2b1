package grove

import (
	"sync"

	"github.com/yohamta/donburi"
)

// Commands queues structural world changes requested by systems. They are
// applied in order at the next topology pass, on the driver goroutine, so it
// is safe to queue them from parallel systems.
type Commands struct {
	registry *Registry

	mu    sync.Mutex
	queue []func(w donburi.World)
}

// Despawn removes e at the next topology pass. A scene-tree entity is also
// dropped from the registry; its node is left alone.
func (c *Commands) Despawn(e donburi.Entity) {
	c.Push(func(w donburi.World) {
		if c.registry != nil && c.registry.Unregister(e) {
			return
		}
		if w.Valid(e) {
			w.Remove(e)
		}
	})
}

// Push queues fn.
func (c *Commands) Push(fn func(w donburi.World)) {
	c.mu.Lock()
	c.queue = append(c.queue, fn)
	c.mu.Unlock()
}

// Len returns the number of queued commands.
func (c *Commands) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// apply runs the queue, including commands queued by commands.
func (c *Commands) apply(w donburi.World) {
	for {
		c.mu.Lock()
		q := c.queue
		c.queue = nil
		c.mu.Unlock()
		if len(q) == 0 {
			return
		}
		for _, fn := range q {
			fn(w)
		}
	}
}
