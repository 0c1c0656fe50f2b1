package grove

import (
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/yohamta/donburi"

	"github.com/phanxgames/grove/schedule"
)

// Option configures an App.
type Option func(*options)

type options struct {
	sync      SyncConfig
	log       logr.Logger
	registry  prometheus.Registerer
	workers   int
	fixedStep time.Duration
	maxDelta  time.Duration
	world     donburi.World
}

func defaultOptions() options {
	cfg := DefaultConfig()
	return options{
		sync:      cfg.Sync,
		log:       logr.Discard(),
		workers:   cfg.Workers,
		fixedStep: cfg.FixedStep,
		maxDelta:  cfg.MaxDelta,
	}
}

// WithSyncConfig sets the transform sync configuration. It cannot be changed
// after NewApp.
func WithSyncConfig(c SyncConfig) Option {
	return func(o *options) { o.sync = c }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logr.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics registers the App's collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) { o.registry = reg }
}

// WithWorkers bounds parallel system batches. Zero means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithFixedStep sets the FixedUpdate period.
func WithFixedStep(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.fixedStep = d
		}
	}
}

// WithMaxDelta caps the time one visual frame feeds the fixed-step
// accumulator. Zero disables the cap.
func WithMaxDelta(d time.Duration) Option {
	return func(o *options) { o.maxDelta = d }
}

// WithWorld runs the App against an existing world.
func WithWorld(w donburi.World) Option {
	return func(o *options) { o.world = w }
}

func (o options) scheduleOptions() []schedule.Option {
	return []schedule.Option{
		schedule.WithWorkers(o.workers),
		schedule.WithLogger(o.log.WithName("schedule")),
		schedule.WithFixedStep(o.fixedStep),
	}
}
