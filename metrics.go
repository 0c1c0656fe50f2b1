package grove

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the sync core's prometheus collectors.
type Metrics struct {
	RegisteredEntities   prometheus.Gauge
	Registrations        prometheus.Counter
	Unregistrations      prometheus.Counter
	StaleHandles         prometheus.Counter
	DroppedNotifications *prometheus.CounterVec // reason
	TransformWrites      *prometheus.CounterVec // dim
	TransformReads       *prometheus.CounterVec // dim
	Frames               *prometheus.CounterVec // kind
	SystemErrors         prometheus.Counter
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered, which is what tests and embedders without a
// metrics endpoint want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	const ns = "grove"
	return &Metrics{
		RegisteredEntities: f.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Name:      "registered_entities",
			Help:      "Scene-tree entities currently registered.",
		}),
		Registrations: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "registrations_total",
			Help:      "Nodes registered as entities.",
		}),
		Unregistrations: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "unregistrations_total",
			Help:      "Entities removed from the registry.",
		}),
		StaleHandles: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "stale_handles_total",
			Help:      "Entities unregistered because their node could no longer be resolved.",
		}),
		DroppedNotifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "dropped_notifications_total",
			Help:      "Scene tree notifications dropped as malformed or foreign.",
		}, []string{"reason"}),
		TransformWrites: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "native_transform_writes_total",
			Help:      "Transforms written to engine nodes.",
		}, []string{"dim"}),
		TransformReads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "native_transform_reads_total",
			Help:      "Engine-side transform changes copied into the ECS.",
		}, []string{"dim"}),
		Frames: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "frames_total",
			Help:      "Frames driven by the host.",
		}, []string{"kind"}),
		SystemErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Name:      "system_errors_total",
			Help:      "Errors returned by systems.",
		}),
	}
}
