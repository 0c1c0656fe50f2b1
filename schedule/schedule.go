// Package schedule runs ECS systems in ordered phases.
//
// Within a phase, systems run in registration order. Adjacent systems marked
// Parallel form a batch that runs on a bounded worker pool; the batch joins
// before the next system starts, and a phase finishes before the next phase
// begins. Parallel systems may read the world but must not change its
// structure (create or remove entities, add or remove components).
package schedule

import (
	"cmp"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/yohamta/donburi"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// SystemFunc is one system pass over the world.
type SystemFunc func(w donburi.World) error

// Stage orders systems inside a phase. Systems of a lower stage run first;
// within a stage, registration order holds.
type Stage int8

const (
	StageEarly  Stage = -1
	StageNormal Stage = 0
	StageLate   Stage = 1
)

// System is a named SystemFunc.
type System struct {
	Name  string
	Run   SystemFunc
	Stage Stage
	// Parallel lets the system share a batch with its parallel neighbours of
	// the same stage.
	Parallel bool
}

// Option configures a Schedule.
type Option func(*Schedule)

// WithWorkers bounds the number of goroutines used by a parallel batch.
// Values below 1 mean GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Schedule) { s.workers = n }
}

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(s *Schedule) { s.log = l }
}

// WithFixedStep sets the FixedUpdate period.
func WithFixedStep(step time.Duration) Option {
	return func(s *Schedule) { s.fixed.Step = step }
}

// Schedule holds the systems of every phase for one world.
type Schedule struct {
	world   donburi.World
	phases  [numPhases][]System
	workers int
	fixed   FixedTime
	log     logr.Logger
}

// New creates an empty schedule for w.
func New(w donburi.World, opts ...Option) *Schedule {
	s := &Schedule{
		world: w,
		fixed: NewFixedTime(DefaultFixedStep),
		log:   logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.workers < 1 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	return s
}

// World returns the world the schedule runs against.
func (s *Schedule) World() donburi.World { return s.world }

// Fixed returns the fixed-timestep accumulator.
func (s *Schedule) Fixed() *FixedTime { return &s.fixed }

// Add appends systems to phase p.
// Panics on an unknown phase or a system without a Run func.
func (s *Schedule) Add(p Phase, systems ...System) {
	if !p.Valid() {
		panic(fmt.Sprintf("schedule: unknown phase %d", uint8(p)))
	}
	for _, sys := range systems {
		if sys.Run == nil {
			panic(fmt.Sprintf("schedule: system %q in %s has no Run func", sys.Name, p))
		}
		s.phases[p] = append(s.phases[p], sys)
	}
	slices.SortStableFunc(s.phases[p], func(a, b System) int {
		return cmp.Compare(a.Stage, b.Stage)
	})
}

// AddFunc appends a sequential system to phase p.
func (s *Schedule) AddFunc(p Phase, name string, fn SystemFunc) {
	s.Add(p, System{Name: name, Run: fn})
}

// Systems returns the names of the systems in phase p, in run order.
func (s *Schedule) Systems(p Phase) []string {
	names := make([]string, 0, len(s.phases[p]))
	for _, sys := range s.phases[p] {
		names = append(names, sys.Name)
	}
	return names
}

// RunMain runs one visual frame: the main phases in order, with FixedUpdate
// repeated once per fixed step accumulated from delta. Errors from every
// system are combined; they never stop later systems or phases.
func (s *Schedule) RunMain(delta time.Duration) error {
	var err error
	for _, p := range MainPhases {
		if p == FixedUpdate {
			s.fixed.Accumulate(delta)
			for s.fixed.Expend() {
				err = multierr.Append(err, s.RunPhase(FixedUpdate))
			}
			continue
		}
		err = multierr.Append(err, s.RunPhase(p))
	}
	return err
}

// RunPhysics runs one physics frame.
func (s *Schedule) RunPhysics() error {
	var err error
	for _, p := range PhysicsPhases {
		err = multierr.Append(err, s.RunPhase(p))
	}
	return err
}

// RunPhase runs every system of p once. A panic in any system, including one
// running on a worker, is re-raised on the calling goroutine after its batch
// has joined.
func (s *Schedule) RunPhase(p Phase) error {
	systems := s.phases[p]
	var err error
	for i := 0; i < len(systems); {
		if !systems[i].Parallel {
			err = multierr.Append(err, s.runOne(p, systems[i]))
			i++
			continue
		}
		j := i
		for j < len(systems) && systems[j].Parallel && systems[j].Stage == systems[i].Stage {
			j++
		}
		err = multierr.Append(err, s.runBatch(p, systems[i:j]))
		i = j
	}
	return err
}

func (s *Schedule) runOne(p Phase, sys System) error {
	if err := sys.Run(s.world); err != nil {
		s.log.V(1).Info("system failed", "phase", p.String(), "system", sys.Name, "err", err.Error())
		return fmt.Errorf("%s/%s: %w", p, sys.Name, err)
	}
	return nil
}

func (s *Schedule) runBatch(p Phase, batch []System) error {
	if len(batch) == 1 {
		return s.runOne(p, batch[0])
	}

	var (
		g         errgroup.Group
		mu        sync.Mutex
		errs      error
		panicOnce sync.Once
		panicVal  any
	)
	g.SetLimit(s.workers)
	for _, sys := range batch {
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					panicOnce.Do(func() { panicVal = r })
				}
			}()
			if err := s.runOne(p, sys); err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	if panicVal != nil {
		panic(panicVal)
	}
	return errs
}
