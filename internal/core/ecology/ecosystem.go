package ecology

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"

	"github.com/mpurbo/ecosim/internal/core/events/bus"
	"github.com/mpurbo/ecosim/internal/core/geometry"
	"github.com/mpurbo/ecosim/internal/core/observability/log"
	"github.com/mpurbo/ecosim/pkg/concurrent"
	"github.com/mpurbo/ecosim/pkg/sequence"
)

// DefaultMaxPasses bounds a disaster response when the config doesn't.
// The reference loop was unbounded; a step magnitude that oscillates across
// the safety boundary, or an agent sitting exactly on the hazard, would spin
// it forever.
const DefaultMaxPasses = 10_000

// Config holds ecosystem tuning.
type Config struct {
	// MaxPasses caps the convergence loop; <= 0 means DefaultMaxPasses.
	MaxPasses int
	// Parallel fans each pass out to one goroutine per agent. Per-agent
	// updates are independent, so the only synchronization is the barrier at
	// the end of the pass.
	Parallel bool
	// LogEvery emits a progress line every N passes; <= 0 disables it.
	LogEvery int
}

// DefaultConfig returns the default ecosystem configuration.
func DefaultConfig() Config {
	return Config{
		MaxPasses: DefaultMaxPasses,
		Parallel:  false,
		LogEvery:  1_000,
	}
}

// Ecosystem owns an ordered collection of agents exclusively and drives their
// disaster response. Collection order is preserved for deterministic output;
// it has no effect on the algorithm since each agent's update depends only on
// its own state and the fixed hazard.
type Ecosystem struct {
	agents   []*Agent
	cfg      Config
	logger   log.Log
	eventBus bus.EventBus

	running int32 // atomic bool
	passes  int64 // atomic, passes of the last disaster response
}

// New creates an Ecosystem over the given agents. The ecosystem takes
// exclusive ownership of the slice and the agents in it. logger may be nil;
// eventBus may be nil when no observers exist.
func New(agents []*Agent, cfg Config, logger log.Log, eventBus bus.EventBus) *Ecosystem {
	if logger == nil {
		logger = log.Nop()
	}
	if cfg.MaxPasses <= 0 {
		cfg.MaxPasses = DefaultMaxPasses
	}
	return &Ecosystem{
		agents:   agents,
		cfg:      cfg,
		logger:   logger,
		eventBus: eventBus,
	}
}

// Size returns the number of agents.
func (e *Ecosystem) Size() int { return len(e.agents) }

// Agents returns an ordered read-only snapshot of the collection.
func (e *Ecosystem) Agents() []AgentState {
	return sequence.ToArray(sequence.From(e.agents), (*Agent).State)
}

// AllSafe reports whether every agent is strictly beyond its safety radius
// from the hazard.
func (e *Ecosystem) AllSafe(hazard geometry.Vector2) bool {
	return sequence.From(e.agents).All(func(a *Agent) bool { return a.SafeFrom(hazard) })
}

// Passes returns the number of passes the last disaster response ran,
// including the final sweep that observed no movement.
func (e *Ecosystem) Passes() int {
	return int(atomic.LoadInt64(&e.passes))
}

// OnDisaster runs the disaster-response loop to convergence: every pass, each
// agent still inside its safety radius takes one evasive step; the loop ends
// on the first pass in which no agent needed to move.
//
// Returns ErrNoConvergence (wrapped) when the pass cap is exceeded; agent
// positions then keep whatever progress was made, nothing is rolled back.
// Returns the context error when ctx is canceled between passes; the
// parallel pass additionally observes cancellation per agent. A second
// disaster on the same ecosystem while one is running is rejected with
// ErrDisasterInProgress: the collection is owned by one response at a time.
func (e *Ecosystem) OnDisaster(ctx context.Context, hazard geometry.Vector2) error {
	if !atomic.CompareAndSwapInt32(&e.running, 0, 1) {
		return ErrDisasterInProgress
	}
	defer atomic.StoreInt32(&e.running, 0)

	e.logger.Info("disaster response started",
		log.Float64("hazard_x", hazard.X),
		log.Float64("hazard_y", hazard.Y),
		log.Int("agents", len(e.agents)),
		log.Bool("parallel", e.cfg.Parallel),
	)
	e.publish(EventDisaster, DisasterPayload{Hazard: hazard, Agents: len(e.agents)})

	for pass := 1; pass <= e.cfg.MaxPasses; pass++ {
		select {
		case <-ctx.Done():
			atomic.StoreInt64(&e.passes, int64(pass-1))
			return ctx.Err()
		default:
		}

		var moved int64
		safe := make([]*AgentSafePayload, len(e.agents))
		if e.cfg.Parallel {
			if err := e.parallelPass(ctx, hazard, pass, &moved, safe); err != nil {
				atomic.StoreInt64(&e.passes, int64(pass-1))
				return err
			}
		} else {
			e.sequentialPass(hazard, pass, &moved, safe)
		}
		atomic.StoreInt64(&e.passes, int64(pass))

		// Crossings are buffered during the pass and published only once
		// every agent has been stepped, in collection order. Handlers that
		// snapshot the collection never observe a half-finished pass.
		for _, p := range safe {
			if p != nil {
				e.publish(EventAgentSafe, *p)
			}
		}

		if moved == 0 {
			e.logger.Info("all agents safe", log.Int("passes", pass))
			e.publish(EventConverged, ConvergedPayload{Passes: pass})
			return nil
		}
		if e.cfg.LogEvery > 0 && pass%e.cfg.LogEvery == 0 {
			unsafe := sequence.From(e.agents).
				Filter(func(a *Agent) bool { return !a.SafeFrom(hazard) }).
				Count()
			e.logger.Debug("disaster response in progress",
				log.Int("pass", pass),
				log.Int64("still_moving", moved),
				log.Int("still_unsafe", unsafe),
			)
		}
	}

	e.logger.Warn("disaster response exceeded pass cap", log.Int("max_passes", e.cfg.MaxPasses))
	e.publish(EventNoConvergence, NoConvergencePayload{Passes: e.cfg.MaxPasses})
	return fmt.Errorf("%w after %d passes", ErrNoConvergence, e.cfg.MaxPasses)
}

// sequentialPass sweeps agents in collection order.
func (e *Ecosystem) sequentialPass(hazard geometry.Vector2, pass int, moved *int64, safe []*AgentSafePayload) {
	for i, a := range e.agents {
		e.stepAgent(i, a, hazard, pass, moved, safe)
	}
}

// parallelPass fans out one goroutine per agent. Each agent and its safe
// slot are touched by exactly one goroutine, the hazard is read-only, and
// errgroup.Wait is the barrier; moved is combined atomically before the
// caller reads it. Nothing is published from inside the pass.
func (e *Ecosystem) parallelPass(ctx context.Context, hazard geometry.Vector2, pass int, moved *int64, safe []*AgentSafePayload) error {
	indices := make([]int, len(e.agents))
	for i := range indices {
		indices[i] = i
	}
	return concurrent.Concurrent(sequence.From(indices), func(i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.stepAgent(i, e.agents[i], hazard, pass, moved, safe)
		return nil
	})
}

func (e *Ecosystem) stepAgent(i int, a *Agent, hazard geometry.Vector2, pass int, moved *int64, safe []*AgentSafePayload) {
	if a.SafeFrom(hazard) {
		return
	}
	a.EvadeStep(hazard)
	atomic.AddInt64(moved, 1)
	if a.SafeFrom(hazard) {
		safe[i] = &AgentSafePayload{
			AgentID:  a.ID(),
			Kind:     a.Kind().String(),
			Pass:     pass,
			Position: a.Position(),
		}
	}
}

func (e *Ecosystem) publish(eventType string, payload any) {
	if e.eventBus == nil {
		return
	}
	if err := e.eventBus.Publish(bus.NewEvent(eventType, eventSource, payload)); err != nil {
		e.logger.Warn("event delivery failed", log.String("event", eventType), log.Error(err))
	}
}

// Digest fingerprints the ecosystem state: kinds, mediums and positions in
// collection order. Two runs from identical initial agents and hazard must
// produce identical digests.
func (e *Ecosystem) Digest() uint64 {
	h := xxhash.New()
	var buf [8]byte
	for _, a := range e.agents {
		_, _ = h.Write([]byte{byte(a.kind), byte(a.medium)})
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(a.position.X))
		_, _ = h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(a.position.Y))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}
