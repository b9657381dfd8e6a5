// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calcpipe

import (
	"github.com/leeeee/tli-bd-assistant/calcerr"
	"github.com/leeeee/tli-bd-assistant/calcmodel"
	"github.com/leeeee/tli-bd-assistant/tagging"
	"github.com/leeeee/tli-bd-assistant/tracebus"
)

// Stage is one phase of the damage calculation. The pipeline never
// suspends: every phase runs once, in order, over the same concrete
// *calcState, so Stage is specialized rather than generic.
type Stage interface {
	Name() string
	Run(state *calcState) error
}

// Engine runs every Stage in a fixed order, publishing a TraceEvent on its
// bus after each one completes.
type Engine struct {
	stages   []Stage
	registry *tagging.Registry
	clock    clockFunc
}

// New builds an Engine bound to registry, applying any Options.
func New(registry *tagging.Registry, opts ...Option) *Engine {
	if registry == nil {
		registry = tagging.Fallback()
	}
	e := &Engine{registry: registry}
	e.stages = []Stage{
		sanitizeStage{},
		contextStage{},
		aggregateStage{},
		baseDamageStage{},
		conversionStage{},
		incMoreStage{},
		expectedStage{},
		speedStage{},
		critStage{},
		hitChanceStage{},
		dpsStage{},
		ehpStage{},
		breakdownStage{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Calculate runs every stage over input and returns the final Output. A
// fresh tracebus is created per call so concurrent calculations never
// cross-contaminate each other's trace.
func (e *Engine) Calculate(input Input) (Output, error) {
	if e.registry == nil {
		return Output{}, calcerr.TagRegistry("calcpipe: engine has no tag registry")
	}

	bus := tracebus.NewBus()
	collector := tracebus.NewCollector(bus)

	state := &calcState{input: input, registry: e.registry, bus: bus}
	for _, stage := range e.stages {
		if err := stage.Run(state); err != nil {
			return Output{}, calcerr.WrapWithCode(err, calcerr.CodeCalculation, "calcpipe: stage "+stage.Name()+" failed")
		}
	}

	return stateToOutput(state, collector.Events()), nil
}

// prepareStageCount is how many leading stages (sanitization through
// conversion) belong to the "prepare" half of the pipeline: everything that
// does not depend on the enemy profile. The remaining stages (inc/more
// through the breakdown) are the "finalize" half that calccache's
// incremental-preview path re-runs against a cached PreparedContext.
const prepareStageCount = 5

// PreparedContext is everything the prepare stages produce for one input: the sanitized
// loadout, active tag context, mechanics processor, stat pool/modifier
// store, and post-conversion damage buckets — but not yet the enemy-facing
// arithmetic (rate, crit, DPS, EHP), which depends on the target profile
// passed to Finalize. It lets a cache hold the expensive aggregation/
// conversion work and re-finalize it cheaply against a different target or
// a tweaked preview item.
type PreparedContext struct {
	state *calcState
	trace []tracebus.TraceEvent
}

// Clone returns a PreparedContext whose finalize-phase fields (rate, crit,
// damage, etc.) are independent of the receiver, while the expensive prepare
// products (stat pool, modifier store, damage buckets) are shared by
// reference. Finalize never mutates those shared products, so this is safe
// for a cache to hand out the same prepared work to multiple finalize
// calls (e.g. one diff's base and a later diff's base reusing the same
// cache entry) without one call's target-dependent fields bleeding into
// another's.
func (p *PreparedContext) Clone() *PreparedContext {
	if p == nil {
		return nil
	}
	cp := *p.state
	trace := make([]tracebus.TraceEvent, len(p.trace))
	copy(trace, p.trace)
	return &PreparedContext{state: &cp, trace: trace}
}

// Prepare runs the enemy-independent stages (sanitize, tag context, aggregate, base
// damage, conversion) and returns the resulting PreparedContext without
// running the enemy-dependent remainder of the pipeline.
func (e *Engine) Prepare(input Input) (*PreparedContext, error) {
	if e.registry == nil {
		return nil, calcerr.TagRegistry("calcpipe: engine has no tag registry")
	}

	bus := tracebus.NewBus()
	collector := tracebus.NewCollector(bus)

	state := &calcState{input: input, registry: e.registry, bus: bus}
	for _, stage := range e.stages[:prepareStageCount] {
		if err := stage.Run(state); err != nil {
			return nil, calcerr.WrapWithCode(err, calcerr.CodeCalculation, "calcpipe: stage "+stage.Name()+" failed")
		}
	}

	return &PreparedContext{state: state, trace: collector.Events()}, nil
}

// Finalize runs the remaining stages against a previously prepared context and
// target profile, returning the completed Output. It overwrites the
// prepared state's TargetConfig so EHP/mitigation read the target passed
// here rather than whatever target the earlier Prepare call saw, which is
// what lets calccache finalize one prepared context against several
// candidate enemies.
func (e *Engine) Finalize(ctx *PreparedContext, target calcmodel.TargetConfig) (Output, error) {
	if ctx == nil || ctx.state == nil {
		return Output{}, calcerr.Calculation("calcpipe: Finalize called with nil PreparedContext")
	}

	state := ctx.state
	state.input.TargetConfig = target

	bus := tracebus.NewBus()
	collector := tracebus.NewCollector(bus)
	state.bus = bus

	for _, stage := range e.stages[prepareStageCount:] {
		if err := stage.Run(state); err != nil {
			return Output{}, calcerr.WrapWithCode(err, calcerr.CodeCalculation, "calcpipe: stage "+stage.Name()+" failed")
		}
	}

	events := append(append([]tracebus.TraceEvent{}, ctx.trace...), collector.Events()...)
	return stateToOutput(state, events), nil
}

func stateToOutput(state *calcState, trace []tracebus.TraceEvent) Output {
	return Output{
		DPSTheoretical:  state.dpsTheoretical,
		DPSEffective:    state.dpsEffective,
		HitDamage:       state.hitDamage,
		Rate:            state.rate,
		CritChance:      state.critChance,
		CritMultiplier:  state.critMultiplier,
		HitChance:       state.hitChance,
		EhpSeries:       state.ehp,
		DamageBreakdown: state.breakdown,
		DebugTrace:      trace,
	}
}
