// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calcpipe

import (
	"github.com/leeeee/tli-bd-assistant/aggregate"
	"github.com/leeeee/tli-bd-assistant/calcmodel"
	"github.com/leeeee/tli-bd-assistant/condition"
	"github.com/leeeee/tli-bd-assistant/conversion"
	"github.com/leeeee/tli-bd-assistant/mechanics"
	"github.com/leeeee/tli-bd-assistant/modifier"
	"github.com/leeeee/tli-bd-assistant/tagging"
	"github.com/leeeee/tli-bd-assistant/tracebus"
)

// calcState is threaded through every Stage. The pipeline has exactly one
// value shape from sanitization through the final breakdown, so Stage is
// specialized to *calcState instead of passing an opaque value that every
// phase would have to type-assert.
type calcState struct {
	input    Input
	registry *tagging.Registry
	bus      *tracebus.Bus

	sanitizedItems []calcmodel.Item
	evalCtx        *condition.EvalContext
	mechanicsProc  *mechanics.Processor

	aggregator *aggregate.StatAggregator
	pool       *aggregate.StatPool
	modDB      *modifier.DB

	effectiveness   float64
	levelMultiplier float64

	baseDamages map[conversion.DamageType][2]float64
	damagePool  map[conversion.DamageType]conversion.Bucket
	modified    map[conversion.DamageType]conversion.Bucket
	expected    map[conversion.DamageType]float64

	rate float64

	critChance     float64
	critMultiplier float64
	critFactor     float64

	hitChance float64

	dpsTheoretical float64
	dpsEffective   float64
	hitDamage      float64

	ehp EhpSeries

	breakdown DamageBreakdown
}

// emit publishes a trace event for the current phase, matching every
// stage's "publish a TraceEvent after it runs" contract.
func (s *calcState) emit(phase, description string, values map[string]float64) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(tracebus.TraceEvent{Phase: phase, Description: description, Values: values})
}
