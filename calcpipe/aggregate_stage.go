// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calcpipe

import (
	"github.com/leeeee/tli-bd-assistant/aggregate"
	"github.com/leeeee/tli-bd-assistant/mechanics"
)

// aggregateStage runs the stat aggregator over items, the active
// skill, supports, and overrides, folding in mechanics' base effects, and
// finalize into a stat pool plus its parallel modifier-store mirror.
type aggregateStage struct{}

func (aggregateStage) Name() string { return "Aggregation" }

func (aggregateStage) Run(s *calcState) error {
	s.mechanicsProc = mechanics.NewProcessor(s.input.MechanicDefinitions, s.input.MechanicStates)

	agg := aggregate.New(s.evalCtx, s.registry, s.mechanicsProc)
	if err := agg.AggregateItems(s.sanitizedItems); err != nil {
		return err
	}
	agg.ApplyMechanicBaseEffects()
	agg.AggregateSkill(s.input.ActiveSkill)
	agg.AggregateSupportSkills(s.input.SupportSkills)
	agg.AggregateOverrides(s.input.GlobalOverrides)

	pool, modDB := agg.Finalize()
	s.aggregator = agg
	s.pool = pool
	s.modDB = modDB

	s.emit("Aggregation", "aggregated item, skill, and mechanic stats", nil)
	return nil
}
