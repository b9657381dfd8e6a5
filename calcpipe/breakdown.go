// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calcpipe

import (
	"sort"

	"github.com/leeeee/tli-bd-assistant/conversion"
	"github.com/leeeee/tli-bd-assistant/modifier"
	"github.com/leeeee/tli-bd-assistant/tagging"
)

// breakdownStage builds the per-type damage detail and the ten-zone
// multiplier attribution, each zone's sources pulled straight from the
// modifier store so a UI can show exactly which item/affix/support
// contributed.
type breakdownStage struct{}

func (breakdownStage) Name() string { return "Breakdown" }

func (s breakdownStage) Run(state *calcState) error {
	byType := make(map[string]float64, len(state.modified))
	afterConversion := make(map[string]DamageWithHistory, len(state.modified))
	for dtype, bucket := range state.modified {
		key := dtype.Key()
		byType[key] = bucket.Average()
		afterConversion[key] = DamageWithHistory{
			Damage:      bucket.Average(),
			HistoryTags: historyTagNames(bucket, state.registry),
		}
	}

	baseDamage := 0.0
	for _, mm := range state.baseDamages {
		baseDamage += (mm[0] + mm[1]) / 2.0
	}

	armor := state.pool.GetBase("def.armor")
	avgRes := averageResistance(state.input.TargetConfig.Resistances)
	penetration := state.pool.GetBase("pen.resistance")
	vulnerability := 1.0 + state.pool.GetBase("target.increased_damage_taken")
	mechanicsMore := 1.0 + state.pool.GetBase("mechanics.more.dmg")

	zones := []MultiplierZone{
		zoneFrom(state, "Base Damage", "dmg.all", baseDamage),
		zoneFrom(state, "Increased", "dmg.all", 1.0+state.pool.GetIncreased("dmg.all")),
		zoneFrom(state, "More", "dmg.all", state.pool.GetMoreMultiplier("dmg.all")),
		zoneFrom(state, "Crit Expectation", "crit.chance", state.critFactor),
		zoneFrom(state, "Speed", "speed.attack", state.rate),
		zoneFrom(state, "Hit", "acc.rating", state.hitChance),
		{Name: "Defense", Value: 1000.0 / (armor + 1000.0)},
		{Name: "Resistance", Value: maxFloat(0, 1.0-avgRes+penetration)},
		{Name: "Vulnerability", Value: vulnerability},
		zoneFrom(state, "Mechanics", "mechanics.more.dmg", mechanicsMore),
	}

	state.breakdown = DamageBreakdown{
		ByType:          byType,
		BaseDamage:      baseDamage,
		TotalIncreased:  state.pool.GetIncreased("dmg.all"),
		TotalMore:       state.pool.GetMoreMultiplier("dmg.all"),
		AfterConversion: afterConversion,
		Multipliers:     MultiplierBreakdown{Zones: zones},
	}

	state.emit("Breakdown", "built damage breakdown", nil)
	return nil
}

func zoneFrom(state *calcState, name, sourceKey string, value float64) MultiplierZone {
	var sources []MultiplierSource
	if state.modDB != nil {
		// Context-aware so a condition- or requirement-gated modifier that
		// contributed nothing this run doesn't show up in the attribution.
		for _, src := range modifier.GetSourcesWithCtx(state.modDB, sourceKey, state.evalCtx) {
			sources = append(sources, MultiplierSource{Source: src.Source, Value: src.Value, StatKey: sourceKey})
		}
	}
	return MultiplierZone{Name: name, Value: value, Sources: sources}
}

func historyTagNames(bucket conversion.Bucket, registry *tagging.Registry) []string {
	ids := bucket.HistoryTags.IDs()
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := registry.NameOf(id); ok {
			names = append(names, name)
		}
	}
	return names
}

func averageResistance(resistances map[string]float64) float64 {
	if len(resistances) == 0 {
		return 0
	}
	keys := make([]string, 0, len(resistances))
	for k := range resistances {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	total := 0.0
	for _, k := range keys {
		total += resistances[k]
	}
	return total / float64(len(resistances))
}
