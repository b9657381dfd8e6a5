// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calcio

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/leeeee/tli-bd-assistant/calcpipe"
	"github.com/leeeee/tli-bd-assistant/tracebus"
)

// zoneField maps each of the ten MultiplierZone.Name values onto the
// Multipliers struct field it fills. Order mirrors breakdown.go's zones
// slice.
var zoneField = map[string]func(*Multipliers, float64){
	"Base Damage":       func(m *Multipliers, v float64) { m.BaseDamageZone = v },
	"Increased":         func(m *Multipliers, v float64) { m.IncreasedZone = v },
	"More":              func(m *Multipliers, v float64) { m.MoreZone = v },
	"Crit Expectation":  func(m *Multipliers, v float64) { m.CritZone = v },
	"Speed":             func(m *Multipliers, v float64) { m.SpeedZone = v },
	"Hit":               func(m *Multipliers, v float64) { m.HitZone = v },
	"Defense":           func(m *Multipliers, v float64) { m.DefenseZone = v },
	"Resistance":        func(m *Multipliers, v float64) { m.ResistanceZone = v },
	"Vulnerability":     func(m *Multipliers, v float64) { m.VulnerabilityZone = v },
	"Mechanics":         func(m *Multipliers, v float64) { m.MechanicsZone = v },
}

// EncodeOutput marshals out into the CalculatorOutput JSON document.
func EncodeOutput(out calcpipe.Output) ([]byte, error) {
	return json.Marshal(FromPipelineOutput(out))
}

// FromPipelineOutput converts a calcpipe.Output into its wire shape.
func FromPipelineOutput(out calcpipe.Output) CalculatorOutput {
	return CalculatorOutput{
		RequestID:       uuid.NewString(),
		DPSTheoretical:  out.DPSTheoretical,
		DPSEffective:    out.DPSEffective,
		HitDamage:       out.HitDamage,
		Rate:            out.Rate,
		CritChance:      out.CritChance,
		CritMultiplier:  out.CritMultiplier,
		HitChance:       out.HitChance,
		EhpSeries:       toWireEhpSeries(out.EhpSeries),
		DamageBreakdown: toWireBreakdown(out.DamageBreakdown),
		DebugTrace:      toWireTrace(out.DebugTrace),
	}
}

func toWireEhpSeries(e calcpipe.EhpSeries) EhpSeries {
	return EhpSeries{
		Physical:  e.Physical,
		Fire:      e.Fire,
		Cold:      e.Cold,
		Lightning: e.Lightning,
		Chaos:     e.Chaos,
	}
}

func toWireBreakdown(b calcpipe.DamageBreakdown) DamageBreakdown {
	afterConversion := make(map[string]DamageWithHistory, len(b.AfterConversion))
	for k, v := range b.AfterConversion {
		afterConversion[k] = DamageWithHistory{Damage: v.Damage, HistoryTags: v.HistoryTags}
	}

	mult := Multipliers{ZoneSources: make(map[string][]MultiplierSource, len(b.Multipliers.Zones))}
	for _, zone := range b.Multipliers.Zones {
		if set, ok := zoneField[zone.Name]; ok {
			set(&mult, zone.Value)
		}
		sources := make([]MultiplierSource, 0, len(zone.Sources))
		for _, src := range zone.Sources {
			sources = append(sources, MultiplierSource{Source: src.Source, Value: src.Value, StatKey: src.StatKey})
		}
		mult.ZoneSources[zone.Name] = sources
	}

	return DamageBreakdown{
		ByType:          b.ByType,
		BaseDamage:      b.BaseDamage,
		TotalIncreased:  b.TotalIncreased,
		TotalMore:       b.TotalMore,
		AfterConversion: afterConversion,
		Multipliers:     mult,
	}
}

func toWireTrace(events []tracebus.TraceEvent) []DebugTraceEntry {
	entries := make([]DebugTraceEntry, 0, len(events))
	for _, e := range events {
		entries = append(entries, DebugTraceEntry{
			Phase:       e.Phase,
			Description: e.Description,
			Values:      e.Values,
			MatchedTags: e.MatchedTags,
		})
	}
	return entries
}
