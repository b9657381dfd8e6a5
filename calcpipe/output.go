// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calcpipe

import "github.com/leeeee/tli-bd-assistant/tracebus"

// EhpSeries is effective-HP against each damage type.
type EhpSeries struct {
	Physical  float64
	Fire      float64
	Cold      float64
	Lightning float64
	Chaos     float64
}

// DamageWithHistory pairs a post-conversion bucket's average damage with the
// human-readable tags it retained through conversion.
type DamageWithHistory struct {
	Damage      float64
	HistoryTags []string
}

// MultiplierSource attributes part of a zone's multiplier to the modifier
// that produced it, so a UI can render "+20% from Ring of Flame" rather
// than a single opaque number.
type MultiplierSource struct {
	Source  string
	Value   float64
	StatKey string
}

// MultiplierZone is one of the ten named contributors the final DPS number
// is factored into.
type MultiplierZone struct {
	Name    string
	Value   float64
	Sources []MultiplierSource
}

// MultiplierBreakdown is the ten-zone attribution: base damage,
// increased, more, crit expectation, speed, hit, defense, resistance,
// vulnerability, mechanics.
type MultiplierBreakdown struct {
	Zones []MultiplierZone
}

// DamageBreakdown is the per-type damage detail feeding the output's
// damage_breakdown field.
type DamageBreakdown struct {
	ByType          map[string]float64
	BaseDamage      float64
	TotalIncreased  float64
	TotalMore       float64
	AfterConversion map[string]DamageWithHistory
	Multipliers     MultiplierBreakdown
}

// Output is the result of one pipeline run.
type Output struct {
	DPSTheoretical  float64
	DPSEffective    float64
	HitDamage       float64
	Rate            float64
	CritChance      float64
	CritMultiplier  float64
	HitChance       float64
	EhpSeries       EhpSeries
	DamageBreakdown DamageBreakdown
	DebugTrace      []tracebus.TraceEvent
}
