// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package aggregate

// ItemLocalStats accumulates one item's own local defense/offense budget
// before it is finalized and folded into the shared pool. Armor, energy
// shield, and evasion are tracked as three independent flat+affix+percent
// accumulators because each can be granted (and increased) independently by
// an item's base implicit, its affixes, and percent-increase affixes, and
// the three must never cross-pollinate (an "increased armor" affix on a
// helmet must not also inflate that helmet's evasion).
type ItemLocalStats struct {
	BaseArmor    float64
	BaseES       float64
	BaseEvasion  float64
	AffixArmor   float64
	AffixES      float64
	AffixEvasion float64

	ArmorPercent   float64
	ESPercent      float64
	EvasionPercent float64

	// Local holds every other ".local" stat this item contributes (weapon
	// physical damage range, weapon-local crit chance/speed), accumulated
	// the same base/increased/more way as the shared pool but scoped to
	// this one item so its percent modifiers never leak onto other items.
	Local *StatPool
}

// NewItemLocalStats creates an empty per-item local accumulator.
func NewItemLocalStats() *ItemLocalStats {
	return &ItemLocalStats{Local: NewStatPool()}
}

// FinalizeDefense resolves the three defense accumulators into their final
// per-item values: (flat base + flat affix) scaled by (1 + percent).
func (s *ItemLocalStats) FinalizeDefense() (armor, es, evasion float64) {
	armor = (s.BaseArmor + s.AffixArmor) * (1.0 + s.ArmorPercent)
	es = (s.BaseES + s.AffixES) * (1.0 + s.ESPercent)
	evasion = (s.BaseEvasion + s.AffixEvasion) * (1.0 + s.EvasionPercent)
	return armor, es, evasion
}
