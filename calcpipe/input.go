// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

// Package calcpipe runs the fourteen-phase damage calculation:
// sanitize equipped items, build the active tag context, aggregate stats,
// resolve the active skill's level-scaled base damage, run conversion,
// apply inc/more, then derive rate, crit, hit chance, DPS, EHP, and the
// attributed multiplier breakdown.
package calcpipe

import "github.com/leeeee/tli-bd-assistant/calcmodel"

// PreviewSlot lets the caller ask "what if I equipped this instead" without
// mutating their actual loadout: Item replaces (not joins) whatever already
// occupies Slot, matching the sanitizer's replace semantics.
type PreviewSlot struct {
	Slot calcmodel.ItemSlot
	Item calcmodel.Item
}

// Input is everything one calculation needs, decoded by calcio at the
// host boundary into these in-memory types.
type Input struct {
	ContextFlags        map[string]bool
	ContextValues       map[string]float64
	TargetConfig        calcmodel.TargetConfig
	Items               []calcmodel.Item
	ActiveSkill         calcmodel.Skill
	SupportSkills       []calcmodel.Skill
	GlobalOverrides     map[string]float64
	PreviewSlot         *PreviewSlot
	MechanicStates      []calcmodel.MechanicState
	MechanicDefinitions []calcmodel.MechanicDefinition
}
