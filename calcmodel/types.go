// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

// Package calcmodel holds the domain structs shared across the engine's
// components: items, skills, mechanics, and the enemy/target profile. These
// are the in-memory shapes calcio decodes wire input into and calcpipe
// operates on.
package calcmodel

// SkillKind distinguishes an active skill from a support or an aura.
type SkillKind int

const (
	SkillActive SkillKind = iota
	SkillSupport
	SkillAura
)

// ScalingRule is one piecewise interval of per-level compounding damage
// scaling: for every level in [Start, End] (End == 0 means unbounded),
// PerLevel is applied once per level at or above Start.
type ScalingRule struct {
	Start    int
	End      int
	PerLevel float64
}

// SkillLevelData overrides a skill's baseline damage and effectiveness at
// one specific level, for skills whose data files carry exact per-level
// tables instead of a formula.
type SkillLevelData struct {
	Level         int
	BaseDamage    map[string]float64
	Effectiveness float64
}

// Skill is an active skill, a support, or an aura. BaseDamage holds raw
// per-level damage entries keyed like "dmg.fire.min"; Stats holds every
// other stat contribution the aggregator routes by key prefix. LevelData,
// when present, supersedes BaseDamage/Effectiveness for the levels it
// covers.
type Skill struct {
	ID           string
	Kind         SkillKind
	IsAttack     bool
	Level        int
	BaseDamage   map[string]float64
	BaseTime     float64
	Cooldown     float64
	Effectiveness float64
	Tags         []string
	Stats        map[string]float64
	InjectedTags []string
	LevelData    []SkillLevelData
	ScalingRules []ScalingRule
}

// ItemSlot enumerates equipment slots. Ring1/Ring2 are the only slot that
// permits two simultaneous occupants. Memory1-Memory6 are the six
// loadout-independent slots a build can socket regardless of equipment.
type ItemSlot int

const (
	SlotWeaponMain ItemSlot = iota
	SlotWeaponOff
	SlotHelmet
	SlotBody
	SlotGloves
	SlotBoots
	SlotBelt
	SlotAmulet
	SlotRing1
	SlotRing2
	SlotMemory1
	SlotMemory2
	SlotMemory3
	SlotMemory4
	SlotMemory5
	SlotMemory6
)

var slotNames = map[ItemSlot]string{
	SlotWeaponMain: "weapon_main",
	SlotWeaponOff:  "weapon_off",
	SlotHelmet:     "helmet",
	SlotBody:       "chest",
	SlotGloves:     "gloves",
	SlotBoots:      "boots",
	SlotBelt:       "belt",
	SlotAmulet:     "amulet",
	SlotRing1:      "ring1",
	SlotRing2:      "ring2",
	SlotMemory1:    "memory1",
	SlotMemory2:    "memory2",
	SlotMemory3:    "memory3",
	SlotMemory4:    "memory4",
	SlotMemory5:    "memory5",
	SlotMemory6:    "memory6",
}

var slotByName = func() map[string]ItemSlot {
	out := make(map[string]ItemSlot, len(slotNames))
	for slot, name := range slotNames {
		out[name] = slot
	}
	return out
}()

// String renders the slot in the snake_case form the wire boundary uses.
func (s ItemSlot) String() string {
	if name, ok := slotNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseItemSlot resolves a snake_case wire slot name back to an ItemSlot.
func ParseItemSlot(name string) (ItemSlot, bool) {
	slot, ok := slotByName[name]
	return slot, ok
}

// Affix is one item modifier: a group (for exclusivity rules outside this
// engine's scope), a roll value, the stat contributions it grants, tags,
// tag-id requirements gating it, and whether it is local to its own item.
type Affix struct {
	ID           string
	Group        string
	Value        float64
	Stats        map[string]float64
	Tags         []string
	Requirements []string
	IsLocal      bool
}

// Item is one piece of equipment.
type Item struct {
	ID                string
	Slot              ItemSlot
	IsTwoHanded       bool
	BaseImplicitStats map[string]float64
	ImplicitStats     map[string]float64
	Affixes           []Affix
	Tags              []string
	IsUnique          bool
	IsCorrupted       bool
}

// MechanicDefinition is the static shape of one stackable mechanic: the tag
// it's keyed by, how many stacks it caps at by default, and what each
// stack contributes.
type MechanicDefinition struct {
	ID                string
	Category          string
	TagKey            string
	DefaultMaxStacks  uint32
	BaseEffectPerStack map[string]float64
}

// MechanicState is the current stack state of one mechanic.
type MechanicState struct {
	ID             string
	CurrentStacks  uint32
	MaxStacks      uint32
	IsActive       bool
}

// TargetConfig is the enemy/target profile the pipeline mitigates against.
type TargetConfig struct {
	Level            int
	DefenseConstant  float64
	Resistances      map[string]float64
	GenericDR        float64
	Armor            int
	Evasion          int
}
