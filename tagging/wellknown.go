// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package tagging

// Well-known tag names. These are the names the fallback registry (see
// Fallback) always provides, and the names the rest of the engine (the
// conversion engine's damage types, the pipeline's context-flag injection)
// refers to directly. A data-driven registry loaded from file may use
// different names for everything else, but these must resolve for the
// engine to function, since the tag-context and conversion stages
// hard-code them.
const (
	TagDamage    = "Tag_Damage"
	TagPhysical  = "Tag_Physical"
	TagElemental = "Tag_Elemental"
	TagFire      = "Tag_Fire"
	TagCold      = "Tag_Cold"
	TagLightning = "Tag_Lightning"
	TagChaos     = "Tag_Chaos"

	TagAttack    = "Tag_Attack"
	TagSpell     = "Tag_Spell"
	TagMelee     = "Tag_Melee"
	TagRanged    = "Tag_Ranged"
	TagAOE       = "Tag_AOE"
	TagProjectile = "Tag_Projectile"
	TagDoT       = "Tag_DoT"

	TagStateMoving           = "Tag_State_Moving"
	TagStateStationary       = "Tag_State_Stationary"
	TagStateLowLife          = "Tag_State_Low_Life"
	TagStateFullLife         = "Tag_State_Full_Life"
	TagStateRecentlyCrit     = "Tag_State_Recently_Crit"
	TagStateRecentlyKilled   = "Tag_State_Recently_Killed"
	TagStateEnemyChilled     = "Tag_State_Enemy_Chilled"
	TagStateEnemyFrozen      = "Tag_State_Enemy_Frozen"
	TagStateEnemyShocked     = "Tag_State_Enemy_Shocked"
	TagStateEnemyIgnited     = "Tag_State_Enemy_Ignited"
	TagStateEnemyControlled  = "Tag_State_Enemy_Controlled"
)

// DamageTypeTags maps each of the five damage types (in the fixed
// Physical → Lightning → Cold → Fire → Chaos order the conversion engine
// uses) to its well-known tag name.
var DamageTypeTags = map[string]string{
	"phys":      TagPhysical,
	"lightning": TagLightning,
	"cold":      TagCold,
	"fire":      TagFire,
	"chaos":     TagChaos,
}

// Fallback builds the minimal hard-coded registry the engine falls back to
// when the registry JSON/YAML fails to parse, so the pipeline never panics
// at startup. It carries exactly the elemental/physical/chaos
// damage hierarchy and the attack/spell/melee/ranged/AOE/projectile/DoT
// axis, plus the context-flag state tags the pipeline injects.
func Fallback() *Registry {
	r := NewRegistry()

	names := []string{
		TagDamage, TagPhysical, TagElemental, TagFire, TagCold, TagLightning, TagChaos,
		TagAttack, TagSpell, TagMelee, TagRanged, TagAOE, TagProjectile, TagDoT,
		TagStateMoving, TagStateStationary, TagStateLowLife, TagStateFullLife,
		TagStateRecentlyCrit, TagStateRecentlyKilled, TagStateEnemyChilled,
		TagStateEnemyFrozen, TagStateEnemyShocked, TagStateEnemyIgnited, TagStateEnemyControlled,
	}
	for i, name := range names {
		r.Register(name, uint32(i))
	}

	damage := r.MustID(TagDamage)
	elemental := r.MustID(TagElemental)
	r.SetParents(r.MustID(TagPhysical), []uint32{damage})
	r.SetParents(elemental, []uint32{damage})
	r.SetParents(r.MustID(TagFire), []uint32{elemental})
	r.SetParents(r.MustID(TagCold), []uint32{elemental})
	r.SetParents(r.MustID(TagLightning), []uint32{elemental})
	r.SetParents(r.MustID(TagChaos), []uint32{damage})

	// Precompute cannot fail on the fallback registry's fixed, acyclic
	// graph; a panic here would indicate a programmer error in this file,
	// not bad user data.
	if err := r.Precompute(); err != nil {
		panic("tagging: fallback registry has a cycle: " + err.Error())
	}
	return r
}
