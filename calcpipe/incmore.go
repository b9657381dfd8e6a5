// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calcpipe

import (
	"github.com/leeeee/tli-bd-assistant/condition"
	"github.com/leeeee/tli-bd-assistant/conversion"
	"github.com/leeeee/tli-bd-assistant/tagging"
)

// damageTypeStatKey maps each DamageType to the stat-key suffix ("dmg.<x>")
// the aggregator routes its inc/more contributions under (Physical's
// abbreviation does not match its tag name, everything else does).
var damageTypeStatKey = map[conversion.DamageType]string{
	conversion.Physical:  "phys",
	conversion.Lightning: "lightning",
	conversion.Cold:      "cold",
	conversion.Fire:      "fire",
	conversion.Chaos:     "chaos",
}

// contextTagIncKeys is every active-context tag whose presence adds its own
// named "dmg.<tag>" inc bucket.
var contextTagIncKeys = []struct {
	tag string
	key string
}{
	{tagging.TagSpell, "dmg.spell"},
	{tagging.TagAttack, "dmg.attack"},
	{tagging.TagMelee, "dmg.melee"},
	{tagging.TagAOE, "dmg.aoe"},
	{tagging.TagProjectile, "dmg.projectile"},
}

// incMoreStage computes, for every surviving bucket, the richer
// own-type + elemental + every-distinct-history-type + active-context-tag
// increased sum and the own-type + spell + every-distinct-history-type more
// product, and applies both to the bucket's min/max.
type incMoreStage struct{}

func (incMoreStage) Name() string { return "Modification" }

func (s incMoreStage) Run(state *calcState) error {
	registry := state.registry
	pool := state.pool
	ctx := state.evalCtx

	modified := make(map[conversion.DamageType]conversion.Bucket, len(state.damagePool))
	for dtype, bucket := range state.damagePool {
		if bucket.IsZero() {
			continue
		}

		ownKey := damageTypeStatKey[dtype]
		totalInc := pool.GetIncreased("dmg.all") + pool.GetIncreased("dmg."+ownKey)

		if hasElementalHistory(bucket, registry) {
			totalInc += pool.GetIncreased("dmg.elemental")
		}

		// Tag retention: increased damage keyed on any type in the
		// bucket's history still applies after conversion.
		for _, t := range conversion.AllOrdered() {
			if t == dtype {
				continue
			}
			if id, ok := registry.IDOf(t.TagName()); ok && bucket.HistoryTags.Contains(id) {
				totalInc += pool.GetIncreased("dmg." + damageTypeStatKey[t])
			}
		}

		for _, ct := range contextTagIncKeys {
			if hasActiveTag(ctx, ct.tag) {
				totalInc += pool.GetIncreased(ct.key)
			}
		}

		moreMultiplier := pool.GetMoreMultiplier("dmg.all") * pool.GetMoreMultiplier("dmg."+ownKey)
		if hasActiveTag(ctx, tagging.TagSpell) {
			moreMultiplier *= pool.GetMoreMultiplier("dmg.spell")
		}
		for _, t := range conversion.AllOrdered() {
			if t == dtype {
				continue
			}
			if id, ok := registry.IDOf(t.TagName()); ok && bucket.HistoryTags.Contains(id) {
				moreMultiplier *= pool.GetMoreMultiplier("dmg." + damageTypeStatKey[t])
			}
		}

		incMultiplier := 1.0 + totalInc
		bucket.Min *= incMultiplier * moreMultiplier
		bucket.Max *= incMultiplier * moreMultiplier
		modified[dtype] = bucket
	}

	state.modified = modified
	values := make(map[string]float64, len(modified))
	for dtype, bucket := range modified {
		values[dtype.Key()] = bucket.Average()
	}
	state.emit("Modification", "applied inc/more modifiers", values)
	return nil
}

func hasElementalHistory(bucket conversion.Bucket, registry *tagging.Registry) bool {
	for _, name := range []string{tagging.TagFire, tagging.TagCold, tagging.TagLightning} {
		if id, ok := registry.IDOf(name); ok && bucket.HistoryTags.Contains(id) {
			return true
		}
	}
	return false
}

func hasActiveTag(ctx *condition.EvalContext, name string) bool {
	if ctx == nil || ctx.Registry == nil {
		return false
	}
	id, ok := ctx.Registry.IDOf(name)
	if !ok {
		return false
	}
	return ctx.Tags.Contains(id)
}
