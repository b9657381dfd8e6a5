// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leeeee/tli-bd-assistant/calcmodel"
	"github.com/leeeee/tli-bd-assistant/condition"
	"github.com/leeeee/tli-bd-assistant/mechanics"
	"github.com/leeeee/tli-bd-assistant/modifier"
	"github.com/leeeee/tli-bd-assistant/tagging"
)

// StatAggregator folds every stat source for one calculation — item
// implicits and affixes, the active skill, its supports, active mechanic
// base effects, and global overrides — into a StatPool, in a fixed order:
// items, then skill, then supports, then mechanics, then overrides last so
// they always win.
type StatAggregator struct {
	pool      *StatPool
	context   *condition.EvalContext
	registry  *tagging.Registry
	itemLocal map[string]*ItemLocalStats
	mechanics *mechanics.Processor
	modDB     *modifier.DB
}

// New creates a StatAggregator evaluating conditions/requirements against
// ctx and resolving tag names against registry. mechanicsProc may be nil —
// a nil Processor contributes no base effects and resolves every
// .per_<id> key to zero, which is the correct neutral behavior when no
// mechanic state was supplied for this calculation.
func New(ctx *condition.EvalContext, registry *tagging.Registry, mechanicsProc *mechanics.Processor) *StatAggregator {
	return &StatAggregator{
		pool:      NewStatPool(),
		context:   ctx,
		registry:  registry,
		itemLocal: make(map[string]*ItemLocalStats),
		mechanics: mechanicsProc,
		modDB:     modifier.NewDB(),
	}
}

// Pool returns the aggregator's underlying StatPool.
func (a *StatAggregator) Pool() *StatPool { return a.pool }

// ModDB returns the modifier.DB mirror of every stat contribution added so
// far, in parallel with the StatPool. The pipeline's inc/more stage
// reads from this mirror to apply own-type/elemental/context-tag modifier
// resolution that the flat StatPool cannot express on its own (it has no
// notion of a damage type's tag hierarchy).
func (a *StatAggregator) ModDB() *modifier.DB { return a.modDB }

// AggregateItems folds every item's implicits and affixes into the pool,
// in item order, then finalizes each item's local defense/weapon stats.
func (a *StatAggregator) AggregateItems(items []calcmodel.Item) error {
	for _, item := range items {
		if err := a.aggregateSingleItem(item); err != nil {
			return err
		}
	}
	a.finalizeLocalStats()
	return nil
}

func (a *StatAggregator) aggregateSingleItem(item calcmodel.Item) error {
	local := NewItemLocalStats()
	a.itemLocal[item.ID] = local

	for _, key := range sortedKeys(item.BaseImplicitStats) {
		a.applyImplicitStat(item.ID, local, key, item.BaseImplicitStats[key])
	}
	for _, key := range sortedKeys(item.ImplicitStats) {
		a.applyImplicitStat(item.ID, local, key, item.ImplicitStats[key])
	}

	for _, affix := range item.Affixes {
		if !a.checkAffixRequirements(affix) {
			continue
		}
		for _, key := range sortedKeys(affix.Stats) {
			a.applyAffixStat(local, key, affix.Stats[key], affix.ID)
		}
	}
	return nil
}

// sortedKeys returns m's keys sorted, so float accumulation order (and with
// it the bit-exact result) never depends on map iteration order.
func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// applyImplicitStat routes one item-implicit key/value pair. Defense
// implicits (def.armor/def.energy_shield/def.evasion) feed the item's
// three-accumulator local defense budget directly rather than the shared
// pool, since they must be summed with that item's own affixes and percent
// modifiers before folding into the global total.
func (a *StatAggregator) applyImplicitStat(itemID string, local *ItemLocalStats, key string, value float64) {
	switch key {
	case "def.armor":
		local.BaseArmor += value
		return
	case "def.energy_shield":
		local.BaseES += value
		return
	case "def.evasion":
		local.BaseEvasion += value
		return
	}
	a.applyStat(local, key, value, itemID)
}

func (a *StatAggregator) applyAffixStat(local *ItemLocalStats, key string, value float64, source string) {
	switch key {
	case "def.armor":
		local.AffixArmor += value
		return
	case "def.energy_shield":
		local.AffixES += value
		return
	case "def.evasion":
		local.AffixEvasion += value
		return
	case "mod.inc.def.armor.local":
		local.ArmorPercent += value
		return
	case "mod.inc.def.energy_shield.local":
		local.ESPercent += value
		return
	case "mod.inc.def.evasion.local":
		local.EvasionPercent += value
		return
	}
	a.applyStat(local, key, value, source)
}

// applyStat resolves a single stat key/value contribution, handling the
// ".per_<mechanic>" stack-scaling suffix before routing the
// resolved base key to either this item's local pool (".local"-suffixed
// keys) or the shared global pool, and mirroring the same contribution into
// modDB so the damage pipeline's conditional modifier reads see it.
func (a *StatAggregator) applyStat(local *ItemLocalStats, key string, value float64, source string) {
	resolvedKey, resolvedValue := key, value
	if a.mechanics != nil {
		if base, scaled, matched := a.mechanics.CalculatePerStackValue(key, value); matched {
			resolvedKey, resolvedValue = base, scaled
		}
	}

	target := a.pool
	if isLocalStat(resolvedKey) {
		target = local.Local
		resolvedKey = strings.TrimSuffix(resolvedKey, ".local")
		// A weapon's own attack speed is its base rate, not a gear speed
		// bonus; rename it so it routes as Base and folds into the global
		// weapon.base_speed the speed stage reads.
		if resolvedKey == "speed.attack" {
			resolvedKey = "weapon.base_speed"
		}
	}
	a.routeIntoPool(target, resolvedKey, resolvedValue)
	a.addToModDB(resolvedKey, resolvedValue, source, 0)
}

func (a *StatAggregator) routeIntoPool(pool *StatPool, key string, value float64) {
	bare := statKeyFor(key)
	switch routeKind(key) {
	case routeIncreased:
		pool.AddIncreased(bare, value)
	case routeMore:
		pool.AddMore(bare, MoreModifier{Value: value, BucketID: 0, Source: ""})
	default:
		pool.AddBase(bare, value)
	}
}

// addToModDB mirrors the same key-prefix routing used for the StatPool into
// a modifier.DB, so conditional/PerStat-gated contributions remain
// evaluable by the damage pipeline after aggregation instead of being
// collapsed into a single float too early.
func (a *StatAggregator) addToModDB(key string, value float64, source string, bucketID uint32) {
	bare := statKeyFor(key)
	switch routeKind(key) {
	case routeIncreased:
		a.modDB.Add(modifier.Inc(bare, value, source))
	case routeMore:
		a.modDB.Add(modifier.MoreWithBucket(bare, value, bucketID, source))
	default:
		a.modDB.Add(modifier.Base(bare, value, source))
	}
}

// checkAffixRequirements reports whether every tag name in affix.Requirements
// is present (directly or via ancestor inheritance) in the aggregator's
// context tag set. An affix with no requirements is always eligible; an
// affix naming a tag unknown to the registry is treated as failing its
// requirement rather than silently passing, since a typo'd requirement
// should never grant an unconditional bonus.
func (a *StatAggregator) checkAffixRequirements(affix calcmodel.Affix) bool {
	if len(affix.Requirements) == 0 {
		return true
	}
	if a.registry == nil || a.context == nil {
		return false
	}
	for _, name := range affix.Requirements {
		id, ok := a.registry.IDOf(name)
		if !ok || !a.context.Tags.Contains(id) {
			return false
		}
	}
	return true
}

// ApplyMechanicBaseEffects folds every active mechanic's stack-scaled base
// effect into the pool and modDB, as if it were one more item affix
// contribution keyed by mechanic id.
func (a *StatAggregator) ApplyMechanicBaseEffects() {
	if a.mechanics == nil {
		return
	}
	effects := a.mechanics.CalculateBaseEffects()
	keys := make([]string, 0, len(effects))
	for k := range effects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		a.routeIntoPool(a.pool, key, effects[key])
		a.addToModDB(key, effects[key], "mechanic", 0)
	}
}

// AggregateSkill folds the active skill's own stats into the pool at
// bucket 0, the same bucket as the player's own item/passive More
// contributions.
func (a *StatAggregator) AggregateSkill(skill calcmodel.Skill) {
	a.aggregateSkillStats(skill, 0, "skill:"+skill.ID)
}

// AggregateSupportSkills folds each support skill's stats into the pool,
// one bucket per support starting at 100 (bucket_id = 100+index), so each
// support's More contributions stay attributable to that support. The
// product is the same as it would be in one shared bucket, since same-bucket
// More also multiplies as (1+value) per entry.
func (a *StatAggregator) AggregateSupportSkills(supports []calcmodel.Skill) {
	for idx, support := range supports {
		a.aggregateSkillStats(support, uint32(100+idx), fmt.Sprintf("support:%s", support.ID))
	}
}

func (a *StatAggregator) aggregateSkillStats(skill calcmodel.Skill, bucketID uint32, source string) {
	for _, key := range sortedKeys(skill.Stats) {
		resolvedKey, resolvedValue := key, skill.Stats[key]
		if a.mechanics != nil {
			if base, scaled, matched := a.mechanics.CalculatePerStackValue(key, skill.Stats[key]); matched {
				resolvedKey, resolvedValue = base, scaled
			}
		}
		bare := statKeyFor(resolvedKey)
		switch routeKind(resolvedKey) {
		case routeIncreased:
			a.pool.AddIncreased(bare, resolvedValue)
			a.modDB.Add(modifier.Inc(bare, resolvedValue, source))
		case routeMore:
			a.pool.AddMore(bare, MoreModifier{Value: resolvedValue, BucketID: bucketID, Source: source})
			a.modDB.Add(modifier.MoreWithBucket(bare, resolvedValue, bucketID, source))
		default:
			a.pool.AddBase(bare, resolvedValue)
			a.modDB.Add(modifier.Base(bare, resolvedValue, source))
		}
	}
}

// AggregateOverrides applies global overrides last, through the same
// key-prefix dispatch as any item/skill stat (mod.inc./mod.more./speed./
// crit.dmg route to Increased/More, everything else is Base), so a
// "conv.phys_to_fire" or "crit.chance" override lands exactly where
// ExtractConversionRules/calcpipe expect to read it. A Base-routed override
// replaces that key's base outright rather than stacking — the sense in
// which a global override "wins" over whatever items/skills contributed —
// while an Increased/More-routed override stacks an extra modifier
// contribution on top, since there is no sensible "replace" for a
// percentage that is itself a sum/product of many sources.
func (a *StatAggregator) AggregateOverrides(overrides map[string]float64) {
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := overrides[key]
		bare := statKeyFor(key)
		switch routeKind(key) {
		case routeIncreased:
			a.pool.AddIncreased(bare, value)
			a.modDB.Add(modifier.Inc(bare, value, "override"))
		case routeMore:
			a.pool.AddMore(bare, MoreModifier{Value: value, BucketID: 0, Source: "override"})
			a.modDB.Add(modifier.MoreWithBucket(bare, value, 0, "override"))
		default:
			a.pool.SetOverride(bare, value)
			a.modDB.Add(modifier.Override(bare, value, "override"))
		}
	}
}

// finalizeLocalStats resolves every item's local defense accumulators and
// weapon-local pool, folding the results into the shared pool as Base
// contributions (defense sums across all equipped items; weapon-local
// stats fold under their bare key since only one weapon is active at a
// time per slot).
func (a *StatAggregator) finalizeLocalStats() {
	ids := make([]string, 0, len(a.itemLocal))
	for id := range a.itemLocal {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		local := a.itemLocal[id]
		armor, es, evasion := local.FinalizeDefense()
		a.pool.AddBase("def.armor", armor)
		a.pool.AddBase("def.energy_shield", es)
		a.pool.AddBase("def.evasion", evasion)

		// Weapon-local physical damage scales by the same item's local
		// increased-physical before joining the global pool; every other
		// local key resolves within the item and folds in as Base.
		physInc := local.Local.GetIncreased("dmg.phys")
		for _, key := range local.Local.BaseKeys() {
			switch key {
			case "dmg.phys.min", "dmg.phys.max":
				a.pool.AddBase(key, local.Local.GetBase(key)*(1.0+physInc))
			default:
				a.pool.AddBase(key, local.Local.Final(key))
			}
		}
	}
}

// Finalize recalculates the pool and returns it alongside the modifier
// mirror, ready for the damage pipeline to consume.
func (a *StatAggregator) Finalize() (*StatPool, *modifier.DB) {
	a.pool.RecalculateAll()
	return a.pool, a.modDB
}

// FinalizePoolOnly recalculates and returns just the pool, for callers that
// don't need the modifier mirror (e.g. a stats-preview surface that never
// runs the conditional damage pipeline).
func (a *StatAggregator) FinalizePoolOnly() *StatPool {
	a.pool.RecalculateAll()
	return a.pool
}
