// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leeeee/tli-bd-assistant/aggregate"
	"github.com/leeeee/tli-bd-assistant/calccache"
	"github.com/leeeee/tli-bd-assistant/calcmodel"
	"github.com/leeeee/tli-bd-assistant/calcpipe"
	"github.com/leeeee/tli-bd-assistant/condition"
	"github.com/leeeee/tli-bd-assistant/engine"
	"github.com/leeeee/tli-bd-assistant/mechanics"
	"github.com/leeeee/tli-bd-assistant/tagging"
)

func newTestEngine() *calcpipe.Engine {
	return calcpipe.New(tagging.Fallback())
}

func s1Input() calcpipe.Input {
	return calcpipe.Input{
		ContextFlags:    map[string]bool{},
		ContextValues:   map[string]float64{},
		GlobalOverrides: map[string]float64{},
		ActiveSkill: calcmodel.Skill{
			ID:            "s1_spell",
			Kind:          calcmodel.SkillActive,
			IsAttack:      false,
			Level:         1,
			BaseDamage:    map[string]float64{"dmg.fire.min": 50.0, "dmg.fire.max": 100.0},
			BaseTime:      0.8,
			Effectiveness: 1.0,
			Tags:          []string{tagging.TagSpell, tagging.TagFire},
			Stats:         map[string]float64{},
		},
	}
}

// TestPureSingleTypeBaseline: a spell with no items/supports/mechanics
// against enemy defaults reproduces hand-computed expected values.
func TestPureSingleTypeBaseline(t *testing.T) {
	out, err := newTestEngine().Calculate(s1Input())
	require.NoError(t, err)

	require.InDelta(t, 1.25, out.Rate, 0.0001)
	require.Equal(t, 0.0, out.CritChance)
	require.InDelta(t, 1.5, out.CritMultiplier, 0.0001)
	require.InDelta(t, 75.0, out.HitDamage, 0.0001)
	require.InDelta(t, 93.75, out.DPSTheoretical, 0.01)
}

// TestTagRetentionViaConversion: converting half of a physical attack's
// damage to fire must leave the physical bucket's history at {Physical} and
// the fire bucket's history at {Physical, Fire}, each inc'd per its own
// retained history.
func TestTagRetentionViaConversion(t *testing.T) {
	input := s1Input()
	input.ActiveSkill.IsAttack = true
	input.ActiveSkill.BaseDamage = map[string]float64{}
	input.ActiveSkill.Tags = []string{tagging.TagAttack, tagging.TagMelee}
	input.Items = []calcmodel.Item{{
		ID:            "s2_sword",
		Slot:          calcmodel.SlotWeaponMain,
		ImplicitStats: map[string]float64{"dmg.phys.min": 50.0, "dmg.phys.max": 100.0},
	}}
	input.GlobalOverrides["conv.phys_to_fire"] = 0.5
	input.GlobalOverrides["mod.inc.dmg.phys"] = 1.0
	input.GlobalOverrides["mod.inc.dmg.fire"] = 1.0

	out, err := newTestEngine().Calculate(input)
	require.NoError(t, err)

	physHistory := out.DamageBreakdown.AfterConversion["physical"].HistoryTags
	fireHistory := out.DamageBreakdown.AfterConversion["fire"].HistoryTags
	require.Contains(t, physHistory, tagging.TagPhysical)
	require.Contains(t, fireHistory, tagging.TagPhysical)
	require.Contains(t, fireHistory, tagging.TagFire)

	require.InDelta(t, 75.0, out.DamageBreakdown.ByType["physical"], 0.01)
	require.InDelta(t, 112.5, out.DamageBreakdown.ByType["fire"], 0.01)
	require.InDelta(t, 187.5, out.DamageBreakdown.ByType["physical"]+out.DamageBreakdown.ByType["fire"], 0.01)
}

// TestIncreasedDamageDoubling: a +100% fire inc override must more than
// 1.5x the S1 baseline's hit damage.
func TestIncreasedDamageDoubling(t *testing.T) {
	e := newTestEngine()
	base, err := e.Calculate(s1Input())
	require.NoError(t, err)

	boosted := s1Input()
	boosted.GlobalOverrides["mod.inc.dmg.fire"] = 1.0
	out, err := e.Calculate(boosted)
	require.NoError(t, err)

	require.Greater(t, out.HitDamage, base.HitDamage*1.5)
}

// TestCacheHitMissCounters: running S1 three times through a capacity-16
// cache must land exactly 2 hits / 1 miss, hit-rate in (0.6, 0.7).
func TestCacheHitMissCounters(t *testing.T) {
	cache := calccache.New(newTestEngine(), calccache.WithResultCapacity(16))
	input := s1Input()

	for i := 0; i < 3; i++ {
		_, err := engine.CalculateCached(cache, input)
		require.NoError(t, err)
	}

	stats := engine.GetCacheStats(cache)
	require.Equal(t, uint64(1), stats.Misses)
	require.Equal(t, uint64(2), stats.Hits)
	require.Greater(t, stats.HitRate, 0.6)
	require.Less(t, stats.HitRate, 0.7)
}

// TestMechanicPerStackScaling: a mechanic contributing mod.inc.dmg.all
// 0.04 per stack at 4 active stacks must yield exactly 0.16 inc, and zero
// with no active stacks.
func TestMechanicPerStackScaling(t *testing.T) {
	defs := []calcmodel.MechanicDefinition{
		{ID: "focus_blessing", BaseEffectPerStack: map[string]float64{"mod.inc.dmg.all": 0.04}},
	}

	active := mechanics.NewProcessor(defs, []calcmodel.MechanicState{
		{ID: "focus_blessing", CurrentStacks: 4, IsActive: true},
	})
	agg := aggregate.New(condition.NewEvalContext(nil), nil, active)
	agg.ApplyMechanicBaseEffects()
	pool := agg.FinalizePoolOnly()
	require.InDelta(t, 0.16, pool.GetIncreased("dmg.all"), 0.0001)

	inactive := mechanics.NewProcessor(defs, []calcmodel.MechanicState{
		{ID: "focus_blessing", CurrentStacks: 0, IsActive: false},
	})
	agg2 := aggregate.New(condition.NewEvalContext(nil), nil, inactive)
	agg2.ApplyMechanicBaseEffects()
	pool2 := agg2.FinalizePoolOnly()
	require.InDelta(t, 0.0, pool2.GetIncreased("dmg.all"), 0.0001)
}

// TestMoreBucketGrouping: two independently-bucketed supports multiply
// the same as two item-mores explicitly grouped under bucket 0, and a
// 0.2/0.3 pair sharing a bucket contributes 1.2*1.3 = 1.56.
func TestMoreBucketGrouping(t *testing.T) {
	viaSupports := aggregate.New(condition.NewEvalContext(nil), nil, nil)
	viaSupports.AggregateSupportSkills([]calcmodel.Skill{
		{ID: "support_a", Stats: map[string]float64{"mod.more.dmg.all": 0.25}},
		{ID: "support_b", Stats: map[string]float64{"mod.more.dmg.all": 0.25}},
	})
	supportPool := viaSupports.FinalizePoolOnly()
	require.InDelta(t, 1.25*1.25, supportPool.GetMoreMultiplier("dmg.all"), 0.0001)

	viaBucket := aggregate.New(condition.NewEvalContext(nil), nil, nil)
	viaBucket.Pool().AddMore("dmg.all", aggregate.MoreModifier{Value: 0.25, BucketID: 0, Source: "item_a"})
	viaBucket.Pool().AddMore("dmg.all", aggregate.MoreModifier{Value: 0.25, BucketID: 0, Source: "item_b"})
	bucketPool := viaBucket.FinalizePoolOnly()
	require.InDelta(t, 1.25*1.25, bucketPool.GetMoreMultiplier("dmg.all"), 0.0001)

	mixed := aggregate.New(condition.NewEvalContext(nil), nil, nil)
	mixed.Pool().AddMore("dmg.all", aggregate.MoreModifier{Value: 0.2, BucketID: 0, Source: "item_c"})
	mixed.Pool().AddMore("dmg.all", aggregate.MoreModifier{Value: 0.3, BucketID: 0, Source: "item_d"})
	mixedPool := mixed.FinalizePoolOnly()
	require.InDelta(t, 1.56, mixedPool.GetMoreMultiplier("dmg.all"), 0.0001)
}

// TestRepeatability: calculate(x) == calculate(x) bitwise on every
// real-valued output field.
func TestRepeatability(t *testing.T) {
	e := newTestEngine()
	a, err := e.Calculate(s1Input())
	require.NoError(t, err)
	b, err := e.Calculate(s1Input())
	require.NoError(t, err)

	require.Equal(t, a.DPSTheoretical, b.DPSTheoretical)
	require.Equal(t, a.DPSEffective, b.DPSEffective)
	require.Equal(t, a.HitDamage, b.HitDamage)
	require.Equal(t, a.Rate, b.Rate)
	require.Equal(t, a.CritChance, b.CritChance)
	require.Equal(t, a.CritMultiplier, b.CritMultiplier)
	require.Equal(t, a.HitChance, b.HitChance)
}

// TestCacheTransparency: calculate_cached(x) == calculate(x).
func TestCacheTransparency(t *testing.T) {
	e := newTestEngine()
	direct, err := e.Calculate(s1Input())
	require.NoError(t, err)

	cache := calccache.New(e)
	cached, err := engine.CalculateCached(cache, s1Input())
	require.NoError(t, err)

	require.Equal(t, direct.DPSTheoretical, cached.DPSTheoretical)
	require.Equal(t, direct.HitDamage, cached.HitDamage)
}

// TestCacheKeyCompleteness: varying items, skill level, support stats,
// mechanic stacks, target, overrides, or a context flag/value each changes
// the fingerprint.
func TestCacheKeyCompleteness(t *testing.T) {
	base := s1Input()
	baseKey := calccache.Fingerprint(base)

	variants := map[string]calcpipe.Input{}

	withItem := s1Input()
	withItem.Items = []calcmodel.Item{{ID: "ring", Slot: calcmodel.SlotRing1}}
	variants["items"] = withItem

	withLevel := s1Input()
	withLevel.ActiveSkill.Level = 5
	variants["skill_level"] = withLevel

	withSupport := s1Input()
	withSupport.SupportSkills = []calcmodel.Skill{{ID: "sup", Stats: map[string]float64{"mod.more.dmg.all": 0.1}}}
	variants["support_stats"] = withSupport

	withMechanic := s1Input()
	withMechanic.MechanicStates = []calcmodel.MechanicState{{ID: "m", CurrentStacks: 1, IsActive: true}}
	variants["mechanic_stacks"] = withMechanic

	withTarget := s1Input()
	withTarget.TargetConfig.Level = 90
	variants["target"] = withTarget

	withOverride := s1Input()
	withOverride.GlobalOverrides["mod.inc.dmg.fire"] = 0.5
	variants["overrides"] = withOverride

	withFlag := s1Input()
	withFlag.ContextFlags["low_life"] = true
	variants["context_flag"] = withFlag

	withValue := s1Input()
	withValue.ContextValues["life_percent"] = 0.2
	variants["context_value"] = withValue

	for name, variant := range variants {
		require.NotEqual(t, baseKey, calccache.Fingerprint(variant), "expected fingerprint to change for %s", name)
	}
}

// TestSlotSanitization: an equipped off-hand item plus a two-handed preview
// weapon in the main-hand slot passes sanitization and still yields a
// positive rate.
func TestSlotSanitization(t *testing.T) {
	input := s1Input()
	input.Items = []calcmodel.Item{
		{ID: "offhand", Slot: calcmodel.SlotWeaponOff},
	}
	input.PreviewSlot = &calcpipe.PreviewSlot{
		Slot: calcmodel.SlotWeaponMain,
		Item: calcmodel.Item{ID: "greatsword", Slot: calcmodel.SlotWeaponMain, IsTwoHanded: true},
	}

	out, err := newTestEngine().Calculate(input)
	require.NoError(t, err)
	require.Greater(t, out.Rate, 0.0)
}

// TestTagRetention: for every post-conversion bucket, the history tags
// of every damage type that contributed to it must be present.
func TestTagRetention(t *testing.T) {
	input := s1Input()
	input.ActiveSkill.IsAttack = true
	input.ActiveSkill.BaseDamage = map[string]float64{}
	input.Items = []calcmodel.Item{{
		ID:            "sword",
		Slot:          calcmodel.SlotWeaponMain,
		ImplicitStats: map[string]float64{"dmg.phys.min": 50.0, "dmg.phys.max": 100.0},
	}}
	input.GlobalOverrides["conv.phys_to_fire"] = 1.0

	out, err := newTestEngine().Calculate(input)
	require.NoError(t, err)

	fireHistory := out.DamageBreakdown.AfterConversion["fire"].HistoryTags
	require.Contains(t, fireHistory, tagging.TagPhysical)
	require.Contains(t, fireHistory, tagging.TagFire)
}

// TestMoreBucketLaw: a single more of +x% yields 1+x, and two mores yield
// (1+x)(1+y) whether they share a bucket or not — bucketing groups sources
// for attribution without changing the product.
func TestMoreBucketLaw(t *testing.T) {
	single := aggregate.New(condition.NewEvalContext(nil), nil, nil)
	single.Pool().AddMore("dmg.all", aggregate.MoreModifier{Value: 0.3, BucketID: 0, Source: "x"})
	require.InDelta(t, 1.3, single.FinalizePoolOnly().GetMoreMultiplier("dmg.all"), 0.0001)

	sameBucket := aggregate.New(condition.NewEvalContext(nil), nil, nil)
	sameBucket.Pool().AddMore("dmg.all", aggregate.MoreModifier{Value: 0.3, BucketID: 0, Source: "x"})
	sameBucket.Pool().AddMore("dmg.all", aggregate.MoreModifier{Value: 0.2, BucketID: 0, Source: "y"})
	require.InDelta(t, 1.3*1.2, sameBucket.FinalizePoolOnly().GetMoreMultiplier("dmg.all"), 0.0001)

	diffBucket := aggregate.New(condition.NewEvalContext(nil), nil, nil)
	diffBucket.Pool().AddMore("dmg.all", aggregate.MoreModifier{Value: 0.3, BucketID: 0, Source: "x"})
	diffBucket.Pool().AddMore("dmg.all", aggregate.MoreModifier{Value: 0.2, BucketID: 1, Source: "y"})
	require.InDelta(t, 1.3*1.2, diffBucket.FinalizePoolOnly().GetMoreMultiplier("dmg.all"), 0.0001)
}

// TestPerStatScaling: an affix stat "<key>.per_<mechanic>" of value v
// contributes v * the mechanic's active stack count to <key>.
func TestPerStatScaling(t *testing.T) {
	defs := []calcmodel.MechanicDefinition{}
	proc := mechanics.NewProcessor(defs, nil)
	agg := aggregate.New(condition.NewEvalContext(nil), nil, proc)

	item := calcmodel.Item{
		ID: "ring",
		Affixes: []calcmodel.Affix{
			{ID: "scaling", Stats: map[string]float64{"mod.inc.dmg.fire.per_fighting_will": 0.01}},
		},
	}
	require.NoError(t, agg.AggregateItems([]calcmodel.Item{item}))

	proc2 := mechanics.NewProcessor([]calcmodel.MechanicDefinition{
		{ID: "fighting_will", BaseEffectPerStack: map[string]float64{}},
	}, []calcmodel.MechanicState{{ID: "fighting_will", CurrentStacks: 37, IsActive: true}})
	agg2 := aggregate.New(condition.NewEvalContext(nil), nil, proc2)
	require.NoError(t, agg2.AggregateItems([]calcmodel.Item{item}))
	pool := agg2.FinalizePoolOnly()
	require.InDelta(t, 0.01*37, pool.GetIncreased("dmg.fire"), 0.0001)
}

// TestLuckyExpectation: with lucky, a bucket's expected damage is
// min + (max-min)*2/3; without, the plain midpoint.
func TestLuckyExpectation(t *testing.T) {
	e := newTestEngine()

	unlucky, err := e.Calculate(s1Input())
	require.NoError(t, err)
	require.InDelta(t, 75.0, unlucky.HitDamage, 0.01)

	lucky := s1Input()
	lucky.ContextFlags["lucky_damage"] = true
	luckyOut, err := e.Calculate(lucky)
	require.NoError(t, err)
	require.InDelta(t, 50.0+(100.0-50.0)*2.0/3.0, luckyOut.HitDamage, 0.01)
}

// TestCritChanceBounds: crit_chance stays in [0,1]; cannot_crit forces
// crit_factor (and crit_multiplier) to 1.
func TestCritChanceBounds(t *testing.T) {
	forced := s1Input()
	forced.ContextFlags["cannot_crit"] = true
	out, err := newTestEngine().Calculate(forced)
	require.NoError(t, err)

	require.Equal(t, 0.0, out.CritChance)
	require.Equal(t, 1.0, out.CritMultiplier)
	require.GreaterOrEqual(t, out.CritChance, 0.0)
	require.LessOrEqual(t, out.CritChance, 1.0)
}

// TestDeterminismAcrossMapOrder: permuting map insertion order in the
// input does not change the output, since calccache's fingerprint (and the
// pipeline's own map traversal) sorts keys before any observable use.
func TestDeterminismAcrossMapOrder(t *testing.T) {
	a := s1Input()
	a.ContextValues["alpha"] = 1
	a.ContextValues["beta"] = 2
	a.GlobalOverrides["mod.inc.dmg.fire"] = 0.5
	a.GlobalOverrides["mod.inc.dmg.elemental"] = 0.25

	b := s1Input()
	b.ContextValues["beta"] = 2
	b.ContextValues["alpha"] = 1
	b.GlobalOverrides["mod.inc.dmg.elemental"] = 0.25
	b.GlobalOverrides["mod.inc.dmg.fire"] = 0.5

	e := newTestEngine()
	outA, err := e.Calculate(a)
	require.NoError(t, err)
	outB, err := e.Calculate(b)
	require.NoError(t, err)

	require.Equal(t, outA.DPSTheoretical, outB.DPSTheoretical)
	require.Equal(t, calccache.Fingerprint(a), calccache.Fingerprint(b))
}
