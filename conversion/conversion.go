// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

// Package conversion implements damage conversion and gain-as-extra:
// Phase A folds "extra.<a>_as_<b>" contributions into the pool without
// reducing the source type; Phase B applies "conv.<a>_to_<b>" conversions in
// a fixed DAG order (Physical → Lightning → Cold → Fire → Chaos) that
// guarantees no cycles, reducing the source by the (capped) total percent
// converted away. Every damage type a bucket has ever passed through is
// retained in its history tag set (Tag Retention), since later pipeline
// phases (inc/more) read those tags to decide which modifiers apply.
package conversion

import (
	"sort"

	"github.com/leeeee/tli-bd-assistant/aggregate"
	"github.com/leeeee/tli-bd-assistant/tagging"
)

// DamageType is one of the five fixed elemental/physical/chaos damage
// types the conversion DAG operates over.
type DamageType int

const (
	Physical DamageType = iota
	Lightning
	Cold
	Fire
	Chaos
)

// AllOrdered returns every DamageType in the fixed conversion-priority order
// that guarantees Phase B can never cycle back onto a type it already
// converted out of.
func AllOrdered() []DamageType {
	return []DamageType{Physical, Lightning, Cold, Fire, Chaos}
}

// Key returns the damage type's lowercase wire/stat-key name.
func (d DamageType) Key() string {
	switch d {
	case Physical:
		return "physical"
	case Lightning:
		return "lightning"
	case Cold:
		return "cold"
	case Fire:
		return "fire"
	case Chaos:
		return "chaos"
	default:
		return "unknown"
	}
}

// TagName returns the well-known tag name identifying this damage type.
func (d DamageType) TagName() string {
	switch d {
	case Physical:
		return tagging.TagPhysical
	case Lightning:
		return tagging.TagLightning
	case Cold:
		return tagging.TagCold
	case Fire:
		return tagging.TagFire
	case Chaos:
		return tagging.TagChaos
	default:
		return ""
	}
}

// ParseDamageType resolves a damage-type key (case-insensitive, "phys"
// accepted as a Physical alias) to its DamageType, or false if unrecognized.
func ParseDamageType(s string) (DamageType, bool) {
	switch s {
	case "physical", "phys":
		return Physical, true
	case "lightning":
		return Lightning, true
	case "cold":
		return Cold, true
	case "fire":
		return Fire, true
	case "chaos":
		return Chaos, true
	default:
		return 0, false
	}
}

// Bucket is one damage type's min/max range plus the set of every damage
// type it has passed through, via extra-as or conversion, since the
// calculation began.
type Bucket struct {
	Min         float64
	Max         float64
	HistoryTags tagging.TagSet
}

// NewBucket creates a Bucket with the given range and an empty history.
func NewBucket(min, max float64) Bucket {
	return Bucket{Min: min, Max: max}
}

// Average returns the bucket's midpoint damage value.
func (b Bucket) Average() float64 { return (b.Min + b.Max) / 2.0 }

// IsZero reports whether the bucket carries no damage.
func (b Bucket) IsZero() bool { return b.Min == 0 && b.Max == 0 }

// AddTag records tagID in the bucket's history.
func (b *Bucket) AddTag(tagID uint32) { b.HistoryTags.Insert(tagID) }

// Merge folds other's range and history tags into b, retaining every tag
// either side has ever carried.
func (b *Bucket) Merge(other Bucket) {
	b.Min += other.Min
	b.Max += other.Max
	b.HistoryTags.Union(other.HistoryTags)
}

// Rule is one conversion or gain-as-extra rule: From loses (conversion) or
// keeps (extra-as) a Percent of its damage, granted to To.
type Rule struct {
	From    DamageType
	To      DamageType
	Percent float64
}

// Engine runs the two-phase conversion process over a fixed set of damage
// types.
type Engine struct {
	registry *tagging.Registry
}

// NewEngine creates a conversion Engine resolving tag names against
// registry.
func NewEngine(registry *tagging.Registry) *Engine {
	return &Engine{registry: registry}
}

// Process runs Phase A (gain-as-extra) then Phase B (conversion) over
// baseDamages, returning the resulting bucket per damage type that ends up
// with nonzero range or at least one history tag.
func (e *Engine) Process(baseDamages map[DamageType][2]float64, extraRules, conversionRules []Rule) map[DamageType]Bucket {
	pool := make(map[DamageType]Bucket, len(baseDamages))
	for dtype, mm := range baseDamages {
		b := NewBucket(mm[0], mm[1])
		if id, ok := e.registry.IDOf(dtype.TagName()); ok {
			b.AddTag(id)
		}
		pool[dtype] = b
	}

	e.applyExtraAs(pool, extraRules)
	e.applyConversion(pool, conversionRules)
	return pool
}

func (e *Engine) applyExtraAs(pool map[DamageType]Bucket, rules []Rule) {
	extra := make(map[DamageType]Bucket)
	for _, rule := range rules {
		source, ok := pool[rule.From]
		if !ok || source.IsZero() {
			continue
		}

		gained := NewBucket(source.Min*rule.Percent, source.Max*rule.Percent)
		gained.HistoryTags.Union(source.HistoryTags)
		if id, ok := e.registry.IDOf(rule.To.TagName()); ok {
			gained.AddTag(id)
		}

		acc := extra[rule.To]
		acc.Merge(gained)
		extra[rule.To] = acc
	}

	for dtype, gained := range extra {
		b := pool[dtype]
		b.Merge(gained)
		pool[dtype] = b
	}
}

func (e *Engine) applyConversion(pool map[DamageType]Bucket, rules []Rule) {
	bySource := make(map[DamageType][]Rule)
	for _, rule := range rules {
		bySource[rule.From] = append(bySource[rule.From], rule)
	}

	for _, sourceType := range AllOrdered() {
		sourceRules, ok := bySource[sourceType]
		if !ok {
			continue
		}
		// Sort rules by destination so float accumulation order is
		// deterministic regardless of map/slice build order upstream.
		sort.Slice(sourceRules, func(i, j int) bool { return sourceRules[i].To < sourceRules[j].To })

		totalPercent := 0.0
		for _, r := range sourceRules {
			totalPercent += r.Percent
		}
		if totalPercent > 1.0 {
			totalPercent = 1.0
		}
		if totalPercent == 0 {
			continue
		}

		source, ok := pool[sourceType]
		if !ok || source.IsZero() {
			continue
		}

		rawTotal := 0.0
		for _, r := range sourceRules {
			rawTotal += r.Percent
		}

		for _, rule := range sourceRules {
			actualPercent := rule.Percent
			if rawTotal > 1.0 {
				actualPercent = rule.Percent / rawTotal
			}

			converted := NewBucket(source.Min*actualPercent, source.Max*actualPercent)
			converted.HistoryTags.Union(source.HistoryTags)
			if id, ok := e.registry.IDOf(rule.To.TagName()); ok {
				converted.AddTag(id)
			}

			dst := pool[rule.To]
			dst.Merge(converted)
			pool[rule.To] = dst
		}

		remaining := 1.0 - totalPercent
		src := pool[sourceType]
		src.Min *= remaining
		src.Max *= remaining
		pool[sourceType] = src
	}
}

// fixedConversionPairs lists every "conv.<a>_to_<b>" key the aggregator's
// stat pool may carry. Non-listed pairs (e.g. Chaos→anything) are
// intentionally absent: chaos sits at the end of the DAG and never
// converts further.
var fixedConversionPairs = []struct {
	key  string
	from DamageType
	to   DamageType
}{
	{"conv.phys_to_fire", Physical, Fire},
	{"conv.phys_to_cold", Physical, Cold},
	{"conv.phys_to_lightning", Physical, Lightning},
	{"conv.phys_to_chaos", Physical, Chaos},
	{"conv.lightning_to_cold", Lightning, Cold},
	{"conv.lightning_to_fire", Lightning, Fire},
	{"conv.cold_to_fire", Cold, Fire},
	{"conv.cold_to_chaos", Cold, Chaos},
	{"conv.fire_to_chaos", Fire, Chaos},
}

var fixedExtraAsPairs = []struct {
	key  string
	from DamageType
	to   DamageType
}{
	{"extra.phys_as_fire", Physical, Fire},
	{"extra.phys_as_cold", Physical, Cold},
	{"extra.phys_as_lightning", Physical, Lightning},
	{"extra.phys_as_chaos", Physical, Chaos},
	{"extra.lightning_as_cold", Lightning, Cold},
	{"extra.lightning_as_fire", Lightning, Fire},
	{"extra.cold_as_fire", Cold, Fire},
	{"extra.fire_as_chaos", Fire, Chaos},
}

// ExtractConversionRules reads every "conv.<a>_to_<b>" base stat from pool,
// skipping zero/negative entries and capping each individual rule's percent
// at 1.0 (Phase B further normalizes the per-source total, see
// applyConversion).
func ExtractConversionRules(pool *aggregate.StatPool) []Rule {
	var rules []Rule
	for _, pair := range fixedConversionPairs {
		percent := pool.GetBase(pair.key)
		if percent <= 0 {
			continue
		}
		if percent > 1.0 {
			percent = 1.0
		}
		rules = append(rules, Rule{From: pair.from, To: pair.to, Percent: percent})
	}
	return rules
}

// ExtractExtraAsRules reads every "extra.<a>_as_<b>" base stat from pool,
// skipping zero/negative entries.
func ExtractExtraAsRules(pool *aggregate.StatPool) []Rule {
	var rules []Rule
	for _, pair := range fixedExtraAsPairs {
		percent := pool.GetBase(pair.key)
		if percent <= 0 {
			continue
		}
		rules = append(rules, Rule{From: pair.from, To: pair.to, Percent: percent})
	}
	return rules
}

// String renders a DamageType for error messages and trace events.
func (d DamageType) String() string { return d.Key() }
