// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package modifier

import (
	"sort"

	"github.com/leeeee/tli-bd-assistant/condition"
)

// Store is the unified modifier query interface both DB and List implement.
// The aggregation helpers below (SumBase, ProductMore, CalculateFinal, ...)
// are free functions over Store rather than default trait methods, since Go
// has no trait-default-method equivalent; DB and List each expose the same
// names as thin wrapper methods so call sites read identically regardless
// of which storage shape backs them.
type Store interface {
	Add(m Modifier)
	Get(key string) []*Modifier
	GetByKind(key string, kind Kind) []*Modifier
	Keys() []string
	AllModifiers() []*Modifier
}

// AddAll adds every modifier in mods to s.
func AddAll(s Store, mods []Modifier) {
	for _, m := range mods {
		s.Add(m)
	}
}

// SumBase sums every Base modifier's value for key, unconditionally.
func SumBase(s Store, key string) float64 {
	var total float64
	for _, m := range s.GetByKind(key, KindBase) {
		total += m.Value
	}
	return total
}

// SumBaseWithCtx sums every Base modifier for key whose condition holds,
// applying each one's PerStat scaling.
func SumBaseWithCtx(s Store, key string, ctx *condition.EvalContext) float64 {
	var total float64
	for _, m := range s.GetByKind(key, KindBase) {
		if m.CheckCondition(ctx) {
			total += m.EffectiveValue(ctx)
		}
	}
	return total
}

// SumInc sums every Increased modifier's value for key, unconditionally.
func SumInc(s Store, key string) float64 {
	var total float64
	for _, m := range s.GetByKind(key, KindIncreased) {
		total += m.Value
	}
	return total
}

// SumIncWithCtx sums every Increased modifier for key whose condition
// holds, applying PerStat scaling.
func SumIncWithCtx(s Store, key string, ctx *condition.EvalContext) float64 {
	var total float64
	for _, m := range s.GetByKind(key, KindIncreased) {
		if m.CheckCondition(ctx) {
			total += m.EffectiveValue(ctx)
		}
	}
	return total
}

// ProductMore computes the bucketed More product for key: each modifier
// contributes its own (1+value) factor to its bucket's product, and distinct
// buckets multiply together. Bucket ids are visited in ascending order so
// floating-point rounding is deterministic across runs.
func ProductMore(s Store, key string) float64 {
	return productMore(s.GetByKind(key, KindMore), nil)
}

// ProductMoreWithCtx is ProductMore restricted to modifiers whose condition
// holds against ctx, with PerStat scaling applied to each value.
func ProductMoreWithCtx(s Store, key string, ctx *condition.EvalContext) float64 {
	all := s.GetByKind(key, KindMore)
	filtered := make([]*Modifier, 0, len(all))
	for _, m := range all {
		if m.CheckCondition(ctx) {
			filtered = append(filtered, m)
		}
	}
	return productMore(filtered, ctx)
}

func productMore(mods []*Modifier, ctx *condition.EvalContext) float64 {
	if len(mods) == 0 {
		return 1.0
	}

	buckets := make(map[uint32]float64)
	for _, m := range mods {
		value := m.Value
		if ctx != nil {
			value = m.EffectiveValue(ctx)
		}
		if _, ok := buckets[m.BucketID]; !ok {
			buckets[m.BucketID] = 1.0
		}
		buckets[m.BucketID] *= 1.0 + value
	}

	ids := make([]uint32, 0, len(buckets))
	for id := range buckets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	product := 1.0
	for _, id := range ids {
		product *= buckets[id]
	}
	return product
}

// HasFlag reports whether any Flag modifier exists for key, unconditionally.
func HasFlag(s Store, key string) bool {
	return len(s.GetByKind(key, KindFlag)) > 0
}

// HasFlagWithCtx reports whether any Flag modifier for key has a holding
// condition.
func HasFlagWithCtx(s Store, key string, ctx *condition.EvalContext) bool {
	for _, m := range s.GetByKind(key, KindFlag) {
		if m.CheckCondition(ctx) {
			return true
		}
	}
	return false
}

// GetOverride returns the value of the last unconditional Override modifier
// for key, if any.
func GetOverride(s Store, key string) (float64, bool) {
	mods := s.GetByKind(key, KindOverride)
	if len(mods) == 0 {
		return 0, false
	}
	return mods[len(mods)-1].Value, true
}

// GetOverrideWithCtx returns the value of the last Override modifier for
// key whose condition holds against ctx, if any.
func GetOverrideWithCtx(s Store, key string, ctx *condition.EvalContext) (float64, bool) {
	mods := s.GetByKind(key, KindOverride)
	found := false
	var value float64
	for _, m := range mods {
		if m.CheckCondition(ctx) {
			value = m.Value
			found = true
		}
	}
	return value, found
}

// CalculateFinal applies override > base*(1+inc)*more, unconditionally.
func CalculateFinal(s Store, key string) float64 {
	if v, ok := GetOverride(s, key); ok {
		return v
	}
	base := SumBase(s, key)
	inc := SumInc(s, key)
	more := ProductMore(s, key)
	return base * (1.0 + inc) * more
}

// CalculateFinalWithCtx is CalculateFinal with every component evaluated
// against ctx's conditions and PerStat scaling.
func CalculateFinalWithCtx(s Store, key string, ctx *condition.EvalContext) float64 {
	if v, ok := GetOverrideWithCtx(s, key, ctx); ok {
		return v
	}
	base := SumBaseWithCtx(s, key, ctx)
	inc := SumIncWithCtx(s, key, ctx)
	more := ProductMoreWithCtx(s, key, ctx)
	return base * (1.0 + inc) * more
}

// Source is a modifier's provenance, shaped for UI/debug display: which
// kind, what value it contributed, where it came from, and which More
// bucket it belongs to.
type Source struct {
	Kind     Kind
	Value    float64
	Source   string
	BucketID uint32
}

// GetSources returns the provenance of every modifier for key,
// unconditionally.
func GetSources(s Store, key string) []Source {
	mods := s.Get(key)
	sources := make([]Source, len(mods))
	for i, m := range mods {
		sources[i] = Source{Kind: m.Kind, Value: m.Value, Source: m.Source, BucketID: m.BucketID}
	}
	return sources
}

// GetSourcesWithCtx returns the provenance of every modifier for key whose
// condition holds against ctx, with PerStat-scaled values.
func GetSourcesWithCtx(s Store, key string, ctx *condition.EvalContext) []Source {
	mods := s.Get(key)
	sources := make([]Source, 0, len(mods))
	for _, m := range mods {
		if m.CheckCondition(ctx) {
			sources = append(sources, Source{Kind: m.Kind, Value: m.EffectiveValue(ctx), Source: m.Source, BucketID: m.BucketID})
		}
	}
	return sources
}
