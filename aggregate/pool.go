// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

// Package aggregate implements the stat aggregator: it folds item
// implicits/affixes, skill and support-skill stats, mechanic base effects,
// and global overrides into a StatPool of base/increased/more contributions,
// then resolves each key to a single final value.
package aggregate

import "sort"

// MoreModifier is one bucketed "more" contribution: same-bucket more
// multiplies as a product of (1+value) terms, distinct buckets multiply
// across each other — identical bucketing rule to modifier.ProductMore,
// reimplemented here because StatPool accumulates raw float totals rather
// than modifier.Modifier values (the aggregator's job is done by the time a
// value reaches the pool; there is no longer a source-conditional modifier
// to re-evaluate).
type MoreModifier struct {
	Value    float64
	BucketID uint32
	Source   string
}

// StatPool accumulates base, increased, and bucketed-more contributions per
// stat key and resolves them to a final value on demand, caching the result
// until the next mutation marks it dirty again.
type StatPool struct {
	base      map[string]float64
	increased map[string]float64
	more      map[string][]MoreModifier
	override  map[string]float64
	final     map[string]float64
	dirty     bool
}

// NewStatPool creates an empty pool.
func NewStatPool() *StatPool {
	return &StatPool{
		base:      make(map[string]float64),
		increased: make(map[string]float64),
		more:      make(map[string][]MoreModifier),
		override:  make(map[string]float64),
		final:     make(map[string]float64),
		dirty:     true,
	}
}

// AddBase adds to a key's additive base total.
func (p *StatPool) AddBase(key string, value float64) {
	p.base[key] += value
	p.dirty = true
}

// SetBase overwrites a key's base total outright instead of adding to it.
// It leaves increased/more contributions untouched; use SetOverride when a
// value must win outright regardless of them.
func (p *StatPool) SetBase(key string, value float64) {
	p.base[key] = value
	p.dirty = true
}

// SetOverride forces key's final value to value, bypassing increased/more
// entirely (mirroring modifier.Store's
// CalculateFinal override precedence). It also sets the bare base entry to
// value, so callers that read GetBase directly instead of Final (conversion's
// ExtractConversionRules/ExtractExtraAsRules, which read "conv."/"extra."
// keys straight off base) see the override too.
func (p *StatPool) SetOverride(key string, value float64) {
	p.override[key] = value
	p.base[key] = value
	p.dirty = true
}

// AddIncreased adds to a key's additive "increased" total.
func (p *StatPool) AddIncreased(key string, value float64) {
	p.increased[key] += value
	p.dirty = true
}

// AddMore appends a bucketed more contribution to a key.
func (p *StatPool) AddMore(key string, m MoreModifier) {
	p.more[key] = append(p.more[key], m)
	p.dirty = true
}

// GetBase returns a key's raw base total, 0 if unset.
func (p *StatPool) GetBase(key string) float64 { return p.base[key] }

// GetIncreased returns a key's raw increased total, 0 if unset.
func (p *StatPool) GetIncreased(key string) float64 { return p.increased[key] }

// GetMoreMultiplier returns the bucketed product of (1+value) terms for key:
// same-bucket entries each contribute their own (1+value) factor, and the
// per-bucket products multiply across buckets. Buckets are visited in sorted
// order so floating-point multiplication order is reproducible across runs.
func (p *StatPool) GetMoreMultiplier(key string) float64 {
	mods := p.more[key]
	if len(mods) == 0 {
		return 1.0
	}
	products := make(map[uint32]float64, len(mods))
	for _, m := range mods {
		if _, ok := products[m.BucketID]; !ok {
			products[m.BucketID] = 1.0
		}
		products[m.BucketID] *= 1.0 + m.Value
	}
	buckets := make([]uint32, 0, len(products))
	for b := range products {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i] < buckets[j] })

	result := 1.0
	for _, b := range buckets {
		result *= products[b]
	}
	return result
}

// CalculateFinal resolves key's final value as override, if set, else
// base*(1+increased)*more.
func (p *StatPool) CalculateFinal(key string) float64 {
	if v, ok := p.override[key]; ok {
		return v
	}
	return p.GetBase(key) * (1.0 + p.GetIncreased(key)) * p.GetMoreMultiplier(key)
}

// RecalculateAll recomputes and caches every key that has a base, increased,
// more, or override entry, clearing the dirty flag.
func (p *StatPool) RecalculateAll() {
	seen := make(map[string]bool)
	for k := range p.base {
		seen[k] = true
	}
	for k := range p.increased {
		seen[k] = true
	}
	for k := range p.more {
		seen[k] = true
	}
	for k := range p.override {
		seen[k] = true
	}
	for k := range seen {
		p.final[k] = p.CalculateFinal(k)
	}
	p.dirty = false
}

// Final returns the cached final value for key, recalculating first if the
// pool is dirty.
func (p *StatPool) Final(key string) float64 {
	if p.dirty {
		p.RecalculateAll()
	}
	return p.final[key]
}

// Merge folds other's base, increased, more, and override contributions
// into p.
func (p *StatPool) Merge(other *StatPool) {
	for k, v := range other.base {
		p.base[k] += v
	}
	for k, v := range other.increased {
		p.increased[k] += v
	}
	for k, mods := range other.more {
		p.more[k] = append(p.more[k], mods...)
	}
	for k, v := range other.override {
		p.override[k] = v
		p.base[k] = v
	}
	p.dirty = true
}

// BaseKeys returns every key with a base entry (including entries that sum
// to zero), sorted.
func (p *StatPool) BaseKeys() []string {
	keys := make([]string, 0, len(p.base))
	for k := range p.base {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
