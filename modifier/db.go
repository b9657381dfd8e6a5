// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package modifier

import (
	"sort"

	"github.com/leeeee/tli-bd-assistant/condition"
)

// DB is a key-bucketed modifier store backed by a map, giving O(1) lookup
// by key. Suited to large, long-lived modifier sets such as a build's full
// item/passive contribution set.
type DB struct {
	data map[string][]Modifier
}

// NewDB creates an empty DB.
func NewDB() *DB {
	return &DB{data: make(map[string][]Modifier)}
}

// Merge appends every modifier from other into db, bucket by bucket.
func (db *DB) Merge(other *DB) {
	for key, mods := range other.data {
		db.data[key] = append(db.data[key], mods...)
	}
}

// Len returns the total number of modifiers stored across every key.
func (db *DB) Len() int {
	total := 0
	for _, mods := range db.data {
		total += len(mods)
	}
	return total
}

// IsEmpty reports whether db holds no modifiers.
func (db *DB) IsEmpty() bool {
	return len(db.data) == 0
}

func (db *DB) Add(m Modifier) {
	db.data[m.Key] = append(db.data[m.Key], m)
}

func (db *DB) AddAll(mods []Modifier) { AddAll(db, mods) }

func (db *DB) Get(key string) []*Modifier {
	mods := db.data[key]
	out := make([]*Modifier, len(mods))
	for i := range mods {
		out[i] = &mods[i]
	}
	return out
}

func (db *DB) GetByKind(key string, kind Kind) []*Modifier {
	var out []*Modifier
	for i, m := range db.data[key] {
		if m.Kind == kind {
			out = append(out, &db.data[key][i])
		}
	}
	return out
}

func (db *DB) Keys() []string {
	keys := make([]string, 0, len(db.data))
	for k := range db.data {
		keys = append(keys, k)
	}
	return keys
}

func (db *DB) AllModifiers() []*Modifier {
	var out []*Modifier
	for key := range db.data {
		for i := range db.data[key] {
			out = append(out, &db.data[key][i])
		}
	}
	return out
}

func (db *DB) SumBase(key string) float64 { return SumBase(db, key) }
func (db *DB) SumBaseWithCtx(key string, ctx *condition.EvalContext) float64 {
	return SumBaseWithCtx(db, key, ctx)
}
func (db *DB) SumInc(key string) float64 { return SumInc(db, key) }
func (db *DB) SumIncWithCtx(key string, ctx *condition.EvalContext) float64 {
	return SumIncWithCtx(db, key, ctx)
}
func (db *DB) ProductMore(key string) float64 { return ProductMore(db, key) }
func (db *DB) ProductMoreWithCtx(key string, ctx *condition.EvalContext) float64 {
	return ProductMoreWithCtx(db, key, ctx)
}
func (db *DB) HasFlag(key string) bool { return HasFlag(db, key) }
func (db *DB) HasFlagWithCtx(key string, ctx *condition.EvalContext) bool {
	return HasFlagWithCtx(db, key, ctx)
}
func (db *DB) GetOverride(key string) (float64, bool) { return GetOverride(db, key) }
func (db *DB) GetOverrideWithCtx(key string, ctx *condition.EvalContext) (float64, bool) {
	return GetOverrideWithCtx(db, key, ctx)
}
func (db *DB) CalculateFinal(key string) float64 { return CalculateFinal(db, key) }
func (db *DB) CalculateFinalWithCtx(key string, ctx *condition.EvalContext) float64 {
	return CalculateFinalWithCtx(db, key, ctx)
}
func (db *DB) GetSources(key string) []Source { return GetSources(db, key) }
func (db *DB) GetSourcesWithCtx(key string, ctx *condition.EvalContext) []Source {
	return GetSourcesWithCtx(db, key, ctx)
}

// SortedKeys returns Keys in lexical order, used anywhere output must be
// stable (cache fingerprinting, attributed breakdown serialization).
func (db *DB) SortedKeys() []string {
	keys := db.Keys()
	sort.Strings(keys)
	return keys
}
