// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package modifier

import (
	"sort"

	"github.com/leeeee/tli-bd-assistant/condition"
)

// List is a flat-array modifier store, suited to small, short-lived
// scratch sets built fresh per calculation (a single stage's local
// modifier contributions before they're folded into the aggregator).
type List struct {
	data []Modifier
}

// NewList creates an empty List.
func NewList() *List {
	return &List{}
}

// FromSlice wraps an existing modifier slice as a List.
func FromSlice(data []Modifier) *List {
	return &List{data: data}
}

// Len returns the number of modifiers stored.
func (l *List) Len() int { return len(l.data) }

// IsEmpty reports whether l holds no modifiers.
func (l *List) IsEmpty() bool { return len(l.data) == 0 }

// ToDB copies every modifier into a fresh key-bucketed DB.
func (l *List) ToDB() *DB {
	db := NewDB()
	for _, m := range l.data {
		db.Add(m)
	}
	return db
}

func (l *List) Add(m Modifier) { l.data = append(l.data, m) }

func (l *List) AddAll(mods []Modifier) { AddAll(l, mods) }

func (l *List) Get(key string) []*Modifier {
	var out []*Modifier
	for i, m := range l.data {
		if m.Key == key {
			out = append(out, &l.data[i])
		}
	}
	return out
}

func (l *List) GetByKind(key string, kind Kind) []*Modifier {
	var out []*Modifier
	for i, m := range l.data {
		if m.Key == key && m.Kind == kind {
			out = append(out, &l.data[i])
		}
	}
	return out
}

func (l *List) Keys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, m := range l.data {
		if !seen[m.Key] {
			seen[m.Key] = true
			keys = append(keys, m.Key)
		}
	}
	sort.Strings(keys)
	return keys
}

func (l *List) AllModifiers() []*Modifier {
	out := make([]*Modifier, len(l.data))
	for i := range l.data {
		out[i] = &l.data[i]
	}
	return out
}

func (l *List) SumBase(key string) float64 { return SumBase(l, key) }
func (l *List) SumBaseWithCtx(key string, ctx *condition.EvalContext) float64 {
	return SumBaseWithCtx(l, key, ctx)
}
func (l *List) SumInc(key string) float64 { return SumInc(l, key) }
func (l *List) SumIncWithCtx(key string, ctx *condition.EvalContext) float64 {
	return SumIncWithCtx(l, key, ctx)
}
func (l *List) ProductMore(key string) float64 { return ProductMore(l, key) }
func (l *List) ProductMoreWithCtx(key string, ctx *condition.EvalContext) float64 {
	return ProductMoreWithCtx(l, key, ctx)
}
func (l *List) HasFlag(key string) bool { return HasFlag(l, key) }
func (l *List) HasFlagWithCtx(key string, ctx *condition.EvalContext) bool {
	return HasFlagWithCtx(l, key, ctx)
}
func (l *List) GetOverride(key string) (float64, bool) { return GetOverride(l, key) }
func (l *List) GetOverrideWithCtx(key string, ctx *condition.EvalContext) (float64, bool) {
	return GetOverrideWithCtx(l, key, ctx)
}
func (l *List) CalculateFinal(key string) float64 { return CalculateFinal(l, key) }
func (l *List) CalculateFinalWithCtx(key string, ctx *condition.EvalContext) float64 {
	return CalculateFinalWithCtx(l, key, ctx)
}
func (l *List) GetSources(key string) []Source { return GetSources(l, key) }
func (l *List) GetSourcesWithCtx(key string, ctx *condition.EvalContext) []Source {
	return GetSourcesWithCtx(l, key, ctx)
}
