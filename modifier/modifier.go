// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

// Package modifier implements the unified modifier store/query layer:
// Base/Increased/More/Flag/Override modifiers, bucketed More aggregation,
// condition-gated and per-stat-scaled values, and the calculate-final
// formula override > base*(1+inc)*more.
package modifier

import (
	"math"

	"github.com/leeeee/tli-bd-assistant/condition"
)

// Kind is the arithmetic role a Modifier plays when aggregated.
type Kind int

const (
	// Base values sum additively.
	KindBase Kind = iota
	// Increased values sum additively, then apply as one (1+Σinc) factor.
	KindIncreased
	// More values multiply independently per bucket, buckets then multiply
	// together.
	KindMore
	// Flag modifiers carry no numeric value; their mere presence (subject to
	// condition) toggles a boolean.
	KindFlag
	// Override replaces the entire computed value outright, taking the last
	// one whose condition holds.
	KindOverride
)

// Scope names which actor a modifier applies to.
type Scope int

const (
	ScopeGlobal Scope = iota
	ScopeSkill
	ScopeMinion
	ScopeTarget
)

// PerStatConfig scales a modifier's value by floor(statValue/Per), the same
// projection condition.EvaluateMultiplier computes for a PerStat condition
// node.
type PerStatConfig struct {
	Stat string
	Per  float64
}

// Modifier is a single structured modification: a key ("dmg.fire",
// "crit.chance"), its Kind, a value, a source label for provenance, a
// bucket id distinguishing independent More multiplication groups, a scope,
// an optional gating condition, tag requirements, and optional per-stat
// scaling.
type Modifier struct {
	Key         string
	Kind        Kind
	Value       float64
	Source      string
	BucketID    uint32
	Scope       Scope
	Condition   *condition.Condition
	Requirements []uint32
	PerStat     *PerStatConfig
}

// Base creates a Base modifier.
func Base(key string, value float64, source string) Modifier {
	return Modifier{Key: key, Kind: KindBase, Value: value, Source: source}
}

// Inc creates an Increased modifier.
func Inc(key string, value float64, source string) Modifier {
	return Modifier{Key: key, Kind: KindIncreased, Value: value, Source: source}
}

// More creates a More modifier in the default bucket (0).
func More(key string, value float64, source string) Modifier {
	return Modifier{Key: key, Kind: KindMore, Value: value, Source: source}
}

// MoreWithBucket creates a More modifier in an explicit bucket.
func MoreWithBucket(key string, value float64, bucketID uint32, source string) Modifier {
	return Modifier{Key: key, Kind: KindMore, Value: value, BucketID: bucketID, Source: source}
}

// Flag creates a Flag modifier.
func Flag(key string, source string) Modifier {
	return Modifier{Key: key, Kind: KindFlag, Value: 1.0, Source: source}
}

// Override creates an Override modifier.
func Override(key string, value float64, source string) Modifier {
	return Modifier{Key: key, Kind: KindOverride, Value: value, Source: source}
}

// WithCondition parses conditionStr and attaches it as the gating condition.
// A parse failure leaves the modifier unconditional rather than panicking;
// malformed condition strings in data files should not prevent the rest of
// the build from loading.
func (m Modifier) WithCondition(conditionStr string) Modifier {
	if c, err := condition.Parse(conditionStr); err == nil {
		m.Condition = c
	}
	return m
}

// WithConditionAST attaches an already-parsed condition.
func (m Modifier) WithConditionAST(c *condition.Condition) Modifier {
	m.Condition = c
	return m
}

// WithRequirements sets the tag-id requirements gating this modifier.
func (m Modifier) WithRequirements(requirements []uint32) Modifier {
	m.Requirements = requirements
	return m
}

// WithScope sets the modifier's scope.
func (m Modifier) WithScope(scope Scope) Modifier {
	m.Scope = scope
	return m
}

// WithPerStat attaches per-stat scaling.
func (m Modifier) WithPerStat(stat string, per float64) Modifier {
	m.PerStat = &PerStatConfig{Stat: stat, Per: per}
	return m
}

// CheckCondition reports whether m's gating condition holds against ctx. A
// modifier with no condition always applies.
func (m Modifier) CheckCondition(ctx *condition.EvalContext) bool {
	if m.Condition == nil {
		return true
	}
	return condition.Evaluate(m.Condition, ctx)
}

// EffectiveValue returns m.Value scaled by its PerStat multiplier, if any.
func (m Modifier) EffectiveValue(ctx *condition.EvalContext) float64 {
	if m.PerStat == nil {
		return m.Value
	}
	statValue := ctx.Values[m.PerStat.Stat]
	if m.PerStat.Per == 0 {
		return 0
	}
	multiplier := math.Floor(statValue / m.PerStat.Per)
	return m.Value * multiplier
}
