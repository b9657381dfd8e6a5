// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package condition

import "math"

// Evaluate resolves c against ctx to a boolean. PerStat is not itself a
// predicate (it expresses a scaling multiplier); evaluated as a bool it
// reports whether the stat has reached at least one full increment.
func Evaluate(c *Condition, ctx *EvalContext) bool {
	if c == nil {
		return true
	}
	switch c.Kind {
	case KindTrue:
		return true
	case KindFalse:
		return false
	case KindFlag:
		return ctx.Flags[c.Key] == c.Expected
	case KindCompare:
		return c.Op.Evaluate(ctx.Values[c.Key], c.Value)
	case KindHasTag:
		return ctx.hasTag(c.Tag)
	case KindHasAnyTag:
		for _, t := range c.Tags {
			if ctx.hasTag(t) {
				return true
			}
		}
		return false
	case KindHasAllTags:
		for _, t := range c.Tags {
			if !ctx.hasTag(t) {
				return false
			}
		}
		return true
	case KindMechanicActive:
		return ctx.MechanicStacks[c.MechanicID] > 0
	case KindMechanicStacks:
		return c.Op.Evaluate(float64(ctx.MechanicStacks[c.MechanicID]), float64(c.Stacks))
	case KindPerStat:
		return ctx.Values[c.Key] >= c.Value
	case KindAnd:
		return Evaluate(c.Left, ctx) && Evaluate(c.Right, ctx)
	case KindOr:
		return Evaluate(c.Left, ctx) || Evaluate(c.Right, ctx)
	case KindNot:
		return !Evaluate(c.Inner, ctx)
	default:
		return false
	}
}

// EvaluateMultiplier computes the PerStat scaling multiplier:
// floor(stat_value / per). Non-PerStat nodes always yield 1.0, a neutral
// factor, so callers can apply it uniformly without a type switch.
func EvaluateMultiplier(c *Condition, ctx *EvalContext) float64 {
	if c == nil || c.Kind != KindPerStat {
		return 1.0
	}
	if c.Value == 0 {
		return 0
	}
	return math.Floor(ctx.Values[c.Key] / c.Value)
}
