// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package condition

import "github.com/leeeee/tli-bd-assistant/tagging"

// EvalContext carries everything a Condition needs to resolve against:
// boolean flags, numeric context values, the active tag set (resolved
// through a tagging.Registry so has_tag can test by name), and current
// mechanic stack counts.
type EvalContext struct {
	Flags          map[string]bool
	Values         map[string]float64
	Tags           tagging.TagSet
	Registry       *tagging.Registry
	MechanicStacks map[string]uint32
}

// NewEvalContext creates an empty context bound to registry, which is used
// to resolve tag names in HasTag/HasAnyTag/HasAllTags checks.
func NewEvalContext(registry *tagging.Registry) *EvalContext {
	return &EvalContext{
		Flags:          make(map[string]bool),
		Values:         make(map[string]float64),
		Registry:       registry,
		MechanicStacks: make(map[string]uint32),
	}
}

func (c *EvalContext) WithFlag(key string, value bool) *EvalContext {
	c.Flags[key] = value
	return c
}

func (c *EvalContext) WithValue(key string, value float64) *EvalContext {
	c.Values[key] = value
	return c
}

func (c *EvalContext) WithTags(names []string) *EvalContext {
	if c.Registry == nil {
		return c
	}
	c.Tags.Union(c.Registry.SetFromNames(names))
	return c
}

func (c *EvalContext) WithMechanicStacks(mechanicID string, stacks uint32) *EvalContext {
	c.MechanicStacks[mechanicID] = stacks
	return c
}

func (c *EvalContext) hasTag(name string) bool {
	if c.Registry == nil {
		return false
	}
	id, ok := c.Registry.IDOf(name)
	if !ok {
		return false
	}
	return c.Tags.Contains(id)
}
