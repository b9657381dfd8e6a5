// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

// Package mechanics materializes the stat contribution of whatever stackable
// mechanics (combo counters, charges, blessing stacks, and the like) are
// active for one calculation call. A Processor is a small pure value built fresh
// from the mechanic definitions and stack counts supplied as part of one
// calculation's input: no entities, no event bus, no mutex, since the engine
// never shares a Processor across goroutines.
package mechanics

import (
	"sort"
	"strings"

	"github.com/leeeee/tli-bd-assistant/calcmodel"
)

// Processor resolves active mechanic stacks into base-effect contributions
// and per-stack scaling factors for the stat aggregator and the
// condition evaluator's mechanic_active/mechanic_stacks functions.
type Processor struct {
	definitions map[string]calcmodel.MechanicDefinition
	states      map[string]calcmodel.MechanicState
}

// NewProcessor builds a Processor from the full set of known mechanic
// definitions and the subset currently active/stacked for this calculation.
// States for a definition not present in states are treated as zero stacks,
// inactive.
func NewProcessor(definitions []calcmodel.MechanicDefinition, states []calcmodel.MechanicState) *Processor {
	p := &Processor{
		definitions: make(map[string]calcmodel.MechanicDefinition, len(definitions)),
		states:      make(map[string]calcmodel.MechanicState, len(states)),
	}
	for _, d := range definitions {
		p.definitions[d.ID] = d
	}
	for _, st := range states {
		p.states[st.ID] = st
	}
	return p
}

// GetStacks returns the current stack count for mechanic id, or 0 if it is
// unknown or inactive.
func (p *Processor) GetStacks(id string) uint32 {
	if p == nil {
		return 0
	}
	st, ok := p.states[id]
	if !ok || !st.IsActive {
		return 0
	}
	return st.CurrentStacks
}

// IsActive reports whether mechanic id currently has at least one stack and
// is flagged active. This backs the condition AST's mechanic_active(id).
func (p *Processor) IsActive(id string) bool {
	return p.GetStacks(id) > 0
}

// CalculateBaseEffects sums, for every active mechanic, its current stack
// count times each of its per-stack effect contributions, keyed by stat key.
// A mechanic with zero stacks or no definition contributes nothing.
func (p *Processor) CalculateBaseEffects() map[string]float64 {
	out := make(map[string]float64)
	if p == nil {
		return out
	}
	ids := make([]string, 0, len(p.states))
	for id := range p.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		st := p.states[id]
		if !st.IsActive || st.CurrentStacks == 0 {
			continue
		}
		def, ok := p.definitions[id]
		if !ok {
			continue
		}
		stacks := float64(st.CurrentStacks)
		statKeys := make([]string, 0, len(def.BaseEffectPerStack))
		for k := range def.BaseEffectPerStack {
			statKeys = append(statKeys, k)
		}
		sort.Strings(statKeys)
		for _, statKey := range statKeys {
			out[statKey] += def.BaseEffectPerStack[statKey] * stacks
		}
	}
	return out
}

// CalculatePerStackValue resolves a stat key of the form "<base>.per_<id>"
// into the base key and the value scaled by id's current stack count. The
// third return is false only if key carries no .per_ marker, in which case
// the key and value come back unchanged; a marker naming an unknown or
// inactive mechanic (or a nil Processor) resolves to the base key with
// value 0.
func (p *Processor) CalculatePerStackValue(key string, value float64) (string, float64, bool) {
	const marker = ".per_"
	idx := strings.Index(key, marker)
	if idx < 0 {
		return key, value, false
	}
	base := key[:idx]
	mechanicID := key[idx+len(marker):]
	if p == nil {
		return base, 0, true
	}
	stacks := p.GetStacks(mechanicID)
	return base, value * float64(stacks), true
}

// GetAllStacks materializes every active mechanic's stack count as a
// "<id>_stacks" real-valued context entry, for condition expressions such as
// "fighting_will_stacks >= 50" and for per_stat modifiers keyed on it.
func (p *Processor) GetAllStacks() map[string]float64 {
	out := make(map[string]float64)
	if p == nil {
		return out
	}
	for id, st := range p.states {
		if !st.IsActive {
			continue
		}
		out[id+"_stacks"] = float64(st.CurrentStacks)
	}
	return out
}
