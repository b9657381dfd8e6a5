// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calcio

import (
	"encoding/json"
	"math"

	"github.com/leeeee/tli-bd-assistant/calcerr"
	"github.com/leeeee/tli-bd-assistant/calcmodel"
	"github.com/leeeee/tli-bd-assistant/calcpipe"
)

// defaults for missing optional numeric fields.
const (
	defaultTargetLevel   = 100
	defaultEffectiveness = 1.0
	defaultBaseTime      = 1.0
)

// DecodeInput parses a JSON CalculatorInput document and converts it into
// a calcpipe.Input, validating every numeric field is finite and every
// slot name known before returning. Unknown JSON fields are silently
// ignored (encoding/json's default behavior); missing optional fields take
// the documented defaults.
func DecodeInput(data []byte) (calcpipe.Input, error) {
	var wire CalculatorInput
	if err := json.Unmarshal(data, &wire); err != nil {
		return calcpipe.Input{}, calcerr.InvalidInput("calcio: malformed input JSON: %s", err)
	}
	return ToPipelineInput(wire)
}

// ToPipelineInput validates wire and converts it into a calcpipe.Input,
// collecting every structural problem via a calcerr.Accumulator rather
// than failing on the first one found.
func ToPipelineInput(wire CalculatorInput) (calcpipe.Input, error) {
	var acc calcerr.Accumulator

	items := make([]calcmodel.Item, 0, len(wire.Items))
	for i, wi := range wire.Items {
		item, err := toItem(wi)
		if err != nil {
			acc.Addf("items[%d]: %s", i, err)
			continue
		}
		items = append(items, item)
	}

	activeSkill, err := toSkill(wire.ActiveSkill)
	if err != nil {
		acc.Addf("active_skill: %s", err)
	}

	supports := make([]calcmodel.Skill, 0, len(wire.SupportSkills))
	for i, ws := range wire.SupportSkills {
		sk, err := toSkill(ws)
		if err != nil {
			acc.Addf("support_skills[%d]: %s", i, err)
			continue
		}
		supports = append(supports, sk)
	}

	var preview *calcpipe.PreviewSlot
	if wire.PreviewSlot != nil {
		slot, ok := calcmodel.ParseItemSlot(wire.PreviewSlot.Slot)
		if !ok {
			acc.Addf("preview_slot: unknown slot %q", wire.PreviewSlot.Slot)
		} else {
			item, err := toItem(wire.PreviewSlot.Item)
			if err != nil {
				acc.Addf("preview_slot.item: %s", err)
			} else {
				preview = &calcpipe.PreviewSlot{Slot: slot, Item: item}
			}
		}
	}

	mechanicStates := make([]calcmodel.MechanicState, 0, len(wire.MechanicStates))
	for _, ms := range wire.MechanicStates {
		mechanicStates = append(mechanicStates, calcmodel.MechanicState{
			ID:            ms.ID,
			CurrentStacks: ms.CurrentStacks,
			MaxStacks:     ms.MaxStacks,
			IsActive:      ms.IsActive,
		})
	}

	mechanicDefs := make([]calcmodel.MechanicDefinition, 0, len(wire.MechanicDefinitions))
	for i, md := range wire.MechanicDefinitions {
		if err := requireFiniteMap(md.BaseEffectPerStack); err != nil {
			acc.Addf("mechanic_definitions[%d]: %s", i, err)
			continue
		}
		mechanicDefs = append(mechanicDefs, calcmodel.MechanicDefinition{
			ID:                 md.ID,
			Category:           md.Category,
			TagKey:             md.TagKey,
			DefaultMaxStacks:   md.DefaultMaxStacks,
			BaseEffectPerStack: md.BaseEffectPerStack,
		})
	}

	target, err := toTargetConfig(wire.TargetConfig)
	if err != nil {
		acc.Addf("target_config: %s", err)
	}

	if err := requireFiniteMap(wire.ContextValues); err != nil {
		acc.Addf("context_values: %s", err)
	}
	if err := requireFiniteMap(wire.GlobalOverrides); err != nil {
		acc.Addf("global_overrides: %s", err)
	}

	if err := acc.Err(); err != nil {
		return calcpipe.Input{}, err
	}

	return calcpipe.Input{
		ContextFlags:        copyBoolMap(wire.ContextFlags),
		ContextValues:       copyFloatMap(wire.ContextValues),
		TargetConfig:        target,
		Items:               items,
		ActiveSkill:         activeSkill,
		SupportSkills:       supports,
		GlobalOverrides:     copyFloatMap(wire.GlobalOverrides),
		PreviewSlot:         preview,
		MechanicStates:      mechanicStates,
		MechanicDefinitions: mechanicDefs,
	}, nil
}

func toItem(wi WireItem) (calcmodel.Item, error) {
	slot, ok := calcmodel.ParseItemSlot(wi.Slot)
	if !ok {
		return calcmodel.Item{}, calcerr.InvalidInput("unknown slot %q", wi.Slot)
	}
	if err := requireFiniteMap(wi.BaseImplicitStats); err != nil {
		return calcmodel.Item{}, err
	}
	if err := requireFiniteMap(wi.ImplicitStats); err != nil {
		return calcmodel.Item{}, err
	}

	affixes := make([]calcmodel.Affix, 0, len(wi.Affixes))
	for _, wa := range wi.Affixes {
		if err := requireFiniteMap(wa.Stats); err != nil {
			return calcmodel.Item{}, err
		}
		affixes = append(affixes, calcmodel.Affix{
			ID:           wa.ID,
			Group:        wa.Group,
			Value:        wa.Value,
			Stats:        wa.Stats,
			Tags:         wa.Tags,
			Requirements: wa.Requirements,
			IsLocal:      wa.IsLocal,
		})
	}

	return calcmodel.Item{
		ID:                wi.ID,
		Slot:              slot,
		IsTwoHanded:       wi.IsTwoHanded,
		BaseImplicitStats: wi.BaseImplicitStats,
		ImplicitStats:     wi.ImplicitStats,
		Affixes:           affixes,
		Tags:              wi.Tags,
		IsUnique:          wi.IsUnique,
		IsCorrupted:       wi.IsCorrupted,
	}, nil
}

func toSkill(ws WireSkill) (calcmodel.Skill, error) {
	if err := requireFiniteMap(ws.BaseDamage); err != nil {
		return calcmodel.Skill{}, err
	}
	if err := requireFiniteMap(ws.Stats); err != nil {
		return calcmodel.Skill{}, err
	}

	kind := calcmodel.SkillActive
	switch ws.Kind {
	case "", "active":
		kind = calcmodel.SkillActive
	case "support":
		kind = calcmodel.SkillSupport
	case "aura":
		kind = calcmodel.SkillAura
	default:
		return calcmodel.Skill{}, calcerr.InvalidInput("unknown skill kind %q", ws.Kind)
	}

	effectiveness := ws.Effectiveness
	if effectiveness == 0 {
		effectiveness = defaultEffectiveness
	}
	baseTime := ws.BaseTime
	if baseTime == 0 {
		baseTime = defaultBaseTime
	}

	levelData := make([]calcmodel.SkillLevelData, 0, len(ws.LevelData))
	for _, ld := range ws.LevelData {
		if err := requireFiniteMap(ld.BaseDamage); err != nil {
			return calcmodel.Skill{}, err
		}
		levelData = append(levelData, calcmodel.SkillLevelData{
			Level:         ld.Level,
			BaseDamage:    ld.BaseDamage,
			Effectiveness: ld.Effectiveness,
		})
	}

	rules := make([]calcmodel.ScalingRule, 0, len(ws.ScalingRules))
	for _, r := range ws.ScalingRules {
		if math.IsNaN(r.PerLevel) || math.IsInf(r.PerLevel, 0) {
			return calcmodel.Skill{}, calcerr.InvalidInput("scaling rule per_level is not finite")
		}
		rules = append(rules, calcmodel.ScalingRule{Start: r.Start, End: r.End, PerLevel: r.PerLevel})
	}

	return calcmodel.Skill{
		ID:            ws.ID,
		Kind:          kind,
		IsAttack:      ws.IsAttack,
		Level:         ws.Level,
		BaseDamage:    ws.BaseDamage,
		BaseTime:      baseTime,
		Cooldown:      ws.Cooldown,
		Effectiveness: effectiveness,
		Tags:          ws.Tags,
		Stats:         ws.Stats,
		InjectedTags:  ws.InjectedTags,
		LevelData:     levelData,
		ScalingRules:  rules,
	}, nil
}

func toTargetConfig(wt WireTargetConfig) (calcmodel.TargetConfig, error) {
	if err := requireFiniteMap(wt.Resistances); err != nil {
		return calcmodel.TargetConfig{}, err
	}
	if math.IsNaN(wt.GenericDR) || math.IsInf(wt.GenericDR, 0) {
		return calcmodel.TargetConfig{}, calcerr.InvalidInput("generic_dr is not finite")
	}

	level := wt.Level
	if level == 0 {
		level = defaultTargetLevel
	}

	return calcmodel.TargetConfig{
		Level:           level,
		DefenseConstant: wt.DefenseConstant,
		Resistances:     wt.Resistances,
		GenericDR:       wt.GenericDR,
		Armor:           wt.Armor,
		Evasion:         wt.Evasion,
	}, nil
}

func requireFiniteMap(m map[string]float64) error {
	for k, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return calcerr.InvalidInput("stat %q is not a finite number", k)
		}
	}
	return nil
}

func copyFloatMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func copyBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
