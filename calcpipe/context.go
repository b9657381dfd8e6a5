// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calcpipe

import (
	"github.com/leeeee/tli-bd-assistant/condition"
	"github.com/leeeee/tli-bd-assistant/tagging"
)

// contextFlagTags is the fixed context-flag-to-state-tag map contextStage translates
// (all flags except is_moving, whose Tag_State_Moving/Stationary choice is
// handled separately since it is the one flag with an else-branch).
var contextFlagTags = map[string]string{
	"low_life":         tagging.TagStateLowLife,
	"enemy_chilled":    tagging.TagStateEnemyChilled,
	"enemy_frozen":     tagging.TagStateEnemyFrozen,
	"enemy_shocked":    tagging.TagStateEnemyShocked,
	"enemy_ignited":    tagging.TagStateEnemyIgnited,
	"recently_crit":    tagging.TagStateRecentlyCrit,
	"recently_killed":  tagging.TagStateRecentlyKilled,
	"enemy_controlled": tagging.TagStateEnemyControlled,
}

// contextStage builds the active tag context from the active skill's
// tags, every support's injected tags, and the fixed context-flag mapping,
// then wraps it in the condition.EvalContext every later phase evaluates
// conditional modifiers against.
type contextStage struct{}

func (contextStage) Name() string { return "Context" }

func (contextStage) Run(s *calcState) error {
	ctx := condition.NewEvalContext(s.registry)
	ctx.WithTags(s.input.ActiveSkill.Tags)
	for _, support := range s.input.SupportSkills {
		ctx.WithTags(support.InjectedTags)
	}

	if s.input.ContextFlags["is_moving"] {
		ctx.WithTags([]string{tagging.TagStateMoving})
	} else {
		ctx.WithTags([]string{tagging.TagStateStationary})
	}
	for flag, tag := range contextFlagTags {
		if s.input.ContextFlags[flag] {
			ctx.WithTags([]string{tag})
		}
	}

	for flag, value := range s.input.ContextFlags {
		ctx.WithFlag(flag, value)
	}
	for key, value := range s.input.ContextValues {
		ctx.WithValue(key, value)
	}
	for _, state := range s.input.MechanicStates {
		if !state.IsActive {
			continue
		}
		ctx.WithMechanicStacks(state.ID, state.CurrentStacks)
		ctx.WithValue(state.ID+"_stacks", float64(state.CurrentStacks))
	}

	s.evalCtx = ctx
	s.emit("Context", "built active tag context", nil)
	return nil
}
