// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calcpipe

import (
	"math"
	"sort"
	"strings"

	"github.com/leeeee/tli-bd-assistant/aggregate"
	"github.com/leeeee/tli-bd-assistant/calcmodel"
	"github.com/leeeee/tli-bd-assistant/conversion"
)

// baseDamageStage resolves the active skill's level-scaled
// effective damage data, bucket it by damage type, inject weapon physical
// damage for attack skills, and apply effectiveness/level/range-stretch
// multipliers.
type baseDamageStage struct{}

func (baseDamageStage) Name() string { return "Base Damage" }

func (baseDamageStage) Run(s *calcState) error {
	skill := s.input.ActiveSkill
	s.effectiveness = skill.Effectiveness
	s.levelMultiplier = calculateLevelScaling(skill.Level, skill.ScalingRules)

	// Exact per-level tables supersede the baseline damage and
	// effectiveness for the levels they cover (levels past the table's
	// reach fall back to the baseline plus scaling rules).
	baseDamage := skill.BaseDamage
	if skill.Level <= 20 {
		for _, ld := range skill.LevelData {
			if ld.Level != skill.Level {
				continue
			}
			baseDamage = ld.BaseDamage
			if ld.Effectiveness > 0 {
				s.effectiveness = ld.Effectiveness
			}
			break
		}
	}

	base := make(map[conversion.DamageType][2]float64)
	keys := make([]string, 0, len(baseDamage))
	for key := range baseDamage {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		bucketDamage(base, key, baseDamage[key])
	}

	if skill.IsAttack {
		physMin := s.pool.GetBase("dmg.phys.min")
		physMax := s.pool.GetBase("dmg.phys.max")
		if physMin > 0 || physMax > 0 {
			entry := base[conversion.Physical]
			entry[0] += physMin
			entry[1] += physMax
			base[conversion.Physical] = entry
		}
	}

	for dtype, mm := range base {
		mm[0] *= s.effectiveness
		mm[1] *= s.effectiveness
		if s.levelMultiplier > 1.0 {
			mm[0] *= s.levelMultiplier
			mm[1] *= s.levelMultiplier
		}
		base[dtype] = mm
	}

	applyRangeStretch(base, s.pool)

	s.baseDamages = base
	s.emit("Base Damage", "calculated base damage values", averages(base))
	return nil
}

// bucketDamage adds value into the (min, max) entry for the damage type
// whose name appears as a substring of key ("phys", "fire", "cold",
// "lightning", "chaos").
func bucketDamage(base map[conversion.DamageType][2]float64, key string, value float64) {
	var dtype conversion.DamageType
	switch {
	case strings.Contains(key, "phys"):
		dtype = conversion.Physical
	case strings.Contains(key, "fire"):
		dtype = conversion.Fire
	case strings.Contains(key, "cold"):
		dtype = conversion.Cold
	case strings.Contains(key, "lightning"):
		dtype = conversion.Lightning
	case strings.Contains(key, "chaos"):
		dtype = conversion.Chaos
	default:
		return
	}

	entry := base[dtype]
	switch {
	case strings.Contains(key, "min"):
		entry[0] += value
	case strings.Contains(key, "max"):
		entry[1] += value
	}
	base[dtype] = entry
}

// applyRangeStretch folds in dmg.min/dmg.max/dmg.phys.min/dmg.phys.max More
// contributions here so the later inc/more stage does not apply them
// again.
func applyRangeStretch(base map[conversion.DamageType][2]float64, pool *aggregate.StatPool) {
	global := pool.GetMoreMultiplier("dmg.min")
	globalMax := pool.GetMoreMultiplier("dmg.max")
	physMin := pool.GetMoreMultiplier("dmg.phys.min")
	physMax := pool.GetMoreMultiplier("dmg.phys.max")

	for dtype, mm := range base {
		mm[0] *= global
		mm[1] *= globalMax
		if dtype == conversion.Physical {
			mm[0] *= physMin
			mm[1] *= physMax
		}
		base[dtype] = mm
	}
}

// calculateLevelScaling computes the compounding per-level multiplier:
// default [21-30]:x1.10/level, [31-inf]:x1.08/level, or custom rules if
// provided.
func calculateLevelScaling(level int, rules []calcmodel.ScalingRule) float64 {
	if level <= 20 {
		return 1.0
	}

	multiplier := 1.0
	if len(rules) > 0 {
		for _, rule := range rules {
			if level < rule.Start {
				continue
			}
			end := rule.End
			if end == 0 {
				end = math.MaxInt32
			}
			top := level
			if top > end {
				top = end
			}
			levelsInRange := top - rule.Start + 1
			if levelsInRange <= 0 {
				continue
			}
			multiplier *= math.Pow(rule.PerLevel, float64(levelsInRange))
		}
		return multiplier
	}

	if level > 20 {
		levels2130 := level
		if levels2130 > 30 {
			levels2130 = 30
		}
		multiplier *= math.Pow(1.10, float64(levels2130-20))
	}
	if level > 30 {
		multiplier *= math.Pow(1.08, float64(level-30))
	}
	return multiplier
}

func averages(base map[conversion.DamageType][2]float64) map[string]float64 {
	out := make(map[string]float64, len(base))
	for dtype, mm := range base {
		out[dtype.Key()] = (mm[0] + mm[1]) / 2
	}
	return out
}
