// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leeeee/tli-bd-assistant/calcmodel"
	"github.com/leeeee/tli-bd-assistant/calcpipe"
	"github.com/leeeee/tli-bd-assistant/engine"
	"github.com/leeeee/tli-bd-assistant/tagging"
)

func testInput() calcpipe.Input {
	return calcpipe.Input{
		ContextFlags:    map[string]bool{},
		ContextValues:   map[string]float64{},
		GlobalOverrides: map[string]float64{},
		ActiveSkill: calcmodel.Skill{
			ID:            "bolt",
			Kind:          calcmodel.SkillActive,
			Level:         1,
			BaseDamage:    map[string]float64{"dmg.fire.min": 50.0, "dmg.fire.max": 100.0},
			BaseTime:      0.8,
			Effectiveness: 1.0,
			Tags:          []string{tagging.TagSpell, tagging.TagFire},
			Stats:         map[string]float64{},
		},
	}
}

func TestCalculateIsStateless(t *testing.T) {
	out, err := engine.Calculate(testInput())
	require.NoError(t, err)
	require.Greater(t, out.DPSTheoretical, 0.0)
}

func TestCalculateCachedHitsOnRepeat(t *testing.T) {
	cache := engine.NewDefaultCache()
	input := testInput()

	first, err := engine.CalculateCached(cache, input)
	require.NoError(t, err)
	second, err := engine.CalculateCached(cache, input)
	require.NoError(t, err)
	require.Equal(t, first.DPSTheoretical, second.DPSTheoretical)

	stats := engine.GetCacheStats(cache)
	require.Equal(t, uint64(1), stats.Hits)
	require.Equal(t, uint64(1), stats.Misses)

	engine.ClearCache(cache)
	require.Equal(t, 0, engine.GetCacheStats(cache).Size)
}

func TestCalculateDiffUncachedMatchesTwoSingleRuns(t *testing.T) {
	base := testInput()
	preview := testInput()
	preview.GlobalOverrides["mod.inc.dmg.fire"] = 0.5

	diff, err := engine.CalculateDiffUncached(base, preview)
	require.NoError(t, err)
	require.Greater(t, diff.DPSDiff, 0.0)
	require.True(t, diff.IsPositive())
}

func TestVersionIsNonEmpty(t *testing.T) {
	require.NotEmpty(t, engine.Version())
}
