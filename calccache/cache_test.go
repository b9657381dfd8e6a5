// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calccache_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/leeeee/tli-bd-assistant/calccache"
	"github.com/leeeee/tli-bd-assistant/calcmodel"
	"github.com/leeeee/tli-bd-assistant/calcpipe"
	"github.com/leeeee/tli-bd-assistant/tagging"
)

type CacheTestSuite struct {
	suite.Suite
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func (s *CacheTestSuite) engine() *calcpipe.Engine {
	return calcpipe.New(tagging.Fallback())
}

func testInput() calcpipe.Input {
	return calcpipe.Input{
		ContextFlags:    map[string]bool{},
		ContextValues:   map[string]float64{},
		GlobalOverrides: map[string]float64{},
		ActiveSkill: calcmodel.Skill{
			ID:       "test_skill",
			Kind:     calcmodel.SkillActive,
			IsAttack: false,
			Level:    1,
			BaseDamage: map[string]float64{
				"dmg.fire.min": 50.0,
				"dmg.fire.max": 100.0,
			},
			BaseTime:      0.8,
			Effectiveness: 1.0,
			Tags:          []string{tagging.TagSpell, tagging.TagFire},
			Stats:         map[string]float64{},
		},
	}
}

// S4: capacity 16, run the same input three times, expect hits=2,
// misses=1, hit-rate in (0.6, 0.7).
func (s *CacheTestSuite) TestCacheHitMissCounters() {
	c := calccache.New(s.engine(), calccache.WithResultCapacity(16))
	input := testInput()

	_, err := c.Calculate(input)
	s.Require().NoError(err)
	_, err = c.Calculate(input)
	s.Require().NoError(err)
	_, err = c.Calculate(input)
	s.Require().NoError(err)

	stats := c.GetStats()
	s.Equal(uint64(1), stats.Misses)
	s.Equal(uint64(2), stats.Hits)
	s.Greater(stats.HitRate, 0.6)
	s.Less(stats.HitRate, 0.7)
}

func (s *CacheTestSuite) TestCacheHitReturnsSameResult() {
	c := calccache.New(s.engine(), calccache.WithResultCapacity(16))
	input := testInput()

	first, err := c.Calculate(input)
	s.Require().NoError(err)
	second, err := c.Calculate(input)
	s.Require().NoError(err)

	s.Equal(first.DPSTheoretical, second.DPSTheoretical)
}

func (s *CacheTestSuite) TestDifferentSkillLevelMisses() {
	c := calccache.New(s.engine(), calccache.WithResultCapacity(16))
	input1 := testInput()
	input2 := testInput()
	input2.ActiveSkill.Level = 21

	_, err := c.Calculate(input1)
	s.Require().NoError(err)
	_, err = c.Calculate(input2)
	s.Require().NoError(err)

	stats := c.GetStats()
	s.Equal(uint64(2), stats.Misses)
	s.Equal(uint64(0), stats.Hits)
}

func (s *CacheTestSuite) TestDifferentContextFlagsMiss() {
	c := calccache.New(s.engine(), calccache.WithResultCapacity(16))
	input1 := testInput()
	input2 := testInput()
	input1.ContextFlags["cannot_crit"] = false
	input2.ContextFlags["cannot_crit"] = true

	_, err := c.Calculate(input1)
	s.Require().NoError(err)
	_, err = c.Calculate(input2)
	s.Require().NoError(err)

	stats := c.GetStats()
	s.Equal(uint64(2), stats.Misses)
	s.Equal(uint64(0), stats.Hits)
}

func (s *CacheTestSuite) TestSameContextHits() {
	c := calccache.New(s.engine(), calccache.WithResultCapacity(16))
	input1 := testInput()
	input2 := testInput()
	input1.ContextFlags["low_life"] = true
	input2.ContextFlags["low_life"] = true
	input1.ContextValues["life_percent"] = 0.3
	input2.ContextValues["life_percent"] = 0.3

	_, err := c.Calculate(input1)
	s.Require().NoError(err)
	_, err = c.Calculate(input2)
	s.Require().NoError(err)

	stats := c.GetStats()
	s.Equal(uint64(1), stats.Misses)
	s.Equal(uint64(1), stats.Hits)
}

func (s *CacheTestSuite) TestCalculateDiffPositive() {
	c := calccache.New(s.engine(), calccache.WithResultCapacity(16))
	base := testInput()
	preview := testInput()
	preview.GlobalOverrides["mod.inc.dmg.fire"] = 0.5

	diff, err := c.CalculateDiff(base, preview)
	s.Require().NoError(err)

	s.Greater(diff.DPSDiff, 0.0)
	s.True(diff.IsPositive())
}

func (s *CacheTestSuite) TestPreparedContextCacheStats() {
	c := calccache.New(s.engine(), calccache.WithResultCapacity(16))
	input := testInput()

	ctx1, err := c.GetOrPrepareContext(input)
	s.Require().NoError(err)
	ctx2, err := c.GetOrPrepareContext(input)
	s.Require().NoError(err)

	stats := c.GetExtendedStats()
	s.Equal(uint64(1), stats.ContextCache.Misses)
	s.Equal(uint64(1), stats.ContextCache.Hits)

	out1, err := c.CalculateFromPrepared(ctx1, input.TargetConfig)
	s.Require().NoError(err)
	out2, err := c.CalculateFromPrepared(ctx2, input.TargetConfig)
	s.Require().NoError(err)
	s.InDelta(out1.DPSTheoretical, out2.DPSTheoretical, 0.001)
}

func (s *CacheTestSuite) TestClearCache() {
	c := calccache.New(s.engine(), calccache.WithResultCapacity(16))
	input := testInput()

	_, err := c.Calculate(input)
	s.Require().NoError(err)
	s.Equal(1, c.GetStats().Size)

	c.ClearCache()
	s.Equal(0, c.GetStats().Size)
}

func (s *CacheTestSuite) TestCalculateDiffIncremental() {
	c := calccache.New(s.engine(), calccache.WithResultCapacity(16))
	base := testInput()
	base.Items = []calcmodel.Item{{
		ID:   "old_ring",
		Slot: calcmodel.SlotRing1,
	}}

	better := calcmodel.Item{
		ID:   "ring_of_flame",
		Slot: calcmodel.SlotRing1,
		Affixes: []calcmodel.Affix{{
			ID:    "flame_affix",
			Stats: map[string]float64{"mod.inc.dmg.fire": 1.0},
		}},
	}

	diff, err := c.CalculateDiffIncremental(base, calcmodel.SlotRing1, better)
	s.Require().NoError(err)
	s.Greater(diff.Preview.DPSTheoretical, diff.Base.DPSTheoretical)
}

func (s *CacheTestSuite) TestFingerprintStableAcrossMapOrder() {
	input1 := testInput()
	input1.ContextValues["a"] = 1
	input1.ContextValues["b"] = 2

	input2 := testInput()
	input2.ContextValues["b"] = 2
	input2.ContextValues["a"] = 1

	s.Equal(calccache.Fingerprint(input1), calccache.Fingerprint(input2))
}

func (s *CacheTestSuite) TestFingerprintNegativeZeroEqualsZero() {
	input1 := testInput()
	input1.ContextValues["v"] = 0.0

	input2 := testInput()
	input2.ContextValues["v"] = math.Copysign(0, -1)

	s.Equal(calccache.Fingerprint(input1), calccache.Fingerprint(input2))
}
