// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calcpipe_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/leeeee/tli-bd-assistant/calcmodel"
	"github.com/leeeee/tli-bd-assistant/calcpipe"
	"github.com/leeeee/tli-bd-assistant/tagging"
)

type CalcPipeTestSuite struct {
	suite.Suite
}

func TestCalcPipeSuite(t *testing.T) {
	suite.Run(t, new(CalcPipeTestSuite))
}

func testInput() calcpipe.Input {
	return calcpipe.Input{
		ContextFlags:    map[string]bool{},
		ContextValues:   map[string]float64{},
		GlobalOverrides: map[string]float64{},
		ActiveSkill: calcmodel.Skill{
			ID:       "test_fireball",
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

func (s *CalcPipeTestSuite) engine() *calcpipe.Engine {
	return calcpipe.New(tagging.Fallback())
}

func (s *CalcPipeTestSuite) TestBasicCalculation() {
	out, err := s.engine().Calculate(testInput())
	s.Require().NoError(err)

	s.Greater(out.DPSTheoretical, 0.0)
	s.Greater(out.HitDamage, 0.0)
	s.Greater(out.Rate, 0.0)
}

func (s *CalcPipeTestSuite) TestWithIncreasedDamage() {
	base, err := s.engine().Calculate(testInput())
	s.Require().NoError(err)

	boosted := testInput()
	boosted.GlobalOverrides["mod.inc.dmg.fire"] = 1.0 // +100% fire damage

	out, err := s.engine().Calculate(boosted)
	s.Require().NoError(err)

	s.Greater(out.HitDamage, base.HitDamage*1.5)
}

func (s *CalcPipeTestSuite) TestConversionWithTagRetention() {
	input := testInput()
	input.ActiveSkill.IsAttack = true
	input.ActiveSkill.BaseDamage = map[string]float64{}
	input.ActiveSkill.Tags = []string{tagging.TagAttack, tagging.TagMelee}
	input.Items = []calcmodel.Item{
		{
			ID:   "test_sword",
			Slot: calcmodel.SlotWeaponMain,
			ImplicitStats: map[string]float64{
				"dmg.phys.min": 50.0,
				"dmg.phys.max": 100.0,
			},
		},
	}
	input.GlobalOverrides["conv.phys_to_fire"] = 0.5    // 50% phys converted to fire
	input.GlobalOverrides["mod.inc.dmg.phys"] = 1.0      // +100% phys
	input.GlobalOverrides["mod.inc.dmg.fire"] = 1.0      // +100% fire, should also apply to the converted portion

	out, err := s.engine().Calculate(input)
	s.Require().NoError(err)

	s.Greater(out.DPSTheoretical, 0.0)
	s.Contains(out.DamageBreakdown.ByType, "physical")
	s.Contains(out.DamageBreakdown.ByType, "fire")
}

func (s *CalcPipeTestSuite) TestElementalIncAppliesToAnyElementalHistory() {
	input := testInput()
	input.ActiveSkill.BaseDamage = map[string]float64{
		"dmg.fire.min": 100.0,
		"dmg.fire.max": 100.0,
	}
	input.GlobalOverrides["mod.inc.dmg.elemental"] = 1.0 // +100% elemental

	out, err := s.engine().Calculate(input)
	s.Require().NoError(err)

	s.InDelta(200.0, out.DamageBreakdown.ByType["fire"], 0.001) // 100 base x (1+1.0 elemental inc)
}

func (s *CalcPipeTestSuite) TestCannotCritForcesZeroChance() {
	input := testInput()
	input.ContextFlags["cannot_crit"] = true

	out, err := s.engine().Calculate(input)
	s.Require().NoError(err)

	s.Equal(0.0, out.CritChance)
	s.Equal(1.0, out.CritMultiplier)
}

func (s *CalcPipeTestSuite) TestCooldownCapsRate() {
	input := testInput()
	input.ActiveSkill.Cooldown = 4.0 // 1/4s cap, slower than 1/0.8s base

	out, err := s.engine().Calculate(input)
	s.Require().NoError(err)

	s.InDelta(0.25, out.Rate, 0.0001)
}

func (s *CalcPipeTestSuite) TestLuckyDamageUsesSkewedExpectation() {
	input := testInput()
	input.ContextFlags["lucky_damage"] = true

	out, err := s.engine().Calculate(input)
	s.Require().NoError(err)

	// min 50, max 100: lucky expectation = 50 + (100-50)*2/3 = 83.33, vs
	// the unlucky midpoint of 75 -- lucky must come out higher.
	unluckyInput := testInput()
	unluckyOut, err := s.engine().Calculate(unluckyInput)
	s.Require().NoError(err)

	s.Greater(out.HitDamage, unluckyOut.HitDamage)
}

func (s *CalcPipeTestSuite) TestSanitizeDropsOffhandAfterTwoHandedPreview() {
	input := testInput()
	input.Items = []calcmodel.Item{
		{ID: "offhand-shield", Slot: calcmodel.SlotWeaponOff},
	}
	input.PreviewSlot = &calcpipe.PreviewSlot{
		Slot: calcmodel.SlotWeaponMain,
		Item: calcmodel.Item{ID: "greatsword", Slot: calcmodel.SlotWeaponMain, IsTwoHanded: true},
	}

	out, err := s.engine().Calculate(input)
	s.Require().NoError(err)
	s.Greater(out.Rate, 0.0)
}

func (s *CalcPipeTestSuite) TestLevelDataSupersedesBaseline() {
	input := testInput()
	input.ActiveSkill.Level = 5
	input.ActiveSkill.LevelData = []calcmodel.SkillLevelData{
		{Level: 5, BaseDamage: map[string]float64{"dmg.fire.min": 100.0, "dmg.fire.max": 200.0}},
	}

	out, err := s.engine().Calculate(input)
	s.Require().NoError(err)

	// (100+200)/2 = 150, double the baseline table's 75.
	s.InDelta(150.0, out.HitDamage, 0.0001)
}

func (s *CalcPipeTestSuite) TestLevelScalingCompoundsPastTwenty() {
	input := testInput()
	input.ActiveSkill.Level = 21

	base, err := s.engine().Calculate(testInput())
	s.Require().NoError(err)
	out, err := s.engine().Calculate(input)
	s.Require().NoError(err)

	s.InDelta(base.HitDamage*1.10, out.HitDamage, 0.01)
}
