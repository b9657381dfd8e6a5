// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package mechanics_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/leeeee/tli-bd-assistant/calcmodel"
	"github.com/leeeee/tli-bd-assistant/mechanics"
)

type MechanicsTestSuite struct {
	suite.Suite
}

func TestMechanicsSuite(t *testing.T) {
	suite.Run(t, new(MechanicsTestSuite))
}

func (s *MechanicsTestSuite) defs() []calcmodel.MechanicDefinition {
	return []calcmodel.MechanicDefinition{
		{
			ID:               "fighting_will",
			Category:         "combo",
			DefaultMaxStacks: 100,
			BaseEffectPerStack: map[string]float64{
				"mod.inc.dmg.all": 0.002,
			},
		},
		{
			ID:               "focus_blessing",
			Category:         "buff",
			DefaultMaxStacks: 5,
			BaseEffectPerStack: map[string]float64{
				"mod.more.dmg.cold": 0.02,
			},
		},
	}
}

func (s *MechanicsTestSuite) TestGetStacksActive() {
	p := mechanics.NewProcessor(s.defs(), []calcmodel.MechanicState{
		{ID: "fighting_will", CurrentStacks: 50, MaxStacks: 100, IsActive: true},
	})

	s.Equal(uint32(50), p.GetStacks("fighting_will"))
	s.True(p.IsActive("fighting_will"))
}

func (s *MechanicsTestSuite) TestGetStacksUnknownOrInactiveIsZero() {
	p := mechanics.NewProcessor(s.defs(), []calcmodel.MechanicState{
		{ID: "focus_blessing", CurrentStacks: 3, IsActive: false},
	})

	s.Equal(uint32(0), p.GetStacks("focus_blessing"))
	s.Equal(uint32(0), p.GetStacks("no_such_mechanic"))
	s.False(p.IsActive("focus_blessing"))
}

func (s *MechanicsTestSuite) TestCalculateBaseEffects() {
	p := mechanics.NewProcessor(s.defs(), []calcmodel.MechanicState{
		{ID: "fighting_will", CurrentStacks: 50, IsActive: true},
		{ID: "focus_blessing", CurrentStacks: 3, IsActive: true},
	})

	effects := p.CalculateBaseEffects()
	s.InDelta(0.1, effects["mod.inc.dmg.all"], 0.0001)
	s.InDelta(0.06, effects["mod.more.dmg.cold"], 0.0001)
}

func (s *MechanicsTestSuite) TestCalculateBaseEffectsIgnoresInactive() {
	p := mechanics.NewProcessor(s.defs(), []calcmodel.MechanicState{
		{ID: "fighting_will", CurrentStacks: 50, IsActive: false},
	})

	effects := p.CalculateBaseEffects()
	s.Empty(effects)
}

func (s *MechanicsTestSuite) TestCalculatePerStackValue() {
	p := mechanics.NewProcessor(s.defs(), []calcmodel.MechanicState{
		{ID: "fighting_will", CurrentStacks: 50, IsActive: true},
	})

	base, scaled, matched := p.CalculatePerStackValue("mod.inc.dmg.all.per_fighting_will", 0.01)
	s.True(matched)
	s.Equal("mod.inc.dmg.all", base)
	s.InDelta(0.5, scaled, 0.0001)
}

func (s *MechanicsTestSuite) TestCalculatePerStackValueNoMarkerPassesThrough() {
	p := mechanics.NewProcessor(nil, nil)

	base, value, matched := p.CalculatePerStackValue("mod.inc.dmg.fire", 0.2)
	s.False(matched)
	s.Equal("mod.inc.dmg.fire", base)
	s.InDelta(0.2, value, 0.0001)
}

func (s *MechanicsTestSuite) TestGetAllStacks() {
	p := mechanics.NewProcessor(s.defs(), []calcmodel.MechanicState{
		{ID: "fighting_will", CurrentStacks: 50, IsActive: true},
		{ID: "focus_blessing", CurrentStacks: 0, IsActive: false},
	})

	stacks := p.GetAllStacks()
	s.InDelta(50.0, stacks["fighting_will_stacks"], 0.0001)
	s.NotContains(stacks, "focus_blessing_stacks")
}

func (s *MechanicsTestSuite) TestNilProcessorIsInert() {
	var p *mechanics.Processor

	s.Equal(uint32(0), p.GetStacks("anything"))
	s.False(p.IsActive("anything"))
	s.Empty(p.CalculateBaseEffects())
	s.Empty(p.GetAllStacks())
}

func (s *MechanicsTestSuite) TestLoadDefinitionsJSON() {
	data := []byte(`[
		{"id": "fighting_will", "category": "combo", "defaultMaxStacks": 100,
		 "baseEffectPerStack": {"mod.inc.dmg.all": 0.002}}
	]`)

	defs, err := mechanics.LoadDefinitionsJSON(data)
	s.NoError(err)
	s.Len(defs, 1)
	s.Equal("fighting_will", defs[0].ID)
	s.InDelta(0.002, defs[0].BaseEffectPerStack["mod.inc.dmg.all"], 0.0001)
}

func (s *MechanicsTestSuite) TestLoadDefinitionsJSONMissingIDErrors() {
	data := []byte(`[{"category": "combo"}]`)

	_, err := mechanics.LoadDefinitionsJSON(data)
	s.Error(err)
}

func (s *MechanicsTestSuite) TestLoadDefinitionsYAML() {
	data := []byte(`
- id: focus_blessing
  category: buff
  defaultMaxStacks: 5
  baseEffectPerStack:
    mod.more.dmg.cold: 0.02
`)

	defs, err := mechanics.LoadDefinitionsYAML(data)
	s.NoError(err)
	s.Len(defs, 1)
	s.Equal("focus_blessing", defs[0].ID)
}
