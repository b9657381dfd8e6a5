// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calcpipe

// dpsStage computes theoretical DPS from hit_damage x rate, and effective
// DPS from each bucket's expected damage discounted by target resistance
// and generic damage reduction.
type dpsStage struct{}

func (dpsStage) Name() string { return "DPS" }

func (dpsStage) Run(s *calcState) error {
	s.dpsTheoretical = s.hitDamage * s.rate

	target := s.input.TargetConfig
	total := 0.0
	for dtype, e := range s.expected {
		avg := e * s.critFactor
		resistance := target.Resistances[dtype.Key()]
		total += avg * (1.0 - resistance) * (1.0 - target.GenericDR)
	}
	s.dpsEffective = total * s.rate * s.hitChance

	s.emit("DPS", "computed theoretical and effective DPS", map[string]float64{
		"dps_theoretical": s.dpsTheoretical,
		"dps_effective":   s.dpsEffective,
	})
	return nil
}
