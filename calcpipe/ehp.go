// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calcpipe

// ehpStage derives physical and elemental/chaos effective HP from
// base life, armor, and capped resistances.
type ehpStage struct{}

func (ehpStage) Name() string { return "EHP" }

func (ehpStage) Run(s *calcState) error {
	life := s.pool.GetBase("base.life")
	if life < 1.0 {
		life = 1.0
	}
	armor := s.pool.GetBase("def.armor")

	physReduction := armor / (armor + 1000.0)
	physEhp := life / maxFloat(1.0-physReduction, 0.01)

	fireRes := minFloat(s.pool.GetBase("res.fire"), 0.75)
	coldRes := minFloat(s.pool.GetBase("res.cold"), 0.75)
	lightningRes := minFloat(s.pool.GetBase("res.lightning"), 0.75)
	chaosRes := minFloat(s.pool.GetBase("res.chaos"), 0.75)

	ehp := EhpSeries{
		Physical:  physEhp,
		Fire:      life / maxFloat(1.0-fireRes, 0.01),
		Cold:      life / maxFloat(1.0-coldRes, 0.01),
		Lightning: life / maxFloat(1.0-lightningRes, 0.01),
		Chaos:     life / maxFloat(1.0-chaosRes, 0.01),
	}

	s.ehp = ehp
	s.emit("EHP", "computed effective HP series", map[string]float64{
		"physical":  ehp.Physical,
		"fire":      ehp.Fire,
		"cold":      ehp.Cold,
		"lightning": ehp.Lightning,
		"chaos":     ehp.Chaos,
	})
	return nil
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
