// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calcpipe

import "github.com/leeeee/tli-bd-assistant/conversion"

// conversionStage derives extra-as and conversion rules from the
// finalized stat pool and run the conversion engine, producing
// tag-retaining damage buckets.
type conversionStage struct{}

func (conversionStage) Name() string { return "Conversion" }

func (conversionStage) Run(s *calcState) error {
	extraRules := conversion.ExtractExtraAsRules(s.pool)
	convRules := conversion.ExtractConversionRules(s.pool)

	engine := conversion.NewEngine(s.registry)
	s.damagePool = engine.Process(s.baseDamages, extraRules, convRules)

	values := make(map[string]float64, len(s.damagePool))
	for dtype, bucket := range s.damagePool {
		values[dtype.Key()] = bucket.Average()
	}
	s.emit("Conversion", "applied extra-as and conversion rules", values)
	return nil
}
