// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calcpipe

import "github.com/leeeee/tli-bd-assistant/conversion"

// expectedStage reduces each modified bucket to its expected per-hit
// damage, using the max-of-two-uniform-draws expectation when lucky damage
// is in effect.
type expectedStage struct{}

func (expectedStage) Name() string { return "Expected Damage" }

func (expectedStage) Run(s *calcState) error {
	lucky := s.input.ContextFlags["lucky_damage"] || s.pool.GetBase("flag.lucky") != 0

	expected := make(map[conversion.DamageType]float64, len(s.modified))
	values := make(map[string]float64, len(s.modified))
	for dtype, bucket := range s.modified {
		var e float64
		if lucky {
			e = bucket.Min + (bucket.Max-bucket.Min)*2.0/3.0
		} else {
			e = (bucket.Min + bucket.Max) / 2.0
		}
		expected[dtype] = e
		values[dtype.Key()] = e
	}

	s.expected = expected
	s.emit("Expected Damage", "reduced buckets to expected per-hit damage", values)
	return nil
}
