// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calccache

import (
	"fmt"

	"github.com/leeeee/tli-bd-assistant/calcmodel"
	"github.com/leeeee/tli-bd-assistant/calcpipe"
)

// Diff is the hover-preview comparison between a base loadout and a
// candidate swap.
type Diff struct {
	Base    calcpipe.Output
	Preview calcpipe.Output

	DPSDiff         float64
	DPSDiffPercent  float64
	EHPPhysicalDiff float64
	CritChanceDiff  float64
}

// IsPositive reports whether the preview is a DPS upgrade over the base.
func (d Diff) IsPositive() bool {
	return d.DPSDiff > 0
}

// FormatDPSDiff renders the DPS change the way a tooltip would: a signed
// absolute delta followed by a signed percentage in parentheses.
func (d Diff) FormatDPSDiff() string {
	if d.DPSDiff > 0 {
		return fmt.Sprintf("+%.0f (%+.1f%%)", d.DPSDiff, d.DPSDiffPercent)
	}
	return fmt.Sprintf("%.0f (%+.1f%%)", d.DPSDiff, d.DPSDiffPercent)
}

// BuildDiff computes the Diff view between two already-finalized Outputs,
// for callers (like the engine package's uncached diff entry point) that
// ran the pipeline themselves without a Calculator.
func BuildDiff(base, preview calcpipe.Output) Diff {
	return buildDiff(base, preview)
}

func buildDiff(base, preview calcpipe.Output) Diff {
	percent := 0.0
	if base.DPSTheoretical > 0 {
		percent = (preview.DPSTheoretical - base.DPSTheoretical) / base.DPSTheoretical * 100
	}
	return Diff{
		Base:            base,
		Preview:         preview,
		DPSDiff:         preview.DPSTheoretical - base.DPSTheoretical,
		DPSDiffPercent:  percent,
		EHPPhysicalDiff: preview.EhpSeries.Physical - base.EhpSeries.Physical,
		CritChanceDiff:  preview.CritChance - base.CritChance,
	}
}

// CalculateDiff computes both inputs through the result cache and returns
// their Diff.
func (c *Calculator) CalculateDiff(baseInput, previewInput calcpipe.Input) (Diff, error) {
	base, err := c.Calculate(baseInput)
	if err != nil {
		return Diff{}, err
	}
	preview, err := c.Calculate(previewInput)
	if err != nil {
		return Diff{}, err
	}
	return buildDiff(base, preview), nil
}

// CalculateDiffIncremental builds a preview input by replacing slot's
// occupant with item in a copy of baseInput, then runs prepare+finalize on
// both base and preview.
//
// TODO: merge only the preview item's modifier contributions into the base
// PreparedContext instead of re-running the prepare phases for the preview.
func (c *Calculator) CalculateDiffIncremental(baseInput calcpipe.Input, slot calcmodel.ItemSlot, item calcmodel.Item) (Diff, error) {
	baseCtx, err := c.GetOrPrepareContext(baseInput)
	if err != nil {
		return Diff{}, err
	}
	base, err := c.CalculateFromPrepared(baseCtx, baseInput.TargetConfig)
	if err != nil {
		return Diff{}, err
	}

	previewInput := cloneInputWithoutSlot(baseInput, slot)
	previewInput.Items = append(previewInput.Items, item)
	previewInput.PreviewSlot = &calcpipe.PreviewSlot{Slot: slot, Item: item}

	previewCtx, err := c.engine.Prepare(previewInput)
	if err != nil {
		return Diff{}, err
	}
	preview, err := c.engine.Finalize(previewCtx, previewInput.TargetConfig)
	if err != nil {
		return Diff{}, err
	}

	return buildDiff(base, preview), nil
}

// cloneInputWithoutSlot copies input's slices/maps so mutating the copy
// (dropping slot's occupant, appending a preview item) never touches the
// caller's original Input.
func cloneInputWithoutSlot(input calcpipe.Input, slot calcmodel.ItemSlot) calcpipe.Input {
	out := input
	out.Items = make([]calcmodel.Item, 0, len(input.Items))
	for _, it := range input.Items {
		if it.Slot == slot {
			continue
		}
		out.Items = append(out.Items, it)
	}
	out.ContextFlags = cloneBoolMap(input.ContextFlags)
	out.ContextValues = cloneFloatMap(input.ContextValues)
	out.GlobalOverrides = cloneFloatMap(input.GlobalOverrides)
	out.SupportSkills = append([]calcmodel.Skill{}, input.SupportSkills...)
	out.MechanicStates = append([]calcmodel.MechanicState{}, input.MechanicStates...)
	out.MechanicDefinitions = append([]calcmodel.MechanicDefinition{}, input.MechanicDefinitions...)
	return out
}

func cloneBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneFloatMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
