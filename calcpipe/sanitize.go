// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calcpipe

import "github.com/leeeee/tli-bd-assistant/calcmodel"

// sanitizeStage dedupes equipped items per slot, enforces the
// two-handed/off-hand exclusion, and splice in the preview item if any.
type sanitizeStage struct{}

func (sanitizeStage) Name() string { return "Sanitization" }

func (sanitizeStage) Run(s *calcState) error {
	s.sanitizedItems = sanitizeItems(s.input.Items, s.input.PreviewSlot)
	s.emit("Sanitization", "processed equipped items", map[string]float64{
		"item_count": float64(len(s.sanitizedItems)),
	})
	return nil
}

// sanitizeItems dedupes items by slot (Ring1/Ring2 exempted), drops every
// off-hand item when a kept or previewed weapon is two-handed, and replaces (not
// joins) whatever occupies preview's slot. Traversal order is fixed:
// equipped items first in input order, then the preview.
func sanitizeItems(items []calcmodel.Item, preview *PreviewSlot) []calcmodel.Item {
	result := make([]calcmodel.Item, 0, len(items)+1)
	slotsUsed := make(map[calcmodel.ItemSlot]bool)
	hasTwoHanded := false

	if preview != nil && preview.Item.IsTwoHanded {
		hasTwoHanded = true
	}

	for _, item := range items {
		if preview != nil && item.Slot == preview.Slot {
			continue
		}
		if item.IsTwoHanded {
			hasTwoHanded = true
		}
		if hasTwoHanded && item.Slot == calcmodel.SlotWeaponOff {
			continue
		}
		if slotsUsed[item.Slot] && item.Slot != calcmodel.SlotRing1 && item.Slot != calcmodel.SlotRing2 {
			continue
		}
		slotsUsed[item.Slot] = true
		result = append(result, item)
	}

	twoHandedKept := preview != nil && preview.Item.IsTwoHanded
	for _, item := range result {
		if item.IsTwoHanded {
			twoHandedKept = true
		}
	}
	if twoHandedKept {
		filtered := result[:0]
		for _, item := range result {
			if item.Slot != calcmodel.SlotWeaponOff {
				filtered = append(filtered, item)
			}
		}
		result = filtered
	}
	if preview != nil {
		result = append(result, preview.Item)
	}

	return result
}
