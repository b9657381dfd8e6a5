// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

// Package calccache implements the calculator's LRU front-end: a
// result cache and a prepared-context cache keyed by a structural
// fingerprint over every result-affecting field of a calcpipe.Input, plus
// the prepare/finalize split and the preview-diff helpers a hover-preview
// host drives repeatedly.
package calccache

import (
	"hash"
	"hash/fnv"
	"math"
	"sort"

	"github.com/leeeee/tli-bd-assistant/calcmodel"
	"github.com/leeeee/tli-bd-assistant/calcpipe"
)

// CacheKey is the structural fingerprint of one Input:
// one hash per result-affecting section, so two inputs that differ only in
// (say) mechanic stacks still produce different keys even though every
// other hash matches. Every map iterated while hashing is sorted by string
// key first so fingerprints are stable across platforms, and every
// float is hashed by its exact bit pattern with -0 normalized to +0 so
// "+0 == -0" holds.
type CacheKey struct {
	ItemsHash         uint64
	SkillHash         uint64
	MechanicsHash     uint64
	TargetHash        uint64
	OverridesHash     uint64
	ContextFlagsHash  uint64
	ContextValuesHash uint64
}

// Fingerprint computes input's CacheKey.
func Fingerprint(input calcpipe.Input) CacheKey {
	return CacheKey{
		ItemsHash:         hashItems(input.Items, input.PreviewSlot),
		SkillHash:         hashSkills(input.ActiveSkill, input.SupportSkills),
		MechanicsHash:     hashMechanics(input.MechanicStates),
		TargetHash:        hashTarget(input.TargetConfig),
		OverridesHash:     hashFloatMap(input.GlobalOverrides),
		ContextFlagsHash:  hashBoolMap(input.ContextFlags),
		ContextValuesHash: hashFloatMap(input.ContextValues),
	}
}

// hashBits canonicalizes f to its exact bit pattern, folding -0 into +0 so
// the two fingerprint equal.
func hashBits(h hash.Hash64, f float64) {
	if f == 0 {
		f = 0
	}
	var buf [8]byte
	bits := math.Float64bits(f)
	for i := 0; i < 8; i++ {
		buf[i] = byte(bits >> (8 * i))
	}
	_, _ = h.Write(buf[:])
}

func hashString(h hash.Hash64, s string) {
	_, _ = h.Write([]byte(s))
	_, _ = h.Write([]byte{0})
}

func hashFloatMap(m map[string]float64) uint64 {
	h := fnv.New64a()
	keys := sortedKeys(m)
	for _, k := range keys {
		hashString(h, k)
		hashBits(h, m[k])
	}
	return h.Sum64()
}

func hashBoolMap(m map[string]bool) uint64 {
	h := fnv.New64a()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		hashString(h, k)
		if m[k] {
			_, _ = h.Write([]byte{1})
		} else {
			_, _ = h.Write([]byte{0})
		}
	}
	return h.Sum64()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func hashAffix(h hash.Hash64, a calcmodel.Affix) {
	hashString(h, a.ID)
	hashString(h, a.Group)
	hashBits(h, a.Value)
	for _, k := range sortedKeys(a.Stats) {
		hashString(h, k)
		hashBits(h, a.Stats[k])
	}
	reqs := append([]string{}, a.Requirements...)
	sort.Strings(reqs)
	for _, r := range reqs {
		hashString(h, r)
	}
}

func hashItem(h hash.Hash64, item calcmodel.Item) {
	hashString(h, item.ID)
	var slotBuf [8]byte
	slot := uint64(item.Slot)
	for i := 0; i < 8; i++ {
		slotBuf[i] = byte(slot >> (8 * i))
	}
	_, _ = h.Write(slotBuf[:])
	if item.IsTwoHanded {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
	for _, k := range sortedKeys(item.BaseImplicitStats) {
		hashString(h, k)
		hashBits(h, item.BaseImplicitStats[k])
	}
	for _, k := range sortedKeys(item.ImplicitStats) {
		hashString(h, k)
		hashBits(h, item.ImplicitStats[k])
	}
	affixes := append([]calcmodel.Affix{}, item.Affixes...)
	sort.Slice(affixes, func(i, j int) bool { return affixes[i].ID < affixes[j].ID })
	for _, a := range affixes {
		hashAffix(h, a)
	}
}

func hashItems(items []calcmodel.Item, preview *calcpipe.PreviewSlot) uint64 {
	h := fnv.New64a()
	sorted := append([]calcmodel.Item{}, items...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Slot != sorted[j].Slot {
			return sorted[i].Slot < sorted[j].Slot
		}
		return sorted[i].ID < sorted[j].ID
	})
	for _, item := range sorted {
		hashItem(h, item)
	}
	// The preview item replaces a slot's occupant during sanitization, so
	// it is as result-affecting as the loadout itself.
	if preview != nil {
		hashString(h, "preview")
		var slotBuf [8]byte
		slot := uint64(preview.Slot)
		for i := 0; i < 8; i++ {
			slotBuf[i] = byte(slot >> (8 * i))
		}
		_, _ = h.Write(slotBuf[:])
		hashItem(h, preview.Item)
	}
	return h.Sum64()
}

func hashSkill(h hash.Hash64, skill calcmodel.Skill) {
	hashString(h, skill.ID)
	var lvl [8]byte
	v := uint64(int64(skill.Level))
	for i := 0; i < 8; i++ {
		lvl[i] = byte(v >> (8 * i))
	}
	_, _ = h.Write(lvl[:])
	hashBits(h, skill.Effectiveness)
	for _, k := range sortedKeys(skill.BaseDamage) {
		hashString(h, k)
		hashBits(h, skill.BaseDamage[k])
	}
	for _, k := range sortedKeys(skill.Stats) {
		hashString(h, k)
		hashBits(h, skill.Stats[k])
	}
	levelData := append([]calcmodel.SkillLevelData{}, skill.LevelData...)
	sort.Slice(levelData, func(i, j int) bool { return levelData[i].Level < levelData[j].Level })
	for _, ld := range levelData {
		var lv [8]byte
		u := uint64(int64(ld.Level))
		for i := 0; i < 8; i++ {
			lv[i] = byte(u >> (8 * i))
		}
		_, _ = h.Write(lv[:])
		hashBits(h, ld.Effectiveness)
		for _, k := range sortedKeys(ld.BaseDamage) {
			hashString(h, k)
			hashBits(h, ld.BaseDamage[k])
		}
	}
}

func hashSkills(active calcmodel.Skill, supports []calcmodel.Skill) uint64 {
	h := fnv.New64a()
	hashSkill(h, active)
	sorted := append([]calcmodel.Skill{}, supports...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for _, s := range sorted {
		hashSkill(h, s)
	}
	return h.Sum64()
}

func hashMechanics(states []calcmodel.MechanicState) uint64 {
	h := fnv.New64a()
	sorted := append([]calcmodel.MechanicState{}, states...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for _, st := range sorted {
		hashString(h, st.ID)
		var stacks [4]byte
		for i := 0; i < 4; i++ {
			stacks[i] = byte(st.CurrentStacks >> (8 * i))
		}
		_, _ = h.Write(stacks[:])
		if st.IsActive {
			_, _ = h.Write([]byte{1})
		} else {
			_, _ = h.Write([]byte{0})
		}
	}
	return h.Sum64()
}

func hashTarget(t calcmodel.TargetConfig) uint64 {
	h := fnv.New64a()
	var lvl [8]byte
	v := uint64(int64(t.Level))
	for i := 0; i < 8; i++ {
		lvl[i] = byte(v >> (8 * i))
	}
	_, _ = h.Write(lvl[:])
	var armor [8]byte
	av := uint64(int64(t.Armor))
	for i := 0; i < 8; i++ {
		armor[i] = byte(av >> (8 * i))
	}
	_, _ = h.Write(armor[:])
	hashBits(h, t.GenericDR)
	for _, k := range sortedKeys(t.Resistances) {
		hashString(h, k)
		hashBits(h, t.Resistances[k])
	}
	return h.Sum64()
}
