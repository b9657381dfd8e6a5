// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

// Package tagging implements the Universal Tag & Attribute System (UTAS):
// tag interning, DAG-based inheritance expansion, and fast bitset-backed
// set-match tests. Tag ids are dense small integers; a TagSet is a bitset
// of width Registry.Width().
package tagging

import "github.com/bits-and-blooms/bitset"

// TagSet is a bitset of tag ids, used for the active-context tag set,
// per-damage-bucket history, and affix requirements.
type TagSet struct {
	bits *bitset.BitSet
}

// NewTagSet creates an empty set with the given width (typically
// Registry.Width()).
func NewTagSet(width uint) TagSet {
	return TagSet{bits: bitset.New(width)}
}

// Insert adds id to the set. Callers that want ancestor expansion should use
// Registry.SetFromNames or Registry.SetFromIDs instead.
func (s *TagSet) Insert(id uint32) {
	s.ensure()
	s.bits.Set(uint(id))
}

// ensure lazily allocates the backing bitset so a zero-value TagSet is
// usable without an explicit NewTagSet call.
func (s *TagSet) ensure() {
	if s.bits == nil {
		s.bits = bitset.New(64)
	}
}

// Contains reports whether id is a member of the set.
func (s TagSet) Contains(id uint32) bool {
	if s.bits == nil {
		return false
	}
	return s.bits.Test(uint(id))
}

// ContainsAll reports whether every id in other is present in s (other is a
// subset of s).
func (s TagSet) ContainsAll(other TagSet) bool {
	if other.bits == nil || other.bits.None() {
		return true
	}
	if s.bits == nil {
		return false
	}
	missing := other.bits.Difference(s.bits)
	return missing.None()
}

// ContainsAny reports whether s and other share at least one member.
func (s TagSet) ContainsAny(other TagSet) bool {
	if s.bits == nil || other.bits == nil {
		return false
	}
	return s.bits.IntersectionCardinality(other.bits) > 0
}

// Union merges other into s in place.
func (s *TagSet) Union(other TagSet) {
	s.ensure()
	if other.bits == nil {
		return
	}
	s.bits.InPlaceUnion(other.bits)
}

// Clone returns an independent copy of the set.
func (s TagSet) Clone() TagSet {
	if s.bits == nil {
		return TagSet{}
	}
	return TagSet{bits: s.bits.Clone()}
}

// IDs returns every member id in ascending order.
func (s TagSet) IDs() []uint32 {
	if s.bits == nil {
		return nil
	}
	ids := make([]uint32, 0, s.bits.Count())
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		ids = append(ids, uint32(i))
	}
	return ids
}

// IsEmpty reports whether the set has no members.
func (s TagSet) IsEmpty() bool {
	return s.bits == nil || s.bits.None()
}
