// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package tagging

import (
	"fmt"
	"sort"

	"github.com/leeeee/tli-bd-assistant/calcerr"
)

// Registry interns tag names to small integer ids, stores DAG parent edges,
// and precomputes each tag's ancestor-inclusive bitset. Built once from data
// and treated as immutable for the engine's lifetime; safe for concurrent
// reads once Precompute has returned.
type Registry struct {
	nameToID map[string]uint32
	idToName map[uint32]string
	parents  map[uint32][]uint32
	ancestry map[uint32]TagSet
	maxID    uint32
	built    bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		nameToID: make(map[string]uint32),
		idToName: make(map[uint32]string),
		parents:  make(map[uint32][]uint32),
		ancestry: make(map[uint32]TagSet),
	}
}

// Register interns name under id. Re-registering a name with a new id
// replaces the mapping: last write wins.
func (r *Registry) Register(name string, id uint32) {
	r.nameToID[name] = id
	r.idToName[id] = name
	if id > r.maxID {
		r.maxID = id
	}
}

// SetParents sets the direct parent ids of id, overwriting any prior edges.
func (r *Registry) SetParents(id uint32, parentIDs []uint32) {
	r.parents[id] = parentIDs
}

// Width returns maxId+1, the bitset width every TagSet derived from this
// registry must use.
func (r *Registry) Width() uint {
	return uint(r.maxID) + 1
}

// IDOf returns the id registered for name.
func (r *Registry) IDOf(name string) (uint32, bool) {
	id, ok := r.nameToID[name]
	return id, ok
}

// NameOf returns the name registered for id.
func (r *Registry) NameOf(id uint32) (string, bool) {
	name, ok := r.idToName[id]
	return name, ok
}

// Len returns the number of interned tags.
func (r *Registry) Len() int {
	return len(r.nameToID)
}

// Precompute walks the parent graph and materializes each tag's
// ancestor-inclusive bitset. It must be called after all Register/SetParents
// calls and before any AncestorsOf/SetFromNames call. Cycles are rejected
// with a calcerr.CodeTagRegistry error rather than causing infinite
// recursion.
func (r *Registry) Precompute() error {
	width := r.Width()
	r.ancestry = make(map[uint32]TagSet, len(r.idToName))

	ids := make([]uint32, 0, len(r.idToName))
	for id := range r.idToName {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		set, err := r.computeAncestors(id, width, make(map[uint32]bool))
		if err != nil {
			return err
		}
		r.ancestry[id] = set
	}
	r.built = true
	return nil
}

func (r *Registry) computeAncestors(id uint32, width uint, visiting map[uint32]bool) (TagSet, error) {
	if cached, ok := r.ancestry[id]; ok {
		return cached, nil
	}
	if visiting[id] {
		return TagSet{}, calcerr.TagRegistry("cycle detected in tag parent graph at id %d", id)
	}
	visiting[id] = true

	result := NewTagSet(width)
	result.Insert(id)

	for _, parentID := range r.parents[id] {
		parentSet, err := r.computeAncestors(parentID, width, visiting)
		if err != nil {
			return TagSet{}, err
		}
		result.Union(parentSet)
	}

	delete(visiting, id)
	return result, nil
}

// AncestorsOf returns the precomputed ancestor-inclusive set for id. Returns
// an empty set if id was never registered or Precompute has not run.
func (r *Registry) AncestorsOf(id uint32) TagSet {
	set, ok := r.ancestry[id]
	if !ok {
		return NewTagSet(r.Width())
	}
	return set
}

// SetFromNames builds a TagSet from a list of tag names, unioning each
// name's ancestor set. Unknown names are silently skipped so data files can
// reference tags a trimmed registry doesn't carry.
func (r *Registry) SetFromNames(names []string) TagSet {
	set := NewTagSet(r.Width())
	for _, name := range names {
		id, ok := r.IDOf(name)
		if !ok {
			continue
		}
		set.Insert(id)
		set.Union(r.AncestorsOf(id))
	}
	return set
}

// SetFromIDs builds a TagSet from a list of tag ids, unioning each id's
// ancestor set.
func (r *Registry) SetFromIDs(ids []uint32) TagSet {
	set := NewTagSet(r.Width())
	for _, id := range ids {
		set.Insert(id)
		set.Union(r.AncestorsOf(id))
	}
	return set
}

// MustID returns the id for name, or panics. Intended for use with
// well-known fallback-registry names inside engine bootstrap code, never
// with user-supplied data.
func (r *Registry) MustID(name string) uint32 {
	id, ok := r.IDOf(name)
	if !ok {
		panic(fmt.Sprintf("tagging: unknown well-known tag %q", name))
	}
	return id
}
