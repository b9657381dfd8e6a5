// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

// Package engine is the calculator's small top-level surface: a thin set
// of free functions over calcpipe.Input/Output plus a caller-owned
// calccache.Calculator, so a host never has to reach into calcpipe or
// calccache directly for the common cases. It holds no package-level
// state of its own — every
// cache it touches is supplied by the caller, built via NewDefaultCache
// or calccache.New directly.
package engine

import (
	"github.com/leeeee/tli-bd-assistant/calccache"
	"github.com/leeeee/tli-bd-assistant/calcpipe"
	"github.com/leeeee/tli-bd-assistant/tagging"
)

// version is stamped at release time in the real build; this module has
// no build pipeline wiring a VCS tag in, so it carries a fixed value.
const version = "0.1.0"

// newEngine builds the one *calcpipe.Engine each free function in this
// package needs, backed by the fallback tag registry. A host
// that loaded a custom registry file should talk to calcpipe directly
// instead of this package's convenience functions.
func newEngine() *calcpipe.Engine {
	return calcpipe.New(tagging.Fallback())
}

// Calculate runs input through a fresh, single-shot engine instance with
// no caching across calls.
func Calculate(input calcpipe.Input) (calcpipe.Output, error) {
	return newEngine().Calculate(input)
}

// NewDefaultCache builds a calccache.Calculator over the fallback-registry
// engine with default capacities. It is a convenience constructor, not a
// shared singleton — each call returns an independent cache the caller
// owns.
func NewDefaultCache() *calccache.Calculator {
	return calccache.New(newEngine())
}

// CalculateCached consults and updates cache's result cache.
func CalculateCached(cache *calccache.Calculator, input calcpipe.Input) (calcpipe.Output, error) {
	return cache.Calculate(input)
}

// CalculateDiff computes base and preview via cache (so repeated previews
// against the same base loadout reuse the base's cached result) and
// returns the diff view between them.
func CalculateDiff(cache *calccache.Calculator, base, preview calcpipe.Input) (calccache.Diff, error) {
	return cache.CalculateDiff(base, preview)
}

// CalculateDiffUncached computes both sides with no memoization, for a
// one-off host-side diff that doesn't warrant standing up a cache.
func CalculateDiffUncached(base, preview calcpipe.Input) (calccache.Diff, error) {
	e := newEngine()
	baseOut, err := e.Calculate(base)
	if err != nil {
		return calccache.Diff{}, err
	}
	previewOut, err := e.Calculate(preview)
	if err != nil {
		return calccache.Diff{}, err
	}
	return calccache.BuildDiff(baseOut, previewOut), nil
}

// GetCacheStats reports cache's result-cache counters.
func GetCacheStats(cache *calccache.Calculator) calccache.CacheStats {
	return cache.GetStats()
}

// ClearCache empties cache.
func ClearCache(cache *calccache.Calculator) {
	cache.ClearCache()
}

// Version reports this engine's version string.
func Version() string {
	return version
}
