// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calccache

import (
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/leeeee/tli-bd-assistant/calcerr"
	"github.com/leeeee/tli-bd-assistant/calcmodel"
	"github.com/leeeee/tli-bd-assistant/calcpipe"
)

const defaultResultCapacity = 128

// CacheStats reports one LRU's hit/miss counters. LastMissID is a fresh UUID stamped on the most recent
// miss, so a host logging cache behavior across calls can correlate "this
// entry got computed" log lines with the entry that eventually evicts it,
// without the cache having to expose its internal keys.
type CacheStats struct {
	Capacity   int
	Size       int
	Hits       uint64
	Misses     uint64
	HitRate    float64
	LastMissID string
}

func statsFrom(capacity, size int, hits, misses uint64, lastMissID string) CacheStats {
	rate := 0.0
	if hits+misses > 0 {
		rate = float64(hits) / float64(hits+misses)
	}
	return CacheStats{Capacity: capacity, Size: size, Hits: hits, Misses: misses, HitRate: rate, LastMissID: lastMissID}
}

// ExtendedCacheStats reports both LRUs at once.
type ExtendedCacheStats struct {
	ResultCache  CacheStats
	ContextCache CacheStats
}

// Calculator is a dual-LRU calculator cache: a result cache of
// finalized Outputs and a context cache of PreparedContexts, so a host
// doing hover-preview can reuse the expensive prepare-phase aggregation across
// many candidate targets/previews. It is NOT internally synchronized
// — the expected deployment is one Calculator per logical worker;
// a multi-threaded host must wrap it with its own exclusive-access
// discipline.
type Calculator struct {
	engine *calcpipe.Engine

	resultCache     *lru.Cache[CacheKey, calcpipe.Output]
	resultCapacity  int
	contextCache    *lru.Cache[CacheKey, *calcpipe.PreparedContext]
	contextCapacity int

	resultHits, resultMisses   uint64
	contextHits, contextMisses uint64
	lastResultMissID, lastContextMissID string
}

// Option configures a Calculator at construction time.
type Option func(*config)

type config struct {
	resultCapacity  int
	contextCapacity int
}

// WithResultCapacity overrides the result cache's capacity (default 128).
func WithResultCapacity(n int) Option {
	return func(c *config) { c.resultCapacity = n }
}

// WithContextCapacity overrides the prepared-context cache's capacity
// (default: half of the result capacity).
func WithContextCapacity(n int) Option {
	return func(c *config) { c.contextCapacity = n }
}

// New builds a Calculator bound to engine. With no options the result
// cache holds 128 entries and the context cache holds half that (64):
// prepared contexts are heavier per entry, and a host hover-previewing
// reuses far fewer of them than it does finalized results.
func New(engine *calcpipe.Engine, opts ...Option) *Calculator {
	cfg := config{resultCapacity: defaultResultCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.resultCapacity <= 0 {
		cfg.resultCapacity = defaultResultCapacity
	}
	if cfg.contextCapacity <= 0 {
		cfg.contextCapacity = cfg.resultCapacity / 2
	}
	if cfg.contextCapacity <= 0 {
		cfg.contextCapacity = 1
	}

	resultCache, _ := lru.New[CacheKey, calcpipe.Output](cfg.resultCapacity)
	contextCache, _ := lru.New[CacheKey, *calcpipe.PreparedContext](cfg.contextCapacity)

	return &Calculator{
		engine:          engine,
		resultCache:     resultCache,
		resultCapacity:  cfg.resultCapacity,
		contextCache:    contextCache,
		contextCapacity: cfg.contextCapacity,
	}
}

// Calculate runs input through the result cache: a hit returns the cached
// Output without touching the engine; a miss runs the full pipeline and
// caches the result.
func (c *Calculator) Calculate(input calcpipe.Input) (calcpipe.Output, error) {
	key := Fingerprint(input)
	if cached, ok := c.resultCache.Get(key); ok {
		c.resultHits++
		return cached, nil
	}

	c.resultMisses++
	c.lastResultMissID = uuid.NewString()
	out, err := c.engine.Calculate(input)
	if err != nil {
		return calcpipe.Output{}, err
	}
	c.resultCache.Add(key, out)
	return out, nil
}

// GetOrPrepareContext runs the prepare stages against input, or returns a clone of a
// previously prepared context for the same fingerprint. Cloning (rather
// than handing back the cached pointer) means one cache entry can be
// finalized against several different targets/previews without those
// calls' target-dependent fields clobbering each other (see
// PreparedContext.Clone).
func (c *Calculator) GetOrPrepareContext(input calcpipe.Input) (*calcpipe.PreparedContext, error) {
	key := Fingerprint(input)
	if cached, ok := c.contextCache.Get(key); ok {
		c.contextHits++
		return cached.Clone(), nil
	}

	c.contextMisses++
	c.lastContextMissID = uuid.NewString()
	ctx, err := c.engine.Prepare(input)
	if err != nil {
		return nil, err
	}
	c.contextCache.Add(key, ctx)
	return ctx.Clone(), nil
}

// CalculateFromPrepared finalizes ctx against target without touching
// either cache, letting a caller that already holds a PreparedContext (via
// GetOrPrepareContext) run it against several candidate targets cheaply.
func (c *Calculator) CalculateFromPrepared(ctx *calcpipe.PreparedContext, target calcmodel.TargetConfig) (calcpipe.Output, error) {
	return c.engine.Finalize(ctx, target)
}

// ClearCache empties both LRUs.
func (c *Calculator) ClearCache() {
	c.resultCache.Purge()
	c.contextCache.Purge()
}

// GetStats reports the result cache's counters.
func (c *Calculator) GetStats() CacheStats {
	return statsFrom(c.resultCapacity, c.resultCache.Len(), c.resultHits, c.resultMisses, c.lastResultMissID)
}

// GetExtendedStats reports both caches' counters.
func (c *Calculator) GetExtendedStats() ExtendedCacheStats {
	return ExtendedCacheStats{
		ResultCache:  statsFrom(c.resultCapacity, c.resultCache.Len(), c.resultHits, c.resultMisses, c.lastResultMissID),
		ContextCache: statsFrom(c.contextCapacity, c.contextCache.Len(), c.contextHits, c.contextMisses, c.lastContextMissID),
	}
}

// Warmup precomputes every input in inputs, populating the result cache
// ahead of time so the first real lookup is already a hit.
func (c *Calculator) Warmup(inputs []calcpipe.Input) error {
	for _, input := range inputs {
		if _, err := c.Calculate(input); err != nil {
			return calcerr.Wrap(err, "calccache: warmup failed")
		}
	}
	return nil
}
