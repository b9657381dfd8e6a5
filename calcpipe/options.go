// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calcpipe

import (
	"io"
	"time"

	"github.com/leeeee/tli-bd-assistant/tagging"
)

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithRegistryReader loads the engine's tag registry from r instead of the
// fallback registry, using tagging.LoadOrFallback so a malformed source
// never prevents the engine from starting.
func WithRegistryReader(r io.Reader) Option {
	return func(e *Engine) {
		if r == nil {
			return
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return
		}
		e.registry = tagging.LoadOrFallback(data)
	}
}

// clockFunc is injectable so tests can freeze "now"; the engine itself has
// no time-based behavior to drive, since calcpipe never schedules anything
//.
type clockFunc func() time.Time

// WithClock overrides the engine's clock hook. Present purely so a future
// time-bucketed telemetry addition has a seam to test against; calcpipe
// does not currently read it.
func WithClock(fn clockFunc) Option {
	return func(e *Engine) {
		e.clock = fn
	}
}
