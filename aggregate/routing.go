// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package aggregate

import "strings"

// isLocalStat reports whether key names a weapon/armor-local stat (one that
// applies only to its own item's finalized output, e.g. a weapon's physical
// damage range or a piece of armor's own defense budget) rather than a
// global pool contribution. By convention these keys end in ".local".
func isLocalStat(key string) bool {
	return strings.HasSuffix(key, ".local")
}

// routeKind classifies a stat key into the StatPool bucket it routes to
// by static key-prefix dispatch:
// "mod.inc."-prefixed keys are Increased, "mod.more."-prefixed keys are
// More, "speed."-prefixed keys (attack/cast speed bonuses are always
// expressed as a percentage increase) are Increased, the single key
// "crit.dmg" is Increased (critical damage bonus is additive-percentage,
// not a flat crit-damage-multiplier override), and everything else is Base.
func routeKind(key string) routeTo {
	switch {
	case strings.HasPrefix(key, "mod.inc."):
		return routeIncreased
	case strings.HasPrefix(key, "mod.more."):
		return routeMore
	case strings.HasPrefix(key, "speed."):
		return routeIncreased
	case key == "crit.dmg":
		return routeIncreased
	default:
		return routeBase
	}
}

type routeTo int

const (
	routeBase routeTo = iota
	routeIncreased
	routeMore
)

// statKeyFor strips the "mod.inc."/"mod.more." routing prefix from key so
// the pool stores contributions under the bare stat name (e.g.
// "mod.inc.dmg.fire" and "mod.more.dmg.fire" both resolve to "dmg.fire").
// Keys with no routing prefix (Base/speed/crit.dmg) are returned unchanged.
func statKeyFor(key string) string {
	switch {
	case strings.HasPrefix(key, "mod.inc."):
		return strings.TrimPrefix(key, "mod.inc.")
	case strings.HasPrefix(key, "mod.more."):
		return strings.TrimPrefix(key, "mod.more.")
	default:
		return key
	}
}
