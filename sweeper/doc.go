// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package sweeper retires threats whose producer stopped reporting.

A camera pipeline refreshes a threat on every sighting. When a threat's
last_seen falls behind the configured cooldown, the sweeper flips it
inactive through a guarded commit, so it cannot clobber a concurrent
vote or a re-sighting that lands during the sweep.

	s := sweeper.New(gateway, cfg.ThreatCooldown, 0)
	go s.Run(ctx)

Deactivation is reversible: a later producer update marks the threat
active again. Vote state is untouched either way.
*/
package sweeper
