// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package sweeper

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/safehaven/store"
)

// DefaultInterval is how often the sweep runs when the caller doesn't say.
const DefaultInterval = time.Minute

// Sweeper deactivates threats whose producer went quiet. A threat that has
// not been re-sighted within the cooldown is no longer on camera; it stays
// in the store for history but drops out of nearby feeds and counts.
type Sweeper struct {
	gw       store.Gateway
	cooldown time.Duration
	interval time.Duration
}

func New(gw store.Gateway, cooldown, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{gw: gw, cooldown: cooldown, interval: interval}
}

// Run sweeps on a ticker until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("sweeper started", "cooldown", s.cooldown, "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("sweeper stopped")
			return
		case <-ticker.C:
			if n, err := s.Sweep(ctx); err != nil {
				slog.Error("sweep failed", "error", err)
			} else if n > 0 {
				slog.Info("sweep deactivated stale threats", "count", n)
			}
		}
	}
}

// Sweep runs one pass and returns how many threats it deactivated.
// Exported so tests and manual tooling can trigger it directly.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	threats, err := s.gw.ListThreats(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-s.cooldown)
	deactivated := 0

	for _, t := range threats {
		if !t.Active || !t.LastSeen.Before(cutoff) {
			continue
		}

		cur, err := s.gw.GetThreat(ctx, t.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return deactivated, err
		}
		// Re-check on the fresh read: a sighting may have landed since List
		if !cur.Threat.Active || !cur.Threat.LastSeen.Before(cutoff) {
			continue
		}

		next := cur.Threat.Clone()
		next.Active = false

		err = s.gw.CommitIfUnchanged(ctx, t.ID, cur.Version, next)
		if err != nil {
			// A lost version race means someone else just touched the
			// threat; the next sweep will reconsider it.
			if errors.Is(err, store.ErrVersionConflict) || errors.Is(err, store.ErrNotFound) {
				continue
			}
			return deactivated, err
		}

		slog.Info("threat went cold", "threat_id", t.ID, "last_seen", cur.Threat.LastSeen)
		deactivated++
	}

	return deactivated, nil
}
