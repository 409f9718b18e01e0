// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package alerts

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/safehaven/geofence"
	"github.com/danielhkuo/safehaven/models"
	"github.com/danielhkuo/safehaven/store"
)

// Dispatcher watches the threat feed and texts observers who are inside
// the geofence of a newly active threat. Each threat alerts each observer
// at most once.
type Dispatcher struct {
	db     *sql.DB
	gw     store.Gateway
	sender Sender
	radius float64
	maxAge time.Duration

	idx     *geofence.Index
	alerted map[string]bool
}

func New(db *sql.DB, gw store.Gateway, sender Sender, radiusMiles float64, locationMaxAge time.Duration) *Dispatcher {
	return &Dispatcher{
		db:      db,
		gw:      gw,
		sender:  sender,
		radius:  radiusMiles,
		maxAge:  locationMaxAge,
		idx:     geofence.NewIndex(),
		alerted: map[string]bool{},
	}
}

// Run consumes feed snapshots until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	ch, cancel := d.gw.Subscribe()
	defer cancel()

	slog.Info("alert dispatcher started", "radius_miles", d.radius)

	for {
		select {
		case <-ctx.Done():
			slog.Info("alert dispatcher stopped")
			return
		case snapshot, ok := <-ch:
			if !ok {
				return
			}
			if n, err := d.Dispatch(ctx, snapshot); err != nil {
				slog.Error("alert dispatch failed", "error", err)
			} else if n > 0 {
				slog.Info("alerts sent", "count", n)
			}
		}
	}
}

// Dispatch processes one snapshot and returns how many alerts went out.
// Exported so tests can drive snapshots directly.
func (d *Dispatcher) Dispatch(ctx context.Context, threats []models.Threat) (int, error) {
	fresh := d.freshThreats(threats)
	if len(fresh) == 0 {
		return 0, nil
	}

	// Spatial index over just the new threats: each observer lookup is one
	// bounding-box search instead of a scan of the whole snapshot.
	d.idx.Replace(fresh)

	observers, err := d.reachableObservers()
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, obs := range observers {
		for _, t := range d.idx.Search(*obs.Position, d.radius) {
			msg := alertMessage(t, *obs.Position)
			if err := d.sender.Send(ctx, obs.Phone, msg); err != nil {
				slog.Error("failed to send alert", "threat_id", t.ID, "error", err)
				continue
			}
			sent++
		}
	}

	return sent, nil
}

// freshThreats filters the snapshot down to alertable threats not yet seen
// and marks them as handled.
func (d *Dispatcher) freshThreats(threats []models.Threat) []models.Threat {
	var fresh []models.Threat
	for _, t := range threats {
		if !t.Active || t.Resolved || t.Camera == nil {
			continue
		}
		if d.alerted[t.ID] {
			continue
		}
		d.alerted[t.ID] = true
		fresh = append(fresh, t)
	}
	return fresh
}

// reachableObservers returns observers with a phone number and a position
// fresh enough to trust.
func (d *Dispatcher) reachableObservers() ([]models.Observer, error) {
	rows, err := d.db.Query(`
		SELECT token, name, phone, lat, lng, located_at
		FROM observer
		WHERE phone IS NOT NULL AND phone != ''
		  AND lat IS NOT NULL AND lng IS NOT NULL
		  AND located_at IS NOT NULL
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query observers: %w", err)
	}
	defer rows.Close()

	cutoff := time.Now().Add(-d.maxAge)

	var observers []models.Observer
	for rows.Next() {
		var obs models.Observer
		var lat, lng float64
		var locatedAt time.Time
		if err := rows.Scan(&obs.Token, &obs.Name, &obs.Phone, &lat, &lng, &locatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan observer: %w", err)
		}
		if locatedAt.Before(cutoff) {
			continue
		}
		obs.Position = &models.Position{Lat: lat, Lng: lng}
		obs.LocatedAt = &locatedAt
		observers = append(observers, obs)
	}

	return observers, rows.Err()
}

func alertMessage(t models.Threat, from models.Position) string {
	miles := geofence.Distance(from, t.Camera.Position)
	return fmt.Sprintf("SafeHaven alert: %s (severity %d/10) reported %.1f mi away near %s.",
		t.Explanation, t.Score, miles, t.Camera.Label)
}
