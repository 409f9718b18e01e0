// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package geofence

import (
	"math"

	"github.com/danielhkuo/safehaven/models"
)

const (
	// EarthRadiusMiles is the mean spherical Earth radius.
	EarthRadiusMiles = 3958.8

	// DefaultRadiusMiles is the alert radius used when none is configured.
	DefaultRadiusMiles = 5.0
)

// Distance returns the great-circle distance between a and b in miles,
// computed with the haversine formula on a spherical Earth.
func Distance(a, b models.Position) float64 {
	phi1 := a.Lat * math.Pi / 180
	phi2 := b.Lat * math.Pi / 180
	dPhi := (b.Lat - a.Lat) * math.Pi / 180
	dLambda := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)

	return EarthRadiusMiles * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// IsRelevant reports whether t's camera lies within radiusMiles of observer.
// An unknown observer or camera position is never relevant (fail-closed).
func IsRelevant(observer *models.Position, t models.Threat, radiusMiles float64) bool {
	if observer == nil || t.Camera == nil {
		return false
	}
	return Distance(*observer, t.Camera.Position) <= radiusMiles
}

// Nearby filters threats down to the observer's relevant subset. It is a pure
// function of its inputs and is recomputed on every position or feed change.
func Nearby(observer *models.Position, threats []models.Threat, radiusMiles float64) []models.Threat {
	out := make([]models.Threat, 0, len(threats))
	for _, t := range threats {
		if IsRelevant(observer, t, radiusMiles) {
			out = append(out, t)
		}
	}
	return out
}

// ActiveCount returns the number of relevant threats that are still active
// and not resolved by the crowd.
func ActiveCount(observer *models.Position, threats []models.Threat, radiusMiles float64) int {
	n := 0
	for _, t := range threats {
		if t.Active && !t.Resolved && IsRelevant(observer, t, radiusMiles) {
			n++
		}
	}
	return n
}
