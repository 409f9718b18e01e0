// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package geofence

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/danielhkuo/safehaven/models"
)

// milesNorth returns a position exactly d miles due north of p. Along a
// meridian the haversine distance reduces to R * dPhi, so the constructed
// point is d miles away up to floating-point error.
func milesNorth(p models.Position, d float64) models.Position {
	return models.Position{
		Lat: p.Lat + (d/EarthRadiusMiles)*(180/math.Pi),
		Lng: p.Lng,
	}
}

// milesEast returns a position approximately d miles due east of p. Along a
// parallel the haversine distance is R * cos(lat) * dLambda for small
// offsets, accurate to well under a foot at these scales.
func milesEast(p models.Position, d float64) models.Position {
	return models.Position{
		Lat: p.Lat,
		Lng: p.Lng + (d/(EarthRadiusMiles*math.Cos(p.Lat*math.Pi/180)))*(180/math.Pi),
	}
}

func threatAt(id string, pos models.Position) models.Threat {
	return models.Threat{
		ID:     id,
		Camera: &models.CameraLocation{Position: pos, Label: "Test Cam"},
		Active: true,
	}
}

func TestDistanceKnownPoints(t *testing.T) {
	// LA city hall to Pasadena city hall, roughly 8.5 miles
	la := models.Position{Lat: 34.0537, Lng: -118.2428}
	pasadena := models.Position{Lat: 34.1478, Lng: -118.1445}

	d := Distance(la, pasadena)
	assert.InDelta(t, 8.5, d, 0.5)

	// Symmetry and zero distance
	assert.Equal(t, Distance(la, pasadena), Distance(pasadena, la))
	assert.InDelta(t, 0.0, Distance(la, la), 1e-9)
}

func TestIsRelevantDistanceBoundary(t *testing.T) {
	observer := models.Position{Lat: 40.7128, Lng: -74.0060}

	onBoundary := threatAt("t1", milesNorth(observer, 5.0))
	justOutside := threatAt("t2", milesNorth(observer, 5.000001))

	assert.True(t, IsRelevant(&observer, onBoundary, 5.0), "exactly 5.0 miles is in range")
	assert.False(t, IsRelevant(&observer, justOutside, 5.0), "5.000001 miles is out of range")
}

func TestIsRelevantFailsClosed(t *testing.T) {
	observer := models.Position{Lat: 40.0, Lng: -74.0}

	noCamera := models.Threat{ID: "t1", Active: true}
	assert.False(t, IsRelevant(&observer, noCamera, 5.0), "threat without camera position")

	withCamera := threatAt("t2", observer)
	assert.False(t, IsRelevant(nil, withCamera, 5.0), "unknown observer position")
	assert.False(t, IsRelevant(nil, noCamera, 5.0), "both positions unknown")
}

func TestNearby(t *testing.T) {
	observer := models.Position{Lat: 40.0, Lng: -74.0}

	threats := []models.Threat{
		threatAt("near", milesNorth(observer, 1.0)),
		threatAt("edge", milesNorth(observer, 4.9)),
		threatAt("far", milesNorth(observer, 20.0)),
		{ID: "nowhere", Active: true}, // no camera
	}

	got := Nearby(&observer, threats, 5.0)
	ids := make([]string, len(got))
	for i, th := range got {
		ids[i] = th.ID
	}
	assert.Equal(t, []string{"near", "edge"}, ids)

	assert.Empty(t, Nearby(nil, threats, 5.0), "unknown observer sees nothing")
}

func TestActiveCount(t *testing.T) {
	observer := models.Position{Lat: 40.0, Lng: -74.0}

	active := threatAt("active", milesNorth(observer, 1.0))

	resolved := threatAt("resolved", milesNorth(observer, 1.5))
	resolved.Resolved = true

	inactive := threatAt("inactive", milesNorth(observer, 2.0))
	inactive.Active = false

	far := threatAt("far", milesNorth(observer, 50.0))

	threats := []models.Threat{active, resolved, inactive, far}
	assert.Equal(t, 1, ActiveCount(&observer, threats, 5.0))
	assert.Equal(t, 0, ActiveCount(nil, threats, 5.0))
}
