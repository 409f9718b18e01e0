// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package geofence decides which threats are relevant to an observer.

# Relevance

IsRelevant computes the great-circle distance between the observer and the
threat's camera anchor using the haversine formula on a spherical Earth
(mean radius 3958.8 miles) and compares it to the alert radius (default 5
miles, inclusive):

	if geofence.IsRelevant(&pos, threat, cfg.AlertRadiusMiles) { ... }

A missing observer or camera position is never relevant. Unknown locations
fail closed.

# Filtering

Nearby and ActiveCount reduce the full threat set to one observer's view.
Both are pure functions with no internal state, so they are recomputed on
every position update and every feed tick without drift:

	visible := geofence.Nearby(&pos, threats, radius)
	count := geofence.ActiveCount(&pos, threats, radius)

ActiveCount only counts threats that are both active (producer liveness)
and unresolved (not voted down by the crowd).

# Spatial Index

Index is an R-Tree over the live threat set for radius queries against
large sets. Replace swaps in the full set atomically on each feed tick;
Search prefilters with a bounding box and verifies candidates with the
exact haversine distance:

	ix := geofence.NewIndex()
	ix.Replace(threats)
	hits := ix.Search(pos, radius)
*/
package geofence
