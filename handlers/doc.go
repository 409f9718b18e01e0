// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the SafeHaven API.

# Handler Types

Each handler is a struct with its dependencies injected via constructor:

  - ThreatHandler: Producer surface (report, update, end)
  - VotingHandler: Observer vote casting through the vote engine
  - NearbyHandler: Geofenced read surface
  - ObserverHandler: Observer registration and location updates

	threatHandler := handlers.NewThreatHandler(gateway, cfg)

# Producer Flow

Camera pipelines report and refresh threats:

	POST /threats          → Report (returns threat_id)
	PUT /threats/{id}      → Update (repeat sighting, merges producer fields)
	POST /threats/{id}/end → End (threat left the frame)

Producer updates never touch vote-derived fields; a guarded commit retries
when it races with the vote engine.

# Observer Flow

Observers register once and keep their location fresh:

	POST /observers/register → Register (returns observer_token)
	POST /observers/location → UpdateLocation
	GET /observers/me        → GetMe

Observer operations require the X-Observer-Token header.

# Voting

	POST /threats/{id}/votes → CastVote

Votes go through the engine's read-apply-commit cycle, which guarantees
one counted vote per observer under any interleaving. Contention that
outlasts the retry budget surfaces as 409.

# Read Surface

	GET /threats/nearby       → Nearby (threats within radius, my_vote annotated)
	GET /threats/nearby/count → Count
	GET /threats/{id}         → Get

Position comes from lat/lng query params, or from the observer's stored
location when it is younger than LocationMaxAge. No usable position means
no threats: geofencing fails closed.
*/
package handlers
