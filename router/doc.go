// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the SafeHaven API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, gateway, eng, cfg)

# Endpoints

Health:

	GET /health

Producer surface (camera pipelines):

	POST /threats          - Report a new threat
	PUT  /threats/{id}     - Refresh an existing threat
	POST /threats/{id}/end - Mark the threat gone from camera

Read surface (public, position required):

	GET /threats/nearby       - Threats within the geofence radius
	GET /threats/nearby/count - Active count only
	GET /threats/{id}         - Single threat

Voting (requires X-Observer-Token):

	POST /threats/{id}/votes - Confirm or deny a threat

Observer registry:

	POST /observers/register - Register, returns observer_token
	POST /observers/location - Report position
	GET  /observers/me       - Registration info

# Handler Initialization

The router creates handler instances with dependency injection:

	threatHandler := handlers.NewThreatHandler(gateway, cfg)
	votingHandler := handlers.NewVotingHandler(db, eng)
	nearbyHandler := handlers.NewNearbyHandler(db, gateway, cfg)
	observerHandler := handlers.NewObserverHandler(db, cfg)

Threat state flows through the store gateway; observer rows are plain SQL.
*/
package router
