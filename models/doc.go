// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - ReportThreatRequest: producer-side threat creation
  - UpdateThreatRequest: producer-side re-detection merge
  - RegisterObserverRequest: name, phone
  - UpdateLocationRequest: lat, lng
  - CastVoteRequest: vote ("confirm" or "deny")

# Response Types

Types for JSON responses:

  - ReportThreatResponse: threat_id
  - RegisterObserverResponse: observer_token
  - CastVoteResponse: applied, message, threat
  - NearbyResponse: threats, active_count
  - ErrorResponse: error, message

# Domain Types

Internal data structures:

  - Position: WGS84 coordinate
  - CameraLocation: position plus a display label
  - Threat: the unit of record, including the per-observer voters map
  - ThreatView: a threat annotated with the caller's vote and distance
  - Observer: registered voter identity with last known position
  - VoteRequest: one ephemeral vote submission

The Voters map and observer phone numbers are never serialized to JSON.

# Invariants

A Threat maintains Confirms+Denies == len(Voters) at all times, and
Resolved only ever transitions false to true. Both are enforced by the
ledger package, which is the only code that mutates vote-derived fields.

# Constants

Vote kinds:

	VoteConfirm = "confirm"
	VoteDeny    = "deny"
*/
package models
