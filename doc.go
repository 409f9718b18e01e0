// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the SafeHaven API server.

SafeHaven is a community threat verification service: producers report
threats seen near cameras, nearby observers confirm or deny them, and a
deny quorum resolves a threat as a false alarm.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=threats.db OBSERVER_TOKEN_SALT=... go run main.go

Or with flags:

	go run main.go -p 3318 -d threats.db -token-salt ...

# Configuration

Required settings:

  - DATABASE_URL (-d): sqlite file path or PostgreSQL connection string
  - OBSERVER_TOKEN_SALT (-token-salt): Secret for observer IP hashing

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): "sqlite" (default) or "postgres"
  - ALERT_RADIUS_MILES (-radius): Geofence radius for nearby queries and SMS alerts (default: 5.0)
  - VOTE_QUORUM (-quorum): Minimum total votes before a threat may resolve (default: 2)
  - DENY_RATIO (-deny-ratio): Deny share required to resolve (default: 0.5)
  - THREAT_COOLDOWN (-cooldown): Idle time before a threat is deactivated (default: 5m)
  - LOCATION_MAX_AGE (-location-max-age): How long a stored observer position stays usable (default: 10m)
  - SMS_GATEWAY_URL / SMS_GATEWAY_KEY: Textbelt-style SMS gateway; logged-only when unset

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (threats, observers, voting, nearby)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Domain and request/response types
  - ledger: Pure vote transition and resolution policy
  - engine: Read-apply-commit vote cycle with contention retries
  - store: Threat gateway (memory and SQL) with guarded commits and a change feed
  - geofence: Haversine filtering and the R-tree camera index
  - sweeper: Cooldown-based deactivation of idle threats
  - alerts: SMS dispatch driven by the store change feed
  - auth: Token generation and validation
  - db: Connection setup and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
