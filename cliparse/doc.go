// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Database connection string (required)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - ObserverTokenSalt: Secret for IP hashing (required)
  - AlertRadiusMiles: Geofence radius for nearby queries and alerts (default: 5)
  - VoteQuorum: Minimum votes before a threat can resolve (default: 2)
  - DenyRatio: Deny fraction required to resolve (default: 0.5)
  - ThreatCooldown: Idle time before a threat goes inactive (default: 5m)
  - LocationMaxAge: Observer position staleness cutoff (default: 10m)
  - SMSGatewayURL / SMSGatewayKey: Outbound SMS gateway (optional)

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	-token-salt       Observer token salt
	-radius           Alert radius in miles
	-quorum           Vote quorum
	-deny-ratio       Deny ratio
	-cooldown         Threat cooldown
	-location-max-age Observer position staleness cutoff

# Environment Variables

Flags fall back to environment variables:

	PORT                → -p
	DATABASE_URL        → -d
	DATABASE_TYPE       → -t
	OBSERVER_TOKEN_SALT → -token-salt
	ALERT_RADIUS_MILES  → -radius
	VOTE_QUORUM         → -quorum
	DENY_RATIO          → -deny-ratio
	THREAT_COOLDOWN     → -cooldown
	LOCATION_MAX_AGE    → -location-max-age
	SMS_GATEWAY_URL     (env only)
	SMS_GATEWAY_KEY     (env only)

CLI flags take precedence over environment variables.

# Validation

ParseFlags returns an error if required values are missing or tuning
values are out of range:

  - DATABASE_URL must be provided
  - OBSERVER_TOKEN_SALT must be provided
  - AlertRadiusMiles must be positive
  - VoteQuorum must be at least 1
  - DenyRatio must be in (0, 1]

# Example

	// In main.go
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	// ...
	mux := router.NewRouter(conn, cfg)
*/
package cliparse
