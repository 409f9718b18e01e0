// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connection and schema creation.

# Opening a Connection

Open maps the configured database type to its driver:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

Supported types are "sqlite" (modernc, pure Go) and "postgres" (lib/pq).

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and
indexes. The DDL is restricted to the portable subset both database types
accept: JSON-bearing columns (images, metadata, voters) are plain TEXT,
and booleans use the shared TRUE/FALSE literals.

# Tables

  - threat: the unit of record, including the serialized voters map and
    the version column backing optimistic-concurrency commits
  - observer: registered voter identities with last known position

# Versioning

threat.version starts at 1 and is incremented by every guarded commit:

	UPDATE threat SET ..., version = version + 1
	WHERE id = $1 AND version = $2

The store package owns that discipline; nothing else writes vote-derived
columns.
*/
package db
