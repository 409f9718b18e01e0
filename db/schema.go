// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// Open connects to the configured database type. Both drivers are blank
// imported by main; Open only maps the type name.
func Open(databaseType, databaseURL string) (*sql.DB, error) {
	var driver string
	switch databaseType {
	case "postgres":
		driver = "postgres"
	case "sqlite":
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database type %q (want sqlite or postgres)", databaseType)
	}

	conn, err := sql.Open(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", databaseType, err)
	}
	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS. The SQL sticks to the
// portable subset both database types accept.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Threat records. Vote-derived columns (score, confirms, denies, voters,
-- resolved) are only ever written through guarded commits; version backs
-- the optimistic-concurrency discipline.
CREATE TABLE IF NOT EXISTS threat (
    id TEXT PRIMARY KEY,
    explanation TEXT NOT NULL DEFAULT '',
    score INTEGER NOT NULL DEFAULT 0 CHECK (score >= 0 AND score <= 10),
    camera_lat REAL,
    camera_lng REAL,
    camera_label TEXT,
    images TEXT NOT NULL DEFAULT '[]',
    metadata TEXT NOT NULL DEFAULT '{}',
    confirms INTEGER NOT NULL DEFAULT 0 CHECK (confirms >= 0),
    denies INTEGER NOT NULL DEFAULT 0 CHECK (denies >= 0),
    voters TEXT NOT NULL DEFAULT '{}',
    active BOOLEAN NOT NULL DEFAULT TRUE,
    resolved BOOLEAN NOT NULL DEFAULT FALSE,
    first_seen TIMESTAMP NOT NULL,
    last_seen TIMESTAMP NOT NULL,
    version INTEGER NOT NULL DEFAULT 1
);

CREATE INDEX IF NOT EXISTS idx_threat_active ON threat(active);
CREATE INDEX IF NOT EXISTS idx_threat_last_seen ON threat(last_seen);

-- Registered observers: the voter identity and alert recipient registry.
CREATE TABLE IF NOT EXISTS observer (
    token TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    phone TEXT,
    lat REAL,
    lng REAL,
    located_at TIMESTAMP,
    ip_hash TEXT,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_observer_located_at ON observer(located_at);
`
