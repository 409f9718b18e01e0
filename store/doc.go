// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the threat store gateway: versioned reads, optimistic
commits, and the change feed that drives geofence recomputation.

# Gateway Contract

The vote engine needs exactly three guarantees:

  - GetThreat returns the latest committed value, never a stale cache.
  - CommitIfUnchanged succeeds only against the version the caller read,
    returning ErrVersionConflict when a concurrent writer won the race.
  - Every successful write publishes the full current set to subscribers.

Two implementations:

	gw := store.NewMemStore()        // reference, in-memory
	gw := store.NewSQLStore(dbConn)  // postgres or sqlite

# Optimistic Concurrency

The SQL store guards every commit with the row version:

	UPDATE threat SET ..., version = version + 1
	WHERE id = $1 AND version = $2

Zero rows affected means either the threat vanished (ErrNotFound) or a
newer version exists (ErrVersionConflict); the engine retries the whole
read-apply-commit cycle on conflict. Votes on different threats touch
different rows and never contend.

# Change Feed

Feed is an in-process broadcast hub. Subscription channels are buffered
with capacity one and publishing is latest-wins: a slow subscriber always
receives the newest full set and never blocks a commit. The alerts
dispatcher and the nearby index are its consumers.

	ch, cancel := gw.Subscribe()
	defer cancel()
	for threats := range ch { ... }
*/
package store
