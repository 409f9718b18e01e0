// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine drives one vote through the store atomically.

# Vote Cycle

CastVote executes read -> ledger.ApplyVote -> CommitIfUnchanged as a unit:

	eng := engine.New(gateway, engine.Config{Policy: policy})
	res, err := eng.CastVote(ctx, models.VoteRequest{
		ThreatID:   id,
		ObserverID: token,
		Kind:       models.VoteConfirm,
	})

Two votes for the same threat can interleave between read and commit; the
loser's guarded commit fails with a version conflict and the cycle retries
from a fresh read, so no vote is ever silently dropped. Votes on different
threats never contend.

# Error Handling

  - No-op votes (resolved threat, identical repeat): Result.Applied=false,
    nil error. Nothing to do, not a failure.
  - Unknown threat: store.ErrNotFound, terminal, never retried.
  - Version conflict or store timeout: retried immediately up to
    MaxAttempts (default 3); exhaustion surfaces ErrContention so the UI
    can prompt a manual retry.
  - Malformed request: ErrInvalidVote.

Each attempt runs under its own deadline (default 3s), so a hung store
round trip degrades into a retried timeout rather than a stuck request.
The engine starts no goroutines; it is called synchronously by the vote
handler.
*/
package engine
