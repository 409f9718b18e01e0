// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger owns the per-threat vote record and resolution policy.

# Vote Transitions

ApplyVote is a pure function from (threat, observer, kind) to the next
threat value:

	next, changed := ledger.ApplyVote(threat, observerToken, models.VoteConfirm, policy)

Rules, in order:

 1. A resolved threat rejects all votes (terminal, frozen).
 2. An identical repeat vote by the same observer is a no-op.
 3. A switched vote retracts the old counter before incrementing the new
    one, keeping confirms+denies == len(voters).
 4. Counters are floored at zero if a stored record is inconsistent; this
    is logged as a data-integrity warning, never self-healed further.

ApplyVote performs no I/O. The caller reads the threat at a version,
applies the vote, and commits the result with an optimistic write; on a
version conflict the whole cycle is retried (see the engine package).

# Resolution Policy

Policy.Resolve derives the severity score and resolved flag from the tally:

	score    = round(confirms/total * 10)   // half away from zero
	resolved = total >= Quorum && denies/total >= DenyRatio

With zero votes the previous score is kept, so a producer's initial
estimate stands until the crowd weighs in. Quorum and DenyRatio are
configuration (defaults 2 and 0.5); historical deployments have also run
10 and 0.75.
*/
package ledger
