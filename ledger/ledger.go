// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import (
	"log/slog"

	"github.com/danielhkuo/safehaven/models"
)

// ApplyVote produces the next threat state for one observer's vote. It is a
// pure state transition: the input threat is never mutated, and no I/O
// happens here. The second return value is false when the vote is a no-op
// (resolved threat, identical repeat vote, or unknown vote kind); callers
// must commit the returned threat atomically against the version they read.
func ApplyVote(t models.Threat, observerID, kind string, p Policy) (models.Threat, bool) {
	if t.Resolved {
		// Terminal state: vote-derived fields are frozen.
		return t, false
	}
	if !models.ValidVoteKind(kind) || observerID == "" {
		return t, false
	}

	prev, voted := t.Voters[observerID]
	if voted && prev == kind {
		// Idempotent re-vote.
		return t, false
	}

	next := t.Clone()
	if next.Voters == nil {
		next.Voters = make(map[string]string, 1)
	}

	// A switch retracts the earlier vote before counting the new one, so it
	// is a ±1 shift on each counter rather than a plain increment.
	if voted {
		switch prev {
		case models.VoteConfirm:
			next.Confirms--
		case models.VoteDeny:
			next.Denies--
		}
	}

	// Floor at zero rather than propagate a corrupted record. Surfaced as a
	// data-integrity warning, not silently masked.
	if next.Confirms < 0 || next.Denies < 0 {
		slog.Warn("threat counters inconsistent with voter ledger",
			"threat_id", next.ID,
			"confirms", next.Confirms,
			"denies", next.Denies,
			"voters", len(next.Voters),
		)
		next.Confirms = max(next.Confirms, 0)
		next.Denies = max(next.Denies, 0)
	}

	switch kind {
	case models.VoteConfirm:
		next.Confirms++
	case models.VoteDeny:
		next.Denies++
	}
	next.Voters[observerID] = kind

	res := p.Resolve(next.Confirms, next.Denies, next.Score)
	next.Score = res.Score
	next.Resolved = res.Resolved

	return next, true
}
