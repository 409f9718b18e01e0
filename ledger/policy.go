// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ledger

import "math"

// Default thresholds. Both are tunable; the values have drifted between
// deployments, so nothing outside config should assume them.
const (
	DefaultQuorum    = 2
	DefaultDenyRatio = 0.5
)

// Policy holds the auto-resolution thresholds.
type Policy struct {
	// Quorum is the minimum total vote count before a threat may resolve.
	Quorum int

	// DenyRatio is the deny share (denies/total) required to resolve.
	DenyRatio float64
}

// DefaultPolicy returns the shipped thresholds.
func DefaultPolicy() Policy {
	return Policy{Quorum: DefaultQuorum, DenyRatio: DefaultDenyRatio}
}

// Resolution is the outcome of applying the policy to a tally.
type Resolution struct {
	Score    int
	Resolved bool
}

// Resolve computes the severity score and resolved flag for a tally.
// With no votes the previous score stands (the producer's initial estimate).
// Score is round-half-away-from-zero on confirms/total*10, giving 0-10.
// A threat resolves only once quorum is met and a deny supermajority
// (per DenyRatio) exists; a lone vote or a sub-quorum split never resolves.
func (p Policy) Resolve(confirms, denies, prevScore int) Resolution {
	total := confirms + denies
	if total <= 0 {
		return Resolution{Score: prevScore, Resolved: false}
	}

	score := int(math.Round(float64(confirms) / float64(total) * 10))
	resolved := total >= p.Quorum && float64(denies)/float64(total) >= p.DenyRatio

	return Resolution{Score: score, Resolved: resolved}
}
