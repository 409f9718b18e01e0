// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/safehaven/ledger"
	"github.com/danielhkuo/safehaven/models"
	"github.com/danielhkuo/safehaven/store"
)

const (
	// DefaultMaxAttempts bounds the read-apply-commit retries for one vote.
	// Contention windows are microseconds, so retries are immediate.
	DefaultMaxAttempts = 3

	// DefaultAttemptTimeout bounds one store round trip.
	DefaultAttemptTimeout = 3 * time.Second
)

var (
	// ErrInvalidVote means the request itself is malformed (unknown kind,
	// missing observer or threat id). Never retried.
	ErrInvalidVote = errors.New("invalid vote request")

	// ErrContention means the retry budget ran out against concurrent
	// writers or store timeouts. Transient; the caller may try again.
	ErrContention = errors.New("vote not committed under contention")
)

// Config tunes one engine instance.
type Config struct {
	Policy         ledger.Policy
	MaxAttempts    int
	AttemptTimeout time.Duration
}

// Result reports the outcome of a committed (or no-op) vote.
type Result struct {
	// Applied is false when the vote was a legal no-op: the threat is
	// already resolved, or the observer repeated an identical vote.
	Applied bool

	// Threat is the state after the vote (or the unchanged state for a
	// no-op).
	Threat models.Threat
}

// Engine serializes vote mutations per threat via the store's optimistic
// commits. It has no goroutines of its own; CastVote runs synchronously in
// the caller.
type Engine struct {
	gw  store.Gateway
	cfg Config
}

// New wires an engine to a store gateway, filling zero config fields with
// defaults.
func New(gw store.Gateway, cfg Config) *Engine {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = DefaultAttemptTimeout
	}
	if cfg.Policy.Quorum <= 0 {
		cfg.Policy = ledger.DefaultPolicy()
	}
	return &Engine{gw: gw, cfg: cfg}
}

// CastVote runs the full read-apply-commit cycle for one vote request.
// Version conflicts and store timeouts are retried up to MaxAttempts; an
// unknown threat is terminal. A no-op vote returns Applied=false, nil.
func (e *Engine) CastVote(ctx context.Context, req models.VoteRequest) (Result, error) {
	if req.ThreatID == "" || req.ObserverID == "" || !models.ValidVoteKind(req.Kind) {
		return Result{}, ErrInvalidVote
	}

	var lastErr error
	for attempt := 1; attempt <= e.cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, e.cfg.AttemptTimeout)
		res, err := e.tryVote(attemptCtx, req)
		cancel()

		if err == nil {
			return res, nil
		}
		if errors.Is(err, store.ErrVersionConflict) || errors.Is(err, context.DeadlineExceeded) {
			slog.Warn("vote commit lost the race, retrying",
				"threat_id", req.ThreatID,
				"attempt", attempt,
				"error", err,
			)
			lastErr = err
			continue
		}
		// Not found, canceled, or a real store failure: terminal for this
		// vote attempt.
		return Result{}, err
	}

	return Result{}, fmt.Errorf("%w after %d attempts: %v", ErrContention, e.cfg.MaxAttempts, lastErr)
}

func (e *Engine) tryVote(ctx context.Context, req models.VoteRequest) (Result, error) {
	cur, err := e.gw.GetThreat(ctx, req.ThreatID)
	if err != nil {
		return Result{}, err
	}

	next, changed := ledger.ApplyVote(cur.Threat, req.ObserverID, req.Kind, e.cfg.Policy)
	if !changed {
		return Result{Applied: false, Threat: cur.Threat}, nil
	}

	if err := e.gw.CommitIfUnchanged(ctx, req.ThreatID, cur.Version, next); err != nil {
		return Result{}, err
	}

	if next.Resolved && !cur.Threat.Resolved {
		slog.Info("threat resolved by community vote",
			"threat_id", next.ID,
			"confirms", next.Confirms,
			"denies", next.Denies,
		)
	}
	return Result{Applied: true, Threat: next}, nil
}
