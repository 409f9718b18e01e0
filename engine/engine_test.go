// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/safehaven/ledger"
	"github.com/danielhkuo/safehaven/models"
	"github.com/danielhkuo/safehaven/store"
)

func seedThreat(t *testing.T, gw store.Gateway) models.Threat {
	t.Helper()

	threat := models.Threat{
		ID:          "threat-1",
		Explanation: "Altercation near entrance",
		Score:       7,
		Camera: &models.CameraLocation{
			Position: models.Position{Lat: 40.0, Lng: -74.0},
			Label:    "North Gate Cam",
		},
		Active:    true,
		Voters:    map[string]string{},
		FirstSeen: time.Now(),
		LastSeen:  time.Now(),
	}
	if err := gw.InsertThreat(context.Background(), threat); err != nil {
		t.Fatalf("failed to seed threat: %v", err)
	}
	return threat
}

func TestCastVoteApplies(t *testing.T) {
	gw := store.NewMemStore()
	seedThreat(t, gw)
	eng := New(gw, Config{})

	res, err := eng.CastVote(context.Background(), models.VoteRequest{
		ThreatID: "threat-1", ObserverID: "alice", Kind: models.VoteConfirm,
	})
	if err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}
	if !res.Applied {
		t.Error("first vote should apply")
	}
	if res.Threat.Confirms != 1 || res.Threat.Score != 10 {
		t.Errorf("got confirms=%d score=%d, want 1/10", res.Threat.Confirms, res.Threat.Score)
	}

	// The committed state must match what the engine returned
	stored, err := gw.GetThreat(context.Background(), "threat-1")
	if err != nil {
		t.Fatalf("GetThreat() error = %v", err)
	}
	if stored.Threat.Confirms != 1 || stored.Version != 2 {
		t.Errorf("stored confirms=%d version=%d, want 1/2", stored.Threat.Confirms, stored.Version)
	}
}

func TestCastVoteNoOps(t *testing.T) {
	gw := store.NewMemStore()
	seedThreat(t, gw)
	eng := New(gw, Config{Policy: ledger.Policy{Quorum: 2, DenyRatio: 0.5}})
	ctx := context.Background()

	vote := func(who, kind string) Result {
		t.Helper()
		res, err := eng.CastVote(ctx, models.VoteRequest{ThreatID: "threat-1", ObserverID: who, Kind: kind})
		if err != nil {
			t.Fatalf("CastVote(%s, %s) error = %v", who, kind, err)
		}
		return res
	}

	vote("alice", models.VoteDeny)

	// Identical repeat is a no-op
	if res := vote("alice", models.VoteDeny); res.Applied {
		t.Error("repeat vote should be a no-op")
	}

	// Second deny hits quorum and resolves
	if res := vote("bob", models.VoteDeny); !res.Threat.Resolved {
		t.Error("2 denies at quorum 2 should resolve the threat")
	}

	// Resolved threat rejects everything, including switches
	if res := vote("alice", models.VoteConfirm); res.Applied {
		t.Error("vote on resolved threat should be a no-op")
	}

	stored, _ := gw.GetThreat(ctx, "threat-1")
	if stored.Threat.Confirms != 0 || stored.Threat.Denies != 2 {
		t.Errorf("resolved tally moved: confirms=%d denies=%d", stored.Threat.Confirms, stored.Threat.Denies)
	}
}

func TestCastVoteUnknownThreat(t *testing.T) {
	eng := New(store.NewMemStore(), Config{})

	_, err := eng.CastVote(context.Background(), models.VoteRequest{
		ThreatID: "no-such-threat", ObserverID: "alice", Kind: models.VoteConfirm,
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("error = %v, want store.ErrNotFound", err)
	}
}

func TestCastVoteInvalidRequest(t *testing.T) {
	eng := New(store.NewMemStore(), Config{})
	ctx := context.Background()

	cases := []models.VoteRequest{
		{ThreatID: "t", ObserverID: "alice", Kind: "maybe"},
		{ThreatID: "t", ObserverID: "", Kind: models.VoteConfirm},
		{ThreatID: "", ObserverID: "alice", Kind: models.VoteConfirm},
	}
	for _, req := range cases {
		if _, err := eng.CastVote(ctx, req); !errors.Is(err, ErrInvalidVote) {
			t.Errorf("CastVote(%+v) error = %v, want ErrInvalidVote", req, err)
		}
	}
}

// TestConcurrentVotesAllCommit verifies the lost-update guarantee: votes
// from many observers racing on the same threat all land, with the counter
// invariant intact at the end.
func TestConcurrentVotesAllCommit(t *testing.T) {
	gw := store.NewMemStore()
	seedThreat(t, gw)

	numVoters := 8
	eng := New(gw, Config{
		// Retry budget must cover the worst case of every rival winning once
		Policy:      ledger.Policy{Quorum: 100, DenyRatio: 0.5},
		MaxAttempts: numVoters + 1,
	})

	var applied atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < numVoters; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			kind := models.VoteConfirm
			if idx%2 == 0 {
				kind = models.VoteDeny
			}
			res, err := eng.CastVote(context.Background(), models.VoteRequest{
				ThreatID:   "threat-1",
				ObserverID: fmt.Sprintf("observer-%d", idx),
				Kind:       kind,
			})
			if err != nil {
				t.Errorf("voter %d: %v", idx, err)
				return
			}
			if res.Applied {
				applied.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if int(applied.Load()) != numVoters {
		t.Errorf("applied = %d, want %d (a vote was silently lost)", applied.Load(), numVoters)
	}

	stored, err := gw.GetThreat(context.Background(), "threat-1")
	if err != nil {
		t.Fatalf("GetThreat() error = %v", err)
	}
	total := stored.Threat.Confirms + stored.Threat.Denies
	if total != numVoters {
		t.Errorf("total votes = %d, want %d", total, numVoters)
	}
	if total != len(stored.Threat.Voters) {
		t.Errorf("counter invariant broken: total=%d voters=%d", total, len(stored.Threat.Voters))
	}
}

// conflictGateway forces the first n commits to fail with a version
// conflict, simulating rival writers.
type conflictGateway struct {
	store.Gateway
	remaining atomic.Int32
}

func (c *conflictGateway) CommitIfUnchanged(ctx context.Context, id string, expectedVersion int64, t models.Threat) error {
	if c.remaining.Add(-1) >= 0 {
		return store.ErrVersionConflict
	}
	return c.Gateway.CommitIfUnchanged(ctx, id, expectedVersion, t)
}

func TestCastVoteRetriesThroughConflicts(t *testing.T) {
	mem := store.NewMemStore()
	seedThreat(t, mem)

	gw := &conflictGateway{Gateway: mem}
	gw.remaining.Store(2) // fewer conflicts than the attempt budget

	eng := New(gw, Config{MaxAttempts: 3})
	res, err := eng.CastVote(context.Background(), models.VoteRequest{
		ThreatID: "threat-1", ObserverID: "alice", Kind: models.VoteConfirm,
	})
	if err != nil {
		t.Fatalf("CastVote() error = %v, want success on third attempt", err)
	}
	if !res.Applied {
		t.Error("vote should apply after retries")
	}
}

func TestCastVoteContentionExhausted(t *testing.T) {
	mem := store.NewMemStore()
	seedThreat(t, mem)

	gw := &conflictGateway{Gateway: mem}
	gw.remaining.Store(1000) // every commit conflicts

	eng := New(gw, Config{MaxAttempts: 3})
	_, err := eng.CastVote(context.Background(), models.VoteRequest{
		ThreatID: "threat-1", ObserverID: "alice", Kind: models.VoteConfirm,
	})
	if !errors.Is(err, ErrContention) {
		t.Errorf("error = %v, want ErrContention", err)
	}
}
