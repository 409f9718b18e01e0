// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/safehaven/engine"
	"github.com/danielhkuo/safehaven/ledger"
	"github.com/danielhkuo/safehaven/models"
	"github.com/danielhkuo/safehaven/store"
	"github.com/danielhkuo/safehaven/testutil"
)

// TestFullThreatWorkflow tests the complete end-to-end workflow:
// 1. Observers register and report locations
// 2. Producer reports a threat
// 3. Observer sees it on the nearby feed
// 4. Observer confirms, score snaps to the confirm ratio
// 5. Producer update merges without touching votes
// 6. Second observer denies, deny ratio resolves the threat
// 7. Resolution is terminal
// 8. Producer ends the threat
func TestFullThreatWorkflow(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	gw := store.NewSQLStore(conn)
	cfg := testutil.GetTestConfig()

	eng := engine.New(gw, engine.Config{
		Policy: ledger.Policy{Quorum: cfg.VoteQuorum, DenyRatio: cfg.DenyRatio},
	})

	threatHandler := NewThreatHandler(gw, cfg)
	votingHandler := NewVotingHandler(conn, eng)
	nearbyHandler := NewNearbyHandler(conn, gw, cfg)
	observerHandler := NewObserverHandler(conn, cfg)

	// Step 1: Register two observers
	registerObserver := func(name string) string {
		t.Helper()
		req := testutil.MakeRequest("POST", "/observers/register",
			models.RegisterObserverRequest{Name: name, Phone: "+15551230000"}, nil)
		w := httptest.NewRecorder()
		observerHandler.Register(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("Step 1 - Register %s failed: %d - %s", name, w.Code, w.Body.String())
		}
		var resp models.RegisterObserverResponse
		testutil.AssertJSON(t, w, &resp)
		return resp.ObserverToken
	}
	alice := registerObserver("Alice")
	bob := registerObserver("Bob")

	for _, token := range []string{alice, bob} {
		req := testutil.MakeRequest("POST", "/observers/location",
			models.UpdateLocationRequest{Lat: 30.62, Lng: -96.34},
			map[string]string{"X-Observer-Token": token})
		w := httptest.NewRecorder()
		observerHandler.UpdateLocation(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Step 1 - Location update failed: %d - %s", w.Code, w.Body.String())
		}
	}

	// Step 2: Producer reports a threat near the observers
	reportReq := models.ReportThreatRequest{
		Score:       7,
		Explanation: "Armed individual at north entrance",
		Images:      []string{"frame-001.jpg"},
		Camera: &models.CameraLocation{
			Position: models.Position{Lat: 30.6201, Lng: -96.3401},
			Label:    "North Gate",
		},
	}
	req := testutil.MakeRequest("POST", "/threats", reportReq, nil)
	w := httptest.NewRecorder()
	threatHandler.Report(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 2 - Report failed: %d - %s", w.Code, w.Body.String())
	}
	var reportResp models.ReportThreatResponse
	testutil.AssertJSON(t, w, &reportResp)
	threatID := reportResp.ThreatID
	t.Logf("Step 2 - Reported threat: %s", threatID)

	// Step 3: Alice sees it on the nearby feed via her stored location
	req = testutil.MakeRequest("GET", "/threats/nearby", nil,
		map[string]string{"X-Observer-Token": alice})
	w = httptest.NewRecorder()
	nearbyHandler.Nearby(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 3 - Nearby failed: %d - %s", w.Code, w.Body.String())
	}
	var nearby models.NearbyResponse
	testutil.AssertJSON(t, w, &nearby)
	if len(nearby.Threats) != 1 || nearby.Threats[0].ID != threatID {
		t.Fatalf("Step 3 - Expected the reported threat, got %+v", nearby.Threats)
	}
	if nearby.ActiveCount != 1 {
		t.Errorf("Step 3 - ActiveCount = %d, want 1", nearby.ActiveCount)
	}

	// Step 4: Alice confirms
	castVote := func(token, vote string) models.CastVoteResponse {
		t.Helper()
		req := testutil.MakeRequest("POST", "/threats/"+threatID+"/votes",
			models.CastVoteRequest{Vote: vote},
			map[string]string{"X-Observer-Token": token})
		req.SetPathValue("id", threatID)
		w := httptest.NewRecorder()
		votingHandler.CastVote(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("Vote failed: %d - %s", w.Code, w.Body.String())
		}
		var resp models.CastVoteResponse
		testutil.AssertJSON(t, w, &resp)
		return resp
	}

	voteResp := castVote(alice, "confirm")
	if !voteResp.Applied {
		t.Fatal("Step 4 - Confirm not applied")
	}
	if voteResp.Threat.Score != 10 {
		t.Errorf("Step 4 - Score = %d, want 10 after lone confirm", voteResp.Threat.Score)
	}
	if voteResp.Threat.Resolved {
		t.Error("Step 4 - One vote below quorum must not resolve")
	}

	// Step 5: Producer repeat sighting merges without touching votes
	req = testutil.MakeRequest("PUT", "/threats/"+threatID,
		models.UpdateThreatRequest{Score: 9, Images: []string{"frame-002.jpg"}}, nil)
	req.SetPathValue("id", threatID)
	w = httptest.NewRecorder()
	threatHandler.Update(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 5 - Update failed: %d - %s", w.Code, w.Body.String())
	}

	req = testutil.MakeRequest("GET", "/threats/"+threatID, nil,
		map[string]string{"X-Observer-Token": alice})
	req.SetPathValue("id", threatID)
	w = httptest.NewRecorder()
	nearbyHandler.Get(w, req)
	var view models.ThreatView
	testutil.AssertJSON(t, w, &view)
	if view.Confirms != 1 {
		t.Errorf("Step 5 - Confirms = %d, producer update touched votes", view.Confirms)
	}
	if view.Score != 10 {
		t.Errorf("Step 5 - Score = %d, vote-derived score should survive update", view.Score)
	}
	if view.MyVote != models.VoteConfirm {
		t.Errorf("Step 5 - MyVote = %q, want confirm", view.MyVote)
	}
	if len(view.Images) != 2 {
		t.Errorf("Step 5 - Images = %v, want both frames", view.Images)
	}

	// Step 6: Bob denies. Two votes, half denies, quorum met - resolved.
	voteResp = castVote(bob, "deny")
	if !voteResp.Applied {
		t.Fatal("Step 6 - Deny not applied")
	}
	if !voteResp.Threat.Resolved {
		t.Fatal("Step 6 - Threat should resolve at quorum with 50% denies")
	}
	if voteResp.Threat.Score != 5 {
		t.Errorf("Step 6 - Score = %d, want 5 (1 confirm of 2 votes)", voteResp.Threat.Score)
	}

	// Step 7: Resolution is terminal
	voteResp = castVote(alice, "deny")
	if voteResp.Applied {
		t.Error("Step 7 - Vote on resolved threat applied")
	}

	// Step 8: Producer ends the threat
	req = testutil.MakeRequest("POST", "/threats/"+threatID+"/end", nil, nil)
	req.SetPathValue("id", threatID)
	w = httptest.NewRecorder()
	threatHandler.End(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 8 - End failed: %d - %s", w.Code, w.Body.String())
	}

	req = testutil.MakeRequest("GET", "/threats/nearby/count?lat=30.62&lng=-96.34", nil, nil)
	w = httptest.NewRecorder()
	nearbyHandler.Count(w, req)
	var countResp map[string]int
	testutil.AssertJSON(t, w, &countResp)
	if countResp["active_count"] != 0 {
		t.Errorf("Step 8 - active_count = %d, want 0 after end", countResp["active_count"])
	}

	t.Log("Full threat workflow completed")
}
