// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielhkuo/safehaven/auth"
	"github.com/danielhkuo/safehaven/cliparse"
	"github.com/danielhkuo/safehaven/db"
	"github.com/danielhkuo/safehaven/models"
	"github.com/danielhkuo/safehaven/store"
)

// SetupTestDB creates a fresh sqlite database with the full schema.
// Each test gets its own file under t.TempDir so tests never share state.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "safehaven_test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:              3318,
		DatabaseURL:       "file:test.db",
		DatabaseType:      "sqlite",
		ObserverTokenSalt: "test-token-salt",
		AlertRadiusMiles:  5.0,
		VoteQuorum:        2,
		DenyRatio:         0.5,
		ThreatCooldown:    5 * time.Minute,
		LocationMaxAge:    10 * time.Minute,
	}
}

// CreateTestObserver inserts an observer row and returns its token.
// Pass hasPosition=false for an observer with no known location.
func CreateTestObserver(t *testing.T, conn *sql.DB, name string, lat, lng float64, hasPosition bool) string {
	t.Helper()

	token, err := auth.GenerateObserverToken()
	if err != nil {
		t.Fatalf("Failed to generate observer token: %v", err)
	}

	var latV, lngV, locatedAt interface{}
	if hasPosition {
		latV, lngV = lat, lng
		locatedAt = time.Now()
	}

	_, err = conn.Exec(`
		INSERT INTO observer (token, name, phone, lat, lng, located_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, token, name, "+15550000000", latV, lngV, locatedAt, time.Now())
	if err != nil {
		t.Fatalf("Failed to create test observer: %v", err)
	}

	return token
}

// CreateTestThreat inserts a threat through the gateway and returns its ID.
func CreateTestThreat(t *testing.T, gw store.Gateway, lat, lng float64, score int) string {
	t.Helper()

	id := auth.NewThreatID()
	now := time.Now()
	threat := models.Threat{
		ID:          id,
		Explanation: "Test threat",
		Score:       score,
		Camera: &models.CameraLocation{
			Position: models.Position{Lat: lat, Lng: lng},
			Label:    "Test Cam",
		},
		Active:    true,
		Voters:    map[string]string{},
		FirstSeen: now,
		LastSeen:  now,
	}
	if err := gw.InsertThreat(context.Background(), threat); err != nil {
		t.Fatalf("Failed to create test threat: %v", err)
	}

	return id
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
