// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/safehaven/cliparse"
	"github.com/danielhkuo/safehaven/engine"
	"github.com/danielhkuo/safehaven/handlers"
	"github.com/danielhkuo/safehaven/middleware"
	"github.com/danielhkuo/safehaven/store"
)

func NewRouter(db *sql.DB, gw store.Gateway, eng *engine.Engine, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	threatHandler := handlers.NewThreatHandler(gw, cfg)
	votingHandler := handlers.NewVotingHandler(db, eng)
	nearbyHandler := handlers.NewNearbyHandler(db, gw, cfg)
	observerHandler := handlers.NewObserverHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Producer surface (camera pipelines)
	mux.HandleFunc("POST /threats", middleware.WithLogging(threatHandler.Report))
	mux.HandleFunc("PUT /threats/{id}", middleware.WithLogging(threatHandler.Update))
	mux.HandleFunc("POST /threats/{id}/end", middleware.WithLogging(threatHandler.End))

	// Read surface. The nearby routes are registered before /threats/{id}
	// only for readability; the mux picks the most specific pattern.
	mux.HandleFunc("GET /threats/nearby", middleware.WithLogging(nearbyHandler.Nearby))
	mux.HandleFunc("GET /threats/nearby/count", middleware.WithLogging(nearbyHandler.Count))
	mux.HandleFunc("GET /threats/{id}", middleware.WithLogging(nearbyHandler.Get))

	// Voting (requires X-Observer-Token)
	mux.HandleFunc("POST /threats/{id}/votes", middleware.WithLogging(votingHandler.CastVote))

	// Observer registry
	mux.HandleFunc("POST /observers/register", middleware.WithLogging(observerHandler.Register))
	mux.HandleFunc("POST /observers/location", middleware.WithLogging(observerHandler.UpdateLocation))
	mux.HandleFunc("GET /observers/me", middleware.WithLogging(observerHandler.GetMe))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("safehaven API v1"))
	})

	return mux
}
