// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/danielhkuo/safehaven/auth"
	"github.com/danielhkuo/safehaven/cliparse"
	"github.com/danielhkuo/safehaven/geofence"
	"github.com/danielhkuo/safehaven/middleware"
	"github.com/danielhkuo/safehaven/models"
	"github.com/danielhkuo/safehaven/store"
)

type NearbyHandler struct {
	db  *sql.DB
	gw  store.Gateway
	cfg cliparse.Config
}

func NewNearbyHandler(db *sql.DB, gw store.Gateway, cfg cliparse.Config) *NearbyHandler {
	return &NearbyHandler{db: db, gw: gw, cfg: cfg}
}

// Nearby handles GET /threats/nearby?lat=..&lng=..&radius=..
// Returns active threats within the geofence radius of the given position,
// annotated with the caller's vote when an observer token is supplied.
// Without an explicit position, falls back to the observer's last reported
// location if it is fresh enough.
func (h *NearbyHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	pos, token, ok := h.resolvePosition(w, r)
	if !ok {
		return
	}

	radius := h.cfg.AlertRadiusMiles
	if v := r.URL.Query().Get("radius"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "radius must be a positive number")
			return
		}
		radius = parsed
	}

	threats, err := h.gw.ListThreats(r.Context())
	if err != nil {
		slog.Error("failed to list threats", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	views := []models.ThreatView{}
	activeCount := 0
	for _, t := range geofence.Nearby(pos, threats, radius) {
		// Swept threats are gone from the listing. Resolved ones stay
		// until the sweeper retires them so voters see the final outcome;
		// only unresolved ones count as active.
		if !t.Active {
			continue
		}
		if !t.Resolved {
			activeCount++
		}
		view := models.ThreatView{
			Threat:        t,
			DistanceMiles: geofence.Distance(*pos, t.Camera.Position),
		}
		if token != "" {
			view.MyVote = t.Voters[token]
		}
		views = append(views, view)
	}

	middleware.JSONResponse(w, http.StatusOK, models.NearbyResponse{
		Threats:     views,
		ActiveCount: activeCount,
	})
}

// Count handles GET /threats/nearby/count
// Lightweight poll target: just the number of active threats in range.
func (h *NearbyHandler) Count(w http.ResponseWriter, r *http.Request) {
	pos, _, ok := h.resolvePosition(w, r)
	if !ok {
		return
	}

	threats, err := h.gw.ListThreats(r.Context())
	if err != nil {
		slog.Error("failed to list threats", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	count := geofence.ActiveCount(pos, threats, h.cfg.AlertRadiusMiles)

	middleware.JSONResponse(w, http.StatusOK, map[string]int{"active_count": count})
}

// Get handles GET /threats/{id}
func (h *NearbyHandler) Get(w http.ResponseWriter, r *http.Request) {
	threatID := r.PathValue("id")
	if threatID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "threat_id is required")
		return
	}

	cur, err := h.gw.GetThreat(r.Context(), threatID)
	if errors.Is(err, store.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Threat not found")
		return
	}
	if err != nil {
		slog.Error("failed to get threat", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	view := models.ThreatView{Threat: cur.Threat}
	if token := r.Header.Get("X-Observer-Token"); token != "" {
		if auth.ValidateObserverToken(token) == nil {
			view.MyVote = cur.Threat.Voters[token]
		}
	}

	middleware.JSONResponse(w, http.StatusOK, view)
}

// resolvePosition determines the caller position: explicit lat/lng query
// params win, otherwise the observer's stored location is used when it is
// younger than LocationMaxAge. Writes the error response when no usable
// position exists (geofencing fails closed).
func (h *NearbyHandler) resolvePosition(w http.ResponseWriter, r *http.Request) (*models.Position, string, bool) {
	token := r.Header.Get("X-Observer-Token")
	if token != "" && auth.ValidateObserverToken(token) != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid observer token")
		return nil, "", false
	}

	latStr := r.URL.Query().Get("lat")
	lngStr := r.URL.Query().Get("lng")
	if latStr != "" || lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			middleware.ErrorResponse(w, http.StatusBadRequest, "lat and lng must be valid coordinates")
			return nil, "", false
		}
		return &models.Position{Lat: lat, Lng: lng}, token, true
	}

	if token == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "lat and lng required (or an observer token with a reported location)")
		return nil, "", false
	}

	obs, err := LookupObserver(h.db, token)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Observer not registered")
		return nil, "", false
	}
	if err != nil {
		slog.Error("failed to query observer", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return nil, "", false
	}

	if obs.Position == nil || obs.LocatedAt == nil ||
		time.Since(*obs.LocatedAt) > h.cfg.LocationMaxAge {
		middleware.ErrorResponse(w, http.StatusBadRequest, "No fresh location on file; supply lat and lng")
		return nil, "", false
	}

	return obs.Position, token, true
}
