// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/safehaven/auth"
	"github.com/danielhkuo/safehaven/cliparse"
	"github.com/danielhkuo/safehaven/middleware"
	"github.com/danielhkuo/safehaven/models"
)

type ObserverHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewObserverHandler(db *sql.DB, cfg cliparse.Config) *ObserverHandler {
	return &ObserverHandler{db: db, cfg: cfg}
}

// Register handles POST /observers/register
// Registers an observer and returns the token used on all later requests.
func (h *ObserverHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterObserverRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	token, err := auth.GenerateObserverToken()
	if err != nil {
		slog.Error("failed to generate observer token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register observer")
		return
	}

	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.ObserverTokenSalt)

	_, err = h.db.Exec(`
		INSERT INTO observer (token, name, phone, lat, lng, located_at, ip_hash, created_at)
		VALUES ($1, $2, $3, NULL, NULL, NULL, $4, $5)
	`, token, req.Name, req.Phone, ipHash, time.Now())

	if err != nil {
		slog.Error("failed to insert observer", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to register observer")
		return
	}

	slog.Info("observer registered", "name", req.Name)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterObserverResponse{
		ObserverToken: token,
	})
}

// UpdateLocation handles POST /observers/location
// Observers report their position so nearby queries and alerts can reach them.
func (h *ObserverHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	token, ok := observerToken(w, r)
	if !ok {
		return
	}

	var req models.UpdateLocationRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "lat/lng out of range")
		return
	}

	res, err := h.db.Exec(`
		UPDATE observer SET lat = $1, lng = $2, located_at = $3 WHERE token = $4
	`, req.Lat, req.Lng, time.Now(), token)

	if err != nil {
		slog.Error("failed to update observer location", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update location")
		return
	}

	affected, _ := res.RowsAffected()
	if affected == 0 {
		middleware.ErrorResponse(w, http.StatusNotFound, "Observer not registered")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "updated"})
}

// GetMe handles GET /observers/me
// Returns the calling observer's registration info.
func (h *ObserverHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	token, ok := observerToken(w, r)
	if !ok {
		return
	}

	obs, err := LookupObserver(h.db, token)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Observer not registered")
		return
	}
	if err != nil {
		slog.Error("failed to query observer", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, obs)
}

// LookupObserver fetches an observer row by token. Returns sql.ErrNoRows
// when the token is unknown.
func LookupObserver(db *sql.DB, token string) (*models.Observer, error) {
	var obs models.Observer
	var lat, lng sql.NullFloat64
	var locatedAt sql.NullTime
	var phone sql.NullString

	err := db.QueryRow(`
		SELECT token, name, phone, lat, lng, located_at, created_at
		FROM observer
		WHERE token = $1
	`, token).Scan(&obs.Token, &obs.Name, &phone, &lat, &lng, &locatedAt, &obs.CreatedAt)
	if err != nil {
		return nil, err
	}

	obs.Phone = phone.String
	if lat.Valid && lng.Valid {
		obs.Position = &models.Position{Lat: lat.Float64, Lng: lng.Float64}
	}
	if locatedAt.Valid {
		t := locatedAt.Time
		obs.LocatedAt = &t
	}

	return &obs, nil
}

// observerToken extracts and shape-checks the X-Observer-Token header,
// writing the error response itself when the header is unusable.
func observerToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := r.Header.Get("X-Observer-Token")
	if token == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "X-Observer-Token header required")
		return "", false
	}
	if err := auth.ValidateObserverToken(token); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid observer token")
		return "", false
	}
	return token, true
}
