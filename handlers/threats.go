// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/safehaven/auth"
	"github.com/danielhkuo/safehaven/cliparse"
	"github.com/danielhkuo/safehaven/middleware"
	"github.com/danielhkuo/safehaven/models"
	"github.com/danielhkuo/safehaven/store"
)

// updateAttempts bounds producer read-modify-commit retries under vote
// engine contention.
const updateAttempts = 3

type ThreatHandler struct {
	gw  store.Gateway
	cfg cliparse.Config
}

func NewThreatHandler(gw store.Gateway, cfg cliparse.Config) *ThreatHandler {
	return &ThreatHandler{gw: gw, cfg: cfg}
}

// Report handles POST /threats
// Producers (camera pipelines) report a newly detected threat.
func (h *ThreatHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req models.ReportThreatRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	if req.Explanation == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "explanation is required")
		return
	}
	if req.Score < 0 || req.Score > 10 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "score must be between 0 and 10")
		return
	}

	threatID := auth.NewThreatID()
	now := time.Now()

	threat := models.Threat{
		ID:          threatID,
		Explanation: req.Explanation,
		Score:       req.Score,
		Camera:      req.Camera,
		Images:      req.Images,
		Metadata:    req.Metadata,
		Voters:      map[string]string{},
		Active:      true,
		FirstSeen:   now,
		LastSeen:    now,
	}

	if err := h.gw.InsertThreat(r.Context(), threat); err != nil {
		slog.Error("failed to insert threat", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to report threat")
		return
	}

	slog.Info("threat reported", "threat_id", threatID, "score", req.Score)

	middleware.JSONResponse(w, http.StatusCreated, models.ReportThreatResponse{
		ThreatID: threatID,
	})
}

// Update handles PUT /threats/{id}
// Producers refresh an existing threat with a new sighting. Vote-derived
// fields are left untouched so a concurrent vote is never clobbered.
func (h *ThreatHandler) Update(w http.ResponseWriter, r *http.Request) {
	threatID := r.PathValue("id")
	if threatID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "threat_id is required")
		return
	}

	var req models.UpdateThreatRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Score < 0 || req.Score > 10 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "score must be between 0 and 10")
		return
	}

	err := h.commitUpdate(r, threatID, func(t *models.Threat) {
		// A repeat sighting keeps the worst score seen so far; once voters
		// have weighed in, the vote-derived score wins.
		if len(t.Voters) == 0 && req.Score > t.Score {
			t.Score = req.Score
		}
		if req.Explanation != "" {
			t.Explanation = req.Explanation
		}
		t.Images = append(t.Images, req.Images...)
		if req.Metadata != nil {
			if t.Metadata == nil {
				t.Metadata = map[string]string{}
			}
			for k, v := range req.Metadata {
				t.Metadata[k] = v
			}
		}
		t.Active = true
		t.LastSeen = time.Now()
	})
	if err != nil {
		h.writeCommitError(w, err, "Failed to update threat")
		return
	}

	slog.Info("threat updated", "threat_id", threatID)

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "updated"})
}

// End handles POST /threats/{id}/end
// Producers signal the threat is no longer visible on camera.
func (h *ThreatHandler) End(w http.ResponseWriter, r *http.Request) {
	threatID := r.PathValue("id")
	if threatID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "threat_id is required")
		return
	}

	err := h.commitUpdate(r, threatID, func(t *models.Threat) {
		t.Active = false
		t.LastSeen = time.Now()
	})
	if err != nil {
		h.writeCommitError(w, err, "Failed to end threat")
		return
	}

	slog.Info("threat ended", "threat_id", threatID)

	middleware.JSONResponse(w, http.StatusOK, map[string]string{"status": "ended"})
}

// commitUpdate runs a guarded read-modify-commit cycle, retrying when a
// concurrent vote won the version race.
func (h *ThreatHandler) commitUpdate(r *http.Request, threatID string, mutate func(*models.Threat)) error {
	var err error
	for attempt := 1; attempt <= updateAttempts; attempt++ {
		var cur store.Versioned
		cur, err = h.gw.GetThreat(r.Context(), threatID)
		if err != nil {
			return err
		}

		next := cur.Threat.Clone()
		mutate(&next)

		err = h.gw.CommitIfUnchanged(r.Context(), threatID, cur.Version, next)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return err
		}
		slog.Warn("producer commit conflicted, retrying", "threat_id", threatID, "attempt", attempt)
	}
	return err
}

func (h *ThreatHandler) writeCommitError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Threat not found")
	case errors.Is(err, store.ErrVersionConflict):
		middleware.ErrorResponse(w, http.StatusConflict, "Threat is being updated, retry")
	default:
		slog.Error("threat commit failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, fallback)
	}
}
