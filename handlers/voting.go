// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/safehaven/engine"
	"github.com/danielhkuo/safehaven/middleware"
	"github.com/danielhkuo/safehaven/models"
	"github.com/danielhkuo/safehaven/store"
)

type VotingHandler struct {
	db  *sql.DB
	eng *engine.Engine
}

func NewVotingHandler(db *sql.DB, eng *engine.Engine) *VotingHandler {
	return &VotingHandler{db: db, eng: eng}
}

// CastVote handles POST /threats/{id}/votes
// A registered observer confirms or denies a threat. The vote engine
// guarantees one counted vote per observer regardless of races.
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	threatID := r.PathValue("id")
	if threatID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "threat_id is required")
		return
	}

	token, ok := observerToken(w, r)
	if !ok {
		return
	}

	// Observer must be registered
	if _, err := LookupObserver(h.db, token); err != nil {
		if err == sql.ErrNoRows {
			middleware.ErrorResponse(w, http.StatusUnauthorized, "Observer not registered")
			return
		}
		slog.Error("failed to query observer", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !models.ValidVoteKind(req.Vote) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "vote must be 'confirm' or 'deny'")
		return
	}

	result, err := h.eng.CastVote(r.Context(), models.VoteRequest{
		ThreatID:   threatID,
		ObserverID: token,
		Kind:       req.Vote,
	})

	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Threat not found")
		return
	case errors.Is(err, engine.ErrInvalidVote):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid vote")
		return
	case errors.Is(err, engine.ErrContention):
		middleware.ErrorResponse(w, http.StatusConflict, "Vote contention, retry")
		return
	default:
		slog.Error("failed to cast vote", "error", err, "threat_id", threatID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to cast vote")
		return
	}

	message := "vote recorded"
	if !result.Applied {
		if result.Threat.Resolved {
			message = "threat already resolved"
		} else {
			message = "vote unchanged"
		}
	}

	middleware.JSONResponse(w, http.StatusOK, models.CastVoteResponse{
		Applied: result.Applied,
		Message: message,
		Threat:  result.Threat,
	})
}
