// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"

	"github.com/danielhkuo/safehaven/models"
)

var (
	// ErrNotFound means the threat id is unknown. Terminal; never retried.
	ErrNotFound = errors.New("threat not found")

	// ErrVersionConflict means another writer committed since the caller's
	// read. Recoverable: retry the whole read-apply-commit cycle.
	ErrVersionConflict = errors.New("threat version conflict")
)

// Versioned pairs a threat snapshot with the version it was read at.
type Versioned struct {
	Threat  models.Threat
	Version int64
}

// Gateway is the threat store contract the vote engine consumes. Reads
// return the latest committed value; writes are optimistic and succeed only
// against an unchanged version; every successful write ticks the change
// feed with the full current set.
type Gateway interface {
	// GetThreat returns the latest committed threat and its version.
	GetThreat(ctx context.Context, id string) (Versioned, error)

	// ListThreats returns the full current set, newest activity first.
	ListThreats(ctx context.Context) ([]models.Threat, error)

	// InsertThreat stores a new producer-created threat at version 1.
	InsertThreat(ctx context.Context, t models.Threat) error

	// CommitIfUnchanged writes t only if the stored version still equals
	// expectedVersion. Returns ErrVersionConflict if a concurrent writer
	// won, ErrNotFound if the id is unknown.
	CommitIfUnchanged(ctx context.Context, id string, expectedVersion int64, t models.Threat) error

	// Subscribe returns a channel receiving the full threat set after
	// every committed change, plus a cancel func. The channel is buffered
	// and latest-wins: a slow consumer sees the newest set, not a backlog.
	Subscribe() (<-chan []models.Threat, func())
}
