// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/danielhkuo/safehaven/models"
)

// SQLStore implements Gateway on database/sql. It runs against both
// supported database types (postgres and sqlite). Optimistic concurrency
// rides on the threat row's version column: a commit is an UPDATE guarded
// by the version the caller read, so a lost update is impossible.
type SQLStore struct {
	db   *sql.DB
	feed *Feed
}

// NewSQLStore wraps an open database connection.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, feed: NewFeed()}
}

const threatColumns = `id, explanation, score, camera_lat, camera_lng, camera_label,
	       images, metadata, confirms, denies, voters,
	       active, resolved, first_seen, last_seen, version`

func (s *SQLStore) GetThreat(ctx context.Context, id string) (Versioned, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+threatColumns+`
		FROM threat WHERE id = $1
	`, id)

	v, err := scanThreat(row)
	if err == sql.ErrNoRows {
		return Versioned{}, ErrNotFound
	}
	if err != nil {
		return Versioned{}, fmt.Errorf("failed to read threat: %w", err)
	}
	return v, nil
}

func (s *SQLStore) ListThreats(ctx context.Context) ([]models.Threat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+threatColumns+`
		FROM threat
		ORDER BY last_seen DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list threats: %w", err)
	}
	defer rows.Close()

	var threats []models.Threat
	for rows.Next() {
		v, err := scanThreat(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan threat: %w", err)
		}
		threats = append(threats, v.Threat)
	}
	return threats, rows.Err()
}

func (s *SQLStore) InsertThreat(ctx context.Context, t models.Threat) error {
	images, metadata, voters, err := marshalThreatJSON(t)
	if err != nil {
		return err
	}

	var camLat, camLng any
	var camLabel any
	if t.Camera != nil {
		camLat, camLng, camLabel = t.Camera.Lat, t.Camera.Lng, t.Camera.Label
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO threat (`+threatColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 1)
	`, t.ID, t.Explanation, t.Score, camLat, camLng, camLabel,
		images, metadata, t.Confirms, t.Denies, voters,
		t.Active, t.Resolved, t.FirstSeen, t.LastSeen)
	if err != nil {
		return fmt.Errorf("failed to insert threat: %w", err)
	}

	s.publish(ctx)
	return nil
}

func (s *SQLStore) CommitIfUnchanged(ctx context.Context, id string, expectedVersion int64, t models.Threat) error {
	images, metadata, voters, err := marshalThreatJSON(t)
	if err != nil {
		return err
	}

	var camLat, camLng any
	var camLabel any
	if t.Camera != nil {
		camLat, camLng, camLabel = t.Camera.Lat, t.Camera.Lng, t.Camera.Label
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE threat
		SET explanation = $1, score = $2,
		    camera_lat = $3, camera_lng = $4, camera_label = $5,
		    images = $6, metadata = $7,
		    confirms = $8, denies = $9, voters = $10,
		    active = $11, resolved = $12, last_seen = $13,
		    version = version + 1
		WHERE id = $14 AND version = $15
	`, t.Explanation, t.Score, camLat, camLng, camLabel,
		images, metadata, t.Confirms, t.Denies, voters,
		t.Active, t.Resolved, t.LastSeen, id, expectedVersion)
	if err != nil {
		return fmt.Errorf("failed to commit threat: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read commit result: %w", err)
	}
	if affected == 0 {
		// Guard failed: either the row is gone or another writer won.
		var current int64
		err := s.db.QueryRowContext(ctx, `SELECT version FROM threat WHERE id = $1`, id).Scan(&current)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to inspect commit conflict: %w", err)
		}
		return ErrVersionConflict
	}

	s.publish(ctx)
	return nil
}

func (s *SQLStore) Subscribe() (<-chan []models.Threat, func()) {
	return s.feed.Subscribe()
}

// publish pushes the full current set to feed subscribers after a commit.
func (s *SQLStore) publish(ctx context.Context) {
	threats, err := s.ListThreats(ctx)
	if err != nil {
		slog.Error("failed to publish threat feed", "error", err)
		return
	}
	s.feed.Publish(threats)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanThreat(row rowScanner) (Versioned, error) {
	var (
		v        Versioned
		camLat   sql.NullFloat64
		camLng   sql.NullFloat64
		camLabel sql.NullString
		images   []byte
		metadata []byte
		voters   []byte
	)

	err := row.Scan(
		&v.Threat.ID, &v.Threat.Explanation, &v.Threat.Score,
		&camLat, &camLng, &camLabel,
		&images, &metadata, &v.Threat.Confirms, &v.Threat.Denies, &voters,
		&v.Threat.Active, &v.Threat.Resolved,
		&v.Threat.FirstSeen, &v.Threat.LastSeen, &v.Version,
	)
	if err != nil {
		return Versioned{}, err
	}

	if camLat.Valid && camLng.Valid {
		v.Threat.Camera = &models.CameraLocation{
			Position: models.Position{Lat: camLat.Float64, Lng: camLng.Float64},
			Label:    camLabel.String,
		}
	}

	if len(images) > 0 {
		if err := json.Unmarshal(images, &v.Threat.Images); err != nil {
			return Versioned{}, fmt.Errorf("malformed images column: %w", err)
		}
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &v.Threat.Metadata); err != nil {
			return Versioned{}, fmt.Errorf("malformed metadata column: %w", err)
		}
	}
	if len(voters) > 0 {
		if err := json.Unmarshal(voters, &v.Threat.Voters); err != nil {
			return Versioned{}, fmt.Errorf("malformed voters column: %w", err)
		}
	}
	if v.Threat.Voters == nil {
		v.Threat.Voters = map[string]string{}
	}

	return v, nil
}

func marshalThreatJSON(t models.Threat) (images, metadata, voters []byte, err error) {
	if t.Images == nil {
		t.Images = []string{}
	}
	if t.Metadata == nil {
		t.Metadata = map[string]string{}
	}
	if t.Voters == nil {
		t.Voters = map[string]string{}
	}

	if images, err = json.Marshal(t.Images); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal images: %w", err)
	}
	if metadata, err = json.Marshal(t.Metadata); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if voters, err = json.Marshal(t.Voters); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal voters: %w", err)
	}
	return images, metadata, voters, nil
}
