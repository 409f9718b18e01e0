// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/danielhkuo/safehaven/models"
)

// MemStore is the in-memory reference implementation of Gateway. It backs
// tests and single-node deployments; the SQL store is the durable one.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]Versioned
	feed    *Feed
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		records: make(map[string]Versioned),
		feed:    NewFeed(),
	}
}

func (m *MemStore) GetThreat(ctx context.Context, id string) (Versioned, error) {
	if err := ctx.Err(); err != nil {
		return Versioned{}, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return Versioned{}, ErrNotFound
	}
	return Versioned{Threat: rec.Threat.Clone(), Version: rec.Version}, nil
}

func (m *MemStore) ListThreats(ctx context.Context) ([]models.Threat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked(), nil
}

func (m *MemStore) InsertThreat(ctx context.Context, t models.Threat) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.records[t.ID] = Versioned{Threat: t.Clone(), Version: 1}
	threats := m.snapshotLocked()
	m.mu.Unlock()

	m.feed.Publish(threats)
	return nil
}

func (m *MemStore) CommitIfUnchanged(ctx context.Context, id string, expectedVersion int64, t models.Threat) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	rec, ok := m.records[id]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	if rec.Version != expectedVersion {
		m.mu.Unlock()
		return ErrVersionConflict
	}
	m.records[id] = Versioned{Threat: t.Clone(), Version: rec.Version + 1}
	threats := m.snapshotLocked()
	m.mu.Unlock()

	m.feed.Publish(threats)
	return nil
}

func (m *MemStore) Subscribe() (<-chan []models.Threat, func()) {
	return m.feed.Subscribe()
}

// snapshotLocked copies the full set, newest activity first. Callers hold
// at least a read lock.
func (m *MemStore) snapshotLocked() []models.Threat {
	threats := make([]models.Threat, 0, len(m.records))
	for _, rec := range m.records {
		threats = append(threats, rec.Threat.Clone())
	}
	sort.Slice(threats, func(i, j int) bool {
		if !threats[i].LastSeen.Equal(threats[j].LastSeen) {
			return threats[i].LastSeen.After(threats[j].LastSeen)
		}
		return threats[i].ID < threats[j].ID
	})
	return threats
}
