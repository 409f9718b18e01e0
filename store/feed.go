// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"sync"

	"github.com/danielhkuo/safehaven/models"
)

// Feed is an in-process broadcast hub for threat-set changes. Each
// subscriber gets a buffered channel; Publish is latest-wins, so a slow
// subscriber never blocks a commit and never sees a stale backlog.
type Feed struct {
	mu   sync.Mutex
	subs map[int]chan []models.Threat
	next int
}

// NewFeed returns an empty hub.
func NewFeed() *Feed {
	return &Feed{subs: make(map[int]chan []models.Threat)}
}

// Subscribe registers a new listener. The returned cancel func must be
// called to release the subscription; the channel is closed on cancel.
func (f *Feed) Subscribe() (<-chan []models.Threat, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.next
	f.next++
	ch := make(chan []models.Threat, 1)
	f.subs[id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if sub, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish delivers the full current threat set to every subscriber,
// replacing any undelivered previous set. Each subscriber receives its own
// deep copy, so one consumer mutating a snapshot can never race another.
func (f *Feed) Publish(threats []models.Threat) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, ch := range f.subs {
		snapshot := make([]models.Threat, len(threats))
		for i, t := range threats {
			snapshot[i] = t.Clone()
		}

		// Drop the stale set, if any, then send the fresh one.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snapshot:
		default:
		}
	}
}

// Len returns the number of active subscribers.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}
