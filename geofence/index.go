// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package geofence

import (
	"math"
	"sync"

	"github.com/dhconnelly/rtreego"

	"github.com/danielhkuo/safehaven/models"
)

const (
	tolerance   = 0.01
	minChildren = 25
	maxChildren = 50
	dimensions  = 2
)

// threatItem wraps a threat for R-Tree indexing.
type threatItem struct {
	threat models.Threat
	rect   *rtreego.Rect
}

func (ti *threatItem) Bounds() *rtreego.Rect {
	return ti.rect
}

// Index is a thread-safe R-Tree over the live threat set. Each feed tick
// replaces the whole index, so lookups never observe a partial set.
type Index struct {
	mu   sync.RWMutex
	tree *rtreego.Rtree
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{tree: rtreego.NewTree(dimensions, minChildren, maxChildren)}
}

// Replace rebuilds the index from the full current threat set. Threats with
// no camera position are skipped; they can never be relevant anyway.
func (ix *Index) Replace(threats []models.Threat) {
	tree := rtreego.NewTree(dimensions, minChildren, maxChildren)
	for _, t := range threats {
		if t.Camera == nil {
			continue
		}
		p := rtreego.Point{t.Camera.Lat, t.Camera.Lng}
		tree.Insert(&threatItem{threat: t, rect: p.ToRect(tolerance)})
	}

	ix.mu.Lock()
	ix.tree = tree
	ix.mu.Unlock()
}

// Search returns all indexed threats within radiusMiles of observer. The
// bounding-box candidates are verified with the exact haversine distance.
func (ix *Index) Search(observer models.Position, radiusMiles float64) []models.Threat {
	latDeg := (radiusMiles / EarthRadiusMiles) * (180 / math.Pi)

	// A degree of longitude is cos(lat) times shorter than a degree of
	// latitude, so the east-west half-extent widens accordingly. At the
	// poles the box covers every longitude.
	lngDeg := 180.0
	if c := math.Cos(observer.Lat * math.Pi / 180); c > 1e-9 {
		lngDeg = math.Min(latDeg/c, 180)
	}

	bounds, err := rtreego.NewRect(
		rtreego.Point{observer.Lat - latDeg, observer.Lng - lngDeg},
		[]float64{2 * latDeg, 2 * lngDeg},
	)
	if err != nil {
		return nil
	}

	ix.mu.RLock()
	results := ix.tree.SearchIntersect(bounds)
	ix.mu.RUnlock()

	threats := make([]models.Threat, 0, len(results))
	for _, result := range results {
		item, ok := result.(*threatItem)
		if !ok || item.threat.Camera == nil {
			continue
		}
		if Distance(observer, item.threat.Camera.Position) <= radiusMiles {
			threats = append(threats, item.threat)
		}
	}
	return threats
}

// Size returns the number of indexed threats.
func (ix *Index) Size() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.tree.Size()
}
