// Package spatial provides the geospatial index of watcher positions and
// the proximity engine that queries it.
package spatial

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/asim/quadtree"
)

// Position is the last known coordinate for an identity.
type Position struct {
	Identity  string
	Lat       float64
	Lng       float64
	UpdatedAt time.Time
}

// Index stores one position per identity in a quadtree covering the whole
// earth. Radius queries do a coarse bounding-box pass over the tree and a
// haversine fine filter, so every returned identity is within the true
// great-circle distance.
type Index struct {
	mu     sync.RWMutex
	tree   *quadtree.QuadTree
	points map[string]*quadtree.Point
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	center := quadtree.NewPoint(0, 0, nil)
	half := quadtree.NewPoint(90, 180, nil)
	boundary := quadtree.NewAABB(center, half)

	return &Index{
		tree:   quadtree.New(boundary, 0, nil),
		points: make(map[string]*quadtree.Point),
	}
}

// Upsert records the last known position for an identity. An identity has
// at most one entry; any existing point is replaced.
func (i *Index) Upsert(identity string, lat, lng float64) error {
	if err := CheckCoordinate(lat, lng); err != nil {
		return fmt.Errorf("upsert %s at (%v, %v): %w", identity, lat, lng, err)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if existing, ok := i.points[identity]; ok {
		i.tree.Remove(existing)
		delete(i.points, identity)
	}

	pos := &Position{Identity: identity, Lat: lat, Lng: lng, UpdatedAt: time.Now()}
	point := quadtree.NewPoint(lat, lng, pos)
	if !i.tree.Insert(point) {
		return fmt.Errorf("insert %s at (%v, %v) into quadtree failed", identity, lat, lng)
	}
	i.points[identity] = point

	return nil
}

// Remove drops the identity's position. Reports whether an entry existed.
func (i *Index) Remove(identity string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()

	point, ok := i.points[identity]
	if !ok {
		return false
	}
	i.tree.Remove(point)
	delete(i.points, identity)
	return true
}

// Position returns the stored coordinate for an identity.
func (i *Index) Position(identity string) (Position, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	point, ok := i.points[identity]
	if !ok {
		return Position{}, false
	}
	pos, ok := point.Data().(*Position)
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// QueryRadius returns the identities whose stored position lies within
// radiusKm of the query point by great-circle distance. The exclude
// identity is never returned. Results are sorted ascending by identity so
// a fixed snapshot always yields the same order.
func (i *Index) QueryRadius(lat, lng, radiusKm float64, exclude string) []string {
	i.mu.RLock()

	center := quadtree.NewPoint(lat, lng, nil)
	half := center.HalfPoint(radiusKm * 1000)
	boundary := quadtree.NewAABB(center, half)

	filter := func(p *quadtree.Point) bool {
		pos, ok := p.Data().(*Position)
		if !ok || pos.Identity == exclude {
			return false
		}
		return Haversine(lat, lng, pos.Lat, pos.Lng) <= radiusKm
	}

	points := i.tree.KNearest(boundary, len(i.points), filter)
	i.mu.RUnlock()

	identities := make([]string, 0, len(points))
	for _, p := range points {
		if pos, ok := p.Data().(*Position); ok {
			identities = append(identities, pos.Identity)
		}
	}
	sort.Strings(identities)
	return identities
}

// Len returns the number of indexed identities.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return len(i.points)
}
