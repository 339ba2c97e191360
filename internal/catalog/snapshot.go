package catalog

import (
	"slices"
	"time"

	"bharatbus.in/catalogdb"
	"bharatbus.in/internal/routes"
)

// Snapshot is an immutable view of one loaded catalog. Callers must not
// modify the slices it hands out.
type Snapshot struct {
	Groups   []routes.Group
	Routes   []routes.RouteRecord
	Source   string
	Hash     string
	LoadedAt time.Time

	byID       map[routes.RouteID]int
	categories map[routes.RouteID]string
	paths      map[routes.RouteID][]catalogdb.Point
	operators  []string
	fares      routes.PriceRange
}

func newSnapshot(entries []Entry, source, hash string, loadedAt time.Time) *Snapshot {
	s := &Snapshot{
		Routes:     make([]routes.RouteRecord, 0, len(entries)),
		Source:     source,
		Hash:       hash,
		LoadedAt:   loadedAt,
		byID:       make(map[routes.RouteID]int, len(entries)),
		categories: make(map[routes.RouteID]string, len(entries)),
		paths:      make(map[routes.RouteID][]catalogdb.Point),
	}

	groupIndex := make(map[string]int)
	operators := make(map[string]struct{})
	for _, e := range entries {
		s.byID[e.Route.ID] = len(s.Routes)
		s.Routes = append(s.Routes, e.Route)
		s.categories[e.Route.ID] = e.Category
		if len(e.Path) > 0 {
			s.paths[e.Route.ID] = e.Path
		}

		gi, ok := groupIndex[e.Category]
		if !ok {
			gi = len(s.Groups)
			groupIndex[e.Category] = gi
			s.Groups = append(s.Groups, routes.Group{Category: e.Category})
		}
		s.Groups[gi].Routes = append(s.Groups[gi].Routes, e.Route)

		if _, ok := operators[e.Route.Operator]; !ok {
			operators[e.Route.Operator] = struct{}{}
			s.operators = append(s.operators, e.Route.Operator)
		}
	}
	slices.Sort(s.operators)
	s.fares = routes.FareBounds(s.Routes)
	return s
}

// Route looks up a route by ID.
func (s *Snapshot) Route(id routes.RouteID) (routes.RouteRecord, bool) {
	i, ok := s.byID[id]
	if !ok {
		return routes.RouteRecord{}, false
	}
	return s.Routes[i], true
}

// Category returns the display group of a route.
func (s *Snapshot) Category(id routes.RouteID) string {
	return s.categories[id]
}

// Path returns the map coordinates of a route, nil when none were loaded.
func (s *Snapshot) Path(id routes.RouteID) []catalogdb.Point {
	return s.paths[id]
}

// Operators lists the distinct operator names, sorted.
func (s *Snapshot) Operators() []string {
	return s.operators
}

// FareBounds is the [min, max] fare over the whole catalog.
func (s *Snapshot) FareBounds() routes.PriceRange {
	return s.fares
}

// DefaultPriceRange is the slider default covering every route.
func (s *Snapshot) DefaultPriceRange() routes.PriceRange {
	return routes.DefaultPriceRange(s.Routes)
}

func (s *Snapshot) Len() int {
	return len(s.Routes)
}
