package routes

import "strings"

// FilterRoutes returns the routes that satisfy every part of criteria, in
// their original relative order. The input slice and its records are never
// modified. A route is included at most once however many fields match.
//
// An inverted price range (Min > Max) is a caller error and simply excludes
// every route.
func FilterRoutes(routes []RouteRecord, criteria FilterCriteria) []RouteRecord {
	filtered := make([]RouteRecord, 0, len(routes))
	for _, route := range routes {
		if !matchesText(route, criteria.Query) {
			continue
		}
		if !criteria.PriceRange.Contains(route.Fare) {
			continue
		}
		if !matchesOperatorTags(route.Operator, criteria.OperatorTags) {
			continue
		}
		filtered = append(filtered, route)
	}
	return filtered
}

func matchesText(route RouteRecord, query string) bool {
	if query == "" {
		return true
	}
	if MatchesQuery(route.BusNumber, query) ||
		MatchesQuery(route.Operator, query) ||
		MatchesQuery(route.From, query) ||
		MatchesQuery(route.To, query) {
		return true
	}
	for _, stop := range route.Stops {
		if MatchesQuery(stop, query) {
			return true
		}
	}
	return false
}

func matchesOperatorTags(operator string, tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	lowered := strings.ToLower(operator)
	for _, tag := range tags {
		if strings.Contains(lowered, strings.ToLower(tag)) {
			return true
		}
	}
	return false
}

// MatchEndpoints filters routes by origin and destination the way the route
// listing endpoint does: with both empty every route matches, otherwise a
// route matches when its origin contains from, its destination contains to,
// or "from to" contains both joined by a space. Matching is case-insensitive,
// and from and to are trimmed so padded form input still matches.
func MatchEndpoints(routes []RouteRecord, from, to string) []RouteRecord {
	f := NormalizeQuery(from)
	t := NormalizeQuery(to)

	matched := make([]RouteRecord, 0, len(routes))
	for _, route := range routes {
		if f == "" && t == "" {
			matched = append(matched, route)
			continue
		}
		origin := strings.ToLower(route.From)
		destination := strings.ToLower(route.To)
		joined := origin + " " + destination
		if (f != "" && strings.Contains(origin, f)) ||
			(t != "" && strings.Contains(destination, t)) ||
			strings.Contains(joined, strings.TrimSpace(f+" "+t)) {
			matched = append(matched, route)
		}
	}
	return matched
}

// Group is a named section of the catalog, such as a transit authority.
type Group struct {
	Category string        `json:"category"`
	Routes   []RouteRecord `json:"routes"`
}

// FilterGroups filters each group independently and leaves out groups with
// no matching routes. Group order is preserved.
func FilterGroups(groups []Group, criteria FilterCriteria) []Group {
	filtered := make([]Group, 0, len(groups))
	for _, group := range groups {
		matches := FilterRoutes(group.Routes, criteria)
		if len(matches) == 0 {
			continue
		}
		filtered = append(filtered, Group{Category: group.Category, Routes: matches})
	}
	return filtered
}
