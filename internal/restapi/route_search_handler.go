package restapi

import (
	"net/http"

	"bharatbus.in/internal/catalog"
	"bharatbus.in/internal/models"
	"bharatbus.in/internal/routes"
	"bharatbus.in/internal/utils"
)

const (
	defaultSearchMaxCount = 100
	maxSearchMaxCount     = 100
)

type routeSearchParams struct {
	criteria routes.FilterCriteria
	maxCount int
}

// parseRouteSearchParams reads input, minFare, maxFare, operator and
// maxCount. Missing fare bounds fall back to the catalog's slider range.
func parseRouteSearchParams(r *http.Request, snapshot *catalog.Snapshot) (routeSearchParams, FieldErrors) {
	fieldErrors := FieldErrors{}
	priceRange := snapshot.DefaultPriceRange()

	minFare, hasMin, err := utils.ParseFloatParam(r, "minFare")
	switch {
	case err != nil:
		fieldErrors.add("minFare", err.Error())
	case hasMin && minFare < 0:
		fieldErrors.add("minFare", "minFare must not be negative")
	case hasMin:
		priceRange.Min = minFare
	}

	maxFare, hasMax, err := utils.ParseFloatParam(r, "maxFare")
	switch {
	case err != nil:
		fieldErrors.add("maxFare", err.Error())
	case hasMax && maxFare < 0:
		fieldErrors.add("maxFare", "maxFare must not be negative")
	case hasMax:
		priceRange.Max = maxFare
	}

	// Only two bounds the caller sent can conflict. A single bound past
	// the catalog range widens the default side instead.
	switch {
	case len(fieldErrors) > 0:
	case hasMin && hasMax && priceRange.Min > priceRange.Max:
		fieldErrors.add("maxFare", "maxFare must not be less than minFare")
	case !hasMax:
		priceRange.Max = max(priceRange.Max, priceRange.Min)
	case !hasMin:
		priceRange.Min = min(priceRange.Min, priceRange.Max)
	}

	maxCount := defaultSearchMaxCount
	if v, present, err := utils.ParseIntParam(r, "maxCount"); err != nil {
		fieldErrors.add("maxCount", err.Error())
	} else if present {
		if v < 1 || v > maxSearchMaxCount {
			fieldErrors.add("maxCount", "maxCount must be between 1 and 100")
		} else {
			maxCount = v
		}
	}

	if len(fieldErrors) > 0 {
		return routeSearchParams{}, fieldErrors
	}

	return routeSearchParams{
		criteria: routes.NewFilterCriteria(
			r.URL.Query().Get("input"),
			priceRange,
			utils.ParseListParam(r, "operator"),
		),
		maxCount: maxCount,
	}, nil
}

// routeSearchHandler runs the route filter over the catalog. An empty
// input lists every route within the fare and operator facets.
func (api *RestAPI) routeSearchHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := api.Catalog.Snapshot()

	params, fieldErrors := parseRouteSearchParams(r, snapshot)
	if fieldErrors != nil {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	matched := routes.FilterRoutes(snapshot.Routes, params.criteria)
	limitExceeded := len(matched) > params.maxCount

	if api.Metrics != nil {
		api.Metrics.ObserveRouteSearch(len(matched), limitExceeded)
	}

	if limitExceeded {
		matched = matched[:params.maxCount]
	}

	groups := routes.FilterGroups(snapshot.Groups, params.criteria)
	if limitExceeded {
		groups = keepReturnedRoutes(groups, matched)
	}

	list := routeModels(snapshot, matched)
	priceRange := params.criteria.PriceRange

	response := models.NewGroupedListResponse(
		list,
		groupModels(snapshot, groups),
		&priceRange,
		routeReferences(list),
		limitExceeded,
		api.Clock,
	)
	api.sendResponse(w, r, response)
}

// keepReturnedRoutes trims groups to the routes that survived truncation
// and drops groups left empty.
func keepReturnedRoutes(groups []routes.Group, returned []routes.RouteRecord) []routes.Group {
	kept := make(map[routes.RouteID]struct{}, len(returned))
	for _, route := range returned {
		kept[route.ID] = struct{}{}
	}

	result := make([]routes.Group, 0, len(groups))
	for _, group := range groups {
		var members []routes.RouteRecord
		for _, route := range group.Routes {
			if _, ok := kept[route.ID]; ok {
				members = append(members, route)
			}
		}
		if len(members) > 0 {
			result = append(result, routes.Group{Category: group.Category, Routes: members})
		}
	}
	return result
}
