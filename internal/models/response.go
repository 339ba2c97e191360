package models

import (
	"net/http"

	"bharatbus.in/internal/clock"
	"bharatbus.in/internal/routes"
)

// ApiVersion is reported in every envelope.
const ApiVersion = 2

// ResponseModel is the envelope wrapped around every API payload.
type ResponseModel struct {
	Code        int         `json:"code"`
	CurrentTime int64       `json:"currentTime"`
	Data        interface{} `json:"data,omitempty"`
	Text        string      `json:"text"`
	Version     int         `json:"version"`
}

// EntryData holds a single object plus the objects it references.
type EntryData struct {
	Entry      interface{}     `json:"entry"`
	References ReferencesModel `json:"references"`
}

// ListData holds a list plus the objects its elements reference.
type ListData struct {
	List          interface{}     `json:"list"`
	LimitExceeded bool            `json:"limitExceeded"`
	References    ReferencesModel `json:"references"`
}

// GroupedListData is ListData with the same routes also organised by
// catalog category. PriceRange is the fare range the list was cut to.
type GroupedListData struct {
	ListData
	Groups     []RouteGroupModel  `json:"groups"`
	PriceRange *routes.PriceRange `json:"priceRange,omitempty"`
}

func ResponseCurrentTime(c clock.Clock) int64 {
	return c.NowUnixMilli()
}

func NewOKResponse(data interface{}, c clock.Clock) ResponseModel {
	return NewResponse(http.StatusOK, data, "OK", c)
}

func NewResponse(code int, data interface{}, text string, c clock.Clock) ResponseModel {
	return ResponseModel{
		Code:        code,
		CurrentTime: ResponseCurrentTime(c),
		Data:        data,
		Text:        text,
		Version:     ApiVersion,
	}
}

func NewEntryResponse(entry interface{}, references ReferencesModel, c clock.Clock) ResponseModel {
	return NewOKResponse(EntryData{Entry: entry, References: references}, c)
}

func NewListResponse(list interface{}, references ReferencesModel, limitExceeded bool, c clock.Clock) ResponseModel {
	return NewOKResponse(ListData{
		List:          list,
		LimitExceeded: limitExceeded,
		References:    references,
	}, c)
}

// NewGroupedListResponse returns routes both flat and grouped by category.
func NewGroupedListResponse(list []RouteModel, groups []RouteGroupModel, priceRange *routes.PriceRange, references ReferencesModel, limitExceeded bool, c clock.Clock) ResponseModel {
	return NewOKResponse(GroupedListData{
		ListData: ListData{
			List:          list,
			LimitExceeded: limitExceeded,
			References:    references,
		},
		Groups:     groups,
		PriceRange: priceRange,
	}, c)
}
