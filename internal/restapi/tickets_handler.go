package restapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"bharatbus.in/internal/catalog"
	"bharatbus.in/internal/models"
	"bharatbus.in/internal/routes"
	"bharatbus.in/internal/tickets"
	"bharatbus.in/internal/utils"
)

const (
	maxTicketBodyBytes  = 16 << 10
	maxTicketFieldRunes = 100
	maxPhoneLength      = 20
	ticketDateLayout    = time.DateOnly
)

func ticketModel(t tickets.Ticket) models.TicketModel {
	return models.TicketModel{
		ID:         t.ID,
		RouteID:    t.RouteID,
		From:       t.From,
		To:         t.To,
		Date:       t.Date,
		Name:       t.Name,
		Phone:      t.Phone,
		Passengers: t.Passengers,
		BookedAt:   t.BookedAt.UnixMilli(),
	}
}

// ticketReferences returns the catalog routes the tickets were booked on.
func ticketReferences(snapshot *catalog.Snapshot, list []models.TicketModel) models.ReferencesModel {
	references := models.NewEmptyReferences()
	seen := make(map[string]struct{})
	for _, t := range list {
		if _, ok := seen[t.RouteID]; ok || t.RouteID == "" {
			continue
		}
		seen[t.RouteID] = struct{}{}
		if record, ok := snapshot.Route(routes.RouteID(t.RouteID)); ok {
			references.Routes = append(references.Routes, routeModel(snapshot, record))
		}
	}
	references.Operators = models.OperatorReferences(references.Routes)
	return references
}

// parseBooking validates a booking request. A known routeId fills in a
// missing origin or destination from the route.
func parseBooking(req models.TicketBookingRequest, snapshot *catalog.Snapshot) (tickets.Booking, FieldErrors) {
	fieldErrors := FieldErrors{}
	booking := tickets.Booking{
		RouteID: strings.TrimSpace(req.RouteID),
		From:    strings.TrimSpace(req.From),
		To:      strings.TrimSpace(req.To),
		Date:    strings.TrimSpace(req.Date),
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
	}

	if booking.RouteID != "" {
		if route, ok := snapshot.Route(routes.RouteID(booking.RouteID)); ok {
			if booking.From == "" {
				booking.From = route.From
			}
			if booking.To == "" {
				booking.To = route.To
			}
		} else {
			fieldErrors.add("routeId", "unknown route")
		}
	}

	for _, field := range []struct{ name, value string }{
		{"from", booking.From},
		{"to", booking.To},
		{"name", booking.Name},
	} {
		switch {
		case field.value == "":
			fieldErrors.add(field.name, field.name+" is required")
		case utf8.RuneCountInString(field.value) > maxTicketFieldRunes:
			fieldErrors.add(field.name, field.name+" is too long")
		}
	}

	if booking.Date == "" {
		fieldErrors.add("date", "date is required")
	} else if _, err := time.Parse(ticketDateLayout, booking.Date); err != nil {
		fieldErrors.add("date", "date must be formatted YYYY-MM-DD")
	}

	if len(booking.Phone) > maxPhoneLength {
		fieldErrors.add("phone", "phone is too long")
	}

	booking.Passengers = 1
	if req.Passengers != nil {
		booking.Passengers = *req.Passengers
	}
	if booking.Passengers < 1 || booking.Passengers > tickets.MaxPassengers {
		fieldErrors.add("passengers", "passengers must be between 1 and 6")
	}

	if len(fieldErrors) > 0 {
		return tickets.Booking{}, fieldErrors
	}
	return booking, nil
}

func (api *RestAPI) bookTicketHandler(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxTicketBodyBytes)

	var req models.TicketBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.validationErrorResponse(w, r, FieldErrors{"body": {"request body must be a JSON booking"}})
		return
	}

	snapshot := api.Catalog.Snapshot()
	booking, fieldErrors := parseBooking(req, snapshot)
	if fieldErrors != nil {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	ticket, err := api.Tickets.Book(booking)
	if errors.Is(err, tickets.ErrFull) {
		api.sendError(w, r, http.StatusServiceUnavailable, "ticket booking is unavailable")
		return
	}
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	entry := ticketModel(ticket)
	references := ticketReferences(snapshot, []models.TicketModel{entry})
	api.sendResponse(w, r, models.NewEntryResponse(entry, references, api.Clock))
}

// myTicketsHandler lists every booking in order. There are no accounts, so
// all tickets belong to the caller.
func (api *RestAPI) myTicketsHandler(w http.ResponseWriter, r *http.Request) {
	booked := api.Tickets.Tickets()
	list := make([]models.TicketModel, 0, len(booked))
	for _, t := range booked {
		list = append(list, ticketModel(t))
	}

	references := ticketReferences(api.Catalog.Snapshot(), list)
	api.sendResponse(w, r, models.NewListResponse(list, references, false, api.Clock))
}

func (api *RestAPI) ticketHandler(w http.ResponseWriter, r *http.Request) {
	id := utils.ExtractIDFromParams(r)
	if err := utils.ValidateID(id); err != nil {
		api.validationErrorResponse(w, r, FieldErrors{"id": {err.Error()}})
		return
	}

	ticket, ok := api.Tickets.Ticket(id)
	if !ok {
		api.sendNotFound(w, r)
		return
	}

	entry := ticketModel(ticket)
	references := ticketReferences(api.Catalog.Snapshot(), []models.TicketModel{entry})
	api.sendResponse(w, r, models.NewEntryResponse(entry, references, api.Clock))
}
