package models

// TicketBookingRequest is the body of a booking request.
type TicketBookingRequest struct {
	RouteID    string `json:"routeId"`
	From       string `json:"from"`
	To         string `json:"to"`
	Date       string `json:"date"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	// Passengers defaults to one when omitted.
	Passengers *int   `json:"passengers"`
}

// TicketModel is a confirmed booking.
type TicketModel struct {
	ID         string `json:"id"`
	RouteID    string `json:"routeId,omitempty"`
	From       string `json:"from"`
	To         string `json:"to"`
	Date       string `json:"date"`
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Passengers int    `json:"passengers"`
	BookedAt   int64  `json:"bookedAt"`
}
