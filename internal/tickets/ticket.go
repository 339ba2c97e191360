// Package tickets keeps booked tickets in memory. Nothing is persisted and no
// payment is taken; a restart forgets every booking.
package tickets

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDPrefix starts every ticket ID.
const IDPrefix = "BBS"

const idSuffixLength = 9

// MaxPassengers is the most seats one booking may hold.
const MaxPassengers = 6

var (
	// ErrFull is returned once the store holds its maximum number of tickets.
	ErrFull = errors.New("ticket store is full")
	// ErrIDExhausted is returned when no unused ticket ID could be drawn.
	ErrIDExhausted = errors.New("could not allocate a unique ticket id")
)

// Booking is what a rider submits.
type Booking struct {
	RouteID    string
	From       string
	To         string
	Date       string
	Name       string
	Phone      string
	Passengers int
}

// Ticket is a confirmed booking.
type Ticket struct {
	ID string
	Booking
	BookedAt time.Time
}

// NewID draws a ticket ID: IDPrefix followed by nine upper-case hex
// characters from a random UUID.
func NewID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return IDPrefix + strings.ToUpper(raw[:idSuffixLength])
}

// IsTicketID reports whether id has the shape NewID produces.
func IsTicketID(id string) bool {
	if len(id) != len(IDPrefix)+idSuffixLength || !strings.HasPrefix(id, IDPrefix) {
		return false
	}
	for _, c := range id[len(IDPrefix):] {
		if !(c >= '0' && c <= '9' || c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}
