package tickets

import (
	"log/slog"
	"slices"
	"sync"

	"bharatbus.in/internal/clock"
	"bharatbus.in/internal/logging"
)

// DefaultCapacity bounds the in-memory store.
const DefaultCapacity = 10000

const maxIDAttempts = 5

// Config configures a Store.
type Config struct {
	Capacity int
	Clock    clock.Clock
	// NewID overrides ID generation, for tests.
	NewID func() string
	// OnBook, when set, receives the ticket count after each booking.
	OnBook func(count int)
}

// Store holds tickets in booking order.
type Store struct {
	config Config
	clock  clock.Clock

	mu      sync.RWMutex
	tickets []Ticket
	byID    map[string]int
}

func NewStore(config Config) *Store {
	if config.Capacity <= 0 {
		config.Capacity = DefaultCapacity
	}
	if config.NewID == nil {
		config.NewID = NewID
	}
	c := config.Clock
	if c == nil {
		c = clock.RealClock{}
	}
	return &Store{
		config: config,
		clock:  c,
		byID:   make(map[string]int),
	}
}

// Book confirms booking under a fresh ID. Validation is the caller's job.
func (s *Store) Book(booking Booking) (Ticket, error) {
	s.mu.Lock()

	if len(s.tickets) >= s.config.Capacity {
		s.mu.Unlock()
		return Ticket{}, ErrFull
	}

	id := ""
	for range maxIDAttempts {
		candidate := s.config.NewID()
		if _, taken := s.byID[candidate]; !taken {
			id = candidate
			break
		}
	}
	if id == "" {
		s.mu.Unlock()
		return Ticket{}, ErrIDExhausted
	}

	ticket := Ticket{ID: id, Booking: booking, BookedAt: s.clock.Now()}
	s.byID[id] = len(s.tickets)
	s.tickets = append(s.tickets, ticket)
	count := len(s.tickets)
	s.mu.Unlock()

	logging.LogOperation(slog.Default().With(slog.String("component", "ticket_store")),
		"ticket_booked",
		slog.String("ticket_id", id),
		slog.String("route_id", booking.RouteID),
		slog.Int("passengers", booking.Passengers))

	if s.config.OnBook != nil {
		s.config.OnBook(count)
	}
	return ticket, nil
}

// Ticket returns the ticket with the given ID.
func (s *Store) Ticket(id string) (Ticket, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return Ticket{}, false
	}
	return s.tickets[i], true
}

// Tickets returns a copy of every ticket in booking order.
func (s *Store) Tickets() []Ticket {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tickets)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tickets)
}
