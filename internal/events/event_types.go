package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketUpdated       EventType = "ticket_updated"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketDeleted       EventType = "ticket_deleted"
	EventPersonCreated       EventType = "person_created"
	EventPersonDeleted       EventType = "person_deleted"
)

// AllTypes lists every event type, in a stable order.
var AllTypes = []EventType{
	EventTicketCreated,
	EventTicketUpdated,
	EventTicketStatusChanged,
	EventTicketDeleted,
	EventPersonCreated,
	EventPersonDeleted,
}

// Actor identifies who triggered an event.
type Actor struct {
	PersonID int64    `json:"person_id"`
	Roles    []string `json:"roles"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	EntityID  int64       `json:"entity_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title        string                `json:"title"`
	Priority     domain.TicketPriority `json:"priority"`
	Status       domain.TicketStatus   `json:"status"`
	TechnicianID int64                 `json:"technician_id"`
	ClientID     int64                 `json:"client_id"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	ClosedAt  *time.Time          `json:"closed_at,omitempty"`
}

// PersonPayload payload for person lifecycle events.
type PersonPayload struct {
	Kind  domain.PersonKind `json:"kind"`
	Name  string            `json:"name"`
	Email string            `json:"email"`
}
