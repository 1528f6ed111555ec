package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// Ticket is a support request opened by a client and assigned to a technician.
// ClosedAt is set exactly while Status is CLOSED.
type Ticket struct {
	ID             int64
	OpenedAt       time.Time
	ClosedAt       *time.Time
	Priority       TicketPriority
	Status         TicketStatus
	Title          string
	Notes          string
	TechnicianID   int64
	ClientID       int64
	TechnicianName string
	ClientName     string
}

// ApplyStatus moves the ticket to next, maintaining ClosedAt.
// A nil next keeps the current status. today must already be truncated to a date.
func (t *Ticket) ApplyStatus(next *TicketStatus, today time.Time) {
	if next == nil || *next == t.Status {
		return
	}
	switch {
	case *next == TicketStatusClosed:
		closed := today
		t.ClosedAt = &closed
	case t.Status == TicketStatusClosed:
		t.ClosedAt = nil
	}
	t.Status = *next
}

// DateOf truncates ts to midnight UTC of its calendar day.
func DateOf(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
