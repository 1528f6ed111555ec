package dto

import (
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// TicketRequest is the create/update payload. Opening and closing dates are
// server-maintained and ignored on input.
type TicketRequest struct {
	Prioridade  domain.TicketPriority `json:"prioridade"`
	Status      *domain.TicketStatus  `json:"status"`
	Titulo      string                `json:"titulo"`
	Observacoes string                `json:"observacoes"`
	Tecnico     int64                 `json:"tecnico"`
	Cliente     int64                 `json:"cliente"`
}

// ToInput converts the payload to service input.
func (r TicketRequest) ToInput() service.TicketInput {
	return service.TicketInput{
		Priority:     r.Prioridade,
		Status:       r.Status,
		Title:        r.Titulo,
		Notes:        r.Observacoes,
		TechnicianID: r.Tecnico,
		ClientID:     r.Cliente,
	}
}

// TicketResponse is the public view of a ticket.
type TicketResponse struct {
	ID             int64                 `json:"id"`
	DataAbertura   Date                  `json:"dataAbertura"`
	DataFechamento *Date                 `json:"dataFechamento"`
	Prioridade     domain.TicketPriority `json:"prioridade"`
	Status         domain.TicketStatus   `json:"status"`
	Titulo         string                `json:"titulo"`
	Observacoes    string                `json:"observacoes"`
	Tecnico        int64                 `json:"tecnico"`
	Cliente        int64                 `json:"cliente"`
	NomeTecnico    string                `json:"nomeTecnico"`
	NomeCliente    string                `json:"nomeCliente"`
}

// NewTicketResponse renders a ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:             t.ID,
		DataAbertura:   Date(t.OpenedAt),
		DataFechamento: NewDate(t.ClosedAt),
		Prioridade:     t.Priority,
		Status:         t.Status,
		Titulo:         t.Title,
		Observacoes:    t.Notes,
		Tecnico:        t.TechnicianID,
		Cliente:        t.ClientID,
		NomeTecnico:    t.TechnicianName,
		NomeCliente:    t.ClientName,
	}
}

// NewTicketResponses renders a list, never nil.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}
