package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

// IntegrityValidator enforces tax id and email uniqueness across every
// person, whatever its kind.
type IntegrityValidator struct {
	persons repository.PersonRepository
}

// NewIntegrityValidator builds a validator over the person store.
func NewIntegrityValidator(persons repository.PersonRepository) *IntegrityValidator {
	return &IntegrityValidator{persons: persons}
}

// ValidateUnique reports Conflict when another person already owns taxID or
// email. excludeID is the id being updated, nil on create. Both lookups always
// run; a tax id conflict is reported ahead of an email conflict.
func (v *IntegrityValidator) ValidateUnique(ctx context.Context, kind domain.PersonKind, taxID, email string, excludeID *int64) error {
	byTaxID, taxErr := v.persons.GetByTaxID(ctx, taxID)
	byEmail, emailErr := v.persons.GetByEmail(ctx, email)
	if err := lookupFailure(taxErr); err != nil {
		return err
	}
	if err := lookupFailure(emailErr); err != nil {
		return err
	}

	if conflicts(byTaxID, excludeID) {
		return apperrors.NewConflict("taxId", kind.Label()+": tax id already registered")
	}
	if conflicts(byEmail, excludeID) {
		return apperrors.NewConflict("email", kind.Label()+": email already registered")
	}
	return nil
}

func lookupFailure(err error) error {
	if err == nil || errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return apperrors.MapError(err)
}

func conflicts(existing *domain.Person, excludeID *int64) bool {
	if existing == nil {
		return false
	}
	return excludeID == nil || existing.ID != *excludeID
}

// identityChanged reports whether an update touches a unique field, which is
// the only case that needs a uniqueness re-check.
func identityChanged(existing *domain.Person, taxID, email string) bool {
	return existing.TaxID != taxID || existing.Email != email
}

// maxPasswordBytes is the longest password bcrypt accepts.
const maxPasswordBytes = 72

func validatePersonInput(input PersonInput, requirePassword bool) error {
	missing := []string{}
	if strings.TrimSpace(input.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(input.TaxID) == "" {
		missing = append(missing, "taxId")
	}
	if strings.TrimSpace(input.Email) == "" {
		missing = append(missing, "email")
	}
	if requirePassword && input.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("required fields missing", map[string]any{"fields": missing})
	}
	if len(input.Password) > maxPasswordBytes {
		return apperrors.NewValidationError("password too long", map[string]any{"fields": []string{"password"}})
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return apperrors.NewValidationError("invalid email", map[string]any{"fields": []string{"email"}})
	}
	for _, r := range input.Roles {
		if !r.Valid() {
			return apperrors.NewValidationError("unknown role", map[string]any{"role": string(r)})
		}
	}
	return nil
}

func validateTicketInput(input TicketInput) error {
	missing := []string{}
	if strings.TrimSpace(input.Title) == "" {
		missing = append(missing, "title")
	}
	if input.Priority == "" {
		missing = append(missing, "priority")
	}
	if input.TechnicianID <= 0 {
		missing = append(missing, "technician")
	}
	if input.ClientID <= 0 {
		missing = append(missing, "client")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("required fields missing", map[string]any{"fields": missing})
	}
	if !input.Priority.Valid() {
		return apperrors.NewValidationError("invalid priority", map[string]any{"priority": string(input.Priority)})
	}
	if input.Status != nil && !input.Status.Valid() {
		return apperrors.NewValidationError("invalid status", map[string]any{"status": string(*input.Status)})
	}
	return nil
}
