package domain

import "errors"

// Sentinel errors for the domain layer.
var (
	ErrNotFound     = errors.New("domain: not found")
	ErrConflict     = errors.New("domain: conflict")
	ErrUnauthorized = errors.New("domain: unauthorized")
	ErrForbidden    = errors.New("domain: forbidden")

	ErrUnknownKind           = errors.New("domain: unknown entity kind")
	ErrUnknownStatus         = errors.New("domain: unknown status")
	ErrInvalidTransition     = errors.New("domain: invalid status transition")
	ErrInvalidDateRange      = errors.New("domain: end date before start date")
	ErrTerminalStatus        = errors.New("domain: entity is in a terminal status")
	ErrJustificationRequired = errors.New("domain: justification required")
)
