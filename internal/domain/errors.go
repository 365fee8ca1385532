package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// Import-source errors: ErrFetch covers transport failures against the
	// spreadsheet endpoint, ErrFormat a response that is not the expected
	// tabular envelope (or a sheet with no rows at all).
	ErrFetch  = errors.New("fetch failed")
	ErrFormat = errors.New("unexpected source format")
)
