package types

import "github.com/m-mizutani/goerr/v2"

// Error taxonomy for API and local failures. Services decide per-item vs
// whole-run handling by matching these with errors.Is.
var (
	// ErrAuthentication aborts the entire run.
	ErrAuthentication = goerr.New("authentication failed")

	// ErrRateLimited and ErrTransient are retried by the client.
	ErrRateLimited = goerr.New("rate limited by API")
	ErrTransient   = goerr.New("transient network failure")

	// ErrNotFound and ErrConflict are treated as per-item skips.
	ErrNotFound = goerr.New("resource not found")
	ErrConflict = goerr.New("resource conflict")

	// ErrValidation aborts a single item, never the batch.
	ErrValidation = goerr.New("validation failed")

	// ErrMissingVariable is a template render failure for a required
	// placeholder without a value.
	ErrMissingVariable = goerr.New("missing template variable")

	// ErrTooManyPages is returned when a list call exceeds the configured
	// page cap instead of iterating without bound.
	ErrTooManyPages = goerr.New("pagination exceeded page cap")

	ErrInvalidOption = goerr.New("invalid option")
)
