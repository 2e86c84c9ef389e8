package domain

import "errors"

// Gateway errors
var (
	// ErrNotFound indicates the requested remote resource does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrPermissionDenied indicates insufficient access to the remote resource
	ErrPermissionDenied = errors.New("permission denied")

	// ErrRateLimited indicates the remote API rejected the call after retries
	ErrRateLimited = errors.New("rate limit exceeded")
)

// Structural errors - these indicate data corruption or a logic defect
// and must abort the run rather than being skipped
var (
	// ErrIntegrity is the base error for invariant violations such as
	// multiple owners, ambiguous pairing matches, or a pairing property
	// that does not point back at the queried entry
	ErrIntegrity = errors.New("data integrity violation")

	// ErrUnknownAction indicates a plan item with an unrecognised action
	ErrUnknownAction = errors.New("unknown plan action")

	// ErrUnknownPermission indicates a permission that matched no known shape
	ErrUnknownPermission = errors.New("unknown permission shape")
)

// Config errors
var (
	// ErrConfigNotFound indicates the config file was not found
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates the config file is malformed or inconsistent
	ErrConfigInvalid = errors.New("invalid config")
)

// Run errors
var (
	// ErrRunInProgress indicates another run already holds the account lock
	ErrRunInProgress = errors.New("run already in progress")

	// ErrCacheMiss indicates an ancestor entry was not visited before its child
	ErrCacheMiss = errors.New("entry not in cache")
)
