package services

import "errors"

// Error taxonomy shared by all services. HTTP adapters translate these with
// errors.Is; ErrUpstreamUnavailable is consumed inside the services and must
// never reach an end user.
var (
	// ErrNotFound: a referenced user, resume or session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidState: the operation is not legal for the session's current
	// state or the input is malformed (e.g. completing with zero answers).
	ErrInvalidState = errors.New("invalid state")

	// ErrUpstreamUnavailable: the AI gateway is unconfigured, over quota,
	// unreachable or returned an unparseable response. Call sites convert
	// this to deterministic fallback data.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrStorageFailure: a database write failed; the enclosing transaction
	// has been rolled back.
	ErrStorageFailure = errors.New("storage failure")
)
