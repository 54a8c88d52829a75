package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed     = fmt.Errorf("authorization failed")
	ErrListenerBind   = fmt.Errorf("callback listener could not bind")
	ErrMissingCode    = fmt.Errorf("missing code")
	ErrNoAccessToken  = fmt.Errorf("no access token in response")
	ErrTimeout        = fmt.Errorf("operation timed out")
	ErrListenerClosed = fmt.Errorf("callback listener closed")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrFetchFailed        = fmt.Errorf("data fetch failed")
	ErrPlaylistDegraded   = fmt.Errorf("playlist degraded")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrSnapshotNotFound   = fmt.Errorf("snapshot not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
