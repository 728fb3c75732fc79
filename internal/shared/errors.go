package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrSessionExpired   = fmt.Errorf("session expired")

	// Persistence errors
	ErrDownloadNotFound = fmt.Errorf("download not found")
	ErrHistoryDisabled  = fmt.Errorf("download history disabled")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
